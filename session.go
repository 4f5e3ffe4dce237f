// Session Interface
//
// Copyright (c) 2024, 2025  The go-ttt authors
//
// This file is part of go-ttt.
//
// go-ttt is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-ttt is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-ttt. If not, see
// <http://www.gnu.org/licenses/>

package ttt

// Session is a connected client as seen by the routing and game
// layers.  The concrete type lives in the proto package; everything
// else only needs a name, a framed line writer and a way to close the
// transport.
type Session interface {
	// Name returns the display name of the authenticated user, or
	// the empty string while the session is still logging in.
	Name() string

	// SetName updates the in-memory display name after a rename
	SetName(string)

	// Moderator reports whether the host granted this session
	// moderator rights.  The flag is not persisted.
	Moderator() bool
	SetModerator(bool)

	// Send writes one framed line to the peer.  A trailing newline
	// is appended if missing.  Errors indicate a broken transport;
	// the caller is expected to hand the session to the reaper.
	Send(format string, args ...interface{}) error

	// Close tears the transport down.  Closing an already closed
	// session is a no-op.
	Close()
}
