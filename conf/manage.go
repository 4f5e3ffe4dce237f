// Configuration Management
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

package conf

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	ttt "go-ttt"
)

type Manager interface {
	fmt.Stringer
	Start()
	Shutdown()
}

// DatabaseManager persists user accounts and the shared match
type DatabaseManager interface {
	Manager

	// Connection check
	TestConnection(context.Context) error

	// Account interface
	Register(ctx context.Context, name, pass string) (*ttt.User, error)
	Login(ctx context.Context, name, pass string) (*ttt.User, error)
	Rename(ctx context.Context, oldName, newName string) error
	IncrementWins(context.Context, string) error
	IncrementLosses(context.Context, string) error
	IncrementDraws(context.Context, string) error
	Stats(context.Context, string) (*ttt.User, error)
	Scores(context.Context) ([]*ttt.User, error)

	// Match interface
	SaveMatch(ctx context.Context, player1, player2, turn string) error
	LoadMatch(ctx context.Context) (player1, player2, turn string, err error)
	ClearMatch(context.Context) error
}

// RoomManager tracks connected sessions and routes chat
type RoomManager interface {
	Manager

	// Membership
	Join(ttt.Session) error
	Leave(ttt.Session)
	Find(name string) (ttt.Session, bool)
	Names() []string

	// Routing
	Announce(format string, args ...interface{})
	Chat(from ttt.Session, msg string)
	Whisper(from ttt.Session, target, msg string) error
	Roll(from ttt.Session, max int)
	Rename(from ttt.Session, newName string) error
	Kick(by ttt.Session, target string) error

	// Moderation (host console)
	SetModerator(name string, on bool) (ttt.Session, bool)
	Moderators() []string
}

// GameManager coordinates the single shared match
type GameManager interface {
	Manager

	Join(ttt.Session) error
	Begin(ttt.Session) error
	Move(s ttt.Session, tile int) error
	Seated(name string) bool
	HandleDisconnect(name string)
}

func (c *Conf) Register(m Manager) {
	if c.run {
		panic(fmt.Sprintf("Late register: %#v", m))
	}

	switch s := m.(type) {
	case DatabaseManager:
		c.DB = s
	case RoomManager:
		c.Room = s
	case GameManager:
		c.Game = s
	}

	c.man = append(c.man, m)
}

func (c *Conf) Start() {
	// Start the service
	for _, m := range c.man {
		c.Debug.Printf("Starting %s", m)
		go m.Start()
	}
	c.run = true

	// Catch an interrupt request...
	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	<-intr
	c.Debug.Println("Caught interrupt")

	// ...and request all managers to shut down, in reverse
	// registration order.
	c.Debug.Println("Waiting for managers to shutdown...")
	for i := len(c.man) - 1; i >= 0; i-- {
		m := c.man[i]
		c.Debug.Printf("Shutting %s down", m)
		m.Shutdown()
	}
	c.Debug.Println("Shutting down")
}
