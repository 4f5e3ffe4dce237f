// Client Communication Management
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

package proto

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	ttt "go-ttt"
	"go-ttt/conf"
	"go-ttt/metrics"
)

// Largest accepted line, including the terminating newline
const bufferSize = 2048

// Outbound lines queued per session before the peer counts as stalled
const sendQueue = 64

var (
	errClosed  = errors.New("session closed")
	errStalled = errors.New("send queue full")
)

// Client wraps a network connection into a session.  The zero value
// is not usable; construct clients with MakeClient.
type Client struct {
	conf *conf.Conf

	// protocol state
	wlock sync.Mutex // write order
	slock sync.Mutex // transport handle
	rwc   io.ReadWriteCloser

	out  chan string
	done chan struct{}

	// identity, guarded by ulock
	ulock sync.Mutex
	user  *ttt.User
	mod   bool

	dead uint32 // actually bool; set once by the reaper
}

func MakeClient(rwc io.ReadWriteCloser, conf *conf.Conf) *Client {
	return &Client{
		rwc:  rwc,
		conf: conf,
		out:  make(chan string, sendQueue),
		done: make(chan struct{}),
	}
}

// Name returns the display name of the authenticated user, or ""
// while the session is in the login state.
func (cli *Client) Name() string {
	cli.ulock.Lock()
	defer cli.ulock.Unlock()
	if cli.user == nil {
		return ""
	}
	return cli.user.Name
}

func (cli *Client) setUser(u *ttt.User) {
	cli.ulock.Lock()
	defer cli.ulock.Unlock()
	cli.user = u
}

// SetName updates the in-memory display name after a rename
func (cli *Client) SetName(name string) {
	cli.ulock.Lock()
	defer cli.ulock.Unlock()
	if cli.user != nil {
		cli.user.Name = name
	}
}

func (cli *Client) Moderator() bool {
	cli.ulock.Lock()
	defer cli.ulock.Unlock()
	return cli.mod
}

func (cli *Client) SetModerator(on bool) {
	cli.ulock.Lock()
	defer cli.ulock.Unlock()
	cli.mod = on
}

// String will return a string representation for a client for
// internal use
func (cli *Client) String() string {
	cli.slock.Lock()
	rwc := cli.rwc
	cli.slock.Unlock()

	if name := cli.Name(); name != "" {
		return fmt.Sprintf("%p (%q)", rwc, name)
	}
	return fmt.Sprintf("%p", rwc)
}

// Send queues one framed line for the peer.  It never blocks: a peer
// that has stopped draining its queue gets an error, which the room
// treats as a transport failure and quarantines the session.
func (cli *Client) Send(format string, args ...interface{}) error {
	if atomic.LoadUint32(&cli.dead) != 0 {
		return errClosed
	}

	select {
	case cli.out <- fmt.Sprintf(format, args...):
		return nil
	case <-cli.done:
		return errClosed
	default:
		cli.conf.Debug.Println(cli, "stalled, dropping outbound line")
		return errStalled
	}
}

// Push writes MSG to the transport.  A terminating newline is appended
// if the message does not already end in one.  Writes are ordered by
// wlock alone, so a concurrent Close can interrupt a blocked write.
func (cli *Client) push(msg string) error {
	cli.wlock.Lock()
	defer cli.wlock.Unlock()

	cli.slock.Lock()
	rwc := cli.rwc
	cli.slock.Unlock()
	if rwc == nil {
		return errClosed
	}

	cli.conf.Debug.Println(cli, ">", msg)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, err := io.WriteString(rwc, msg)
	if err != nil {
		cli.conf.Debug.Print(err)
	}
	return err
}

// Write drains the outbound queue.  On a transport failure the
// session is torn down; on shutdown whatever is still queued is
// flushed best-effort.
func (cli *Client) write() {
	for {
		select {
		case <-cli.done:
			for {
				select {
				case msg := <-cli.out:
					if cli.push(msg) != nil {
						return
					}
				default:
					return
				}
			}
		case msg := <-cli.out:
			if cli.push(msg) != nil {
				cli.Close()
				return
			}
		}
	}
}

// Goodbye writes the farewell directly and closes the transport, so
// the peer sees the reply before the socket goes away.
func (cli *Client) goodbye() {
	_ = cli.push("Goodbye.")
	cli.Close()
}

// Close tears down the transport.  It is safe to call from any
// goroutine and repeatedly; the read loop observes the closed socket
// and runs the reaper.
func (cli *Client) Close() {
	cli.slock.Lock()
	defer cli.slock.Unlock()
	if cli.rwc == nil {
		return
	}
	if err := cli.rwc.Close(); err != nil {
		cli.conf.Debug.Print(err)
	}
}

// Connect starts the session lifecycle: a read loop that interprets
// one line at a time until the transport fails or is closed, followed
// by the reaper.
func (cli *Client) Connect() {
	dbg := cli.conf.Debug.Println

	if cli.rwc == nil {
		panic("No ReadWriteCloser")
	}

	metrics.SessionsConnected.Inc()
	defer cli.reap()
	go cli.write()

	scanner := bufio.NewScanner(cli.rwc)
	scanner.Buffer(make([]byte, 0, bufferSize), bufferSize)
	for scanner.Scan() {
		input := strings.TrimSuffix(scanner.Text(), "\r")
		dbg(cli, "<", input)
		cli.interpret(input)
	}

	err := scanner.Err()
	switch {
	case err == nil:
		// Orderly EOF from the peer
	case errors.Is(err, bufio.ErrTooLong):
		// Explain the disconnect before the reaper closes the
		// transport, ignoring errors.  Written directly since the
		// queue may be torn down before it is drained.
		_ = cli.push("[Server]: Line too long.")
	case strings.Contains(err.Error(), "use of closed network connection"):
		// Killed from our side
	default:
		cli.conf.Log.Print(err)
	}
}

// Reap disconnects the session: the room forgets it, an in-progress
// game it was part of is reset, and the transport is closed.  Reaping
// an already reaped session is a no-op.
func (cli *Client) reap() {
	if !atomic.CompareAndSwapUint32(&cli.dead, 0, 1) {
		return
	}
	metrics.SessionsConnected.Dec()
	close(cli.done)

	name := cli.Name()
	if cli.conf.Room != nil {
		cli.conf.Room.Leave(cli)
	}
	if name != "" && cli.conf.Game != nil {
		cli.conf.Game.HandleDisconnect(name)
	}

	cli.Close()

	cli.slock.Lock()
	cli.rwc = nil
	cli.slock.Unlock()

	cli.conf.Debug.Println("Closed connection to", cli)
}
