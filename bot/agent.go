// Computer Opponent Sessions
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

// Package bot provides computer opponents.  A bot is an ordinary
// session from the point of view of the room and the game coordinator;
// instead of a network connection it reacts to the control tokens the
// server sends to every player.
package bot

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	ttt "go-ttt"
	"go-ttt/conf"
)

// Strategy chooses a tile for MARK on a board with at least one free
// cell.
type Strategy interface {
	fmt.Stringer
	Move(b *ttt.Board, mark ttt.Mark) int
}

// Agent is a computer player.  It joins the room and the game like any
// client and leaves both when the match ends.
type Agent struct {
	conf  *conf.Conf
	strat Strategy

	nlock sync.Mutex
	name  string

	board *ttt.Board
	mark  ttt.Mark

	lines chan string
	done  chan struct{}
	dead  uint32
}

func (a *Agent) Name() string {
	a.nlock.Lock()
	defer a.nlock.Unlock()
	return a.name
}

func (a *Agent) SetName(name string) {
	a.nlock.Lock()
	defer a.nlock.Unlock()
	a.name = name
}

// Bots hold no moderator rights
func (*Agent) Moderator() bool     { return false }
func (*Agent) SetModerator(v bool) {}

// Send enqueues a line for the agent to react to.  It never blocks,
// so a broadcast cannot stall on a busy bot; if the queue is full the
// line is dropped.
func (a *Agent) Send(format string, args ...interface{}) error {
	if atomic.LoadUint32(&a.dead) != 0 {
		return errors.New("session closed")
	}

	select {
	case a.lines <- strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"):
	default:
		a.conf.Debug.Printf("Dropped line for %s", a.Name())
	}
	return nil
}

// Close detaches the agent from the room and the game.  Closing an
// already closed agent is a no-op.
func (a *Agent) Close() {
	if !atomic.CompareAndSwapUint32(&a.dead, 0, 1) {
		return
	}
	close(a.done)

	a.conf.Room.Leave(a)
	a.conf.Game.HandleDisconnect(a.Name())
	a.conf.Debug.Printf("Bot %s detached", a.Name())
}

func (a *Agent) run() {
	for {
		select {
		case <-a.done:
			return
		case line := <-a.lines:
			a.interpret(line)
		}
	}
}

func (a *Agent) interpret(line string) {
	verb, rest, _ := strings.Cut(line, " ")
	switch verb {
	case ttt.TokPlayer1:
		a.mark = ttt.Cross
	case ttt.TokPlayer2:
		a.mark = ttt.Naught
	case ttt.TokSetTile:
		var tile int
		var mark string
		if _, err := fmt.Sscanf(rest, "%d %s", &tile, &mark); err != nil {
			return
		}
		m := ttt.Cross
		if mark == ttt.Naught.String() {
			m = ttt.Naught
		}
		a.board.SetTile(tile, m)
	case ttt.TokYourTurn:
		tile := a.strat.Move(a.board, a.mark)
		if err := a.conf.Game.Move(a, tile); err != nil {
			a.conf.Log.Printf("Bot %s: %s", a.Name(), err)
		}
	case ttt.TokWaitTurn:
		// Nothing to do until it is our turn
	case ttt.TokResetBoard:
		a.board.Reset()
	case ttt.TokLeaveGame:
		a.Close()
	default:
		// A bot in the first slot cannot be asked to type
		// !startgame, so it starts the match as soon as the
		// second player is announced.  Attempts before that are
		// rejected by the coordinator and ignored here.
		if a.mark == ttt.Cross &&
			strings.HasSuffix(line, "joined the Tic-Tac-Toe game.") {
			_ = a.conf.Game.Begin(a)
		}
	}
}

// Ensure an account under NAME exists, so that results can be
// recorded and the bot shows up on the leaderboard.  The password is
// thrown away; bots never log in.
func ensure(c *conf.Conf, name string) error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.DB.Register(ctx, name, hex.EncodeToString(buf))
	if errors.Is(err, ttt.ErrUsernameTaken) {
		return nil
	}
	return err
}

// Spawn seats a new bot under NAME.  The bot plays a single match and
// departs when it ends.
func Spawn(c *conf.Conf, strat Strategy, name string) error {
	if err := ensure(c, name); err != nil {
		return err
	}

	a := &Agent{
		conf:  c,
		strat: strat,
		name:  name,
		board: ttt.MakeBoard(),
		lines: make(chan string, 64),
		done:  make(chan struct{}),
	}

	if err := c.Room.Join(a); err != nil {
		return err
	}
	go a.run()

	if err := c.Game.Join(a); err != nil {
		a.Close()
		return err
	}
	return nil
}
