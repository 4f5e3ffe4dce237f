// Match coordination
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

package game

import (
	"context"
	"errors"
	"strings"
	"sync"

	ttt "go-ttt"
	"go-ttt/conf"
	"go-ttt/metrics"
)

// Match is the single server-wide Tic-Tac-Toe game.  Slot 1 plays
// cross, slot 2 plays naught.  Slot and turn state is mirrored into
// the persistent match store on every change.
type Match struct {
	conf *conf.Conf

	lock  sync.Mutex
	board *ttt.Board
	p1    string // display name, "" while the slot is empty
	p2    string
	turn  string // display name of the mover, "" before !startgame
	s1    ttt.Session
	s2    ttt.Session
}

func (*Match) String() string { return "Game Coordinator" }

// Start drops any match state left over from a previous run.  The
// players it refers to are no longer connected, so the stored slots
// are stale by definition.
func (m *Match) Start() {
	ctx := context.Background()
	p1, p2, _, err := m.conf.DB.LoadMatch(ctx)
	if err != nil {
		m.conf.Log.Print(err)
		return
	}
	if p1 != "" || p2 != "" {
		m.conf.Debug.Printf("Clearing stale match (%q vs. %q)", p1, p2)
		if err := m.conf.DB.ClearMatch(ctx); err != nil {
			m.conf.Log.Print(err)
		}
	}
}

func (m *Match) Shutdown() {}

// Seated reports whether NAME occupies one of the two player slots
func (m *Match) Seated(name string) bool {
	if name == "" {
		return false
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.seated(name)
}

func (m *Match) seated(name string) bool {
	return (m.p1 != "" && strings.EqualFold(m.p1, name)) ||
		(m.p2 != "" && strings.EqualFold(m.p2, name))
}

// Persist the current slots and turn.  Called with the lock held.
func (m *Match) save() {
	err := m.conf.DB.SaveMatch(context.Background(), m.p1, m.p2, m.turn)
	if err != nil {
		m.conf.Log.Print(err)
	}
}

// Join assigns the session the first free slot and replies with the
// slot token.  The caller is in the chatting state, so it cannot
// already be seated; the check is kept for the host-console path.
func (m *Match) Join(s ttt.Session) error {
	name := s.Name()

	m.lock.Lock()
	defer m.lock.Unlock()

	switch {
	case m.seated(name):
		return errors.New("you have already joined the game.")
	case m.p1 == "":
		m.p1, m.s1 = name, s
		m.save()
		_ = s.Send(ttt.TokPlayer1)
	case m.p2 == "":
		m.p2, m.s2 = name, s
		m.save()
		_ = s.Send(ttt.TokPlayer2)
	default:
		return errors.New("the game is full.")
	}

	m.conf.Room.Announce("[Server]: %s joined the Tic-Tac-Toe game.", name)
	return nil
}

// Begin starts the match.  Only player 1 may start, and only once
// both slots are occupied.
func (m *Match) Begin(s ttt.Session) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	switch {
	case !strings.EqualFold(s.Name(), m.p1):
		return errors.New("only player 1 can start the game.")
	case m.p2 == "":
		return errors.New("waiting for a second player.")
	case m.turn != "":
		return errors.New("the game has already started.")
	}

	m.turn = m.p1
	m.save()

	_ = m.s1.Send(ttt.TokYourTurn)
	_ = m.s2.Send(ttt.TokWaitTurn)
	m.conf.Room.Announce("[Server]: Game has started.")
	return nil
}

// Move places the mover's mark on TILE.  Validation order: turn,
// index range, cell occupancy.
func (m *Match) Move(s ttt.Session, tile int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	name := s.Name()
	switch {
	case m.turn == "":
		return errors.New("the game has not started yet.")
	case !strings.EqualFold(name, m.turn):
		return errors.New("not your turn.")
	case tile < 0 || tile > 8:
		return errors.New("tile index must be between 0 and 8.")
	}

	mark := ttt.Cross
	if strings.EqualFold(name, m.p2) {
		mark = ttt.Naught
	}

	if !m.board.SetTile(tile, mark) {
		return errors.New("that tile is already taken.")
	}

	m.conf.Room.Announce("%s %d %s", ttt.TokSetTile, tile, mark)

	switch state := m.board.State(); state {
	case ttt.Ongoing:
		if mark == ttt.Cross {
			m.turn = m.p2
		} else {
			m.turn = m.p1
		}
		m.save()

		mover, waiter := m.s1, m.s2
		if strings.EqualFold(m.turn, m.p2) {
			mover, waiter = m.s2, m.s1
		}
		_ = mover.Send(ttt.TokYourTurn)
		_ = waiter.Send(ttt.TokWaitTurn)

	default:
		m.finish(state)
	}

	return nil
}

// Finish records the terminal STATE, runs the end-of-game fanout and
// resets the match.  Called with the lock held.
func (m *Match) finish(state ttt.GameState) {
	ctx := context.Background()

	var msg, outcome string
	var err error
	switch state {
	case ttt.CrossWins:
		msg, outcome = "X wins!", "x"
		err = errors.Join(
			m.conf.DB.IncrementWins(ctx, m.p1),
			m.conf.DB.IncrementLosses(ctx, m.p2))
	case ttt.NaughtWins:
		msg, outcome = "O wins!", "o"
		err = errors.Join(
			m.conf.DB.IncrementWins(ctx, m.p2),
			m.conf.DB.IncrementLosses(ctx, m.p1))
	case ttt.Draw:
		msg, outcome = "It's a draw!", "draw"
		err = errors.Join(
			m.conf.DB.IncrementDraws(ctx, m.p1),
			m.conf.DB.IncrementDraws(ctx, m.p2))
	default:
		panic("Not a terminal state")
	}
	if err != nil {
		m.conf.Log.Print(err)
	}
	metrics.GamesCompleted.WithLabelValues(outcome).Inc()

	m.conf.Room.Announce("[Game Over]: %s", msg)
	m.conf.Room.Announce(ttt.TokResetBoard)

	for _, s := range []ttt.Session{m.s1, m.s2} {
		u, err := m.conf.DB.Stats(ctx, s.Name())
		if err != nil {
			m.conf.Log.Print(err)
			continue
		}
		_ = s.Send("[Result]: You have %d wins, %d losses and %d draws.",
			u.Wins, u.Losses, u.Draws)
	}

	s1, s2 := m.s1, m.s2
	m.reset()
	_ = s1.Send(ttt.TokLeaveGame)
	_ = s2.Send(ttt.TokLeaveGame)
}

// Reset clears slots, turn and board.  Called with the lock held.
func (m *Match) reset() {
	m.p1, m.p2, m.turn = "", "", ""
	m.s1, m.s2 = nil, nil
	m.board.Reset()
	if err := m.conf.DB.ClearMatch(context.Background()); err != nil {
		m.conf.Log.Print(err)
	}
}

// HandleDisconnect runs dropout recovery: when a seated player's
// session ends for any reason the whole match is reset and any
// remaining participant is sent back to chatting.  No forfeit is
// recorded.  Calling it for a name that is not seated is a no-op.
func (m *Match) HandleDisconnect(name string) {
	m.lock.Lock()

	if !m.seated(name) {
		m.lock.Unlock()
		return
	}

	remaining := m.s2
	if strings.EqualFold(name, m.p2) {
		remaining = m.s1
	}

	m.reset()
	m.lock.Unlock()

	m.conf.Room.Announce("[Server]: %s left the Tic-Tac-Toe game.", name)
	m.conf.Room.Announce(ttt.TokResetBoard)
	if remaining != nil {
		_ = remaining.Send(ttt.TokLeaveGame)
	}
}

func Prepare(c *conf.Conf) {
	c.Register(conf.GameManager(&Match{
		conf:  c,
		board: ttt.MakeBoard(),
	}))
}
