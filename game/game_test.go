// Match Coordination Tests
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
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	ttt "go-ttt"
	"go-ttt/chat"
	"go-ttt/conf"
	"go-ttt/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake is an in-memory session that records everything sent to it
type fake struct {
	lock sync.Mutex
	name string
	mod  bool
	sent []string
}

func (f *fake) Name() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.name
}

func (f *fake) SetName(name string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.name = name
}

func (f *fake) Moderator() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.mod
}

func (f *fake) SetModerator(v bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.mod = v
}

func (f *fake) Send(format string, args ...interface{}) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.sent = append(f.sent, fmt.Sprintf(format, args...))
	return nil
}

func (f *fake) Close() {}

// got reports whether a line containing NEEDLE was sent to F
func (f *fake) got(needle string) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, line := range f.sent {
		if strings.Contains(line, needle) {
			return true
		}
	}
	return false
}

func testConf(t *testing.T) *conf.Conf {
	t.Helper()

	c := conf.Default()
	c.Database = filepath.Join(t.TempDir(), "test.db")
	db.Prepare(c)
	chat.Prepare(c)
	Prepare(c)
	t.Cleanup(func() { c.DB.Shutdown() })
	return c
}

// seat registers NAME, joins the room and takes a game slot
func seat(t *testing.T, c *conf.Conf, name string) *fake {
	t.Helper()

	_, err := c.DB.Register(context.Background(), name, "secret")
	require.NoError(t, err)

	f := &fake{name: name}
	require.NoError(t, c.Room.Join(f))
	require.NoError(t, c.Game.Join(f))
	return f
}

func TestJoin(t *testing.T) {
	c := testConf(t)

	a := seat(t, c, "Alice")
	assert.True(t, a.got(ttt.TokPlayer1))
	assert.True(t, c.Game.Seated("Alice"))
	assert.True(t, c.Game.Seated("alice"), "seating is case-insensitive")

	assert.EqualError(t, c.Game.Join(a), "you have already joined the game.")

	b := seat(t, c, "Bob")
	assert.True(t, b.got(ttt.TokPlayer2))

	_, err := c.DB.Register(context.Background(), "Carol", "secret")
	require.NoError(t, err)
	x := &fake{name: "Carol"}
	require.NoError(t, c.Room.Join(x))
	assert.EqualError(t, c.Game.Join(x), "the game is full.")
	assert.False(t, c.Game.Seated("Carol"))
}

func TestBegin(t *testing.T) {
	c := testConf(t)

	a := seat(t, c, "Alice")
	assert.EqualError(t, c.Game.Begin(a), "waiting for a second player.")

	b := seat(t, c, "Bob")
	assert.EqualError(t, c.Game.Begin(b), "only player 1 can start the game.")

	assert.EqualError(t, c.Game.Move(a, 0), "the game has not started yet.")

	require.NoError(t, c.Game.Begin(a))
	assert.True(t, a.got(ttt.TokYourTurn))
	assert.True(t, b.got(ttt.TokWaitTurn))
	assert.True(t, a.got("Game has started."))

	assert.EqualError(t, c.Game.Begin(a), "the game has already started.")
}

func TestMoveValidation(t *testing.T) {
	c := testConf(t)

	a := seat(t, c, "Alice")
	b := seat(t, c, "Bob")
	require.NoError(t, c.Game.Begin(a))

	assert.EqualError(t, c.Game.Move(b, 0), "not your turn.")
	assert.EqualError(t, c.Game.Move(a, 9), "tile index must be between 0 and 8.")
	assert.EqualError(t, c.Game.Move(a, -1), "tile index must be between 0 and 8.")

	require.NoError(t, c.Game.Move(a, 4))
	assert.EqualError(t, c.Game.Move(b, 4), "that tile is already taken.")
	assert.EqualError(t, c.Game.Move(a, 0), "not your turn.")
}

func TestWin(t *testing.T) {
	c := testConf(t)

	a := seat(t, c, "Alice")
	b := seat(t, c, "Bob")
	require.NoError(t, c.Game.Begin(a))

	// Alice completes the top row
	for _, m := range []struct {
		s    ttt.Session
		tile int
	}{
		{a, 0}, {b, 3}, {a, 1}, {b, 4}, {a, 2},
	} {
		require.NoError(t, c.Game.Move(m.s, m.tile))
	}

	assert.True(t, a.got("[Game Over]: X wins!"))
	assert.True(t, b.got("[Game Over]: X wins!"))
	assert.True(t, a.got(ttt.TokResetBoard))
	assert.True(t, a.got("[Result]: You have 1 wins, 0 losses and 0 draws."))
	assert.True(t, b.got("[Result]: You have 0 wins, 1 losses and 0 draws."))
	assert.True(t, a.got(ttt.TokLeaveGame))
	assert.True(t, b.got(ttt.TokLeaveGame))

	// Both players are back in the chatting state
	assert.False(t, c.Game.Seated("Alice"))
	assert.False(t, c.Game.Seated("Bob"))

	ctx := context.Background()
	stats, err := c.DB.Stats(ctx, "Alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Wins)
	stats, err = c.DB.Stats(ctx, "Bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Losses)
}

func TestDraw(t *testing.T) {
	c := testConf(t)

	a := seat(t, c, "Alice")
	b := seat(t, c, "Bob")
	require.NoError(t, c.Game.Begin(a))

	for _, m := range []struct {
		s    ttt.Session
		tile int
	}{
		{a, 0}, {b, 4}, {a, 8}, {b, 1}, {a, 7},
		{b, 6}, {a, 2}, {b, 5}, {a, 3},
	} {
		require.NoError(t, c.Game.Move(m.s, m.tile))
	}

	assert.True(t, a.got("[Game Over]: It's a draw!"))

	ctx := context.Background()
	for _, name := range []string{"Alice", "Bob"} {
		stats, err := c.DB.Stats(ctx, name)
		require.NoError(t, err)
		assert.EqualValues(t, 1, stats.Draws, name)
	}
}

func TestDropout(t *testing.T) {
	c := testConf(t)

	a := seat(t, c, "Alice")
	b := seat(t, c, "Bob")
	require.NoError(t, c.Game.Begin(a))
	require.NoError(t, c.Game.Move(a, 0))

	c.Game.HandleDisconnect("Alice")

	assert.False(t, c.Game.Seated("Alice"))
	assert.False(t, c.Game.Seated("Bob"))
	assert.True(t, b.got("Alice left the Tic-Tac-Toe game."))
	assert.True(t, b.got(ttt.TokResetBoard))
	assert.True(t, b.got(ttt.TokLeaveGame))

	// No result is recorded for an abandoned match
	stats, err := c.DB.Stats(context.Background(), "Bob")
	require.NoError(t, err)
	assert.Zero(t, stats.Wins+stats.Losses+stats.Draws)

	// Disconnecting an unseated user is a no-op
	c.Game.HandleDisconnect("Alice")
	c.Game.HandleDisconnect("Nobody")

	// The slots are free again
	require.NoError(t, c.Game.Join(a))
	assert.True(t, c.Game.Seated("Alice"))
}

func TestPersistedMatchCleared(t *testing.T) {
	c := testConf(t)
	ctx := context.Background()

	require.NoError(t, c.DB.SaveMatch(ctx, "Alice", "Bob", "Alice"))

	// A restart drops slots that refer to disconnected players
	c.Game.Start()

	p1, p2, turn, err := c.DB.LoadMatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, p1)
	assert.Empty(t, p2)
	assert.Empty(t, turn)
}
