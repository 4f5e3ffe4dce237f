// Database Manager Tests
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

package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ttt "go-ttt"
)

func testDB(t *testing.T) *db {
	t.Helper()
	d, err := open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(d.Shutdown)
	return d
}

func TestConnection(t *testing.T) {
	d := testDB(t)
	require.NoError(t, d.TestConnection(context.Background()))
}

func TestRegisterLogin(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	u, err := d.Register(ctx, "Alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Zero(t, u.Wins)

	// Uniqueness is case-insensitive
	_, err = d.Register(ctx, "ALICE", "pw3")
	assert.True(t, errors.Is(err, ttt.ErrUsernameTaken))

	// Lookup is case-insensitive, but the registered display
	// casing is returned
	u, err = d.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	_, err = d.Login(ctx, "Alice", "wrong")
	assert.True(t, errors.Is(err, ttt.ErrWrongPassword))

	_, err = d.Login(ctx, "nobody", "pw1")
	assert.True(t, errors.Is(err, ttt.ErrUserNotFound))
}

func TestRename(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	_, err := d.Register(ctx, "Alice", "pw1")
	require.NoError(t, err)
	_, err = d.Register(ctx, "bob", "pw2")
	require.NoError(t, err)

	err = d.Rename(ctx, "nobody", "Carol")
	assert.True(t, errors.Is(err, ttt.ErrUserNotFound))

	err = d.Rename(ctx, "Alice", "BOB")
	assert.True(t, errors.Is(err, ttt.ErrUsernameTaken))

	// Changing only the casing of your own name is allowed
	require.NoError(t, d.Rename(ctx, "bob", "Bob"))

	require.NoError(t, d.Rename(ctx, "Alice", "Carol"))
	u, err := d.Login(ctx, "carol", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "Carol", u.Name)
}

func TestScores(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	for _, name := range []string{"Alice", "bob", "Carol"} {
		_, err := d.Register(ctx, name, "pw")
		require.NoError(t, err)
	}

	// bob: 2 wins; Carol: 2 wins, 1 draw; Alice: 1 loss
	require.NoError(t, d.IncrementWins(ctx, "bob"))
	require.NoError(t, d.IncrementWins(ctx, "bob"))
	require.NoError(t, d.IncrementWins(ctx, "carol"))
	require.NoError(t, d.IncrementWins(ctx, "Carol"))
	require.NoError(t, d.IncrementDraws(ctx, "Carol"))
	require.NoError(t, d.IncrementLosses(ctx, "Alice"))

	err := d.IncrementWins(ctx, "nobody")
	assert.True(t, errors.Is(err, ttt.ErrUserNotFound))

	scores, err := d.Scores(ctx)
	require.NoError(t, err)
	require.Len(t, scores, 3)

	// Wins descending, draws break the tie
	assert.Equal(t, "Carol", scores[0].Name)
	assert.Equal(t, "bob", scores[1].Name)
	assert.Equal(t, "Alice", scores[2].Name)

	u, err := d.Stats(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, u.Losses)
	assert.Zero(t, u.Wins)
}

func TestMatch(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	p1, p2, turn, err := d.LoadMatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, p1)
	assert.Empty(t, p2)
	assert.Empty(t, turn)

	require.NoError(t, d.SaveMatch(ctx, "Alice", "bob", "Alice"))
	p1, p2, turn, err = d.LoadMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p1)
	assert.Equal(t, "bob", p2)
	assert.Equal(t, "Alice", turn)

	// Upsert overwrites, empty strings are stored as NULL
	require.NoError(t, d.SaveMatch(ctx, "Alice", "", ""))
	p1, p2, turn, err = d.LoadMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p1)
	assert.Empty(t, p2)
	assert.Empty(t, turn)

	require.NoError(t, d.ClearMatch(ctx))
	p1, _, _, err = d.LoadMatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, p1)
}
