// 3x3 Board Implementation
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

import (
	"strings"
	"sync"
)

// Board represents the 3x3 grid of the shared match.  All cell
// accesses are serialised through the internal mutex, so a board may
// be shared between the game coordinator and the session reaper.
type Board struct {
	lock  sync.Mutex
	cells [9]Mark
}

// The eight winning lines, in row-major cell indices
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

func MakeBoard() *Board {
	return &Board{}
}

// SetTile places MARK in cell I.  It reports whether the placement was
// legal: the index must be on the board, the mark must not be blank
// and the cell must still be empty.
func (b *Board) SetTile(i int, mark Mark) bool {
	if i < 0 || i >= len(b.cells) || mark == Blank {
		return false
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if b.cells[i] != Blank {
		return false
	}
	b.cells[i] = mark
	return true
}

// Tile returns the mark currently occupying cell I
func (b *Board) Tile(i int) Mark {
	if i < 0 || i >= len(b.cells) {
		panic("Illegal access")
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	return b.cells[i]
}

// Reset blanks out every cell
func (b *Board) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.cells = [9]Mark{}
}

// State evaluates the board.  A completed line wins for its mark, a
// full board without a winner is a draw, anything else is still
// ongoing.
func (b *Board) State() GameState {
	b.lock.Lock()
	defer b.lock.Unlock()

	for _, l := range lines {
		m := b.cells[l[0]]
		if m != Blank && m == b.cells[l[1]] && m == b.cells[l[2]] {
			if m == Cross {
				return CrossWins
			}
			return NaughtWins
		}
	}

	for _, c := range b.cells {
		if c == Blank {
			return Ongoing
		}
	}
	return Draw
}

// String serialises the board into nine characters from {x, o, _} in
// row-major order.
func (b *Board) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()

	var sb strings.Builder
	for _, c := range b.cells {
		switch c {
		case Cross:
			sb.WriteByte('x')
		case Naught:
			sb.WriteByte('o')
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// Load replaces the board contents with the nine-character
// serialisation REPR.  Inputs of any other length, or with characters
// outside {x, o, _}, leave the board untouched.
func (b *Board) Load(repr string) bool {
	if len(repr) != 9 {
		return false
	}

	var cells [9]Mark
	for i := 0; i < len(repr); i++ {
		switch repr[i] {
		case 'x':
			cells[i] = Cross
		case 'o':
			cells[i] = Naught
		case '_':
			cells[i] = Blank
		default:
			return false
		}
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	b.cells = cells
	return true
}
