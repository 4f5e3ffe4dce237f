// MinMax Implementation Tests
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

package bot

import (
	"testing"

	ttt "go-ttt"
)

func parse(t *testing.T, state string) position {
	t.Helper()
	if len(state) != 9 {
		t.Fatalf("Malformed position %q", state)
	}

	var p position
	for i := 0; i < len(state); i++ {
		switch state[i] {
		case 'x':
			p[i] = ttt.Cross
		case 'o':
			p[i] = ttt.Naught
		case '_':
			p[i] = ttt.Blank
		default:
			t.Fatalf("Malformed position %q", state)
		}
	}
	return p
}

func TestSearch(t *testing.T) {
	for i, test := range []struct {
		state    string
		mark     ttt.Mark
		expected int
	}{
		// Complete a winning row
		{"xx_oo____", ttt.Cross, 2},
		// Complete a winning column
		{"o_xo_x___", ttt.Naught, 6},
		// Block the opponent's row
		{"xx____o__", ttt.Naught, 2},
		// Block the opponent's diagonal
		{"x___x_o__", ttt.Naught, 8},
		// Prefer the immediate win over blocking
		{"xx__oo___", ttt.Cross, 2},
		// A double threat beats a plain developing move
		{"x___o___x", ttt.Naught, 1},
	} {
		p := parse(t, test.state)
		move, ev := search(p, test.mark)
		if move < 0 || move >= 9 {
			t.Errorf("[%d] Proposed impossible move %d given %s (%d)",
				i, move, test.state, ev)
		} else if p[move] != ttt.Blank {
			t.Errorf("[%d] Proposed illegal move %d given %s (%d)",
				i, move, test.state, ev)
		} else if test.expected != move {
			t.Errorf("[%d] Expected move %d, but got %d (%d)",
				i, test.expected, move, ev)
		}
	}
}

// Two perfect players always draw
func TestSelfPlay(t *testing.T) {
	var p position
	turn := ttt.Cross
	for !p.full() {
		move, _ := search(p, turn)
		if move < 0 || p[move] != ttt.Blank {
			t.Fatalf("Illegal move %d in %v", move, p)
		}
		p[move] = turn
		if w := p.winner(); w != ttt.Blank {
			t.Fatalf("Self-play was won by %s in %v", w, p)
		}
		turn = turn.Other()
	}
}

// MinMax never loses against an arbitrary opponent.  The random
// strategy explores enough of the move space over the repetitions to
// catch most blunders.
func TestVersusRandom(t *testing.T) {
	for round := 0; round < 100; round++ {
		b := ttt.MakeBoard()
		mm, rd := MakeMinMax(), MakeRandom()

		turn := ttt.Cross
		for {
			var move int
			if turn == ttt.Cross {
				move = mm.Move(b, turn)
			} else {
				move = rd.Move(b, turn)
			}
			if !b.SetTile(move, turn) {
				t.Fatalf("Illegal move %d on %s", move, b)
			}

			switch b.State() {
			case ttt.NaughtWins:
				t.Fatalf("MinMax lost: %s", b)
			case ttt.CrossWins, ttt.Draw:
				goto next
			}
			turn = turn.Other()
		}
	next:
	}
}
