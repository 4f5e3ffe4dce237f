// Primitive MinMax Strategy
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
	"math"

	ttt "go-ttt"
)

// position is a plain copy of the board cells, cheap to duplicate
// while traversing the game tree.
type position [9]ttt.Mark

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

func (p *position) winner() ttt.Mark {
	for _, l := range lines {
		m := p[l[0]]
		if m != ttt.Blank && m == p[l[1]] && m == p[l[2]] {
			return m
		}
	}
	return ttt.Blank
}

func (p *position) full() bool {
	for _, c := range p {
		if c == ttt.Blank {
			return false
		}
	}
	return true
}

// search returns the best tile for MARK to move in P, together with
// its evaluation.  The game tree is small enough to traverse
// exhaustively; Alpha-Beta pruning only reduces the computational
// load imposed on the server and never changes the chosen move.
// Faster wins and slower losses score better, so the strategy finishes
// a won game instead of stalling it.
func search(p position, mark ttt.Mark) (int, int) {
	var it func(q position, turn ttt.Mark, depth, alpha, beta int) (int, int)

	it = func(q position, turn ttt.Mark, depth, alpha, beta int) (int, int) {
		var (
			best int // best evaluation
			move = -1
		)
		if turn == mark { // maximising
			best = math.MinInt
		} else { // minimising
			best = math.MaxInt
		}

		for i := 0; i < len(q); i++ {
			if q[i] != ttt.Blank {
				continue
			}

			// Progress to the next state.  The position is an
			// array, so the parent state stays untouched.
			n := q
			n[i] = turn

			var score int
			if w := n.winner(); w == mark {
				score = 10 - depth
			} else if w != ttt.Blank {
				score = depth - 10
			} else if n.full() {
				score = 0
			} else {
				_, score = it(n, turn.Other(), depth+1, alpha, beta)
			}

			if turn == mark { // maximising
				if score > best {
					best = score
					move = i
				}
				if best > alpha {
					alpha = best
				}
				if best >= beta {
					break
				}
			} else { // minimising
				if score < best {
					best = score
					move = i
				}
				if best < beta {
					beta = best
				}
				if best <= alpha {
					break
				}
			}
		}

		return move, best
	}
	return it(p, mark, 0, math.MinInt, math.MaxInt)
}

type minmax struct{}

func (minmax) String() string { return "minmax" }

func (minmax) Move(b *ttt.Board, mark ttt.Mark) int {
	var p position
	for i := range p {
		p[i] = b.Tile(i)
	}

	move, _ := search(p, mark)
	if move < 0 || p[move] != ttt.Blank {
		panic("Proposed illegal move")
	}
	return move
}

func MakeMinMax() Strategy {
	return minmax{}
}
