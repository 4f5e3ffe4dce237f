// Random Strategy
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
	"math/rand"

	ttt "go-ttt"
)

type random struct{}

func (random) String() string { return "random" }

func (random) Move(b *ttt.Board, mark ttt.Mark) int {
	var free []int
	for i := 0; i < 9; i++ {
		if b.Tile(i) == ttt.Blank {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		panic("Unexpected final state")
	}
	return free[rand.Intn(len(free))]
}

func MakeRandom() Strategy {
	return random{}
}
