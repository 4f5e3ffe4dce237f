// Common Interfaces and constants
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

import "fmt"

// Version of the server, reported by the !about command
const Version = "v1.0.2"

type (
	Mark      uint8
	GameState uint8
)

const (
	// Possible cell values
	Blank Mark = iota
	Cross
	Naught
)

const (
	// Possible game states
	Ongoing GameState = iota
	CrossWins
	NaughtWins
	Draw
)

// Control tokens sent by the server to drive client UI state.  Clients
// never send these.
const (
	TokPlayer1    = "!player1"
	TokPlayer2    = "!player2"
	TokSetTile    = "!settile"
	TokYourTurn   = "!yourturn"
	TokWaitTurn   = "!waitturn"
	TokResetBoard = "!resetboard"
	TokLeaveGame  = "!leavegame"
)

func (m Mark) String() string {
	switch m {
	case Blank:
		return "_"
	case Cross:
		return "X"
	case Naught:
		return "O"
	default:
		panic(fmt.Sprintf("Illegal mark: %d", m))
	}
}

// Other returns the mark of the opponent
func (m Mark) Other() Mark {
	switch m {
	case Cross:
		return Naught
	case Naught:
		return Cross
	default:
		panic("Blank has no opponent")
	}
}

func (s GameState) String() string {
	switch s {
	case Ongoing:
		return "Ongoing"
	case CrossWins:
		return "X wins"
	case NaughtWins:
		return "O wins"
	case Draw:
		return "Draw"
	default:
		panic(fmt.Sprintf("Illegal game state: %d", s))
	}
}

// User is a registered account as stored by the database manager
type User struct {
	Id     int64
	Name   string
	Wins   uint64
	Losses uint64
	Draws  uint64
}
