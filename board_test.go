// Board Tests
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

import "testing"

func TestSetTile(t *testing.T) {
	for i, test := range []struct {
		start string
		move  int
		mark  Mark
		legal bool
	}{
		{
			start: "_________",
			move:  0,
			mark:  Cross,
			legal: true,
		}, {
			start: "_________",
			move:  8,
			mark:  Naught,
			legal: true,
		}, {
			start: "x________",
			move:  0,
			mark:  Naught,
			legal: false,
		}, {
			start: "x________",
			move:  4,
			mark:  Naught,
			legal: true,
		}, {
			start: "_________",
			move:  9,
			mark:  Cross,
			legal: false,
		}, {
			start: "_________",
			move:  -1,
			mark:  Cross,
			legal: false,
		}, {
			start: "_________",
			move:  4,
			mark:  Blank,
			legal: false,
		},
	} {
		b := MakeBoard()
		if !b.Load(test.start) {
			t.Fatalf("(%d) failed to load %q", i, test.start)
		}
		if legal := b.SetTile(test.move, test.mark); legal != test.legal {
			t.Errorf("(%d) SetTile(%d, %v) = %v, want %v",
				i, test.move, test.mark, legal, test.legal)
		}
		if !test.legal && b.String() != test.start {
			t.Errorf("(%d) illegal move mutated board to %q", i, b.String())
		}
	}
}

func TestState(t *testing.T) {
	for i, test := range []struct {
		board string
		state GameState
	}{
		{"_________", Ongoing},
		{"x________", Ongoing},
		{"xxx______", CrossWins},
		{"___xxx___", CrossWins},
		{"______xxx", CrossWins},
		{"x__x__x__", CrossWins},
		{"_x__x__x_", CrossWins},
		{"__x__x__x", CrossWins},
		{"x___x___x", CrossWins},
		{"__x_x_x__", CrossWins},
		{"ooo______", NaughtWins},
		{"o__o__o__", NaughtWins},
		{"o___o___o", NaughtWins},
		{"xoxxoxoxo", Draw},
		{"xoxoxxoxo", Draw},
		{"xox___oxo", Ongoing},
		// Win on a diagonal with noise in the corners
		{"xoo_x___x", CrossWins},
	} {
		b := MakeBoard()
		if !b.Load(test.board) {
			t.Fatalf("(%d) failed to load %q", i, test.board)
		}
		if got := b.State(); got != test.state {
			t.Errorf("(%d) State(%q) = %v, want %v",
				i, test.board, got, test.state)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, spec := range []string{
		"_________",
		"x________",
		"xoxxoxoxo",
		"____x____",
		"oxoxoxoxo",
	} {
		b := MakeBoard()
		if !b.Load(spec) {
			t.Fatalf("failed to load %q", spec)
		}
		if got := b.String(); got != spec {
			t.Errorf("round trip of %q returned %q", spec, got)
		}
	}
}

func TestLoadInvalid(t *testing.T) {
	b := MakeBoard()
	if !b.SetTile(0, Cross) {
		t.Fatal("setup move rejected")
	}

	for _, spec := range []string{
		"",
		"x",
		"xxxxxxxxxx",
		"ab_______",
		"XOX______", // wrong case
	} {
		if b.Load(spec) {
			t.Errorf("Load(%q) accepted", spec)
		}
		if b.String() != "x________" {
			t.Fatalf("invalid load mutated board to %q", b.String())
		}
	}
}

func TestReset(t *testing.T) {
	b := MakeBoard()
	b.SetTile(0, Cross)
	b.SetTile(4, Naught)
	b.Reset()
	if b.String() != "_________" {
		t.Errorf("Reset left board as %q", b.String())
	}
	if b.State() != Ongoing {
		t.Errorf("Reset board is %v", b.State())
	}
}
