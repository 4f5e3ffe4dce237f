// Terminal client
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

// A terminal client for the chat and game server.  Ordinary lines are
// printed as-is; control tokens are consumed and rendered as a board.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	ttt "go-ttt"
)

// presenter tracks what the server told us about the match
type presenter struct {
	board  *ttt.Board
	mark   ttt.Mark // Blank while not seated
	myTurn bool
}

// Render the board as a numbered 3 by 3 grid.  Blank cells show their
// tile index so the player knows what to pass to !move.
func (p *presenter) render() {
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			i := 3*row + col
			if m := p.board.Tile(i); m != ttt.Blank {
				cells[col] = m.String()
			} else {
				cells[col] = strconv.Itoa(i)
			}
		}
		fmt.Printf(" %s | %s | %s\n", cells[0], cells[1], cells[2])
		if row < 2 {
			fmt.Println("---+---+---")
		}
	}
	if p.myTurn {
		fmt.Println("Your move (!move <0-8>).")
	}
}

// Interpret one server line.  Reports whether the line was a control
// token and has been consumed.
func (p *presenter) interpret(line string) bool {
	verb, rest, _ := strings.Cut(line, " ")
	switch verb {
	case ttt.TokPlayer1:
		p.mark = ttt.Cross
		fmt.Println("You are player 1 (X).  Start with !startgame.")
	case ttt.TokPlayer2:
		p.mark = ttt.Naught
		fmt.Println("You are player 2 (O).  Waiting for player 1 to start.")
	case ttt.TokSetTile:
		var tile int
		var mark string
		if _, err := fmt.Sscanf(rest, "%d %s", &tile, &mark); err != nil {
			return false
		}
		m := ttt.Cross
		if mark == ttt.Naught.String() {
			m = ttt.Naught
		}
		p.board.SetTile(tile, m)
		p.render()
	case ttt.TokYourTurn:
		p.myTurn = true
		p.render()
	case ttt.TokWaitTurn:
		p.myTurn = false
	case ttt.TokResetBoard:
		p.board.Reset()
	case ttt.TokLeaveGame:
		if p.mark != ttt.Blank {
			p.mark = ttt.Blank
			p.myTurn = false
			fmt.Println("You are back in the chat room.")
		}
	default:
		return false
	}
	return true
}

func main() {
	var (
		host = flag.String("host", "localhost", "Server host")
		port = flag.Uint("port", 2671, "Server port")
	)
	flag.Parse()

	addr := net.JoinHostPort(*host, strconv.FormatUint(uint64(*port), 10))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	fmt.Println("Connected to", addr)

	// Forward terminal input to the server
	go func() {
		stdin := bufio.NewScanner(os.Stdin)
		for stdin.Scan() {
			if _, err := fmt.Fprintln(conn, stdin.Text()); err != nil {
				return
			}
		}
		conn.Close()
	}()

	p := &presenter{board: ttt.MakeBoard()}
	lines := bufio.NewScanner(conn)
	for lines.Scan() {
		line := strings.TrimSuffix(lines.Text(), "\r")
		if !p.interpret(line) {
			fmt.Println(line)
		}
	}
	if err := lines.Err(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Connection closed.")
}
