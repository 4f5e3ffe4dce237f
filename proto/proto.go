// Protocol Handling
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

package proto

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode"

	ttt "go-ttt"
	"go-ttt/metrics"
)

var (
	// Error to return if a message couldn't be parsed
	errArgumentMismatch = errors.New("argument mismatch")

	errMissingQuote = errors.New("missing closing quote")
)

const loginPrompt = "Please login or register first. " +
	"Use !login <user> <pass> or !register <user> <pass>."

// Split a line into the command verb and the argument remainder.  The
// remainder is forwarded verbatim.
func split(line string) (verb, args string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeftFunc(line[i:], unicode.IsSpace)
}

// parse destructs RAW and tries to assign the fields to PARAMS.
// Fields may be quoted to include spaces.
func parse(raw string, params ...*string) error {
	var (
		inquotes bool
		escape   bool

		i   int
		arg string
	)

	fields := strings.FieldsFunc(raw, func(c rune) bool {
		if inquotes {
			if escape {
				escape = false
				return false
			} else if c == '"' {
				inquotes = false
				return true
			} else {
				escape = c == '\\'
				return false
			}
		} else {
			inquotes = c == '"'
			return unicode.IsSpace(c) || inquotes
		}
	})

	for i, arg = range fields {
		if i >= len(params) {
			return errArgumentMismatch
		}
		*params[i] = arg
	}

	if len(fields) != len(params) {
		return errArgumentMismatch
	}

	return nil
}

// Destruct a whisper argument list into target and message.  The
// target may be quoted to allow display names containing spaces.
func whisperTarget(args string) (target, msg string, err error) {
	if strings.HasPrefix(args, `"`) {
		end := strings.Index(args[1:], `"`)
		if end < 0 {
			return "", "", errMissingQuote
		}
		target = args[1 : 1+end]
		msg = strings.TrimLeftFunc(args[2+end:], unicode.IsSpace)
	} else {
		target, msg = split(args)
	}

	if target == "" || strings.TrimSpace(msg) == "" {
		return "", "", errors.New("whisper needs a target and a message")
	}
	return target, msg, nil
}

// Interpret parses and evaluates INPUT, guarded by the session state
func (cli *Client) interpret(input string) {
	input = strings.TrimSpace(input)
	if input == "" { // Empty frames are dropped
		cli.reply("Empty command ignored.")
		return
	}

	verb, args := split(input)
	verb = strings.ToLower(verb)

	switch {
	case cli.Name() == "":
		cli.loginState(verb, args)
	case cli.conf.Game.Seated(cli.Name()):
		cli.playingState(verb, args, input)
	default:
		cli.chattingState(verb, args, input)
	}
}

// Reply sends a single line back to the peer, ignoring transport
// errors; a broken transport is noticed by the read loop.
func (cli *Client) reply(format string, args ...interface{}) {
	_ = cli.Send(format, args...)
}

func (cli *Client) loginState(verb, args string) {
	ctx := context.Background()

	var user, pass string
	switch verb {
	case "!login":
		if parse(args, &user, &pass) != nil {
			cli.reply("[Server]: Usage: !login <user> <pass>")
			return
		}
		if _, online := cli.conf.Room.Find(user); online {
			metrics.LoginFailures.Inc()
			cli.reply("[Server]: That user is already logged in.")
			return
		}

		u, err := cli.conf.DB.Login(ctx, user, pass)
		switch {
		case errors.Is(err, ttt.ErrUserNotFound):
			metrics.LoginFailures.Inc()
			cli.reply("[Server]: Unknown username.")
			return
		case errors.Is(err, ttt.ErrWrongPassword):
			metrics.LoginFailures.Inc()
			cli.reply("[Server]: Wrong password.")
			return
		case err != nil:
			cli.conf.Log.Print(err)
			cli.reply("[Server]: The database is unavailable, try again later.")
			return
		}

		cli.setUser(u)
		if err := cli.conf.Room.Join(cli); err != nil {
			cli.setUser(nil)
			cli.reply("[Server]: %s", err)
			return
		}
		cli.reply("Login successful! Welcome back %s", u.Name)

	case "!register":
		if parse(args, &user, &pass) != nil {
			cli.reply("[Server]: Usage: !register <user> <pass>")
			return
		}
		if err := ttt.ValidateName(user); err != nil {
			cli.reply("[Server]: %s", capitalise(err))
			return
		}

		u, err := cli.conf.DB.Register(ctx, user, pass)
		switch {
		case errors.Is(err, ttt.ErrUsernameTaken):
			cli.reply("[Server]: Username already exists.")
			return
		case err != nil:
			cli.conf.Log.Print(err)
			cli.reply("[Server]: The database is unavailable, try again later.")
			return
		}

		cli.setUser(u)
		if err := cli.conf.Room.Join(cli); err != nil {
			cli.setUser(nil)
			cli.reply("[Server]: %s", err)
			return
		}
		cli.reply("Registration successful! Welcome %s", u.Name)

	case "!exit":
		cli.goodbye()

	default:
		cli.reply(loginPrompt)
	}
}

func (cli *Client) chattingState(verb, args, input string) {
	switch verb {
	case "!user":
		if err := cli.conf.Room.Rename(cli, strings.TrimSpace(args)); err != nil {
			cli.reply("[Server]: %s", capitalise(err))
		}
	case "!who":
		cli.reply("[Server]: Connected users: %s",
			strings.Join(cli.conf.Room.Names(), ", "))
	case "!commands":
		cli.commands()
	case "!about":
		cli.reply("[Server]: go-ttt %s, a chat server with a built-in game of Tic-Tac-Toe.",
			ttt.Version)
	case "!whisper":
		cli.whisper(args)
	case "!roll":
		cli.roll(args)
	case "!kick":
		if !cli.Moderator() {
			cli.reply("[Server]: Only moderators can kick.")
			return
		}
		if err := cli.conf.Room.Kick(cli, strings.TrimSpace(args)); err != nil {
			cli.reply("[Server]: %s", capitalise(err))
		}
	case "!join":
		if err := cli.conf.Game.Join(cli); err != nil {
			cli.reply("[Server]: %s", capitalise(err))
		}
	case "!scores":
		cli.scores()
	case "!exit":
		cli.goodbye()
	default:
		// Everything else, known verb or not, is chat
		cli.conf.Room.Chat(cli, input)
	}
}

func (cli *Client) playingState(verb, args, input string) {
	switch verb {
	case "!whisper":
		cli.whisper(args)
	case "!exit":
		cli.goodbye()
	case "!startgame":
		if err := cli.conf.Game.Begin(cli); err != nil {
			cli.reply("[Server]: %s", capitalise(err))
		}
	case "!move":
		tile, err := strconv.Atoi(strings.TrimSpace(args))
		if err != nil {
			cli.reply("[Server]: Usage: !move <0-8>")
			return
		}
		if err := cli.conf.Game.Move(cli, tile); err != nil {
			cli.reply("[Server]: %s", capitalise(err))
		}
	default:
		if strings.HasPrefix(verb, "!") {
			cli.reply("[Server]: Command not available while playing.")
			return
		}
		cli.conf.Room.Chat(cli, input)
	}
}

func (cli *Client) whisper(args string) {
	target, msg, err := whisperTarget(args)
	if err != nil {
		cli.reply("[Server]: %s", capitalise(err))
		return
	}
	if err := cli.conf.Room.Whisper(cli, target, msg); err != nil {
		cli.reply("[Server]: %s", capitalise(err))
	}
}

func (cli *Client) roll(args string) {
	max := 6
	if s := strings.TrimSpace(args); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			cli.reply("[Server]: Usage: !roll [N] with N at least 1.")
			return
		}
		max = n
	}
	cli.conf.Room.Roll(cli, max)
}

func (cli *Client) commands() {
	for _, line := range []string{
		"[Server]: Available commands:",
		"  !user <name>            change your username",
		"  !who                    list connected users",
		"  !whisper <user> <msg>   send a private message",
		"  !roll [N]               roll a die (default 1-6)",
		"  !join                   join the Tic-Tac-Toe game",
		"  !startgame              start the game (player 1)",
		"  !move <0-8>             place your mark",
		"  !scores                 show the leaderboard",
		"  !about                  about this server",
		"  !exit                   disconnect",
	} {
		cli.reply("%s", line)
	}
}

func (cli *Client) scores() {
	users, err := cli.conf.DB.Scores(context.Background())
	if err != nil {
		cli.conf.Log.Print(err)
		cli.reply("[Server]: The database is unavailable, try again later.")
		return
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tWins\tLosses\tDraws\n")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", u.Name, u.Wins, u.Losses, u.Draws)
	}
	if err := tw.Flush(); err != nil {
		cli.conf.Log.Print(err)
		return
	}

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		cli.reply("%s", line)
	}
}

// Upcase the first letter of an error for a user-visible reply
func capitalise(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
