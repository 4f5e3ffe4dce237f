// Host console
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

// Package host reads privileged commands from the operator terminal.
// Console lines never enter the wire dispatcher and the host itself
// never occupies a chat or game username.
package host

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"go-ttt/bot"
	"go-ttt/conf"
)

type console struct {
	conf *conf.Conf
	in   io.Reader
}

func (*console) String() string { return "Host Console" }

func (h *console) Start() {
	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		h.interpret(strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		h.conf.Log.Print(err)
	}
}

// Shutdown is a no-op; the console ends with the process, as a
// blocked stdin read cannot be interrupted portably.
func (h *console) Shutdown() {}

func (h *console) interpret(line string) {
	if line == "" {
		return
	}

	verb, args := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		verb, args = line[:i], strings.TrimSpace(line[i+1:])
	}

	log := h.conf.Log
	switch strings.ToLower(verb) {
	case "!mod":
		s, ok := h.conf.Room.Find(args)
		if !ok {
			log.Printf("No such user: %s", args)
			return
		}
		if s.Moderator() {
			s.SetModerator(false)
			_ = s.Send("[Server]: You are no longer a moderator.")
			log.Printf("%s is no longer a moderator", s.Name())
		} else {
			s.SetModerator(true)
			_ = s.Send("[Server]: You are now a moderator.")
			log.Printf("%s is now a moderator", s.Name())
		}
	case "!mods":
		mods := h.conf.Room.Moderators()
		if len(mods) == 0 {
			log.Print("No moderators")
			return
		}
		log.Printf("Moderators: %s", strings.Join(mods, ", "))
	case "!kick":
		// The host may kick anyone, moderators included
		if err := h.conf.Room.Kick(nil, args); err != nil {
			log.Print(err)
		}
	case "!bot":
		strat, name := bot.MakeMinMax(), "Minimax"
		if strings.EqualFold(args, "easy") {
			strat, name = bot.MakeRandom(), "Randy"
		}
		if err := bot.Spawn(h.conf, strat, name); err != nil {
			log.Print(err)
			return
		}
		log.Printf("Seated %s (%s)", name, strat)
	case "!dbtest":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.conf.DB.TestConnection(ctx); err != nil {
			log.Printf("Database connection failed: %s", err)
			return
		}
		log.Print("Database connection OK.")
	default:
		log.Printf("Unknown console command: %s", verb)
	}
}

func Prepare(c *conf.Conf) {
	c.Register(conf.Manager(&console{conf: c, in: os.Stdin}))
}
