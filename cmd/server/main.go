// Entry point
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

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go-ttt/chat"
	"go-ttt/conf"
	"go-ttt/db"
	"go-ttt/game"
	"go-ttt/host"
	"go-ttt/proto"
	"go-ttt/web"
)

// Default file name for the configuration file
const defconf = "server.toml"

func main() {
	var (
		confFile = flag.String("conf", defconf, "Name of configuration file")
		dumpConf = flag.Bool("dump-config", false, "Dump default configuration")
		port     = flag.Uint("port", 0, "Override the accept port")
	)

	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage:\n",
			os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load the configuration from disk (if available)
	config, err := conf.Open(*confFile)
	if err != nil {
		if !os.IsNotExist(err) || *confFile != defconf {
			log.Fatal(err)
		}
		config = conf.Default()
	}
	config.Debug.Println("Debug logging has been enabled")
	if *port != 0 {
		config.TCPPort = uint16(*port)
	}

	// Dump the configuration onto the disk if requested
	if *dumpConf {
		err = config.Dump(os.Stdout)
		if err != nil {
			log.Fatalln("Failed to dump default configuration:", err)
		}
		os.Exit(0)
	}

	// Enable the database
	db.Prepare(config)

	// Track connected users and route chat
	chat.Prepare(config)

	// Coordinate the shared Tic-Tac-Toe match
	game.Prepare(config)

	// Allow TCP connections
	proto.Prepare(config)

	// Enable the web interface
	web.Prepare(config)

	// Read privileged commands from the terminal
	host.Prepare(config)

	// Launch the server
	config.Start()
}
