// Configuration Specification and Management
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

package conf

import (
	"io"
	"log"
)

// Internal representation of the configuration file
type conf struct {
	Debug    bool `toml:"debug"`
	Database struct {
		File string `toml:"file"`
	} `toml:"database"`
	Proto struct {
		Port      uint `toml:"port"`
		Websocket bool `toml:"websocket"`
	} `toml:"proto"`
	Web struct {
		Enabled bool   `toml:"enabled"`
		Port    uint   `toml:"port"`
		About   string `toml:"about"`
	} `toml:"web"`
}

// Public configuration
type Conf struct {
	Log   *log.Logger
	Debug *log.Logger

	// Protocol Configuration
	TCPPort   uint16 // Port for accepting connections
	WebSocket bool   // Are Websocket connections enabled

	// Database Configuration
	Database string // File to store the database
	DB       DatabaseManager

	// Chat and game state
	Room RoomManager
	Game GameManager

	// Website configuration
	WebInterface bool   // Has the web interface been enabled?
	About        string // Path to a template file containing the "about" site
	WebPort      uint16 // Port that the web server listens on

	// Internal state
	man []Manager // List of system managers
	run bool      // Running flag
}

// Configuration object used by default
var defaultConfig = Conf{
	Log:   log.Default(),
	Debug: log.New(io.Discard, "", 0),

	// Protocol Configuration
	TCPPort:   2671,
	WebSocket: true,

	// Database configuration
	Database: "ttt.db",

	// Website configuration
	WebInterface: true,
	WebPort:      8080,
	About:        "about.html",
}
