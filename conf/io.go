// Configuration loading and dumping
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
	"os"

	ttt "go-ttt"

	"github.com/BurntSushi/toml"
)

// Parse a configuration from R into CONF
func load(r io.Reader) (*Conf, error) {
	// Load configuration data
	var data conf
	_, err := toml.NewDecoder(r).Decode(&data)
	if err != nil {
		return nil, err
	}

	// Create a configuration object
	c := defaultConfig

	// Apply configuration requests
	if data.Debug {
		ttt.Debug.SetOutput(os.Stderr)
		c.Debug = ttt.Debug
	}
	if data.Proto.Port != 0 {
		c.TCPPort = uint16(data.Proto.Port)
	}
	c.WebSocket = data.Proto.Websocket
	if data.Database.File != "" {
		c.Database = data.Database.File
	}
	c.WebInterface = data.Web.Enabled
	if data.Web.About != "" {
		c.About = data.Web.About
	}
	if data.Web.Port != 0 {
		c.WebPort = uint16(data.Web.Port)
	}

	return &c, nil
}

// Open a configuration file and return it
func Open(name string) (*Conf, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return load(file)
}

// Return a reference to the default configuration
func Default() *Conf {
	conf := defaultConfig
	return &conf
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	var data conf

	data.Database.File = c.Database
	data.Proto.Port = uint(c.TCPPort)
	data.Proto.Websocket = c.WebSocket
	data.Web.Enabled = c.WebInterface
	data.Web.About = c.About
	data.Web.Port = uint(c.WebPort)

	return toml.NewEncoder(wr).Encode(data)
}
