// Web interface generator
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

package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	ttt "go-ttt"
)

//go:embed static
var static embed.FS

//go:embed *.tmpl
var html embed.FS

var (
	// Template manager
	tmpl *template.Template

	// Custom template functions
	funcs = template.FuncMap{
		"inc": func(i int) int {
			return i + 1
		},
		"now": func() string {
			return time.Now().Format(time.RFC3339)
		},
		"version": func() string {
			return ttt.Version
		},
		"played": func(u *ttt.User) uint64 {
			return u.Wins + u.Losses + u.Draws
		},
		"rate": func(u *ttt.User) string {
			total := u.Wins + u.Losses + u.Draws
			if total == 0 {
				return "-"
			}
			return fmt.Sprintf("%.0f%%", 100*float64(u.Wins)/float64(total))
		},
		"are": func(n int) string {
			if n == 1 {
				return "is"
			}
			return "are"
		},
	}
)
