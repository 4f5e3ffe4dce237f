// Web request handlers
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
	"context"
	"html/template"
	"net/http"
	"time"

	ttt "go-ttt"
)

const dbTimeout = 20 * time.Second

// Generate the leaderboard index page
func (s *web) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	users, err := s.conf.DB.Scores(ctx)
	if err != nil {
		s.conf.Log.Print(err)
		http.Error(w, "Leaderboard unavailable", http.StatusInternalServerError)
		return
	}

	var online []string
	if s.conf.Room != nil {
		online = s.conf.Room.Names()
	}

	w.Header().Add("Content-Type", "text/html")
	w.Header().Add("Cache-Control", "max-age=60")
	err = tmpl.ExecuteTemplate(w, "index.tmpl", struct {
		Users  []*ttt.User
		Online []string
	}{users, online})
	if err != nil {
		s.conf.Log.Print(err)
	}
}

// Generate the about page
func (s *web) showAbout(w http.ResponseWriter, r *http.Request) {
	s.alock.RLock()
	page := s.about
	s.alock.RUnlock()

	w.Header().Add("Content-Type", "text/html")
	err := tmpl.ExecuteTemplate(w, "about.tmpl", struct {
		About template.HTML
	}{page})
	if err != nil {
		s.conf.Log.Print(err)
	}
}
