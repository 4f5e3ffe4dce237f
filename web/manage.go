// Web interface manager
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
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-ttt/conf"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const about = `<p>This server hosts a chat room with an attached game of Tic-Tac-Toe.</p>`

type web struct {
	conf *conf.Conf
	mux  *http.ServeMux
	srv  *http.Server

	alock sync.RWMutex
	about template.HTML
}

func (s *web) listen() {
	addr := fmt.Sprintf(":%d", s.conf.WebPort)
	s.conf.Log.Printf("Listening via HTTP on %s", addr)

	s.srv = &http.Server{Addr: addr, Handler: s.mux}
	err := s.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.conf.Log.Print(err)
	}
}

// Load the operator-provided about page, falling back to the built-in
// default if the file is missing or empty.
func (s *web) loadAbout() {
	page := about
	if s.conf.About != "" {
		contents, err := os.ReadFile(s.conf.About)
		if err != nil {
			if !os.IsNotExist(err) {
				s.conf.Log.Print(err)
			}
		} else if len(contents) > 0 {
			page = string(contents)
		}
	}

	s.alock.Lock()
	s.about = template.HTML(page)
	s.alock.Unlock()
}

// Reload the about page whenever the operator edits the file.  Editors
// usually replace the file instead of writing in place, so the watch
// is on the containing directory.
func (s *web) watchAbout() {
	if s.conf.About == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.conf.Log.Print(err)
		return
	}

	dir := filepath.Dir(s.conf.About)
	if err := watcher.Add(dir); err != nil {
		s.conf.Log.Print(err)
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.conf.About) {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					s.conf.Debug.Printf("Reloading %s", s.conf.About)
					s.loadAbout()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.conf.Log.Print(err)
			}
		}
	}()
}

func (s *web) Start() {
	// Prepare HTTP Multiplexer
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/about", s.showAbout)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /")
	})
	s.mux.Handle("/static/", http.FileServer(http.FS(static)))
	s.mux.HandleFunc("/", s.index)

	// Install the WebSocket handler
	if s.conf.WebSocket {
		s.conf.Log.Print("Accepting websocket connections on /socket")
		s.mux.HandleFunc("/socket", upgrader(s.conf))
	}

	// Parse templates
	tmpl = template.Must(template.New("").Funcs(funcs).ParseFS(html, "*.tmpl"))
	s.loadAbout()
	s.watchAbout()

	s.listen()
}

func (s *web) Shutdown() {
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.conf.Log.Print(err)
	}
}

func (*web) String() string { return "Web Server" }

func Prepare(conf *conf.Conf) {
	if !conf.WebInterface {
		return
	}

	conf.Register(&web{conf: conf})
}
