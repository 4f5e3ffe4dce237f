// Chat room and message routing
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

package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	ttt "go-ttt"
	"go-ttt/conf"
	"go-ttt/metrics"
)

// Room is the connected-user set and the chat router.  Membership
// checks, insertions, removals and broadcast snapshots all happen
// under one lock.
type Room struct {
	conf *conf.Conf

	lock  sync.Mutex
	users map[string]ttt.Session // case-folded name -> session
}

func (*Room) String() string { return "Chat Room" }

func (r *Room) Start() {}

// Shutdown closes every connected session, best-effort
func (r *Room) Shutdown() {
	r.lock.Lock()
	snapshot := make([]ttt.Session, 0, len(r.users))
	for _, s := range r.users {
		snapshot = append(snapshot, s)
	}
	r.lock.Unlock()

	for _, s := range snapshot {
		s.Close()
	}
}

func fold(name string) string {
	return strings.ToLower(name)
}

// Join inserts an authenticated session into the connected set.  At
// most one session per case-folded username may be connected.
func (r *Room) Join(s ttt.Session) error {
	name := s.Name()
	if name == "" {
		return errors.New("not authenticated.")
	}

	r.lock.Lock()
	if _, ok := r.users[fold(name)]; ok {
		r.lock.Unlock()
		return errors.New("that user is already logged in.")
	}
	r.users[fold(name)] = s
	r.lock.Unlock()

	r.send(fmt.Sprintf("[Server]: %s joined the chat.", name), s)
	return nil
}

// Remove a session from the set without announcing anything.  Reports
// whether the session was a member.
func (r *Room) remove(s ttt.Session) bool {
	name := s.Name()
	if name == "" {
		return false
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if cur, ok := r.users[fold(name)]; !ok || cur != s {
		return false
	}
	delete(r.users, fold(name))
	return true
}

// Leave removes a session and tells the room.  Removing a session
// that never joined, or was already removed, is a no-op.
func (r *Room) Leave(s ttt.Session) {
	if r.remove(s) {
		r.send(fmt.Sprintf("[Server]: %s disconnected.", s.Name()), nil)
	}
}

func (r *Room) Find(name string) (ttt.Session, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	s, ok := r.users[fold(name)]
	return s, ok
}

func (r *Room) Names() []string {
	r.lock.Lock()
	names := make([]string, 0, len(r.users))
	for _, s := range r.users {
		names = append(names, s.Name())
	}
	r.lock.Unlock()

	sort.Slice(names, func(i, j int) bool {
		return fold(names[i]) < fold(names[j])
	})
	return names
}

// Send LINE to every connected session except EXCLUDE.  The set is
// snapshot under the lock and the writes happen outside of it, so a
// slow or broken peer never stalls membership changes.  Failed
// recipients are quarantined: removed from the set and disconnected
// after the loop.
func (r *Room) send(line string, exclude ttt.Session) {
	r.lock.Lock()
	snapshot := make([]ttt.Session, 0, len(r.users))
	for _, s := range r.users {
		if s != exclude {
			snapshot = append(snapshot, s)
		}
	}
	r.lock.Unlock()

	var failed []ttt.Session
	for _, s := range snapshot {
		if err := s.Send("%s", line); err != nil {
			failed = append(failed, s)
		}
	}
	for _, s := range failed {
		r.conf.Debug.Printf("Quarantined %s", s.Name())
		r.remove(s)
		s.Close()
	}
}

func (r *Room) Announce(format string, args ...interface{}) {
	r.send(fmt.Sprintf(format, args...), nil)
}

// Chat broadcasts a plain chat line from a user to the whole room
func (r *Room) Chat(from ttt.Session, msg string) {
	metrics.MessagesRouted.Inc()
	r.send(fmt.Sprintf("[%s]: %s", from.Name(), msg), nil)
}

func (r *Room) Whisper(from ttt.Session, target, msg string) error {
	t, ok := r.Find(target)
	if !ok {
		return fmt.Errorf("no such user: %s.", target)
	}

	if err := t.Send("[Whisper from %s]: %s", from.Name(), msg); err != nil {
		r.remove(t)
		t.Close()
		return fmt.Errorf("could not deliver to %s.", t.Name())
	}
	metrics.WhispersSent.Inc()
	return from.Send("[You whispered to %s]: %s", t.Name(), msg)
}

// Roll announces a uniform random number between 1 and MAX to the room
func (r *Room) Roll(from ttt.Session, max int) {
	if max < 1 {
		max = 1
	}
	k := rand.Intn(max) + 1
	r.Announce("[Roll] %s rolled a %d (1 – %d)", from.Name(), k, max)
}

// Rename changes a user's name, in the store and in the room.  The
// new name must be valid and taken by nobody else, neither in the
// credential store nor in the connected set.
func (r *Room) Rename(from ttt.Session, newName string) error {
	old := from.Name()
	if old == "" {
		return errors.New("not authenticated.")
	}
	if err := ttt.ValidateName(newName); err != nil {
		return err
	}

	if cur, ok := r.Find(newName); ok && cur != from {
		return ttt.ErrUsernameTaken
	}

	if err := r.conf.DB.Rename(context.Background(), old, newName); err != nil {
		return err
	}

	r.lock.Lock()
	delete(r.users, fold(old))
	r.users[fold(newName)] = from
	r.lock.Unlock()
	from.SetName(newName)

	r.Announce("[%s] is now known as [%s]", old, newName)
	return nil
}

// Kick disconnects a user.  BY is the moderator session requesting
// the kick, or nil when the host console forces the disconnect.
func (r *Room) Kick(by ttt.Session, target string) error {
	t, ok := r.Find(target)
	if !ok {
		return fmt.Errorf("no such user: %s.", target)
	}

	kicker := "the host"
	if by != nil {
		if t == by {
			return errors.New("you cannot kick yourself.")
		}
		if t.Moderator() {
			return errors.New("moderators cannot be kicked.")
		}
		kicker = by.Name()
	}

	name := t.Name()
	_ = t.Send("You were kicked by %s.", kicker)
	r.remove(t)
	t.Close()
	r.Announce("[Server]: %s was kicked by %s.", name, kicker)
	return nil
}

func (r *Room) SetModerator(name string, on bool) (ttt.Session, bool) {
	s, ok := r.Find(name)
	if !ok {
		return nil, false
	}
	s.SetModerator(on)
	return s, true
}

func (r *Room) Moderators() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	var mods []string
	for _, s := range r.users {
		if s.Moderator() {
			mods = append(mods, s.Name())
		}
	}
	sort.Strings(mods)
	return mods
}

func Prepare(c *conf.Conf) {
	c.Register(conf.RoomManager(&Room{
		conf:  c,
		users: make(map[string]ttt.Session),
	}))
}
