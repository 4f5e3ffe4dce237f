// Username validation and store errors
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

package ttt

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

var name = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// Names that may not be registered, compared case-insensitively
var reserved = []string{"host", "server", "admin", "moderator"}

// ValidateName checks a requested username against the format and
// reserved-word rules.  A nil return means the name is acceptable;
// otherwise the error text is suitable for sending to the client.
func ValidateName(s string) error {
	if !name.MatchString(s) {
		return errors.New("usernames must be 3-16 letters, digits or underscores")
	}
	for _, r := range reserved {
		if strings.EqualFold(s, r) {
			return errors.New("that name is reserved")
		}
	}
	return nil
}
