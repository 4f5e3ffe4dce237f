// Database management
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

package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	ttt "go-ttt"
	"go-ttt/conf"
)

//go:embed *.sql
var sql_dir embed.FS

// Well-known keys of the match table
const (
	keyPlayer1 = "Player1"
	keyPlayer2 = "Player2"
	keyTurn    = "CurrentTurn"
)

type db struct {
	conf *conf.Conf

	// The database connections
	read  *sql.DB
	write *sql.DB

	// The SQL statements are stored as *.sql files and loaded on
	// startup.  QUERIES are the statements prepared on READ,
	// COMMANDS are the statements prepared on WRITE.
	queries  map[string]*sql.Stmt
	commands map[string]*sql.Stmt
}

func (db *db) TestConnection(ctx context.Context) error {
	if err := db.read.PingContext(ctx); err != nil {
		return err
	}
	var one int
	return db.read.QueryRowContext(ctx, "SELECT 1;").Scan(&one)
}

// Check if an error is a sqlite uniqueness violation
func taken(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) &&
		serr.Code == sqlite3.ErrConstraint
}

func (db *db) Register(ctx context.Context, name, pass string) (*ttt.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	_, err = db.commands["insert-user"].ExecContext(ctx, name, string(hash))
	if err != nil {
		if taken(err) {
			return nil, ttt.ErrUsernameTaken
		}
		return nil, err
	}

	return db.lookup(ctx, name)
}

// Look a user up by name, without comparing passwords
func (db *db) lookup(ctx context.Context, name string) (*ttt.User, error) {
	var (
		u    ttt.User
		hash string
	)
	err := db.queries["select-user"].QueryRowContext(ctx, name).Scan(
		&u.Id, &u.Name, &hash, &u.Wins, &u.Losses, &u.Draws)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ttt.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *db) Login(ctx context.Context, name, pass string) (*ttt.User, error) {
	var (
		u    ttt.User
		hash string
	)
	err := db.queries["select-user"].QueryRowContext(ctx, name).Scan(
		&u.Id, &u.Name, &hash, &u.Wins, &u.Losses, &u.Draws)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ttt.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
	if err != nil {
		return nil, ttt.ErrWrongPassword
	}
	return &u, nil
}

func (db *db) Rename(ctx context.Context, oldName, newName string) error {
	old, err := db.lookup(ctx, oldName)
	if err != nil {
		return err
	}

	if cur, err := db.lookup(ctx, newName); err == nil && cur.Id != old.Id {
		return ttt.ErrUsernameTaken
	} else if err != nil && !errors.Is(err, ttt.ErrUserNotFound) {
		return err
	}

	_, err = db.commands["update-name"].ExecContext(ctx, newName, oldName)
	if taken(err) {
		return ttt.ErrUsernameTaken
	}
	return err
}

func (db *db) bump(ctx context.Context, stmt, name string) error {
	res, err := db.commands[stmt].ExecContext(ctx, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ttt.ErrUserNotFound
	}
	return nil
}

func (db *db) IncrementWins(ctx context.Context, name string) error {
	return db.bump(ctx, "update-wins", name)
}

func (db *db) IncrementLosses(ctx context.Context, name string) error {
	return db.bump(ctx, "update-losses", name)
}

func (db *db) IncrementDraws(ctx context.Context, name string) error {
	return db.bump(ctx, "update-draws", name)
}

func (db *db) Stats(ctx context.Context, name string) (*ttt.User, error) {
	return db.lookup(ctx, name)
}

func (db *db) Scores(ctx context.Context) ([]*ttt.User, error) {
	rows, err := db.queries["select-scores"].QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*ttt.User
	for rows.Next() {
		var u ttt.User
		err = rows.Scan(&u.Id, &u.Name, &u.Wins, &u.Losses, &u.Draws)
		if err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// SaveMatch upserts the three match keys in one transaction.  Empty
// strings are stored as NULL.
func (db *db) SaveMatch(ctx context.Context, player1, player2, turn string) error {
	tx, err := db.write.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, kv := range []struct {
		key, val string
	}{
		{keyPlayer1, player1},
		{keyPlayer2, player2},
		{keyTurn, turn},
	} {
		var val sql.NullString
		if kv.val != "" {
			val = sql.NullString{String: kv.val, Valid: true}
		}
		_, err = tx.Stmt(db.commands["upsert-match"]).ExecContext(ctx, kv.key, val)
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				log.Print(rerr)
			}
			return err
		}
	}

	return tx.Commit()
}

func (db *db) LoadMatch(ctx context.Context) (player1, player2, turn string, err error) {
	rows, err := db.queries["select-match"].QueryContext(ctx)
	if err != nil {
		return "", "", "", err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			val sql.NullString
		)
		if err = rows.Scan(&key, &val); err != nil {
			return "", "", "", err
		}
		switch key {
		case keyPlayer1:
			player1 = val.String
		case keyPlayer2:
			player2 = val.String
		case keyTurn:
			turn = val.String
		}
	}
	return player1, player2, turn, rows.Err()
}

func (db *db) ClearMatch(ctx context.Context) error {
	_, err := db.commands["delete-match"].ExecContext(ctx)
	return err
}

func (db *db) Start() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGUSR1)
	tick := time.NewTicker(24 * time.Hour)
	for {
		var err error
		select {
		case <-c:
			// https://www.sqlite.org/lang_vacuum.html
			_, err = db.write.Exec("VACUUM;")
		case <-tick.C:
			// https://www.sqlite.org/pragma.html#pragma_optimize
			_, err = db.write.Exec("PRAGMA optimize;")
		}
		if err != nil {
			log.Print(err)
		}
	}
}

func (db *db) Shutdown() {
	var err error

	// https://www.sqlite.org/pragma.html#pragma_optimize
	_, err = db.write.Exec("PRAGMA optimize;")
	if err != nil {
		log.Print(err)
	}

	err = db.write.Close()
	if err != nil {
		log.Print(err)
	}

	err = db.read.Close()
	if err != nil {
		log.Print(err)
	}
}

func (*db) String() string { return "Database Manager" }

// Initialise the database and register the database manager
func Prepare(c *conf.Conf) {
	d, err := open(c.Database)
	if err != nil {
		c.Log.Fatal(err, ": ", c.Database)
	}
	d.conf = c
	c.Register(conf.DatabaseManager(d))
}

func open(file string) (*db, error) {
	read, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	read.SetConnMaxLifetime(0)
	read.SetMaxIdleConns(1)

	write, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	write.SetConnMaxLifetime(0)
	write.SetMaxIdleConns(1)
	write.SetMaxOpenConns(1)

	db := &db{
		queries:  make(map[string]*sql.Stmt),
		commands: make(map[string]*sql.Stmt),
		write:    write,
		read:     read,
	}

	for _, pragma := range []string{
		// https://www.sqlite.org/pragma.html#pragma_journal_mode
		"journal_mode = WAL",
		// https://www.sqlite.org/pragma.html#pragma_synchronous
		"synchronous = normal",
		// https://www.sqlite.org/pragma.html#pragma_temp_store
		"temp_store = memory",
		// https://www.sqlite.org/pragma.html#pragma_foreign_keys
		"foreign_keys = on",
	} {
		ttt.Debug.Printf("Run PRAGMA %v", pragma)
		_, err = db.write.Exec("PRAGMA " + pragma + ";")
		if err != nil {
			return nil, err
		}
	}

	entries, err := sql_dir.ReadDir(".")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		base := path.Base(entry.Name())
		data, err := fs.ReadFile(sql_dir, entry.Name())
		if err != nil {
			return nil, err
		}

		if strings.HasPrefix(base, "create-") {
			_, err = db.write.Exec(string(data))
			ttt.Debug.Printf("Executed query %v", base)
		} else {
			stmt := strings.TrimSuffix(base, ".sql")
			if strings.HasPrefix(stmt, "select-") {
				db.queries[stmt], err = db.read.Prepare(string(data))
				ttt.Debug.Printf("Registered query %v", stmt)
			} else {
				db.commands[stmt], err = db.write.Prepare(string(data))
				ttt.Debug.Printf("Registered command %v", stmt)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if len(db.queries) == 0 {
		panic("No queries loaded")
	}

	return db, nil
}
