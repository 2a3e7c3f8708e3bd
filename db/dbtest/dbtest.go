// Package dbtest provides in-memory sqlite databases carrying the same
// tables as the production migrations, for handler and store tests.
package dbtest

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const Users = `
CREATE TABLE users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	points        INTEGER DEFAULT 0 CHECK (points >= 0),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const Spots = `
CREATE TABLE spots (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL,
	latitude     REAL NOT NULL,
	longitude    REAL NOT NULL,
	spot_type    TEXT NOT NULL,
	tips         TEXT,
	image_url    TEXT,
	created_by   INTEGER NOT NULL,
	creator_name TEXT,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const Media = `
CREATE TABLE media (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	spot_id     INTEGER NOT NULL,
	image_url   TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	uploaded_by INTEGER NOT NULL,
	uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Open returns a fresh in-memory database with the given tables. The pool
// is pinned to one connection so every query sees the same memory database.
func Open(t *testing.T, schema ...string) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}
