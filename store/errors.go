// Package store holds the SQL behind each service. Every method maps driver
// errors through db.MapError so callers can test for db.ErrNotFound and
// db.ErrDuplicateKey.
package store

import "errors"

var (
	// ErrNotOwner is returned when a mutation targets a row created by
	// someone else.
	ErrNotOwner = errors.New("not the owner")

	// ErrNegativeBalance is returned when an award would take points below zero.
	ErrNegativeBalance = errors.New("points cannot go negative")
)
