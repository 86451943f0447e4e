// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package database opens the SQLite database backing the optional sqlite
// ledger backend. The default DSN is in-memory, so nothing survives a run.
package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/lopezator/migrator"
)

// InMemoryPath is a shared-cache in-memory SQLite DSN. Shared cache keeps
// every connection from database/sql's pool on the same database.
const InMemoryPath = "file:banksim?mode=memory&cache=shared"

// New establishes a SQLite database connection and runs migrations.
// An empty path selects the in-memory database.
func New(ctx context.Context, logger log.Logger, path string) (*sql.DB, error) {
	if path == "" {
		path = InMemoryPath
	}
	return sqliteConnection(logger, path).Connect(ctx)
}

func execsql(name, raw string) *migrator.MigrationNoTx {
	return &migrator.MigrationNoTx{
		Name: name,
		Func: func(db *sql.DB) error {
			_, err := db.Exec(raw)
			return err
		},
	}
}

// UniqueViolation returns true when the provided error matches a database error
// for duplicate entries (violating a unique table constraint).
func UniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
