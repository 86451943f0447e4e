// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	kitprom "github.com/go-kit/kit/metrics/prometheus"
	"github.com/lopezator/migrator"
	"github.com/mattn/go-sqlite3"
	stdprom "github.com/prometheus/client_golang/prometheus"
)

var (
	sqliteConnections = kitprom.NewGaugeFrom(stdprom.GaugeOpts{
		Name: "sqlite_connections",
		Help: "How many sqlite connections and what status they're in.",
	}, []string{"state"})

	sqliteVersionLogOnce sync.Once

	sqliteMigrations = migrator.Migrations(
		execsql(
			"create_users",
			`create table if not exists users(email primary key not null, first_name, last_name, created_at datetime);`,
		),
		execsql(
			"create_accounts",
			`create table if not exists accounts(iban primary key not null, owner_email not null, account_type, currency, created_at datetime);`,
		),
		execsql(
			"create_cards",
			`create table if not exists cards(card_number primary key not null, account_iban not null, card_type, created_at datetime);`,
		),
		execsql(
			"create_aliases",
			`create table if not exists aliases(alias primary key not null, iban not null);`,
		),
		execsql(
			"create_commerciants",
			`create table if not exists commerciants(name primary key not null, account_iban, category, strategy);`,
		),
	)
)

type sqlite struct {
	path string

	connections *kitprom.Gauge
	logger      log.Logger

	err error
}

func (s *sqlite) Connect(ctx context.Context) (*sql.DB, error) {
	if s == nil {
		return nil, fmt.Errorf("nil %T", s)
	}
	if s.err != nil {
		return nil, fmt.Errorf("sqlite had error %v", s.err)
	}

	sqliteVersionLogOnce.Do(func() {
		if v, _, _ := sqlite3.Version(); v != "" {
			s.logger.Log("main", fmt.Sprintf("sqlite version %s", v))
		}
	})

	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return db, err
	}

	// Migrate our database
	if m, err := migrator.New(sqliteMigrations); err != nil {
		return db, err
	} else {
		if err := m.Migrate(db); err != nil {
			return db, err
		}
	}

	// Spin up metrics only after everything works
	go func() {
		t := time.NewTicker(1 * time.Second)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				stats := db.Stats()
				s.connections.With("state", "idle").Set(float64(stats.Idle))
				s.connections.With("state", "inuse").Set(float64(stats.InUse))
				s.connections.With("state", "open").Set(float64(stats.OpenConnections))
			}
		}
	}()

	return db, err
}

func sqliteConnection(logger log.Logger, path string) *sqlite {
	return &sqlite{
		path:        path,
		logger:      logger,
		connections: sqliteConnections,
	}
}

// TestSQLiteDB is a wrapper around sql.DB for SQLite connections designed for tests to provide
// a clean database for each testcase. Callers should cleanup with Close() when finished.
type TestSQLiteDB struct {
	DB *sql.DB

	shutdown func() // context shutdown func
}

func (r *TestSQLiteDB) Close() error {
	r.shutdown()
	return r.DB.Close()
}

// CreateTestSqliteDB returns a TestSQLiteDB which can be used in tests
// as a clean in-memory sqlite database. All migrations are ran on the db before.
//
// Callers should call close on the returned *TestSQLiteDB.
func CreateTestSqliteDB(t *testing.T) *TestSQLiteDB {
	t.Helper()

	ctx, cancelFunc := context.WithCancel(context.Background())

	// a private in-memory database per test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sqliteConnection(log.NewNopLogger(), dsn).Connect(ctx)
	if err != nil {
		cancelFunc()
		t.Fatalf("sqlite test: %v", err)
	}

	return &TestSQLiteDB{DB: db, shutdown: cancelFunc}
}

// SqliteUniqueViolation returns true when the provided error matches the SQLite error
// for duplicate entries (violating a unique table constraint).
func SqliteUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	match := UniqueViolation(err)
	if e, ok := err.(sqlite3.Error); ok {
		return match || e.Code == sqlite3.ErrConstraint
	}
	return match
}
