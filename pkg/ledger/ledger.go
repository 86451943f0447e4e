// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package ledger is the registry of users, accounts, cards, commerciants
// and aliases for one batch run.
//
// The ledger enforces referential integrity only: an account needs a
// registered owner, a card needs a registered account, keys are unique.
// Business rules (funds checks, authorization) belong to the command layer.
package ledger

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
)

// Repository is the storage contract shared by every backend. All backends
// fail identically: registering a duplicate or an orphan is an integrity
// error, looking up an unknown key is a not-found error.
type Repository interface {
	RegisterUser(u *model.User) error
	RegisterAccount(a *model.Account) error
	RegisterCard(c *model.Card) error
	RegisterCommerciant(c *model.Commerciant) error

	// RegisterAlias points alias at an account. Re-registering an alias
	// overwrites the previous target.
	RegisterAlias(alias, iban string) error

	// RemoveAccount detaches the account from its owner and drops all of
	// its cards and aliases from the registry.
	RemoveAccount(iban string) error
	RemoveCard(number string) error

	UserByEmail(email string) (*model.User, error)
	AccountByIBAN(iban string) (*model.Account, error)
	AccountByAlias(alias string) (*model.Account, error)
	CommerciantByName(name string) (*model.Commerciant, error)

	// CardByNumber resolves a card and the account it is attached to.
	CardByNumber(number string) (*model.Card, *model.Account, error)

	// Users lists registered users in registration order.
	Users() []*model.User

	// AccountsOf lists a user's accounts in creation order.
	AccountsOf(u *model.User) []*model.Account
}

// New creates a Repository for the configured backend. The db argument is
// only consulted by the sqlite backend.
func New(logger log.Logger, backend string, db *sql.DB) (Repository, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	switch strings.ToLower(backend) {
	case "", "indexed":
		return NewIndexed(logger), nil
	case "derived":
		return NewDerived(logger), nil
	case "sqlite":
		if db == nil {
			return nil, fmt.Errorf("ledger: sqlite backend requires a database")
		}
		return NewSQL(logger, db), nil
	}
	return nil, fmt.Errorf("ledger: unknown backend %q", backend)
}
