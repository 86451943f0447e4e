// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package ledger

import (
	"database/sql"

	"github.com/moov-io/banksim/pkg/database"
	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
)

// SQL keeps the registry (keys, relations, uniqueness) in SQLite while the
// mutable entity state lives in an in-process arena keyed identically. The
// database enforces the integrity contract; the arena serves the pointers
// the command layer mutates.
//
// With the default in-memory DSN nothing outlives the run, keeping the
// no-persistence guarantee of the other backends.
type SQL struct {
	logger log.Logger
	db     *sql.DB

	users        map[string]*model.User
	accounts     map[string]*model.Account
	commerciants map[string]*model.Commerciant
}

func NewSQL(logger log.Logger, db *sql.DB) *SQL {
	return &SQL{
		logger:       logger,
		db:           db,
		users:        make(map[string]*model.User),
		accounts:     make(map[string]*model.Account),
		commerciants: make(map[string]*model.Commerciant),
	}
}

func (r *SQL) RegisterUser(u *model.User) error {
	if err := u.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register user", err)
	}
	query := `insert into users (email, first_name, last_name, created_at) values (?, ?, ?, datetime('now'));`
	if _, err := r.db.Exec(query, u.Email, u.FirstName, u.LastName); err != nil {
		if database.UniqueViolation(err) {
			return errkind.Ef(errkind.Integrity, "user %s already registered", u.Email)
		}
		return errkind.Wrap(errkind.Integrity, "register user", err)
	}
	r.users[u.Email] = u
	return nil
}

func (r *SQL) RegisterAccount(a *model.Account) error {
	if err := a.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register account", err)
	}
	owner, exists := r.users[a.OwnerEmail]
	if !exists {
		return errkind.Ef(errkind.Integrity, "account %s: owner %s not registered", a.IBAN, a.OwnerEmail)
	}
	query := `insert into accounts (iban, owner_email, account_type, currency, created_at) values (?, ?, ?, ?, datetime('now'));`
	if _, err := r.db.Exec(query, a.IBAN, a.OwnerEmail, string(a.Type), a.Currency()); err != nil {
		if database.UniqueViolation(err) {
			return errkind.Ef(errkind.Integrity, "account %s already registered", a.IBAN)
		}
		return errkind.Wrap(errkind.Integrity, "register account", err)
	}
	r.accounts[a.IBAN] = a
	owner.AttachAccount(a.IBAN)
	return nil
}

func (r *SQL) RegisterCard(c *model.Card) error {
	if err := c.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register card", err)
	}
	account, exists := r.accounts[c.AccountIBAN]
	if !exists {
		return errkind.Ef(errkind.Integrity, "card %s: account %s not registered", c.Number, c.AccountIBAN)
	}
	query := `insert into cards (card_number, account_iban, card_type, created_at) values (?, ?, ?, datetime('now'));`
	if _, err := r.db.Exec(query, c.Number, c.AccountIBAN, string(c.Type)); err != nil {
		if database.UniqueViolation(err) {
			return errkind.Ef(errkind.Integrity, "card %s already registered", c.Number)
		}
		return errkind.Wrap(errkind.Integrity, "register card", err)
	}
	account.Cards = append(account.Cards, c)
	return nil
}

func (r *SQL) RegisterCommerciant(c *model.Commerciant) error {
	if err := c.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register commerciant", err)
	}
	query := `insert into commerciants (name, account_iban, category, strategy) values (?, ?, ?, ?);`
	if _, err := r.db.Exec(query, c.Name, c.AccountIBAN, string(c.Category), string(c.Strategy)); err != nil {
		if database.UniqueViolation(err) {
			return errkind.Ef(errkind.Integrity, "commerciant %s already registered", c.Name)
		}
		return errkind.Wrap(errkind.Integrity, "register commerciant", err)
	}
	r.commerciants[c.Name] = c
	return nil
}

func (r *SQL) RegisterAlias(alias, iban string) error {
	account, exists := r.accounts[iban]
	if !exists {
		return errkind.Ef(errkind.Integrity, "alias %s: account %s not registered", alias, iban)
	}
	query := `insert into aliases (alias, iban) values (?, ?) on conflict(alias) do update set iban = excluded.iban;`
	if _, err := r.db.Exec(query, alias, iban); err != nil {
		return errkind.Wrap(errkind.Integrity, "register alias", err)
	}
	for _, other := range r.accounts {
		if other.Alias == alias && other.IBAN != iban {
			other.Alias = ""
		}
	}
	account.Alias = alias
	return nil
}

func (r *SQL) RemoveAccount(iban string) error {
	account, exists := r.accounts[iban]
	if !exists {
		return errkind.Ef(errkind.NotFound, "account %s not registered", iban)
	}
	if _, err := r.db.Exec(`delete from cards where account_iban = ?;`, iban); err != nil {
		return errkind.Wrap(errkind.Integrity, "remove account cards", err)
	}
	if _, err := r.db.Exec(`delete from aliases where iban = ?;`, iban); err != nil {
		return errkind.Wrap(errkind.Integrity, "remove account aliases", err)
	}
	if _, err := r.db.Exec(`delete from accounts where iban = ?;`, iban); err != nil {
		return errkind.Wrap(errkind.Integrity, "remove account", err)
	}
	if owner, exists := r.users[account.OwnerEmail]; exists {
		owner.DetachAccount(iban)
	}
	delete(r.accounts, iban)
	return nil
}

func (r *SQL) RemoveCard(number string) error {
	var iban string
	err := r.db.QueryRow(`select account_iban from cards where card_number = ?;`, number).Scan(&iban)
	if err != nil {
		if err == sql.ErrNoRows {
			return errkind.Ef(errkind.NotFound, "card %s not registered", number)
		}
		return errkind.Wrap(errkind.Integrity, "remove card", err)
	}
	if _, err := r.db.Exec(`delete from cards where card_number = ?;`, number); err != nil {
		return errkind.Wrap(errkind.Integrity, "remove card", err)
	}
	if account, exists := r.accounts[iban]; exists {
		account.RemoveCard(number)
	}
	return nil
}

func (r *SQL) UserByEmail(email string) (*model.User, error) {
	if u, exists := r.users[email]; exists {
		return u, nil
	}
	return nil, errkind.Ef(errkind.NotFound, "user %s not found", email)
}

func (r *SQL) AccountByIBAN(iban string) (*model.Account, error) {
	if a, exists := r.accounts[iban]; exists {
		return a, nil
	}
	return nil, errkind.Ef(errkind.NotFound, "account %s not found", iban)
}

func (r *SQL) AccountByAlias(alias string) (*model.Account, error) {
	var iban string
	err := r.db.QueryRow(`select iban from aliases where alias = ?;`, alias).Scan(&iban)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errkind.Ef(errkind.NotFound, "alias %s not found", alias)
		}
		return nil, errkind.Wrap(errkind.Integrity, "alias lookup", err)
	}
	return r.AccountByIBAN(iban)
}

func (r *SQL) CommerciantByName(name string) (*model.Commerciant, error) {
	if c, exists := r.commerciants[name]; exists {
		return c, nil
	}
	return nil, errkind.Ef(errkind.NotFound, "commerciant %s not found", name)
}

func (r *SQL) CardByNumber(number string) (*model.Card, *model.Account, error) {
	var iban string
	err := r.db.QueryRow(`select account_iban from cards where card_number = ?;`, number).Scan(&iban)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, errkind.Ef(errkind.NotFound, "card %s not found", number)
		}
		return nil, nil, errkind.Wrap(errkind.Integrity, "card lookup", err)
	}
	account, err := r.AccountByIBAN(iban)
	if err != nil {
		return nil, nil, err
	}
	return account.FindCard(number), account, nil
}

func (r *SQL) Users() []*model.User {
	// rowid preserves registration order
	rows, err := r.db.Query(`select email from users order by rowid;`)
	if err != nil {
		r.logger.Log("ledger", err)
		return nil
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			continue
		}
		if u, exists := r.users[email]; exists {
			out = append(out, u)
		}
	}
	return out
}

func (r *SQL) AccountsOf(u *model.User) []*model.Account {
	out := make([]*model.Account, 0, len(u.AccountIBANs))
	for i := range u.AccountIBANs {
		if a, exists := r.accounts[u.AccountIBANs[i]]; exists {
			out = append(out, a)
		}
	}
	return out
}
