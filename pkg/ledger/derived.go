// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
)

// Derived keeps only the entity arenas and derives card and alias lookups
// by walking User -> Accounts -> Cards. Lookups are O(n) but the failure
// contract is identical to the Indexed backend.
type Derived struct {
	logger log.Logger

	users    []*model.User
	accounts map[string]*model.Account

	commerciants []*model.Commerciant
}

func NewDerived(logger log.Logger) *Derived {
	return &Derived{
		logger:   logger,
		accounts: make(map[string]*model.Account),
	}
}

func (r *Derived) findUser(email string) *model.User {
	for i := range r.users {
		if r.users[i].Email == email {
			return r.users[i]
		}
	}
	return nil
}

func (r *Derived) RegisterUser(u *model.User) error {
	if err := u.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register user", err)
	}
	if r.findUser(u.Email) != nil {
		return errkind.Ef(errkind.Integrity, "user %s already registered", u.Email)
	}
	r.users = append(r.users, u)
	return nil
}

func (r *Derived) RegisterAccount(a *model.Account) error {
	if err := a.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register account", err)
	}
	owner := r.findUser(a.OwnerEmail)
	if owner == nil {
		return errkind.Ef(errkind.Integrity, "account %s: owner %s not registered", a.IBAN, a.OwnerEmail)
	}
	if _, exists := r.accounts[a.IBAN]; exists {
		return errkind.Ef(errkind.Integrity, "account %s already registered", a.IBAN)
	}
	r.accounts[a.IBAN] = a
	owner.AttachAccount(a.IBAN)
	return nil
}

func (r *Derived) RegisterCard(c *model.Card) error {
	if err := c.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register card", err)
	}
	account, exists := r.accounts[c.AccountIBAN]
	if !exists {
		return errkind.Ef(errkind.Integrity, "card %s: account %s not registered", c.Number, c.AccountIBAN)
	}
	if card, _, err := r.CardByNumber(c.Number); err == nil && card != nil {
		return errkind.Ef(errkind.Integrity, "card %s already registered", c.Number)
	}
	account.Cards = append(account.Cards, c)
	return nil
}

func (r *Derived) RegisterCommerciant(c *model.Commerciant) error {
	if err := c.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register commerciant", err)
	}
	for i := range r.commerciants {
		if r.commerciants[i].Name == c.Name {
			return errkind.Ef(errkind.Integrity, "commerciant %s already registered", c.Name)
		}
	}
	r.commerciants = append(r.commerciants, c)
	return nil
}

func (r *Derived) RegisterAlias(alias, iban string) error {
	account, exists := r.accounts[iban]
	if !exists {
		return errkind.Ef(errkind.Integrity, "alias %s: account %s not registered", alias, iban)
	}
	// strip the alias from any account currently holding it
	for _, other := range r.accounts {
		if other.Alias == alias && other.IBAN != iban {
			other.Alias = ""
		}
	}
	account.Alias = alias
	return nil
}

func (r *Derived) RemoveAccount(iban string) error {
	account, exists := r.accounts[iban]
	if !exists {
		return errkind.Ef(errkind.NotFound, "account %s not registered", iban)
	}
	if owner := r.findUser(account.OwnerEmail); owner != nil {
		owner.DetachAccount(iban)
	}
	delete(r.accounts, iban)
	return nil
}

func (r *Derived) RemoveCard(number string) error {
	_, account, err := r.CardByNumber(number)
	if err != nil {
		return errkind.Ef(errkind.NotFound, "card %s not registered", number)
	}
	account.RemoveCard(number)
	return nil
}

func (r *Derived) UserByEmail(email string) (*model.User, error) {
	if u := r.findUser(email); u != nil {
		return u, nil
	}
	return nil, errkind.Ef(errkind.NotFound, "user %s not found", email)
}

func (r *Derived) AccountByIBAN(iban string) (*model.Account, error) {
	if a, exists := r.accounts[iban]; exists {
		return a, nil
	}
	return nil, errkind.Ef(errkind.NotFound, "account %s not found", iban)
}

func (r *Derived) AccountByAlias(alias string) (*model.Account, error) {
	for i := range r.users {
		for _, iban := range r.users[i].AccountIBANs {
			if a, exists := r.accounts[iban]; exists && a.Alias == alias {
				return a, nil
			}
		}
	}
	return nil, errkind.Ef(errkind.NotFound, "alias %s not found", alias)
}

func (r *Derived) CommerciantByName(name string) (*model.Commerciant, error) {
	for i := range r.commerciants {
		if r.commerciants[i].Name == name {
			return r.commerciants[i], nil
		}
	}
	return nil, errkind.Ef(errkind.NotFound, "commerciant %s not found", name)
}

func (r *Derived) CardByNumber(number string) (*model.Card, *model.Account, error) {
	for i := range r.users {
		for _, iban := range r.users[i].AccountIBANs {
			account, exists := r.accounts[iban]
			if !exists {
				continue
			}
			if card := account.FindCard(number); card != nil {
				return card, account, nil
			}
		}
	}
	return nil, nil, errkind.Ef(errkind.NotFound, "card %s not found", number)
}

func (r *Derived) Users() []*model.User {
	out := make([]*model.User, len(r.users))
	copy(out, r.users)
	return out
}

func (r *Derived) AccountsOf(u *model.User) []*model.Account {
	out := make([]*model.Account, 0, len(u.AccountIBANs))
	for i := range u.AccountIBANs {
		if a, exists := r.accounts[u.AccountIBANs[i]]; exists {
			out = append(out, a)
		}
	}
	return out
}
