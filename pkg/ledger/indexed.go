// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
)

// Indexed keeps direct indices for every lookup key: email, IBAN, alias,
// card number and commerciant name all resolve in O(1).
type Indexed struct {
	logger log.Logger

	users        map[string]*model.User
	accounts     map[string]*model.Account
	aliases      map[string]string // alias -> IBAN
	cards        map[string]string // card number -> IBAN
	commerciants map[string]*model.Commerciant

	userOrder        []string
	commerciantOrder []string
}

func NewIndexed(logger log.Logger) *Indexed {
	return &Indexed{
		logger:       logger,
		users:        make(map[string]*model.User),
		accounts:     make(map[string]*model.Account),
		aliases:      make(map[string]string),
		cards:        make(map[string]string),
		commerciants: make(map[string]*model.Commerciant),
	}
}

func (r *Indexed) RegisterUser(u *model.User) error {
	if err := u.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register user", err)
	}
	if _, exists := r.users[u.Email]; exists {
		return errkind.Ef(errkind.Integrity, "user %s already registered", u.Email)
	}
	r.users[u.Email] = u
	r.userOrder = append(r.userOrder, u.Email)
	return nil
}

func (r *Indexed) RegisterAccount(a *model.Account) error {
	if err := a.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register account", err)
	}
	owner, exists := r.users[a.OwnerEmail]
	if !exists {
		return errkind.Ef(errkind.Integrity, "account %s: owner %s not registered", a.IBAN, a.OwnerEmail)
	}
	if _, exists := r.accounts[a.IBAN]; exists {
		return errkind.Ef(errkind.Integrity, "account %s already registered", a.IBAN)
	}
	r.accounts[a.IBAN] = a
	owner.AttachAccount(a.IBAN)
	return nil
}

func (r *Indexed) RegisterCard(c *model.Card) error {
	if err := c.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register card", err)
	}
	account, exists := r.accounts[c.AccountIBAN]
	if !exists {
		return errkind.Ef(errkind.Integrity, "card %s: account %s not registered", c.Number, c.AccountIBAN)
	}
	if _, exists := r.cards[c.Number]; exists {
		return errkind.Ef(errkind.Integrity, "card %s already registered", c.Number)
	}
	r.cards[c.Number] = c.AccountIBAN
	account.Cards = append(account.Cards, c)
	return nil
}

func (r *Indexed) RegisterCommerciant(c *model.Commerciant) error {
	if err := c.Validate(); err != nil {
		return errkind.Wrap(errkind.Integrity, "register commerciant", err)
	}
	if _, exists := r.commerciants[c.Name]; exists {
		return errkind.Ef(errkind.Integrity, "commerciant %s already registered", c.Name)
	}
	r.commerciants[c.Name] = c
	r.commerciantOrder = append(r.commerciantOrder, c.Name)
	return nil
}

func (r *Indexed) RegisterAlias(alias, iban string) error {
	account, exists := r.accounts[iban]
	if !exists {
		return errkind.Ef(errkind.Integrity, "alias %s: account %s not registered", alias, iban)
	}
	// an alias maps to at most one account; re-registration overwrites
	if previous, exists := r.aliases[alias]; exists && previous != iban {
		if old, ok := r.accounts[previous]; ok && old.Alias == alias {
			old.Alias = ""
		}
	}
	r.aliases[alias] = iban
	account.Alias = alias
	return nil
}

func (r *Indexed) RemoveAccount(iban string) error {
	account, exists := r.accounts[iban]
	if !exists {
		return errkind.Ef(errkind.NotFound, "account %s not registered", iban)
	}
	for i := range account.Cards {
		delete(r.cards, account.Cards[i].Number)
	}
	if account.Alias != "" {
		delete(r.aliases, account.Alias)
	}
	if owner, exists := r.users[account.OwnerEmail]; exists {
		owner.DetachAccount(iban)
	}
	delete(r.accounts, iban)
	return nil
}

func (r *Indexed) RemoveCard(number string) error {
	iban, exists := r.cards[number]
	if !exists {
		return errkind.Ef(errkind.NotFound, "card %s not registered", number)
	}
	if account, ok := r.accounts[iban]; ok {
		account.RemoveCard(number)
	}
	delete(r.cards, number)
	return nil
}

func (r *Indexed) UserByEmail(email string) (*model.User, error) {
	if u, exists := r.users[email]; exists {
		return u, nil
	}
	return nil, errkind.Ef(errkind.NotFound, "user %s not found", email)
}

func (r *Indexed) AccountByIBAN(iban string) (*model.Account, error) {
	if a, exists := r.accounts[iban]; exists {
		return a, nil
	}
	return nil, errkind.Ef(errkind.NotFound, "account %s not found", iban)
}

func (r *Indexed) AccountByAlias(alias string) (*model.Account, error) {
	if iban, exists := r.aliases[alias]; exists {
		return r.AccountByIBAN(iban)
	}
	return nil, errkind.Ef(errkind.NotFound, "alias %s not found", alias)
}

func (r *Indexed) CommerciantByName(name string) (*model.Commerciant, error) {
	if c, exists := r.commerciants[name]; exists {
		return c, nil
	}
	return nil, errkind.Ef(errkind.NotFound, "commerciant %s not found", name)
}

func (r *Indexed) CardByNumber(number string) (*model.Card, *model.Account, error) {
	iban, exists := r.cards[number]
	if !exists {
		return nil, nil, errkind.Ef(errkind.NotFound, "card %s not found", number)
	}
	account, err := r.AccountByIBAN(iban)
	if err != nil {
		return nil, nil, err
	}
	return account.FindCard(number), account, nil
}

func (r *Indexed) Users() []*model.User {
	out := make([]*model.User, 0, len(r.userOrder))
	for i := range r.userOrder {
		out = append(out, r.users[r.userOrder[i]])
	}
	return out
}

func (r *Indexed) AccountsOf(u *model.User) []*model.Account {
	out := make([]*model.Account, 0, len(u.AccountIBANs))
	for i := range u.AccountIBANs {
		if a, exists := r.accounts[u.AccountIBANs[i]]; exists {
			out = append(out, a)
		}
	}
	return out
}
