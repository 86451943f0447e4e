// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
	"strings"
)

type AccountType string

const (
	ClassicAccount  AccountType = "classic"
	SavingsAccount  AccountType = "savings"
	BusinessAccount AccountType = "business"
)

func (t AccountType) Validate() error {
	switch t {
	case ClassicAccount, SavingsAccount, BusinessAccount:
		return nil
	default:
		return fmt.Errorf("AccountType(%s) is invalid", t)
	}
}

// AssociateRole is the permission level of a non-owner on a business account.
type AssociateRole string

const (
	ManagerRole  AssociateRole = "manager"
	EmployeeRole AssociateRole = "employee"
)

func (r AssociateRole) Validate() error {
	switch r {
	case ManagerRole, EmployeeRole:
		return nil
	default:
		return fmt.Errorf("AssociateRole(%s) is invalid", r)
	}
}

// Associate tracks a non-owner granted access to a business account along
// with their cumulative spending and deposits on it.
type Associate struct {
	Email string        `json:"email"`
	Role  AssociateRole `json:"role"`

	Spent     float64 `json:"spent"`
	Deposited float64 `json:"deposited"`
}

// CommerciantStats accumulates per-commerciant activity on one account,
// used for cashback tiering.
type CommerciantStats struct {
	Name string `json:"commerciant"`

	// Spent is cumulative spend in RON.
	Spent float64 `json:"total"`

	// Payments counts transactions toward the transaction-count strategy.
	Payments int `json:"-"`

	// Rewarded marks that the one-shot transaction-count discount was used.
	Rewarded bool `json:"-"`

	// ManagerPayers and EmployeePayers record which business associates
	// paid this commerciant, in payment order. Only populated on
	// business accounts.
	ManagerPayers  []string `json:"-"`
	EmployeePayers []string `json:"-"`
}

// Account is a single ledger account. The owner is referenced by email and
// cards are held by value; the ledger maintains any extra indices.
type Account struct {
	IBAN       string      `json:"IBAN"`
	OwnerEmail string      `json:"-"`
	Type       AccountType `json:"type"`

	Funds      Amount  `json:"-"`
	MinBalance float64 `json:"-"`

	// InterestRate only applies to savings accounts.
	InterestRate float64 `json:"interestRate,omitempty"`

	Alias string `json:"-"`

	Cards        []*Card        `json:"cards"`
	Transactions []*Transaction `json:"-"`

	Commerciants []*CommerciantStats `json:"-"`

	// Business account fields. Limits are kept in the account currency.
	SpendingLimit float64      `json:"-"`
	DepositLimit  float64      `json:"-"`
	Associates    []*Associate `json:"-"`
}

func (a *Account) Validate() error {
	if a == nil {
		return errors.New("nil Account")
	}
	if a.IBAN == "" {
		return errors.New("account: missing IBAN")
	}
	if a.OwnerEmail == "" {
		return errors.New("account: missing owner")
	}
	if err := a.Type.Validate(); err != nil {
		return err
	}
	return nil
}

func (a *Account) Currency() string {
	return a.Funds.Currency()
}

// IsOwner reports whether email matches the account owner.
func (a *Account) IsOwner(email string) bool {
	return strings.EqualFold(a.OwnerEmail, email)
}

// FindAssociate returns the associate registered under email, if any.
func (a *Account) FindAssociate(email string) *Associate {
	for i := range a.Associates {
		if strings.EqualFold(a.Associates[i].Email, email) {
			return a.Associates[i]
		}
	}
	return nil
}

// AddAssociate registers a non-owner on a business account. Adding the same
// email twice or adding to a non-business account is rejected.
func (a *Account) AddAssociate(email string, role AssociateRole) error {
	if a.Type != BusinessAccount {
		return errors.New("account is not of type business")
	}
	if a.IsOwner(email) {
		return errors.New("owner cannot be an associate")
	}
	if a.FindAssociate(email) != nil {
		return errors.New("the user is already an associate of the account")
	}
	a.Associates = append(a.Associates, &Associate{Email: email, Role: role})
	return nil
}

// Stats returns the running stats for a commerciant, creating the record on
// first use. Creation order is preserved for reporting.
func (a *Account) Stats(commerciant string) *CommerciantStats {
	for i := range a.Commerciants {
		if a.Commerciants[i].Name == commerciant {
			return a.Commerciants[i]
		}
	}
	cs := &CommerciantStats{Name: commerciant}
	a.Commerciants = append(a.Commerciants, cs)
	return cs
}

// FindCard returns the card with the given number, if attached.
func (a *Account) FindCard(number string) *Card {
	for i := range a.Cards {
		if a.Cards[i].Number == number {
			return a.Cards[i]
		}
	}
	return nil
}

// RemoveCard detaches a card by number and reports whether it was attached.
func (a *Account) RemoveCard(number string) bool {
	for i := range a.Cards {
		if a.Cards[i].Number == number {
			a.Cards = append(a.Cards[:i], a.Cards[i+1:]...)
			return true
		}
	}
	return false
}

// Append records a completed transaction against this account.
func (a *Account) Append(tx *Transaction) {
	a.Transactions = append(a.Transactions, tx)
}
