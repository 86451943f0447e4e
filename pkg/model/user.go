// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PlanTier is a user's service plan. The tier decides transaction fees and
// cashback rates; standard and student share the bottom rank.
type PlanTier string

const (
	StandardPlan PlanTier = "standard"
	StudentPlan  PlanTier = "student"
	SilverPlan   PlanTier = "silver"
	GoldPlan     PlanTier = "gold"
)

func (t PlanTier) Validate() error {
	switch t {
	case StandardPlan, StudentPlan, SilverPlan, GoldPlan:
		return nil
	default:
		return fmt.Errorf("PlanTier(%s) is invalid", t)
	}
}

func (t PlanTier) rank() int {
	switch t {
	case SilverPlan:
		return 1
	case GoldPlan:
		return 2
	}
	return 0
}

// CanUpgradeTo reports whether moving to the given tier is an upgrade.
// Standard and student sit on the same rank, so neither converts into the
// other.
func (t PlanTier) CanUpgradeTo(to PlanTier) bool {
	return to.rank() > t.rank()
}

// DefaultPlan picks the starting tier from the user's occupation.
func DefaultPlan(occupation string) PlanTier {
	if strings.EqualFold(occupation, "student") {
		return StudentPlan
	}
	return StandardPlan
}

// User is a registered account holder. Email is the natural key; owned
// accounts are referenced by IBAN and resolved through the ledger.
type User struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Birthdate  string `json:"birthDate,omitempty"` // YYYY-MM-DD
	Occupation string `json:"occupation,omitempty"`

	Plan PlanTier `json:"plan"`

	AccountIBANs []string `json:"-"`
}

func (u *User) Validate() error {
	if u == nil {
		return errors.New("nil User")
	}
	if u.Email == "" {
		return errors.New("user: missing email")
	}
	if u.Plan == "" {
		u.Plan = DefaultPlan(u.Occupation)
	}
	return u.Plan.Validate()
}

// AgeAt returns the user's age in whole years at the given time. Users
// without a birthdate fail the age check.
func (u *User) AgeAt(now time.Time) (int, error) {
	born, err := time.Parse("2006-01-02", u.Birthdate)
	if err != nil {
		return 0, fmt.Errorf("user %s: %v", u.Email, err)
	}
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return years, nil
}

// AttachAccount records account ownership. Called by the ledger when an
// account is registered.
func (u *User) AttachAccount(iban string) {
	u.AccountIBANs = append(u.AccountIBANs, iban)
}

// DetachAccount drops account ownership, keeping creation order.
func (u *User) DetachAccount(iban string) {
	for i := range u.AccountIBANs {
		if u.AccountIBANs[i] == iban {
			u.AccountIBANs = append(u.AccountIBANs[:i], u.AccountIBANs[i+1:]...)
			return
		}
	}
}
