// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package authz decides whether an actor may move money on an account.
//
// Classic and savings accounts only answer to their owner. Business
// accounts also accept registered associates: managers act freely while
// employees are held to the account's spending and deposit limits through
// running per-associate totals.
package authz

import (
	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
)

type Policy struct {
	logger log.Logger
	conv   model.Converter
}

func NewPolicy(logger log.Logger, conv model.Converter) *Policy {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Policy{logger: logger, conv: conv}
}

// AuthorizeSpend checks that actor may spend amount from account. For
// employee associates the candidate amount is added to the running spent
// total and checked against the spending limit; the total is only
// committed when the check passes.
func (p *Policy) AuthorizeSpend(account *model.Account, actor string, amount model.Amount) error {
	return p.authorize(account, actor, amount, true)
}

// AuthorizeDeposit checks that actor may deposit amount into account,
// mirroring AuthorizeSpend against the deposit limit.
func (p *Policy) AuthorizeDeposit(account *model.Account, actor string, amount model.Amount) error {
	return p.authorize(account, actor, amount, false)
}

func (p *Policy) authorize(account *model.Account, actor string, amount model.Amount, spend bool) error {
	if account.IsOwner(actor) {
		return nil
	}
	if account.Type != model.BusinessAccount {
		return errkind.E(errkind.Ownership, "You are not authorized to make this transaction.")
	}

	associate := account.FindAssociate(actor)
	if associate == nil {
		return errkind.E(errkind.Ownership, "You are not authorized to make this transaction.")
	}

	// limits and running totals are kept in the account currency
	converted, err := amount.In(account.Currency(), p.conv)
	if err != nil {
		return err
	}

	if spend {
		next := associate.Spent + converted.Float()
		if associate.Role == model.EmployeeRole && next > account.SpendingLimit {
			return errkind.E(errkind.Operation, "You are not authorized to make this transaction.")
		}
		associate.Spent = next
		return nil
	}

	next := associate.Deposited + converted.Float()
	if associate.Role == model.EmployeeRole && next > account.DepositLimit {
		return errkind.E(errkind.Operation, "You are not authorized to make this transaction.")
	}
	associate.Deposited = next
	return nil
}

// CanAdjustLimits reports whether actor may change the spending or deposit
// limits of a business account. Only the owner can.
func (p *Policy) CanAdjustLimits(account *model.Account, actor string) error {
	if account.Type != model.BusinessAccount {
		return errkind.E(errkind.Operation, "This is not a business account")
	}
	if !account.IsOwner(actor) {
		return errkind.E(errkind.Ownership, "You must be owner in order to change spending limit.")
	}
	return nil
}
