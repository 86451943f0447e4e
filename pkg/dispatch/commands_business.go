// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package dispatch

import (
	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/fees"
	"github.com/moov-io/banksim/pkg/model"
)

func (d *Dispatcher) addBusinessAssociate(cmd model.AddBusinessAssociate) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return err
	}
	if _, err := d.env.Repo.UserByEmail(cmd.Email); err != nil {
		return err
	}
	if err := cmd.Role.Validate(); err != nil {
		return errkind.Wrap(errkind.Input, "addNewBusinessAssociate", err)
	}
	if err := account.AddAssociate(cmd.Email, cmd.Role); err != nil {
		return errkind.Wrap(errkind.Operation, "addNewBusinessAssociate", err)
	}
	return nil
}

func (d *Dispatcher) changeSpendingLimit(cmd model.ChangeSpendingLimit) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return err
	}
	if err := d.env.Policy.CanAdjustLimits(account, cmd.Email); err != nil {
		if errkind.Is(err, errkind.Ownership) {
			return fail(errkind.E(errkind.Ownership, "You must be owner in order to change spending limit."), ResultRecord())
		}
		return err
	}
	account.SpendingLimit = cmd.Amount
	return nil
}

func (d *Dispatcher) changeDepositLimit(cmd model.ChangeDepositLimit) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return err
	}
	if err := d.env.Policy.CanAdjustLimits(account, cmd.Email); err != nil {
		if errkind.Is(err, errkind.Ownership) {
			return fail(errkind.E(errkind.Ownership, "You must be owner in order to change deposit limit."), ResultRecord())
		}
		return err
	}
	account.DepositLimit = cmd.Amount
	return nil
}

func (d *Dispatcher) upgradePlan(cmd model.UpgradePlan) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Account not found"), ResultRecord())
	}
	user, err := d.env.Repo.UserByEmail(account.OwnerEmail)
	if err != nil {
		return err
	}

	fee, err := fees.UpgradeFee(user.Plan, cmd.NewTier)
	if err != nil {
		return fail(err, AccountTransaction(account))
	}
	feeLocal, err := fee.In(account.Currency(), d.env.Graph)
	if err != nil {
		return err
	}
	if account.Funds.Float() < feeLocal.Float() {
		return fail(errkind.E(errkind.Operation, "Insufficient funds"), AccountTransaction(account))
	}

	funds, err := account.Funds.Minus(feeLocal, d.env.Graph)
	if err != nil {
		return err
	}
	account.Funds = funds
	user.Plan = cmd.NewTier

	d.env.record(account, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: "Upgrade plan",
		Plan: &model.PlanDetail{
			AccountIBAN: account.IBAN,
			NewTier:     cmd.NewTier,
		},
	})
	return nil
}
