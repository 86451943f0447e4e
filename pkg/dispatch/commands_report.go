// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package dispatch

import (
	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"
	"github.com/moov-io/banksim/pkg/report"
)

func (d *Dispatcher) printUsers(cmd model.PrintUsers) error {
	d.env.Results.Append(cmd.Name(), cmd.Timestamp, report.Users(d.env.Repo))
	return nil
}

func (d *Dispatcher) printTransactions(cmd model.PrintTransactions) error {
	user, err := d.env.Repo.UserByEmail(cmd.Email)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "User not found"), ResultRecord())
	}
	d.env.Results.Append(cmd.Name(), cmd.Timestamp, report.Transactions(d.env.Repo, user))
	return nil
}

func (d *Dispatcher) report(cmd model.Report) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Account not found"), ResultRecord())
	}
	d.env.Results.Append(cmd.Name(), cmd.Timestamp, report.Classic(account, cmd.Start, cmd.End))
	return nil
}

func (d *Dispatcher) spendingsReport(cmd model.SpendingsReport) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Account not found"), ResultRecord())
	}
	if account.Type == model.SavingsAccount {
		d.env.Results.Append(cmd.Name(), cmd.Timestamp, report.NotSupportedOutput{
			Error: "This kind of report is not supported for a saving account",
		})
		return nil
	}
	d.env.Results.Append(cmd.Name(), cmd.Timestamp, report.Spendings(account, cmd.Start, cmd.End))
	return nil
}

func (d *Dispatcher) businessReport(cmd model.BusinessReport) error {
	if err := cmd.Type.Validate(); err != nil {
		return errkind.Wrap(errkind.Input, "businessReport", err)
	}
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Account not found"), ResultRecord())
	}
	if account.Type != model.BusinessAccount {
		return fail(errkind.E(errkind.Operation, "This is not a business account"), ResultRecord())
	}

	switch cmd.Type {
	case model.CommerciantBusinessReport:
		d.env.Results.Append(cmd.Name(), cmd.Timestamp, report.BusinessCommerciants(d.env.Repo, account))
	default:
		d.env.Results.Append(cmd.Name(), cmd.Timestamp, report.Business(d.env.Repo, account))
	}
	return nil
}
