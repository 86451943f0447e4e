// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package dispatch

import (
	"fmt"
	"time"

	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"
	"github.com/moov-io/banksim/pkg/report"
)

func (d *Dispatcher) addAccount(cmd model.AddAccount) error {
	owner, err := d.env.Repo.UserByEmail(cmd.Email)
	if err != nil {
		return err
	}
	if err := cmd.AccountType.Validate(); err != nil {
		return errkind.Wrap(errkind.Input, "addAccount", err)
	}

	funds, err := model.NewAmount(cmd.Currency, 0)
	if err != nil {
		return errkind.Wrap(errkind.Input, "addAccount", err)
	}

	account := &model.Account{
		IBAN:       d.env.IDs.IBAN(),
		OwnerEmail: owner.Email,
		Type:       cmd.AccountType,
		Funds:      funds,
	}
	if cmd.AccountType == model.SavingsAccount {
		account.InterestRate = cmd.InterestRate
	}
	if cmd.AccountType == model.BusinessAccount {
		ron, err := model.NewAmount("RON", d.env.Cfg.Business.DefaultLimitRON)
		if err != nil {
			return err
		}
		limit, err := ron.In(account.Currency(), d.env.Graph)
		if err != nil {
			return err
		}
		account.SpendingLimit = limit.Float()
		account.DepositLimit = limit.Float()
	}

	if err := d.env.Repo.RegisterAccount(account); err != nil {
		return err
	}

	d.env.record(account, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: "New account created",
	})
	return nil
}

func (d *Dispatcher) addFunds(cmd model.AddFunds) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return err
	}
	amount, err := model.NewAmount(account.Currency(), cmd.Amount)
	if err != nil {
		return errkind.Wrap(errkind.Input, "addFunds", err)
	}
	if err := d.env.Policy.AuthorizeDeposit(account, cmd.Email, amount); err != nil {
		return err
	}

	funds, err := account.Funds.Plus(amount, d.env.Graph)
	if err != nil {
		return err
	}
	account.Funds = funds
	return nil
}

func (d *Dispatcher) deleteAccount(cmd model.DeleteAccount) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Account not found"), DeletionError())
	}
	if !account.IsOwner(cmd.Email) {
		return fail(errkind.E(errkind.Ownership, "You are not authorized to make this transaction."), DeletionError())
	}
	if account.Funds.Float() > 0 {
		return fail(
			errkind.E(errkind.Operation, "Account couldn't be deleted - there are funds remaining"),
			DeletionError(), AccountTransaction(account),
		)
	}

	if err := d.env.Repo.RemoveAccount(cmd.IBAN); err != nil {
		return err
	}
	d.env.Results.Append(cmd.Name(), cmd.Timestamp, report.DeletionOutput{
		Timestamp: cmd.Timestamp,
		Success:   "Account deleted",
	})
	return nil
}

func (d *Dispatcher) setAlias(cmd model.SetAlias) error {
	if _, err := d.env.Repo.UserByEmail(cmd.Email); err != nil {
		return err
	}
	return d.env.Repo.RegisterAlias(cmd.Alias, cmd.IBAN)
}

func (d *Dispatcher) setMinimumBalance(cmd model.SetMinimumBalance) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return err
	}
	account.MinBalance = cmd.Amount
	return nil
}

func (d *Dispatcher) addInterest(cmd model.AddInterest) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Account not found"), ResultRecord())
	}
	if account.Type != model.SavingsAccount {
		return fail(errkind.E(errkind.Operation, "This is not a savings account"), ResultRecord())
	}

	interest := account.Funds.Scale(account.InterestRate)
	funds, err := account.Funds.Plus(interest, d.env.Graph)
	if err != nil {
		return err
	}
	account.Funds = funds

	d.env.record(account, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: fmt.Sprintf("Interest rate income of %.2f %s", interest.Float(), account.Currency()),
	})
	return nil
}

func (d *Dispatcher) changeInterestRate(cmd model.ChangeInterestRate) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Account not found"), ResultRecord())
	}
	if account.Type != model.SavingsAccount {
		return fail(errkind.E(errkind.Operation, "This is not a savings account"), ResultRecord())
	}

	account.InterestRate = cmd.Rate
	d.env.record(account, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: fmt.Sprintf("The interest rate of the account changed to %g", cmd.Rate),
	})
	return nil
}

// minimumWithdrawalAge gates savings withdrawals.
const minimumWithdrawalAge = 21

func (d *Dispatcher) withdrawSavings(cmd model.WithdrawSavings) error {
	savings, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return err
	}
	owner, err := d.env.Repo.UserByEmail(savings.OwnerEmail)
	if err != nil {
		return err
	}

	age, err := owner.AgeAt(time.Now())
	if err != nil || age < minimumWithdrawalAge {
		return fail(errkind.E(errkind.Operation, "You don't have the minimum age required."), AccountTransaction(savings))
	}
	if savings.Type != model.SavingsAccount {
		return fail(errkind.E(errkind.Operation, "Account is not of type savings."), AccountTransaction(savings))
	}

	// the destination is the owner's first classic account in the
	// requested currency
	var classic *model.Account
	for _, a := range d.env.Repo.AccountsOf(owner) {
		if a.Type == model.ClassicAccount && a.Currency() == cmd.Currency {
			classic = a
			break
		}
	}
	if classic == nil {
		return fail(errkind.E(errkind.NotFound, "You do not have a classic account."), AccountTransaction(savings))
	}

	amount, err := model.NewAmount(cmd.Currency, cmd.Amount)
	if err != nil {
		return errkind.Wrap(errkind.Input, "withdrawSavings", err)
	}
	covers, err := savings.Funds.Covers(amount, d.env.Graph)
	if err != nil {
		return err
	}
	if !covers {
		return fail(errkind.E(errkind.Operation, "Insufficient funds"), AccountTransaction(savings))
	}

	debited, err := savings.Funds.Minus(amount, d.env.Graph)
	if err != nil {
		return err
	}
	credited, err := classic.Funds.Plus(amount, d.env.Graph)
	if err != nil {
		return err
	}
	savings.Funds = debited
	classic.Funds = credited

	tx := &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: "Savings withdrawal",
		Transfer: &model.TransferDetail{
			SenderIBAN:   savings.IBAN,
			ReceiverIBAN: classic.IBAN,
			Amount:       amount.String(),
			Direction:    "sent",
		},
	}
	d.env.record(savings, tx)
	d.env.record(classic, tx)
	return nil
}
