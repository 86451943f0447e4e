// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package dispatch

import (
	"fmt"

	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"
	"github.com/moov-io/banksim/x/mask"
)

func (d *Dispatcher) createCard(cmd model.CreateCard) error {
	account, err := d.env.Repo.AccountByIBAN(cmd.IBAN)
	if err != nil {
		return err
	}
	if !d.env.actorMayUse(account, cmd.Email) {
		return errkind.E(errkind.Ownership, "You are not authorized to make this transaction.")
	}

	card := &model.Card{
		Number:      d.env.IDs.CardNumber(),
		AccountIBAN: account.IBAN,
		Type:        cmd.CardType,
		Status:      model.CardActive,
	}
	if err := d.env.Repo.RegisterCard(card); err != nil {
		return err
	}

	d.env.record(account, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: "New card created",
		Card: &model.CardDetail{
			Number:      card.Number,
			Holder:      cmd.Email,
			AccountIBAN: account.IBAN,
		},
	})
	d.env.Logger.Log("cards", fmt.Sprintf("issued %s card %s", card.Type, mask.CardNumber(card.Number)))
	return nil
}

func (d *Dispatcher) deleteCard(cmd model.DeleteCard) error {
	card, account, err := d.env.Repo.CardByNumber(cmd.Number)
	if err != nil {
		return err
	}
	if !d.env.actorMayUse(account, cmd.Email) {
		return errkind.E(errkind.Ownership, "You are not authorized to make this transaction.")
	}

	if err := d.env.Repo.RemoveCard(card.Number); err != nil {
		return err
	}
	d.env.record(account, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: "The card has been destroyed",
		Card: &model.CardDetail{
			Number:      card.Number,
			Holder:      cmd.Email,
			AccountIBAN: account.IBAN,
		},
	})
	return nil
}

// cardFreezeBuffer is how close (in account currency) the balance may get
// to the minimum before a status check freezes the card.
const cardFreezeBuffer = 30.0

func (d *Dispatcher) checkCardStatus(cmd model.CheckCardStatus) error {
	card, account, err := d.env.Repo.CardByNumber(cmd.Number)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Card not found"), ResultRecord())
	}
	if card.Frozen() {
		return nil
	}
	if account.Funds.Float() <= account.MinBalance+cardFreezeBuffer {
		card.Status = model.CardFrozen
		d.env.record(account, &model.Transaction{
			Timestamp:   cmd.Timestamp,
			Description: "You have reached the minimum amount of funds, the card will be frozen",
		})
	}
	return nil
}

func (d *Dispatcher) cashWithdrawal(cmd model.CashWithdrawal) error {
	card, account, err := d.env.Repo.CardByNumber(cmd.Number)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Card not found"), ResultRecord())
	}
	user, err := d.env.Repo.UserByEmail(cmd.Email)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "User not found"), ResultRecord())
	}
	if !d.env.actorMayUse(account, cmd.Email) {
		// actors outside the account are not told the card exists
		return fail(errkind.E(errkind.NotFound, "Card not found"), ResultRecord())
	}
	if card.Frozen() {
		return fail(errkind.E(errkind.Operation, "The card is frozen"), AccountTransaction(account))
	}

	// withdrawals are requested in RON
	ron, err := model.NewAmount("RON", cmd.Amount)
	if err != nil {
		return errkind.Wrap(errkind.Input, "cashWithdrawal", err)
	}
	debit, err := ron.In(account.Currency(), d.env.Graph)
	if err != nil {
		return err
	}
	fee, err := d.env.Fees.Fee(user.Plan, ron)
	if err != nil {
		return err
	}
	feeLocal, err := fee.In(account.Currency(), d.env.Graph)
	if err != nil {
		return err
	}

	total := debit.Float() + feeLocal.Float()
	if account.Funds.Float() < total {
		return fail(errkind.E(errkind.Operation, "Insufficient funds"), AccountTransaction(account))
	}
	if account.Funds.Float()-total < account.MinBalance {
		return fail(errkind.E(errkind.Operation, "Cannot perform payment due to a minimum balance being set"), AccountTransaction(account))
	}
	// the limit check commits the associate's running total, so it runs
	// after every other precondition
	if err := d.env.Policy.AuthorizeSpend(account, cmd.Email, debit); err != nil {
		return err
	}

	funds, err := account.Funds.Minus(debit, d.env.Graph)
	if err != nil {
		return err
	}
	funds, err = funds.Minus(feeLocal, d.env.Graph)
	if err != nil {
		return err
	}
	account.Funds = funds

	d.env.record(account, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: fmt.Sprintf("Cash withdrawal of %.1f", cmd.Amount),
	})
	return nil
}
