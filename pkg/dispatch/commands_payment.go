// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package dispatch

import (
	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"
)

func (d *Dispatcher) payOnline(cmd model.PayOnline) error {
	// zero-amount payments are accepted and ignored
	if cmd.Amount == 0 {
		return nil
	}

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
	commerciant, err := d.env.Repo.CommerciantByName(cmd.Commerciant)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "Commerciant not found"), ResultRecord())
	}
	if account.Type == model.SavingsAccount {
		return fail(errkind.E(errkind.Operation, "You cannot make payments from a savings account."), AccountTransaction(account))
	}
	if card.Frozen() {
		return fail(errkind.E(errkind.Operation, "The card is frozen"), AccountTransaction(account))
	}

	amount, err := model.NewAmount(cmd.Currency, cmd.Amount)
	if err != nil {
		return errkind.Wrap(errkind.Input, "payOnline", err)
	}
	debit, err := amount.In(account.Currency(), d.env.Graph)
	if err != nil {
		return err
	}
	fee, err := d.env.Fees.Fee(user.Plan, amount)
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
	cashback, err := d.env.Fees.Cashback(account, commerciant, user.Plan, debit)
	if err != nil {
		return err
	}
	funds, err = funds.Plus(cashback, d.env.Graph)
	if err != nil {
		return err
	}
	account.Funds = funds

	if account.Type == model.BusinessAccount && !account.IsOwner(cmd.Email) {
		if assoc := account.FindAssociate(cmd.Email); assoc != nil {
			stats := account.Stats(commerciant.Name)
			switch assoc.Role {
			case model.ManagerRole:
				stats.ManagerPayers = append(stats.ManagerPayers, assoc.Email)
			case model.EmployeeRole:
				stats.EmployeePayers = append(stats.EmployeePayers, assoc.Email)
			}
		}
	}

	d.env.record(account, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: "Card payment",
		Payment: &model.PaymentDetail{
			Amount:      debit.Float(),
			Commerciant: commerciant.Name,
		},
	})

	if card.Type == model.OneTimeCard {
		return d.reissue(account, card, cmd.Email, cmd.Timestamp)
	}
	return nil
}

// reissue destroys a one-time card after a successful payment and attaches
// a fresh number.
func (d *Dispatcher) reissue(account *model.Account, card *model.Card, holder string, timestamp int) error {
	old := card.Number
	if err := d.env.Repo.RemoveCard(old); err != nil {
		return err
	}
	d.env.record(account, &model.Transaction{
		Timestamp:   timestamp,
		Description: "The card has been destroyed",
		Card: &model.CardDetail{
			Number:      old,
			Holder:      holder,
			AccountIBAN: account.IBAN,
		},
	})

	fresh := &model.Card{
		Number:      d.env.IDs.CardNumber(),
		AccountIBAN: account.IBAN,
		Type:        model.OneTimeCard,
		Status:      model.CardActive,
	}
	if err := d.env.Repo.RegisterCard(fresh); err != nil {
		return err
	}
	d.env.record(account, &model.Transaction{
		Timestamp:   timestamp,
		Description: "New card created",
		Card: &model.CardDetail{
			Number:      fresh.Number,
			Holder:      holder,
			AccountIBAN: account.IBAN,
		},
	})
	return nil
}

func (d *Dispatcher) sendMoney(cmd model.SendMoney) error {
	from, err := d.env.Repo.AccountByIBAN(cmd.FromIBAN)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "User not found"), ResultRecord())
	}
	to, err := d.env.Repo.AccountByIBAN(cmd.To)
	if err != nil {
		to, err = d.env.Repo.AccountByAlias(cmd.To)
	}
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "User not found"), ResultRecord())
	}
	user, err := d.env.Repo.UserByEmail(cmd.Email)
	if err != nil {
		return fail(errkind.E(errkind.NotFound, "User not found"), ResultRecord())
	}
	if !d.env.actorMayUse(from, cmd.Email) {
		return errkind.E(errkind.Ownership, "You are not authorized to make this transaction.")
	}

	amount, err := model.NewAmount(from.Currency(), cmd.Amount)
	if err != nil {
		return errkind.Wrap(errkind.Input, "sendMoney", err)
	}
	fee, err := d.env.Fees.Fee(user.Plan, amount)
	if err != nil {
		return err
	}

	total := amount.Float() + fee.Float()
	if from.Funds.Float() < total {
		return fail(errkind.E(errkind.Operation, "Insufficient funds"), AccountTransaction(from))
	}
	if from.Funds.Float()-total < from.MinBalance {
		return fail(errkind.E(errkind.Operation, "Cannot perform payment due to a minimum balance being set"), AccountTransaction(from))
	}
	if err := d.env.Policy.AuthorizeSpend(from, cmd.Email, amount); err != nil {
		return err
	}

	debited, err := from.Funds.Minus(amount, d.env.Graph)
	if err != nil {
		return err
	}
	debited, err = debited.Minus(fee, d.env.Graph)
	if err != nil {
		return err
	}
	credited, err := amount.In(to.Currency(), d.env.Graph)
	if err != nil {
		return err
	}
	received, err := to.Funds.Plus(credited, d.env.Graph)
	if err != nil {
		return err
	}
	from.Funds = debited
	to.Funds = received

	d.env.record(from, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: cmd.Description,
		Transfer: &model.TransferDetail{
			SenderIBAN:   from.IBAN,
			ReceiverIBAN: to.IBAN,
			Amount:       amount.String(),
			Direction:    "sent",
		},
	})
	d.env.record(to, &model.Transaction{
		Timestamp:   cmd.Timestamp,
		Description: cmd.Description,
		Transfer: &model.TransferDetail{
			SenderIBAN:   from.IBAN,
			ReceiverIBAN: to.IBAN,
			Amount:       credited.String(),
			Direction:    "received",
		},
	})
	return nil
}
