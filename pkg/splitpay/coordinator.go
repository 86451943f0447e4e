// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package splitpay runs the unanimous acceptance protocol for multi-party
// split payments.
//
// A payment stays pending until every involved owner accepts (then funds
// are checked and debited all-or-nothing) or any owner rejects (then the
// whole payment cancels). Either way a single shared transaction record is
// broadcast to every involved account.
package splitpay

import (
	"fmt"

	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/ledger"
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
)

type State string

const (
	Pending     State = "pending"
	Committed   State = "committed"
	FailedFunds State = "failed-funds"
	Cancelled   State = "cancelled"
)

// Payment is one split payment obligation. Terminal payments are never
// reused; the coordinator drops them from its pending list.
type Payment struct {
	Type     model.SplitType
	Currency string
	Total    float64
	IBANs    []string

	// Shares align with IBANs and are denominated in Currency.
	Shares []float64

	Created int
	State   State

	owners   []string
	accepted map[string]bool
}

// undecided reports whether email owns an involved account and has not
// accepted yet.
func (p *Payment) undecided(email string) bool {
	for i := range p.owners {
		if p.owners[i] == email {
			return !p.accepted[email]
		}
	}
	return false
}

type Coordinator struct {
	logger log.Logger
	repo   ledger.Repository
	conv   model.Converter

	pending []*Payment
}

func NewCoordinator(logger log.Logger, repo ledger.Repository, conv model.Converter) *Coordinator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Coordinator{logger: logger, repo: repo, conv: conv}
}

// Create validates and registers a new pending split payment.
func (c *Coordinator) Create(cmd model.SplitPayment) error {
	if err := cmd.Type.Validate(); err != nil {
		return errkind.Wrap(errkind.Input, "split payment", err)
	}
	if len(cmd.IBANs) == 0 {
		return errkind.E(errkind.Input, "split payment with no accounts")
	}

	var shares []float64
	switch cmd.Type {
	case model.EqualSplit:
		share := cmd.Amount / float64(len(cmd.IBANs))
		for range cmd.IBANs {
			shares = append(shares, share)
		}
	case model.CustomSplit:
		if len(cmd.Shares) != len(cmd.IBANs) {
			return errkind.Ef(errkind.Input, "split payment: %d shares for %d accounts", len(cmd.Shares), len(cmd.IBANs))
		}
		shares = append(shares, cmd.Shares...)
	}

	payment := &Payment{
		Type:     cmd.Type,
		Currency: cmd.Currency,
		Total:    cmd.Amount,
		IBANs:    cmd.IBANs,
		Shares:   shares,
		Created:  cmd.Timestamp,
		State:    Pending,
		accepted: make(map[string]bool),
	}
	for i := range cmd.IBANs {
		account, err := c.repo.AccountByIBAN(cmd.IBANs[i])
		if err != nil {
			return err
		}
		payment.owners = append(payment.owners, account.OwnerEmail)
	}

	c.pending = append(c.pending, payment)
	return nil
}

// find returns the oldest pending payment of the given type which email is
// involved in and has not decided yet.
func (c *Coordinator) find(email string, st model.SplitType) *Payment {
	for i := range c.pending {
		if c.pending[i].Type == st && c.pending[i].undecided(email) {
			return c.pending[i]
		}
	}
	return nil
}

// Accept records one owner's acceptance. Once the accepted set covers every
// involved owner the payment settles: all-or-nothing debit in involved
// account order. Accepting with nothing to decide is an error the caller
// may swallow; accepting the same payment twice simply targets the owner's
// next undecided payment, never the same one.
func (c *Coordinator) Accept(email string, st model.SplitType) error {
	payment := c.find(email, st)
	if payment == nil {
		return errkind.Ef(errkind.NotFound, "no pending %s split payment for %s", st, email)
	}
	payment.accepted[email] = true

	for i := range payment.owners {
		if !payment.accepted[payment.owners[i]] {
			return nil // still waiting on somebody
		}
	}
	return c.settle(payment)
}

// Reject cancels the whole payment on a single owner's rejection,
// debiting nothing.
func (c *Coordinator) Reject(email string, st model.SplitType) error {
	payment := c.find(email, st)
	if payment == nil {
		return errkind.Ef(errkind.NotFound, "no pending %s split payment for %s", st, email)
	}
	payment.State = Cancelled
	c.drop(payment)

	tx := &model.Transaction{
		Timestamp:   payment.Created,
		Description: describe(payment),
		Split:       payment.detail(payment.Shares),
		Error:       "One user rejected the payment.",
	}
	c.broadcast(payment, tx)
	return nil
}

func (c *Coordinator) settle(payment *Payment) error {
	c.drop(payment)

	type leg struct {
		account *model.Account
		debit   model.Amount
	}
	var legs []leg

	// affordability is evaluated in involved-account order; the first
	// account that cannot pay fails the whole payment
	for i := range payment.IBANs {
		account, err := c.repo.AccountByIBAN(payment.IBANs[i])
		if err != nil {
			return err
		}
		share, err := model.NewAmount(payment.Currency, payment.Shares[i])
		if err != nil {
			return err
		}
		debit, err := share.In(account.Currency(), c.conv)
		if err != nil {
			return err
		}
		if account.Funds.Float() < debit.Float() {
			payment.State = FailedFunds

			// only the failing account keeps its share in the report
			annotated := make([]float64, len(payment.Shares))
			annotated[i] = payment.Shares[i]
			tx := &model.Transaction{
				Timestamp:   payment.Created,
				Description: describe(payment),
				Split:       payment.detail(annotated),
				Error:       fmt.Sprintf("Account %s has insufficient funds for a split payment.", account.IBAN),
			}
			c.broadcast(payment, tx)
			return nil
		}
		legs = append(legs, leg{account: account, debit: debit})
	}

	for i := range legs {
		funds, err := legs[i].account.Funds.Minus(legs[i].debit, c.conv)
		if err != nil {
			return err
		}
		legs[i].account.Funds = funds
	}
	payment.State = Committed

	tx := &model.Transaction{
		Timestamp:   payment.Created,
		Description: describe(payment),
		Split:       payment.detail(payment.Shares),
	}
	c.broadcast(payment, tx)
	return nil
}

// broadcast appends the shared record to every involved account.
func (c *Coordinator) broadcast(payment *Payment, tx *model.Transaction) {
	for i := range payment.IBANs {
		if account, err := c.repo.AccountByIBAN(payment.IBANs[i]); err == nil {
			account.Append(tx)
		}
	}
}

func (c *Coordinator) drop(payment *Payment) {
	for i := range c.pending {
		if c.pending[i] == payment {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// PendingCount returns how many payments still await decisions.
func (c *Coordinator) PendingCount() int {
	return len(c.pending)
}

func (p *Payment) detail(shares []float64) *model.SplitDetail {
	out := make([]float64, len(shares))
	copy(out, shares)
	ibans := make([]string, len(p.IBANs))
	copy(ibans, p.IBANs)
	return &model.SplitDetail{
		Type:          string(p.Type),
		Currency:      p.Currency,
		Total:         p.Total,
		InvolvedIBANs: ibans,
		Shares:        out,
	}
}

func describe(p *Payment) string {
	return fmt.Sprintf("Split payment of %.2f %s", p.Total, p.Currency)
}
