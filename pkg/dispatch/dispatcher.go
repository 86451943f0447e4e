// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package dispatch executes typed commands against the ledger.
//
// Every execution is wrapped: a domain error carries zero or more sink
// actions (append an error result record, append a synthesized transaction
// to an account, or both). An error without sinks is logged and the run
// continues; no error ever aborts the batch.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"
	"github.com/moov-io/banksim/pkg/report"

	"github.com/go-kit/kit/log"
	kitprom "github.com/go-kit/kit/metrics/prometheus"
	stdprom "github.com/prometheus/client_golang/prometheus"
)

var (
	commandsProcessed = kitprom.NewCounterFrom(stdprom.CounterOpts{
		Name: "commands_processed",
		Help: "Count of commands executed successfully",
	}, []string{"command"})

	commandFailures = kitprom.NewCounterFrom(stdprom.CounterOpts{
		Name: "command_failures",
		Help: "Count of command failures by error kind",
	}, []string{"command", "kind"})
)

// Sink is one action performed instead of normal completion when a
// command fails.
type Sink interface {
	Flush(env *Environment, cmd model.Command, err error)
}

// Failure wraps a domain error with the sink actions its command
// configured.
type Failure struct {
	Err   error
	Sinks []Sink
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func fail(err error, sinks ...Sink) error {
	return &Failure{Err: err, Sinks: sinks}
}

type resultSink struct{}

func (resultSink) Flush(env *Environment, cmd model.Command, err error) {
	env.Results.Error(cmd.Name(), cmd.When(), errkind.Message(err))
}

// ResultRecord appends an error-shaped result record for the failed
// command.
func ResultRecord() Sink {
	return resultSink{}
}

type deletionSink struct{}

func (deletionSink) Flush(env *Environment, cmd model.Command, err error) {
	env.Results.Append(cmd.Name(), cmd.When(), report.DeletionOutput{
		Timestamp: cmd.When(),
		Error:     errkind.Message(err),
	})
}

type transactionSink struct {
	account *model.Account
}

func (s transactionSink) Flush(env *Environment, cmd model.Command, err error) {
	env.record(s.account, &model.Transaction{
		Timestamp:   cmd.When(),
		Description: errkind.Message(err),
	})
}

// AccountTransaction synthesizes a failure transaction on the account.
func AccountTransaction(account *model.Account) Sink {
	return transactionSink{account: account}
}

// DeletionError reports a failed account deletion in the shape deletion
// results use.
func DeletionError() Sink {
	return deletionSink{}
}

type Dispatcher struct {
	logger log.Logger
	env    *Environment
}

func New(logger log.Logger, env *Environment) *Dispatcher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Dispatcher{logger: logger, env: env}
}

// Environment exposes the run context, mainly so callers can collect the
// result records afterwards.
func (d *Dispatcher) Environment() *Environment {
	return d.env
}

// Run processes the batch strictly in order.
func (d *Dispatcher) Run(cmds []model.Command) {
	for i := range cmds {
		d.Dispatch(cmds[i])
	}
}

// Dispatch executes one command. On failure the command's sinks run
// instead of normal completion; a failure without sinks is logged and
// treated as handled.
func (d *Dispatcher) Dispatch(cmd model.Command) {
	err := d.execute(cmd)
	if err == nil {
		commandsProcessed.With("command", cmd.Name()).Add(1)
		return
	}
	commandFailures.With("command", cmd.Name(), "kind", kindOf(err)).Add(1)

	var failure *Failure
	if errors.As(err, &failure) && len(failure.Sinks) > 0 {
		for i := range failure.Sinks {
			failure.Sinks[i].Flush(d.env, cmd, failure.Err)
		}
		return
	}
	d.logger.Log("dispatch", fmt.Sprintf("%s at %d: %v", cmd.Name(), cmd.When(), err))
}

func kindOf(err error) string {
	var e *errkind.Error
	if errors.As(err, &e) {
		return string(e.Kind)
	}
	return "other"
}

func (d *Dispatcher) execute(cmd model.Command) error {
	switch cc := cmd.(type) {
	case model.AddAccount:
		return d.addAccount(cc)
	case model.AddFunds:
		return d.addFunds(cc)
	case model.DeleteAccount:
		return d.deleteAccount(cc)
	case model.SetAlias:
		return d.setAlias(cc)
	case model.SetMinimumBalance:
		return d.setMinimumBalance(cc)
	case model.AddInterest:
		return d.addInterest(cc)
	case model.ChangeInterestRate:
		return d.changeInterestRate(cc)
	case model.WithdrawSavings:
		return d.withdrawSavings(cc)
	case model.CreateCard:
		return d.createCard(cc)
	case model.DeleteCard:
		return d.deleteCard(cc)
	case model.CheckCardStatus:
		return d.checkCardStatus(cc)
	case model.CashWithdrawal:
		return d.cashWithdrawal(cc)
	case model.PayOnline:
		return d.payOnline(cc)
	case model.SendMoney:
		return d.sendMoney(cc)
	case model.SplitPayment:
		return d.splitPayment(cc)
	case model.AcceptSplitPayment:
		return d.acceptSplitPayment(cc)
	case model.RejectSplitPayment:
		return d.rejectSplitPayment(cc)
	case model.UpgradePlan:
		return d.upgradePlan(cc)
	case model.AddBusinessAssociate:
		return d.addBusinessAssociate(cc)
	case model.ChangeSpendingLimit:
		return d.changeSpendingLimit(cc)
	case model.ChangeDepositLimit:
		return d.changeDepositLimit(cc)
	case model.PrintUsers:
		return d.printUsers(cc)
	case model.PrintTransactions:
		return d.printTransactions(cc)
	case model.Report:
		return d.report(cc)
	case model.SpendingsReport:
		return d.spendingsReport(cc)
	case model.BusinessReport:
		return d.businessReport(cc)
	}
	return errkind.Ef(errkind.Input, "unknown command %T", cmd)
}
