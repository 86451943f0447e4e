// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package dispatch

import (
	"context"

	"github.com/moov-io/banksim/pkg/authz"
	"github.com/moov-io/banksim/pkg/config"
	"github.com/moov-io/banksim/pkg/exchange"
	"github.com/moov-io/banksim/pkg/fees"
	"github.com/moov-io/banksim/pkg/idgen"
	"github.com/moov-io/banksim/pkg/ledger"
	"github.com/moov-io/banksim/pkg/model"
	"github.com/moov-io/banksim/pkg/report"
	"github.com/moov-io/banksim/pkg/splitpay"
	"github.com/moov-io/banksim/pkg/stream"

	"github.com/go-kit/kit/log"
)

// Environment is the run context threaded through every command execution.
// One Environment exists per batch run and is discarded afterwards; there
// is no process-wide state.
type Environment struct {
	Logger log.Logger
	Cfg    *config.Config

	Repo   ledger.Repository
	Graph  *exchange.Graph
	Policy *authz.Policy
	Fees   *fees.Engine
	Splits *splitpay.Coordinator
	IDs    *idgen.Generator

	Results   *report.Builder
	Publisher *stream.Publisher
}

func NewEnvironment(cfg *config.Config, repo ledger.Repository, graph *exchange.Graph, pub *stream.Publisher) *Environment {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Environment{
		Logger:    logger,
		Cfg:       cfg,
		Repo:      repo,
		Graph:     graph,
		Policy:    authz.NewPolicy(logger, graph),
		Fees:      fees.NewEngine(logger, graph),
		Splits:    splitpay.NewCoordinator(logger, repo, graph),
		IDs:       idgen.New(cfg.Seed),
		Results:   report.NewBuilder(),
		Publisher: pub,
	}
}

// record appends a transaction to an account and mirrors it onto the
// audit stream when one is configured.
func (e *Environment) record(account *model.Account, tx *model.Transaction) {
	account.Append(tx)
	if err := e.Publisher.Publish(context.Background(), account.IBAN, tx); err != nil {
		e.Logger.Log("stream", err)
	}
}

// actorMayUse reports whether email is the owner of account or, for
// business accounts, a registered associate. This is the membership check
// only; limits are enforced by the authorization policy at commit time.
func (e *Environment) actorMayUse(account *model.Account, email string) bool {
	if account.IsOwner(email) {
		return true
	}
	return account.Type == model.BusinessAccount && account.FindAssociate(email) != nil
}
