// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package fees resolves per-transaction plan fees and commerciant cashback.
//
// Fees come from the payer's service plan; cashback comes from the
// commerciant's strategy, either a fraction of every payment chosen by the
// cumulative spending tier or a one-shot discount when the per-category
// payment counter reaches the category threshold.
package fees

import (
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
)

type Engine struct {
	logger log.Logger
	conv   model.Converter
}

func NewEngine(logger log.Logger, conv model.Converter) *Engine {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Engine{logger: logger, conv: conv}
}

// Fee returns the plan fee for a transaction, in the transaction currency.
func (e *Engine) Fee(tier model.PlanTier, amount model.Amount) (model.Amount, error) {
	ron, err := amount.In("RON", e.conv)
	if err != nil {
		return model.Amount{}, err
	}
	return amount.Scale(feeRate(tier, ron.Float())), nil
}

// Cashback resolves the reward for a payment to a commerciant and commits
// the per-commerciant running stats on the account. The returned Amount is
// in the payment currency and may be zero.
func (e *Engine) Cashback(account *model.Account, commerciant *model.Commerciant, tier model.PlanTier, amount model.Amount) (model.Amount, error) {
	ron, err := amount.In("RON", e.conv)
	if err != nil {
		return model.Amount{}, err
	}
	stats := account.Stats(commerciant.Name)

	switch commerciant.Strategy {
	case model.SpendingStrategy:
		stats.Spent += ron.Float()
		rate := cashbackSchedules[tier][spendingTier(stats.Spent)]
		return amount.Scale(rate), nil

	case model.CountStrategy:
		stats.Payments++
		if !stats.Rewarded && stats.Payments == commerciant.Category.CountThreshold() {
			stats.Rewarded = true
			return amount.Scale(commerciant.Category.CountDiscount()), nil
		}
	}
	return model.Zero(amount.Currency()), nil
}
