// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package fees

import (
	"testing"

	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/exchange"
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
)

func ron(t *testing.T, v float64) model.Amount {
	t.Helper()
	amt, err := model.NewAmount("RON", v)
	require.NoError(t, err)
	return amt
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	graph := exchange.NewGraph(log.NewNopLogger())
	require.NoError(t, graph.RegisterRate("EUR", "RON", 5.0))
	return NewEngine(log.NewNopLogger(), graph)
}

func TestEngine__planFees(t *testing.T) {
	engine := testEngine(t)

	fee, err := engine.Fee(model.StandardPlan, ron(t, 1000))
	require.NoError(t, err)
	require.InDelta(t, 2.0, fee.Float(), 0.001)

	// silver only pays on transactions of at least 500 RON
	fee, err = engine.Fee(model.SilverPlan, ron(t, 499))
	require.NoError(t, err)
	require.True(t, fee.IsZero())

	fee, err = engine.Fee(model.SilverPlan, ron(t, 600))
	require.NoError(t, err)
	require.InDelta(t, 0.6, fee.Float(), 0.001)

	for _, tier := range []model.PlanTier{model.StudentPlan, model.GoldPlan} {
		fee, err = engine.Fee(tier, ron(t, 10000))
		require.NoError(t, err)
		require.True(t, fee.IsZero())
	}
}

func TestEngine__feeConvertsToRON(t *testing.T) {
	engine := testEngine(t)

	eur, err := model.NewAmount("EUR", 120) // 600 RON
	require.NoError(t, err)

	fee, err := engine.Fee(model.SilverPlan, eur)
	require.NoError(t, err)
	require.Equal(t, "EUR", fee.Currency())
	require.InDelta(t, 0.12, fee.Float(), 0.001)
}

func TestEngine__spendingTierCashback(t *testing.T) {
	engine := testEngine(t)
	account := &model.Account{IBAN: "RO1", OwnerEmail: "jane@example.com", Type: model.ClassicAccount, Funds: model.Zero("RON")}
	commerciant := &model.Commerciant{Name: "MegaFood", Category: model.FoodCategory, Strategy: model.SpendingStrategy}

	// first payment lands at 80 RON cumulative: still tier 0
	cb, err := engine.Cashback(account, commerciant, model.StandardPlan, ron(t, 80))
	require.NoError(t, err)
	require.True(t, cb.IsZero())

	// 80 + 40 = 120 crosses the 100 RON threshold: 0.1% of this payment
	cb, err = engine.Cashback(account, commerciant, model.StandardPlan, ron(t, 40))
	require.NoError(t, err)
	require.InDelta(t, 0.04, cb.Float(), 0.0001)

	// 120 + 400 = 520 reaches the top tier: 0.25% of this payment
	cb, err = engine.Cashback(account, commerciant, model.StandardPlan, ron(t, 400))
	require.NoError(t, err)
	require.InDelta(t, 1.0, cb.Float(), 0.0001)
}

func TestEngine__goldScheduleIsRicher(t *testing.T) {
	engine := testEngine(t)
	account := &model.Account{IBAN: "RO1", OwnerEmail: "jane@example.com", Type: model.ClassicAccount, Funds: model.Zero("RON")}
	commerciant := &model.Commerciant{Name: "MegaFood", Category: model.FoodCategory, Strategy: model.SpendingStrategy}

	cb, err := engine.Cashback(account, commerciant, model.GoldPlan, ron(t, 600))
	require.NoError(t, err)
	require.InDelta(t, 600*0.007, cb.Float(), 0.0001)
}

func TestEngine__transactionCountCashback(t *testing.T) {
	engine := testEngine(t)
	account := &model.Account{IBAN: "RO1", OwnerEmail: "jane@example.com", Type: model.ClassicAccount, Funds: model.Zero("RON")}
	commerciant := &model.Commerciant{Name: "PizzaHub", Category: model.FoodCategory, Strategy: model.CountStrategy}

	// first payment: counter at 1, under the Food threshold of 2
	cb, err := engine.Cashback(account, commerciant, model.StandardPlan, ron(t, 50))
	require.NoError(t, err)
	require.True(t, cb.IsZero())

	// second payment hits the threshold: 2% of this transaction only
	cb, err = engine.Cashback(account, commerciant, model.StandardPlan, ron(t, 50))
	require.NoError(t, err)
	require.InDelta(t, 1.0, cb.Float(), 0.0001)

	// later payments are unaffected
	cb, err = engine.Cashback(account, commerciant, model.StandardPlan, ron(t, 50))
	require.NoError(t, err)
	require.True(t, cb.IsZero())
}

func TestEngine__techCountCashback(t *testing.T) {
	engine := testEngine(t)
	account := &model.Account{IBAN: "RO1", OwnerEmail: "jane@example.com", Type: model.ClassicAccount, Funds: model.Zero("RON")}
	commerciant := &model.Commerciant{Name: "ChipShop", Category: model.TechCategory, Strategy: model.CountStrategy}

	for i := 0; i < 9; i++ {
		cb, err := engine.Cashback(account, commerciant, model.StandardPlan, ron(t, 100))
		require.NoError(t, err)
		require.True(t, cb.IsZero(), "payment %d", i+1)
	}
	cb, err := engine.Cashback(account, commerciant, model.StandardPlan, ron(t, 100))
	require.NoError(t, err)
	require.InDelta(t, 10.0, cb.Float(), 0.0001)
}

func TestUpgradeFee(t *testing.T) {
	fee, err := UpgradeFee(model.StandardPlan, model.SilverPlan)
	require.NoError(t, err)
	require.InDelta(t, 100, fee.Float(), 0.001)

	fee, err = UpgradeFee(model.SilverPlan, model.GoldPlan)
	require.NoError(t, err)
	require.InDelta(t, 250, fee.Float(), 0.001)

	fee, err = UpgradeFee(model.StudentPlan, model.GoldPlan)
	require.NoError(t, err)
	require.InDelta(t, 350, fee.Float(), 0.001)

	_, err = UpgradeFee(model.GoldPlan, model.SilverPlan)
	require.True(t, errkind.Is(err, errkind.Operation))

	_, err = UpgradeFee(model.SilverPlan, model.SilverPlan)
	require.True(t, errkind.Is(err, errkind.Operation))

	// standard <-> student share a rank, neither direction is an upgrade
	_, err = UpgradeFee(model.StandardPlan, model.StudentPlan)
	require.True(t, errkind.Is(err, errkind.Operation))
}
