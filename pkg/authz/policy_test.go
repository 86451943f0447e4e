// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package authz

import (
	"testing"

	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/exchange"
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
)

func testBusinessAccount(t *testing.T) *model.Account {
	t.Helper()

	funds, err := model.NewAmount("RON", 10000)
	require.NoError(t, err)

	account := &model.Account{
		IBAN:          "RO11BNKS0000000000000001",
		OwnerEmail:    "owner@example.com",
		Type:          model.BusinessAccount,
		Funds:         funds,
		SpendingLimit: 500,
		DepositLimit:  500,
	}
	require.NoError(t, account.AddAssociate("manager@example.com", model.ManagerRole))
	require.NoError(t, account.AddAssociate("employee@example.com", model.EmployeeRole))
	return account
}

func ron(t *testing.T, v float64) model.Amount {
	t.Helper()
	amt, err := model.NewAmount("RON", v)
	require.NoError(t, err)
	return amt
}

func TestPolicy__ownerAlwaysActs(t *testing.T) {
	policy := NewPolicy(log.NewNopLogger(), exchange.NewGraph(log.NewNopLogger()))
	account := testBusinessAccount(t)

	require.NoError(t, policy.AuthorizeSpend(account, "owner@example.com", ron(t, 9999)))
	require.NoError(t, policy.AuthorizeDeposit(account, "owner@example.com", ron(t, 9999)))
}

func TestPolicy__strangerRejected(t *testing.T) {
	policy := NewPolicy(log.NewNopLogger(), exchange.NewGraph(log.NewNopLogger()))
	account := testBusinessAccount(t)

	err := policy.AuthorizeSpend(account, "stranger@example.com", ron(t, 1))
	require.Error(t, err)
	require.True(t, errkind.Is(err, errkind.Ownership))
}

func TestPolicy__personalAccountsAreOwnerOnly(t *testing.T) {
	policy := NewPolicy(log.NewNopLogger(), exchange.NewGraph(log.NewNopLogger()))
	account := &model.Account{
		IBAN:       "RO11BNKS0000000000000002",
		OwnerEmail: "owner@example.com",
		Type:       model.ClassicAccount,
		Funds:      ron(t, 100),
	}

	require.NoError(t, policy.AuthorizeSpend(account, "owner@example.com", ron(t, 10)))

	err := policy.AuthorizeSpend(account, "other@example.com", ron(t, 10))
	require.True(t, errkind.Is(err, errkind.Ownership))
}

func TestPolicy__employeeLimit(t *testing.T) {
	policy := NewPolicy(log.NewNopLogger(), exchange.NewGraph(log.NewNopLogger()))
	account := testBusinessAccount(t)

	// within the limit, the running total commits
	require.NoError(t, policy.AuthorizeSpend(account, "employee@example.com", ron(t, 400)))
	require.InDelta(t, 400, account.FindAssociate("employee@example.com").Spent, 0.001)

	// the next spend would cross 500, so it fails and the total is untouched
	err := policy.AuthorizeSpend(account, "employee@example.com", ron(t, 200))
	require.True(t, errkind.Is(err, errkind.Operation))
	require.InDelta(t, 400, account.FindAssociate("employee@example.com").Spent, 0.001)
}

func TestPolicy__managerExempt(t *testing.T) {
	policy := NewPolicy(log.NewNopLogger(), exchange.NewGraph(log.NewNopLogger()))
	account := testBusinessAccount(t)

	require.NoError(t, policy.AuthorizeSpend(account, "manager@example.com", ron(t, 9000)))
	require.InDelta(t, 9000, account.FindAssociate("manager@example.com").Spent, 0.001)
}

func TestPolicy__depositLimit(t *testing.T) {
	policy := NewPolicy(log.NewNopLogger(), exchange.NewGraph(log.NewNopLogger()))
	account := testBusinessAccount(t)

	require.NoError(t, policy.AuthorizeDeposit(account, "employee@example.com", ron(t, 500)))

	err := policy.AuthorizeDeposit(account, "employee@example.com", ron(t, 1))
	require.True(t, errkind.Is(err, errkind.Operation))
	require.InDelta(t, 500, account.FindAssociate("employee@example.com").Deposited, 0.001)
}

func TestPolicy__limitCheckConvertsCurrency(t *testing.T) {
	graph := exchange.NewGraph(log.NewNopLogger())
	require.NoError(t, graph.RegisterRate("EUR", "RON", 5.0))
	policy := NewPolicy(log.NewNopLogger(), graph)

	account := testBusinessAccount(t)

	eur, err := model.NewAmount("EUR", 150) // 750 RON
	require.NoError(t, err)

	spendErr := policy.AuthorizeSpend(account, "employee@example.com", eur)
	require.True(t, errkind.Is(spendErr, errkind.Operation))
}

func TestPolicy__adjustLimits(t *testing.T) {
	policy := NewPolicy(log.NewNopLogger(), exchange.NewGraph(log.NewNopLogger()))
	account := testBusinessAccount(t)

	require.NoError(t, policy.CanAdjustLimits(account, "owner@example.com"))
	require.True(t, errkind.Is(policy.CanAdjustLimits(account, "manager@example.com"), errkind.Ownership))

	personal := &model.Account{IBAN: "RO1", OwnerEmail: "owner@example.com", Type: model.ClassicAccount, Funds: model.Zero("RON")}
	require.True(t, errkind.Is(policy.CanAdjustLimits(personal, "owner@example.com"), errkind.Operation))
}
