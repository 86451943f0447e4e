// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package splitpay

import (
	"testing"

	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/exchange"
	"github.com/moov-io/banksim/pkg/ledger"
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo  ledger.Repository
	coord *Coordinator
}

// three users, one RON account each, funded 100/100/100
func setup(t *testing.T) *fixture {
	t.Helper()

	repo := ledger.NewIndexed(log.NewNopLogger())
	graph := exchange.NewGraph(log.NewNopLogger())
	require.NoError(t, graph.RegisterRate("EUR", "RON", 5.0))

	emails := []string{"amy@example.com", "bob@example.com", "cat@example.com"}
	for i, email := range emails {
		require.NoError(t, repo.RegisterUser(&model.User{FirstName: "F", LastName: "L", Email: email, Plan: model.StandardPlan}))

		funds, err := model.NewAmount("RON", 100)
		require.NoError(t, err)
		account := &model.Account{
			IBAN:       iban(i),
			OwnerEmail: email,
			Type:       model.ClassicAccount,
			Funds:      funds,
		}
		require.NoError(t, repo.RegisterAccount(account))
	}

	return &fixture{repo: repo, coord: NewCoordinator(log.NewNopLogger(), repo, graph)}
}

func iban(i int) string {
	return []string{
		"RO11BNKS0000000000000001",
		"RO11BNKS0000000000000002",
		"RO11BNKS0000000000000003",
	}[i]
}

func (f *fixture) account(t *testing.T, i int) *model.Account {
	t.Helper()
	account, err := f.repo.AccountByIBAN(iban(i))
	require.NoError(t, err)
	return account
}

func equalSplit(total float64) model.SplitPayment {
	return model.SplitPayment{
		Meta:     model.Meta{Timestamp: 10},
		Type:     model.EqualSplit,
		IBANs:    []string{iban(0), iban(1), iban(2)},
		Currency: "RON",
		Amount:   total,
	}
}

func TestCoordinator__commit(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.coord.Create(equalSplit(90)))

	require.NoError(t, f.coord.Accept("amy@example.com", model.EqualSplit))
	require.NoError(t, f.coord.Accept("bob@example.com", model.EqualSplit))

	// nothing moves until the last owner accepts
	require.InDelta(t, 100, f.account(t, 0).Funds.Float(), 0.001)

	require.NoError(t, f.coord.Accept("cat@example.com", model.EqualSplit))

	total := 0.0
	for i := 0; i < 3; i++ {
		account := f.account(t, i)
		require.InDelta(t, 70, account.Funds.Float(), 0.001)
		total += 100 - account.Funds.Float()

		require.Len(t, account.Transactions, 1)
		tx := account.Transactions[0]
		require.Equal(t, "Split payment of 90.00 RON", tx.Description)
		require.NotNil(t, tx.Split)
		require.InDelta(t, 90, tx.Split.Total, 0.001)
		require.Empty(t, tx.Error)
	}
	require.InDelta(t, 90, total, 0.001)
	require.Equal(t, 0, f.coord.PendingCount())
}

func TestCoordinator__allOrNothing(t *testing.T) {
	f := setup(t)

	// drain bob below his 40 RON share
	f.account(t, 1).Funds = model.Zero("RON")

	require.NoError(t, f.coord.Create(equalSplit(120)))
	require.NoError(t, f.coord.Accept("amy@example.com", model.EqualSplit))
	require.NoError(t, f.coord.Accept("bob@example.com", model.EqualSplit))
	require.NoError(t, f.coord.Accept("cat@example.com", model.EqualSplit))

	require.InDelta(t, 100, f.account(t, 0).Funds.Float(), 0.001)
	require.InDelta(t, 0, f.account(t, 1).Funds.Float(), 0.001)
	require.InDelta(t, 100, f.account(t, 2).Funds.Float(), 0.001)

	for i := 0; i < 3; i++ {
		account := f.account(t, i)
		require.Len(t, account.Transactions, 1)
		tx := account.Transactions[0]
		require.Equal(t, "Account "+iban(1)+" has insufficient funds for a split payment.", tx.Error)

		// only the failing account keeps a share in the report
		require.NotNil(t, tx.Split)
		require.InDelta(t, 0, tx.Split.Shares[0], 0.001)
		require.InDelta(t, 40, tx.Split.Shares[1], 0.001)
		require.InDelta(t, 0, tx.Split.Shares[2], 0.001)
	}
}

func TestCoordinator__reject(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.coord.Create(equalSplit(90)))
	require.NoError(t, f.coord.Accept("amy@example.com", model.EqualSplit))

	require.NoError(t, f.coord.Reject("bob@example.com", model.EqualSplit))

	for i := 0; i < 3; i++ {
		account := f.account(t, i)
		require.InDelta(t, 100, account.Funds.Float(), 0.001)
		require.Len(t, account.Transactions, 1)
		require.Equal(t, "One user rejected the payment.", account.Transactions[0].Error)
	}
	require.Equal(t, 0, f.coord.PendingCount())

	// the payment is terminal: no further decisions exist for it
	err := f.coord.Accept("cat@example.com", model.EqualSplit)
	require.True(t, errkind.Is(err, errkind.NotFound))
}

func TestCoordinator__customShares(t *testing.T) {
	f := setup(t)
	cmd := model.SplitPayment{
		Meta:     model.Meta{Timestamp: 10},
		Type:     model.CustomSplit,
		IBANs:    []string{iban(0), iban(1)},
		Currency: "RON",
		Amount:   90,
		Shares:   []float64{60, 30},
	}
	require.NoError(t, f.coord.Create(cmd))
	require.NoError(t, f.coord.Accept("amy@example.com", model.CustomSplit))
	require.NoError(t, f.coord.Accept("bob@example.com", model.CustomSplit))

	require.InDelta(t, 40, f.account(t, 0).Funds.Float(), 0.001)
	require.InDelta(t, 70, f.account(t, 1).Funds.Float(), 0.001)
}

func TestCoordinator__customSharesMustMatch(t *testing.T) {
	f := setup(t)
	cmd := model.SplitPayment{
		Type:     model.CustomSplit,
		IBANs:    []string{iban(0), iban(1)},
		Currency: "RON",
		Amount:   90,
		Shares:   []float64{90},
	}
	err := f.coord.Create(cmd)
	require.True(t, errkind.Is(err, errkind.Input))
}

func TestCoordinator__crossCurrencyDebit(t *testing.T) {
	f := setup(t)
	cmd := model.SplitPayment{
		Type:     model.EqualSplit,
		IBANs:    []string{iban(0), iban(1)},
		Currency: "EUR",
		Amount:   20, // 10 EUR each = 50 RON each
	}
	require.NoError(t, f.coord.Create(cmd))
	require.NoError(t, f.coord.Accept("amy@example.com", model.EqualSplit))
	require.NoError(t, f.coord.Accept("bob@example.com", model.EqualSplit))

	require.InDelta(t, 50, f.account(t, 0).Funds.Float(), 0.001)
	require.InDelta(t, 50, f.account(t, 1).Funds.Float(), 0.001)
}

func TestCoordinator__decisionsMatchOldestPending(t *testing.T) {
	f := setup(t)
	// two pending equal splits involving the same owners
	require.NoError(t, f.coord.Create(equalSplit(30)))
	require.NoError(t, f.coord.Create(equalSplit(60)))
	require.Equal(t, 2, f.coord.PendingCount())

	// each owner decides the oldest payment first
	require.NoError(t, f.coord.Accept("amy@example.com", model.EqualSplit))
	require.NoError(t, f.coord.Accept("bob@example.com", model.EqualSplit))
	require.NoError(t, f.coord.Accept("cat@example.com", model.EqualSplit))

	// the 30 RON split settled, the 60 RON one still waits
	require.Equal(t, 1, f.coord.PendingCount())
	require.InDelta(t, 90, f.account(t, 0).Funds.Float(), 0.001)
}

func TestCoordinator__unknownAccount(t *testing.T) {
	f := setup(t)
	cmd := equalSplit(30)
	cmd.IBANs = append(cmd.IBANs, "RO99BNKS0000000000000099")
	err := f.coord.Create(cmd)
	require.True(t, errkind.Is(err, errkind.NotFound))
}
