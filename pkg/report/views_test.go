// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/moov-io/banksim/pkg/ledger"
	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
)

func testRepo(t *testing.T) ledger.Repository {
	t.Helper()
	repo := ledger.NewIndexed(log.NewNopLogger())

	require.NoError(t, repo.RegisterUser(&model.User{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Plan: model.StandardPlan,
	}))

	funds, err := model.NewAmount("RON", 150)
	require.NoError(t, err)
	require.NoError(t, repo.RegisterAccount(&model.Account{
		IBAN: "RO11BNKS0000000000000001", OwnerEmail: "jane@example.com",
		Type: model.ClassicAccount, Funds: funds,
	}))
	require.NoError(t, repo.RegisterCard(&model.Card{
		Number: "1111222233334444", AccountIBAN: "RO11BNKS0000000000000001",
		Type: model.ClassicCard, Status: model.CardActive,
	}))
	return repo
}

func TestUsers(t *testing.T) {
	repo := testRepo(t)

	views := Users(repo)
	require.Len(t, views, 1)
	require.Equal(t, "jane@example.com", views[0].Email)
	require.Equal(t, "standard", views[0].Plan)
	require.Len(t, views[0].Accounts, 1)
	require.Equal(t, "RO11BNKS0000000000000001", views[0].Accounts[0].IBAN)
	require.InDelta(t, 150.0, views[0].Accounts[0].Balance, 0.001)
	require.Len(t, views[0].Accounts[0].Cards, 1)
	require.Equal(t, "active", views[0].Accounts[0].Cards[0].Status)
}

func TestTransactions__sortedAcrossAccounts(t *testing.T) {
	repo := testRepo(t)
	u, err := repo.UserByEmail("jane@example.com")
	require.NoError(t, err)

	funds, err := model.NewAmount("RON", 0)
	require.NoError(t, err)
	require.NoError(t, repo.RegisterAccount(&model.Account{
		IBAN: "RO11BNKS0000000000000002", OwnerEmail: "jane@example.com",
		Type: model.SavingsAccount, Funds: funds,
	}))

	first, err := repo.AccountByIBAN("RO11BNKS0000000000000001")
	require.NoError(t, err)
	second, err := repo.AccountByIBAN("RO11BNKS0000000000000002")
	require.NoError(t, err)

	first.Append(&model.Transaction{Timestamp: 3, Description: "third"})
	second.Append(&model.Transaction{Timestamp: 1, Description: "first"})
	first.Append(&model.Transaction{Timestamp: 2, Description: "second"})

	txs := Transactions(repo, u)
	require.Len(t, txs, 3)
	require.Equal(t, "first", txs[0].Description)
	require.Equal(t, "second", txs[1].Description)
	require.Equal(t, "third", txs[2].Description)
}

func TestClassic__window(t *testing.T) {
	repo := testRepo(t)
	account, err := repo.AccountByIBAN("RO11BNKS0000000000000001")
	require.NoError(t, err)

	account.Append(&model.Transaction{Timestamp: 1, Description: "early"})
	account.Append(&model.Transaction{Timestamp: 5, Description: "inside"})
	account.Append(&model.Transaction{Timestamp: 9, Description: "late"})

	view := Classic(account, 2, 8)
	require.Len(t, view.Transactions, 1)
	require.Equal(t, "inside", view.Transactions[0].Description)
	require.Equal(t, "RON", view.Currency)
}

func TestSpendings__totalsAlphabetical(t *testing.T) {
	repo := testRepo(t)
	account, err := repo.AccountByIBAN("RO11BNKS0000000000000001")
	require.NoError(t, err)

	account.Append(&model.Transaction{Timestamp: 1, Description: "Card payment",
		Payment: &model.PaymentDetail{Amount: 30, Commerciant: "Zara"}})
	account.Append(&model.Transaction{Timestamp: 2, Description: "Card payment",
		Payment: &model.PaymentDetail{Amount: 20, Commerciant: "Altex"}})
	account.Append(&model.Transaction{Timestamp: 3, Description: "not a payment"})
	account.Append(&model.Transaction{Timestamp: 4, Description: "Card payment",
		Payment: &model.PaymentDetail{Amount: 10, Commerciant: "Zara"}})

	view := Spendings(account, 0, 10)
	require.Len(t, view.Transactions, 3)
	require.Len(t, view.Commerciants, 2)
	require.Equal(t, "Altex", view.Commerciants[0].Name)
	require.InDelta(t, 20.0, view.Commerciants[0].Total, 0.001)
	require.Equal(t, "Zara", view.Commerciants[1].Name)
	require.InDelta(t, 40.0, view.Commerciants[1].Total, 0.001)
}

func TestBusiness(t *testing.T) {
	repo := testRepo(t)
	require.NoError(t, repo.RegisterUser(&model.User{
		FirstName: "John", LastName: "Smith", Email: "john@example.com", Plan: model.StandardPlan,
	}))

	funds, err := model.NewAmount("RON", 1000)
	require.NoError(t, err)
	account := &model.Account{
		IBAN: "RO11BNKS0000000000000009", OwnerEmail: "jane@example.com",
		Type: model.BusinessAccount, Funds: funds,
		SpendingLimit: 500, DepositLimit: 500,
	}
	require.NoError(t, repo.RegisterAccount(account))
	require.NoError(t, account.AddAssociate("john@example.com", model.EmployeeRole))
	account.FindAssociate("john@example.com").Spent = 120

	view := Business(repo, account)
	require.Empty(t, view.Managers)
	require.Len(t, view.Employees, 1)
	require.Equal(t, "Smith John", view.Employees[0].Username)
	require.InDelta(t, 120.0, view.TotalSpent, 0.001)
	require.Equal(t, "transaction", view.StatisticsType)
}

func TestBusinessCommerciants(t *testing.T) {
	repo := testRepo(t)
	require.NoError(t, repo.RegisterUser(&model.User{
		FirstName: "John", LastName: "Smith", Email: "john@example.com", Plan: model.StandardPlan,
	}))

	funds, err := model.NewAmount("RON", 1000)
	require.NoError(t, err)
	account := &model.Account{
		IBAN: "RO11BNKS0000000000000009", OwnerEmail: "jane@example.com",
		Type: model.BusinessAccount, Funds: funds,
	}
	require.NoError(t, repo.RegisterAccount(account))

	zara := account.Stats("Zara")
	zara.Spent = 75
	zara.EmployeePayers = []string{"john@example.com"}
	altex := account.Stats("Altex")
	altex.Spent = 40
	altex.ManagerPayers = []string{"john@example.com"}
	account.Stats("Untouched") // no payers, should be skipped

	view := BusinessCommerciants(repo, account)
	require.Len(t, view.Commerciants, 2)
	require.Equal(t, "Altex", view.Commerciants[0].Name)
	require.Equal(t, []string{"Smith John"}, view.Commerciants[0].Managers)
	require.Equal(t, "Zara", view.Commerciants[1].Name)
	require.Equal(t, []string{"Smith John"}, view.Commerciants[1].Employees)
}

func TestBuilder__writeTo(t *testing.T) {
	b := NewBuilder()
	b.Append("printUsers", 1, []UserView{})
	b.Error("report", 2, "Account not found")

	var buf bytes.Buffer
	require.NoError(t, b.WriteTo(&buf))

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	require.Equal(t, "printUsers", records[0]["command"])

	out, ok := records[1]["output"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Account not found", out["description"])
}

func TestBuilder__emptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBuilder().WriteTo(&buf))
	require.Equal(t, "[]\n", buf.String())
}
