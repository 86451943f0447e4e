// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package report

import (
	"sort"

	"github.com/moov-io/banksim/pkg/ledger"
	"github.com/moov-io/banksim/pkg/model"
)

// CardView is the printed shape of a card.
type CardView struct {
	Number string `json:"cardNumber"`
	Status string `json:"status"`
}

// AccountView is the printed shape of an account.
type AccountView struct {
	IBAN     string     `json:"IBAN"`
	Balance  float64    `json:"balance"`
	Currency string     `json:"currency"`
	Type     string     `json:"type"`
	Cards    []CardView `json:"cards"`
}

// UserView is the printed shape of a user with all owned accounts.
type UserView struct {
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Plan      string        `json:"plan"`
	Accounts  []AccountView `json:"accounts"`
}

func accountView(a *model.Account) AccountView {
	cards := make([]CardView, 0, len(a.Cards))
	for i := range a.Cards {
		cards = append(cards, CardView{
			Number: a.Cards[i].Number,
			Status: string(a.Cards[i].Status),
		})
	}
	return AccountView{
		IBAN:     a.IBAN,
		Balance:  a.Funds.Float(),
		Currency: a.Currency(),
		Type:     string(a.Type),
		Cards:    cards,
	}
}

// Users serializes every registered user in registration order.
func Users(repo ledger.Repository) []UserView {
	users := repo.Users()
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		accounts := repo.AccountsOf(u)
		views := make([]AccountView, 0, len(accounts))
		for i := range accounts {
			views = append(views, accountView(accounts[i]))
		}
		out = append(out, UserView{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Plan:      string(u.Plan),
			Accounts:  views,
		})
	}
	return out
}

// Transactions flattens a user's transactions across every owned account,
// ordered by timestamp (stable for ties).
func Transactions(repo ledger.Repository, u *model.User) []*model.Transaction {
	var out []*model.Transaction
	for _, account := range repo.AccountsOf(u) {
		out = append(out, account.Transactions...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	if out == nil {
		out = []*model.Transaction{}
	}
	return out
}

// AccountReport is the classic per-account report over a time window.
type AccountReport struct {
	IBAN         string               `json:"IBAN"`
	Balance      float64              `json:"balance"`
	Currency     string               `json:"currency"`
	Transactions []*model.Transaction `json:"transactions"`
}

// between filters transactions to the inclusive [start, end] window.
func between(txs []*model.Transaction, start, end int) []*model.Transaction {
	out := []*model.Transaction{}
	for i := range txs {
		if txs[i].Timestamp >= start && txs[i].Timestamp <= end {
			out = append(out, txs[i])
		}
	}
	return out
}

// Classic builds the standard report for any account kind.
func Classic(a *model.Account, start, end int) AccountReport {
	return AccountReport{
		IBAN:         a.IBAN,
		Balance:      a.Funds.Float(),
		Currency:     a.Currency(),
		Transactions: between(a.Transactions, start, end),
	}
}

// CommerciantTotal is one line of the spendings report.
type CommerciantTotal struct {
	Name  string  `json:"commerciant"`
	Total float64 `json:"total"`
}

// SpendingsView is the card-payments-only report with per-commerciant totals.
type SpendingsView struct {
	IBAN         string               `json:"IBAN"`
	Balance      float64              `json:"balance"`
	Currency     string               `json:"currency"`
	Transactions []*model.Transaction `json:"transactions"`
	Commerciants []CommerciantTotal   `json:"commerciants"`
}

// Spendings builds the card-payment spendings report over a window.
// Commerciant totals are summed from the windowed payments and listed
// alphabetically.
func Spendings(a *model.Account, start, end int) SpendingsView {
	payments := []*model.Transaction{}
	totals := make(map[string]float64)
	for _, tx := range between(a.Transactions, start, end) {
		if tx.Payment == nil {
			continue
		}
		payments = append(payments, tx)
		totals[tx.Payment.Commerciant] += tx.Payment.Amount
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	commerciants := make([]CommerciantTotal, 0, len(names))
	for _, name := range names {
		commerciants = append(commerciants, CommerciantTotal{Name: name, Total: totals[name]})
	}

	return SpendingsView{
		IBAN:         a.IBAN,
		Balance:      a.Funds.Float(),
		Currency:     a.Currency(),
		Transactions: payments,
		Commerciants: commerciants,
	}
}

// AssociateView is one associate line of the business transaction report.
type AssociateView struct {
	Username  string  `json:"username"`
	Spent     float64 `json:"spent"`
	Deposited float64 `json:"deposited"`
}

// BusinessView is the business transaction report.
type BusinessView struct {
	IBAN           string          `json:"IBAN"`
	Balance        float64         `json:"balance"`
	Currency       string          `json:"currency"`
	SpendingLimit  float64         `json:"spending limit"`
	DepositLimit   float64         `json:"deposit limit"`
	StatisticsType string          `json:"statistics type"`
	Managers       []AssociateView `json:"managers"`
	Employees      []AssociateView `json:"employees"`
	TotalSpent     float64         `json:"total spent"`
	TotalDeposited float64         `json:"total deposited"`
}

func username(repo ledger.Repository, email string) string {
	if u, err := repo.UserByEmail(email); err == nil {
		return u.LastName + " " + u.FirstName
	}
	return email
}

// Business builds the transaction-flavored business report: per-associate
// running totals plus account-wide sums.
func Business(repo ledger.Repository, a *model.Account) BusinessView {
	view := BusinessView{
		IBAN:           a.IBAN,
		Balance:        a.Funds.Float(),
		Currency:       a.Currency(),
		SpendingLimit:  a.SpendingLimit,
		DepositLimit:   a.DepositLimit,
		StatisticsType: string(model.TransactionBusinessReport),
		Managers:       []AssociateView{},
		Employees:      []AssociateView{},
	}
	for _, assoc := range a.Associates {
		line := AssociateView{
			Username:  username(repo, assoc.Email),
			Spent:     assoc.Spent,
			Deposited: assoc.Deposited,
		}
		switch assoc.Role {
		case model.ManagerRole:
			view.Managers = append(view.Managers, line)
		case model.EmployeeRole:
			view.Employees = append(view.Employees, line)
		}
		view.TotalSpent += assoc.Spent
		view.TotalDeposited += assoc.Deposited
	}
	return view
}

// BusinessCommerciantLine is one commerciant of the commerciant-flavored
// business report.
type BusinessCommerciantLine struct {
	Name          string   `json:"commerciant"`
	TotalReceived float64  `json:"total received"`
	Managers      []string `json:"managers"`
	Employees     []string `json:"employees"`
}

// BusinessCommerciantView is the commerciant-flavored business report.
type BusinessCommerciantView struct {
	IBAN           string                    `json:"IBAN"`
	Balance        float64                   `json:"balance"`
	Currency       string                    `json:"currency"`
	SpendingLimit  float64                   `json:"spending limit"`
	DepositLimit   float64                   `json:"deposit limit"`
	StatisticsType string                    `json:"statistics type"`
	Commerciants   []BusinessCommerciantLine `json:"commerciants"`
}

// BusinessCommerciants builds the commerciant-flavored business report,
// listing commerciants alphabetically with the associates who paid them.
func BusinessCommerciants(repo ledger.Repository, a *model.Account) BusinessCommerciantView {
	view := BusinessCommerciantView{
		IBAN:           a.IBAN,
		Balance:        a.Funds.Float(),
		Currency:       a.Currency(),
		SpendingLimit:  a.SpendingLimit,
		DepositLimit:   a.DepositLimit,
		StatisticsType: string(model.CommerciantBusinessReport),
		Commerciants:   []BusinessCommerciantLine{},
	}

	stats := make([]*model.CommerciantStats, len(a.Commerciants))
	copy(stats, a.Commerciants)
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Name < stats[j].Name
	})

	for _, cs := range stats {
		if len(cs.ManagerPayers) == 0 && len(cs.EmployeePayers) == 0 {
			continue
		}
		managers := make([]string, 0, len(cs.ManagerPayers))
		for _, email := range cs.ManagerPayers {
			managers = append(managers, username(repo, email))
		}
		employees := make([]string, 0, len(cs.EmployeePayers))
		for _, email := range cs.EmployeePayers {
			employees = append(employees, username(repo, email))
		}
		view.Commerciants = append(view.Commerciants, BusinessCommerciantLine{
			Name:          cs.Name,
			TotalReceived: cs.Spent,
			Managers:      managers,
			Employees:     employees,
		})
	}
	return view
}
