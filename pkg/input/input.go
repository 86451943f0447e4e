// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package input decodes a batch document into typed commands.
//
// A document carries the declarations (users, commerciants, exchange rates)
// and the ordered command list. Unknown or malformed commands are skipped
// with a log line; a document missing its declarations is rejected outright.
package input

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/moov-io/banksim/pkg/model"

	"github.com/go-kit/kit/log"
)

// Rate is one declared conversion, applied to the currency graph before any
// command runs.
type Rate struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// Batch is a fully decoded document.
type Batch struct {
	Users        []*model.User
	Commerciants []*model.Commerciant
	Rates        []Rate
	Commands     []model.Command
}

type document struct {
	Users         []*model.User        `json:"users"`
	Commerciants  []*model.Commerciant `json:"commerciants"`
	ExchangeRates []Rate               `json:"exchangeRates"`
	Commands      []commandDoc         `json:"commands"`
}

// commandDoc is the union of every command's wire fields; the discriminator
// picks which ones matter.
type commandDoc struct {
	Command   string `json:"command"`
	Timestamp int    `json:"timestamp"`

	Email        string  `json:"email"`
	Account      string  `json:"account"`
	Currency     string  `json:"currency"`
	Amount       float64 `json:"amount"`
	AccountType  string  `json:"accountType"`
	InterestRate float64 `json:"interestRate"`

	CardNumber string `json:"cardNumber"`

	Description string `json:"description"`
	Commerciant string `json:"commerciant"`
	Receiver    string `json:"receiver"`
	Alias       string `json:"alias"`

	Accounts         []string  `json:"accounts"`
	SplitPaymentType string    `json:"splitPaymentType"`
	AmountForUsers   []float64 `json:"amountForUsers"`

	StartTimestamp int `json:"startTimestamp"`
	EndTimestamp   int `json:"endTimestamp"`

	NewPlanType string `json:"newPlanType"`
	Role        string `json:"role"`
	Type        string `json:"type"`
}

// Parse decodes a batch document. Declarations are validated eagerly; bad
// commands are dropped one by one so the rest of the batch still runs.
func Parse(logger log.Logger, r io.Reader) (*Batch, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("input: %v", err)
	}
	if doc.Users == nil {
		return nil, fmt.Errorf("input: document has no users section")
	}
	if doc.ExchangeRates == nil {
		return nil, fmt.Errorf("input: document has no exchangeRates section")
	}
	if doc.Commands == nil {
		return nil, fmt.Errorf("input: document has no commands section")
	}

	batch := &Batch{
		Users:        doc.Users,
		Commerciants: doc.Commerciants,
		Rates:        doc.ExchangeRates,
	}
	for i := range batch.Users {
		if err := batch.Users[i].Validate(); err != nil {
			return nil, fmt.Errorf("input: user %d: %v", i, err)
		}
	}
	for i := range batch.Commerciants {
		if err := batch.Commerciants[i].Validate(); err != nil {
			return nil, fmt.Errorf("input: commerciant %d: %v", i, err)
		}
	}

	for i := range doc.Commands {
		cmd, err := doc.Commands[i].typed()
		if err != nil {
			logger.Log("input", fmt.Sprintf("skipping command %d (%s): %v", i, doc.Commands[i].Command, err))
			continue
		}
		batch.Commands = append(batch.Commands, cmd)
	}
	return batch, nil
}

func (c commandDoc) typed() (model.Command, error) {
	meta := model.Meta{Timestamp: c.Timestamp}

	switch c.Command {
	case "addAccount":
		accountType := model.AccountType(c.AccountType)
		if err := accountType.Validate(); err != nil {
			return nil, err
		}
		return model.AddAccount{Meta: meta, Email: c.Email, Currency: c.Currency, AccountType: accountType, InterestRate: c.InterestRate}, nil

	case "addFunds":
		return model.AddFunds{Meta: meta, IBAN: c.Account, Email: c.Email, Amount: c.Amount}, nil

	case "createCard":
		return model.CreateCard{Meta: meta, IBAN: c.Account, Email: c.Email, CardType: model.ClassicCard}, nil

	case "createOneTimeCard":
		return model.CreateCard{Meta: meta, IBAN: c.Account, Email: c.Email, CardType: model.OneTimeCard}, nil

	case "deleteAccount":
		return model.DeleteAccount{Meta: meta, IBAN: c.Account, Email: c.Email}, nil

	case "deleteCard":
		return model.DeleteCard{Meta: meta, Number: c.CardNumber, Email: c.Email}, nil

	case "setAlias":
		return model.SetAlias{Meta: meta, Email: c.Email, Alias: c.Alias, IBAN: c.Account}, nil

	case "setMinimumBalance":
		return model.SetMinimumBalance{Meta: meta, IBAN: c.Account, Amount: c.Amount}, nil

	case "checkCardStatus":
		return model.CheckCardStatus{Meta: meta, Number: c.CardNumber}, nil

	case "payOnline":
		return model.PayOnline{Meta: meta, Number: c.CardNumber, Amount: c.Amount, Currency: c.Currency, Description: c.Description, Email: c.Email, Commerciant: c.Commerciant}, nil

	case "sendMoney":
		return model.SendMoney{Meta: meta, FromIBAN: c.Account, To: c.Receiver, Amount: c.Amount, Email: c.Email, Description: c.Description}, nil

	case "splitPayment":
		splitType := model.SplitType(c.SplitPaymentType)
		if splitType == "" {
			splitType = model.EqualSplit
		}
		if err := splitType.Validate(); err != nil {
			return nil, err
		}
		return model.SplitPayment{Meta: meta, Type: splitType, IBANs: c.Accounts, Currency: c.Currency, Amount: c.Amount, Shares: c.AmountForUsers}, nil

	case "acceptSplitPayment":
		return model.AcceptSplitPayment{Meta: meta, Email: c.Email, Type: splitTypeOrEqual(c.SplitPaymentType)}, nil

	case "rejectSplitPayment":
		return model.RejectSplitPayment{Meta: meta, Email: c.Email, Type: splitTypeOrEqual(c.SplitPaymentType)}, nil

	case "addInterest":
		return model.AddInterest{Meta: meta, IBAN: c.Account}, nil

	case "changeInterestRate":
		return model.ChangeInterestRate{Meta: meta, IBAN: c.Account, Rate: c.InterestRate}, nil

	case "withdrawSavings":
		return model.WithdrawSavings{Meta: meta, IBAN: c.Account, Amount: c.Amount, Currency: c.Currency}, nil

	case "upgradePlan":
		tier := model.PlanTier(c.NewPlanType)
		if err := tier.Validate(); err != nil {
			return nil, err
		}
		return model.UpgradePlan{Meta: meta, IBAN: c.Account, NewTier: tier}, nil

	case "cashWithdrawal":
		return model.CashWithdrawal{Meta: meta, Number: c.CardNumber, Amount: c.Amount, Email: c.Email}, nil

	case "addNewBusinessAssociate":
		role := model.AssociateRole(c.Role)
		if err := role.Validate(); err != nil {
			return nil, err
		}
		return model.AddBusinessAssociate{Meta: meta, IBAN: c.Account, Email: c.Email, Role: role}, nil

	case "changeSpendingLimit":
		return model.ChangeSpendingLimit{Meta: meta, IBAN: c.Account, Email: c.Email, Amount: c.Amount}, nil

	case "changeDepositLimit":
		return model.ChangeDepositLimit{Meta: meta, IBAN: c.Account, Email: c.Email, Amount: c.Amount}, nil

	case "printUsers":
		return model.PrintUsers{Meta: meta}, nil

	case "printTransactions":
		return model.PrintTransactions{Meta: meta, Email: c.Email}, nil

	case "report":
		return model.Report{Meta: meta, IBAN: c.Account, Start: c.StartTimestamp, End: c.EndTimestamp}, nil

	case "spendingsReport":
		return model.SpendingsReport{Meta: meta, IBAN: c.Account, Start: c.StartTimestamp, End: c.EndTimestamp}, nil

	case "businessReport":
		reportType := model.BusinessReportType(c.Type)
		if err := reportType.Validate(); err != nil {
			return nil, err
		}
		return model.BusinessReport{Meta: meta, Type: reportType, IBAN: c.Account, Start: c.StartTimestamp, End: c.EndTimestamp}, nil
	}

	return nil, fmt.Errorf("unknown command %q", c.Command)
}

func splitTypeOrEqual(s string) model.SplitType {
	if s == "" {
		return model.EqualSplit
	}
	return model.SplitType(s)
}
