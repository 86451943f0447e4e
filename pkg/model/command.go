// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import "fmt"

// Command is one already-validated batch operation. The dispatcher switches
// on the concrete type; Name matches the wire discriminator and Timestamp
// orders the batch.
type Command interface {
	Name() string
	When() int
}

// Meta carries the fields every command shares.
type Meta struct {
	Timestamp int
}

func (m Meta) When() int { return m.Timestamp }

type AddAccount struct {
	Meta
	Email        string
	Currency     string
	AccountType  AccountType
	InterestRate float64
}

func (AddAccount) Name() string { return "addAccount" }

type AddFunds struct {
	Meta
	IBAN   string
	Email  string
	Amount float64
}

func (AddFunds) Name() string { return "addFunds" }

type CreateCard struct {
	Meta
	IBAN     string
	Email    string
	CardType CardType
}

func (c CreateCard) Name() string {
	if c.CardType == OneTimeCard {
		return "createOneTimeCard"
	}
	return "createCard"
}

type DeleteAccount struct {
	Meta
	IBAN  string
	Email string
}

func (DeleteAccount) Name() string { return "deleteAccount" }

type DeleteCard struct {
	Meta
	Number string
	Email  string
}

func (DeleteCard) Name() string { return "deleteCard" }

type SetAlias struct {
	Meta
	Email string
	Alias string
	IBAN  string
}

func (SetAlias) Name() string { return "setAlias" }

type SetMinimumBalance struct {
	Meta
	IBAN   string
	Amount float64
}

func (SetMinimumBalance) Name() string { return "setMinimumBalance" }

type CheckCardStatus struct {
	Meta
	Number string
}

func (CheckCardStatus) Name() string { return "checkCardStatus" }

type PayOnline struct {
	Meta
	Number      string
	Amount      float64
	Currency    string
	Description string
	Email       string
	Commerciant string
}

func (PayOnline) Name() string { return "payOnline" }

type SendMoney struct {
	Meta
	FromIBAN    string
	To          string // IBAN or alias
	Amount      float64
	Email       string
	Description string
}

func (SendMoney) Name() string { return "sendMoney" }

// SplitType selects how a split payment divides its total.
type SplitType string

const (
	EqualSplit  SplitType = "equal"
	CustomSplit SplitType = "custom"
)

func (t SplitType) Validate() error {
	switch t {
	case EqualSplit, CustomSplit:
		return nil
	default:
		return fmt.Errorf("SplitType(%s) is invalid", t)
	}
}

type SplitPayment struct {
	Meta
	Type     SplitType
	IBANs    []string
	Currency string
	Amount   float64

	// Shares is only set for custom splits and must count-match IBANs.
	Shares []float64
}

func (SplitPayment) Name() string { return "splitPayment" }

type AcceptSplitPayment struct {
	Meta
	Email string
	Type  SplitType
}

func (AcceptSplitPayment) Name() string { return "acceptSplitPayment" }

type RejectSplitPayment struct {
	Meta
	Email string
	Type  SplitType
}

func (RejectSplitPayment) Name() string { return "rejectSplitPayment" }

type AddInterest struct {
	Meta
	IBAN string
}

func (AddInterest) Name() string { return "addInterest" }

type ChangeInterestRate struct {
	Meta
	IBAN string
	Rate float64
}

func (ChangeInterestRate) Name() string { return "changeInterestRate" }

type WithdrawSavings struct {
	Meta
	IBAN     string
	Amount   float64
	Currency string
}

func (WithdrawSavings) Name() string { return "withdrawSavings" }

type UpgradePlan struct {
	Meta
	IBAN    string
	NewTier PlanTier
}

func (UpgradePlan) Name() string { return "upgradePlan" }

type CashWithdrawal struct {
	Meta
	Number string
	Amount float64 // RON
	Email  string
}

func (CashWithdrawal) Name() string { return "cashWithdrawal" }

type AddBusinessAssociate struct {
	Meta
	IBAN  string
	Email string
	Role  AssociateRole
}

func (AddBusinessAssociate) Name() string { return "addNewBusinessAssociate" }

type ChangeSpendingLimit struct {
	Meta
	IBAN   string
	Email  string
	Amount float64
}

func (ChangeSpendingLimit) Name() string { return "changeSpendingLimit" }

type ChangeDepositLimit struct {
	Meta
	IBAN   string
	Email  string
	Amount float64
}

func (ChangeDepositLimit) Name() string { return "changeDepositLimit" }

type PrintUsers struct {
	Meta
}

func (PrintUsers) Name() string { return "printUsers" }

type PrintTransactions struct {
	Meta
	Email string
}

func (PrintTransactions) Name() string { return "printTransactions" }

type Report struct {
	Meta
	IBAN  string
	Start int
	End   int
}

func (Report) Name() string { return "report" }

type SpendingsReport struct {
	Meta
	IBAN  string
	Start int
	End   int
}

func (SpendingsReport) Name() string { return "spendingsReport" }

// BusinessReportType selects the business report flavor.
type BusinessReportType string

const (
	TransactionBusinessReport BusinessReportType = "transaction"
	CommerciantBusinessReport BusinessReportType = "commerciant"
)

func (t BusinessReportType) Validate() error {
	switch t {
	case TransactionBusinessReport, CommerciantBusinessReport:
		return nil
	default:
		return fmt.Errorf("BusinessReportType(%s) is invalid", t)
	}
}

type BusinessReport struct {
	Meta
	Type  BusinessReportType
	IBAN  string
	Start int
	End   int
}

func (BusinessReport) Name() string { return "businessReport" }
