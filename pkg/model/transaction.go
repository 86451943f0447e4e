// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

// Transaction is an immutable per-account record of one ledger event.
// Exactly one payload pointer is set for operations that carry detail;
// plain events (account created, funds added, ...) only use Description.
//
// Split payment outcomes share a single Transaction value across every
// involved account, so the record is never mutated after broadcast.
type Transaction struct {
	Timestamp   int    `json:"timestamp"`
	Description string `json:"description"`

	Transfer *TransferDetail `json:"transfer,omitempty"`
	Card     *CardDetail     `json:"card,omitempty"`
	Payment  *PaymentDetail  `json:"payment,omitempty"`
	Split    *SplitDetail    `json:"splitPayment,omitempty"`
	Plan     *PlanDetail     `json:"planUpgrade,omitempty"`

	// Error annotates failure records synthesized by error sinks.
	Error string `json:"error,omitempty"`
}

// TransferDetail describes a sendMoney leg as seen by one account.
type TransferDetail struct {
	SenderIBAN   string `json:"senderIBAN"`
	ReceiverIBAN string `json:"receiverIBAN"`
	Amount       string `json:"amount"` // formatted, e.g. "45.00 RON"
	Direction    string `json:"transferType"`
}

// CardDetail describes a card lifecycle event.
type CardDetail struct {
	Number      string `json:"card"`
	Holder      string `json:"cardHolder"`
	AccountIBAN string `json:"account"`
}

// PaymentDetail describes an online card payment.
type PaymentDetail struct {
	Amount      float64 `json:"amount"`
	Commerciant string  `json:"commerciant"`
}

// SplitDetail describes a multi-party split payment outcome. Shares are
// listed in the same order as the involved IBANs.
type SplitDetail struct {
	Type          string    `json:"splitPaymentType"`
	Currency      string    `json:"currency"`
	Total         float64   `json:"amount"`
	InvolvedIBANs []string  `json:"involvedAccounts"`
	Shares        []float64 `json:"amountForUsers"`
}

// PlanDetail describes a service plan upgrade.
type PlanDetail struct {
	AccountIBAN string   `json:"accountIBAN"`
	NewTier     PlanTier `json:"newPlanType"`
}
