// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
)

// Category groups commerciants for cashback purposes. Each category fixes
// the transaction-count threshold and discount used by the count strategy.
type Category string

const (
	FoodCategory    Category = "Food"
	ClothesCategory Category = "Clothes"
	TechCategory    Category = "Tech"
)

func (c Category) Validate() error {
	switch c {
	case FoodCategory, ClothesCategory, TechCategory:
		return nil
	default:
		return fmt.Errorf("Category(%s) is invalid", c)
	}
}

// CountThreshold is the number of payments after which the count strategy
// rewards a single transaction.
func (c Category) CountThreshold() int {
	switch c {
	case FoodCategory:
		return 2
	case ClothesCategory:
		return 5
	case TechCategory:
		return 10
	}
	return 0
}

// CountDiscount is the fraction of the rewarded transaction returned to
// the payer.
func (c Category) CountDiscount() float64 {
	switch c {
	case FoodCategory:
		return 0.02
	case ClothesCategory:
		return 0.02
	case TechCategory:
		return 0.10
	}
	return 0
}

// CashbackStrategy selects how a commerciant rewards payments.
type CashbackStrategy string

const (
	// SpendingStrategy rewards a fraction of every payment based on the
	// cumulative spend tier reached with that commerciant's category.
	SpendingStrategy CashbackStrategy = "spendingThreshold"

	// CountStrategy rewards one fixed discount when the per-category
	// payment counter hits the category threshold.
	CountStrategy CashbackStrategy = "nrOfTransactions"
)

func (s CashbackStrategy) Validate() error {
	switch s {
	case SpendingStrategy, CountStrategy:
		return nil
	default:
		return fmt.Errorf("CashbackStrategy(%s) is invalid", s)
	}
}

// Commerciant is a payee known to the system. Name is the natural key.
type Commerciant struct {
	Name        string           `json:"commerciant"`
	ID          int              `json:"id"`
	AccountIBAN string           `json:"account"`
	Category    Category         `json:"type"`
	Strategy    CashbackStrategy `json:"cashbackStrategy"`
}

func (c *Commerciant) Validate() error {
	if c == nil {
		return errors.New("nil Commerciant")
	}
	if c.Name == "" {
		return errors.New("commerciant: missing name")
	}
	if err := c.Category.Validate(); err != nil {
		return err
	}
	return c.Strategy.Validate()
}
