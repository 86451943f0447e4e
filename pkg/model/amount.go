// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/currency"
)

var (
	// ErrNegativeAmount is returned when constructing an Amount from a negative value.
	ErrNegativeAmount = errors.New("negative amount")
)

// Converter resolves a conversion rate between two ISO 4217 currency codes.
// A Converter is consulted whenever arithmetic mixes currencies.
type Converter interface {
	Rate(from, to string) (float64, error)
}

// Amount represents units of a particular currency.
//
// Arithmetic between two Amounts of different currencies converts the
// right-hand operand into the left-hand currency first.
type Amount struct {
	value  float64
	symbol string // ISO 4217, i.e. RON, EUR, USD
}

// NewAmount returns an Amount after validating the ISO 4217 currency symbol.
func NewAmount(symbol string, value float64) (Amount, error) {
	unit, err := currency.ParseISO(symbol)
	if err != nil {
		return Amount{}, fmt.Errorf("amount: %v", err)
	}
	if value < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{value: value, symbol: unit.String()}, nil
}

// Zero returns a zero Amount in the given currency. The symbol is assumed
// to have been validated already.
func Zero(symbol string) Amount {
	return Amount{symbol: symbol}
}

// Float returns the quantity as a float64.
func (a Amount) Float() float64 {
	return a.value
}

// Currency returns the ISO 4217 symbol.
func (a Amount) Currency() string {
	return a.symbol
}

func (a Amount) IsZero() bool {
	return a.value == 0
}

func (a Amount) Equal(other Amount) bool {
	return a.symbol == other.symbol && math.Abs(a.value-other.value) < 1e-9
}

// Plus adds other to a, converting other into a's currency first.
func (a Amount) Plus(other Amount, conv Converter) (Amount, error) {
	v, err := other.In(a.symbol, conv)
	if err != nil {
		return a, err
	}
	return Amount{value: a.value + v.value, symbol: a.symbol}, nil
}

// Minus subtracts other from a, converting other into a's currency first.
// The result may be negative; callers enforce their own floors.
func (a Amount) Minus(other Amount, conv Converter) (Amount, error) {
	v, err := other.In(a.symbol, conv)
	if err != nil {
		return a, err
	}
	return Amount{value: a.value - v.value, symbol: a.symbol}, nil
}

// Covers reports whether a is at least other once other is converted into
// a's currency.
func (a Amount) Covers(other Amount, conv Converter) (bool, error) {
	v, err := other.In(a.symbol, conv)
	if err != nil {
		return false, err
	}
	return a.value >= v.value, nil
}

// In converts a into the given currency.
func (a Amount) In(symbol string, conv Converter) (Amount, error) {
	if a.symbol == symbol {
		return a, nil
	}
	rate, err := conv.Rate(a.symbol, symbol)
	if err != nil {
		return Amount{}, err
	}
	return Amount{value: a.value * rate, symbol: symbol}, nil
}

// Scale multiplies the quantity by a plain factor, keeping the currency.
func (a Amount) Scale(factor float64) Amount {
	return Amount{value: a.value * factor, symbol: a.symbol}
}

// String returns the amount formatted with the currency.
// Examples:
//   45.00 RON
//   4.02 EUR
func (a Amount) String() string {
	return fmt.Sprintf("%.2f %s", a.value, a.symbol)
}
