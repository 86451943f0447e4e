// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
)

type CardType string

const (
	ClassicCard CardType = "classic"

	// OneTimeCard numbers are destroyed and reissued after every
	// successful payment.
	OneTimeCard CardType = "onetime"
)

func (t CardType) Validate() error {
	switch t {
	case ClassicCard, OneTimeCard:
		return nil
	default:
		return fmt.Errorf("CardType(%s) is invalid", t)
	}
}

type CardStatus string

const (
	CardActive CardStatus = "active"
	CardFrozen CardStatus = "frozen"
)

// Card belongs to exactly one account, referenced by IBAN.
type Card struct {
	Number      string     `json:"cardNumber"`
	AccountIBAN string     `json:"-"`
	Type        CardType   `json:"-"`
	Status      CardStatus `json:"status"`
}

func (c *Card) Validate() error {
	if c == nil {
		return errors.New("nil Card")
	}
	if c.Number == "" {
		return errors.New("card: missing number")
	}
	if c.AccountIBAN == "" {
		return errors.New("card: missing account")
	}
	return c.Type.Validate()
}

func (c *Card) Frozen() bool {
	return c.Status == CardFrozen
}
