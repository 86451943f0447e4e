// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package idgen generates IBANs and card numbers from a fixed seed so two
// runs over the same batch produce byte-identical identifiers.
package idgen

import (
	"math/rand"
	"strconv"
	"strings"
)

const (
	countryCode = "RO"
	bankCode    = "BNKS"

	ibanDigits       = 16
	cardNumberDigits = 16
)

// Generator produces deterministic identifiers. It is not safe for
// concurrent use, which matches the single-threaded batch model.
type Generator struct {
	seed int64
	rnd  *rand.Rand
}

func New(seed int64) *Generator {
	return &Generator{
		seed: seed,
		rnd:  rand.New(rand.NewSource(seed)),
	}
}

// Reset rewinds the generator to its initial state so a replay of the same
// batch yields identical identifiers.
func (g *Generator) Reset() {
	g.rnd = rand.New(rand.NewSource(g.seed))
}

// IBAN returns an identifier shaped like a Romanian IBAN: country code,
// two check digits, bank code and sixteen digits.
func (g *Generator) IBAN() string {
	var sb strings.Builder
	sb.WriteString(countryCode)
	sb.WriteString(strconv.Itoa(g.rnd.Intn(10)))
	sb.WriteString(strconv.Itoa(g.rnd.Intn(10)))
	sb.WriteString(bankCode)
	g.digits(&sb, ibanDigits)
	return sb.String()
}

// CardNumber returns a sixteen digit card number.
func (g *Generator) CardNumber() string {
	var sb strings.Builder
	g.digits(&sb, cardNumberDigits)
	return sb.String()
}

func (g *Generator) digits(sb *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		sb.WriteString(strconv.Itoa(g.rnd.Intn(10)))
	}
}
