// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package idgen

import (
	"strings"
	"testing"
)

func TestGenerator__deterministic(t *testing.T) {
	first := New(42)
	second := New(42)

	for i := 0; i < 25; i++ {
		if a, b := first.IBAN(), second.IBAN(); a != b {
			t.Fatalf("run diverged: %s vs %s", a, b)
		}
		if a, b := first.CardNumber(), second.CardNumber(); a != b {
			t.Fatalf("run diverged: %s vs %s", a, b)
		}
	}
}

func TestGenerator__reset(t *testing.T) {
	gen := New(7)

	var before []string
	for i := 0; i < 10; i++ {
		before = append(before, gen.IBAN(), gen.CardNumber())
	}

	gen.Reset()

	for i := 0; i < 10; i++ {
		if iban := gen.IBAN(); iban != before[2*i] {
			t.Fatalf("iban %d: %s != %s", i, iban, before[2*i])
		}
		if num := gen.CardNumber(); num != before[2*i+1] {
			t.Fatalf("card %d: %s != %s", i, num, before[2*i+1])
		}
	}
}

func TestGenerator__shape(t *testing.T) {
	gen := New(1)

	iban := gen.IBAN()
	if !strings.HasPrefix(iban, "RO") {
		t.Errorf("unexpected IBAN %q", iban)
	}
	if len(iban) != 2+2+4+16 {
		t.Errorf("IBAN length %d", len(iban))
	}

	num := gen.CardNumber()
	if len(num) != 16 {
		t.Errorf("card number length %d", len(num))
	}
	if strings.Trim(num, "0123456789") != "" {
		t.Errorf("card number %q has non-digits", num)
	}
}
