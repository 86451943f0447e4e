// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package exchange

import (
	"math"
	"testing"

	"github.com/moov-io/banksim/pkg/errkind"

	"github.com/go-kit/kit/log"
)

func TestGraph__identity(t *testing.T) {
	g := NewGraph(log.NewNopLogger())

	rate, err := g.Rate("RON", "RON")
	if err != nil {
		t.Fatal(err)
	}
	if rate != 1.0 {
		t.Errorf("got %f", rate)
	}
}

func TestGraph__composition(t *testing.T) {
	g := NewGraph(log.NewNopLogger())
	if err := g.RegisterRate("USD", "EUR", 0.9); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterRate("EUR", "RON", 5.0); err != nil {
		t.Fatal(err)
	}
	if err := g.Resolve(); err != nil {
		t.Fatal(err)
	}

	// 10 USD -> RON must compose through EUR: 10 * 0.9 * 5 = 45
	rate, err := g.Rate("USD", "RON")
	if err != nil {
		t.Fatal(err)
	}
	if got := 10 * rate; math.Abs(got-45.0) > 1e-9 {
		t.Errorf("10 USD = %f RON", got)
	}
}

func TestGraph__reciprocal(t *testing.T) {
	g := NewGraph(log.NewNopLogger())
	if err := g.RegisterRate("USD", "EUR", 0.87); err != nil {
		t.Fatal(err)
	}

	forward, err := g.Rate("USD", "EUR")
	if err != nil {
		t.Fatal(err)
	}
	backward, err := g.Rate("EUR", "USD")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(forward*backward-1.0) > 1e-9 {
		t.Errorf("rate(USD,EUR)=%f rate(EUR,USD)=%f", forward, backward)
	}
}

func TestGraph__noRoute(t *testing.T) {
	g := NewGraph(log.NewNopLogger())
	if err := g.RegisterRate("USD", "EUR", 0.9); err != nil {
		t.Fatal(err)
	}
	if err := g.Resolve(); err != nil {
		t.Fatal(err)
	}

	if _, err := g.Rate("USD", "JPY"); err == nil {
		t.Fatal("expected error")
	} else if !errkind.Is(err, errkind.Exchange) {
		t.Errorf("unexpected %v", err)
	}
}

func TestGraph__redundantConsistentRates(t *testing.T) {
	g := NewGraph(log.NewNopLogger())
	// a direct USD->RON edge that agrees with the composed path is fine
	if err := g.RegisterRate("USD", "RON", 4.5); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterRate("USD", "EUR", 0.9); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterRate("EUR", "RON", 5.0); err != nil {
		t.Fatal(err)
	}
	if err := g.Resolve(); err != nil {
		t.Fatal(err)
	}

	rate, err := g.Rate("USD", "RON")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rate-4.5) > 1e-9 {
		t.Errorf("got %f", rate)
	}
}

func TestGraph__incrementalRegistration(t *testing.T) {
	g := NewGraph(log.NewNopLogger())
	if err := g.RegisterRate("USD", "EUR", 0.9); err != nil {
		t.Fatal(err)
	}
	if err := g.Resolve(); err != nil {
		t.Fatal(err)
	}

	// registering after an initial Resolve marks the graph dirty and the
	// next lookup re-resolves
	if err := g.RegisterRate("EUR", "RON", 5.0); err != nil {
		t.Fatal(err)
	}
	rate, err := g.Rate("USD", "RON")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rate-4.5) > 1e-9 {
		t.Errorf("got %f", rate)
	}
}

func TestGraph__inconsistentRates(t *testing.T) {
	g := NewGraph(log.NewNopLogger())
	// USD->EUR->RON composes to 0.25, but the direct USD->RON edge of 0.2
	// implies a round trip gaining 25% -- the declarations contradict
	if err := g.RegisterRate("USD", "EUR", 0.5); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterRate("EUR", "RON", 0.5); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterRate("USD", "RON", 0.2); err != nil {
		t.Fatal(err)
	}

	if err := g.Resolve(); err == nil {
		t.Fatal("expected error")
	} else if !errkind.Is(err, errkind.Exchange) {
		t.Errorf("unexpected %v", err)
	}

	// lookups surface the resolution failure instead of a saturated rate
	rate, err := g.Rate("USD", "RON")
	if err == nil {
		t.Fatalf("expected error, got rate %f", rate)
	}
	if !errkind.Is(err, errkind.Exchange) {
		t.Errorf("unexpected %v", err)
	}
	if math.IsInf(rate, 0) {
		t.Errorf("rate saturated to %f", rate)
	}
}

func TestGraph__eagerOnly(t *testing.T) {
	g := NewGraph(log.NewNopLogger())
	g.SetEagerOnly(true)

	if err := g.RegisterRate("USD", "EUR", 0.9); err != nil {
		t.Fatal(err)
	}
	if err := g.Resolve(); err != nil {
		t.Fatal(err)
	}

	// under eager-only, edges registered after Resolve stay invisible
	// until the next explicit Resolve
	if err := g.RegisterRate("EUR", "RON", 5.0); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Rate("USD", "RON"); err == nil {
		t.Fatal("expected no route before re-resolving")
	}

	if err := g.Resolve(); err != nil {
		t.Fatal(err)
	}
	rate, err := g.Rate("USD", "RON")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rate-4.5) > 1e-9 {
		t.Errorf("got %f", rate)
	}
}

func TestGraph__invalidRegistrations(t *testing.T) {
	g := NewGraph(log.NewNopLogger())

	if err := g.RegisterRate("USD", "USD", 1.0); err == nil {
		t.Error("expected error for identical pair")
	}
	if err := g.RegisterRate("USD", "EUR", -1.0); err == nil {
		t.Error("expected error for negative rate")
	}
	if err := g.RegisterRate("", "EUR", 1.0); err == nil {
		t.Error("expected error for empty currency")
	}
}
