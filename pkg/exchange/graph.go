// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package exchange stores declared currency rates and resolves composed
// conversion rates between any two connected currencies.
package exchange

import (
	"fmt"

	"github.com/moov-io/banksim/pkg/errkind"

	"github.com/go-kit/kit/log"
)

// gainTolerance absorbs the float error of reciprocal round trips so a
// cycle only counts as gaining when it strictly multiplies above 1.
const gainTolerance = 1e-9

// Graph holds declared exchange rates. Every registered edge implies its
// reciprocal, and Resolve composes multi-hop rates by keeping the maximum
// product of edge rates per destination.
//
// Recompute policy: rates are resolved eagerly once after the declaration
// load; RegisterRate marks the graph dirty and the next Rate call
// re-resolves. SetEagerOnly turns the lazy refresh off, so composed rates
// only change on an explicit Resolve.
type Graph struct {
	logger log.Logger

	edges    map[string]map[string]float64
	resolved map[string]map[string]float64

	dirty      bool
	eagerOnly  bool
	resolveErr error
}

func NewGraph(logger log.Logger) *Graph {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Graph{
		logger: logger,
		edges:  make(map[string]map[string]float64),
	}
}

// SetEagerOnly disables lazy re-resolution after incremental registrations.
func (g *Graph) SetEagerOnly(eager bool) {
	g.eagerOnly = eager
}

// RegisterRate declares a direct rate from one currency to another along
// with its reciprocal.
func (g *Graph) RegisterRate(from, to string, rate float64) error {
	if from == "" || to == "" || from == to {
		return errkind.Ef(errkind.Input, "exchange: invalid pair %q -> %q", from, to)
	}
	if rate <= 0 {
		return errkind.Ef(errkind.Input, "exchange: invalid rate %f for %s -> %s", rate, from, to)
	}
	g.edge(from)[to] = rate
	g.edge(to)[from] = 1 / rate
	g.dirty = true
	return nil
}

func (g *Graph) edge(from string) map[string]float64 {
	m, exists := g.edges[from]
	if !exists {
		m = make(map[string]float64)
		g.edges[from] = m
	}
	return m
}

// Resolve computes the best composed rate for every ordered pair of
// connected currencies. Mutually inconsistent declarations (a conversion
// cycle whose product exceeds 1, which would let value be minted by
// round-tripping) fail the whole graph. Safe to call repeatedly.
func (g *Graph) Resolve() error {
	resolved := make(map[string]map[string]float64, len(g.edges))
	for from := range g.edges {
		best := map[string]float64{from: 1}

		// any simple path uses at most len(edges)-1 hops; a pass that
		// still improves after that many is riding a gain cycle
		for i := 0; i < len(g.edges); i++ {
			if !g.relax(best) {
				break
			}
		}
		if g.relax(best) {
			g.resolved = nil
			g.dirty = false
			g.resolveErr = errkind.Ef(errkind.Exchange, "inconsistent rates: a conversion cycle through %s gains value", from)
			return g.resolveErr
		}

		delete(best, from)
		resolved[from] = best
	}
	g.resolved = resolved
	g.resolveErr = nil
	g.dirty = false
	g.logger.Log("exchange", fmt.Sprintf("resolved rates between %d currencies", len(resolved)))
	return nil
}

// relax runs one pass over every edge whose source is already reachable,
// keeping the maximum product per destination. Reports whether anything
// improved.
func (g *Graph) relax(best map[string]float64) bool {
	improved := false
	for from, targets := range g.edges {
		product, reachable := best[from]
		if !reachable {
			continue
		}
		for to, rate := range targets {
			composed := product * rate
			if prev, seen := best[to]; seen && composed <= prev*(1+gainTolerance) {
				continue
			}
			best[to] = composed
			improved = true
		}
	}
	return improved
}

// Rate returns the composed conversion rate between two currencies.
// Identical currencies convert at 1.0.
func (g *Graph) Rate(from, to string) (float64, error) {
	if from == to {
		return 1.0, nil
	}
	if (g.resolved == nil && g.resolveErr == nil) || (g.dirty && !g.eagerOnly) {
		if err := g.Resolve(); err != nil {
			return 0, err
		}
	}
	if g.resolveErr != nil {
		return 0, g.resolveErr
	}
	if rate, exists := g.resolved[from][to]; exists {
		return rate, nil
	}
	return 0, errkind.Ef(errkind.Exchange, "no exchange route from %s to %s", from, to)
}

// Currencies returns how many currencies have at least one declared edge.
func (g *Graph) Currencies() int {
	return len(g.edges)
}
