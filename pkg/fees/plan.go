// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package fees

import (
	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"
)

// silverFeeFloor is the RON value below which silver plan transactions are
// free of fees.
const silverFeeFloor = 500.0

// feeRate returns the fraction of a transaction's RON value charged as the
// plan fee. Student and gold plans never pay fees.
func feeRate(tier model.PlanTier, ronValue float64) float64 {
	switch tier {
	case model.StandardPlan:
		return 0.002
	case model.SilverPlan:
		if ronValue >= silverFeeFloor {
			return 0.001
		}
	}
	return 0
}

// spending tier thresholds in cumulative RON per commerciant
const (
	tier1Threshold = 100.0
	tier2Threshold = 300.0
	tier3Threshold = 500.0
)

// cashbackSchedule is the 4-level spending cashback schedule of a plan,
// indexed Tier0..Tier3.
type cashbackSchedule [4]float64

var cashbackSchedules = map[model.PlanTier]cashbackSchedule{
	model.StandardPlan: {0, 0.001, 0.002, 0.0025},
	model.StudentPlan:  {0, 0.001, 0.002, 0.0025},
	model.SilverPlan:   {0, 0.003, 0.004, 0.005},
	model.GoldPlan:     {0, 0.005, 0.0055, 0.007},
}

// spendingTier maps cumulative RON spend to a schedule index.
func spendingTier(cumulative float64) int {
	switch {
	case cumulative >= tier3Threshold:
		return 3
	case cumulative >= tier2Threshold:
		return 2
	case cumulative >= tier1Threshold:
		return 1
	default:
		return 0
	}
}

// upgradeFees is the tier-pair upgrade fee matrix in RON.
var upgradeFees = map[model.PlanTier]map[model.PlanTier]float64{
	model.StandardPlan: {model.SilverPlan: 100, model.GoldPlan: 350},
	model.StudentPlan:  {model.SilverPlan: 100, model.GoldPlan: 350},
	model.SilverPlan:   {model.GoldPlan: 250},
}

// UpgradeFee returns the RON fee for moving between plan tiers. Same-tier
// and downgrade attempts fail.
func UpgradeFee(from, to model.PlanTier) (model.Amount, error) {
	if err := to.Validate(); err != nil {
		return model.Amount{}, errkind.Wrap(errkind.Operation, "plan upgrade", err)
	}
	if from == to {
		return model.Amount{}, errkind.Ef(errkind.Operation, "The user already has the %s plan.", to)
	}
	if !from.CanUpgradeTo(to) {
		return model.Amount{}, errkind.E(errkind.Operation, "You cannot downgrade your plan.")
	}
	fee, exists := upgradeFees[from][to]
	if !exists {
		return model.Amount{}, errkind.Ef(errkind.Operation, "no upgrade path from %s to %s", from, to)
	}
	return model.NewAmount("RON", fee)
}
