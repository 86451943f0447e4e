// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package dispatch

import (
	"github.com/moov-io/banksim/pkg/errkind"
	"github.com/moov-io/banksim/pkg/model"
)

func (d *Dispatcher) splitPayment(cmd model.SplitPayment) error {
	if err := d.env.Splits.Create(cmd); err != nil {
		if errkind.Is(err, errkind.NotFound) {
			return fail(errkind.E(errkind.NotFound, "Account not found"), ResultRecord())
		}
		return err
	}
	return nil
}

func (d *Dispatcher) acceptSplitPayment(cmd model.AcceptSplitPayment) error {
	if _, err := d.env.Repo.UserByEmail(cmd.Email); err != nil {
		return fail(errkind.E(errkind.NotFound, "User not found"), ResultRecord())
	}
	// accepting with nothing pending is swallowed after logging
	return d.env.Splits.Accept(cmd.Email, cmd.Type)
}

func (d *Dispatcher) rejectSplitPayment(cmd model.RejectSplitPayment) error {
	if _, err := d.env.Repo.UserByEmail(cmd.Email); err != nil {
		return fail(errkind.E(errkind.NotFound, "User not found"), ResultRecord())
	}
	return d.env.Splits.Reject(cmd.Email, cmd.Type)
}
