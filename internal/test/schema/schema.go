// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schema provides a database initialization verifier which can
// be used for testing purposes. It only depends on the repository
// interfaces, so it can verify a PostgreSQL database or an in-memory
// one similarly. All verifications run in transactions which are
// rolled back eventually, so they leave no trace in the database.
package schema

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
	"github.com/stretchr/testify/assert"
)

var errRollback = errors.New("rolling back the verification")

// Verifier checks the tables and initial data of a database.
type Verifier struct {
	c        repo.Conn // database connection which is used for testing
	schemarp repo.Schema
	tariffs  repo.Tariffs
	history  repo.History
}

// New instantiates a Verifier struct, wrapping the `c` database
// connection and the repositories which should be used with it.
func New(
	c repo.Conn, s repo.Schema, t repo.Tariffs, h repo.History,
) *Verifier {
	return &Verifier{c: c, schemarp: s, tariffs: t, history: h}
}

func (v *Verifier) rollback(
	ctx context.Context, t *testing.T, f func(repo.Tx),
) {
	err := v.c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
		f(tx)
		return errRollback
	})
	assert.ErrorIs(t, err, errRollback)
}

// VerifySchema ensures that exactly the expected tables exist.
// This process failures are reported using the `t` testing argument.
func (v *Verifier) VerifySchema(
	ctx context.Context, t *testing.T, expected []string,
) {
	v.rollback(ctx, t, func(tx repo.Tx) {
		tables, err := v.schemarp.Tx(tx).Tables(ctx)
		if assert.NoError(t, err, "listing tables") {
			assert.Equal(t, expected, tables)
		}
	})
}

// VerifyProdData checks that the tariff is initialized and there is
// no archived session.
func (v *Verifier) VerifyProdData(
	ctx context.Context, t *testing.T, tariff model.Tariff,
) {
	v.rollback(ctx, t, func(tx repo.Tx) {
		v.verifyTariff(ctx, t, tx, tariff)
		rs, err := v.history.Tx(tx).Recent(ctx, time.Time{}, 0)
		if assert.NoError(t, err, "fetching history") {
			assert.Empty(t, rs)
		}
	})
}

// VerifyDevData checks that the tariff is initialized and the sample
// archived sessions are charged according to their captured rates.
func (v *Verifier) VerifyDevData(
	ctx context.Context, t *testing.T, tariff model.Tariff,
) {
	v.rollback(ctx, t, func(tx repo.Tx) {
		v.verifyTariff(ctx, t, tx, tariff)
		rs, err := v.history.Tx(tx).Recent(ctx, time.Time{}, 0)
		if !assert.NoError(t, err, "fetching history") {
			return
		}
		assert.NotEmpty(t, rs)
		for _, r := range rs {
			rt := model.Tariff{Base: r.RateBase, MinutePrice: r.RateMinute}
			assert.Equal(t, tariff, rt, "captured rates of %s", r.Plate)
			assert.InDelta(t, model.RoundCents(
				rt.Fee(r.EntryTime, r.ExitTime),
			), r.Fee, 1e-9, "fee of %s", r.Plate)
		}
	})
}

func (v *Verifier) verifyTariff(
	ctx context.Context, t *testing.T, tx repo.Tx, tariff model.Tariff,
) {
	cur, err := v.tariffs.Tx(tx).Current(ctx)
	if assert.NoError(t, err, "fetching tariff") {
		assert.Equal(t, tariff, *cur)
	}
}
