// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package appuc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
)

// UpdateTariff validates and stores the t tariff in the database and
// publishes it after a successful commit. Only the sessions which are
// created afterwards will capture it; sessions in progress keep their
// captured rates.
//
// UpdateTariff and Reload methods are synchronized using a mutex
// so only one long-running attempt for querying/updating the tariff
// may exist, while other goroutines may fetch the old tariff without
// any blocking. When the operation completes successfully, a second
// read-write lock will be used in order to switch the tariff. The
// order of these locks ensures a deadlock-free implementation.
func (app *UseCase) UpdateTariff(
	ctx context.Context, t model.Tariff,
) (*model.Tariff, error) {
	if err := t.Validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	app.mutex.Lock()
	defer app.mutex.Unlock()
	err := app.pool.Conn(
		ctx, func(ctx context.Context, c repo.Conn) error {
			return c.Tx(
				ctx, func(ctx context.Context, tx repo.Tx) error {
					return app.tariffsrp.Tx(tx).Save(ctx, t)
				},
			)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("saving tariff: %w", err)
	}
	app.updateAll(&t)
	log.Info(
		ctx, "tariff is updated",
		slog.Float64("base", t.Base),
		slog.Float64("minute_price", t.MinutePrice),
	)
	c := t
	return &c, nil
}

// Reload queries the tariffs repository in order to fetch the current
// tariff and publishes it atomically. If the database has no tariff
// yet, the default tariff is published instead.
func (app *UseCase) Reload(ctx context.Context) error {
	app.mutex.Lock()
	defer app.mutex.Unlock()
	var t *model.Tariff
	err := app.pool.Conn(
		ctx, func(ctx context.Context, c repo.Conn) error {
			var err error
			t, err = app.tariffsrp.Conn(c).Current(ctx)
			return err
		},
	)
	switch {
	case cerr.IsNotFound(err):
		log.Warn(ctx, "no stored tariff, using the default one")
		ft := *app.fallback
		t = &ft
	case err != nil:
		return fmt.Errorf("reloading by tariffs repo: %w", err)
	}
	app.updateAll(t)
	return nil
}
