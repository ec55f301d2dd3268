// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migrationuc

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
)

// InitDBUseCase represents the database initialization use case. It may
// be used to initialize database with development or production
// suitable data as asked by the InitDev and InitProd methods.
type InitDBUseCase struct {
	pool      repo.Pool
	schemarp  repo.Schema
	tariffsrp repo.Tariffs
	historyrp repo.History

	tariff model.Tariff
	now    func() time.Time
}

// NewInitDB creates an InitDBUseCase instance. The t tariff is stored
// as the initial tariff of the facility.
func NewInitDB(
	p repo.Pool,
	s repo.Schema,
	tr repo.Tariffs,
	h repo.History,
	t model.Tariff,
) *InitDBUseCase {
	return &InitDBUseCase{
		pool:      p,
		schemarp:  s,
		tariffsrp: tr,
		historyrp: h,
		tariff:    t,
		now:       time.Now,
	}
}

// InitProd drops all parkade tables (if they exist) and (re)creates
// them in a single transaction. The only stored data is the initial
// tariff.
func (iduc *InitDBUseCase) InitProd(ctx context.Context) error {
	return iduc.initDB(ctx, func(context.Context, repo.Tx) error {
		return nil
	})
}

// InitDev drops all parkade tables (if they exist) and (re)creates
// them in a single transaction. In addition to the initial tariff,
// a few archived sessions of the current and previous months are
// stored, so the history and dashboard have some data to show.
func (iduc *InitDBUseCase) InitDev(ctx context.Context) error {
	return iduc.initDB(ctx, iduc.seedHistory)
}

func (iduc *InitDBUseCase) initDB(
	ctx context.Context,
	seed func(ctx context.Context, tx repo.Tx) error,
) error {
	if err := iduc.tariff.Validate(); err != nil {
		return fmt.Errorf("initial tariff: %w", err)
	}
	err := iduc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := iduc.schemarp.Tx(tx)
			if err := q.DropIfExists(ctx); err != nil {
				return fmt.Errorf("dropping tables: %w", err)
			}
			if err := q.Create(ctx); err != nil {
				return fmt.Errorf("creating tables: %w", err)
			}
			err := iduc.tariffsrp.Tx(tx).Save(ctx, iduc.tariff)
			if err != nil {
				return fmt.Errorf("saving initial tariff: %w", err)
			}
			if err := seed(ctx, tx); err != nil {
				return fmt.Errorf("seeding: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	log.Info(ctx, "database is initialized")
	return nil
}

var sampleStays = []struct {
	plate   model.Plate
	spotID  int
	ago     time.Duration // payment time before now
	minutes int
}{
	{"ABC123", 1, 2 * time.Hour, 45},
	{"XYZ99", 2, 5 * time.Hour, 95},
	{"KLM456", 3, 26 * time.Hour, 130},
	{"QRS777", 1, 33 * 24 * time.Hour, 61},
	{"TUV808", 2, 40 * 24 * time.Hour, 240},
}

func (iduc *InitDBUseCase) seedHistory(
	ctx context.Context, tx repo.Tx,
) error {
	q := iduc.historyrp.Tx(tx)
	now := iduc.now().Truncate(time.Second)
	for _, st := range sampleStays {
		paid := now.Add(-st.ago)
		entry := paid.Add(-time.Duration(st.minutes) * time.Minute)
		s := model.NewSession(st.plate, st.spotID, entry, iduc.tariff)
		s.MarkExit(paid)
		r := s.Close(paid)
		if err := q.Append(ctx, &r); err != nil {
			return fmt.Errorf("appending %s: %w", st.plate, err)
		}
	}
	return nil
}
