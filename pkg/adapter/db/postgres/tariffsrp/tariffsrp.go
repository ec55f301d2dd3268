// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package tariffsrp provides a reification of the repo.Tariffs
// interface. The tariffs table has one row at most.
package tariffsrp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/momeni/parkade/pkg/adapter/db/postgres"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
	"gorm.io/gorm/clause"
)

type gTariff struct {
	ID          int16 `gorm:"primaryKey"`
	Base        float64
	MinutePrice float64
	UpdatedAt   time.Time
}

func (gt *gTariff) TableName() string {
	return "tariffs"
}

func Current[Q postgres.Queryer](ctx context.Context, q Q) (*model.Tariff, error) {
	var gts []gTariff
	res := q.GORM(ctx).Limit(1).Find(&gts)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(gts) == 0 {
		return nil, cerr.NotFound(errors.New("tariff is not initialized"))
	}
	return &model.Tariff{
		Base:        gts[0].Base,
		MinutePrice: gts[0].MinutePrice,
	}, nil
}

func Save[Q postgres.Queryer](ctx context.Context, q Q, t model.Tariff) error {
	gt := &gTariff{
		ID:          1,
		Base:        t.Base,
		MinutePrice: t.MinutePrice,
		UpdatedAt:   time.Now(),
	}
	res := q.GORM(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"base", "minute_price", "updated_at"},
		),
	}).Create(gt)
	if err := res.Error; err != nil {
		return fmt.Errorf("upserting tariff: %w", err)
	}
	return nil
}

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (tariffs *Repo) Conn(c repo.Conn) repo.TariffsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Current(ctx context.Context) (*model.Tariff, error) {
	return Current(ctx, cq.Conn)
}

func (cq connQueryer) Save(ctx context.Context, t model.Tariff) error {
	return Save(ctx, cq.Conn, t)
}

type txQueryer struct {
	*postgres.Tx
}

func (tariffs *Repo) Tx(tx repo.Tx) repo.TariffsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Current(ctx context.Context) (*model.Tariff, error) {
	return Current(ctx, tq.Tx)
}

func (tq txQueryer) Save(ctx context.Context, t model.Tariff) error {
	return Save(ctx, tq.Tx, t)
}
