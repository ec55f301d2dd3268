// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package historyrp provides a reification of the repo.History
// interface over the append-only history table.
package historyrp

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/parkade/pkg/adapter/db/postgres"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
)

type gRecord struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	Plate      string
	SpotID     int
	EntryTime  time.Time
	ExitTime   time.Time
	RateBase   float64
	RateMinute float64
	Fee        float64
	PaidAt     time.Time
}

func (gr *gRecord) TableName() string {
	return "history"
}

func (gr *gRecord) Model() *model.HistoryRecord {
	return &model.HistoryRecord{
		Plate:      model.Plate(gr.Plate),
		SpotID:     gr.SpotID,
		EntryTime:  gr.EntryTime,
		ExitTime:   gr.ExitTime,
		RateBase:   gr.RateBase,
		RateMinute: gr.RateMinute,
		Fee:        gr.Fee,
		PaidAt:     gr.PaidAt,
	}
}

func Append[Q postgres.Queryer](ctx context.Context, q Q, r *model.HistoryRecord) error {
	gr := &gRecord{
		Plate:      string(r.Plate),
		SpotID:     r.SpotID,
		EntryTime:  r.EntryTime,
		ExitTime:   r.ExitTime,
		RateBase:   r.RateBase,
		RateMinute: r.RateMinute,
		Fee:        r.Fee,
		PaidAt:     r.PaidAt,
	}
	if err := q.GORM(ctx).Create(gr).Error; err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}
	return nil
}

func Recent[Q postgres.Queryer](
	ctx context.Context, q Q, since time.Time, limit int,
) ([]model.HistoryRecord, error) {
	gdb := q.GORM(ctx).Where("paid_at >= ?", since).Order(
		"paid_at DESC, id DESC",
	)
	if limit > 0 {
		gdb = gdb.Limit(limit)
	}
	var grs []gRecord
	if err := gdb.Find(&grs).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	rs := make([]model.HistoryRecord, 0, len(grs))
	for i := range grs {
		rs = append(rs, *grs[i].Model())
	}
	return rs, nil
}

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (history *Repo) Conn(c repo.Conn) repo.HistoryConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Append(ctx context.Context, r *model.HistoryRecord) error {
	return Append(ctx, cq.Conn, r)
}

func (cq connQueryer) Recent(
	ctx context.Context, since time.Time, limit int,
) ([]model.HistoryRecord, error) {
	return Recent(ctx, cq.Conn, since, limit)
}

type txQueryer struct {
	*postgres.Tx
}

func (history *Repo) Tx(tx repo.Tx) repo.HistoryTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Append(ctx context.Context, r *model.HistoryRecord) error {
	return Append(ctx, tq.Tx, r)
}

func (tq txQueryer) Recent(
	ctx context.Context, since time.Time, limit int,
) ([]model.HistoryRecord, error) {
	return Recent(ctx, tq.Tx, since, limit)
}
