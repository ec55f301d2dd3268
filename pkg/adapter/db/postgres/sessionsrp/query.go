// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sessionsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/parkade/pkg/adapter/db/postgres"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/model"
	"gopkg.in/guregu/null.v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gSession struct {
	Plate      string `gorm:"primaryKey"`
	SpotID     int
	EntryTime  time.Time
	ExitTime   null.Time
	RateBase   float64
	RateMinute float64
}

func (gs *gSession) TableName() string {
	return "sessions"
}

func (gs *gSession) Model() *model.Session {
	return &model.Session{
		Plate:      model.Plate(gs.Plate),
		SpotID:     gs.SpotID,
		EntryTime:  gs.EntryTime,
		ExitTime:   gs.ExitTime,
		RateBase:   gs.RateBase,
		RateMinute: gs.RateMinute,
	}
}

func Active[Q postgres.Queryer](ctx context.Context, q Q) ([]model.Session, error) {
	var gss []gSession
	res := q.GORM(ctx).Order("entry_time").Find(&gss)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	ss := make([]model.Session, 0, len(gss))
	for i := range gss {
		ss = append(ss, *gss[i].Model())
	}
	return ss, nil
}

func Create[Q postgres.Queryer](ctx context.Context, q Q, s *model.Session) error {
	gs := &gSession{
		Plate:      string(s.Plate),
		SpotID:     s.SpotID,
		EntryTime:  s.EntryTime,
		ExitTime:   s.ExitTime,
		RateBase:   s.RateBase,
		RateMinute: s.RateMinute,
	}
	res := q.GORM(ctx).Create(gs)
	return postgres.Classify("inserting session", res.Error)
}

// MarkExit keeps an exit_time which is set already, so concurrent
// exit signals cannot overwrite each other.
func MarkExit[Q postgres.Queryer](
	ctx context.Context, q Q, plate model.Plate, at time.Time,
) (*model.Session, error) {
	var gss []gSession
	res := q.GORM(ctx).Model(&gss).Clauses(clause.Returning{}).Where(
		"plate=?", string(plate),
	).Update("exit_time", gorm.Expr("COALESCE(exit_time, ?)", at))
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if n := len(gss); n != 1 {
		return nil, cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return gss[0].Model(), nil
}

func Delete[Q postgres.Queryer](
	ctx context.Context, q Q, plate model.Plate,
) (*model.Session, error) {
	var gss []gSession
	res := q.GORM(ctx).Clauses(clause.Returning{}).Where(
		"plate=?", string(plate),
	).Delete(&gss)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if n := len(gss); n != 1 {
		return nil, cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return gss[0].Model(), nil
}
