// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package queuerp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/parkade/pkg/adapter/db/postgres"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/model"
	"gopkg.in/guregu/null.v4"
	"gorm.io/gorm/clause"
)

type gEntry struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	Plate        string
	DetectedAt   time.Time
	AssignedAt   null.Time
	AssignedSpot null.Int
}

func (ge *gEntry) TableName() string {
	return "pending_entries"
}

func (ge *gEntry) Model() *model.PendingEntry {
	return &model.PendingEntry{
		ID:         ge.ID,
		Plate:      model.Plate(ge.Plate),
		DetectedAt: ge.DetectedAt,
	}
}

func Pending[Q postgres.Queryer](ctx context.Context, q Q) ([]model.PendingEntry, error) {
	var ges []gEntry
	res := q.GORM(ctx).Where("assigned_at IS NULL").Order("detected_at").Find(&ges)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	pes := make([]model.PendingEntry, 0, len(ges))
	for i := range ges {
		pes = append(pes, *ges[i].Model())
	}
	return pes, nil
}

func Create[Q postgres.Queryer](ctx context.Context, q Q, e *model.PendingEntry) error {
	ge := &gEntry{
		ID:         e.ID,
		Plate:      string(e.Plate),
		DetectedAt: e.DetectedAt,
	}
	res := q.GORM(ctx).Create(ge)
	return postgres.Classify("inserting pending entry", res.Error)
}

func Delete[Q postgres.Queryer](ctx context.Context, q Q, id uuid.UUID) error {
	res := q.GORM(ctx).Where(
		"id=? AND assigned_at IS NULL", id,
	).Delete(&gEntry{})
	if err := res.Error; err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if n := res.RowsAffected; n != 1 {
		return cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return nil
}

func MarkAssigned[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID, spotID int, at time.Time,
) (*model.PendingEntry, error) {
	var ges []gEntry
	res := q.GORM(ctx).Model(&ges).Clauses(clause.Returning{}).Where(
		"id=? AND assigned_at IS NULL", id,
	).Updates(map[string]any{
		"assigned_at":   at,
		"assigned_spot": spotID,
	})
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if n := len(ges); n != 1 {
		return nil, cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return ges[0].Model(), nil
}
