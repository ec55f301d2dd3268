// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package historyuc_test

import (
	"context"
	"testing"
	"time"

	"github.com/momeni/parkade/internal/test/memdb"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
	"github.com/momeni/parkade/pkg/core/usecase/historyuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, db *memdb.DB, rs ...model.HistoryRecord) {
	ctx := context.Background()
	h := memdb.NewHistory(db)
	err := db.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		for i := range rs {
			if err := h.Conn(c).Append(ctx, &rs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func record(paid time.Time, minutes int, fee float64) model.HistoryRecord {
	entry := paid.Add(-time.Duration(minutes) * time.Minute)
	return model.HistoryRecord{
		Plate:      "ABC123",
		SpotID:     1,
		EntryTime:  entry,
		ExitTime:   paid,
		RateBase:   5,
		RateMinute: 0.1,
		Fee:        fee,
		PaidAt:     paid,
	}
}

func TestListAndDashboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 20, 18, 0, 0, 0, time.UTC)
	db := memdb.New()
	seed(t, db,
		record(now.Add(-time.Hour), 30, 5),
		record(now.Add(-2*time.Hour), 90, 8),
		record(now.AddDate(0, 0, -3), 60, 5),
		record(time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), 120, 11),
		record(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), 120, 11),
		record(time.Date(2021, 1, 5, 9, 0, 0, 0, time.UTC), 120, 99),
	)
	uc, err := historyuc.New(
		db, memdb.NewHistory(db),
		historyuc.WithClock(func() time.Time { return now }),
		historyuc.WithMaxLimit(4),
	)
	require.NoError(t, err)

	rs, err := uc.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, now.Add(-time.Hour), rs[0].PaidAt)
	rs, err = uc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, rs, 4)

	d, err := uc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13.0, d.EarningsToday)
	assert.Equal(t, 18.0, d.EarningsMonth)
	assert.Equal(t, 5, d.Sessions)
	assert.Equal(t, 84.0, d.AverageMinutes)
	require.NotNil(t, d.BestMonth)
	assert.Equal(t, "2024-03", d.BestMonth.Month)
	assert.Equal(t, 22.0, d.BestMonth.Earnings)
}
