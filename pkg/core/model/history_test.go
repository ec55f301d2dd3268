// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"
	"time"

	"github.com/momeni/parkade/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(paid time.Time, stay time.Duration, fee float64) model.HistoryRecord {
	return model.HistoryRecord{
		Plate:     "ABC123",
		SpotID:    1,
		EntryTime: paid.Add(-stay),
		ExitTime:  paid,
		Fee:       fee,
		PaidAt:    paid,
	}
}

func TestNewDashboard(t *testing.T) {
	now := time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)
	d := model.NewDashboard([]model.HistoryRecord{
		record(now.Add(-time.Hour), 30*time.Minute, 5),
		record(now.Add(-2*time.Hour), 90*time.Minute, 8),
		record(now.AddDate(0, 0, -3), 60*time.Minute, 5),
		record(time.Date(2024, time.January, 5, 9, 0, 0, 0, time.UTC), 60*time.Minute, 20),
		record(time.Date(2024, time.February, 5, 9, 0, 0, 0, time.UTC), 60*time.Minute, 7.5),
	}, now)
	assert.Equal(t, 13.0, d.EarningsToday)
	assert.Equal(t, 18.0, d.EarningsMonth)
	assert.Equal(t, 60.0, d.AverageMinutes)
	assert.Equal(t, 5, d.Sessions)
	require.NotNil(t, d.BestMonth)
	assert.Equal(t, model.MonthEarnings{Month: "2024-01", Earnings: 20}, *d.BestMonth)
}

func TestNewDashboardEmpty(t *testing.T) {
	d := model.NewDashboard(nil, time.Now())
	assert.Equal(t, model.Dashboard{}, d)
}
