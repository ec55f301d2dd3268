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

func TestSessionLifecycle(t *testing.T) {
	s := model.NewSession("XYZ99", 2, t0, model.DefaultTariff)
	assert.Equal(t, model.SessionStateActive, s.State())
	assert.Equal(t, model.DefaultTariff, s.Tariff())

	live := s.Quote(t0.Add(30 * time.Minute))
	assert.False(t, live.Frozen)
	assert.Equal(t, int64(30), live.ElapsedMinutes)
	assert.Equal(t, int64(1800), live.ElapsedSeconds)
	assert.Equal(t, 5.0, live.Fee)

	require.True(t, s.MarkExit(t0.Add(time.Hour)))
	assert.Equal(t, model.SessionStateExitPending, s.State())
	assert.False(t, s.MarkExit(t0.Add(2*time.Hour)), "exit time is set once")
	assert.Equal(t, t0.Add(time.Hour), s.ExitTime.Time)

	frozen := s.Quote(t0.Add(5 * time.Hour))
	assert.True(t, frozen.Frozen)
	assert.Equal(t, t0.Add(time.Hour), frozen.EndTime)
	assert.Equal(t, 5.0, frozen.Fee)

	rec := s.Close(t0.Add(5 * time.Hour))
	assert.Equal(t, model.HistoryRecord{
		Plate:      "XYZ99",
		SpotID:     2,
		EntryTime:  t0,
		ExitTime:   t0.Add(time.Hour),
		RateBase:   5,
		RateMinute: 0.1,
		Fee:        5,
		PaidAt:     t0.Add(5 * time.Hour),
	}, rec)
}

func TestSessionKeepsItsRates(t *testing.T) {
	s := model.NewSession("ABC123", 1, t0, model.Tariff{Base: 2, MinutePrice: 1})
	s.MarkExit(t0.Add(62 * time.Minute))
	assert.Equal(t, 4.0, s.Quote(t0).Fee)
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "active", model.SessionStateActive.String())
	assert.Equal(t, "exit-pending", model.SessionStateExitPending.String())
	assert.Equal(t, "closed", model.SessionStateClosed.String())
	assert.Equal(t, "invalid(0)", model.SessionStateInvalid.String())
}
