// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/momeni/parkade/pkg/core/model"
	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)

func TestElapsedMinutes(t *testing.T) {
	for _, tc := range []struct {
		name string
		d    time.Duration
		min  int64
	}{
		{"zero", 0, 0},
		{"negative", -time.Minute, 0},
		{"one nanosecond", time.Nanosecond, 1},
		{"exactly one minute", time.Minute, 1},
		{"one minute and a second", time.Minute + time.Second, 2},
		{"exactly one hour", time.Hour, 60},
		{"one hour and a millisecond", time.Hour + time.Millisecond, 61},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.min, model.ElapsedMinutes(t0, t0.Add(tc.d)))
		})
	}
}

func TestFeeTiers(t *testing.T) {
	tariff := model.Tariff{Base: 5, MinutePrice: 0.1}
	for _, d := range []time.Duration{
		0,
		time.Second,
		59*time.Minute + 59*time.Second,
		time.Hour,
	} {
		assert.Equal(t, 5.0, tariff.Fee(t0, t0.Add(d)), "d=%v", d)
	}
	assert.InDelta(t, 5.1, tariff.Fee(t0, t0.Add(61*time.Minute)), 1e-9)
	assert.InDelta(t, 5.1, tariff.Fee(t0, t0.Add(time.Hour+time.Second)), 1e-9)
	assert.InDelta(t, 11.0, tariff.Fee(t0, t0.Add(2*time.Hour)), 1e-9)
}

func TestFeeRoundsOnlyWhenAsked(t *testing.T) {
	tariff := model.Tariff{Base: 1, MinutePrice: 0.333}
	fee := tariff.Fee(t0, t0.Add(63*time.Minute))
	assert.InDelta(t, 1.999, fee, 1e-9)
	assert.Equal(t, 2.0, model.RoundCents(fee))
}

func TestTariffValidate(t *testing.T) {
	assert.NoError(t, model.DefaultTariff.Validate())
	assert.NoError(t, model.Tariff{}.Validate())
	assert.ErrorIs(
		t, model.Tariff{Base: -1}.Validate(), model.ErrNegativePrice,
	)
	assert.ErrorIs(
		t, model.Tariff{MinutePrice: -0.5}.Validate(),
		model.ErrNegativePrice,
	)
}

func ExampleTariff_Fee() {
	entry := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	for _, stay := range []time.Duration{
		45 * time.Minute,
		time.Hour,
		time.Hour + 30*time.Second,
		90 * time.Minute,
	} {
		fee := model.DefaultTariff.Fee(entry, entry.Add(stay))
		fmt.Printf("%v: %.2f\n", stay, model.RoundCents(fee))
	}
	// Output:
	// 45m0s: 5.00
	// 1h0m0s: 5.00
	// 1h0m30s: 5.10
	// 1h30m0s: 8.00
}
