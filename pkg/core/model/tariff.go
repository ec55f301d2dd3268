// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"math"
	"time"
)

// BaseTierMinutes is the length of the flat priced first tier.
const BaseTierMinutes = 60

// Tariff is the facility pricing rule. The Base price covers the first
// BaseTierMinutes minutes and every further started minute costs
// MinutePrice. Sessions copy the tariff when they are created, so
// changing the current tariff never affects a session in progress.
type Tariff struct {
	Base        float64 `json:"base"`
	MinutePrice float64 `json:"minute_price"`
}

// DefaultTariff is used when neither the database nor the configuration
// file provide a tariff.
var DefaultTariff = Tariff{Base: 5.00, MinutePrice: 0.10}

// ErrNegativePrice is returned by Tariff.Validate for negative prices.
var ErrNegativePrice = errors.New("prices may not be negative")

// Validate returns nil if both prices are finite and non-negative.
func (t Tariff) Validate() error {
	for _, v := range []float64{t.Base, t.MinutePrice} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNegativePrice
		}
	}
	return nil
}

// ElapsedMinutes returns the number of started minutes between entry
// and end. A partial minute counts as a whole one and an end time which
// precedes the entry time is treated as zero elapsed time.
func ElapsedMinutes(entry, end time.Time) int64 {
	d := end.Sub(entry)
	if d <= 0 {
		return 0
	}
	m := int64(d / time.Minute)
	if d%time.Minute != 0 {
		m++
	}
	return m
}

// Fee computes the unrounded fee of a stay from entry to end under t.
// Stays up to BaseTierMinutes (inclusive) cost exactly t.Base.
// Use RoundCents only when the value is displayed or charged.
func (t Tariff) Fee(entry, end time.Time) float64 {
	m := ElapsedMinutes(entry, end)
	if m <= BaseTierMinutes {
		return t.Base
	}
	return t.Base + float64(m-BaseTierMinutes)*t.MinutePrice
}

// RoundCents rounds a monetary amount to 2 decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
