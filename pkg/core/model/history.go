// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"sort"
	"time"
)

// HistoryRecord is an archived (closed) session with its charged fee.
type HistoryRecord struct {
	Plate      Plate     `json:"plate"`
	SpotID     int       `json:"spot_id"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	RateBase   float64   `json:"rate_base"`
	RateMinute float64   `json:"rate_minute"`
	Fee        float64   `json:"fee"`
	PaidAt     time.Time `json:"paid_at"`
}

// Close converts the s session into a history record, charging the fee
// of its frozen exit time. The exit time must be set beforehand.
func (s *Session) Close(paidAt time.Time) HistoryRecord {
	q := s.Quote(paidAt)
	return HistoryRecord{
		Plate:      s.Plate,
		SpotID:     s.SpotID,
		EntryTime:  s.EntryTime,
		ExitTime:   q.EndTime,
		RateBase:   s.RateBase,
		RateMinute: s.RateMinute,
		Fee:        q.Fee,
		PaidAt:     paidAt,
	}
}

// MonthEarnings is the total charged amount of one calendar month.
type MonthEarnings struct {
	Month    string  `json:"month"` // formatted as 2006-01
	Earnings float64 `json:"earnings"`
}

// Dashboard summarizes the historical records for the operators.
// BestMonth is nil when there is no record at all.
type Dashboard struct {
	EarningsToday  float64        `json:"earnings_today"`
	EarningsMonth  float64        `json:"earnings_month"`
	AverageMinutes float64        `json:"average_minutes"`
	Sessions       int            `json:"sessions"`
	BestMonth      *MonthEarnings `json:"best_month"`
}

// NewDashboard aggregates records relative to now. Days and months are
// computed in the location of now. Records are attributed to the day of
// their payment. Ties of the best month are broken by the earlier one.
func NewDashboard(records []HistoryRecord, now time.Time) Dashboard {
	loc := now.Location()
	today := now.Format(time.DateOnly)
	month := now.Format("2006-01")
	d := Dashboard{Sessions: len(records)}
	perMonth := make(map[string]float64)
	var totalMinutes float64
	for _, r := range records {
		paid := r.PaidAt.In(loc)
		m := paid.Format("2006-01")
		perMonth[m] += r.Fee
		if m == month {
			d.EarningsMonth += r.Fee
		}
		if paid.Format(time.DateOnly) == today {
			d.EarningsToday += r.Fee
		}
		totalMinutes += r.ExitTime.Sub(r.EntryTime).Minutes()
	}
	if n := len(records); n > 0 {
		d.AverageMinutes = RoundCents(totalMinutes / float64(n))
	}
	months := make([]string, 0, len(perMonth))
	for m := range perMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		if d.BestMonth == nil || perMonth[m] > d.BestMonth.Earnings {
			d.BestMonth = &MonthEarnings{Month: m, Earnings: perMonth[m]}
		}
	}
	d.EarningsToday = RoundCents(d.EarningsToday)
	d.EarningsMonth = RoundCents(d.EarningsMonth)
	if d.BestMonth != nil {
		d.BestMonth.Earnings = RoundCents(d.BestMonth.Earnings)
	}
	return d
}
