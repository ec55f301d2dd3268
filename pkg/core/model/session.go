// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"time"

	"gopkg.in/guregu/null.v4"
)

// SessionState enumerates the lifecycle states of a parking session.
// Although this enum is numeric, it is serialized as a string.
type SessionState int

// Valid values for the SessionState enum.
const (
	SessionStateInvalid SessionState = iota // zero value is invalid

	SessionStateActive      // vehicle is parked, exit time unset
	SessionStateExitPending // exit time is frozen, payment pending
	SessionStateClosed      // paid and archived
)

// String converts the SessionState enum to a string.
// Invalid states are reported as "invalid(N)".
func (s SessionState) String() string {
	switch s {
	case SessionStateActive:
		return "active"
	case SessionStateExitPending:
		return "exit-pending"
	case SessionStateClosed:
		return "closed"
	default:
		return fmt.Sprintf("invalid(%d)", int(s))
	}
}

// MarshalText serializes the state as its String representation.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session records one vehicle occupying one spot from its entry until
// its payment. RateBase and RateMinute are copied from the tariff which
// was current when the session was created and they never change.
// ExitTime is set once and is never overwritten afterwards.
type Session struct {
	Plate      Plate     `json:"plate"`
	SpotID     int       `json:"spot_id"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   null.Time `json:"exit_time"`
	RateBase   float64   `json:"rate_base"`
	RateMinute float64   `json:"rate_minute"`
}

// NewSession creates an active session for plate in spotID, starting at
// entry and capturing the t tariff rates.
func NewSession(plate Plate, spotID int, entry time.Time, t Tariff) *Session {
	return &Session{
		Plate:      plate,
		SpotID:     spotID,
		EntryTime:  entry,
		RateBase:   t.Base,
		RateMinute: t.MinutePrice,
	}
}

// State reports whether the session is active or waiting for payment.
// Closed sessions are represented by HistoryRecord instances instead.
func (s *Session) State() SessionState {
	if s.ExitTime.Valid {
		return SessionStateExitPending
	}
	return SessionStateActive
}

// Tariff returns the rates which were captured at the session entry.
func (s *Session) Tariff() Tariff {
	return Tariff{Base: s.RateBase, MinutePrice: s.RateMinute}
}

// MarkExit sets the exit time to at, unless it was already set.
// It returns true only if the exit time was changed.
func (s *Session) MarkExit(at time.Time) bool {
	if s.ExitTime.Valid {
		return false
	}
	s.ExitTime = null.TimeFrom(at)
	return true
}

// Quote computes the fee of the session. The frozen exit time is used
// when present and the now argument is used otherwise.
func (s *Session) Quote(now time.Time) Quote {
	end := now
	if s.ExitTime.Valid {
		end = s.ExitTime.Time
	}
	elapsed := end.Sub(s.EntryTime)
	if elapsed < 0 {
		elapsed = 0
	}
	return Quote{
		Plate:          s.Plate,
		SpotID:         s.SpotID,
		EntryTime:      s.EntryTime,
		EndTime:        end,
		ElapsedMinutes: ElapsedMinutes(s.EntryTime, end),
		ElapsedSeconds: int64(elapsed / time.Second),
		Fee:            RoundCents(s.Tariff().Fee(s.EntryTime, end)),
		Frozen:         s.ExitTime.Valid,
	}
}

// Quote is a fee computation snapshot of one session. ElapsedMinutes is
// the billed number of started minutes while ElapsedSeconds counts the
// whole seconds of the stay. Fee is rounded to cents.
type Quote struct {
	Plate          Plate     `json:"plate"`
	SpotID         int       `json:"spot_id"`
	EntryTime      time.Time `json:"entry_time"`
	EndTime        time.Time `json:"end_time"`
	ElapsedMinutes int64     `json:"elapsed_minutes"`
	ElapsedSeconds int64     `json:"elapsed_seconds"`
	Fee            float64   `json:"fee"`
	Frozen         bool      `json:"frozen"` // end time is the exit time
}
