// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package recouc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the reconciliation engine.
type Option func(e *Engine) error

// WithClock option makes the engine and its use cases to read the
// current time from the now function. The receipt time of events
// without a timestamp is also taken from it.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		if e.now != nil {
			return errors.New("clock is already configured")
		}
		e.now = now
		return nil
	}
}

// WithMinDwell option configures the minimum time which must pass
// after the entry of a session before its exit signals are accepted.
func WithMinDwell(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return fmt.Errorf("min dwell (%v) is not positive", d)
		}
		e.minDwell = d
		return nil
	}
}

// WithIdempotencyRetention option configures how long the matched
// occupations are remembered.
func WithIdempotencyRetention(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return fmt.Errorf("retention (%v) is not positive", d)
		}
		e.retention = d
		return nil
	}
}

// WithInboxSize option configures the capacity of the inbound events
// channel. Deliveries block while the inbox is full.
func WithInboxSize(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("inbox size (%d) is not positive", n)
		}
		e.inboxSize = n
		return nil
	}
}

// WithAnomalyHistory option configures how many of the most recent
// anomalies are kept for the operators.
func WithAnomalyHistory(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("anomaly history (%d) is not positive", n)
		}
		e.anomalyHistory = n
		return nil
	}
}

// WithSpots option configures the number of spots. Spots are numbered
// from 1 to n.
func WithSpots(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("spots count (%d) is not positive", n)
		}
		e.spotsCount = n
		return nil
	}
}

// WithNotifier option configures where the operator notifications
// are pushed. By default, they are only logged.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) error {
		if n == nil {
			return errors.New("notifier is nil")
		}
		e.notifier = n
		return nil
	}
}

// WithCommander option configures where the barrier commands are
// sent. By default, they are only logged.
func WithCommander(c Commander) Option {
	return func(e *Engine) error {
		if c == nil {
			return errors.New("commander is nil")
		}
		e.commander = c
		return nil
	}
}
