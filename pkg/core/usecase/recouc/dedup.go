// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package recouc

import (
	"fmt"
	"time"
)

// Deduplicator suppresses repeated physical notifications. It keeps
// the timestamp of the last accepted event per source key. An event is
// a duplicate when its timestamp is not after that one, so a delayed
// event which arrives out of order is rejected like an exact repeat of
// (key, timestamp). Keys live as long as the process.
//
// Checking and recording are separate steps. The engine records an
// event only after its effects have been applied, so an event whose
// handling failed is not a duplicate when it is delivered again.
type Deduplicator struct {
	last     map[string]time.Time
	minDwell time.Duration
}

// NewDeduplicator instantiates a Deduplicator which discards exit
// signals arriving sooner than minDwell after the session entry.
func NewDeduplicator(minDwell time.Duration) *Deduplicator {
	return &Deduplicator{
		last:     make(map[string]time.Time),
		minDwell: minDwell,
	}
}

// Seen reports whether an event of key source at ts must be discarded
// because an event with the same or a newer timestamp was recorded.
func (d *Deduplicator) Seen(key string, ts time.Time) bool {
	last, ok := d.last[key]
	return ok && !ts.After(last)
}

// Record remembers ts as the last accepted timestamp of key source.
func (d *Deduplicator) Record(key string, ts time.Time) {
	d.last[key] = ts
}

// TooSoon reports whether an exit signal at ts must be discarded as
// sensor noise for a session which has started at entry.
func (d *Deduplicator) TooSoon(ts, entry time.Time) bool {
	return ts.Sub(entry) < d.minDwell
}

func parkedKey(spotID int) string {
	return fmt.Sprintf("spot-%d/parked", spotID)
}

func freedKey(spotID int) string {
	return fmt.Sprintf("spot-%d/freed", spotID)
}

func readingKey(spotID int) string {
	return fmt.Sprintf("spot-%d/reading", spotID)
}
