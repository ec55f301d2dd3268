// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
)

// PendingEntry is a vehicle which is registered at the entry barrier
// by an operator, but is not matched to a spot yet. The ID is issued
// by the server when the entry is enqueued.
type PendingEntry struct {
	ID         uuid.UUID `json:"id"`
	Plate      Plate     `json:"plate"`
	DetectedAt time.Time `json:"detected_at"`
}

// AssignmentPrompt asks an operator to choose which pending entry has
// parked in SpotID. It is raised when a spot becomes occupied while
// two or more vehicles are waiting in the queue.
type AssignmentPrompt struct {
	SpotID     int            `json:"spot_id"`
	DetectedAt time.Time      `json:"detected_at"`
	Candidates []PendingEntry `json:"candidates"`
}
