// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// AnomalyKind names a reported, non-fatal inconsistency between the
// physical events and the logical state.
type AnomalyKind string

// Known anomaly kinds.
const (
	// AnomalyUnqueuedVehicle means a spot became occupied while the
	// entry queue was empty.
	AnomalyUnqueuedVehicle AnomalyKind = "unqueued-vehicle"
	// AnomalyUnknownDeparture means a spot was freed while it had no
	// open session.
	AnomalyUnknownDeparture AnomalyKind = "unknown-departure"
	// AnomalyAssignmentConflict means a vehicle occupied a spot, but
	// its session could not be created because it collided with an
	// open session.
	AnomalyAssignmentConflict AnomalyKind = "assignment-conflict"
	// AnomalyUnknownSpot means an event referred to a spot id which is
	// not part of the facility.
	AnomalyUnknownSpot AnomalyKind = "unknown-spot"
)

// Anomaly is reported to operators and kept in a bounded log. It never
// causes an automatic remediation.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind"`
	SpotID int         `json:"spot_id"`
	At     time.Time   `json:"at"`
	Detail string      `json:"detail"`
}
