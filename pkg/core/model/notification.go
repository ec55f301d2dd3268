// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// NotificationKind names an operator facing notification.
type NotificationKind string

// Known notification kinds.
const (
	NotifyEntryDetected      NotificationKind = "entry_detected"
	NotifyExitDetected       NotificationKind = "exit_detected"
	NotifyAssignmentRequired NotificationKind = "assignment_required"
	NotifyAnomaly            NotificationKind = "anomaly"
	NotifySessionOpened      NotificationKind = "session_opened"
	NotifyExitMarked         NotificationKind = "exit_marked"
	NotifySessionClosed      NotificationKind = "session_closed"
	NotifyQueueChanged       NotificationKind = "queue_changed"
	NotifyFacilityChanged    NotificationKind = "facility_changed"
)

// Notification is pushed to operators. Data holds a kind specific
// model, e.g., an AssignmentPrompt for NotifyAssignmentRequired.
type Notification struct {
	Kind NotificationKind `json:"kind"`
	At   time.Time        `json:"at"`
	Data any              `json:"data,omitempty"`
}
