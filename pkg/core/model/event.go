// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"time"
)

// EventKind specifies the type of a physical event. The transport
// topic of an event decides its kind. Although this enum is numeric,
// it is (de)serialized as a string in the adapter layer.
type EventKind int

// Valid values for the EventKind enum.
const (
	EventKindInvalid EventKind = iota // zero value is invalid

	EventKindSpotReading   // periodic occupancy reading of a spot
	EventKindEntryDetected // a vehicle waits at the entry barrier
	EventKindVehicleParked // a vehicle settled in a spot
	EventKindExitDetected  // a vehicle waits at the exit barrier
	EventKindSpotFreed     // a vehicle left its spot
	EventKindEntryDoor     // entry barrier open/closed state
	EventKindExitDoor      // exit barrier open/closed state
	EventKindMode          // automatic/manual mode state
)

var eventKindNames = [...]string{
	EventKindSpotReading:   "spot-reading",
	EventKindEntryDetected: "entry-detected",
	EventKindVehicleParked: "vehicle-parked",
	EventKindExitDetected:  "exit-detected",
	EventKindSpotFreed:     "spot-freed",
	EventKindEntryDoor:     "entry-door",
	EventKindExitDoor:      "exit-door",
	EventKindMode:          "mode",
}

// ErrUnknownEventKind indicates that a string is not a known event
// kind name.
var ErrUnknownEventKind = errors.New("unknown event kind")

// EventKindError indicates an out of range EventKind value.
type EventKindError int

// Error implements the error interface.
func (e EventKindError) Error() string {
	return fmt.Sprintf("invalid event kind: %d", e)
}

// Validate returns nil for valid kinds and an EventKindError otherwise.
func (k EventKind) Validate() error {
	if k <= EventKindInvalid || int(k) >= len(eventKindNames) {
		return EventKindError(k)
	}
	return nil
}

// String converts the EventKind to its name. Invalid kinds panic.
func (k EventKind) String() string {
	if err := k.Validate(); err != nil {
		panic(err)
	}
	return eventKindNames[k]
}

// ParseEventKind parses a kind name. For unknown names,
// EventKindInvalid and ErrUnknownEventKind are returned.
func ParseEventKind(s string) (EventKind, error) {
	for k, name := range eventKindNames {
		if name != "" && name == s {
			return EventKind(k), nil
		}
	}
	return EventKindInvalid, ErrUnknownEventKind
}

// NeedsSpot reports whether events of kind k must carry a spot id.
func (k EventKind) NeedsSpot() bool {
	switch k {
	case EventKindSpotReading, EventKindVehicleParked, EventKindSpotFreed:
		return true
	}
	return false
}

// Event is one physical notification. Only the fields relevant to
// its Kind are meaningful. A zero Timestamp is replaced by the receipt
// time when the event is handled.
type Event struct {
	Kind      EventKind
	SpotID    int
	Occupied  bool    // spot reading
	Distance  float64 // spot reading
	Open      bool    // door state
	Automatic bool    // mode state
	Timestamp time.Time
}
