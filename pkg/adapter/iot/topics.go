// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package iot connects the reconciliation engine to the barrier
// controller device. The device publishes MQTT messages which are
// forwarded by an AWS IoT rule into an SQS queue. The Consumer
// long-polls that queue, decodes each message into a model.Event,
// and delivers it to the engine. Outbound commands are published on
// the MQTT topics through the IoT data plane by the Publisher.
package iot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/momeni/parkade/pkg/core/model"
)

// Topics lists the MQTT topic names which are used by the device.
// The SpotState is a pattern with one %d verb for the spot id.
type Topics struct {
	SpotState   string `yaml:"spot-state"`
	EntryEvent  string `yaml:"entry-event"`
	ParkedEvent string `yaml:"parked-event"`
	ExitEvent   string `yaml:"exit-event"`
	FreedEvent  string `yaml:"freed-event"`
	EntryDoor   string `yaml:"entry-door"`
	ExitDoor    string `yaml:"exit-door"`
	Mode        string `yaml:"mode"`
	Control     string `yaml:"control"`
	Network     string `yaml:"network"`
}

// DefaultTopics contains the topic names of the stock firmware.
var DefaultTopics = Topics{
	SpotState:   "parkade/spots/%d/state",
	EntryEvent:  "parkade/events/entry",
	ParkedEvent: "parkade/events/parked",
	ExitEvent:   "parkade/events/exit",
	FreedEvent:  "parkade/events/freed",
	EntryDoor:   "parkade/doors/entry/state",
	ExitDoor:    "parkade/doors/exit/state",
	Mode:        "parkade/mode/state",
	Control:     "parkade/doors/control",
	Network:     "parkade/wifi/config",
}

// Normalize fills the empty topic names from the DefaultTopics and
// verifies that SpotState has exactly one %d verb.
func (t *Topics) Normalize() error {
	fill := func(s *string, d string) {
		if *s == "" {
			*s = d
		}
	}
	d := DefaultTopics
	fill(&t.SpotState, d.SpotState)
	fill(&t.EntryEvent, d.EntryEvent)
	fill(&t.ParkedEvent, d.ParkedEvent)
	fill(&t.ExitEvent, d.ExitEvent)
	fill(&t.FreedEvent, d.FreedEvent)
	fill(&t.EntryDoor, d.EntryDoor)
	fill(&t.ExitDoor, d.ExitDoor)
	fill(&t.Mode, d.Mode)
	fill(&t.Control, d.Control)
	fill(&t.Network, d.Network)
	if strings.Count(t.SpotState, "%") != 1 ||
		strings.Count(t.SpotState, "%d") != 1 {
		return fmt.Errorf(
			"spot-state topic %q must contain one %%d verb", t.SpotState,
		)
	}
	return nil
}

// Kind finds the event kind which is published on the topic. For the
// spot state topics, the spot id is returned too.
func (t Topics) Kind(topic string) (model.EventKind, int, error) {
	switch topic {
	case t.EntryEvent:
		return model.EventKindEntryDetected, 0, nil
	case t.ParkedEvent:
		return model.EventKindVehicleParked, 0, nil
	case t.ExitEvent:
		return model.EventKindExitDetected, 0, nil
	case t.FreedEvent:
		return model.EventKindSpotFreed, 0, nil
	case t.EntryDoor:
		return model.EventKindEntryDoor, 0, nil
	case t.ExitDoor:
		return model.EventKindExitDoor, 0, nil
	case t.Mode:
		return model.EventKindMode, 0, nil
	}
	if id, ok := t.spotID(topic); ok {
		return model.EventKindSpotReading, id, nil
	}
	return model.EventKindInvalid, 0, fmt.Errorf("unknown topic %q", topic)
}

func (t Topics) spotID(topic string) (int, bool) {
	prefix, suffix, _ := strings.Cut(t.SpotState, "%d")
	if !strings.HasPrefix(topic, prefix) || !strings.HasSuffix(topic, suffix) {
		return 0, false
	}
	s := topic[len(prefix):]
	if len(s) < len(suffix) {
		return 0, false
	}
	s = s[:len(s)-len(suffix)]
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 || strconv.Itoa(id) != s {
		return 0, false
	}
	return id, true
}
