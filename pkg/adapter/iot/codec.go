// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package iot

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/parkade/pkg/core/model"
)

// Envelope is the message body which is produced by the IoT rule for
// each MQTT message. Timestamp is the broker receipt time in Unix
// milliseconds and Payload is the original MQTT payload.
type Envelope struct {
	Topic     string          `json:"topic"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ErrNoTopic indicates that a message body has no topic name.
var ErrNoTopic = errors.New("message has no topic")

type spotState struct {
	Occupied *bool   `json:"occupied"`
	Distance float64 `json:"distance"`
}

type spotEvent struct {
	Spot int `json:"spot"`
}

type doorState struct {
	Open *bool `json:"open"`
}

type modeState struct {
	Automatic *bool `json:"automatic"`
}

// Encode builds a message body for the topic with the given payload.
// A zero ts is omitted.
func Encode(topic string, ts time.Time, payload any) ([]byte, error) {
	env := Envelope{Topic: topic}
	if !ts.IsZero() {
		env.Timestamp = ts.UnixMilli()
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling payload: %w", err)
		}
		env.Payload = b
	}
	return json.Marshal(env)
}

// Decode parses a message body into an event. The sent time is used
// as the event timestamp if the body carries none. If both are zero,
// the engine uses its own receipt time.
func (t Topics) Decode(body []byte, sent time.Time) (model.Event, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return model.Event{}, fmt.Errorf("unmarshaling envelope: %w", err)
	}
	if env.Topic == "" {
		return model.Event{}, ErrNoTopic
	}
	kind, spotID, err := t.Kind(env.Topic)
	if err != nil {
		return model.Event{}, err
	}
	ev := model.Event{Kind: kind, SpotID: spotID, Timestamp: sent}
	if env.Timestamp > 0 {
		ev.Timestamp = time.UnixMilli(env.Timestamp).UTC()
	}
	switch kind {
	case model.EventKindSpotReading:
		var s spotState
		if err := unmarshal(env, &s); err != nil {
			return model.Event{}, err
		}
		if s.Occupied == nil {
			return model.Event{}, fmt.Errorf(
				"%s: occupied field is missing", env.Topic,
			)
		}
		ev.Occupied, ev.Distance = *s.Occupied, s.Distance
	case model.EventKindVehicleParked, model.EventKindSpotFreed:
		var s spotEvent
		if err := unmarshal(env, &s); err != nil {
			return model.Event{}, err
		}
		if s.Spot <= 0 {
			return model.Event{}, fmt.Errorf(
				"%s: invalid spot: %d", env.Topic, s.Spot,
			)
		}
		ev.SpotID = s.Spot
	case model.EventKindEntryDoor, model.EventKindExitDoor:
		ev.Open, err = flag(env, "open", "closed", func(b []byte) (*bool, error) {
			var d doorState
			err := json.Unmarshal(b, &d)
			return d.Open, err
		})
		if err != nil {
			return model.Event{}, err
		}
	case model.EventKindMode:
		ev.Automatic, err = flag(env, "automatic", "manual", func(b []byte) (*bool, error) {
			var m modeState
			err := json.Unmarshal(b, &m)
			return m.Automatic, err
		})
		if err != nil {
			return model.Event{}, err
		}
	}
	return ev, nil
}

func unmarshal(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%s: payload is missing", env.Topic)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%s: unmarshaling payload: %w", env.Topic, err)
	}
	return nil
}

// flag decodes a boolean state which is published either as a JSON
// object or as one of the yes and no words in a JSON string.
func flag(
	env Envelope, yes, no string, obj func([]byte) (*bool, error),
) (bool, error) {
	if len(env.Payload) == 0 {
		return false, fmt.Errorf("%s: payload is missing", env.Topic)
	}
	var word string
	if err := json.Unmarshal(env.Payload, &word); err == nil {
		switch word {
		case yes:
			return true, nil
		case no:
			return false, nil
		}
		return false, fmt.Errorf("%s: unknown state %q", env.Topic, word)
	}
	b, err := obj(env.Payload)
	if err != nil {
		return false, fmt.Errorf("%s: unmarshaling payload: %w", env.Topic, err)
	}
	if b == nil {
		return false, fmt.Errorf("%s: state field is missing", env.Topic)
	}
	return *b, nil
}
