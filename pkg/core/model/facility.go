// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// Command specifies an outbound barrier actuation command. Commands
// are fire-and-forget; no acknowledgement is modeled.
type Command int

// Valid values for the Command enum.
const (
	CommandInvalid Command = iota // zero value is invalid

	CommandOpenEntry
	CommandCloseEntry
	CommandOpenExit
	CommandCloseExit
	CommandAutomatic // let the controller drive the barriers
	CommandManual    // only operators drive the barriers
)

var commandNames = [...]string{
	CommandOpenEntry:  "open-entry",
	CommandCloseEntry: "close-entry",
	CommandOpenExit:   "open-exit",
	CommandCloseExit:  "close-exit",
	CommandAutomatic:  "automatic",
	CommandManual:     "manual",
}

// ErrUnknownCommand indicates that a string is not a known command.
var ErrUnknownCommand = errors.New("unknown command")

// CommandError indicates an out of range Command value.
type CommandError int

// Error implements the error interface.
func (e CommandError) Error() string {
	return fmt.Sprintf("invalid command: %d", e)
}

// Validate returns nil for valid commands and a CommandError otherwise.
func (c Command) Validate() error {
	if c <= CommandInvalid || int(c) >= len(commandNames) {
		return CommandError(c)
	}
	return nil
}

// String converts the Command to its name. Invalid commands panic.
func (c Command) String() string {
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return commandNames[c]
}

// ParseCommand parses a command name. For unknown names,
// CommandInvalid and ErrUnknownCommand are returned.
func ParseCommand(s string) (Command, error) {
	for c, name := range commandNames {
		if name != "" && name == s {
			return Command(c), nil
		}
	}
	return CommandInvalid, ErrUnknownCommand
}

// NetworkConfig is pushed to the barrier controller device so it can
// join a wireless network.
type NetworkConfig struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// Facility is a snapshot of the mirrored physical state.
type Facility struct {
	Spots     []Spot `json:"spots"`
	EntryOpen bool   `json:"entry_open"`
	ExitOpen  bool   `json:"exit_open"`
	Automatic bool   `json:"automatic"`
}
