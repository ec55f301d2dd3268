// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Duration is a time.Duration which can be read from the YAML
// configuration files as strings like 5s or 24h.
type Duration time.Duration

// UnmarshalText decodes data with time.ParseDuration. The d receiver
// is only updated when data is valid.
func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := time.ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// Marshal returns the string representation of d, or nil if d is nil.
// Trailing zero units are dropped, so 24 hours is "24h" instead of
// "24h0m0s".
func (d *Duration) Marshal() *string {
	if d == nil {
		return nil
	}
	s := (*time.Duration)(d).String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return &s
}

// MarshalText encodes d using its Marshal method.
func (d *Duration) MarshalText() ([]byte, error) {
	if s := d.Marshal(); s != nil {
		return []byte(*s), nil
	}
	return nil, errors.New("nil duration")
}

// LogValue implements slog.LogValuer.
func (d *Duration) LogValue() slog.Value {
	if d == nil {
		return slog.StringValue("nil-duration")
	}
	return slog.DurationValue(time.Duration(*d))
}
