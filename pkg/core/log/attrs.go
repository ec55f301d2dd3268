// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"log/slog"
	"time"
)

// Valuer returns an Attr for the given slog.LogValuer value.
func Valuer(key string, value slog.LogValuer) slog.Attr {
	return slog.Any(key, value)
}

// Err returns an Attr for the given error value.
// The error value is resolved as a string by its Error() method.
// If error value is nil, the constant "no-error" value will be used.
func Err(key string, value error) slog.Attr {
	if value == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, value.Error())
}

// Plate returns a "plate" Attr for any string-like plate value.
func Plate[S ~string](plate S) slog.Attr {
	return slog.String("plate", string(plate))
}

// Spot returns a "spot" Attr for the given spot id.
func Spot(id int) slog.Attr {
	return slog.Int("spot", id)
}

// Time returns an Attr for the given timestamp, formatted with
// milliseconds precision.
func Time(key string, t time.Time) slog.Attr {
	return slog.String(key, t.Format("2006-01-02T15:04:05.000Z07:00"))
}

// Stringer returns an Attr which is resolved by the String method of
// value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}
