// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sessionuc

import (
	"errors"
	"time"
)

// Option is a functional option for the session lifecycle use case.
type Option func(uc *UseCase) error

// WithClock option makes the session use case to read the current time
// from the now function when it quotes fees, confirms payments, or
// freezes operator-initiated exits.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		if uc.now != nil {
			return errors.New("clock is already configured")
		}
		uc.now = now
		return nil
	}
}
