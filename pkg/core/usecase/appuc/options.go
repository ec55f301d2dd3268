// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package appuc

import (
	"errors"
	"fmt"

	"github.com/momeni/parkade/pkg/core/model"
)

// Option is a functional option for the application use case.
type Option func(uc *UseCase) error

// WithDefaultTariff option configures the tariff which is used while
// the database contains no tariff. This option may be passed to the
// New() function.
func WithDefaultTariff(t model.Tariff) Option {
	return func(uc *UseCase) error {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("default tariff: %w", err)
		}
		if uc.fallback != nil {
			return errors.New("default tariff is already configured")
		}
		uc.fallback = &t
		return nil
	}
}
