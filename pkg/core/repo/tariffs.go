// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/parkade/pkg/core/model"
)

type TariffsConnQueryer interface {
	TariffsQueryer
}

type TariffsTxQueryer interface {
	TariffsQueryer
}

// TariffsQueryer persists the single current tariff of the facility.
type TariffsQueryer interface {
	// Current returns the stored tariff. A NotFound error is returned
	// if the tariff is not initialized yet.
	Current(ctx context.Context) (*model.Tariff, error)

	// Save creates or replaces the stored tariff.
	Save(ctx context.Context, t model.Tariff) error
}

type Tariffs interface {
	Conn(Conn) TariffsConnQueryer
	Tx(Tx) TariffsTxQueryer
}
