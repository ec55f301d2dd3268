// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/momeni/parkade/pkg/core/repo"
	"gorm.io/gorm"
)

// Queryer is satisfied by the connections and transactions of this
// package. Repositories take it as a type parameter in order to share
// their query implementations between the Conn and Tx variants.
type Queryer interface {
	*Conn | *Tx
	repo.Queryer

	// GORM returns a session bound to ctx which runs its queries
	// over the underlying connection or transaction.
	GORM(ctx context.Context) *gorm.DB
}
