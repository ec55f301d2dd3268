// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Schema repository manages the database tables themselves.
type Schema interface {
	Tx(Tx) SchemaTxQueryer
}

// SchemaTxQueryer creates or drops the parkade tables. All methods are
// expected to run in one transaction, so a failed initialization leaves
// no partial schema behind.
type SchemaTxQueryer interface {
	// DropIfExists drops all parkade tables and their contents.
	DropIfExists(ctx context.Context) error

	// Create creates all parkade tables. Existing tables cause an
	// error.
	Create(ctx context.Context) error

	// Tables lists the parkade tables which currently exist, sorted by
	// their names.
	Tables(ctx context.Context) ([]string, error)
}
