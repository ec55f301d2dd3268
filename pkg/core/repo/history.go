// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/momeni/parkade/pkg/core/model"
)

type HistoryConnQueryer interface {
	HistoryQueryer
}

type HistoryTxQueryer interface {
	HistoryQueryer
}

// HistoryQueryer persists the archived (paid) sessions.
type HistoryQueryer interface {
	// Append stores one archived session.
	Append(ctx context.Context, r *model.HistoryRecord) error

	// Recent returns at most limit records paid at or after since,
	// newest first. A non-positive limit means no limit.
	Recent(
		ctx context.Context, since time.Time, limit int,
	) ([]model.HistoryRecord, error)
}

type History interface {
	Conn(Conn) HistoryConnQueryer
	Tx(Tx) HistoryTxQueryer
}
