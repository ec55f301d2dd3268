// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/parkade/pkg/core/model"
)

type QueueConnQueryer interface {
	QueueQueryer
}

type QueueTxQueryer interface {
	QueueQueryer
}

// QueueQueryer persists the pending entries. Assigned entries are kept
// in the store for auditing, but they are never reported as pending.
type QueueQueryer interface {
	// Pending returns the unassigned entries by detection time
	// ascending.
	Pending(ctx context.Context) ([]model.PendingEntry, error)

	// Create stores a new pending entry.
	Create(ctx context.Context, e *model.PendingEntry) error

	// Delete removes an unassigned entry. A NotFound error is returned
	// if no such unassigned entry exists.
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkAssigned claims an unassigned entry for spotID at the given
	// time and returns it. A NotFound error is returned if the entry is
	// missing or was assigned already.
	MarkAssigned(
		ctx context.Context, id uuid.UUID, spotID int, at time.Time,
	) (*model.PendingEntry, error)
}

type Queue interface {
	Conn(Conn) QueueConnQueryer
	Tx(Tx) QueueTxQueryer
}
