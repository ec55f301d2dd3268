// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package queueuc contains the entry queue UseCase which manages the
// vehicles that were registered at the entry barrier, but are not
// matched to any spot yet. The queue repository is the system of
// record and this use case keeps a FIFO cache of its pending entries.
//
// A UseCase instance is not safe for concurrent use. It is owned by
// the reconciliation engine and only its processing loop may call it.
package queueuc

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
)

// UseCase represents an entry queue use case. It holds a database
// connection pool, the queue repository instance, and the cached
// pending entries which are sorted by their detection times.
type UseCase struct {
	pool    repo.Pool
	queuerp repo.Queue

	now     func() time.Time
	entries []model.PendingEntry
}

// New instantiates an entry queue use case. The Load method must be
// called before other methods, so the cache reflects the repository.
func New(p repo.Pool, q repo.Queue, opts ...Option) (*UseCase, error) {
	uc := &UseCase{pool: p, queuerp: q}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// Load replaces the cached entries by the pending entries which are
// stored in the queue repository.
func (q *UseCase) Load(ctx context.Context) error {
	var pes []model.PendingEntry
	err := q.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		var err error
		pes, err = q.queuerp.Conn(c).Pending(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetching pending entries: %w", err)
	}
	slices.SortStableFunc(pes, func(a, b model.PendingEntry) int {
		return a.DetectedAt.Compare(b.DetectedAt)
	})
	q.entries = pes
	return nil
}

// Enqueue validates and normalizes the plate, persists a new pending
// entry for it, and appends it to the cached queue. Invalid plates are
// rejected with a BadRequest error before any state mutation.
func (q *UseCase) Enqueue(
	ctx context.Context, plate string,
) (*model.PendingEntry, error) {
	p, err := model.ParsePlate(plate)
	if err != nil {
		return nil, cerr.BadRequest(err)
	}
	e := &model.PendingEntry{
		ID:         uuid.New(),
		Plate:      p,
		DetectedAt: q.now(),
	}
	err = q.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return q.queuerp.Conn(c).Create(ctx, e)
	})
	if err != nil {
		return nil, fmt.Errorf("persisting pending entry: %w", err)
	}
	q.entries = append(q.entries, *e)
	log.Info(
		ctx, "vehicle is queued",
		log.Plate(e.Plate),
		log.Stringer("id", e.ID),
	)
	pe := *e
	return &pe, nil
}

// Remove discards the id entry from the queue. A NotFound error is
// returned if the entry was claimed or removed already.
func (q *UseCase) Remove(
	ctx context.Context, id uuid.UUID,
) (*model.PendingEntry, error) {
	i := q.index(id)
	if i < 0 {
		return nil, cerr.NotFound(fmt.Errorf("entry %s is not queued", id))
	}
	err := q.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return q.queuerp.Conn(c).Delete(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("deleting pending entry: %w", err)
	}
	e := q.entries[i]
	q.entries = slices.Delete(q.entries, i, i+1)
	log.Info(
		ctx, "queued vehicle is removed",
		log.Plate(e.Plate),
		log.Stringer("id", id),
	)
	return &e, nil
}

// ClaimHandler is called by Claim within the claiming transaction.
// Returning an error rolls back the claim.
type ClaimHandler func(
	ctx context.Context, tx repo.Tx, e *model.PendingEntry,
) error

// Claim marks the id entry as assigned to spotID in a transaction and
// calls handler within the same transaction, so the entry handoff and
// the session creation happen atomically. The entry leaves the cached
// queue only after a successful commit. A NotFound error is returned
// if the entry was claimed or removed already, and callers must treat
// it as an aborted assignment.
func (q *UseCase) Claim(
	ctx context.Context,
	id uuid.UUID,
	spotID int,
	at time.Time,
	handler ClaimHandler,
) (*model.PendingEntry, error) {
	i := q.index(id)
	if i < 0 {
		return nil, cerr.NotFound(fmt.Errorf("entry %s is not queued", id))
	}
	var e *model.PendingEntry
	err := q.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			var err error
			e, err = q.queuerp.Tx(tx).MarkAssigned(ctx, id, spotID, at)
			if err != nil {
				return fmt.Errorf("marking as assigned: %w", err)
			}
			return handler(ctx, tx, e)
		})
	})
	if err != nil {
		if cerr.IsNotFound(err) {
			// another party won the claim
			q.entries = slices.Delete(q.entries, i, i+1)
		}
		return nil, err
	}
	q.entries = slices.Delete(q.entries, i, i+1)
	return e, nil
}

// Entries returns a copy of the cached queue, in FIFO order.
func (q *UseCase) Entries() []model.PendingEntry {
	return slices.Clone(q.entries)
}

// Len returns the number of queued entries.
func (q *UseCase) Len() int {
	return len(q.entries)
}

// Lookup finds the id entry in the queue.
func (q *UseCase) Lookup(id uuid.UUID) (model.PendingEntry, bool) {
	if i := q.index(id); i >= 0 {
		return q.entries[i], true
	}
	return model.PendingEntry{}, false
}

// Contains reports whether the p plate is waiting in the queue.
func (q *UseCase) Contains(p model.Plate) bool {
	return slices.ContainsFunc(q.entries, func(e model.PendingEntry) bool {
		return e.Plate == p
	})
}

func (q *UseCase) index(id uuid.UUID) int {
	return slices.IndexFunc(q.entries, func(e model.PendingEntry) bool {
		return e.ID == id
	})
}
