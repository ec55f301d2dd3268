// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package queuerp provides a reification of the repo.Queue interface
// over the pending_entries table. Assigned entries are kept in the
// table (with their assignment time and spot) for auditing purposes,
// while only the unassigned ones are visible as the queue.
package queuerp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/parkade/pkg/adapter/db/postgres"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (queue *Repo) Conn(c repo.Conn) repo.QueueConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Pending(ctx context.Context) ([]model.PendingEntry, error) {
	return Pending(ctx, cq.Conn)
}

func (cq connQueryer) Create(ctx context.Context, e *model.PendingEntry) error {
	return Create(ctx, cq.Conn, e)
}

func (cq connQueryer) Delete(ctx context.Context, id uuid.UUID) error {
	return Delete(ctx, cq.Conn, id)
}

func (cq connQueryer) MarkAssigned(
	ctx context.Context, id uuid.UUID, spotID int, at time.Time,
) (*model.PendingEntry, error) {
	return MarkAssigned(ctx, cq.Conn, id, spotID, at)
}

type txQueryer struct {
	*postgres.Tx
}

func (queue *Repo) Tx(tx repo.Tx) repo.QueueTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Pending(ctx context.Context) ([]model.PendingEntry, error) {
	return Pending(ctx, tq.Tx)
}

func (tq txQueryer) Create(ctx context.Context, e *model.PendingEntry) error {
	return Create(ctx, tq.Tx, e)
}

func (tq txQueryer) Delete(ctx context.Context, id uuid.UUID) error {
	return Delete(ctx, tq.Tx, id)
}

func (tq txQueryer) MarkAssigned(
	ctx context.Context, id uuid.UUID, spotID int, at time.Time,
) (*model.PendingEntry, error) {
	return MarkAssigned(ctx, tq.Tx, id, spotID, at)
}
