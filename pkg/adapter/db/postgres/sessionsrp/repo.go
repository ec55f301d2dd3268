// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sessionsrp provides a reification of the repo.Sessions
// interface over the sessions table which holds the active and
// exit-pending sessions. Unique constraints on the plate and spot_id
// columns guarantee that a vehicle or a spot has one session at most.
package sessionsrp

import (
	"context"
	"time"

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

func (sessions *Repo) Conn(c repo.Conn) repo.SessionsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Active(ctx context.Context) ([]model.Session, error) {
	return Active(ctx, cq.Conn)
}

func (cq connQueryer) Create(ctx context.Context, s *model.Session) error {
	return Create(ctx, cq.Conn, s)
}

func (cq connQueryer) MarkExit(
	ctx context.Context, plate model.Plate, at time.Time,
) (*model.Session, error) {
	return MarkExit(ctx, cq.Conn, plate, at)
}

func (cq connQueryer) Delete(
	ctx context.Context, plate model.Plate,
) (*model.Session, error) {
	return Delete(ctx, cq.Conn, plate)
}

type txQueryer struct {
	*postgres.Tx
}

func (sessions *Repo) Tx(tx repo.Tx) repo.SessionsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Active(ctx context.Context) ([]model.Session, error) {
	return Active(ctx, tq.Tx)
}

func (tq txQueryer) Create(ctx context.Context, s *model.Session) error {
	return Create(ctx, tq.Tx, s)
}

func (tq txQueryer) MarkExit(
	ctx context.Context, plate model.Plate, at time.Time,
) (*model.Session, error) {
	return MarkExit(ctx, tq.Tx, plate, at)
}

func (tq txQueryer) Delete(
	ctx context.Context, plate model.Plate,
) (*model.Session, error) {
	return Delete(ctx, tq.Tx, plate)
}
