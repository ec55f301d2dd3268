// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp provides a reification of the repo.Schema interface
// making it possible to drop and (re)create the parkade tables.
package schemarp

import (
	"context"
	"fmt"

	"github.com/momeni/parkade/pkg/adapter/db/postgres"
	"github.com/momeni/parkade/pkg/core/repo"
)

// Repo represents a schema management repository.
type Repo struct {
}

// New instantiates a schema management Repo struct. Although this New
// function does not perform complex operations, and users may use
// a &schemarp.Repo{} directly too, but this method improves the code
// readability as schemarp.New() makes the package to look alike a
// data type.
func New() *Repo {
	return &Repo{}
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer. Otherwise, it will
// panic. Dropping and creating tables needs a transaction, so a failed
// initialization leaves the previous tables intact.
func (schema *Repo) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

// DropIfExists drops all parkade tables which exist, with their rows.
func (tq txQueryer) DropIfExists(ctx context.Context) error {
	_, err := tq.Exec(
		ctx, "DROP TABLE IF EXISTS history, sessions, pending_entries, tariffs",
	)
	if err != nil {
		return fmt.Errorf("dropping tables: %w", err)
	}
	return nil
}

// Create runs the embedded schema SQL statements.
func (tq txQueryer) Create(ctx context.Context) error {
	if _, err := tq.Exec(ctx, postgres.SchemaSQL); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Tables lists the existing parkade tables of the current schema.
func (tq txQueryer) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := tq.GORM(ctx).Raw(
		`SELECT table_name FROM information_schema.tables
WHERE table_schema=current_schema() AND table_name IN ?
ORDER BY table_name`, postgres.Tables,
	).Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return names, nil
}
