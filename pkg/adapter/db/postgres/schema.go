// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/parkade/pkg/core/cerr"
)

// SchemaSQL creates all parkade tables in the current search_path.
//
//go:embed schema.sql
var SchemaSQL string

// Tables lists the names of the tables which are created by SchemaSQL,
// sorted by their names.
var Tables = []string{"history", "pending_entries", "sessions", "tariffs"}

const uniqueViolation = "23505"

// Classify converts the PostgreSQL unique constraint violations into
// Conflict errors and wraps other errors with the given operation name.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return cerr.Conflict(fmt.Errorf(
			"%s: %s violates %s", op, pgErr.TableName, pgErr.ConstraintName,
		))
	}
	return fmt.Errorf("%s: %w", op, err)
}
