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

type SessionsConnQueryer interface {
	SessionsQueryer
}

type SessionsTxQueryer interface {
	SessionsQueryer
}

// SessionsQueryer persists the active (and exit pending) sessions.
type SessionsQueryer interface {
	// Active returns all sessions which are not archived yet.
	Active(ctx context.Context) ([]model.Session, error)

	// Create stores a new session. A Conflict error is returned if the
	// plate already belongs to another stored session or the spot is
	// held by another session whose exit time is not set yet.
	Create(ctx context.Context, s *model.Session) error

	// MarkExit sets the exit time of the plate session if it is unset
	// and returns the stored session. A NotFound error is returned if
	// the plate has no stored session.
	MarkExit(
		ctx context.Context, plate model.Plate, at time.Time,
	) (*model.Session, error)

	// Delete removes the plate session and returns it, so it can be
	// archived. A NotFound error is returned if there is no such
	// session.
	Delete(ctx context.Context, plate model.Plate) (*model.Session, error)
}

type Sessions interface {
	Conn(Conn) SessionsConnQueryer
	Tx(Tx) SessionsTxQueryer
}
