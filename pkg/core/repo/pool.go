// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo specifies the persistence collaborator expectations of
// the use cases layer. The connection Pool, Conn, and Tx interfaces are
// implemented by the database adapters, while the repository interfaces
// (such as Queue and Sessions) wrap a Conn or Tx and expose the queries
// which are required by the use cases.
package repo

import "context"

// ConnHandler is called with an acquired connection. The connection is
// released when the handler returns.
type ConnHandler func(context.Context, Conn) error

// Pool manages the database connections.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
	Close() error
}
