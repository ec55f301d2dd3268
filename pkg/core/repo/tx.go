// Copyright (c) 2023 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Tx represents a database transaction.
// It is unsafe to be used concurrently. A transaction may be used
// in order to execute one or more SQL statements one at a time.
// All statements which are in a single transaction observe the
// ACID properties. A READ-COMMITTED transaction is expected from the
// PostgreSQL DBMS server, so claiming a queue entry must rely on a
// conditional UPDATE (and its affected rows count) instead of a
// preceding SELECT.
type Tx interface {
	Queryer

	// IsTx method prevents a non-Tx object (such as a Conn) to
	// mistakenly implement the Tx interface.
	IsTx()
}
