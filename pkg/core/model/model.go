// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the parking facility entities: spots, pending entries,
// sessions, tariffs, and the historical records of paid sessions.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
// By the way, it is acceptable to annotate structs in this package with
// multiple frameworks dependent tags (e.g., as required by ORM or JSON
// libraries) since adding more tags does not complicate definition of
// a struct, but can prevent unnecessary structs duplication.
//
// The fee calculation is implemented here as a pure function over the
// Tariff and Session models because it needs no collaborator at all.
package model
