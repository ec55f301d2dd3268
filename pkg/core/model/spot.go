// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// Spot mirrors the latest occupancy reading of one physical spot.
// Spots are never deleted; each reading overwrites the previous one.
type Spot struct {
	ID        int       `json:"id"`
	Occupied  bool      `json:"occupied"`
	Distance  float64   `json:"distance"`   // raw sensor value
	UpdatedAt time.Time `json:"updated_at"` // zero before first reading
}
