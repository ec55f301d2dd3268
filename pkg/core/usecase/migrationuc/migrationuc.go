// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package migrationuc provides the database initialization use cases.
// The InitDBUseCase drops and recreates the parkade tables and fills
// them with the data which is suitable for a development or production
// environment.
package migrationuc
