// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package appuc contains the application UseCase which supports the
// tariff fetching and updating requests, allows the application to be
// reloaded based on the tariff which is stored in the database, and
// provides the current tariff (with atomic replacement support) to the
// reconciliation engine and the resources packages.
package appuc

import (
	"fmt"
	"sync"

	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
)

// UseCase represents an application use case. It holds a database
// connection pool, the tariffs repository instance, and the default
// tariff which is used until a tariff is stored in the database.
type UseCase struct {
	pool      repo.Pool
	tariffsrp repo.Tariffs
	fallback  *model.Tariff

	// mutex is used by UpdateTariff and Reload methods so only one
	// go routine can try to update/fetch the tariff from the database
	// at any time. Otherwise, a go routine obtaining older data may
	// call updateAll later and the older tariff may last longer.
	// The mutex resolves such concurrency issues without blocking the
	// readers (which should use the following rwlock).
	mutex sync.Mutex

	// rwlock is locked for writing by updateAll whenever a new tariff
	// should be published, while it is locked by the getter methods
	// for reading in order to access the published tariff.
	rwlock sync.RWMutex

	tariff *model.Tariff // cached current tariff
}

// New instantiates an application use case object. The Reload method
// of this object should be called at least once, so it can fetch the
// current tariff, before the Tariff getter method is invoked
// (otherwise, it returns the default tariff).
func New(p repo.Pool, t repo.Tariffs, opts ...Option) (*UseCase, error) {
	uc := &UseCase{
		pool:      p,
		tariffsrp: t,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.fallback == nil {
		t := model.DefaultTariff
		uc.fallback = &t
	}
	return uc, nil
}
