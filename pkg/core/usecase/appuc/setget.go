// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package appuc

import "github.com/momeni/parkade/pkg/core/model"

// Tariff returns a copy of the tariff which is currently in effect.
// New sessions capture this tariff. Before the first successful Reload
// or UpdateTariff call, the default tariff is returned.
func (app *UseCase) Tariff() model.Tariff {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	if app.tariff == nil {
		return *app.fallback
	}
	return *app.tariff
}

// updateAll atomically publishes the t tariff.
func (app *UseCase) updateAll(t *model.Tariff) {
	app.rwlock.Lock()
	defer app.rwlock.Unlock()
	app.tariff = t
}
