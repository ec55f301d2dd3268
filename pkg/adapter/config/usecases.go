// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"time"

	"github.com/momeni/parkade/pkg/adapter/config/settings"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
	"github.com/momeni/parkade/pkg/core/usecase/appuc"
	"github.com/momeni/parkade/pkg/core/usecase/historyuc"
	"github.com/momeni/parkade/pkg/core/usecase/recouc"
)

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Facility       Facility       // physical layout
	Reconciliation Reconciliation // engine settings
	Tariff         Tariff         // default tariff
	History        History        // history reporting settings
}

// Facility describes the physical layout of the parking facility.
type Facility struct {
	// Spots is the number of parking spots which are numbered from 1.
	Spots *int `yaml:",omitempty"`
}

// Reconciliation contains the settings of the reconciliation engine.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized. Nil items are not passed to the engine,
// so the engine defaults are used for them.
type Reconciliation struct {
	// MinDwell is the minimum time between parking and a departure
	// signal of the same spot. Earlier departures are sensor noise.
	MinDwell *settings.Duration `yaml:"min-dwell,omitempty"`
	// IdempotencyRetention is how long the handled spot occupancy
	// events are remembered in order to ignore their re-deliveries.
	IdempotencyRetention *settings.Duration `yaml:"idempotency-retention,omitempty"`
	// InboxSize is the number of events which may wait for the engine.
	InboxSize *int `yaml:"inbox-size,omitempty"`
	// AnomalyHistory is the number of anomalies which are kept.
	AnomalyHistory *int `yaml:"anomaly-history,omitempty"`
}

// Tariff contains the tariff which is used while the database has no
// tariff, and the acceptable range of its values.
type Tariff struct {
	Base           *float64 `yaml:",omitempty"`
	MinBase        *float64 `yaml:"base-minimum,omitempty"`
	MaxBase        *float64 `yaml:"base-maximum,omitempty"`
	MinutePrice    *float64 `yaml:"minute-price,omitempty"`
	MinMinutePrice *float64 `yaml:"minute-price-minimum,omitempty"`
	MaxMinutePrice *float64 `yaml:"minute-price-maximum,omitempty"`
}

// History contains the history reporting settings.
type History struct {
	// MaxLimit is the maximum number of records of one listing.
	MaxLimit *int `yaml:"max-limit,omitempty"`
}

// Model returns the configured tariff.
func (t Tariff) Model() model.Tariff {
	return model.Tariff{Base: *t.Base, MinutePrice: *t.MinutePrice}
}

// ValidateAndNormalize fills the missing settings with their defaults
// and verifies the ranges of the given ones.
func (u *Usecases) ValidateAndNormalize() error {
	spots, minSpots := 3, 1
	settings.OverwriteNil(&u.Facility.Spots, &spots)
	if err := settings.VerifyRange(
		&u.Facility.Spots, &minSpots, nil,
	); err != nil {
		return fmt.Errorf("facility.spots=%v: %w", *err.Value, err)
	}
	r := &u.Reconciliation
	minDur := settings.Duration(time.Second)
	if err := settings.VerifyRange(&r.MinDwell, &minDur, nil); err != nil {
		return fmt.Errorf("min-dwell=%v: %w", *err.Value, err)
	}
	minRet := settings.Duration(time.Minute)
	if err := settings.VerifyRange(
		&r.IdempotencyRetention, &minRet, nil,
	); err != nil {
		return fmt.Errorf("idempotency-retention=%v: %w", *err.Value, err)
	}
	one := 1
	if err := settings.VerifyRange(&r.InboxSize, &one, nil); err != nil {
		return fmt.Errorf("inbox-size=%v: %w", *err.Value, err)
	}
	if err := settings.VerifyRange(&r.AnomalyHistory, &one, nil); err != nil {
		return fmt.Errorf("anomaly-history=%v: %w", *err.Value, err)
	}
	if err := settings.VerifyRange(&u.History.MaxLimit, &one, nil); err != nil {
		return fmt.Errorf("history.max-limit=%v: %w", *err.Value, err)
	}
	t := &u.Tariff
	settings.OverwriteNil(&t.Base, &model.DefaultTariff.Base)
	settings.OverwriteNil(&t.MinutePrice, &model.DefaultTariff.MinutePrice)
	zero := 0.0
	settings.OverwriteNil(&t.MinBase, &zero)
	settings.OverwriteNil(&t.MinMinutePrice, &zero)
	if err := settings.VerifyRange(&t.Base, t.MinBase, t.MaxBase); err != nil {
		return fmt.Errorf(
			"VerifyRange(base=%v, minb=%v, maxb=%v): %w",
			err.Value, t.MinBase, t.MaxBase, err,
		)
	}
	if err := settings.VerifyRange(
		&t.MinutePrice, t.MinMinutePrice, t.MaxMinutePrice,
	); err != nil {
		return fmt.Errorf(
			"VerifyRange(minute-price=%v, minb=%v, maxb=%v): %w",
			err.Value, t.MinMinutePrice, t.MaxMinutePrice, err,
		)
	}
	return t.Model().Validate()
}

// NewAppUseCase instantiates a new application management use case
// which falls back to the configured tariff while the database has no
// tariff.
func (u Usecases) NewAppUseCase(
	p repo.Pool, t repo.Tariffs,
) (*appuc.UseCase, error) {
	return appuc.New(p, t, appuc.WithDefaultTariff(u.Tariff.Model()))
}

// NewHistoryUseCase instantiates a new history use case.
func (u Usecases) NewHistoryUseCase(
	p repo.Pool, h repo.History,
) (*historyuc.UseCase, error) {
	opts := make([]historyuc.Option, 0, 1)
	if u.History.MaxLimit != nil {
		opts = append(opts, historyuc.WithMaxLimit(*u.History.MaxLimit))
	}
	return historyuc.New(p, h, opts...)
}

// NewEngine instantiates a new reconciliation engine based on the
// settings in the u struct. The extra opts are appended to the
// configured ones, e.g., for passing the notifier and commander.
func (u Usecases) NewEngine(
	p repo.Pool,
	q repo.Queue,
	s repo.Sessions,
	h repo.History,
	t recouc.TariffSource,
	opts ...recouc.Option,
) (*recouc.Engine, error) {
	r := u.Reconciliation
	all := make([]recouc.Option, 0, 5+len(opts))
	all = append(all, recouc.WithSpots(*u.Facility.Spots))
	if r.MinDwell != nil {
		all = append(all, recouc.WithMinDwell(time.Duration(*r.MinDwell)))
	}
	if r.IdempotencyRetention != nil {
		all = append(all, recouc.WithIdempotencyRetention(
			time.Duration(*r.IdempotencyRetention),
		))
	}
	if r.InboxSize != nil {
		all = append(all, recouc.WithInboxSize(*r.InboxSize))
	}
	if r.AnomalyHistory != nil {
		all = append(all, recouc.WithAnomalyHistory(*r.AnomalyHistory))
	}
	all = append(all, opts...)
	return recouc.New(p, q, s, h, t, all...)
}
