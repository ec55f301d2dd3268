// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package historyuc contains the history UseCase which lists the
// archived (paid) sessions and summarizes them for the dashboard.
package historyuc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
)

// UseCase represents a history use case. It holds a database
// connection pool and the history repository instance.
type UseCase struct {
	pool      repo.Pool
	historyrp repo.History

	now      func() time.Time
	maxLimit int
}

// New instantiates a history use case.
func New(p repo.Pool, h repo.History, opts ...Option) (*UseCase, error) {
	uc := &UseCase{pool: p, historyrp: h}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.maxLimit == 0 {
		uc.maxLimit = 500
	}
	return uc, nil
}

// Option is a functional option for the history use case.
type Option func(uc *UseCase) error

// WithClock option makes the dashboard to be computed relative to the
// time which is returned by the now function.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		uc.now = now
		return nil
	}
}

// WithMaxLimit option caps the number of records which may be listed
// by one List call.
func WithMaxLimit(n int) Option {
	return func(uc *UseCase) error {
		if n <= 0 {
			return fmt.Errorf("max limit (%d) is not positive", n)
		}
		uc.maxLimit = n
		return nil
	}
}

// List returns the most recent archived sessions, newest first.
// A non-positive or too large limit is replaced by the maximum limit.
func (h *UseCase) List(
	ctx context.Context, limit int,
) (rs []model.HistoryRecord, err error) {
	if limit <= 0 || limit > h.maxLimit {
		limit = h.maxLimit
	}
	err = h.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		rs, err = h.historyrp.Conn(c).Recent(ctx, time.Time{}, limit)
		return err
	})
	if err != nil {
		rs = nil
	}
	return
}

// Dashboard summarizes the earnings of today and this month, the
// average stay, and the best month. Records since the beginning of the
// previous year are taken into account.
func (h *UseCase) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	now := h.now()
	since := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, now.Location())
	var rs []model.HistoryRecord
	err := h.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		var err error
		rs, err = h.historyrp.Conn(c).Recent(ctx, since, 0)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	d := model.NewDashboard(rs, now)
	return &d, nil
}
