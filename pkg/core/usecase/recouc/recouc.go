// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package recouc contains the reconciliation Engine which ingests the
// physical events of the parking facility and reconciles them with the
// logical model of which vehicle is parked in which spot, since when,
// and what it owes.
//
// The Engine owns the entry queue and session lifecycle use cases,
// a Deduplicator, and a Resolver. All of them are only accessed by one
// processing loop (see the Run method). Physical events are delivered
// to that loop through a buffered inbox, so a slow persistence call
// delays their processing without dropping them, and the operator
// requests are executed by the same loop in their arrival order.
package recouc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
	"github.com/momeni/parkade/pkg/core/usecase/queueuc"
	"github.com/momeni/parkade/pkg/core/usecase/sessionuc"
)

// ErrStopped indicates that the engine processing loop is not running
// anymore, so a request could not be served.
var ErrStopped = errors.New("reconciliation engine is stopped")

type envelope struct {
	ev   *model.Event
	ack  func(error)
	fn   func(ctx context.Context) error
	done chan error
}

// Engine is the reconciliation engine. It is constructed once and its
// Run method must be running while events are delivered or operator
// requests are served.
type Engine struct {
	queue     *queueuc.UseCase
	sessions  *sessionuc.UseCase
	dedup     *Deduplicator
	resolver  *Resolver
	notifier  Notifier
	commander Commander

	now            func() time.Time
	minDwell       time.Duration
	retention      time.Duration
	inboxSize      int
	anomalyHistory int
	spotsCount     int

	inbox     chan envelope
	stopped   chan struct{}
	spots     map[int]*model.Spot
	entryOpen bool
	exitOpen  bool
	automatic bool
	anomalies []model.Anomaly
}

// New instantiates a reconciliation engine. The pool and repositories
// are used for persisting the queue, sessions, and history records
// while t provides the tariff of new sessions.
func New(
	p repo.Pool,
	q repo.Queue,
	s repo.Sessions,
	h repo.History,
	t TariffSource,
	opts ...Option,
) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if e.now == nil {
		e.now = time.Now
	}
	if e.minDwell == 0 {
		e.minDwell = 5 * time.Second
	}
	if e.retention == 0 {
		e.retention = 24 * time.Hour
	}
	if e.inboxSize == 0 {
		e.inboxSize = 256
	}
	if e.anomalyHistory == 0 {
		e.anomalyHistory = 50
	}
	if e.spotsCount == 0 {
		e.spotsCount = 3
	}
	if e.notifier == nil {
		e.notifier = logNotifier{}
	}
	if e.commander == nil {
		e.commander = logCommander{}
	}
	var err error
	e.queue, err = queueuc.New(p, q, queueuc.WithClock(e.now))
	if err != nil {
		return nil, fmt.Errorf("creating queue use case: %w", err)
	}
	e.sessions, err = sessionuc.New(p, s, h, sessionuc.WithClock(e.now))
	if err != nil {
		return nil, fmt.Errorf("creating session use case: %w", err)
	}
	e.dedup = NewDeduplicator(e.minDwell)
	e.resolver = NewResolver(e.queue, e.sessions, t, e.now, e.retention)
	e.inbox = make(chan envelope, e.inboxSize)
	e.stopped = make(chan struct{})
	e.spots = make(map[int]*model.Spot, e.spotsCount)
	for id := 1; id <= e.spotsCount; id++ {
		e.spots[id] = &model.Spot{ID: id}
	}
	return e, nil
}

// Run loads the queue and active sessions and then processes the
// delivered events and operator requests one by one until ctx is
// done. Run must be called once. Its returned error is nil if ctx
// was canceled after a successful load.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.stopped)
	if err := e.queue.Load(ctx); err != nil {
		return fmt.Errorf("loading queue: %w", err)
	}
	if err := e.sessions.Load(ctx); err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	log.Info(
		ctx, "reconciliation engine is started",
		slog.Int("queued", e.queue.Len()),
		slog.Int("sessions", len(e.sessions.List())),
		slog.Int("spots", e.spotsCount),
	)
	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "reconciliation engine is stopped")
			return nil
		case env := <-e.inbox:
			e.process(ctx, env)
		}
	}
}

func (e *Engine) process(ctx context.Context, env envelope) {
	if env.fn != nil {
		env.done <- env.fn(ctx)
		return
	}
	err := e.handle(ctx, env.ev)
	if err != nil {
		log.Error(
			ctx, "event is left unresolved",
			slog.String("kind", kindName(env.ev.Kind)),
			log.Spot(env.ev.SpotID),
			log.Err("err", err),
		)
	}
	if env.ack != nil {
		env.ack(err)
	}
}

// Deliver puts ev in the inbox without waiting for its processing.
// The ack function (if not nil) is called by the processing loop with
// nil if ev was handled (including discarded duplicates and reported
// anomalies), or with the error which left ev unresolved so it may be
// delivered again. Deliver blocks while the inbox is full and fails
// only if ctx is done or the engine is stopped.
func (e *Engine) Deliver(
	ctx context.Context, ev model.Event, ack func(error),
) error {
	if e.isStopped() {
		return ErrStopped
	}
	select {
	case e.inbox <- envelope{ev: &ev, ack: ack}:
		return nil
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit delivers ev and waits for its processing result.
func (e *Engine) Submit(ctx context.Context, ev model.Event) error {
	done := make(chan error, 1)
	err := e.Deliver(ctx, ev, func(err error) { done <- err })
	if err != nil {
		return err
	}
	return e.wait(ctx, done)
}

// do runs fn on the processing loop and waits for its result.
func (e *Engine) do(
	ctx context.Context, fn func(ctx context.Context) error,
) error {
	if e.isStopped() {
		return ErrStopped
	}
	done := make(chan error, 1)
	select {
	case e.inbox <- envelope{fn: fn, done: done}:
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return e.wait(ctx, done)
}

func (e *Engine) isStopped() bool {
	select {
	case <-e.stopped:
		return true
	default:
		return false
	}
}

func (e *Engine) wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-e.stopped:
		select {
		case err := <-done:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) notify(
	ctx context.Context, kind model.NotificationKind, data any,
) {
	e.notifier.Notify(ctx, model.Notification{
		Kind: kind, At: e.now(), Data: data,
	})
}

func (e *Engine) report(ctx context.Context, a model.Anomaly) {
	log.Warn(
		ctx, "anomaly",
		slog.String("kind", string(a.Kind)),
		log.Spot(a.SpotID),
		log.Time("at", a.At),
		slog.String("detail", a.Detail),
	)
	e.anomalies = append(e.anomalies, a)
	if n := len(e.anomalies) - e.anomalyHistory; n > 0 {
		e.anomalies = slices.Delete(e.anomalies, 0, n)
	}
	e.notify(ctx, model.NotifyAnomaly, a)
}

func (e *Engine) send(ctx context.Context, cmd model.Command) {
	if err := e.commander.Command(ctx, cmd); err != nil {
		log.Error(
			ctx, "sending command failed",
			log.Stringer("cmd", cmd),
			log.Err("err", err),
		)
	}
}

// unavailable marks the unclassified errors as persistence failures.
func unavailable(err error) error {
	var ce *cerr.Error
	if err == nil || errors.As(err, &ce) {
		return err
	}
	return cerr.Unavailable(err)
}

func (e *Engine) spotSnapshot() []model.Spot {
	spots := make([]model.Spot, 0, len(e.spots))
	for _, s := range e.spots {
		spots = append(spots, *s)
	}
	slices.SortFunc(spots, func(a, b model.Spot) int {
		return a.ID - b.ID
	})
	return spots
}

func (e *Engine) facility() model.Facility {
	return model.Facility{
		Spots:     e.spotSnapshot(),
		EntryOpen: e.entryOpen,
		ExitOpen:  e.exitOpen,
		Automatic: e.automatic,
	}
}

func kindName(k model.EventKind) string {
	if k.Validate() != nil {
		return fmt.Sprintf("invalid(%d)", int(k))
	}
	return k.String()
}
