// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sessionuc contains the session lifecycle UseCase. It owns
// the active sessions (vehicles which occupy a spot) and moves them
// from Active to ExitPending when their exit is detected, and to
// Closed (archived into the history) when their payment is confirmed.
//
// A UseCase instance is not safe for concurrent use. It is owned by
// the reconciliation engine and only its processing loop may call it.
package sessionuc

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
)

// UseCase represents a session lifecycle use case. It holds a database
// connection pool, the sessions and history repository instances, and
// the cached open sessions. All open sessions are indexed by plate,
// but only the Active ones hold their spot in the bySpot index. An
// ExitPending session leaves its spot, so another vehicle may park
// there before the payment is confirmed.
type UseCase struct {
	pool       repo.Pool
	sessionsrp repo.Sessions
	historyrp  repo.History

	now     func() time.Time
	byPlate map[model.Plate]*model.Session
	bySpot  map[int]*model.Session
}

// New instantiates a session lifecycle use case. The Load method must
// be called before other methods, so the cache reflects the repository.
func New(
	p repo.Pool, s repo.Sessions, h repo.History, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:       p,
		sessionsrp: s,
		historyrp:  h,
		byPlate:    make(map[model.Plate]*model.Session),
		bySpot:     make(map[int]*model.Session),
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// Load replaces the cached sessions by the active sessions which are
// stored in the sessions repository.
func (ss *UseCase) Load(ctx context.Context) error {
	var sessions []model.Session
	err := ss.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		var err error
		sessions, err = ss.sessionsrp.Conn(c).Active(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetching active sessions: %w", err)
	}
	clear(ss.byPlate)
	clear(ss.bySpot)
	for i := range sessions {
		ss.Track(ctx, &sessions[i])
	}
	return nil
}

// Create stores a new active session for plate in spotID using the tx
// transaction. The session starts at entry and captures the t tariff
// rates. It is not tracked before the Track method is called, so the
// caller may wait for tx to commit. A Conflict error is returned if
// the plate has an open session or the spot has an Active session.
func (ss *UseCase) Create(
	ctx context.Context,
	tx repo.Tx,
	plate model.Plate,
	spotID int,
	entry time.Time,
	t model.Tariff,
) (*model.Session, error) {
	if o, ok := ss.byPlate[plate]; ok {
		return nil, cerr.Conflict(fmt.Errorf(
			"plate %s is parked in spot %d", plate, o.SpotID,
		))
	}
	if o, ok := ss.bySpot[spotID]; ok {
		return nil, cerr.Conflict(fmt.Errorf(
			"spot %d is occupied by %s", spotID, o.Plate,
		))
	}
	s := model.NewSession(plate, spotID, entry, t)
	if err := ss.sessionsrp.Tx(tx).Create(ctx, s); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}
	return s, nil
}

// Track adds the s session to the cached open sessions.
func (ss *UseCase) Track(ctx context.Context, s *model.Session) {
	ss.byPlate[s.Plate] = s
	if s.ExitTime.Valid {
		log.Info(
			ctx, "session is pending its payment",
			log.Plate(s.Plate),
			log.Spot(s.SpotID),
			log.Time("exit", s.ExitTime.Time),
		)
		return
	}
	ss.bySpot[s.SpotID] = s
	log.Info(
		ctx, "session is active",
		log.Plate(s.Plate),
		log.Spot(s.SpotID),
		log.Time("entry", s.EntryTime),
	)
}

// BySpot returns a copy of the Active session in spotID, if any.
func (ss *UseCase) BySpot(spotID int) (model.Session, bool) {
	s, ok := ss.bySpot[spotID]
	if !ok {
		return model.Session{}, false
	}
	return *s, true
}

// Occupant returns a copy of the Active session in spotID. If there is
// none, the ExitPending session which most recently left spotID is
// returned instead.
func (ss *UseCase) Occupant(spotID int) (model.Session, bool) {
	if s, ok := ss.bySpot[spotID]; ok {
		return *s, true
	}
	if s := ss.departed(spotID); s != nil {
		return *s, true
	}
	return model.Session{}, false
}

func (ss *UseCase) departed(spotID int) *model.Session {
	var last *model.Session
	for _, s := range ss.byPlate {
		if s.SpotID != spotID || !s.ExitTime.Valid {
			continue
		}
		if last == nil || s.ExitTime.Time.After(last.ExitTime.Time) {
			last = s
		}
	}
	return last
}

// ByPlate returns a copy of the open session of p plate, if any.
func (ss *UseCase) ByPlate(p model.Plate) (model.Session, bool) {
	s, ok := ss.byPlate[p]
	if !ok {
		return model.Session{}, false
	}
	return *s, true
}

// List returns copies of all open sessions, sorted by entry time.
func (ss *UseCase) List() []model.Session {
	sessions := make([]model.Session, 0, len(ss.byPlate))
	for _, s := range ss.byPlate {
		sessions = append(sessions, *s)
	}
	slices.SortFunc(sessions, func(a, b model.Session) int {
		if c := a.EntryTime.Compare(b.EntryTime); c != 0 {
			return c
		}
		return a.SpotID - b.SpotID
	})
	return sessions
}

// MarkExitDetected freezes the exit time of the Active session in
// spotID to at, so it becomes ExitPending and releases the spot.
// It returns the session and true if its exit time was changed.
// If spotID has no Active session, the ExitPending session which left
// it is returned unchanged. A missing session is not an error and
// it is reported by a nil session.
func (ss *UseCase) MarkExitDetected(
	ctx context.Context, spotID int, at time.Time,
) (*model.Session, bool, error) {
	s, ok := ss.bySpot[spotID]
	if !ok {
		if d := ss.departed(spotID); d != nil {
			c := *d
			return &c, false, nil
		}
		return nil, false, nil
	}
	if err := ss.markExit(ctx, s, at); err != nil {
		return nil, false, err
	}
	c := *s
	return &c, true, nil
}

// FreezeExit freezes the exit time of the plate session to the current
// time, unless it is frozen already, and returns the session. It is
// used for operator-initiated exits which bypass the exit detection.
func (ss *UseCase) FreezeExit(
	ctx context.Context, plate string,
) (*model.Session, error) {
	s, err := ss.lookup(plate)
	if err != nil {
		return nil, err
	}
	if !s.ExitTime.Valid {
		if err := ss.markExit(ctx, s, ss.now()); err != nil {
			return nil, err
		}
	}
	c := *s
	return &c, nil
}

func (ss *UseCase) markExit(
	ctx context.Context, s *model.Session, at time.Time,
) error {
	var stored *model.Session
	err := ss.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		var err error
		stored, err = ss.sessionsrp.Conn(c).MarkExit(ctx, s.Plate, at)
		return err
	})
	if err != nil {
		return fmt.Errorf("persisting exit time: %w", err)
	}
	// the repository keeps an exit time which was set before
	s.MarkExit(stored.ExitTime.ValueOrZero())
	ss.release(s)
	log.Info(
		ctx, "session exit is frozen",
		log.Plate(s.Plate),
		log.Spot(s.SpotID),
		log.Time("exit", s.ExitTime.Time),
	)
	return nil
}

// Quote computes a live fee quote for the plate session. It uses the
// frozen exit time if it is set and the current time otherwise.
// The session is not modified.
func (ss *UseCase) Quote(plate string) (model.Quote, error) {
	s, err := ss.lookup(plate)
	if err != nil {
		return model.Quote{}, err
	}
	return s.Quote(ss.now()), nil
}

// Close confirms the payment of the plate session. Its exit time is
// frozen to the current time if it was not set before. The session is
// removed from the sessions repository and its record, charging the
// fee of the frozen entry and exit times with the captured rates, is
// appended to the history in one transaction. The session leaves the
// cache only after a successful commit.
func (ss *UseCase) Close(
	ctx context.Context, plate string,
) (*model.HistoryRecord, error) {
	s, err := ss.lookup(plate)
	if err != nil {
		return nil, err
	}
	now := ss.now()
	closing := *s
	closing.MarkExit(now)
	rec := closing.Close(now)
	err = ss.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			if _, err := ss.sessionsrp.Tx(tx).Delete(
				ctx, s.Plate,
			); err != nil {
				return fmt.Errorf("deleting session: %w", err)
			}
			if err := ss.historyrp.Tx(tx).Append(ctx, &rec); err != nil {
				return fmt.Errorf("archiving session: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	delete(ss.byPlate, s.Plate)
	ss.release(s)
	log.Info(
		ctx, "session is closed",
		log.Plate(rec.Plate),
		log.Spot(rec.SpotID),
		slog.Float64("fee", rec.Fee),
	)
	return &rec, nil
}

// release removes s from the spot index, unless another session has
// taken its spot already.
func (ss *UseCase) release(s *model.Session) {
	if ss.bySpot[s.SpotID] == s {
		delete(ss.bySpot, s.SpotID)
	}
}

func (ss *UseCase) lookup(plate string) (*model.Session, error) {
	p, err := model.ParsePlate(plate)
	if err != nil {
		return nil, cerr.BadRequest(err)
	}
	s, ok := ss.byPlate[p]
	if !ok {
		return nil, cerr.NotFound(fmt.Errorf(
			"plate %s has no open session", p,
		))
	}
	return s, nil
}
