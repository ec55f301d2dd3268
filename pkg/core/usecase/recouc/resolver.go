// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package recouc

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
	"github.com/momeni/parkade/pkg/core/usecase/queueuc"
	"github.com/momeni/parkade/pkg/core/usecase/sessionuc"
)

// Outcome specifies how a spot occupation was resolved.
type Outcome int

// Valid values for the Outcome enum.
const (
	OutcomeIgnored   Outcome = iota // re-delivered or already resolved
	OutcomeMatched                  // a session was created
	OutcomeAmbiguous                // an operator must choose the entry
	OutcomeAnomaly                  // the queue was empty
)

// Resolution is the result of resolving one spot occupation. Only the
// field which corresponds to the Outcome is set.
type Resolution struct {
	Outcome Outcome
	Session *model.Session
	Prompt  *model.AssignmentPrompt
	Anomaly *model.Anomaly
}

// TariffSource provides the tariff which must be captured by the new
// sessions.
type TariffSource interface {
	Tariff() model.Tariff
}

type matchKey struct {
	spotID     int
	detectedAt int64 // unix nanoseconds
}

func newMatchKey(spotID int, detectedAt time.Time) matchKey {
	return matchKey{spotID: spotID, detectedAt: detectedAt.UnixNano()}
}

// Resolver matches the vehicles which occupy a spot with the entries
// of the queue. Each successful match is recorded by its spot and
// detection time, so a re-delivered occupation never creates a second
// session. Match records are pruned after the retention duration.
type Resolver struct {
	queue    *queueuc.UseCase
	sessions *sessionuc.UseCase
	tariffs  TariffSource
	now      func() time.Time

	retention time.Duration
	matched   map[matchKey]time.Time
	prompts   map[int]model.AssignmentPrompt
	flagged   map[int]bool // spots with a reported anomaly
}

// NewResolver instantiates a Resolver.
func NewResolver(
	q *queueuc.UseCase,
	s *sessionuc.UseCase,
	t TariffSource,
	now func() time.Time,
	retention time.Duration,
) *Resolver {
	return &Resolver{
		queue:     q,
		sessions:  s,
		tariffs:   t,
		now:       now,
		retention: retention,
		matched:   make(map[matchKey]time.Time),
		prompts:   make(map[int]model.AssignmentPrompt),
		flagged:   make(map[int]bool),
	}
}

// Resolve handles the occupation of spotID which was detected at ts.
// A single queued entry is matched automatically, two or more entries
// raise an assignment prompt, and an empty queue is an anomaly. The
// occupation is ignored if it was matched before, the spot has an
// Active session (i.e., the same vehicle is reported again), or the
// same condition was reported for the spot already. A session which
// is ExitPending does not hold its spot anymore. A NotFound error
// means the sole entry was claimed by another party and a Conflict
// error means the new session collided with an open session.
func (r *Resolver) Resolve(
	ctx context.Context, spotID int, ts time.Time,
) (Resolution, error) {
	var res Resolution
	if _, ok := r.matched[newMatchKey(spotID, ts)]; ok {
		return res, nil
	}
	if s, ok := r.sessions.BySpot(spotID); ok {
		log.Debug(
			ctx, "spot is held by an active session",
			log.Spot(spotID),
			log.Plate(s.Plate),
		)
		return res, nil
	}
	entries := r.queue.Entries()
	switch len(entries) {
	case 0:
		if r.flagged[spotID] {
			return res, nil
		}
		r.flagged[spotID] = true
		res.Outcome = OutcomeAnomaly
		res.Anomaly = &model.Anomaly{
			Kind:   model.AnomalyUnqueuedVehicle,
			SpotID: spotID,
			At:     ts,
			Detail: "vehicle parked without passing the entry queue",
		}
		return res, nil
	case 1:
		s, err := r.claim(ctx, entries[0].ID, spotID, ts)
		if err != nil {
			return res, err
		}
		res.Outcome = OutcomeMatched
		res.Session = s
		return res, nil
	default:
		if _, ok := r.prompts[spotID]; ok {
			return res, nil
		}
		p := model.AssignmentPrompt{
			SpotID:     spotID,
			DetectedAt: ts,
			Candidates: entries,
		}
		r.prompts[spotID] = p
		log.Info(
			ctx, "spot occupation is ambiguous",
			log.Spot(spotID),
			slog.Int("candidates", len(entries)),
		)
		res.Outcome = OutcomeAmbiguous
		res.Prompt = &p
		return res, nil
	}
}

// ResolveAmbiguous matches the entryID queued entry with spotID as
// chosen by an operator. A zero ts is replaced by the detection time of
// the pending prompt of spotID, or the current time if there is none.
// Operators may also use it to recover from an unqueued vehicle anomaly
// after enqueuing its plate. A Conflict error is returned if the spot
// has an Active session or the occupation was matched before.
func (r *Resolver) ResolveAmbiguous(
	ctx context.Context, entryID uuid.UUID, spotID int, ts time.Time,
) (*model.Session, error) {
	if ts.IsZero() {
		if p, ok := r.prompts[spotID]; ok {
			ts = p.DetectedAt
		} else {
			ts = r.now()
		}
	}
	if _, ok := r.matched[newMatchKey(spotID, ts)]; ok {
		return nil, cerr.Conflict(fmt.Errorf(
			"occupation of spot %d is matched already", spotID,
		))
	}
	if s, ok := r.sessions.BySpot(spotID); ok {
		return nil, cerr.Conflict(fmt.Errorf(
			"spot %d is occupied by %s", spotID, s.Plate,
		))
	}
	return r.claim(ctx, entryID, spotID, ts)
}

func (r *Resolver) claim(
	ctx context.Context, entryID uuid.UUID, spotID int, ts time.Time,
) (*model.Session, error) {
	t := r.tariffs.Tariff()
	var s *model.Session
	_, err := r.queue.Claim(
		ctx, entryID, spotID, ts,
		func(ctx context.Context, tx repo.Tx, e *model.PendingEntry) error {
			var err error
			s, err = r.sessions.Create(ctx, tx, e.Plate, spotID, ts, t)
			return err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("claiming entry %s: %w", entryID, err)
	}
	r.sessions.Track(ctx, s)
	r.matched[newMatchKey(spotID, ts)] = r.now()
	r.Clear(spotID)
	r.prune()
	c := *s
	return &c, nil
}

// Clear forgets the pending prompt and the reported anomaly of spotID,
// e.g., because its vehicle has left.
func (r *Resolver) Clear(spotID int) {
	delete(r.prompts, spotID)
	delete(r.flagged, spotID)
}

// Prompts returns the pending assignment prompts, sorted by spot id.
// The candidates which are no longer queued are omitted.
func (r *Resolver) Prompts() []model.AssignmentPrompt {
	ps := make([]model.AssignmentPrompt, 0, len(r.prompts))
	for _, p := range r.prompts {
		var cs []model.PendingEntry
		for _, e := range p.Candidates {
			if _, ok := r.queue.Lookup(e.ID); ok {
				cs = append(cs, e)
			}
		}
		p.Candidates = cs
		ps = append(ps, p)
	}
	slices.SortFunc(ps, func(a, b model.AssignmentPrompt) int {
		return a.SpotID - b.SpotID
	})
	return ps
}

func (r *Resolver) prune() {
	deadline := r.now().Add(-r.retention)
	for k, at := range r.matched {
		if at.Before(deadline) {
			delete(r.matched, k)
		}
	}
}
