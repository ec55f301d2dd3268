// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package recouc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
)

// handle routes one physical event. Duplicates and anomalies are not
// errors. A returned error means the event had no effect and it can
// be delivered again.
func (e *Engine) handle(ctx context.Context, ev *model.Event) error {
	if err := ev.Kind.Validate(); err != nil {
		return cerr.BadRequest(err)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now()
	}
	if ev.Kind.NeedsSpot() {
		if _, ok := e.spots[ev.SpotID]; !ok {
			e.report(ctx, model.Anomaly{
				Kind:   model.AnomalyUnknownSpot,
				SpotID: ev.SpotID,
				At:     ev.Timestamp,
				Detail: fmt.Sprintf("%s event of an unknown spot", ev.Kind),
			})
			return nil
		}
	}
	switch ev.Kind {
	case model.EventKindSpotReading:
		return unavailable(e.onReading(ctx, ev))
	case model.EventKindVehicleParked:
		return unavailable(e.onParked(ctx, ev))
	case model.EventKindSpotFreed:
		return unavailable(e.onFreed(ctx, ev))
	case model.EventKindEntryDetected:
		e.notify(ctx, model.NotifyEntryDetected, nil)
	case model.EventKindExitDetected:
		e.notify(ctx, model.NotifyExitDetected, nil)
	case model.EventKindEntryDoor:
		e.entryOpen = ev.Open
		e.notify(ctx, model.NotifyFacilityChanged, e.facility())
	case model.EventKindExitDoor:
		e.exitOpen = ev.Open
		e.notify(ctx, model.NotifyFacilityChanged, e.facility())
	case model.EventKindMode:
		e.automatic = ev.Automatic
		e.notify(ctx, model.NotifyFacilityChanged, e.facility())
	}
	return nil
}

// onReading mirrors a spot occupancy reading. Only the free to occupied
// edge triggers the resolution. The stored spot state is not changed
// if the resolution fails, so a re-delivered reading is an edge again.
func (e *Engine) onReading(ctx context.Context, ev *model.Event) error {
	key := readingKey(ev.SpotID)
	if e.dedup.Seen(key, ev.Timestamp) {
		log.Debug(ctx, "stale spot reading", log.Spot(ev.SpotID))
		return nil
	}
	spot := e.spots[ev.SpotID]
	switch {
	case ev.Occupied && !spot.Occupied:
		if err := e.resolve(ctx, ev.SpotID, ev.Timestamp); err != nil {
			return err
		}
	case !ev.Occupied && spot.Occupied:
		e.resolver.Clear(ev.SpotID)
	}
	e.dedup.Record(key, ev.Timestamp)
	changed := spot.Occupied != ev.Occupied
	spot.Occupied = ev.Occupied
	spot.Distance = ev.Distance
	spot.UpdatedAt = ev.Timestamp
	if changed {
		e.notify(ctx, model.NotifyFacilityChanged, e.facility())
	}
	return nil
}

func (e *Engine) onParked(ctx context.Context, ev *model.Event) error {
	key := parkedKey(ev.SpotID)
	if e.dedup.Seen(key, ev.Timestamp) {
		log.Debug(
			ctx, "duplicate vehicle-parked event", log.Spot(ev.SpotID),
		)
		return nil
	}
	if err := e.resolve(ctx, ev.SpotID, ev.Timestamp); err != nil {
		return err
	}
	e.dedup.Record(key, ev.Timestamp)
	spot := e.spots[ev.SpotID]
	if !spot.Occupied {
		spot.Occupied = true
		spot.UpdatedAt = ev.Timestamp
		e.notify(ctx, model.NotifyFacilityChanged, e.facility())
	}
	return nil
}

// resolve runs the Resolver and publishes its outcome. A lost claim
// race (NotFound) is logged since the other party's success is
// authoritative. A colliding session (Conflict) leaves the vehicle
// without a session, so it is reported as an anomaly.
func (e *Engine) resolve(
	ctx context.Context, spotID int, ts time.Time,
) error {
	res, err := e.resolver.Resolve(ctx, spotID, ts)
	switch {
	case cerr.IsNotFound(err):
		log.Warn(
			ctx, "assignment is aborted",
			log.Spot(spotID),
			log.Err("err", err),
		)
		return nil
	case cerr.Is(err, http.StatusConflict):
		e.report(ctx, model.Anomaly{
			Kind:   model.AnomalyAssignmentConflict,
			SpotID: spotID,
			At:     ts,
			Detail: err.Error(),
		})
		return nil
	case err != nil:
		return err
	}
	switch res.Outcome {
	case OutcomeMatched:
		e.notify(ctx, model.NotifySessionOpened, res.Session)
		e.notify(ctx, model.NotifyQueueChanged, e.queue.Entries())
	case OutcomeAmbiguous:
		e.notify(ctx, model.NotifyAssignmentRequired, res.Prompt)
	case OutcomeAnomaly:
		e.report(ctx, *res.Anomaly)
	}
	return nil
}

// onFreed freezes the exit time of the session which occupies the
// freed spot, so the spot may be taken by the next vehicle. Signals
// within the minimum dwell after the session entry are discarded as
// sensor noise. A repeated signal for a spot whose session is pending
// its payment already changes nothing.
func (e *Engine) onFreed(ctx context.Context, ev *model.Event) error {
	key := freedKey(ev.SpotID)
	if e.dedup.Seen(key, ev.Timestamp) {
		log.Debug(ctx, "duplicate spot-freed event", log.Spot(ev.SpotID))
		return nil
	}
	spot := e.spots[ev.SpotID]
	s, ok := e.sessions.Occupant(ev.SpotID)
	switch {
	case !ok:
		e.report(ctx, model.Anomaly{
			Kind:   model.AnomalyUnknownDeparture,
			SpotID: ev.SpotID,
			At:     ev.Timestamp,
			Detail: "spot was freed without an open session",
		})
	case e.dedup.TooSoon(ev.Timestamp, s.EntryTime):
		e.dedup.Record(key, ev.Timestamp)
		log.Debug(
			ctx, "exit signal within the minimum dwell is discarded",
			log.Plate(s.Plate),
			log.Spot(ev.SpotID),
		)
		return nil
	default:
		ms, changed, err := e.sessions.MarkExitDetected(
			ctx, ev.SpotID, ev.Timestamp,
		)
		if err != nil {
			return err
		}
		if changed {
			e.notify(ctx, model.NotifyExitMarked, ms)
		}
	}
	e.dedup.Record(key, ev.Timestamp)
	e.resolver.Clear(ev.SpotID)
	if spot.Occupied {
		spot.Occupied = false
		spot.UpdatedAt = ev.Timestamp
		e.notify(ctx, model.NotifyFacilityChanged, e.facility())
	}
	return nil
}
