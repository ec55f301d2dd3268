// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package recouc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/model"
)

// Enqueue registers the plate of a vehicle which was confirmed at the
// entry barrier. A Conflict error is returned if the plate is queued
// or parked already. If openBarrier is true, the entry barrier is
// opened after the entry is persisted.
func (e *Engine) Enqueue(
	ctx context.Context, plate string, openBarrier bool,
) (pe *model.PendingEntry, err error) {
	err = e.do(ctx, func(ctx context.Context) error {
		p, err := model.ParsePlate(plate)
		if err != nil {
			return cerr.BadRequest(err)
		}
		if e.queue.Contains(p) {
			return cerr.Conflict(fmt.Errorf("plate %s is queued", p))
		}
		if _, ok := e.sessions.ByPlate(p); ok {
			return cerr.Conflict(fmt.Errorf("plate %s is parked", p))
		}
		pe, err = e.queue.Enqueue(ctx, string(p))
		if err != nil {
			return unavailable(err)
		}
		e.notify(ctx, model.NotifyQueueChanged, e.queue.Entries())
		if openBarrier {
			e.send(ctx, model.CommandOpenEntry)
		}
		return nil
	})
	if err != nil {
		pe = nil
	}
	return
}

// RemoveEntry discards the id entry from the queue, e.g., because it
// was registered by mistake.
func (e *Engine) RemoveEntry(
	ctx context.Context, id uuid.UUID,
) (pe *model.PendingEntry, err error) {
	err = e.do(ctx, func(ctx context.Context) error {
		pe, err = e.queue.Remove(ctx, id)
		if err != nil {
			return unavailable(err)
		}
		e.notify(ctx, model.NotifyQueueChanged, e.queue.Entries())
		return nil
	})
	if err != nil {
		pe = nil
	}
	return
}

// Queue returns the pending entries in their FIFO order.
func (e *Engine) Queue(ctx context.Context) (es []model.PendingEntry, err error) {
	err = e.do(ctx, func(context.Context) error {
		es = e.queue.Entries()
		return nil
	})
	return
}

// Prompts returns the assignment prompts which wait for an operator.
func (e *Engine) Prompts(
	ctx context.Context,
) (ps []model.AssignmentPrompt, err error) {
	err = e.do(ctx, func(context.Context) error {
		ps = e.resolver.Prompts()
		return nil
	})
	return
}

// ResolveAmbiguous creates the session of the entryID entry in spotID
// as chosen by an operator. The detectedAt may be zero in order to use
// the detection time of the spot assignment prompt.
func (e *Engine) ResolveAmbiguous(
	ctx context.Context, entryID uuid.UUID, spotID int, detectedAt time.Time,
) (s *model.Session, err error) {
	err = e.do(ctx, func(ctx context.Context) error {
		if _, ok := e.spots[spotID]; !ok {
			return cerr.NotFound(fmt.Errorf("unknown spot %d", spotID))
		}
		s, err = e.resolver.ResolveAmbiguous(ctx, entryID, spotID, detectedAt)
		if err != nil {
			return unavailable(err)
		}
		e.notify(ctx, model.NotifySessionOpened, s)
		e.notify(ctx, model.NotifyQueueChanged, e.queue.Entries())
		return nil
	})
	if err != nil {
		s = nil
	}
	return
}

// Sessions returns the active and exit-pending sessions.
func (e *Engine) Sessions(ctx context.Context) (ss []model.Session, err error) {
	err = e.do(ctx, func(context.Context) error {
		ss = e.sessions.List()
		return nil
	})
	return
}

// Quote computes a live fee quote of the plate session without
// changing it.
func (e *Engine) Quote(ctx context.Context, plate string) (q model.Quote, err error) {
	err = e.do(ctx, func(context.Context) error {
		q, err = e.sessions.Quote(plate)
		return err
	})
	return
}

// FreezeExit sets the exit time of the plate session to the current
// time, unless it is set already. It supports the operator-initiated
// exits which are not detected by the spot sensors.
func (e *Engine) FreezeExit(
	ctx context.Context, plate string,
) (s *model.Session, err error) {
	err = e.do(ctx, func(ctx context.Context) error {
		s, err = e.sessions.FreezeExit(ctx, plate)
		if err != nil {
			return unavailable(err)
		}
		e.notify(ctx, model.NotifyExitMarked, s)
		return nil
	})
	if err != nil {
		s = nil
	}
	return
}

// ConfirmPayment closes the plate session, archives it with its final
// fee, and opens the exit barrier. The exit time is set to the current
// time if it was not set before.
func (e *Engine) ConfirmPayment(
	ctx context.Context, plate string,
) (r *model.HistoryRecord, err error) {
	err = e.do(ctx, func(ctx context.Context) error {
		r, err = e.sessions.Close(ctx, plate)
		if err != nil {
			return unavailable(err)
		}
		e.notify(ctx, model.NotifySessionClosed, r)
		e.send(ctx, model.CommandOpenExit)
		return nil
	})
	if err != nil {
		r = nil
	}
	return
}

// Facility returns the mirrored state of spots, barriers, and mode.
func (e *Engine) Facility(ctx context.Context) (f model.Facility, err error) {
	err = e.do(ctx, func(context.Context) error {
		f = e.facility()
		return nil
	})
	return
}

// Anomalies returns the most recent anomalies, oldest first.
func (e *Engine) Anomalies(
	ctx context.Context,
) (as []model.Anomaly, err error) {
	err = e.do(ctx, func(context.Context) error {
		as = slices.Clone(e.anomalies)
		return nil
	})
	return
}

// Command sends cmd to the barrier controller. The mirrored facility
// state changes only when the device reports its new state.
func (e *Engine) Command(ctx context.Context, cmd model.Command) error {
	if err := cmd.Validate(); err != nil {
		return cerr.BadRequest(err)
	}
	if err := e.commander.Command(ctx, cmd); err != nil {
		return cerr.Unavailable(fmt.Errorf("sending %s: %w", cmd, err))
	}
	return nil
}

// ConfigureNetwork pushes the wireless network settings to the barrier
// controller.
func (e *Engine) ConfigureNetwork(
	ctx context.Context, cfg model.NetworkConfig,
) error {
	if cfg.SSID == "" {
		return cerr.BadRequest(errors.New("ssid is required"))
	}
	if err := e.commander.ConfigureNetwork(ctx, cfg); err != nil {
		return cerr.Unavailable(fmt.Errorf("sending network config: %w", err))
	}
	return nil
}
