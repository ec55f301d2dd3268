// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/google/uuid"
	"github.com/momeni/parkade/internal/test/dbcontainer"
	"github.com/momeni/parkade/pkg/adapter/db/postgres"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/historyrp"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/queuerp"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/sessionsrp"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/tariffsrp"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
	"github.com/momeni/parkade/pkg/core/usecase/recouc"
	"github.com/stretchr/testify/suite"
)

type ReposTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pg   *sqltestutil.PostgresContainer
	Pool *postgres.Pool
	T0   time.Time

	queue    *queuerp.Repo
	sessions *sessionsrp.Repo
	tariffs  *tariffsrp.Repo
	history  *historyrp.Repo
}

func TestReposTestSuite(t *testing.T) {
	ctx := context.Background()
	pg, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &ReposTestSuite{
		Ctx:      ctx,
		Pg:       pg,
		Pool:     pool,
		T0:       time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		queue:    queuerp.New(),
		sessions: sessionsrp.New(),
		tariffs:  tariffsrp.New(),
		history:  historyrp.New(),
	})
}

// SetupTest recreates all tables, so each test starts empty.
func (rts *ReposTestSuite) SetupTest() {
	rts.tx(func(ctx context.Context, tx repo.Tx) {
		q := schemarp.New().Tx(tx)
		rts.Require().NoError(q.DropIfExists(ctx))
		rts.Require().NoError(q.Create(ctx))
	})
}

func (rts *ReposTestSuite) tx(f func(ctx context.Context, tx repo.Tx)) {
	err := rts.Pool.Conn(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			f(ctx, tx)
			return nil
		})
	})
	rts.Require().NoError(err)
}

func (rts *ReposTestSuite) TestQueue() {
	rts.tx(func(ctx context.Context, tx repo.Tx) {
		q := rts.queue.Tx(tx)
		a := &model.PendingEntry{
			ID: uuid.New(), Plate: "ABC123", DetectedAt: rts.T0,
		}
		b := &model.PendingEntry{
			ID: uuid.New(), Plate: "XYZ99", DetectedAt: rts.T0.Add(time.Second),
		}
		rts.Require().NoError(q.Create(ctx, b))
		rts.Require().NoError(q.Create(ctx, a))

		pes, err := q.Pending(ctx)
		rts.Require().NoError(err)
		rts.Require().Len(pes, 2)
		rts.Equal(a.ID, pes[0].ID)
		rts.Equal(b.ID, pes[1].ID)

		e, err := q.MarkAssigned(ctx, a.ID, 2, rts.T0.Add(time.Minute))
		rts.Require().NoError(err)
		rts.Equal(a.Plate, e.Plate)
		_, err = q.MarkAssigned(ctx, a.ID, 3, rts.T0.Add(time.Minute))
		rts.True(cerr.IsNotFound(err), "unexpected error: %v", err)
		rts.True(cerr.IsNotFound(q.Delete(ctx, a.ID)))

		rts.Require().NoError(q.Delete(ctx, b.ID))
		rts.True(cerr.IsNotFound(q.Delete(ctx, b.ID)))
		pes, err = q.Pending(ctx)
		rts.Require().NoError(err)
		rts.Empty(pes)
	})
}

func (rts *ReposTestSuite) TestSessions() {
	rts.tx(func(ctx context.Context, tx repo.Tx) {
		q := rts.sessions.Tx(tx)
		s := model.NewSession("ABC123", 1, rts.T0, model.DefaultTariff)
		rts.Require().NoError(q.Create(ctx, s))

		first := rts.T0.Add(time.Hour)
		ms, err := q.MarkExit(ctx, "ABC123", first)
		rts.Require().NoError(err)
		rts.True(first.Equal(ms.ExitTime.Time))
		ms, err = q.MarkExit(ctx, "ABC123", first.Add(time.Hour))
		rts.Require().NoError(err)
		rts.True(first.Equal(ms.ExitTime.Time), "exit time is overwritten")
		_, err = q.MarkExit(ctx, "NOPE1", first)
		rts.True(cerr.IsNotFound(err), "unexpected error: %v", err)

		ss, err := q.Active(ctx)
		rts.Require().NoError(err)
		rts.Require().Len(ss, 1)
		rts.Equal(5.0, ss[0].RateBase)
		rts.Equal(0.1, ss[0].RateMinute)

		d, err := q.Delete(ctx, "ABC123")
		rts.Require().NoError(err)
		rts.Equal(1, d.SpotID)
		_, err = q.Delete(ctx, "ABC123")
		rts.True(cerr.IsNotFound(err), "unexpected error: %v", err)
	})
}

func (rts *ReposTestSuite) TestDuplicateSessionIsConflict() {
	rts.tx(func(ctx context.Context, tx repo.Tx) {
		s := model.NewSession("ABC123", 1, rts.T0, model.DefaultTariff)
		rts.Require().NoError(rts.sessions.Tx(tx).Create(ctx, s))
	})
	err := rts.Pool.Conn(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		s := model.NewSession("XYZ99", 1, rts.T0, model.DefaultTariff)
		return rts.sessions.Conn(c).Create(ctx, s)
	})
	rts.True(cerr.Is(err, http.StatusConflict), "unexpected error: %v", err)
}

func (rts *ReposTestSuite) TestExitPendingSessionReleasesSpot() {
	rts.tx(func(ctx context.Context, tx repo.Tx) {
		q := rts.sessions.Tx(tx)
		s := model.NewSession("ABC123", 1, rts.T0, model.DefaultTariff)
		rts.Require().NoError(q.Create(ctx, s))
		_, err := q.MarkExit(ctx, "ABC123", rts.T0.Add(10*time.Minute))
		rts.Require().NoError(err)
		s2 := model.NewSession(
			"XYZ99", 1, rts.T0.Add(11*time.Minute), model.DefaultTariff,
		)
		rts.Require().NoError(q.Create(ctx, s2))
		ss, err := q.Active(ctx)
		rts.Require().NoError(err)
		rts.Len(ss, 2)
	})
	err := rts.Pool.Conn(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		s := model.NewSession(
			"DEF456", 1, rts.T0.Add(12*time.Minute), model.DefaultTariff,
		)
		return rts.sessions.Conn(c).Create(ctx, s)
	})
	rts.True(cerr.Is(err, http.StatusConflict), "unexpected error: %v", err)
}

func (rts *ReposTestSuite) TestTariffs() {
	rts.tx(func(ctx context.Context, tx repo.Tx) {
		q := rts.tariffs.Tx(tx)
		_, err := q.Current(ctx)
		rts.True(cerr.IsNotFound(err), "unexpected error: %v", err)
		rts.Require().NoError(q.Save(ctx, model.DefaultTariff))
		t2 := model.Tariff{Base: 7.5, MinutePrice: 0.25}
		rts.Require().NoError(q.Save(ctx, t2))
		cur, err := q.Current(ctx)
		rts.Require().NoError(err)
		rts.Equal(t2, *cur)
	})
}

func (rts *ReposTestSuite) TestHistory() {
	rts.tx(func(ctx context.Context, tx repo.Tx) {
		q := rts.history.Tx(tx)
		for i := 0; i < 3; i++ {
			s := model.NewSession("ABC123", 1, rts.T0, model.DefaultTariff)
			paid := rts.T0.Add(time.Duration(i+1) * time.Hour)
			s.MarkExit(paid)
			r := s.Close(paid)
			rts.Require().NoError(q.Append(ctx, &r))
		}
		rs, err := q.Recent(ctx, time.Time{}, 2)
		rts.Require().NoError(err)
		rts.Require().Len(rs, 2)
		rts.True(rts.T0.Add(3 * time.Hour).Equal(rs[0].PaidAt))
		rs, err = q.Recent(ctx, rts.T0.Add(2*time.Hour), 0)
		rts.Require().NoError(err)
		rts.Len(rs, 2)
	})
}

type fixedTariff model.Tariff

func (ft fixedTariff) Tariff() model.Tariff {
	return model.Tariff(ft)
}

func (rts *ReposTestSuite) TestEngineEndToEnd() {
	now := rts.T0
	e, err := recouc.New(
		rts.Pool, rts.queue, rts.sessions, rts.history,
		fixedTariff(model.DefaultTariff),
		recouc.WithClock(func() time.Time { return now }),
	)
	rts.Require().NoError(err)
	ctx, cancel := context.WithCancel(rts.Ctx)
	runErr := make(chan error, 1)
	go func() {
		runErr <- e.Run(ctx)
	}()
	defer func() {
		cancel()
		rts.NoError(<-runErr)
	}()

	_, err = e.Enqueue(rts.Ctx, "XYZ99", false)
	rts.Require().NoError(err)
	rts.Require().NoError(e.Submit(rts.Ctx, model.Event{
		Kind:      model.EventKindVehicleParked,
		SpotID:    2,
		Timestamp: rts.T0.Add(100 * time.Millisecond),
	}))
	rts.Require().NoError(e.Submit(rts.Ctx, model.Event{
		Kind:      model.EventKindSpotFreed,
		SpotID:    2,
		Timestamp: rts.T0.Add(3600*time.Second + 100*time.Millisecond),
	}))
	r, err := e.ConfirmPayment(rts.Ctx, "XYZ99")
	rts.Require().NoError(err)
	rts.Equal(5.0, r.Fee)

	rts.tx(func(ctx context.Context, tx repo.Tx) {
		ss, err := rts.sessions.Tx(tx).Active(ctx)
		rts.Require().NoError(err)
		rts.Empty(ss)
		rs, err := rts.history.Tx(tx).Recent(ctx, time.Time{}, 0)
		rts.Require().NoError(err)
		rts.Require().Len(rs, 1)
		rts.Equal(5.0, rs[0].Fee)
	})
}
