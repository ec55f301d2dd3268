// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sessionuc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momeni/parkade/internal/test/memdb"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
	"github.com/momeni/parkade/pkg/core/usecase/sessionuc"
	"github.com/stretchr/testify/suite"
)

type SessionUseCaseTestSuite struct {
	suite.Suite

	Ctx   context.Context
	DB    *memdb.DB
	UC    *sessionuc.UseCase
	Now   time.Time
	Entry time.Time
}

func TestSessionUseCaseTestSuite(t *testing.T) {
	suite.Run(t, new(SessionUseCaseTestSuite))
}

func (sts *SessionUseCaseTestSuite) SetupTest() {
	sts.Ctx = context.Background()
	sts.DB = memdb.New()
	sts.Entry = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	sts.Now = sts.Entry
	uc, err := sessionuc.New(
		sts.DB, memdb.NewSessions(sts.DB), memdb.NewHistory(sts.DB),
		sessionuc.WithClock(func() time.Time { return sts.Now }),
	)
	sts.Require().NoError(err)
	sts.Require().NoError(uc.Load(sts.Ctx))
	sts.UC = uc
}

func (sts *SessionUseCaseTestSuite) open(
	plate model.Plate, spot int, t model.Tariff,
) *model.Session {
	var s *model.Session
	err := sts.DB.Conn(sts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			var err error
			s, err = sts.UC.Create(ctx, tx, plate, spot, sts.Entry, t)
			return err
		})
	})
	sts.Require().NoError(err)
	sts.UC.Track(sts.Ctx, s)
	return s
}

func (sts *SessionUseCaseTestSuite) TestCreateRejectsDuplicates() {
	sts.open("ABC123", 1, model.DefaultTariff)
	err := sts.DB.Conn(sts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			_, err := sts.UC.Create(
				ctx, tx, "ABC123", 2, sts.Entry, model.DefaultTariff,
			)
			sts.True(cerr.Is(err, 409), "same plate: %v", err)
			_, err = sts.UC.Create(
				ctx, tx, "XYZ99", 1, sts.Entry, model.DefaultTariff,
			)
			sts.True(cerr.Is(err, 409), "same spot: %v", err)
			return nil
		})
	})
	sts.NoError(err)
	sts.Len(sts.DB.Sessions(), 1)
}

func (sts *SessionUseCaseTestSuite) TestMarkExitDetectedOnlyOnce() {
	sts.open("ABC123", 1, model.DefaultTariff)
	first := sts.Entry.Add(30 * time.Minute)
	s, changed, err := sts.UC.MarkExitDetected(sts.Ctx, 1, first)
	sts.Require().NoError(err)
	sts.True(changed)
	sts.Equal(model.SessionStateExitPending, s.State())
	sts.Equal(first, s.ExitTime.Time)

	s, changed, err = sts.UC.MarkExitDetected(
		sts.Ctx, 1, first.Add(time.Minute),
	)
	sts.Require().NoError(err)
	sts.False(changed)
	sts.Equal(first, s.ExitTime.Time)
	sts.Equal(first, sts.DB.Sessions()[0].ExitTime.Time)
}

func (sts *SessionUseCaseTestSuite) TestMarkExitDetectedWithoutSession() {
	s, changed, err := sts.UC.MarkExitDetected(sts.Ctx, 3, sts.Now)
	sts.NoError(err)
	sts.False(changed)
	sts.Nil(s)
}

func (sts *SessionUseCaseTestSuite) TestQuoteDoesNotMutate() {
	sts.open("ABC123", 1, model.DefaultTariff)
	sts.Now = sts.Entry.Add(90 * time.Minute)
	q, err := sts.UC.Quote("abc-123")
	sts.Require().NoError(err)
	sts.Equal(int64(90), q.ElapsedMinutes)
	sts.InDelta(8.0, q.Fee, 1e-9)
	sts.False(q.Frozen)

	sts.Now = sts.Entry.Add(120 * time.Minute)
	q, err = sts.UC.Quote("ABC123")
	sts.Require().NoError(err)
	sts.InDelta(11.0, q.Fee, 1e-9)
	s, ok := sts.UC.ByPlate("ABC123")
	sts.True(ok)
	sts.Equal(model.SessionStateActive, s.State())

	_, err = sts.UC.Quote("NOPE1")
	sts.True(cerr.IsNotFound(err), "unexpected error: %v", err)
	_, err = sts.UC.Quote("#")
	sts.True(cerr.Is(err, 400), "unexpected error: %v", err)
}

func (sts *SessionUseCaseTestSuite) TestCloseUsesCapturedRates() {
	t1 := model.Tariff{Base: 5, MinutePrice: 0.10}
	sts.open("ABC123", 2, t1)
	_, _, err := sts.UC.MarkExitDetected(
		sts.Ctx, 2, sts.Entry.Add(61*time.Minute),
	)
	sts.Require().NoError(err)
	sts.Now = sts.Entry.Add(3 * time.Hour)

	rec, err := sts.UC.Close(sts.Ctx, "ABC123")
	sts.Require().NoError(err)
	sts.InDelta(5.10, rec.Fee, 1e-9)
	sts.Equal(sts.Entry.Add(61*time.Minute), rec.ExitTime)
	sts.Equal(sts.Now, rec.PaidAt)
	sts.Empty(sts.UC.List())
	sts.Empty(sts.DB.Sessions())
	sts.Len(sts.DB.History(), 1)

	_, err = sts.UC.Close(sts.Ctx, "ABC123")
	sts.True(cerr.IsNotFound(err), "unexpected error: %v", err)
}

func (sts *SessionUseCaseTestSuite) TestCloseFreezesUnsetExit() {
	sts.open("ABC123", 2, model.DefaultTariff)
	sts.Now = sts.Entry.Add(45 * time.Minute)
	rec, err := sts.UC.Close(sts.Ctx, "ABC123")
	sts.Require().NoError(err)
	sts.Equal(sts.Now, rec.ExitTime)
	sts.InDelta(5.0, rec.Fee, 1e-9)
}

func (sts *SessionUseCaseTestSuite) TestFailedArchiveKeepsSession() {
	sts.open("ABC123", 2, model.DefaultTariff)
	sts.DB.FailNext("History.Append", errors.New("disk full"))
	_, err := sts.UC.Close(sts.Ctx, "ABC123")
	sts.True(cerr.Is(err, 503), "unexpected error: %v", err)
	sts.Len(sts.UC.List(), 1)
	sts.Len(sts.DB.Sessions(), 1)
	sts.Empty(sts.DB.History())

	_, err = sts.UC.Close(sts.Ctx, "ABC123")
	sts.NoError(err)
}

func (sts *SessionUseCaseTestSuite) TestFreezeExit() {
	sts.open("ABC123", 2, model.DefaultTariff)
	sts.Now = sts.Entry.Add(10 * time.Minute)
	s, err := sts.UC.FreezeExit(sts.Ctx, "ABC123")
	sts.Require().NoError(err)
	sts.Equal(sts.Now, s.ExitTime.Time)

	frozen := sts.Now
	sts.Now = sts.Entry.Add(20 * time.Minute)
	s, err = sts.UC.FreezeExit(sts.Ctx, "ABC123")
	sts.Require().NoError(err)
	sts.Equal(frozen, s.ExitTime.Time)
}

func (sts *SessionUseCaseTestSuite) TestLoad() {
	sts.open("ABC123", 2, model.DefaultTariff)
	sts.open("XYZ99", 1, model.DefaultTariff)
	uc, err := sessionuc.New(
		sts.DB, memdb.NewSessions(sts.DB), memdb.NewHistory(sts.DB),
	)
	sts.Require().NoError(err)
	sts.Require().NoError(uc.Load(sts.Ctx))
	sts.Len(uc.List(), 2)
	s, ok := uc.BySpot(1)
	sts.True(ok)
	sts.Equal(model.Plate("XYZ99"), s.Plate)
}

func (sts *SessionUseCaseTestSuite) TestExitPendingReleasesSpot() {
	sts.open("ABC123", 1, model.DefaultTariff)
	exit := sts.Entry.Add(30 * time.Minute)
	_, changed, err := sts.UC.MarkExitDetected(sts.Ctx, 1, exit)
	sts.Require().NoError(err)
	sts.True(changed)
	_, ok := sts.UC.BySpot(1)
	sts.False(ok)
	s, ok := sts.UC.Occupant(1)
	sts.Require().True(ok)
	sts.Equal(model.Plate("ABC123"), s.Plate)

	sts.open("XYZ99", 1, model.DefaultTariff)
	s, ok = sts.UC.BySpot(1)
	sts.Require().True(ok)
	sts.Equal(model.Plate("XYZ99"), s.Plate)
	s, ok = sts.UC.Occupant(1)
	sts.Require().True(ok)
	sts.Equal(model.Plate("XYZ99"), s.Plate)

	_, err = sts.UC.Close(sts.Ctx, "ABC123")
	sts.Require().NoError(err)
	s, ok = sts.UC.BySpot(1)
	sts.Require().True(ok, "closing the departed session kept the spot")
	sts.Equal(model.Plate("XYZ99"), s.Plate)

	ms, changed, err := sts.UC.MarkExitDetected(sts.Ctx, 1, exit.Add(time.Hour))
	sts.Require().NoError(err)
	sts.True(changed)
	sts.Equal(model.Plate("XYZ99"), ms.Plate)
}

func (sts *SessionUseCaseTestSuite) TestLoadSkipsDepartedSpots() {
	sts.open("ABC123", 2, model.DefaultTariff)
	_, _, err := sts.UC.MarkExitDetected(
		sts.Ctx, 2, sts.Entry.Add(time.Hour),
	)
	sts.Require().NoError(err)
	uc, err := sessionuc.New(
		sts.DB, memdb.NewSessions(sts.DB), memdb.NewHistory(sts.DB),
	)
	sts.Require().NoError(err)
	sts.Require().NoError(uc.Load(sts.Ctx))
	sts.Len(uc.List(), 1)
	_, ok := uc.BySpot(2)
	sts.False(ok)
	_, ok = uc.ByPlate("ABC123")
	sts.True(ok)
}
