// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package recouc_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/parkade/internal/test/memdb"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
	"github.com/momeni/parkade/pkg/core/usecase/recouc"
	"github.com/stretchr/testify/suite"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type tariffs struct {
	mu sync.Mutex
	t  model.Tariff
}

func (ts *tariffs) Tariff() model.Tariff {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.t
}

func (ts *tariffs) Set(t model.Tariff) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.t = t
}

type recorder struct {
	mu       sync.Mutex
	kinds    []model.NotificationKind
	commands []model.Command
	networks []model.NetworkConfig
}

func (r *recorder) Notify(_ context.Context, n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, n.Kind)
}

func (r *recorder) Command(_ context.Context, cmd model.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	return nil
}

func (r *recorder) ConfigureNetwork(
	_ context.Context, cfg model.NetworkConfig,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.networks = append(r.networks, cfg)
	return nil
}

func (r *recorder) Kinds() []model.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.NotificationKind(nil), r.kinds...)
}

func (r *recorder) Commands() []model.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Command(nil), r.commands...)
}

type EngineTestSuite struct {
	suite.Suite

	Ctx     context.Context
	DB      *memdb.DB
	Clock   *clock
	Tariffs *tariffs
	Rec     *recorder
	Engine  *recouc.Engine
	T0      time.Time

	cancel context.CancelFunc
	runErr chan error
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (ets *EngineTestSuite) SetupTest() {
	ets.T0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	ets.DB = memdb.New()
	ets.Clock = &clock{now: ets.T0}
	ets.Tariffs = &tariffs{t: model.DefaultTariff}
	ets.Rec = &recorder{}
	ets.start()
}

func (ets *EngineTestSuite) start() {
	e, err := recouc.New(
		ets.DB,
		memdb.NewQueue(ets.DB),
		memdb.NewSessions(ets.DB),
		memdb.NewHistory(ets.DB),
		ets.Tariffs,
		recouc.WithClock(ets.Clock.Now),
		recouc.WithNotifier(ets.Rec),
		recouc.WithCommander(ets.Rec),
		recouc.WithSpots(3),
	)
	ets.Require().NoError(err)
	ets.Engine = e
	var ctx context.Context
	ctx, ets.cancel = context.WithCancel(context.Background())
	ets.Ctx = context.Background()
	ets.runErr = make(chan error, 1)
	go func() {
		ets.runErr <- e.Run(ctx)
	}()
}

func (ets *EngineTestSuite) stop() {
	ets.cancel()
	ets.NoError(<-ets.runErr)
}

func (ets *EngineTestSuite) TearDownTest() {
	ets.stop()
}

func (ets *EngineTestSuite) enqueue(plate string) *model.PendingEntry {
	pe, err := ets.Engine.Enqueue(ets.Ctx, plate, false)
	ets.Require().NoError(err)
	return pe
}

func (ets *EngineTestSuite) parked(spot int, at time.Time) error {
	return ets.Engine.Submit(ets.Ctx, model.Event{
		Kind:      model.EventKindVehicleParked,
		SpotID:    spot,
		Timestamp: at,
	})
}

func (ets *EngineTestSuite) freed(spot int, at time.Time) error {
	return ets.Engine.Submit(ets.Ctx, model.Event{
		Kind:      model.EventKindSpotFreed,
		SpotID:    spot,
		Timestamp: at,
	})
}

func (ets *EngineTestSuite) sessions() []model.Session {
	ss, err := ets.Engine.Sessions(ets.Ctx)
	ets.Require().NoError(err)
	return ss
}

func (ets *EngineTestSuite) queue() []model.PendingEntry {
	es, err := ets.Engine.Queue(ets.Ctx)
	ets.Require().NoError(err)
	return es
}

func (ets *EngineTestSuite) TestSingleCandidateIsMatched() {
	ets.enqueue("ABC123")
	ets.Require().NoError(ets.parked(1, ets.T0.Add(time.Second)))

	ss := ets.sessions()
	ets.Require().Len(ss, 1)
	ets.Equal(model.Plate("ABC123"), ss[0].Plate)
	ets.Equal(1, ss[0].SpotID)
	ets.Equal(ets.T0.Add(time.Second), ss[0].EntryTime)
	ets.Empty(ets.queue())
	ets.Zero(ets.DB.PendingCount())
	ets.Contains(ets.Rec.Kinds(), model.NotifySessionOpened)
}

func (ets *EngineTestSuite) TestRedeliveredOccupationIsIdempotent() {
	ets.enqueue("ABC123")
	ets.enqueue("XYZ99")
	at := ets.T0.Add(time.Second)
	ets.Require().NoError(ets.parked(2, at))
	prompts, err := ets.Engine.Prompts(ets.Ctx)
	ets.Require().NoError(err)
	ets.Require().Len(prompts, 1)
	_, err = ets.Engine.ResolveAmbiguous(
		ets.Ctx, prompts[0].Candidates[0].ID, 2, time.Time{},
	)
	ets.Require().NoError(err)

	ets.Require().NoError(ets.parked(2, at))
	ets.Require().NoError(ets.parked(2, at))
	ets.Len(ets.sessions(), 1)
	ets.Len(ets.queue(), 1)
}

func (ets *EngineTestSuite) TestDuplicateParkedEventCreatesOneSession() {
	ets.enqueue("ABC123")
	ets.enqueue("XYZ99")
	_, err := ets.Engine.RemoveEntry(ets.Ctx, ets.queue()[1].ID)
	ets.Require().NoError(err)
	at := ets.T0.Add(time.Second)
	ets.Require().NoError(ets.parked(2, at))
	ets.enqueue("XYZ99")
	ets.Require().NoError(ets.parked(2, at))

	ss := ets.sessions()
	ets.Require().Len(ss, 1)
	ets.Equal(model.Plate("ABC123"), ss[0].Plate)
	ets.Len(ets.queue(), 1)
}

func (ets *EngineTestSuite) TestAmbiguousOccupationNeedsOperator() {
	a := ets.enqueue("ABC123")
	b := ets.enqueue("XYZ99")
	at := ets.T0.Add(time.Second)
	ets.Require().NoError(ets.parked(1, at))
	ets.Empty(ets.sessions())
	ets.Contains(ets.Rec.Kinds(), model.NotifyAssignmentRequired)

	prompts, err := ets.Engine.Prompts(ets.Ctx)
	ets.Require().NoError(err)
	ets.Require().Len(prompts, 1)
	ets.Equal(1, prompts[0].SpotID)
	ets.Len(prompts[0].Candidates, 2)

	s, err := ets.Engine.ResolveAmbiguous(ets.Ctx, b.ID, 1, time.Time{})
	ets.Require().NoError(err)
	ets.Equal(b.Plate, s.Plate)
	ets.Equal(at, s.EntryTime)

	ss := ets.sessions()
	ets.Require().Len(ss, 1)
	ets.Equal(b.Plate, ss[0].Plate)
	q := ets.queue()
	ets.Require().Len(q, 1)
	ets.Equal(a.ID, q[0].ID)

	prompts, err = ets.Engine.Prompts(ets.Ctx)
	ets.Require().NoError(err)
	ets.Empty(prompts)

	_, err = ets.Engine.ResolveAmbiguous(ets.Ctx, a.ID, 1, at)
	ets.True(cerr.Is(err, http.StatusConflict), "unexpected error: %v", err)
	_, err = ets.Engine.ResolveAmbiguous(ets.Ctx, b.ID, 2, at)
	ets.True(cerr.IsNotFound(err), "unexpected error: %v", err)
}

func (ets *EngineTestSuite) TestExitDebounce() {
	ets.enqueue("ABC123")
	entry := ets.T0.Add(time.Second)
	ets.Require().NoError(ets.parked(1, entry))

	ets.Require().NoError(ets.freed(1, entry.Add(4*time.Second)))
	ss := ets.sessions()
	ets.Require().Len(ss, 1)
	ets.False(ss[0].ExitTime.Valid)

	exit := entry.Add(6 * time.Second)
	ets.Require().NoError(ets.freed(1, exit))
	ss = ets.sessions()
	ets.Require().Len(ss, 1)
	ets.True(ss[0].ExitTime.Valid)
	ets.Equal(exit, ss[0].ExitTime.Time)
	ets.Equal(model.SessionStateExitPending, ss[0].State())

	ets.Require().NoError(ets.freed(1, exit.Add(time.Minute)))
	ets.Equal(exit, ets.sessions()[0].ExitTime.Time)
}

func (ets *EngineTestSuite) anomalies() []model.Anomaly {
	as, err := ets.Engine.Anomalies(ets.Ctx)
	ets.Require().NoError(err)
	return as
}

func (ets *EngineTestSuite) TestExitPendingSpotTakesNextVehicle() {
	ets.enqueue("AAA111")
	ets.Require().NoError(ets.parked(1, ets.T0))
	exit := ets.T0.Add(10 * time.Minute)
	ets.Require().NoError(ets.freed(1, exit))

	ets.enqueue("BBB222")
	entry := ets.T0.Add(11 * time.Minute)
	ets.Require().NoError(ets.parked(1, entry))
	ss := ets.sessions()
	ets.Require().Len(ss, 2)
	ets.Equal(model.Plate("AAA111"), ss[0].Plate)
	ets.Equal(model.SessionStateExitPending, ss[0].State())
	ets.Equal(model.Plate("BBB222"), ss[1].Plate)
	ets.Equal(1, ss[1].SpotID)
	ets.Equal(entry, ss[1].EntryTime)
	ets.Equal(model.SessionStateActive, ss[1].State())
	ets.Empty(ets.queue())
	ets.Empty(ets.anomalies())
	ets.Len(ets.DB.Sessions(), 2)

	ets.Clock.Set(ets.T0.Add(12 * time.Minute))
	r, err := ets.Engine.ConfirmPayment(ets.Ctx, "AAA111")
	ets.Require().NoError(err)
	ets.Equal(exit, r.ExitTime)
	ss = ets.sessions()
	ets.Require().Len(ss, 1)
	ets.Equal(model.Plate("BBB222"), ss[0].Plate)

	// the paid session must not release the spot of the next vehicle
	left := ets.T0.Add(40 * time.Minute)
	ets.Require().NoError(ets.freed(1, left))
	ss = ets.sessions()
	ets.Require().Len(ss, 1)
	ets.Equal(left, ss[0].ExitTime.Time)
	ets.Empty(ets.anomalies())
}

func (ets *EngineTestSuite) TestRestartKeepsExitPendingSpotFree() {
	ets.enqueue("AAA111")
	ets.Require().NoError(ets.parked(2, ets.T0))
	ets.Require().NoError(ets.freed(2, ets.T0.Add(10*time.Minute)))
	ets.stop()

	ets.start()
	ets.enqueue("BBB222")
	ets.Require().NoError(ets.parked(2, ets.T0.Add(11*time.Minute)))
	ss := ets.sessions()
	ets.Require().Len(ss, 2)
	ets.Equal(model.Plate("BBB222"), ss[1].Plate)
	ets.Equal(2, ss[1].SpotID)
	ets.Empty(ets.queue())

	// a late exit signal of the first vehicle changes nothing
	ets.Require().NoError(ets.freed(2, ets.T0.Add(10*time.Minute+time.Second)))
	ss = ets.sessions()
	ets.Equal(ets.T0.Add(10*time.Minute), ss[0].ExitTime.Time)
	ets.False(ss[1].ExitTime.Valid)
}

func (ets *EngineTestSuite) TestInterleavedSpotsDoNotInterfere() {
	ets.enqueue("AAA111")
	ets.Require().NoError(ets.parked(1, ets.T0))
	ets.enqueue("BBB222")

	at := ets.T0.Add(30 * time.Minute)
	ets.Require().NoError(ets.freed(1, at.Add(-time.Second)))
	ets.Require().NoError(ets.parked(2, at))
	ets.Require().NoError(ets.freed(1, at))
	ets.Require().NoError(ets.parked(2, at.Add(-time.Second)))

	ss := ets.sessions()
	ets.Require().Len(ss, 2)
	ets.Equal(model.Plate("AAA111"), ss[0].Plate)
	ets.Equal(1, ss[0].SpotID)
	ets.Equal(at.Add(-time.Second), ss[0].ExitTime.Time)
	ets.Equal(model.SessionStateExitPending, ss[0].State())
	ets.Equal(model.Plate("BBB222"), ss[1].Plate)
	ets.Equal(2, ss[1].SpotID)
	ets.Equal(at, ss[1].EntryTime)
	ets.Equal(model.SessionStateActive, ss[1].State())
	ets.Empty(ets.queue())
	ets.Empty(ets.anomalies())

	f, err := ets.Engine.Facility(ets.Ctx)
	ets.Require().NoError(err)
	ets.False(f.Spots[0].Occupied)
	ets.True(f.Spots[1].Occupied)
}

func (ets *EngineTestSuite) TestCollidingSessionIsAnomaly() {
	ets.Empty(ets.queue()) // waits for the initial load
	err := ets.DB.Conn(ets.Ctx, func(ctx context.Context, c repo.Conn) error {
		s := model.NewSession("ZZZ999", 3, ets.T0, model.DefaultTariff)
		return memdb.NewSessions(ets.DB).Conn(c).Create(ctx, s)
	})
	ets.Require().NoError(err)
	ets.enqueue("ZZZ999")

	ets.Require().NoError(ets.parked(1, ets.T0.Add(time.Minute)))
	ets.Empty(ets.sessions())
	ets.Len(ets.queue(), 1)
	as := ets.anomalies()
	ets.Require().Len(as, 1)
	ets.Equal(model.AnomalyAssignmentConflict, as[0].Kind)
	ets.Equal(1, as[0].SpotID)
}

func (ets *EngineTestSuite) TestEmptyQueueIsAnomaly() {
	ets.enqueue("ABC123")
	ets.Require().NoError(ets.parked(1, ets.T0.Add(time.Second)))
	before := ets.sessions()

	ets.Require().NoError(ets.parked(3, ets.T0.Add(2*time.Second)))
	ets.Equal(before, ets.sessions())
	as, err := ets.Engine.Anomalies(ets.Ctx)
	ets.Require().NoError(err)
	ets.Require().Len(as, 1)
	ets.Equal(model.AnomalyUnqueuedVehicle, as[0].Kind)
	ets.Equal(3, as[0].SpotID)

	// the engine keeps working after the anomaly
	ets.enqueue("XYZ99")
	_, err = ets.Engine.ResolveAmbiguous(
		ets.Ctx, ets.queue()[0].ID, 3, time.Time{},
	)
	ets.NoError(err)
	ets.Len(ets.sessions(), 2)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (sb *syncBuffer) Write(p []byte) (int, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.Write(p)
}

func (sb *syncBuffer) Lines() []string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(sb.buf.Bytes()))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func (ets *EngineTestSuite) TestAnomalyIsLoggedWithTypedAttrs() {
	old := slog.Default()
	defer slog.SetDefault(old)
	sb := &syncBuffer{}
	_, err := log.Setup(sb, "debug", "json")
	ets.Require().NoError(err)

	ets.Require().NoError(ets.parked(3, ets.T0))
	var found bool
	for _, line := range sb.Lines() {
		var rec struct {
			Msg    string `json:"msg"`
			Kind   string `json:"kind"`
			Spot   int    `json:"spot"`
			At     string `json:"at"`
			Detail string `json:"detail"`
			Source struct {
				File string `json:"file"`
			} `json:"source"`
		}
		ets.Require().NoError(json.Unmarshal([]byte(line), &rec))
		if rec.Msg != "anomaly" {
			continue
		}
		found = true
		ets.Equal(string(model.AnomalyUnqueuedVehicle), rec.Kind)
		ets.Equal(3, rec.Spot)
		ets.Equal("2024-05-01T08:00:00.000Z", rec.At)
		ets.NotEmpty(rec.Detail)
		ets.True(
			strings.HasSuffix(rec.Source.File, "recouc/recouc.go"),
			"unexpected source: %s", rec.Source.File,
		)
	}
	ets.True(found, "anomaly is not logged")
}

func (ets *EngineTestSuite) TestUnknownSpotAndDeparture() {
	ets.Require().NoError(ets.parked(9, ets.T0))
	ets.Require().NoError(ets.freed(2, ets.T0))
	as, err := ets.Engine.Anomalies(ets.Ctx)
	ets.Require().NoError(err)
	ets.Require().Len(as, 2)
	ets.Equal(model.AnomalyUnknownSpot, as[0].Kind)
	ets.Equal(model.AnomalyUnknownDeparture, as[1].Kind)

	err = ets.Engine.Submit(ets.Ctx, model.Event{SpotID: 1})
	ets.True(cerr.Is(err, http.StatusBadRequest), "unexpected error: %v", err)
}

func (ets *EngineTestSuite) TestEndToEnd() {
	ets.enqueue("XYZ99")
	parkedAt := ets.T0.Add(100 * time.Millisecond)
	ets.Require().NoError(ets.parked(2, parkedAt))
	ss := ets.sessions()
	ets.Require().Len(ss, 1)
	ets.Equal(parkedAt, ss[0].EntryTime)
	ets.Equal(5.00, ss[0].RateBase)

	freedAt := ets.T0.Add(3600*time.Second + 100*time.Millisecond)
	ets.Require().NoError(ets.freed(2, freedAt))
	ets.Equal(freedAt, ets.sessions()[0].ExitTime.Time)

	ets.Clock.Set(ets.T0.Add(2 * time.Hour))
	q, err := ets.Engine.Quote(ets.Ctx, "xyz-99")
	ets.Require().NoError(err)
	ets.Equal(int64(60), q.ElapsedMinutes)
	ets.True(q.Frozen)

	r, err := ets.Engine.ConfirmPayment(ets.Ctx, "XYZ99")
	ets.Require().NoError(err)
	ets.Equal(5.00, r.Fee)
	ets.Equal(freedAt, r.ExitTime)
	ets.Empty(ets.sessions())
	ets.Len(ets.DB.History(), 1)
	ets.Equal([]model.Command{model.CommandOpenExit}, ets.Rec.Commands())

	_, err = ets.Engine.ConfirmPayment(ets.Ctx, "XYZ99")
	ets.True(cerr.IsNotFound(err), "unexpected error: %v", err)
}

func (ets *EngineTestSuite) TestRatesAreCapturedAtEntry() {
	ets.enqueue("ABC123")
	ets.Require().NoError(ets.parked(1, ets.T0))
	ets.Tariffs.Set(model.Tariff{Base: 20, MinutePrice: 1})

	ets.Clock.Set(ets.T0.Add(61 * time.Minute))
	r, err := ets.Engine.ConfirmPayment(ets.Ctx, "ABC123")
	ets.Require().NoError(err)
	ets.InDelta(5.10, r.Fee, 1e-9)

	ets.enqueue("ABC123")
	ets.Require().NoError(ets.parked(1, ets.T0.Add(62*time.Minute)))
	ss := ets.sessions()
	ets.Require().Len(ss, 1)
	ets.Equal(20.0, ss[0].RateBase)
}

func (ets *EngineTestSuite) TestPersistenceFailureLeavesEventUnresolved() {
	ets.enqueue("ABC123")
	ets.DB.FailNext("Sessions.Create", errors.New("connection reset"))
	ev := model.Event{
		Kind:      model.EventKindVehicleParked,
		SpotID:    1,
		Timestamp: ets.T0.Add(time.Second),
	}
	acked := make(chan error, 1)
	ets.Require().NoError(ets.Engine.Deliver(ets.Ctx, ev, func(err error) {
		acked <- err
	}))
	err := <-acked
	ets.True(cerr.Is(err, http.StatusServiceUnavailable), "unexpected: %v", err)
	ets.Empty(ets.sessions())
	ets.Len(ets.queue(), 1)
	ets.Equal(1, ets.DB.PendingCount())

	ets.Require().NoError(ets.Engine.Submit(ets.Ctx, ev))
	ets.Len(ets.sessions(), 1)
	ets.Empty(ets.queue())
}

func (ets *EngineTestSuite) TestReadingEdgeTriggersResolution() {
	ets.enqueue("ABC123")
	reading := func(occupied bool, at time.Time) error {
		return ets.Engine.Submit(ets.Ctx, model.Event{
			Kind:      model.EventKindSpotReading,
			SpotID:    2,
			Occupied:  occupied,
			Distance:  12.5,
			Timestamp: at,
		})
	}
	ets.Require().NoError(reading(false, ets.T0))
	ets.Empty(ets.sessions())
	ets.Require().NoError(reading(true, ets.T0.Add(time.Second)))
	ets.Len(ets.sessions(), 1)

	ets.enqueue("XYZ99")
	ets.Require().NoError(reading(true, ets.T0.Add(2*time.Second)))
	ets.Len(ets.sessions(), 1)
	ets.Len(ets.queue(), 1)

	// stale readings are not mirrored
	ets.Require().NoError(reading(false, ets.T0))
	f, err := ets.Engine.Facility(ets.Ctx)
	ets.Require().NoError(err)
	ets.Require().Len(f.Spots, 3)
	ets.True(f.Spots[1].Occupied)
	ets.Equal(12.5, f.Spots[1].Distance)
}

func (ets *EngineTestSuite) TestEnqueueGuardsAndBarrier() {
	_, err := ets.Engine.Enqueue(ets.Ctx, "ABC-123", true)
	ets.Require().NoError(err)
	ets.Equal([]model.Command{model.CommandOpenEntry}, ets.Rec.Commands())

	_, err = ets.Engine.Enqueue(ets.Ctx, "abc123", false)
	ets.True(cerr.Is(err, http.StatusConflict), "unexpected error: %v", err)
	_, err = ets.Engine.Enqueue(ets.Ctx, "A", false)
	ets.True(cerr.Is(err, http.StatusBadRequest), "unexpected error: %v", err)

	ets.Require().NoError(ets.parked(1, ets.T0))
	_, err = ets.Engine.Enqueue(ets.Ctx, "ABC123", false)
	ets.True(cerr.Is(err, http.StatusConflict), "unexpected error: %v", err)
}

func (ets *EngineTestSuite) TestFacilityMirror() {
	for _, ev := range []model.Event{
		{Kind: model.EventKindEntryDoor, Open: true},
		{Kind: model.EventKindMode, Automatic: true},
		{Kind: model.EventKindEntryDetected},
	} {
		ets.Require().NoError(ets.Engine.Submit(ets.Ctx, ev))
	}
	f, err := ets.Engine.Facility(ets.Ctx)
	ets.Require().NoError(err)
	ets.True(f.EntryOpen)
	ets.False(f.ExitOpen)
	ets.True(f.Automatic)
	ets.Contains(ets.Rec.Kinds(), model.NotifyEntryDetected)

	ets.NoError(ets.Engine.Command(ets.Ctx, model.CommandManual))
	err = ets.Engine.Command(ets.Ctx, model.CommandInvalid)
	ets.True(cerr.Is(err, http.StatusBadRequest), "unexpected error: %v", err)
	err = ets.Engine.ConfigureNetwork(ets.Ctx, model.NetworkConfig{})
	ets.True(cerr.Is(err, http.StatusBadRequest), "unexpected error: %v", err)
	ets.NoError(ets.Engine.ConfigureNetwork(ets.Ctx, model.NetworkConfig{
		SSID: "parkade", Password: "secret",
	}))
}

func (ets *EngineTestSuite) TestRestartReloadsState() {
	ets.enqueue("ABC123")
	ets.enqueue("XYZ99")
	ets.Require().NoError(ets.parked(1, ets.T0))
	prompts, err := ets.Engine.Prompts(ets.Ctx)
	ets.Require().NoError(err)
	_, err = ets.Engine.ResolveAmbiguous(
		ets.Ctx, prompts[0].Candidates[0].ID, 1, time.Time{},
	)
	ets.Require().NoError(err)
	ets.stop()

	ets.start()
	ss := ets.sessions()
	ets.Require().Len(ss, 1)
	ets.Equal(model.Plate("ABC123"), ss[0].Plate)
	q := ets.queue()
	ets.Require().Len(q, 1)
	ets.Equal(model.Plate("XYZ99"), q[0].Plate)
}

func (ets *EngineTestSuite) TestStoppedEngine() {
	ets.stop()
	_, err := ets.Engine.Queue(ets.Ctx)
	ets.ErrorIs(err, recouc.ErrStopped)
	ets.start()
}
