// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memdb is an internal helper for the test packages.
// It implements the repo.Pool and all repository interfaces in memory,
// so use cases may be tested without a PostgreSQL container.
// Transactions are emulated by taking a snapshot of the whole database
// when they begin and restoring it if their handler fails.
// Failures may be injected per operation name with FailNext.
package memdb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/repo"
)

// ErrRawSQL is returned by Exec and Query because memdb does not parse
// SQL statements.
var ErrRawSQL = errors.New("memdb does not support raw SQL")

type entryRow struct {
	model.PendingEntry
	assigned bool
	spotID   int
}

type state struct {
	created  bool
	entries  []entryRow
	sessions []model.Session
	tariff   *model.Tariff
	history  []model.HistoryRecord
}

func (s state) clone() state {
	c := state{
		created:  s.created,
		entries:  slices.Clone(s.entries),
		sessions: slices.Clone(s.sessions),
		history:  slices.Clone(s.history),
	}
	if s.tariff != nil {
		t := *s.tariff
		c.tariff = &t
	}
	return c
}

// DB is an in-memory database. It implements repo.Pool.
type DB struct {
	mu    sync.Mutex
	st    state
	fails map[string]error
}

// New instantiates an empty DB.
func New() *DB {
	return &DB{fails: make(map[string]error)}
}

// FailNext makes the next call of the op operation (e.g., "Queue.Create"
// or "Sessions.Create") fail with err, wrapped as an Unavailable error.
func (db *DB) FailNext(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.fails[op] = err
}

func (db *DB) failure(op string) error {
	if err, ok := db.fails[op]; ok {
		delete(db.fails, op)
		return cerr.Unavailable(fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// Conn calls handler with a connection to db.
func (db *DB) Conn(ctx context.Context, handler repo.ConnHandler) error {
	return handler(ctx, &Conn{db: db})
}

// Close is a no-op.
func (db *DB) Close() error {
	return nil
}

// Conn implements repo.Conn.
type Conn struct {
	db *DB
}

// Tx runs handler and restores the database state if it fails.
func (c *Conn) Tx(ctx context.Context, handler repo.TxHandler) (err error) {
	c.db.mu.Lock()
	snapshot := c.db.st.clone()
	c.db.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked: %v", r)
		}
		if err != nil {
			c.db.mu.Lock()
			c.db.st = snapshot
			c.db.mu.Unlock()
			err = fmt.Errorf("handler: %w", err)
		}
	}()
	return handler(ctx, &Tx{db: c.db})
}

func (c *Conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (c *Conn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (c *Conn) IsConn() {
}

// Tx implements repo.Tx.
type Tx struct {
	db *DB
}

func (tx *Tx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (tx *Tx) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (tx *Tx) IsTx() {
}

// Tariff returns the stored tariff, or nil before its initialization.
func (db *DB) Tariff() *model.Tariff {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.st.tariff == nil {
		return nil
	}
	t := *db.st.tariff
	return &t
}

// PendingCount returns the number of unassigned stored entries.
func (db *DB) PendingCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, e := range db.st.entries {
		if !e.assigned {
			n++
		}
	}
	return n
}

// Sessions returns a copy of the stored open sessions.
func (db *DB) Sessions() []model.Session {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.st.sessions)
}

// History returns a copy of the stored archived sessions.
func (db *DB) History() []model.HistoryRecord {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.st.history)
}

// Queue implements repo.Queue over a DB.
type Queue struct {
	db *DB
}

// NewQueue instantiates a Queue repository.
func NewQueue(db *DB) *Queue {
	return &Queue{db: db}
}

func (q *Queue) Conn(repo.Conn) repo.QueueConnQueryer {
	return q
}

func (q *Queue) Tx(repo.Tx) repo.QueueTxQueryer {
	return q
}

func (q *Queue) Pending(context.Context) ([]model.PendingEntry, error) {
	db := q.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Queue.Pending"); err != nil {
		return nil, err
	}
	var pes []model.PendingEntry
	for _, e := range db.st.entries {
		if !e.assigned {
			pes = append(pes, e.PendingEntry)
		}
	}
	slices.SortStableFunc(pes, func(a, b model.PendingEntry) int {
		return a.DetectedAt.Compare(b.DetectedAt)
	})
	return pes, nil
}

func (q *Queue) Create(_ context.Context, e *model.PendingEntry) error {
	db := q.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Queue.Create"); err != nil {
		return err
	}
	db.st.entries = append(db.st.entries, entryRow{PendingEntry: *e})
	return nil
}

func (q *Queue) Delete(_ context.Context, id uuid.UUID) error {
	db := q.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Queue.Delete"); err != nil {
		return err
	}
	i := slices.IndexFunc(db.st.entries, func(e entryRow) bool {
		return e.ID == id && !e.assigned
	})
	if i < 0 {
		return cerr.NotFound(fmt.Errorf("expected one row, but got 0"))
	}
	db.st.entries = slices.Delete(db.st.entries, i, i+1)
	return nil
}

func (q *Queue) MarkAssigned(
	_ context.Context, id uuid.UUID, spotID int, _ time.Time,
) (*model.PendingEntry, error) {
	db := q.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Queue.MarkAssigned"); err != nil {
		return nil, err
	}
	for i := range db.st.entries {
		e := &db.st.entries[i]
		if e.ID == id && !e.assigned {
			e.assigned = true
			e.spotID = spotID
			pe := e.PendingEntry
			return &pe, nil
		}
	}
	return nil, cerr.NotFound(fmt.Errorf("expected one row, but got 0"))
}

// Sessions implements repo.Sessions over a DB.
type Sessions struct {
	db *DB
}

// NewSessions instantiates a Sessions repository.
func NewSessions(db *DB) *Sessions {
	return &Sessions{db: db}
}

func (s *Sessions) Conn(repo.Conn) repo.SessionsConnQueryer {
	return s
}

func (s *Sessions) Tx(repo.Tx) repo.SessionsTxQueryer {
	return s
}

func (s *Sessions) Active(context.Context) ([]model.Session, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Sessions.Active"); err != nil {
		return nil, err
	}
	return slices.Clone(db.st.sessions), nil
}

func (s *Sessions) Create(_ context.Context, ss *model.Session) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Sessions.Create"); err != nil {
		return err
	}
	for _, o := range db.st.sessions {
		if o.Plate == ss.Plate {
			return cerr.Conflict(fmt.Errorf(
				"plate %s has a session", ss.Plate,
			))
		}
		if o.SpotID == ss.SpotID && !o.ExitTime.Valid {
			return cerr.Conflict(fmt.Errorf(
				"spot %d has an active session", ss.SpotID,
			))
		}
	}
	db.st.sessions = append(db.st.sessions, *ss)
	return nil
}

func (s *Sessions) MarkExit(
	_ context.Context, plate model.Plate, at time.Time,
) (*model.Session, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Sessions.MarkExit"); err != nil {
		return nil, err
	}
	for i := range db.st.sessions {
		ss := &db.st.sessions[i]
		if ss.Plate == plate {
			ss.MarkExit(at)
			c := *ss
			return &c, nil
		}
	}
	return nil, cerr.NotFound(fmt.Errorf("expected one row, but got 0"))
}

func (s *Sessions) Delete(
	_ context.Context, plate model.Plate,
) (*model.Session, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Sessions.Delete"); err != nil {
		return nil, err
	}
	i := slices.IndexFunc(db.st.sessions, func(ss model.Session) bool {
		return ss.Plate == plate
	})
	if i < 0 {
		return nil, cerr.NotFound(fmt.Errorf("expected one row, but got 0"))
	}
	ss := db.st.sessions[i]
	db.st.sessions = slices.Delete(db.st.sessions, i, i+1)
	return &ss, nil
}

// Tariffs implements repo.Tariffs over a DB.
type Tariffs struct {
	db *DB
}

// NewTariffs instantiates a Tariffs repository.
func NewTariffs(db *DB) *Tariffs {
	return &Tariffs{db: db}
}

func (t *Tariffs) Conn(repo.Conn) repo.TariffsConnQueryer {
	return t
}

func (t *Tariffs) Tx(repo.Tx) repo.TariffsTxQueryer {
	return t
}

func (t *Tariffs) Current(context.Context) (*model.Tariff, error) {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Tariffs.Current"); err != nil {
		return nil, err
	}
	if db.st.tariff == nil {
		return nil, cerr.NotFound(errors.New("tariff is not initialized"))
	}
	c := *db.st.tariff
	return &c, nil
}

func (t *Tariffs) Save(_ context.Context, tt model.Tariff) error {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Tariffs.Save"); err != nil {
		return err
	}
	db.st.tariff = &tt
	return nil
}

// History implements repo.History over a DB.
type History struct {
	db *DB
}

// NewHistory instantiates a History repository.
func NewHistory(db *DB) *History {
	return &History{db: db}
}

func (h *History) Conn(repo.Conn) repo.HistoryConnQueryer {
	return h
}

func (h *History) Tx(repo.Tx) repo.HistoryTxQueryer {
	return h
}

func (h *History) Append(_ context.Context, r *model.HistoryRecord) error {
	db := h.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("History.Append"); err != nil {
		return err
	}
	db.st.history = append(db.st.history, *r)
	return nil
}

func (h *History) Recent(
	_ context.Context, since time.Time, limit int,
) ([]model.HistoryRecord, error) {
	db := h.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("History.Recent"); err != nil {
		return nil, err
	}
	var rs []model.HistoryRecord
	for _, r := range db.st.history {
		if !r.PaidAt.Before(since) {
			rs = append(rs, r)
		}
	}
	slices.SortStableFunc(rs, func(a, b model.HistoryRecord) int {
		return b.PaidAt.Compare(a.PaidAt)
	})
	if limit > 0 && len(rs) > limit {
		rs = rs[:limit]
	}
	return rs, nil
}

// Tables lists the names of the emulated tables after a Schema Create.
var Tables = []string{"history", "pending_entries", "sessions", "tariffs"}

// Schema implements repo.Schema over a DB.
type Schema struct {
	db *DB
}

// NewSchema instantiates a Schema repository.
func NewSchema(db *DB) *Schema {
	return &Schema{db: db}
}

func (s *Schema) Tx(repo.Tx) repo.SchemaTxQueryer {
	return s
}

func (s *Schema) DropIfExists(context.Context) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Schema.DropIfExists"); err != nil {
		return err
	}
	db.st = state{}
	return nil
}

func (s *Schema) Create(context.Context) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.failure("Schema.Create"); err != nil {
		return err
	}
	if db.st.created {
		return errors.New("tables exist already")
	}
	db.st.created = true
	return nil
}

func (s *Schema) Tables(context.Context) ([]string, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.st.created {
		return nil, nil
	}
	return slices.Clone(Tables), nil
}
