package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteIndex is a read-model index over save activity: one row per profile
// and one row per lifecycle operation. Writes go through a single writer
// goroutine with batched transactions so callers never block on the disk.
// The documents on disk remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqProfile reqKind = iota + 1
	reqOp
	reqFlush
)

type req struct {
	kind    reqKind
	profile profileRow
	op      OpRow
	ack     chan struct{}
}

type profileRow struct {
	ID        string
	Seed      int64
	CreatedAt string
}

// OpRow is one recorded lifecycle operation.
type OpRow struct {
	OpID    string `json:"op_id"`
	Profile string `json:"profile"`
	Op      string `json:"op"`
	Doc     string `json:"doc,omitempty"`
	At      string `json:"at"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
}

func Open(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-style workload; NORMAL is fine for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ops (
			op_id TEXT PRIMARY KEY,
			profile TEXT NOT NULL,
			op TEXT NOT NULL,
			doc TEXT,
			at TEXT NOT NULL,
			ok INTEGER NOT NULL,
			detail TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ops_profile_at ON ops(profile, at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordProfile upserts the profile row. Non-blocking: dropped if the
// indexer has fallen far behind.
func (s *SQLiteIndex) RecordProfile(id string, seed int64) {
	if s == nil || s.closed.Load() {
		return
	}
	r := profileRow{ID: id, Seed: seed, CreatedAt: time.Now().UTC().Format(time.RFC3339Nano)}
	select {
	case s.ch <- req{kind: reqProfile, profile: r}:
	default:
	}
}

// RecordOp records one lifecycle operation outcome.
func (s *SQLiteIndex) RecordOp(profileID, op, doc string, ok bool, detail string) {
	if s == nil || s.closed.Load() {
		return
	}
	r := OpRow{
		OpID:    uuid.NewString(),
		Profile: profileID,
		Op:      op,
		Doc:     doc,
		At:      time.Now().UTC().Format(time.RFC3339Nano),
		OK:      ok,
		Detail:  detail,
	}
	select {
	case s.ch <- req{kind: reqOp, op: r}:
	default:
	}
}

// Flush blocks until every request queued before the call has been
// committed. Intended for tests and shutdown paths.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	ack := make(chan struct{})
	s.ch <- req{kind: reqFlush, ack: ack}
	<-ack
}

// LastSuccessfulSave returns the timestamp of the newest ok save op for the
// profile, or zero time when none exists.
func (s *SQLiteIndex) LastSuccessfulSave(profileID string) (time.Time, error) {
	var at string
	err := s.db.QueryRow(
		`SELECT at FROM ops WHERE profile = ? AND op = 'save' AND ok = 1 ORDER BY at DESC LIMIT 1`,
		profileID,
	).Scan(&at)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, at)
}

// RecentOps returns up to limit operations for the profile, newest first.
func (s *SQLiteIndex) RecentOps(profileID string, limit int) ([]OpRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT op_id, profile, op, COALESCE(doc,''), at, ok, COALESCE(detail,'')
		 FROM ops WHERE profile = ? ORDER BY at DESC LIMIT ?`,
		profileID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OpRow
	for rows.Next() {
		var r OpRow
		var ok int
		if err := rows.Scan(&r.OpID, &r.Profile, &r.Op, &r.Doc, &r.At, &ok, &r.Detail); err != nil {
			return nil, err
		}
		r.OK = ok != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertProfile, _ := s.db.Prepare(`INSERT OR REPLACE INTO profiles(id,seed,created_at) VALUES(?,?,?)`)
	insertOp, _ := s.db.Prepare(`INSERT OR REPLACE INTO ops(op_id,profile,op,doc,at,ok,detail) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insertProfile != nil {
			_ = insertProfile.Close()
		}
		if insertOp != nil {
			_ = insertOp.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		if r.kind == reqFlush {
			commit()
			close(r.ack)
			continue
		}
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqProfile:
			if insertProfile != nil {
				if _, err := tx.Stmt(insertProfile).Exec(r.profile.ID, r.profile.Seed, r.profile.CreatedAt); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		case reqOp:
			if insertOp != nil {
				okInt := 0
				if r.op.OK {
					okInt = 1
				}
				if _, err := tx.Stmt(insertOp).Exec(r.op.OpID, r.op.Profile, r.op.Op, r.op.Doc, r.op.At, okInt, r.op.Detail); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
