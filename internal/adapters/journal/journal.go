// Package journal persists accepted mutations in SQLite.
//
// The journal is append-only: one row per accepted mutation, keyed by
// its sequence number. Replaying the rows in sequence order through the
// normal apply path rebuilds the exact ledger, stamped sequence numbers
// included. Rejected mutations are never written, so gaps between
// consecutive rows are expected.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/vouch/internal/adapters/journal/migrations"
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/pkg/metrics"
)

// Journal is a SQLite-backed record of accepted mutations.
type Journal struct {
	db *sql.DB
}

// Open opens the journal at path and applies embedded migrations.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	// Appends come from the single applier; one connection is enough.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Journal{db: db}, nil
}

// Append records one accepted mutation under its sequence number.
func (j *Journal) Append(ctx context.Context, seq uint64, m model.Mutation) error {
	start := time.Now()

	payload, err := json.Marshal(m)
	if err != nil {
		metrics.RecordJournalAppendError()
		return fmt.Errorf("marshal mutation %d: %w", seq, err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO journal (seq, kind, payload, applied_at) VALUES (?, ?, ?, ?)`,
		int64(seq), string(m.Kind), string(payload), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		metrics.RecordJournalAppendError()
		return fmt.Errorf("append mutation %d: %w", seq, err)
	}

	metrics.RecordJournalAppend()
	metrics.RecordJournalAppendLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// Replay streams every journaled mutation in sequence order. It returns
// the highest sequence number seen so the caller can restore the
// sequencer past it.
func (j *Journal) Replay(ctx context.Context, fn func(seq uint64, m model.Mutation) error) (uint64, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT seq, payload FROM journal ORDER BY seq ASC`)
	if err != nil {
		return 0, fmt.Errorf("query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var maxSeq uint64
	var count int
	for rows.Next() {
		var seq int64
		var payload string
		if err := rows.Scan(&seq, &payload); err != nil {
			return maxSeq, fmt.Errorf("scan journal row: %w", err)
		}

		var m model.Mutation
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return maxSeq, fmt.Errorf("decode mutation %d: %w", seq, err)
		}

		if err := fn(uint64(seq), m); err != nil {
			return maxSeq, fmt.Errorf("replay mutation %d: %w", seq, err)
		}

		maxSeq = uint64(seq)
		count++
	}
	if err := rows.Err(); err != nil {
		return maxSeq, fmt.Errorf("iterate journal: %w", err)
	}

	metrics.RecordJournalReplayed(count)
	return maxSeq, nil
}

// Close closes the SQLite handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
