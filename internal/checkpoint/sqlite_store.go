package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
)

// SQLiteStore keeps sessions in a single SQLite database file
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

// OpenSQLiteStore opens (or creates) the database at path
func OpenSQLiteStore(path string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		panic("SQLiteStore: logger cannot be nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir for %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY between the writer goroutine
	// and cold-resume reads.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id                TEXT PRIMARY KEY,
		routine_id        TEXT NOT NULL,
		timeline          TEXT NOT NULL,
		created_at        INTEGER NOT NULL,
		updated_at        INTEGER NOT NULL,
		phase             TEXT NOT NULL DEFAULT 'preparing',
		block_index       INTEGER NOT NULL DEFAULT 0,
		set_number        INTEGER NOT NULL DEFAULT 1,
		total_elapsed_sec INTEGER NOT NULL DEFAULT 0,
		progress          TEXT,
		summary           TEXT,
		finalized_at      INTEGER
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, routineID string, tl *timeline.Timeline) (string, error) {
	if tl == nil {
		return "", errors.New("timeline cannot be nil")
	}
	raw, err := json.Marshal(tl)
	if err != nil {
		return "", fmt.Errorf("encoding timeline: %w", err)
	}

	id := uuid.NewString()
	now := s.now().UnixMilli()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, routine_id, timeline, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, routineID, string(raw), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}
	s.logger.Printf("SQLiteStore: created session %s", id)
	return id, nil
}

func (s *SQLiteStore) UpdateProgress(ctx context.Context, sessionID string, progress Progress) error {
	raw, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET progress = ?, phase = ?, block_index = ?, set_number = ?,
		 total_elapsed_sec = ?, updated_at = ? WHERE id = ?`,
		string(raw), progress.Phase, progress.BlockIndex, progress.Set,
		progress.TotalElapsedSec, s.now().UnixMilli(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("updating progress: %w", err)
	}
	return requireRow(res, sessionID)
}

func (s *SQLiteStore) Finalize(ctx context.Context, sessionID string, summary Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET summary = ?, phase = ?, total_elapsed_sec = ?, finalized_at = ?, updated_at = ?
		 WHERE id = ?`,
		string(raw), summary.Phase, summary.TotalElapsedSec, summary.CompletedAt.UnixMilli(),
		s.now().UnixMilli(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("finalizing session: %w", err)
	}
	if err := requireRow(res, sessionID); err != nil {
		return err
	}
	s.logger.Printf("SQLiteStore: finalized session %s (%s)", sessionID, summary.Phase)
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, routine_id, timeline, created_at, progress, summary FROM sessions WHERE id = ?`,
		sessionID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return rec, err
}

// Unfinished lists sessions without a summary, most recently updated first
func (s *SQLiteStore) Unfinished(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, routine_id, timeline, created_at, progress, summary FROM sessions
		 WHERE finalized_at IS NULL ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying unfinished sessions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec       Record
		tlRaw     string
		createdAt int64
		progress  sql.NullString
		summary   sql.NullString
	)
	if err := row.Scan(&rec.SessionID, &rec.RoutineID, &tlRaw, &createdAt, &progress, &summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	rec.CreatedAt = time.UnixMilli(createdAt)

	rec.Timeline = &timeline.Timeline{}
	if err := json.Unmarshal([]byte(tlRaw), rec.Timeline); err != nil {
		return nil, fmt.Errorf("decoding timeline of %s: %w", rec.SessionID, err)
	}
	if progress.Valid {
		rec.Progress = &Progress{}
		if err := json.Unmarshal([]byte(progress.String), rec.Progress); err != nil {
			return nil, fmt.Errorf("decoding progress of %s: %w", rec.SessionID, err)
		}
	}
	if summary.Valid {
		rec.Summary = &Summary{}
		if err := json.Unmarshal([]byte(summary.String), rec.Summary); err != nil {
			return nil, fmt.Errorf("decoding summary of %s: %w", rec.SessionID, err)
		}
	}
	return &rec, nil
}

func requireRow(res sql.Result, sessionID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}
