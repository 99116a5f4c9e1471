package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
)

// FileStore keeps one JSON document per session in a directory
type FileStore struct {
	dir    string
	logger *log.Logger
	now    func() time.Time

	mu sync.Mutex
}

// DefaultDir returns ~/.workout-runner/sessions, or a relative fallback
// when the home directory is unknown.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".workout-runner", "sessions")
}

// NewFileStore creates dir if needed
func NewFileStore(dir string, logger *log.Logger) (*FileStore, error) {
	if logger == nil {
		panic("FileStore: logger cannot be nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger, now: time.Now}, nil
}

func (s *FileStore) CreateSession(ctx context.Context, routineID string, tl *timeline.Timeline) (string, error) {
	if tl == nil {
		return "", errors.New("timeline cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{
		SessionID: uuid.NewString(),
		RoutineID: routineID,
		Timeline:  tl,
		CreatedAt: s.now(),
	}
	if err := s.writeLocked(rec); err != nil {
		return "", err
	}
	s.logger.Printf("FileStore: created %s", s.path(rec.SessionID))
	return rec.SessionID, nil
}

func (s *FileStore) UpdateProgress(ctx context.Context, sessionID string, progress Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.readLocked(sessionID)
	if err != nil {
		return err
	}
	rec.Progress = &progress
	return s.writeLocked(*rec)
}

func (s *FileStore) Finalize(ctx context.Context, sessionID string, summary Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.readLocked(sessionID)
	if err != nil {
		return err
	}
	rec.Summary = &summary
	if err := s.writeLocked(*rec); err != nil {
		return err
	}
	s.logger.Printf("FileStore: finalized %s (%s)", sessionID, summary.Phase)
	return nil
}

func (s *FileStore) Load(ctx context.Context, sessionID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(sessionID)
}

// Unfinished lists sessions without a summary, most recently updated first
func (s *FileStore) Unfinished(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	var out []Record
	for _, p := range paths {
		id := strings.TrimSuffix(filepath.Base(p), ".json")
		rec, err := s.readLocked(id)
		if err != nil {
			s.logger.Printf("FileStore: skipping %s: %v", p, err)
			continue
		}
		if !rec.Finalized() {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lastTouched(out[i]).After(lastTouched(out[j]))
	})
	return out, nil
}

func (s *FileStore) Close() error { return nil }

func lastTouched(rec Record) time.Time {
	if rec.Progress != nil {
		return rec.Progress.UpdatedAt
	}
	return rec.CreatedAt
}

// checkSessionID keeps ids from naming anything outside the store dir
func checkSessionID(sessionID string) error {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) ||
		strings.Contains(sessionID, "..") || filepath.Base(sessionID) != sessionID {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return nil
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

func (s *FileStore) readLocked(sessionID string) (*Record, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", sessionID, err)
	}
	return &rec, nil
}

// writeLocked replaces the session file atomically so a crash mid-write
// leaves the previous checkpoint intact.
func (s *FileStore) writeLocked(rec Record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", rec.SessionID, err)
	}
	tmp, err := os.CreateTemp(s.dir, rec.SessionID+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing session %s: %w", rec.SessionID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing session %s: %w", rec.SessionID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(rec.SessionID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing session %s: %w", rec.SessionID, err)
	}
	return nil
}
