// # internal/data/store/store.go

// Package store persists run snapshots: the registry contents and the
// references left unresolved after each pipeline run.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"docxref/internal/core/errors"
	"docxref/internal/engine/model"
	"docxref/internal/shared/observability"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5

	// Fixed width so started_utc sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Run summarizes one pipeline run.
type Run struct {
	ID              string
	Started         time.Time
	Documents       int
	FailedDocuments int
	Elements        int
	Resolved        int
	Ambiguous       int
	Unresolved      int
	Duration        time.Duration
}

type ElementRecord struct {
	RunID     string
	ID        string
	Name      string
	FullName  string
	Language  string
	Kind      string
	Namespace string
	Brief     string
}

type UnresolvedRecord struct {
	Name        string
	Language    string
	Namespace   string
	Occurrences int
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeValidationError, "store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, errors.Newf(errors.CodeValidationError, "store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL keep watch-mode reruns from failing on a held lock.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun writes the run summary, every registered element and the
// unresolved references in one transaction. A missing run id or start time is
// filled in and returned.
func (s *Store) SaveRun(ctx context.Context, run Run, elements []model.Element, unresolved []*model.TypeRef) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, span := observability.Tracer.Start(ctx, "store.SaveRun")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.StoreWriteDuration.Observe(time.Since(start).Seconds())
	}()

	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.Started.IsZero() {
		run.Started = time.Now().UTC()
	}
	if run.Elements == 0 {
		run.Elements = len(elements)
	}

	err := s.withRetry("save run", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := writeRun(ctx, tx, run, elements, unresolved); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return run, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "persist run"), errors.CtxPath, s.path)
	}
	return run, nil
}

func writeRun(ctx context.Context, tx *sql.Tx, run Run, elements []model.Element, unresolved []*model.TypeRef) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (run_id, started_utc, documents, failed_documents, elements, resolved, ambiguous, unresolved, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  documents=excluded.documents,
  failed_documents=excluded.failed_documents,
  elements=excluded.elements,
  resolved=excluded.resolved,
  ambiguous=excluded.ambiguous,
  unresolved=excluded.unresolved,
  duration_ms=excluded.duration_ms
`,
		run.ID,
		run.Started.UTC().Format(timeLayout),
		run.Documents,
		run.FailedDocuments,
		run.Elements,
		run.Resolved,
		run.Ambiguous,
		run.Unresolved,
		run.Duration.Milliseconds(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM elements WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clear elements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM unresolved WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clear unresolved: %w", err)
	}

	insertElement, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO elements (run_id, id, name, full_name, language, kind, namespace, brief)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare element insert: %w", err)
	}
	defer insertElement.Close()
	for _, e := range elements {
		base := e.Base()
		namespace, brief := details(e)
		if _, err := insertElement.ExecContext(ctx, run.ID, base.ID, base.Name, base.FullName, base.Language, base.Kind, namespace, brief); err != nil {
			return fmt.Errorf("insert element %s: %w", base.ID, err)
		}
	}

	insertUnresolved, err := tx.PrepareContext(ctx, `
INSERT INTO unresolved (run_id, name, language, namespace) VALUES (?, ?, ?, ?)
ON CONFLICT(run_id, name, language, namespace) DO UPDATE SET occurrences = occurrences + 1`)
	if err != nil {
		return fmt.Errorf("prepare unresolved insert: %w", err)
	}
	defer insertUnresolved.Close()
	for _, ref := range unresolved {
		if _, err := insertUnresolved.ExecContext(ctx, run.ID, ref.Name, ref.Language, ref.Namespace); err != nil {
			return fmt.Errorf("insert unresolved %s: %w", ref.Name, err)
		}
	}
	return nil
}

func details(e model.Element) (namespace, brief string) {
	switch v := e.(type) {
	case *model.Compound:
		return v.Namespace, v.Brief
	case *model.Member:
		return v.Namespace, v.Brief
	case *model.EnumValue:
		return "", v.Brief
	}
	return "", ""
}

// Runs returns the most recent runs first. A limit below one returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT run_id, started_utc, documents, failed_documents, elements, resolved, ambiguous, unresolved, duration_ms
FROM runs ORDER BY started_utc DESC, run_id ASC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			startedRaw string
			durationMS int64
			run        Run
		)
		if err := rows.Scan(
			&run.ID,
			&startedRaw,
			&run.Documents,
			&run.FailedDocuments,
			&run.Elements,
			&run.Resolved,
			&run.Ambiguous,
			&run.Unresolved,
			&durationMS,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		started, err := time.Parse(timeLayout, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
		}
		run.Started = started.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run or a NOT_FOUND error.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, errors.AddContext(errors.New(errors.CodeNotFound, "no runs recorded"), errors.CtxPath, s.path)
	}
	return runs[0], nil
}

// FindElements returns the elements of a run whose short or full name equals name.
func (s *Store) FindElements(ctx context.Context, runID, name string) ([]ElementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("find elements", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT run_id, id, name, full_name, language, kind, namespace, brief
FROM elements WHERE run_id = ? AND (name = ? OR full_name = ?)
ORDER BY full_name ASC, id ASC`, runID, name, name)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ElementRecord, 0)
	for rows.Next() {
		var r ElementRecord
		if err := rows.Scan(&r.RunID, &r.ID, &r.Name, &r.FullName, &r.Language, &r.Kind, &r.Namespace, &r.Brief); err != nil {
			return nil, fmt.Errorf("scan element row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate element rows: %w", err)
	}
	return out, nil
}

// Unresolved returns the unresolved names of a run, most frequent first.
func (s *Store) Unresolved(ctx context.Context, runID string) ([]UnresolvedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load unresolved", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT name, language, namespace, occurrences FROM unresolved
WHERE run_id = ? ORDER BY occurrences DESC, name ASC, language ASC, namespace ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UnresolvedRecord, 0)
	for rows.Next() {
		var r UnresolvedRecord
		if err := rows.Scan(&r.Name, &r.Language, &r.Namespace, &r.Occurrences); err != nil {
			return nil, fmt.Errorf("scan unresolved row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unresolved rows: %w", err)
	}
	return out, nil
}

// PruneRuns keeps the newest keep runs and deletes the rest with their rows.
// It returns the number of deleted runs. keep below one disables pruning.
func (s *Store) PruneRuns(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	err := s.withRetry("prune runs", func() error {
		res, err := s.db.ExecContext(ctx, `
DELETE FROM runs WHERE run_id NOT IN (
  SELECT run_id FROM runs ORDER BY started_utc DESC, run_id ASC LIMIT ?
)`, keep)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return int(deleted), err
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

// IsCorruptError reports whether err means the file is not a usable database.
func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || stderrors.Is(err, os.ErrInvalid)
}
