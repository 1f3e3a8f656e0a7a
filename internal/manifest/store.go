package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"vidset/internal/pipeline"
)

// ErrRunNotFound indicates no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// Store manages manifest persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the manifest database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, info RunInfo) error {
	if info.ID == "" {
		return errors.New("begin run: empty run id")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, started_at, status, annotations_path, source_root, dataset_root,
            stride, seed, split_ratio
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID,
		timestamp(time.Now()),
		StatusRunning,
		info.AnnotationsPath,
		info.SourceRoot,
		info.DatasetRoot,
		info.Stride,
		info.Seed,
		info.SplitRatio,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final counters. A non-nil runErr marks the run failed.
func (s *Store) FinishRun(ctx context.Context, runID string, counters pipeline.Counters, runErr error) error {
	status := StatusCompleted
	var message sql.NullString
	if runErr != nil {
		status = StatusFailed
		message = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ?, status = ?, train_count = ?, val_count = ?,
            video_errors = ?, frame_errors = ?, error_message = ?
        WHERE id = ?`,
		timestamp(time.Now()),
		status,
		counters.Train,
		counters.Val,
		counters.VideoErrors,
		counters.FrameErrors,
		message,
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RecordSample stores one written sample.
func (s *Store) RecordSample(ctx context.Context, runID string, sample pipeline.Sample) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO samples (run_id, split, sample_id, video_id, frame, label, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		sample.Split,
		sample.ID,
		sample.VideoID,
		sample.Frame,
		sample.Label.Line(),
		timestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// RecordFailure stores one skipped video or frame. Use frame -1 for videos.
func (s *Store) RecordFailure(ctx context.Context, runID string, failure FailureRecord) error {
	var frame sql.NullInt64
	if failure.Frame >= 0 {
		frame = sql.NullInt64{Int64: int64(failure.Frame), Valid: true}
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO failures (run_id, kind, video_id, frame, message, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		failure.Kind,
		failure.VideoID,
		frame,
		failure.Message,
		timestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert failure: %w", err)
	}
	return nil
}

// GetRun fetches a run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, started_at, finished_at, status, annotations_path, source_root, dataset_root,
            stride, seed, split_ratio, train_count, val_count, video_errors, frame_errors, error_message
        FROM runs WHERE id = ?`,
		runID,
	)
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
		message    sql.NullString
	)
	err := row.Scan(
		&run.ID, &startedAt, &finishedAt, &run.Status,
		&run.AnnotationsPath, &run.SourceRoot, &run.DatasetRoot,
		&run.Stride, &run.Seed, &run.SplitRatio,
		&run.Train, &run.Val, &run.VideoErrors, &run.FrameErrors, &message,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}
	run.ErrorMessage = message.String
	return &run, nil
}

// Samples lists the samples of a run ordered by split then identifier.
func (s *Store) Samples(ctx context.Context, runID string) ([]SampleRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT split, sample_id, video_id, frame, label FROM samples
        WHERE run_id = ? ORDER BY split, sample_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []SampleRecord
	for rows.Next() {
		var rec SampleRecord
		if err := rows.Scan(&rec.Split, &rec.SampleID, &rec.VideoID, &rec.Frame, &rec.Label); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Failures lists the failures of a run in insertion order.
func (s *Store) Failures(ctx context.Context, runID string) ([]FailureRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT kind, video_id, frame, message FROM failures WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var out []FailureRecord
	for rows.Next() {
		var (
			rec   FailureRecord
			frame sql.NullInt64
		)
		if err := rows.Scan(&rec.Kind, &rec.VideoID, &frame, &rec.Message); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		rec.Frame = -1
		if frame.Valid {
			rec.Frame = int(frame.Int64)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SplitLeaks returns source frames that were written to more than one split
// within a run. A run over annotations without duplicate frames returns none.
func (s *Store) SplitLeaks(ctx context.Context, runID string) ([]FrameRef, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT video_id, frame FROM samples WHERE run_id = ?
        GROUP BY video_id, frame HAVING COUNT(DISTINCT split) > 1 ORDER BY video_id, frame`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query split leaks: %w", err)
	}
	defer rows.Close()

	var out []FrameRef
	for rows.Next() {
		var ref FrameRef
		if err := rows.Scan(&ref.VideoID, &ref.Frame); err != nil {
			return nil, fmt.Errorf("scan split leak: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
