package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the job registry. It is backed by an in-memory SQLite database
// whose single connection serializes all mutations, so a status read is never
// torn relative to a concurrent write. Records do not survive a restart.
type Store struct {
	db *sql.DB
}

// Open initializes the registry database and applies the schema.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}

	// One pinned connection: :memory: databases exist per connection, and the
	// single conn doubles as the registry's serialized access point.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewJob inserts a job in the queued state. The identifier is assigned by the
// caller so that uploaded artifacts can be named before the record exists.
func (s *Store) NewJob(ctx context.Context, id, inputFile, sourcePath string) (*Job, error) {
	if id == "" {
		return nil, errors.New("job id is required")
	}
	now := time.Now().UTC()
	timestamp := now.Format(timeFormat)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            id, input_file, source_path, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		nullableString(inputFile),
		nullableString(sourcePath),
		StatusQueued,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. Returns nil when no such job exists.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update persists changes to an existing job. All mutable fields are written
// in a single statement so no reader observes a partially applied record.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET input_file = ?, source_path = ?, output_file = ?, output_path = ?,
             status = ?, error_message = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(job.InputFile),
		nullableString(job.SourcePath),
		nullableString(job.OutputFile),
		nullableString(job.OutputPath),
		job.Status,
		nullableString(job.ErrorMessage),
		nullableString(job.ProgressMessage),
		job.UpdatedAt.Format(timeFormat),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update job %s: not found", job.ID)
	}
	return nil
}

// Remove deletes a job record. Returns false when no such job existed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove job: %w", err)
	}
	return affected > 0, nil
}

// List returns jobs filtered by status set (or all jobs when no status is
// provided), ordered by creation time.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ListIDs returns the identifiers of all jobs ordered by creation time.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM jobs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list job ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ClaimNext atomically moves the oldest job in the from status to the to
// status and returns it. Returns nil when no job is waiting. The compare-and
// -set guard keeps two workers from claiming the same job.
func (s *Store) ClaimNext(ctx context.Context, from, to Status) (*Job, error) {
	for {
		row := s.db.QueryRowContext(
			ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1`,
			from,
		)
		job, err := scanJob(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("claim next: %w", err)
		}

		now := time.Now().UTC()
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			to,
			now.Format(timeFormat),
			job.ID,
			from,
		)
		if err != nil {
			return nil, fmt.Errorf("claim next: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim next: %w", err)
		}
		if affected == 0 {
			// Lost the race for this job; try the next oldest.
			continue
		}

		job.Status = to
		job.UpdatedAt = now
		return job, nil
	}
}
