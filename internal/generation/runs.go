package generation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/db"
)

// RunRecorder persists generation runs.
type RunRecorder interface {
	Record(ctx context.Context, run *Run) error
}

// RunStore keeps the generation run history in SQLite.
type RunStore struct {
	db *db.DB
}

// NewRunStore creates a RunStore backed by the given database.
func NewRunStore(database *db.DB) *RunStore {
	return &RunStore{db: database}
}

// Record inserts a run. If run.ID is empty a UUID is generated.
func (s *RunStore) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_runs (
			id, kind, source, team_id, provider, status,
			error_kind, error_message, prompt_chars, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Kind),
		run.Source,
		run.TeamID,
		run.Provider,
		string(run.Status),
		run.ErrorKind,
		run.ErrorMessage,
		run.PromptChars,
		run.DurationMS,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting generation run: %w", err)
	}
	return nil
}

const runColumns = `id, kind, source, team_id, provider, status, error_kind, error_message, prompt_chars, duration_ms, created_at`

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r      Run
		teamID sql.NullInt64
	)
	if err := sc.Scan(&r.ID, &r.Kind, &r.Source, &teamID, &r.Provider, &r.Status,
		&r.ErrorKind, &r.ErrorMessage, &r.PromptChars, &r.DurationMS, &r.CreatedAt); err != nil {
		return nil, err
	}
	if teamID.Valid {
		id := teamID.Int64
		r.TeamID = &id
	}
	return &r, nil
}

// GetRun retrieves a single run. A missing run yields apperrors.ErrNotFound.
func (s *RunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM generation_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting generation run: %w", err)
	}
	return r, nil
}

// ListRuns returns runs matching the filter, newest first.
func (s *RunStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + runColumns + ` FROM generation_runs`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying generation runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning generation run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}
