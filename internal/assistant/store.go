package assistant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/db"
)

// ErrFeedbackRecorded is returned when a query already carries feedback.
var ErrFeedbackRecorded = errors.New("feedback already recorded")

// QueryStore persists assistant queries.
type QueryStore struct {
	db *db.DB
}

// NewQueryStore creates a new query store.
func NewQueryStore(d *db.DB) *QueryStore {
	return &QueryStore{db: d}
}

const queryColumns = `id, question, response, team_id, response_time, user_feedback, feedback_comments, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanQuery(s scanner) (*Query, error) {
	var (
		q        Query
		teamID   sql.NullInt64
		feedback sql.NullInt64
	)
	if err := s.Scan(&q.ID, &q.Question, &q.Response, &teamID, &q.ResponseTime, &feedback, &q.FeedbackComments, &q.CreatedAt); err != nil {
		return nil, err
	}
	if teamID.Valid {
		id := teamID.Int64
		q.TeamID = &id
	}
	if feedback.Valid {
		rating := int(feedback.Int64)
		q.UserFeedback = &rating
	}
	return &q, nil
}

// CreateQuery inserts a query record and sets its ID.
func (s *QueryStore) CreateQuery(ctx context.Context, q *Query) error {
	q.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO qa_queries (question, response, team_id, response_time, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		q.Question, q.Response, q.TeamID, q.ResponseTime, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating query: %w", err)
	}
	q.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading query id: %w", err)
	}
	return nil
}

// GetQuery retrieves a query by ID. A missing query yields apperrors.ErrNotFound.
func (s *QueryStore) GetQuery(ctx context.Context, id int64) (*Query, error) {
	q, err := scanQuery(s.db.QueryRowContext(ctx,
		`SELECT `+queryColumns+` FROM qa_queries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting query: %w", err)
	}
	return q, nil
}

// ListQueries returns queries newest first.
func (s *QueryStore) ListQueries(ctx context.Context, f QueryFilter) ([]Query, error) {
	query := `SELECT ` + queryColumns + ` FROM qa_queries`
	var args []any
	if f.TeamID != nil {
		query += ` WHERE team_id = ?`
		args = append(args, *f.TeamID)
	}
	query += ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing queries: %w", err)
	}
	defer rows.Close()

	var queries []Query
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning query: %w", err)
		}
		queries = append(queries, *q)
	}
	return queries, rows.Err()
}

// RecordFeedback stores a rating on a query. Feedback is accepted once:
// a second call yields ErrFeedbackRecorded.
func (s *QueryStore) RecordFeedback(ctx context.Context, id int64, rating int, comments string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE qa_queries SET user_feedback = ?, feedback_comments = ?
		 WHERE id = ? AND user_feedback IS NULL`,
		rating, comments, id,
	)
	if err != nil {
		return fmt.Errorf("recording feedback: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := s.GetQuery(ctx, id); err != nil {
		return err
	}
	return ErrFeedbackRecorded
}
