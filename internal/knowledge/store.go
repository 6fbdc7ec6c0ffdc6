package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/db"
)

// Store persists knowledge entries.
type Store struct {
	db *db.DB
}

// NewStore creates a new knowledge store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

const entryColumns = `id, title, content, category, team_id, tags, usage_count, source_path, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e      Entry
		teamID sql.NullInt64
		tags   string
	)
	if err := s.Scan(&e.ID, &e.Title, &e.Content, &e.Category, &teamID, &tags, &e.UsageCount, &e.SourcePath, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if teamID.Valid {
		id := teamID.Int64
		e.TeamID = &id
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of entry %d: %w", e.ID, err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(data), nil
}

// Create inserts a new entry and sets its ID.
func (s *Store) Create(ctx context.Context, e *Entry) error {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge_entries (title, content, category, team_id, tags, usage_count, source_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Content, e.Category, e.TeamID, tags, e.UsageCount, e.SourcePath, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating knowledge entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading knowledge entry id: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID. A missing entry yields apperrors.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM knowledge_entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting knowledge entry: %w", err)
	}
	return e, nil
}

// List returns entries matching f in storage order.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.TeamID != nil {
		if f.IncludeUniversal {
			where = append(where, "(team_id = ? OR category = ?)")
			args = append(args, *f.TeamID, CategoryUniversal)
		} else {
			where = append(where, "team_id = ?")
			args = append(args, *f.TeamID)
		}
	}

	query := `SELECT ` + entryColumns + ` FROM knowledge_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning knowledge entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// UpsertBySource creates the entry, or overwrites the entry previously
// imported from the same source path. It reports whether a row was created.
func (s *Store) UpsertBySource(ctx context.Context, e *Entry) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM knowledge_entries WHERE source_path = ? AND source_path != ''`, e.SourcePath,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return true, s.Create(ctx, e)
	}
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", e.SourcePath, err)
	}

	tags, err := encodeTags(e.Tags)
	if err != nil {
		return false, err
	}
	e.ID = id
	e.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE knowledge_entries SET title=?, content=?, category=?, team_id=?, tags=?, updated_at=?
		 WHERE id=?`,
		e.Title, e.Content, e.Category, e.TeamID, tags, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating knowledge entry: %w", err)
	}
	return false, nil
}

// IncrementUsage bumps the usage count of every listed entry by one.
func (s *Store) IncrementUsage(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE knowledge_entries SET usage_count = usage_count + 1 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("incrementing usage: %w", err)
	}
	return nil
}
