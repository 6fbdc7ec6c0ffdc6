package teams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/db"
)

// Store provides CRUD operations for teams.
type Store struct {
	db *db.DB
}

// NewStore creates a new team store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

const teamColumns = `id, name, description, context_info, tech_stack, key_contacts, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTeam(s scanner) (*Team, error) {
	t := &Team{}
	if err := s.Scan(&t.ID, &t.Name, &t.Description, &t.ContextInfo, &t.TechStack, &t.KeyContacts, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTeam inserts a new team and sets its ID.
func (s *Store) CreateTeam(ctx context.Context, t *Team) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (name, description, context_info, tech_stack, key_contacts, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Description, t.ContextInfo, t.TechStack, t.KeyContacts, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating team: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading team id: %w", err)
	}
	return nil
}

// GetTeam retrieves a team by ID. A missing team yields apperrors.ErrNotFound.
func (s *Store) GetTeam(ctx context.Context, id int64) (*Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting team: %w", err)
	}
	return t, nil
}

// GetTeamByName retrieves a team by its unique name.
func (s *Store) GetTeamByName(ctx context.Context, name string) (*Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting team by name: %w", err)
	}
	return t, nil
}

// ListTeams returns all teams ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

// UpdateTeam overwrites a team's descriptive fields.
func (s *Store) UpdateTeam(ctx context.Context, t *Team) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE teams SET name=?, description=?, context_info=?, tech_stack=?, key_contacts=?, updated_at=?
		 WHERE id=?`,
		t.Name, t.Description, t.ContextInfo, t.TechStack, t.KeyContacts, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating team: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
