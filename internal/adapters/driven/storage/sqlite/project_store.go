package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore persists projects in the projects table.
type ProjectStore struct {
	db *sql.DB
}

// Save stores or updates a project.
func (s *ProjectStore) Save(ctx context.Context, project domain.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		project.ID, project.Name, boolInt(project.Active),
		formatTime(project.CreatedAt), formatTime(project.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, active, created_at, updated_at FROM projects WHERE id = ?", id)
	return scanProject(row)
}

// List returns all projects ordered by creation time.
func (s *ProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, active, created_at, updated_at FROM projects ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Delete removes a project; foreign keys cascade to everything it owns.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireAffected(res)
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var active int
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &active, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.Active = active != 0
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}
