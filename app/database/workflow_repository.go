package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type workflowRepository struct {
	db *DB
}

func NewWorkflowRepository(db *DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

const workflowColumns = `name, kind, url, last_run_at, next_run_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(s rowScanner) (*Workflow, error) {
	var w Workflow
	var lastRun, nextRun sql.NullString
	var createdAt, updatedAt string

	if err := s.Scan(&w.Name, &w.Kind, &w.URL, &lastRun, &nextRun, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if w.LastRunAt, err = parseNullTime(lastRun); err != nil {
		return nil, err
	}
	if w.NextRunAt, err = parseNullTime(nextRun); err != nil {
		return nil, err
	}
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *workflowRepository) GetWorkflow(name string) (*Workflow, error) {
	row := r.db.QueryRow(`SELECT `+workflowColumns+` FROM workflows WHERE name = ?`, name)

	w, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow %s: %w", name, err)
	}
	return w, nil
}

func (r *workflowRepository) GetWorkflows() ([]Workflow, error) {
	rows, err := r.db.Query(`SELECT ` + workflowColumns + ` FROM workflows ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}
		workflows = append(workflows, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflow rows: %w", err)
	}
	return workflows, nil
}

func (r *workflowRepository) GetWorkflowCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM workflows`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count workflows: %w", err)
	}
	return count, nil
}

func (r *workflowRepository) UpsertWorkflow(name, kind, url string) error {
	now := formatTime(time.Now())

	_, err := r.db.Exec(`
		INSERT INTO workflows (name, kind, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			kind = excluded.kind,
			url = excluded.url,
			updated_at = excluded.updated_at
	`, name, kind, url, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert workflow %s: %w", name, err)
	}
	return nil
}

// UpdateNextRun records a finished run and when the next one is due.
func (r *workflowRepository) UpdateNextRun(name string, nextRun time.Time) error {
	now := formatTime(time.Now())

	res, err := r.db.Exec(`
		UPDATE workflows
		SET last_run_at = ?, next_run_at = ?, updated_at = ?
		WHERE name = ?
	`, now, formatTime(nextRun), now, name)
	if err != nil {
		return fmt.Errorf("failed to update next run for %s: %w", name, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("workflow %s not found", name)
	}
	return nil
}
