package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type executionRepository struct {
	db *DB
}

func NewExecutionRepository(db *DB) ExecutionRepository {
	return &executionRepository{db: db}
}

const executionColumns = `id, workflow, client_id, status, params, response, result, error,
	attempts, created_at, updated_at, finished_at`

func scanExecution(s rowScanner) (*Execution, error) {
	var e Execution
	var params, result, createdAt, updatedAt string
	var finishedAt sql.NullString

	err := s.Scan(&e.ID, &e.Workflow, &e.ClientID, &e.Status, &params, &e.Response, &result,
		&e.Error, &e.Attempts, &createdAt, &updatedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(params), &e.Params); err != nil {
		return nil, fmt.Errorf("failed to decode params: %w", err)
	}
	e.Result = json.RawMessage(result)

	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if e.FinishedAt, err = parseNullTime(finishedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *executionRepository) CreateExecution(workflow, clientID string, params map[string]string) (*Execution, error) {
	if params == nil {
		params = map[string]string{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}

	now := time.Now().UTC()
	e := &Execution{
		ID:        uuid.NewString(),
		Workflow:  workflow,
		ClientID:  clientID,
		Status:    ExecutionStatusPending,
		Params:    params,
		Result:    json.RawMessage("null"),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.Exec(`
		INSERT INTO executions (id, workflow, client_id, status, params, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Workflow, e.ClientID, e.Status, string(encoded), formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create execution: %w", err)
	}
	return e, nil
}

func (r *executionRepository) GetExecution(id string) (*Execution, error) {
	row := r.db.QueryRow(`SELECT `+executionColumns+` FROM executions WHERE id = ?`, id)

	e, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get execution %s: %w", id, err)
	}
	return e, nil
}

// ListExecutions returns the newest executions of a client first.
func (r *executionRepository) ListExecutions(clientID string, limit int) ([]Execution, error) {
	rows, err := r.db.Query(`
		SELECT `+executionColumns+`
		FROM executions
		WHERE client_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var executions []Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution row: %w", err)
		}
		executions = append(executions, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate execution rows: %w", err)
	}
	return executions, nil
}

func (r *executionRepository) GetExecutionStats() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM executions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get execution stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan execution stats: %w", err)
		}
		stats[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate execution stats: %w", err)
	}
	return stats, nil
}

func (r *executionRepository) MarkRunning(id string) error {
	_, err := r.db.Exec(`
		UPDATE executions
		SET status = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = ?
	`, ExecutionStatusRunning, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to mark execution %s running: %w", id, err)
	}
	return nil
}

func (r *executionRepository) CompleteExecution(id, response string, result []byte) error {
	if len(result) == 0 {
		result = []byte("null")
	}
	now := formatTime(time.Now())

	_, err := r.db.Exec(`
		UPDATE executions
		SET status = ?, response = ?, result = ?, error = '', updated_at = ?, finished_at = ?
		WHERE id = ?
	`, ExecutionStatusSuccess, response, string(result), now, now, id)
	if err != nil {
		return fmt.Errorf("failed to complete execution %s: %w", id, err)
	}
	return nil
}

// FailExecution records an error. Only the failed status is terminal.
func (r *executionRepository) FailExecution(id, status, errorMsg string) error {
	now := time.Now()
	var finishedAt *time.Time
	if status == ExecutionStatusFailed {
		finishedAt = &now
	}

	_, err := r.db.Exec(`
		UPDATE executions
		SET status = ?, error = ?, updated_at = ?, finished_at = ?
		WHERE id = ?
	`, status, errorMsg, formatTime(now), formatNullTime(finishedAt), id)
	if err != nil {
		return fmt.Errorf("failed to fail execution %s: %w", id, err)
	}
	return nil
}
