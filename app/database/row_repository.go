package database

import (
	"fmt"
	"time"
)

type rowRepository struct {
	db *DB
}

func NewRowRepository(db *DB) RowRepository {
	return &rowRepository{db: db}
}

const rowColumns = `id, client_id, execution_id, date, channel, type, format, title, copy, cta,
	hashtags, payload, created_at`

func scanRow(s rowScanner) (*ContentRow, error) {
	var row ContentRow
	var createdAt string

	err := s.Scan(&row.ID, &row.ClientID, &row.ExecutionID, &row.Date, &row.Channel, &row.Type,
		&row.Format, &row.Title, &row.Copy, &row.CTA, &row.Hashtags, &row.Payload, &createdAt)
	if err != nil {
		return nil, err
	}
	if row.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *rowRepository) queryRows(query string, args ...any) ([]ContentRow, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content rows: %w", err)
	}
	defer rows.Close()

	var result []ContentRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}
		result = append(result, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content rows: %w", err)
	}
	return result, nil
}

// GetRows returns the calendar of a client ordered by date, then by insertion.
func (r *rowRepository) GetRows(clientID string, limit int) ([]ContentRow, error) {
	return r.queryRows(`
		SELECT `+rowColumns+`
		FROM content_rows
		WHERE client_id = ?
		ORDER BY date, id
		LIMIT ?
	`, clientID, limit)
}

func (r *rowRepository) GetRowsByExecution(executionID string) ([]ContentRow, error) {
	return r.queryRows(`
		SELECT `+rowColumns+`
		FROM content_rows
		WHERE execution_id = ?
		ORDER BY id
	`, executionID)
}

// GetRowCount counts the rows of a client, or of all clients when clientID is empty.
func (r *rowRepository) GetRowCount(clientID string) (int, error) {
	var count int
	var err error
	if clientID == "" {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM content_rows`).Scan(&count)
	} else {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM content_rows WHERE client_id = ?`, clientID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count content rows: %w", err)
	}
	return count, nil
}

// InsertRows stores rows in one transaction and reports how many were new.
func (r *rowRepository) InsertRows(clientID, executionID string, rows []RowInput) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO content_rows (
			client_id, execution_id, date, channel, type, format, title, copy, cta,
			hashtags, payload, fingerprint, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	inserted := 0
	for _, row := range rows {
		payload := row.Payload
		if payload == "" {
			payload = "{}"
		}
		res, err := stmt.Exec(clientID, executionID, row.Date, row.Channel, row.Type, row.Format,
			row.Title, row.Copy, row.CTA, row.Hashtags, payload, row.Fingerprint, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert content row: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit content rows: %w", err)
	}
	return inserted, nil
}

func (r *rowRepository) DeleteRow(clientID string, id int64) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM content_rows WHERE client_id = ? AND id = ?`, clientID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete content row %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	return n > 0, nil
}
