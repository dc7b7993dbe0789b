package database

import (
	"encoding/json"
	"time"
)

type Workflow struct {
	Name      string // Configuration identifier derived from filename
	Kind      string
	URL       string
	LastRunAt *time.Time
	NextRunAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	ExecutionStatusPending  = "pending"
	ExecutionStatusRunning  = "running"
	ExecutionStatusRetrying = "retrying"
	ExecutionStatusSuccess  = "success"
	ExecutionStatusFailed   = "failed"
)

type Execution struct {
	ID         string
	Workflow   string
	ClientID   string
	Status     string
	Params     map[string]string
	Response   string          // Raw webhook response body
	Result     json.RawMessage // Parsed result, shape depends on workflow kind
	Error      string
	Attempts   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

type ContentRow struct {
	ID          int64
	ClientID    string
	ExecutionID string
	Date        string
	Channel     string
	Type        string
	Format      string
	Title       string
	Copy        string
	CTA         string
	Hashtags    string
	Payload     string // Source row as JSON
	CreatedAt   time.Time
}
