package database

import (
	"time"
)

type RowInput struct {
	Date     string
	Channel  string
	Type     string
	Format   string
	Title    string
	Copy     string
	CTA      string
	Hashtags string
	Payload  string

	// Rows with a fingerprint are inserted once per client.
	Fingerprint string
}

type WorkflowRepository interface {
	GetWorkflow(name string) (*Workflow, error)
	GetWorkflows() ([]Workflow, error)
	GetWorkflowCount() (int, error)

	UpsertWorkflow(name, kind, url string) error
	UpdateNextRun(name string, nextRun time.Time) error
}

type ExecutionRepository interface {
	CreateExecution(workflow, clientID string, params map[string]string) (*Execution, error)
	GetExecution(id string) (*Execution, error)
	ListExecutions(clientID string, limit int) ([]Execution, error)
	GetExecutionStats() (map[string]int, error)

	MarkRunning(id string) error
	CompleteExecution(id, response string, result []byte) error
	FailExecution(id, status, errorMsg string) error
}

type RowRepository interface {
	GetRows(clientID string, limit int) ([]ContentRow, error)
	GetRowsByExecution(executionID string) ([]ContentRow, error)
	GetRowCount(clientID string) (int, error)

	InsertRows(clientID, executionID string, rows []RowInput) (int, error)
	DeleteRow(clientID string, id int64) (bool, error)
}
