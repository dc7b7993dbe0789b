package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/content-comb/app/database"
)

type TaskType string

const (
	TaskTypeRunWorkflow        TaskType = "run_workflow"
	TaskTypeImportFeed         TaskType = "import_feed"
	TaskTypeSyncWorkflowConfig TaskType = "sync_workflow_config"
)

const DefaultMaxRetries = 3

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetWorkflowName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

// Task carries what the scheduler needs to run, retry and log a unit of
// work. Tasks that act on an execution also carry its ID and client, and
// record every attempt on it.
type Task struct {
	ID          string
	Type        TaskType
	Workflow    string
	ExecutionID string
	ClientID    string
	RetryCount  int
	MaxRetries  int
	StartedAt   *time.Time
}

func NewTask(taskType TaskType, workflow string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Workflow:   workflow,
		MaxRetries: DefaultMaxRetries,
	}
}

func newExecutionTask(taskType TaskType, workflow string, execution *database.Execution) Task {
	task := NewTask(taskType, workflow)
	task.ExecutionID = execution.ID
	task.ClientID = execution.ClientID
	return task
}

func (t *Task) GetID() string { return t.ID }
func (t *Task) GetType() TaskType { return t.Type }
func (t *Task) GetWorkflowName() string { return t.Workflow }
func (t *Task) GetRetryCount() int { return t.RetryCount }
func (t *Task) GetMaxRetries() int { return t.MaxRetries }
func (t *Task) IncrementRetryCount() { t.RetryCount++ }
func (t *Task) CanRetry() bool { return t.RetryCount < t.MaxRetries }

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

// beginAttempt marks the execution running unless ctx is already done.
func (t *Task) beginAttempt(ctx context.Context, executions database.ExecutionRepository) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := executions.MarkRunning(t.ExecutionID); err != nil {
		return fmt.Errorf("failed to mark execution running: %w", err)
	}
	return nil
}

// failureStatus is the status a failed attempt leaves on the execution:
// retrying while the scheduler will run the task again, failed after that.
func (t *Task) failureStatus() string {
	if t.CanRetry() {
		return database.ExecutionStatusRetrying
	}
	return database.ExecutionStatusFailed
}

// recordFailure stores err on the execution and returns the status it was
// stored with. A store error is logged; err is what the attempt reports.
func (t *Task) recordFailure(executions database.ExecutionRepository, err error) string {
	status := t.failureStatus()
	if recordErr := executions.FailExecution(t.ExecutionID, status, err.Error()); recordErr != nil {
		slog.Error("Failed to record execution error", "execution", t.ExecutionID, "error", recordErr)
	}
	return status
}
