package tasks

import (
	"github.com/lysyi3m/content-comb/app/database"
	"github.com/lysyi3m/content-comb/app/webhook"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing and by
// the API to start workflow executions.
// Example usage:
//
//	scheduler := NewScheduler(configCache, repos, client, parsers)
//	scheduler.Start()
//	defer scheduler.Stop()
//	execution, err := scheduler.RunWorkflow(config, "acme", params)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	RunWorkflow(config *webhook.Config, clientID string, params map[string]string) (*database.Execution, error)
}

type Repositories struct {
	Workflows  database.WorkflowRepository
	Executions database.ExecutionRepository
	Rows       database.RowRepository
}
