package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/content-comb/app/database"
	"github.com/lysyi3m/content-comb/app/webhook"
)

type SyncWorkflowConfigTask struct {
	Task
	Config       *webhook.Config
	workflowRepo database.WorkflowRepository
}

func NewSyncWorkflowConfigTask(config *webhook.Config, workflowRepo database.WorkflowRepository) *SyncWorkflowConfigTask {
	return &SyncWorkflowConfigTask{
		Task:         NewTask(TaskTypeSyncWorkflowConfig, config.Name),
		Config:       config,
		workflowRepo: workflowRepo,
	}
}

func (t *SyncWorkflowConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.workflowRepo.UpsertWorkflow(t.Config.Name, t.Config.Kind, t.Config.URL); err != nil {
		return fmt.Errorf("failed to sync workflow config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncWorkflowConfig",
		"workflow", t.Workflow,
		"duration", t.GetDuration())

	return nil
}
