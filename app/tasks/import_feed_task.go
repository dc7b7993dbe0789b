package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/content-comb/app/database"
	"github.com/lysyi3m/content-comb/app/webhook"
)

// ImportFeedTask reads an inspiration feed into a client's idea rows.
type ImportFeedTask struct {
	Task
	Config        *webhook.Config
	client        *webhook.Client
	parsers       *Parsers
	workflowRepo  database.WorkflowRepository
	executionRepo database.ExecutionRepository
	rowRepo       database.RowRepository
}

func NewImportFeedTask(config *webhook.Config, execution *database.Execution, client *webhook.Client, parsers *Parsers,
	workflowRepo database.WorkflowRepository, executionRepo database.ExecutionRepository, rowRepo database.RowRepository) *ImportFeedTask {
	return &ImportFeedTask{
		Task:          newExecutionTask(TaskTypeImportFeed, config.Name, execution),
		Config:        config,
		client:        client,
		parsers:       parsers,
		workflowRepo:  workflowRepo,
		executionRepo: executionRepo,
		rowRepo:       rowRepo,
	}
}

func (t *ImportFeedTask) Execute(ctx context.Context) error {
	if err := t.beginAttempt(ctx, t.executionRepo); err != nil {
		return err
	}

	resp, err := t.client.Get(ctx, t.Config.URL, t.Config.TimeoutDuration())
	if err != nil {
		return t.fail(fmt.Errorf("failed to fetch feed: %w", err))
	}

	items, err := t.parsers.FeedReader.Run(resp.Body)
	if err != nil {
		return t.fail(err)
	}
	total := len(items)

	items = t.parsers.Filterer.Run(items, t.Config.Filters)
	if len(items) > t.Config.Settings.MaxItems {
		items = items[:t.Config.Settings.MaxItems]
	}

	rows := ideaRows(items)
	for i, item := range items {
		rows[i].Fingerprint = contentHash(item)
	}

	inserted, err := t.rowRepo.InsertRows(t.ClientID, t.ExecutionID, rows)
	if err != nil {
		return t.fail(fmt.Errorf("failed to store rows: %w", err))
	}

	result, err := json.Marshal(items)
	if err != nil {
		return t.fail(fmt.Errorf("failed to encode result: %w", err))
	}

	if err := t.executionRepo.CompleteExecution(t.ExecutionID, string(resp.Body), result); err != nil {
		return fmt.Errorf("failed to complete execution: %w", err)
	}

	if err := t.scheduleNext(); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "ImportFeed",
		"workflow", t.Workflow,
		"duration", t.GetDuration(),
		"total", total,
		"filtered", total-len(items),
		"new", inserted)

	return nil
}

func (t *ImportFeedTask) scheduleNext() error {
	nextRun := time.Now().UTC().Add(t.Config.RefreshDuration())
	if err := t.workflowRepo.UpdateNextRun(t.Workflow, nextRun); err != nil {
		return fmt.Errorf("failed to update next run: %w", err)
	}
	return nil
}

// fail records err on the execution. Once retries are exhausted the feed
// waits for its next refresh instead of being picked up on every tick.
func (t *ImportFeedTask) fail(err error) error {
	if t.recordFailure(t.executionRepo, err) == database.ExecutionStatusFailed {
		if scheduleErr := t.scheduleNext(); scheduleErr != nil {
			slog.Warn("Failed to reschedule feed", "workflow", t.Workflow, "error", scheduleErr)
		}
	}

	return err
}
