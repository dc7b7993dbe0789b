package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"

	"github.com/lysyi3m/content-comb/app/content"
	"github.com/lysyi3m/content-comb/app/database"
	"github.com/lysyi3m/content-comb/app/webhook"
)

const (
	ParamClientID      = "client_id"
	ParamTitle         = "title"
	ParamReferenceURL  = "reference_url"
	ParamReferenceText = "reference_text"
)

// RunWorkflowTask calls a generation webhook for one execution and stores
// what its response parses into.
type RunWorkflowTask struct {
	Task
	Config        *webhook.Config
	Params        map[string]string
	client        *webhook.Client
	parsers       *Parsers
	executionRepo database.ExecutionRepository
	rowRepo       database.RowRepository
}

func NewRunWorkflowTask(config *webhook.Config, execution *database.Execution, client *webhook.Client,
	parsers *Parsers, executionRepo database.ExecutionRepository, rowRepo database.RowRepository) *RunWorkflowTask {
	return &RunWorkflowTask{
		Task:          newExecutionTask(TaskTypeRunWorkflow, config.Name, execution),
		Config:        config,
		Params:        execution.Params,
		client:        client,
		parsers:       parsers,
		executionRepo: executionRepo,
		rowRepo:       rowRepo,
	}
}

func (t *RunWorkflowTask) Execute(ctx context.Context) error {
	if err := t.beginAttempt(ctx, t.executionRepo); err != nil {
		return err
	}

	params := make(map[string]string, len(t.Params)+2)
	maps.Copy(params, t.Params)
	if params[ParamClientID] == "" {
		params[ParamClientID] = t.ClientID
	}
	t.enrichReference(ctx, params)

	resp, err := t.client.Post(ctx, t.Config, params)
	if err != nil {
		return t.fail(fmt.Errorf("webhook call failed: %w", err))
	}

	result, rows := t.parse(resp.Body, params)

	encoded, err := json.Marshal(result)
	if err != nil {
		return t.fail(fmt.Errorf("failed to encode result: %w", err))
	}

	inserted, err := t.rowRepo.InsertRows(t.ClientID, t.ExecutionID, rows)
	if err != nil {
		return t.fail(fmt.Errorf("failed to store rows: %w", err))
	}

	if err := t.executionRepo.CompleteExecution(t.ExecutionID, string(resp.Body), encoded); err != nil {
		return fmt.Errorf("failed to complete execution: %w", err)
	}

	slog.Info("Task completed",
		"type", "RunWorkflow",
		"workflow", t.Workflow,
		"kind", t.Config.Kind,
		"execution", t.ExecutionID,
		"duration", t.GetDuration(),
		"webhook_duration", resp.Duration,
		"rows", inserted)

	return nil
}

// parse maps a webhook response to the execution result and the calendar
// rows it contributes, depending on the workflow kind.
func (t *RunWorkflowTask) parse(body []byte, params map[string]string) (any, []database.RowInput) {
	switch t.Config.Kind {
	case webhook.KindIdeas:
		items := t.parsers.Normalizer.Run(body)
		items = t.parsers.Filterer.Run(items, t.Config.Filters)
		return items, ideaRows(items)

	case webhook.KindSocial:
		table := t.parsers.TableParser.Run(content.ExtractText(body))
		return table, socialRows(table)

	case webhook.KindOutline:
		return t.parsers.Outline.Run(content.ExtractText(body), params[ParamTitle]), nil

	default:
		return map[string]string{"markdown": content.ExtractText(body)}, nil
	}
}

// enrichReference adds the readable text of reference_url to the params.
// A reference that cannot be fetched does not fail the run.
func (t *RunWorkflowTask) enrichReference(ctx context.Context, params map[string]string) {
	url := params[ParamReferenceURL]
	if url == "" || params[ParamReferenceText] != "" {
		return
	}

	resp, err := t.client.Get(ctx, url, t.Config.TimeoutDuration())
	if err != nil {
		slog.Warn("Failed to fetch reference", "workflow", t.Workflow, "url", url, "error", err)
		return
	}

	text, err := t.parsers.Reference.Run(resp.Body)
	if err != nil {
		slog.Warn("Failed to extract reference", "workflow", t.Workflow, "url", url, "error", err)
		return
	}

	params[ParamReferenceText] = text
}

func (t *RunWorkflowTask) fail(err error) error {
	t.recordFailure(t.executionRepo, err)
	return err
}
