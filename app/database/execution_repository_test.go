package database

import (
	"testing"
)

func TestExecutionRepositoryLifecycle(t *testing.T) {
	repo := NewExecutionRepository(setupTestDB(t))

	e, err := repo.CreateExecution("outline", "acme", map[string]string{"title": "Guía"})
	if err != nil {
		t.Fatalf("Failed to create execution: %v", err)
	}
	if e.ID == "" {
		t.Fatal("Expected execution ID")
	}
	if e.Status != ExecutionStatusPending {
		t.Errorf("Expected status %s, got %s", ExecutionStatusPending, e.Status)
	}

	if err := repo.MarkRunning(e.ID); err != nil {
		t.Fatalf("Failed to mark running: %v", err)
	}
	if err := repo.FailExecution(e.ID, ExecutionStatusRetrying, "timeout"); err != nil {
		t.Fatalf("Failed to record retry: %v", err)
	}

	got, err := repo.GetExecution(e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != ExecutionStatusRetrying || got.Error != "timeout" || got.Attempts != 1 {
		t.Errorf("Unexpected retrying execution: %+v", got)
	}
	if got.FinishedAt != nil {
		t.Error("Expected retrying execution to stay unfinished")
	}

	if err := repo.MarkRunning(e.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.CompleteExecution(e.ID, `{"output":"H1: Guía"}`, []byte(`[{"level":"H1"}]`)); err != nil {
		t.Fatalf("Failed to complete execution: %v", err)
	}

	got, err = repo.GetExecution(e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != ExecutionStatusSuccess {
		t.Errorf("Expected status %s, got %s", ExecutionStatusSuccess, got.Status)
	}
	if got.Error != "" {
		t.Errorf("Expected error to be cleared, got %q", got.Error)
	}
	if got.Attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", got.Attempts)
	}
	if string(got.Result) != `[{"level":"H1"}]` {
		t.Errorf("Expected stored result, got %s", got.Result)
	}
	if got.Params["title"] != "Guía" {
		t.Errorf("Expected title param, got %v", got.Params)
	}
	if got.FinishedAt == nil {
		t.Error("Expected finished_at to be set")
	}
}

func TestExecutionRepositoryNotFound(t *testing.T) {
	repo := NewExecutionRepository(setupTestDB(t))

	e, err := repo.GetExecution("missing")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if e != nil {
		t.Errorf("Expected nil execution, got %+v", e)
	}
}

func TestExecutionRepositoryListAndStats(t *testing.T) {
	repo := NewExecutionRepository(setupTestDB(t))

	var ids []string
	for range 3 {
		e, err := repo.CreateExecution("ideas", "acme", nil)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, e.ID)
	}
	if _, err := repo.CreateExecution("ideas", "other", nil); err != nil {
		t.Fatal(err)
	}
	if err := repo.FailExecution(ids[0], ExecutionStatusFailed, "boom"); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListExecutions("acme", 2)
	if err != nil {
		t.Fatalf("Failed to list executions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 executions, got %d", len(list))
	}
	if list[0].ID != ids[2] {
		t.Errorf("Expected newest execution first, got %s", list[0].ID)
	}

	stats, err := repo.GetExecutionStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats[ExecutionStatusPending] != 3 || stats[ExecutionStatusFailed] != 1 {
		t.Errorf("Unexpected stats: %v", stats)
	}
}
