package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/content-comb/app/cfg"
	"github.com/lysyi3m/content-comb/app/database"
	"github.com/lysyi3m/content-comb/app/webhook"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskQueueSize = 300
	taskTimeout   = 5 * time.Minute
	maxRetryDelay = 30 * time.Second
)

type Scheduler struct {
	repos       Repositories
	configCache *webhook.ConfigCache
	client      *webhook.Client
	parsers     *Parsers
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	// feed workflows with an import queued or running
	importing   map[string]bool
	importingMu sync.Mutex
}

func NewScheduler(configCache *webhook.ConfigCache, repos Repositories, client *webhook.Client, parsers *Parsers) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		repos:       repos,
		configCache: configCache,
		client:      client,
		parsers:     parsers,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, taskQueueSize),
		importing:   make(map[string]bool),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.syncConfigs()
		s.enqueueDueFeeds()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueFeeds()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// RunWorkflow records a pending execution and queues the task that runs it.
// Feed workflows store their rows under the client of their configuration.
func (s *Scheduler) RunWorkflow(config *webhook.Config, clientID string, params map[string]string) (*database.Execution, error) {
	if config.Kind == webhook.KindFeed {
		clientID = cmp.Or(clientID, config.ClientID)
	}
	if clientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}

	execution, err := s.repos.Executions.CreateExecution(config.Name, clientID, params)
	if err != nil {
		return nil, err
	}

	var task TaskInterface
	if config.Kind == webhook.KindFeed {
		task = NewImportFeedTask(config, execution, s.client, s.parsers, s.repos.Workflows, s.repos.Executions, s.repos.Rows)
	} else {
		task = NewRunWorkflowTask(config, execution, s.client, s.parsers, s.repos.Executions, s.repos.Rows)
	}

	if err := s.EnqueueTask(task); err != nil {
		if failErr := s.repos.Executions.FailExecution(execution.ID, database.ExecutionStatusFailed, err.Error()); failErr != nil {
			slog.Error("Failed to record execution error", "execution", execution.ID, "error", failErr)
		}
		return nil, fmt.Errorf("failed to enqueue workflow %s: %w", config.Name, err)
	}

	slog.Debug("Workflow execution queued", "workflow", config.Name, "kind", config.Kind, "execution", execution.ID)

	return execution, nil
}

// syncConfigs registers every configured workflow before feeds are scheduled,
// so their run times can be recorded.
func (s *Scheduler) syncConfigs() {
	configs := s.configCache.GetConfigs()
	if len(configs) == 0 {
		slog.Debug("No workflow configurations found")
		return
	}

	slog.Debug("Syncing workflow configurations", "count", len(configs))

	for _, config := range configs {
		s.executeTask(-1, NewSyncWorkflowConfigTask(config, s.repos.Workflows))
	}
}

func (s *Scheduler) enqueueDueFeeds() {
	configs := s.configCache.GetEnabledConfigs()

	for _, config := range configs {
		if config.Kind != webhook.KindFeed {
			continue
		}

		workflow, err := s.repos.Workflows.GetWorkflow(config.Name)
		if err != nil {
			slog.Warn("Failed to get workflow from database, skipping", "workflow", config.Name, "error", err)
			continue
		}
		if workflow == nil {
			slog.Warn("Workflow not found in database, skipping", "workflow", config.Name)
			continue
		}

		now := time.Now().UTC()
		if workflow.NextRunAt != nil && workflow.NextRunAt.After(now) {
			slog.Debug("Feed not due for refresh yet", "workflow", config.Name, "next_run_at", workflow.NextRunAt)
			continue
		}

		if !s.startImport(config.Name) {
			slog.Debug("Feed import already in progress", "workflow", config.Name)
			continue
		}

		if _, err := s.RunWorkflow(config, "", nil); err != nil {
			s.finishImport(config.Name)
			slog.Warn("Failed to enqueue ImportFeedTask", "workflow", config.Name, "error", err)
		}
	}
}

func (s *Scheduler) startImport(name string) bool {
	s.importingMu.Lock()
	defer s.importingMu.Unlock()

	if s.importing[name] {
		return false
	}
	s.importing[name] = true
	return true
}

func (s *Scheduler) finishImport(name string) {
	s.importingMu.Lock()
	defer s.importingMu.Unlock()
	delete(s.importing, name)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)

	if err == nil || !task.CanRetry() {
		if task.GetType() == TaskTypeImportFeed {
			s.finishImport(task.GetWorkflowName())
		}
	}

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > maxRetryDelay {
				retryDelay = maxRetryDelay
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "workflow", task.GetWorkflowName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						if task.GetType() == TaskTypeImportFeed {
							s.finishImport(task.GetWorkflowName())
						}
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
