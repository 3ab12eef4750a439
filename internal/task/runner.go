package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration

	// TaskTimeout bounds a single Execute call. Zero means no limit.
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
		TaskTimeout:            15 * time.Minute,
	}
}

// TaskRunner persists submitted tasks, feeds them to a WorkerPool and keeps
// their stored status current. Tasks left pending or processing by a previous
// run are rebuilt through the Registry on Start.
type TaskRunner struct {
	store    TaskStore
	registry *Registry
	queue    *TaskQueue
	pool     *WorkerPool
	config   TaskRunnerConfig
	logger   *slog.Logger

	errHandler func(task Task, err error)

	// inFlight holds IDs of tasks executing in this process, so the stuck
	// task monitor never requeues them.
	inFlight sync.Map

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, registry *Registry, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if registry == nil {
		registry = NewRegistry()
	}
	logger = logger.With("component", "task_runner")

	ctx, cancel := context.WithCancel(context.Background())

	r := &TaskRunner{
		store:      store,
		registry:   registry,
		queue:      NewTaskQueue(config.QueueSize, logger),
		config:     config,
		logger:     logger,
		ctx:        ctx,
		cancelFunc: cancel,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
	r.pool = NewWorkerPool(r.queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, r.processTask, logger)
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit saves the task and queues it. A task the queue cannot take is marked
// failed so it is not picked up again by recovery.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark unqueued task as failed",
				"task_id", task.ID(),
				"error", updateErr)
		}
		return err
	}
	return nil
}

// Start recovers unfinished tasks, then starts the workers and the stuck task
// monitor.
func (r *TaskRunner) Start(ctx context.Context) error {
	if err := r.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.pool.Start()

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner. Tasks interrupted by the
// shutdown keep their processing status and are recovered on the next start.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.pool.Stop()
	r.queue.Close()
}

// Recover loads any unfinished tasks from the store and queues them again.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	// Any processing task belongs to a previous run; age does not matter here.
	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, rec := range pending {
		r.requeue(ctx, rec, false, "")
	}
	for _, rec := range processing {
		r.requeue(ctx, rec, true, "reset after recovery")
	}

	return nil
}

// requeue rebuilds rec and queues it, first resetting it to pending when
// reset is set. Records that cannot be rebuilt are marked failed.
func (r *TaskRunner) requeue(ctx context.Context, rec Record, reset bool, reason string) {
	log := r.logger.With("task_id", rec.ID, "task_type", rec.Type)

	task, err := r.registry.Rehydrate(rec)
	if err != nil {
		log.Error("failed to rebuild stored task", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark task as failed", "error", updateErr)
		}
		return
	}

	if reset {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, reason); err != nil {
			log.Error("failed to reset task status", "error", err)
			return
		}
	}

	if err := r.queue.Enqueue(task); err != nil {
		// The task stays pending in the store and is picked up on the next start.
		log.Error("failed to requeue task", "error", err)
		return
	}
	log.Info("requeued task", "reset", reset)
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	log := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	r.inFlight.Store(task.ID(), struct{}{})
	defer r.inFlight.Delete(task.ID())

	// Status writes use a context that survives shutdown.
	storeCtx := context.WithoutCancel(ctx)

	if err := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", "error", err)
		return
	}

	log.Info("processing task")

	execCtx := ctx
	if r.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.config.TaskTimeout)
		defer cancel()
	}

	err := task.Execute(execCtx)

	switch {
	case err == nil:
		log.Info("task completed successfully")
		if updateErr := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
			log.Error("failed to update task status to completed", "error", updateErr)
		}

	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		log.Warn("task interrupted by shutdown, leaving it for recovery")

	default:
		if updateErr := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(task, err)
	}
}

// stuckTaskMonitor periodically resets tasks that have been in "processing"
// state for too long and are not running in this process.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckTasks(r.ctx)
		}
	}
}

func (r *TaskRunner) resetStuckTasks(ctx context.Context) {
	stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", "error", err)
		return
	}

	var count int
	for _, rec := range stuck {
		if r.running(rec.ID) {
			continue
		}
		count++
		r.requeue(ctx, rec, true, "reset after being stuck in processing state")
	}
	if count > 0 {
		r.logger.Info("reset stuck tasks", "count", count)
	}
}

func (r *TaskRunner) running(id uuid.UUID) bool {
	_, ok := r.inFlight.Load(id)
	return ok
}
