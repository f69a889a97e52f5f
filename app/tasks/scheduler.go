package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Volkan-eles/yatirimx3-sub001/app/cfg"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// RunPipelineTask wraps a full pipeline run so it can travel through the
// scheduler's queue as a single unit. Retries happen per stage inside the
// runner, so the wrapper itself never retries.
type RunPipelineTask struct {
	Task
	runner  *Runner
	factory func() []TaskInterface
}

func NewRunPipelineTask(runner *Runner, factory func() []TaskInterface) *RunPipelineTask {
	task := NewTask(TaskTypeRunPipeline)
	task.MaxRetries = 0

	return &RunPipelineTask{
		Task:    task,
		runner:  runner,
		factory: factory,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {
	return t.runner.Run(ctx, t.factory())
}

// Scheduler drives serve mode: a worker pool draining a task queue, plus a
// ticker that enqueues a fresh pipeline run every interval.
type Scheduler struct {
	runner      *Runner
	factory     func() []TaskInterface
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(runner *Runner, factory func() []TaskInterface) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	return &Scheduler{
		runner:      runner,
		factory:     factory,
		interval:    time.Duration(c.SchedulerInterval) * time.Second,
		workerCount: c.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 16),
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

		s.enqueuePipeline()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueuePipeline()
			}
		}
	}()
}

// Stop cancels the scheduler context and waits for the workers, the
// ticker loop and any pending retry goroutines. The queue is left open
// so a late EnqueueTask fails with the context error instead of
// panicking on a closed channel.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
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

func (s *Scheduler) enqueuePipeline() {
	if err := s.EnqueueTask(NewRunPipelineTask(s.runner, s.factory)); err != nil {
		slog.Warn("Failed to enqueue pipeline run", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 15*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID,
			"type", string(task.GetType()), "id", task.GetID(),
			"retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()),
				"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(),
				"delay", retryDelay.String())

			// The retry goroutine joins the WaitGroup so Stop cannot
			// close the queue while an enqueue is still pending.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()

				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry",
						"type", string(task.GetType()), "id", task.GetID())
					return
				case <-time.After(retryDelay):
				}

				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry",
						"type", string(task.GetType()), "id", task.GetID(),
						"retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()),
				"id", task.GetID(), "retry_count", task.GetRetryCount(),
				"max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
