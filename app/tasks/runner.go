package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Volkan-eles/yatirimx3-sub001/app/database"
)

// Runner executes a batch of tasks strictly in order, retrying each with
// the same exponential backoff the scheduler uses and recording every
// attempt in the run ledger. A task that exhausts its retries does not stop
// the tasks after it; the combined failure is reported at the end.
type Runner struct {
	runs database.RunRepository
}

func NewRunner(runs database.RunRepository) *Runner {
	return &Runner{runs: runs}
}

func (r *Runner) Run(ctx context.Context, taskList []TaskInterface) error {
	var failed []string

	for _, task := range taskList {
		if err := r.runTask(ctx, task); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Task failed after maximum retries",
				"type", string(task.GetType()), "retry_count", task.GetRetryCount(),
				"max_retries", task.GetMaxRetries(), "last_error", err)
			failed = append(failed, string(task.GetType()))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("tasks failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (r *Runner) runTask(ctx context.Context, task TaskInterface) error {
	for {
		task.Start()
		startedAt := time.Now().UTC()
		err := task.Execute(ctx)
		finishedAt := time.Now().UTC()

		r.record(task, startedAt, finishedAt, err)

		if err == nil {
			slog.Info("Task completed", "type", string(task.GetType()),
				"duration", task.GetDuration().String())
			return nil
		}

		if ctx.Err() != nil {
			return err
		}
		if !task.CanRetry() {
			return err
		}

		task.IncrementRetryCount()
		retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}

		slog.Warn("Task retry scheduled", "type", string(task.GetType()),
			"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(),
			"delay", retryDelay.String(), "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

func (r *Runner) record(task TaskInterface, startedAt, finishedAt time.Time, err error) {
	if r.runs == nil {
		return
	}

	status, detail := database.RunStatusSuccess, ""
	if err != nil {
		status, detail = database.RunStatusError, err.Error()
	}

	if recordErr := r.runs.RecordRun(string(task.GetType()), startedAt, finishedAt, status, detail); recordErr != nil {
		slog.Warn("Failed to record run", "type", string(task.GetType()), "error", recordErr)
	}
}
