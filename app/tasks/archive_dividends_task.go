package tasks

import (
	"context"
	"log/slog"

	"github.com/Volkan-eles/yatirimx3-sub001/app/archive"
)

type ArchiveDividendsTask struct {
	Task
	archiver *archive.Archiver
}

func NewArchiveDividendsTask(archiver *archive.Archiver) *ArchiveDividendsTask {
	return &ArchiveDividendsTask{
		Task:     NewTask(TaskTypeArchiveDividends),
		archiver: archiver,
	}
}

func (t *ArchiveDividendsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summary, err := t.archiver.Run()
	if err != nil {
		return err
	}

	slog.Info("Dividend archival completed",
		"archived", summary.Archived, "active", summary.Active,
		"years", summary.Years, "pruned", summary.Pruned)

	return nil
}
