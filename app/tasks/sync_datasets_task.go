package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Volkan-eles/yatirimx3-sub001/app/cfg"
	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
	"github.com/Volkan-eles/yatirimx3-sub001/app/fetch"
)

type SyncDatasetsTask struct {
	Task
	client *fetch.Client
	store  *dataset.Store
}

func NewSyncDatasetsTask(client *fetch.Client, store *dataset.Store) *SyncDatasetsTask {
	return &SyncDatasetsTask{
		Task:   NewTask(TaskTypeSyncDatasets),
		client: client,
		store:  store,
	}
}

// Execute mirrors the upstream JSON feeds into the data directory,
// repairing encoding damage and unwrapping API envelopes on the way in.
// Feeds fail independently; the task reports the combined outcome.
func (t *SyncDatasetsTask) Execute(ctx context.Context) error {
	c := cfg.Get()

	feeds := []struct {
		file string
		url  string
	}{
		{"temettu.json", c.DividendURL},
		{"halkarz_target_prices.json", c.TargetPriceURL},
	}

	var errs []error
	for _, feed := range feeds {
		if feed.url == "" {
			continue
		}

		if err := t.syncFeed(ctx, feed.file, feed.url); err != nil {
			slog.Error("Failed to sync dataset", "file", feed.file, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", feed.file, err))
			continue
		}
		slog.Info("Dataset synced", "file", feed.file)
	}

	return errors.Join(errs...)
}

func (t *SyncDatasetsTask) syncFeed(ctx context.Context, file, url string) error {
	data, err := t.client.Get(ctx, url)
	if err != nil {
		return err
	}
	return t.store.SaveRaw(file, data)
}
