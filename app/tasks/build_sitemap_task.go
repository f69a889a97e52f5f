package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Volkan-eles/yatirimx3-sub001/app/cfg"
	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
	"github.com/Volkan-eles/yatirimx3-sub001/app/sitemap"
	"github.com/Volkan-eles/yatirimx3-sub001/app/sources"
)

type BuildSitemapTask struct {
	Task
	store *dataset.Store
}

func NewBuildSitemapTask(store *dataset.Store) *BuildSitemapTask {
	return &BuildSitemapTask{
		Task:  NewTask(TaskTypeBuildSitemap),
		store: store,
	}
}

func (t *BuildSitemapTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	config, err := sources.Load(cfg.Get().SourcesFile)
	if err != nil {
		return fmt.Errorf("failed to load catalog sources: %w", err)
	}

	entries := sitemap.NewBuilder(config, t.store).Run()

	if err := sitemap.WriteFile(t.store.Path("sitemap.xml"), entries); err != nil {
		return err
	}

	slog.Info("Sitemap generated", "urls", len(entries))
	return nil
}
