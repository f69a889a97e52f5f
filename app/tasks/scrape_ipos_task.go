package tasks

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Volkan-eles/yatirimx3-sub001/app/cfg"
	"github.com/Volkan-eles/yatirimx3-sub001/app/database"
	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
	"github.com/Volkan-eles/yatirimx3-sub001/app/fetch"
	"github.com/Volkan-eles/yatirimx3-sub001/app/ipo"
)

const ipoFile = "halkarz_ipos.json"

const (
	statusActive = "Yeni"
	statusDraft  = "Taslak"
)

type ScrapeIPOsTask struct {
	Task
	client *fetch.Client
	store  *dataset.Store
	pages  database.PageRepository
}

func NewScrapeIPOsTask(client *fetch.Client, store *dataset.Store, pages database.PageRepository) *ScrapeIPOsTask {
	return &ScrapeIPOsTask{
		Task:   NewTask(TaskTypeScrapeIPOs),
		client: client,
		store:  store,
		pages:  pages,
	}
}

// Execute scrapes the IPO source site: listing discovery, per-listing
// detail extraction, and incremental dataset writes. A failed index fetch
// aborts the task; per-listing failures degrade to default detail fields.
func (t *ScrapeIPOsTask) Execute(ctx context.Context) error {
	c := cfg.Get()

	active, err := t.discover(ctx, c)
	if err != nil {
		return err
	}

	drafts, err := t.discoverDrafts(ctx, c)
	if err != nil {
		return err
	}

	if len(active) > c.MaxActive {
		active = active[:c.MaxActive]
	}
	if len(drafts) > c.MaxDrafts {
		drafts = drafts[:c.MaxDrafts]
	}

	listings := make([]ipo.Listing, 0, len(active)+len(drafts))
	listings = append(listings, active...)
	listings = append(listings, drafts...)

	inc := dataset.NewIncrementalStore(t.store, ipoFile, c.CheckpointInterval)
	parser := ipo.NewParser()

	workerCount := c.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}

	jobs := make(chan ipo.Listing)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for listing := range jobs {
				t.processListing(ctx, parser, inc, listing)
			}
		}()
	}

	for _, listing := range listings {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- listing:
		}
	}
	close(jobs)
	wg.Wait()

	if err := inc.Flush(); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	activeCount, draftCount := inc.Counts()
	slog.Info("IPO scrape completed", "active", activeCount, "drafts", draftCount)

	return ctx.Err()
}

// discover collects active listing candidates from the front page and,
// when configured, the RSS feed. First discovery of a link wins.
func (t *ScrapeIPOsTask) discover(ctx context.Context, c *cfg.Cfg) ([]ipo.Listing, error) {
	html, err := t.client.Get(ctx, c.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	listings, err := ipo.ParseIndex(html, statusActive, true)
	if err != nil {
		return nil, err
	}

	if c.FeedURL == "" {
		return listings, nil
	}

	feedData, err := t.client.Get(ctx, c.FeedURL)
	if err != nil {
		slog.Warn("Failed to fetch RSS feed, using listing page only", "error", err)
		return listings, nil
	}

	feedListings, err := ipo.ParseFeed(feedData, statusActive)
	if err != nil {
		slog.Warn("Failed to parse RSS feed, using listing page only", "error", err)
		return listings, nil
	}

	return ipo.MergeListings(listings, feedListings), nil
}

func (t *ScrapeIPOsTask) discoverDrafts(ctx context.Context, c *cfg.Cfg) ([]ipo.Listing, error) {
	if c.DraftURL == "" {
		return nil, nil
	}

	html, err := t.client.Get(ctx, c.DraftURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draft page: %w", err)
	}

	return ipo.ParseIndex(html, statusDraft, true)
}

func (t *ScrapeIPOsTask) processListing(ctx context.Context, parser *ipo.Parser, inc *dataset.IncrementalStore, listing ipo.Listing) {
	var body string

	html, err := t.client.Get(ctx, listing.Link)
	if err != nil {
		slog.Warn("Failed to fetch detail page, keeping defaults",
			"link", listing.Link, "error", err)
	} else {
		flat, err := ipo.FlattenBody(html)
		if err != nil {
			slog.Warn("Failed to extract detail page content, keeping defaults",
				"link", listing.Link, "error", err)
		} else {
			body = flat
		}

		if listing.Company == "" {
			if title := ipo.PageTitle(html); title != "" {
				listing.Company = title
				if listing.Code == "" {
					listing.Code = parser.ExtractCode(title)
				}
			}
		}
	}

	detail := parser.Run(body, listing.Link)

	if body != "" && t.pages != nil {
		t.trackPage(listing.Link, body)
	}

	record := ipo.Record{Listing: listing, Detail: detail}
	if err := inc.Add(ipo.Classify(listing.Status), record); err != nil {
		slog.Error("Failed to checkpoint dataset", "link", listing.Link, "error", err)
	}
}

// trackPage records the detail page's content hash so consecutive runs can
// tell changed pages from stable ones.
func (t *ScrapeIPOsTask) trackPage(url, body string) {
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(body)))

	unchanged, err := t.pages.CheckUnchanged(url, hash)
	if err != nil {
		slog.Warn("Failed to check page cache", "link", url, "error", err)
	} else if unchanged {
		slog.Debug("Detail page unchanged since last run", "link", url)
	}

	if err := t.pages.UpsertPage(url, hash); err != nil {
		slog.Warn("Failed to update page cache", "link", url, "error", err)
	}
}
