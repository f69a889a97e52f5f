package database

import (
	"database/sql"
	"fmt"
	"time"
)

// PageCache tracks content hashes of fetched detail pages between runs.
type PageCache struct {
	db *DB
}

var _ PageRepository = (*PageCache)(nil)

func NewPageCache(db *DB) *PageCache {
	return &PageCache{db: db}
}

// GetPage returns the tracked state of a page, or nil when the page has
// never been fetched.
func (r *PageCache) GetPage(url string) (*Page, error) {
	var page Page
	err := r.db.QueryRow(`
		SELECT url, content_hash, first_seen_at, last_fetched_at, fetch_count
		FROM pages WHERE url = ?
	`, url).Scan(&page.URL, &page.ContentHash, &page.FirstSeenAt, &page.LastFetchedAt, &page.FetchCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return &page, nil
}

// CheckUnchanged reports whether the page was seen before with the same
// content hash. Unknown pages count as changed.
func (r *PageCache) CheckUnchanged(url, contentHash string) (bool, error) {
	page, err := r.GetPage(url)
	if err != nil || page == nil {
		return false, err
	}
	return page.ContentHash == contentHash, nil
}

func (r *PageCache) UpsertPage(url, contentHash string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		INSERT INTO pages (url, content_hash, first_seen_at, last_fetched_at, fetch_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT (url) DO UPDATE SET
			content_hash = excluded.content_hash,
			last_fetched_at = excluded.last_fetched_at,
			fetch_count = pages.fetch_count + 1
	`, url, contentHash, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	return nil
}

func (r *PageCache) GetPageCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}
