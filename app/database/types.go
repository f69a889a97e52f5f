package database

import (
	"time"
)

const (
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// Run is one recorded task execution in the run ledger.
type Run struct {
	ID         int64
	Task       string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Detail     string
}

// Page tracks the last known content hash of a scraped detail page, so
// consecutive runs can tell changed pages from stable ones.
type Page struct {
	URL           string
	ContentHash   string
	FirstSeenAt   time.Time
	LastFetchedAt time.Time
	FetchCount    int
}
