package dataset

import (
	"sync"

	"github.com/Volkan-eles/yatirimx3-sub001/app/ipo"
)

// Document is the live IPO dataset layout on disk.
type Document struct {
	Active []ipo.Record `json:"active_ipos"`
	Draft  []ipo.Record `json:"draft_ipos"`
}

// IncrementalStore accumulates partitioned IPO records during a scrape and
// checkpoints the full document to disk after every Nth completed listing,
// so an aborted run loses at most N listings of progress. The trigger is a
// monotonically increasing completed count, not a position index, which
// keeps the guarantee intact when detail fetches run concurrently.
type IncrementalStore struct {
	mu        sync.Mutex
	store     *Store
	file      string
	interval  int
	completed int
	doc       Document
}

func NewIncrementalStore(store *Store, file string, interval int) *IncrementalStore {
	if interval < 1 {
		interval = 1
	}
	return &IncrementalStore{
		store:    store,
		file:     file,
		interval: interval,
		doc: Document{
			Active: []ipo.Record{},
			Draft:  []ipo.Record{},
		},
	}
}

// Add appends a completed record to its partition and checkpoints when the
// completed count hits the interval.
func (s *IncrementalStore) Add(partition ipo.Partition, rec ipo.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if partition == ipo.PartitionActive {
		s.doc.Active = append(s.doc.Active, rec)
	} else {
		s.doc.Draft = append(s.doc.Draft, rec)
	}

	s.completed++
	if s.completed%s.interval == 0 {
		return s.store.SaveJSON(s.file, s.doc)
	}
	return nil
}

// Flush writes the document unconditionally. Called after the final
// listing regardless of where the checkpoint counter stands.
func (s *IncrementalStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SaveJSON(s.file, s.doc)
}

// Counts reports the accumulated active and draft record counts.
func (s *IncrementalStore) Counts() (active, draft int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Active), len(s.doc.Draft)
}
