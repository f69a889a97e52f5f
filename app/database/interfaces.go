package database

import (
	"time"
)

type RunRepository interface {
	RecordRun(task string, startedAt, finishedAt time.Time, status, detail string) error
	GetRecentRuns(limit int) ([]Run, error)
	GetRunCount() (int, error)
}

type PageRepository interface {
	GetPage(url string) (*Page, error)
	CheckUnchanged(url, contentHash string) (bool, error)
	UpsertPage(url, contentHash string) error
	GetPageCount() (int, error)
}
