package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
)

const (
	liveFile       = "temettu.json"
	archiveDirName = "dividend_archives"
	versionDirName = "dividend_versions"
	snapshotPrefix = "temettu_"
)

// Index summarizes the archive state after a run.
type Index struct {
	LastUpdated   time.Time `json:"lastUpdated"`
	Years         []string  `json:"years"`
	TotalArchived int       `json:"totalArchived"`
	TotalActive   int       `json:"totalActive"`
}

// Summary reports what a run did, for logging and the run ledger.
type Summary struct {
	Archived int
	Active   int
	Years    []string
	Pruned   int
}

// Archiver splits the dividend dataset into past and upcoming records,
// buckets past records into yearly archive files, keeps a dated snapshot
// of every run, and prunes snapshots past the retention window.
type Archiver struct {
	store         *dataset.Store
	archiveDir    string
	versionsDir   string
	retentionDays int
	overwrite     bool
	now           func() time.Time
}

func NewArchiver(store *dataset.Store, retentionDays int, overwrite bool) *Archiver {
	return &Archiver{
		store:         store,
		archiveDir:    filepath.Join(store.Dir(), archiveDirName),
		versionsDir:   filepath.Join(store.Dir(), versionDirName),
		retentionDays: retentionDays,
		overwrite:     overwrite,
		now:           time.Now,
	}
}

func (a *Archiver) Run() (*Summary, error) {
	today := a.now()

	current, err := a.loadLive()
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		slog.Info("No dividend data found, skipping archival")
		return &Summary{}, nil
	}

	var past, active []Dividend
	for _, d := range current {
		if pt, ok := d.paymentTime(); ok {
			if pt.Before(today) {
				past = append(past, d)
				continue
			}
		} else if d.PaymentDate != "" {
			slog.Warn("Unparseable payment date, keeping record active",
				"code", d.Code, "payment_date", d.PaymentDate)
		}
		active = append(active, d)
	}

	buckets := make(map[string][]Dividend)
	for _, d := range past {
		pt, _ := d.paymentTime()
		year := fmt.Sprintf("%d", pt.Year())
		buckets[year] = append(buckets[year], d)
	}

	years := make([]string, 0, len(buckets))
	for year, records := range buckets {
		years = append(years, year)
		if err := a.writeYear(year, records); err != nil {
			slog.Error("Failed to write yearly archive", "year", year, "error", err)
			continue
		}
		slog.Info("Archived dividends", "year", year, "count", len(records))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	if active == nil {
		active = []Dividend{}
	}
	if err := a.store.SaveJSON(liveFile, active); err != nil {
		slog.Error("Failed to update live dividend dataset", "error", err)
	}

	index := Index{
		LastUpdated:   today,
		Years:         years,
		TotalArchived: len(past),
		TotalActive:   len(active),
	}
	if err := writeJSON(filepath.Join(a.archiveDir, "index.json"), index); err != nil {
		slog.Error("Failed to write archive index", "error", err)
	}

	// Snapshot the full pre-split dataset, keyed by the run date.
	snapshot := snapshotPrefix + today.Format("2006-01-02") + ".json"
	if err := writeJSON(filepath.Join(a.versionsDir, snapshot), current); err != nil {
		slog.Error("Failed to write dividend snapshot", "file", snapshot, "error", err)
	}

	pruned := a.pruneSnapshots(today)

	return &Summary{
		Archived: len(past),
		Active:   len(active),
		Years:    years,
		Pruned:   pruned,
	}, nil
}

// loadLive reads the live dividend dataset. A missing file or malformed
// content degrades to an empty set; any other read failure aborts the run.
func (a *Archiver) loadLive() ([]Dividend, error) {
	data, err := os.ReadFile(a.store.Path(liveFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read live dividend dataset: %w", err)
	}

	var current []Dividend
	if err := json.Unmarshal(dataset.StripBOM(data), &current); err != nil {
		slog.Warn("Malformed live dividend dataset, treating as empty", "error", err)
		return nil, nil
	}
	return current, nil
}

// writeYear stores one year's bucket. By default the run's records are
// merged into the existing file, deduplicated by (code, payment date) with
// existing records winning, so records that dropped out of the source feed
// are not lost. Overwrite mode replaces the file with only this run's
// records.
func (a *Archiver) writeYear(year string, records []Dividend) error {
	path := filepath.Join(a.archiveDir, "archive_"+year+".json")

	merged := records
	if !a.overwrite {
		existing := a.loadYear(path)
		seen := make(map[string]struct{}, len(existing))
		merged = existing
		for _, d := range existing {
			seen[d.key()] = struct{}{}
		}
		for _, d := range records {
			if _, dup := seen[d.key()]; dup {
				continue
			}
			seen[d.key()] = struct{}{}
			merged = append(merged, d)
		}
	}

	return writeJSON(path, merged)
}

func (a *Archiver) loadYear(path string) []Dividend {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read yearly archive", "file", path, "error", err)
		}
		return nil
	}

	var existing []Dividend
	if err := json.Unmarshal(data, &existing); err != nil {
		slog.Warn("Malformed yearly archive, treating as empty", "file", path, "error", err)
		return nil
	}
	return existing
}

// pruneSnapshots deletes snapshots dated more than retentionDays before
// today. Per-file errors are logged and do not stop the pass.
func (a *Archiver) pruneSnapshots(today time.Time) int {
	entries, err := os.ReadDir(a.versionsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to scan snapshot directory", "error", err)
		}
		return 0
	}

	cutoff := today.AddDate(0, 0, -a.retentionDays)
	pruned := 0

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}

		dateStr := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), ".json")
		fileDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		if fileDate.Before(cutoff) {
			if err := os.Remove(filepath.Join(a.versionsDir, name)); err != nil {
				slog.Error("Failed to delete old snapshot", "file", name, "error", err)
				continue
			}
			slog.Info("Deleted old snapshot", "file", name)
			pruned++
		}
	}

	return pruned
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
