package dataset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store reads and writes the published JSON artifacts under a single
// directory. All writes are whole-file overwrites of pretty-printed UTF-8.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// SaveJSON writes v as indented JSON, creating the directory lazily.
func (s *Store) SaveJSON(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

// SaveRaw writes cleaned feed bytes verbatim after re-indenting them, so
// mirrored feeds match the formatting of locally produced files.
func (s *Store) SaveRaw(name string, data []byte) error {
	var v any
	if err := json.Unmarshal(CleanFeed(data), &v); err != nil {
		return fmt.Errorf("invalid JSON for %s: %w", name, err)
	}

	// Unwrap {value: [...]} / {Content: [...]} envelopes the upstream API
	// sometimes adds around the payload.
	v = unwrap(v)

	return s.SaveJSON(name, v)
}

// LoadInto decodes a stored file into v. A missing file is not an error;
// v is left untouched.
func (s *Store) LoadInto(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(StripBOM(data), v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}

	return nil
}

// LoadArray reads a file expected to hold an array of objects. Missing or
// malformed files degrade to an empty collection with a log line, per the
// pipeline's fail-soft policy.
func (s *Store) LoadArray(name string) []map[string]any {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read dataset", "file", name, "error", err)
		}
		return nil
	}

	var v any
	if err := json.Unmarshal(StripBOM(data), &v); err != nil {
		slog.Warn("Malformed dataset, treating as empty", "file", name, "error", err)
		return nil
	}

	return toObjectArray(unwrap(v))
}

// LoadArrayKey reads the array stored under the given key of a JSON
// object, e.g. the "stocks" array of bist_live_data.json.
func (s *Store) LoadArrayKey(name, key string) []map[string]any {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read dataset", "file", name, "error", err)
		}
		return nil
	}

	var v map[string]any
	if err := json.Unmarshal(StripBOM(data), &v); err != nil {
		slog.Warn("Malformed dataset, treating as empty", "file", name, "error", err)
		return nil
	}

	return toObjectArray(v[key])
}

// CleanFeed applies the standard repairs to raw upstream feed bytes.
func CleanFeed(data []byte) []byte {
	return []byte(FixMojibake(string(StripBOM(data))))
}

func unwrap(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if inner, ok := obj["value"].([]any); ok {
		return inner
	}
	if inner, ok := obj["Content"].([]any); ok {
		return inner
	}
	return v
}

func toObjectArray(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if obj, ok := el.(map[string]any); ok {
			items = append(items, obj)
		}
	}
	return items
}
