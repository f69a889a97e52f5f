package sitemap

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
	"github.com/Volkan-eles/yatirimx3-sub001/app/sources"
)

// Entry is one <url> element of the catalog.
type Entry struct {
	Loc        string
	LastMod    string
	ChangeFreq string
	Priority   string
}

// Builder produces the catalog entries for the static pages and published
// datasets described by the source descriptors. Duplicate URLs are dropped,
// first occurrence wins.
type Builder struct {
	config *sources.Config
	store  *dataset.Store
	now    func() time.Time
}

func NewBuilder(config *sources.Config, store *dataset.Store) *Builder {
	return &Builder{
		config: config,
		store:  store,
		now:    time.Now,
	}
}

func (b *Builder) Run() []Entry {
	lastmod := b.now().Format("2006-01-02")

	var entries []Entry
	seen := make(map[string]struct{})

	for _, page := range b.config.Static {
		entries = appendEntry(entries, seen, Entry{
			Loc:        buildURL(b.config.BaseURL, page.Path),
			LastMod:    lastmod,
			ChangeFreq: page.ChangeFreq,
			Priority:   page.Priority,
		})
	}

	for _, d := range b.config.Datasets {
		slugs := b.datasetSlugs(d)
		for _, slug := range slugs {
			entries = appendEntry(entries, seen, Entry{
				Loc:        buildURL(b.config.BaseURL, d.PathPrefix+"/"+slug),
				LastMod:    lastmod,
				ChangeFreq: d.ChangeFreq,
				Priority:   d.Priority,
			})
		}
		slog.Info("Processed catalog dataset", "dataset", d.Name, "urls", len(slugs))
	}

	return entries
}

// datasetSlugs resolves one slug per usable dataset item. Items without a
// resolvable key are skipped and counted.
func (b *Builder) datasetSlugs(d sources.DatasetSource) []string {
	if len(d.Slugs) > 0 {
		return d.Slugs
	}

	var items []map[string]any
	if len(d.ItemsKeys) > 0 {
		for _, key := range d.ItemsKeys {
			items = append(items, b.store.LoadArrayKey(d.File, key)...)
		}
	} else {
		items = b.store.LoadArray(d.File)
	}

	slugs := make([]string, 0, len(items))
	skipped := 0
	for _, item := range items {
		key := resolveKey(item, d.KeyFields)
		if key == "" {
			skipped++
			continue
		}
		slugs = append(slugs, buildSlug(d, key))
	}

	if skipped > 0 {
		slog.Warn("Skipped dataset items without a usable key",
			"dataset", d.Name, "count", skipped)
	}

	return slugs
}

// resolveKey tries the configured key fields in order. Link-like fields
// contribute their last path segment rather than the full URL.
func resolveKey(item map[string]any, fields []string) string {
	for _, field := range fields {
		value, ok := item[field].(string)
		if !ok || value == "" {
			continue
		}
		if field == "link" || field == "url" {
			if segment := lastPathSegment(value); segment != "" {
				return segment
			}
			continue
		}
		return value
	}
	return ""
}

func buildSlug(d sources.DatasetSource, key string) string {
	// Not every Config comes through sources.Load, so the template
	// default is applied here too; an empty template must never erase
	// the key.
	template := d.SlugTemplate
	if template == "" {
		template = "{key}"
	}

	slug := Slugify(strings.ReplaceAll(template, "{key}", key))

	if d.Suffix != "" {
		suffix := Slugify(d.Suffix)
		if !strings.HasSuffix(slug, suffix) {
			slug += "-" + suffix
		}
	}

	return slug
}

func appendEntry(entries []Entry, seen map[string]struct{}, entry Entry) []Entry {
	if _, dup := seen[entry.Loc]; dup {
		return entries
	}
	seen[entry.Loc] = struct{}{}
	return append(entries, entry)
}

// buildURL joins the base with a cleaned path and appends a trailing slash
// unless the last segment looks like a file.
func buildURL(base, path string) string {
	clean := "/" + path
	for strings.Contains(clean, "//") {
		clean = strings.ReplaceAll(clean, "//", "/")
	}

	loc := strings.TrimRight(base, "/") + clean

	last := clean[strings.LastIndex(clean, "/")+1:]
	if !strings.HasSuffix(loc, "/") && !strings.Contains(last, ".") {
		loc += "/"
	}

	return loc
}

func lastPathSegment(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segments[len(segments)-1]
}
