package sitemap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
	"github.com/Volkan-eles/yatirimx3-sub001/app/sources"
)

func testBuilder(t *testing.T, config *sources.Config, files map[string]string) *Builder {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	b := NewBuilder(config, dataset.NewStore(dir))
	b.now = func() time.Time {
		return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	}
	return b
}

func findEntry(entries []Entry, loc string) *Entry {
	for i := range entries {
		if entries[i].Loc == loc {
			return &entries[i]
		}
	}
	return nil
}

func TestBuilderStaticPages(t *testing.T) {
	config := &sources.Config{
		BaseURL: "https://yatirimx.com",
		Static: []sources.StaticPage{
			{Path: "/", Priority: "1.0", ChangeFreq: "hourly"},
			{Path: "/hakkimizda", Priority: "0.6", ChangeFreq: "monthly"},
		},
	}

	entries := testBuilder(t, config, nil).Run()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	root := findEntry(entries, "https://yatirimx.com/")
	if root == nil {
		t.Fatal("Expected root entry")
	}
	if root.Priority != "1.0" || root.ChangeFreq != "hourly" || root.LastMod != "2026-01-15" {
		t.Errorf("Unexpected root entry: %+v", root)
	}

	if findEntry(entries, "https://yatirimx.com/hakkimizda/") == nil {
		t.Error("Expected trailing slash on static page")
	}
}

func TestBuilderDatasetWithTemplate(t *testing.T) {
	config := &sources.Config{
		BaseURL: "https://yatirimx.com",
		Datasets: []sources.DatasetSource{{
			Name:         "stocks",
			File:         "bist_live_data.json",
			ItemsKeys:    []string{"stocks"},
			KeyFields:    []string{"code"},
			PathPrefix:   "/hisse",
			SlugTemplate: "{key} Hisse Senedi Fiyatı Grafiği {key} Yorumu 2026",
			Priority:     "0.9",
			ChangeFreq:   "hourly",
		}},
	}
	files := map[string]string{
		"bist_live_data.json": `{"stocks":[{"code":"THYAO"},{"code":"ASELS"}]}`,
	}

	entries := testBuilder(t, config, files).Run()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	want := "https://yatirimx.com/hisse/thyao-hisse-senedi-fiyati-grafigi-thyao-yorumu-2026/"
	if findEntry(entries, want) == nil {
		t.Errorf("Expected templated stock URL, got: %+v", entries)
	}
}

func TestBuilderSuffixAndDeduplication(t *testing.T) {
	config := &sources.Config{
		BaseURL: "https://yatirimx.com",
		Datasets: []sources.DatasetSource{{
			Name:         "target-prices",
			File:         "halkarz_target_prices.json",
			KeyFields:    []string{"bistkodu", "code"},
			PathPrefix:   "/hedef-fiyat",
			SlugTemplate: "{key}",
			Suffix:       "Hedef Fiyat 2026",
			Priority:     "0.8",
			ChangeFreq:   "daily",
		}},
	}
	// Two analyst rows for GARAN collapse into one URL.
	files := map[string]string{
		"halkarz_target_prices.json": `[{"bistkodu":"GARAN"},{"bistkodu":"GARAN"},{"code":"THYAO"},{"analyst":"no key"}]`,
	}

	entries := testBuilder(t, config, files).Run()
	if len(entries) != 2 {
		t.Fatalf("Expected deduplicated entries, got: %d", len(entries))
	}

	if findEntry(entries, "https://yatirimx.com/hedef-fiyat/garan-hedef-fiyat-2026/") == nil {
		t.Errorf("Expected suffixed target price URL, got: %+v", entries)
	}
}

func TestBuilderSuffixNotDoubled(t *testing.T) {
	config := &sources.Config{
		BaseURL: "https://yatirimx.com",
		Datasets: []sources.DatasetSource{{
			Name:         "dividends",
			File:         "temettu.json",
			KeyFields:    []string{"t_bistkod"},
			PathPrefix:   "/temettu",
			SlugTemplate: "{key} Temettü Tarihi 2026 Ne Kadar Verecek",
			Suffix:       "Temettü Tarihi 2026 Ne Kadar Verecek",
		}},
	}
	files := map[string]string{
		"temettu.json": `[{"t_bistkod":"SISE"}]`,
	}

	entries := testBuilder(t, config, files).Run()
	want := "https://yatirimx.com/temettu/sise-temettu-tarihi-2026-ne-kadar-verecek/"
	if len(entries) != 1 || entries[0].Loc != want {
		t.Errorf("Expected suffix applied once, got: %+v", entries)
	}
}

func TestBuilderLinkKeyFallback(t *testing.T) {
	config := &sources.Config{
		BaseURL: "https://yatirimx.com",
		Datasets: []sources.DatasetSource{{
			Name:       "ipos",
			File:       "halkarz_ipos.json",
			ItemsKeys:  []string{"active_ipos", "draft_ipos"},
			KeyFields:  []string{"slug", "link", "company"},
			PathPrefix: "/halka-arz",
		}},
	}
	files := map[string]string{
		"halkarz_ipos.json": `{
			"active_ipos":[{"slug":"meysu-gida","link":"https://halkarz.com/meysu-gida/"}],
			"draft_ipos":[{"link":"https://halkarz.com/kuzey-boru/"},{"company":"Taslak Şirket A.Ş."}]
		}`,
	}

	entries := testBuilder(t, config, files).Run()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got: %d", len(entries))
	}
	if findEntry(entries, "https://yatirimx.com/halka-arz/kuzey-boru/") == nil {
		t.Error("Expected slug derived from link path")
	}
	if findEntry(entries, "https://yatirimx.com/halka-arz/taslak-sirket-as/") == nil {
		t.Error("Expected slug derived from company name")
	}
}

func TestBuildSlugEmptyTemplateKeepsKey(t *testing.T) {
	if got := buildSlug(sources.DatasetSource{}, "Şeker Yatırım"); got != "seker-yatirim" {
		t.Errorf("Expected key to survive an empty template, got: %q", got)
	}

	d := sources.DatasetSource{Suffix: "Hedef Fiyat 2026"}
	if got := buildSlug(d, "GARAN"); got != "garan-hedef-fiyat-2026" {
		t.Errorf("Expected suffixed key with empty template, got: %q", got)
	}
}

func TestBuilderFixedSlugs(t *testing.T) {
	config := &sources.Config{
		BaseURL: "https://yatirimx.com",
		Datasets: []sources.DatasetSource{{
			Name:       "blog",
			PathPrefix: "/blog",
			Slugs:      []string{"2026-temettu-verecek-hisseler"},
		}},
	}

	entries := testBuilder(t, config, nil).Run()
	if len(entries) != 1 || entries[0].Loc != "https://yatirimx.com/blog/2026-temettu-verecek-hisseler/" {
		t.Errorf("Unexpected fixed slug entries: %+v", entries)
	}
}

func TestBuilderMissingDatasetFile(t *testing.T) {
	config := &sources.Config{
		BaseURL: "https://yatirimx.com",
		Static:  []sources.StaticPage{{Path: "/", Priority: "1.0", ChangeFreq: "hourly"}},
		Datasets: []sources.DatasetSource{{
			Name:       "stocks",
			File:       "missing.json",
			KeyFields:  []string{"code"},
			PathPrefix: "/hisse",
		}},
	}

	entries := testBuilder(t, config, nil).Run()
	if len(entries) != 1 {
		t.Errorf("Expected only static entries for missing dataset, got: %d", len(entries))
	}
}

func TestBuildURLFileNoTrailingSlash(t *testing.T) {
	if got := buildURL("https://yatirimx.com", "/sitemap.xml"); got != "https://yatirimx.com/sitemap.xml" {
		t.Errorf("Expected no trailing slash for files, got: %q", got)
	}
	if got := buildURL("https://yatirimx.com/", "//piyasa"); got != "https://yatirimx.com/piyasa/" {
		t.Errorf("Expected duplicate slashes collapsed, got: %q", got)
	}
}

func TestRender(t *testing.T) {
	entries := []Entry{{
		Loc:        "https://yatirimx.com/hisse/thyao/",
		LastMod:    "2026-01-15",
		ChangeFreq: "hourly",
		Priority:   "0.9",
	}}

	out := Render(entries)

	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("Expected XML declaration")
	}
	if !strings.Contains(out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`) {
		t.Error("Expected sitemap.org namespace")
	}
	for _, want := range []string{
		"    <loc>https://yatirimx.com/hisse/thyao/</loc>",
		"    <lastmod>2026-01-15</lastmod>",
		"    <changefreq>hourly</changefreq>",
		"    <priority>0.9</priority>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "sitemap.xml")
	if err := WriteFile(path, nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "</urlset>") {
		t.Errorf("Unexpected sitemap content: %s", data)
	}
}
