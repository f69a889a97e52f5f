package sources

// StaticPage is a fixed site page listed in the catalog.
type StaticPage struct {
	Path       string `yaml:"path"`
	Priority   string `yaml:"priority"`
	ChangeFreq string `yaml:"changefreq"`
}

// DatasetSource describes how one published dataset maps to catalog URLs.
// Either File (read items from a dataset on disk) or Slugs (fixed slug
// list) must be set.
type DatasetSource struct {
	Name         string   `yaml:"name"`
	File         string   `yaml:"file"`
	ItemsKeys    []string `yaml:"items_keys"`
	KeyFields    []string `yaml:"key_fields"`
	Slugs        []string `yaml:"slugs"`
	PathPrefix   string   `yaml:"path_prefix"`
	SlugTemplate string   `yaml:"slug_template"`
	Suffix       string   `yaml:"suffix"`
	Priority     string   `yaml:"priority"`
	ChangeFreq   string   `yaml:"changefreq"`
}

// Config is the full catalog source descriptor file.
type Config struct {
	BaseURL  string          `yaml:"base_url"`
	Static   []StaticPage    `yaml:"static_pages"`
	Datasets []DatasetSource `yaml:"datasets"`
}
