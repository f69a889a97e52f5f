package sources

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultPriority   = "0.8"
	defaultChangeFreq = "daily"
)

// Load reads and validates a catalog source descriptor.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid sources %s: %w", path, err)
	}

	slog.Debug("Catalog sources loaded", "file", path,
		"static_pages", len(config.Static), "datasets", len(config.Datasets))

	return &config, nil
}

func applyDefaults(config *Config) {
	for i := range config.Static {
		if config.Static[i].Priority == "" {
			config.Static[i].Priority = defaultPriority
		}
		if config.Static[i].ChangeFreq == "" {
			config.Static[i].ChangeFreq = defaultChangeFreq
		}
	}
	for i := range config.Datasets {
		d := &config.Datasets[i]
		if d.Priority == "" {
			d.Priority = defaultPriority
		}
		if d.ChangeFreq == "" {
			d.ChangeFreq = defaultChangeFreq
		}
		if d.SlugTemplate == "" {
			d.SlugTemplate = "{key}"
		}
	}
}

func validate(config *Config) error {
	if config.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	for _, page := range config.Static {
		if page.Path == "" {
			return fmt.Errorf("static page is missing path")
		}
	}

	for _, d := range config.Datasets {
		if d.Name == "" {
			return fmt.Errorf("dataset is missing name")
		}
		if d.PathPrefix == "" {
			return fmt.Errorf("dataset '%s' is missing path_prefix", d.Name)
		}
		if d.File == "" && len(d.Slugs) == 0 {
			return fmt.Errorf("dataset '%s' needs either file or slugs", d.Name)
		}
		if d.File != "" && len(d.KeyFields) == 0 {
			return fmt.Errorf("dataset '%s' needs key_fields", d.Name)
		}
	}

	return nil
}
