package cfg

type Cfg struct {
	// Scrape sources
	SourceURL      string
	DraftURL       string
	FeedURL        string
	DividendURL    string
	TargetPriceURL string
	Referer        string

	// Output locations
	DataDir     string
	SourcesFile string
	DBPath      string

	// Pipeline tuning
	WorkerCount        int
	CheckpointInterval int
	RetentionDays      int
	ArchiveOverwrite   bool
	MaxActive          int
	MaxDrafts          int

	// HTTP client
	UserAgent string
	Timeout   int

	// Serve mode
	Serve             bool
	Port              string
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
