package config

type Config struct {
	Run     RunConfig     `yaml:"run"`
	Metrics MetricsConfig `yaml:"metrics"`
	Store   StoreConfig   `yaml:"store"`
	S3      S3Config      `yaml:"s3"`
	Notes   NotesConfig   `yaml:"notes"`
	Inspect InspectConfig `yaml:"inspect"`
	Logging LoggingConfig `yaml:"logging"`
}

type RunConfig struct {
	Name string `yaml:"name"`
	// Seed drives model init, augmentation and worker streams.
	Seed int64 `yaml:"seed"`
	// DataSplitSeed is seeded independently of Seed so re-seeding a run
	// never reshuffles the train/val partition.
	DataSplitSeed int64   `yaml:"data_split_seed"`
	ValRatio      float64 `yaml:"val_ratio"`
}

type MetricsConfig struct {
	// Keys maps each tracked metric to its aggregation strategy:
	// list, batch_weighted_avg_list, sum or last.
	Keys map[string]string `yaml:"keys"`
	// Sinks lists where aggregated snapshots go: slog, jsonl, runstore.
	Sinks []string `yaml:"sinks"`
	// JSONLPath is the appended metrics file when the jsonl sink is active.
	JSONLPath string `yaml:"jsonl_path"`
}

type StoreConfig struct {
	DataDir          string `yaml:"data_dir"`
	FlushIntervalSec int    `yaml:"flush_interval_sec"`
}

type S3Config struct {
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`
	// Anonymous disables request signing for public buckets.
	Anonymous bool `yaml:"anonymous"`
}

type NotesConfig struct {
	Graph string `yaml:"graph"`
	// Token is usually injected via ${ROAM_API_TOKEN} substitution.
	Token string `yaml:"token"`
}

type InspectConfig struct {
	Paths []string `yaml:"paths"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
