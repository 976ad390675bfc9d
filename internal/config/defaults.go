package config

func Default() *Config {
	return &Config{
		Run: RunConfig{
			Name:          "run",
			Seed:          0,
			DataSplitSeed: 0,
			ValRatio:      0.1,
		},
		Metrics: MetricsConfig{
			Keys: map[string]string{
				"loss":       "batch_weighted_avg_list",
				"batch_size": "list",
			},
			Sinks:     []string{"slog"},
			JSONLPath: "metrics.jsonl",
		},
		Store: StoreConfig{
			DataDir:          ".runlab",
			FlushIntervalSec: 60,
		},
		S3: S3Config{
			Region:    "us-east-1",
			Anonymous: true,
		},
		Inspect: InspectConfig{
			Paths: []string{"/"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
