package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Training.Source != SourceFile {
		t.Errorf("Training.Source = %q, want %q", cfg.Training.Source, SourceFile)
	}
	if cfg.Generation.MinProfileLength != 100 {
		t.Errorf("MinProfileLength = %d, want 100", cfg.Generation.MinProfileLength)
	}
	if cfg.Redis.Enabled {
		t.Errorf("Redis should be disabled by default")
	}
	if cfg.Crawl.OutputDir != cfg.Training.Dir {
		t.Errorf("Crawl.OutputDir = %q, want training dir %q", cfg.Crawl.OutputDir, cfg.Training.Dir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRAINING_SOURCE", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("MIN_PROFILE_LENGTH", "150")
	t.Setenv("CRAWL_NATIONALITIES", "1, 2,bogus,25")
	t.Setenv("CRAWL_DELAY_MS", "250")
	t.Setenv("SANITIZER_EXTRA_WORDS", "injury, retired")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Training.Source != SourceSQLite || cfg.Training.SQLitePath != "/tmp/x.db" {
		t.Errorf("Training = %+v", cfg.Training)
	}
	if cfg.Generation.MinProfileLength != 150 {
		t.Errorf("MinProfileLength = %d, want 150", cfg.Generation.MinProfileLength)
	}
	if got := cfg.Crawl.Nationalities; len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 25 {
		t.Errorf("Crawl.Nationalities = %v, want [1 2 25]", got)
	}
	if cfg.Crawl.Delay != 250*time.Millisecond {
		t.Errorf("Crawl.Delay = %v, want 250ms", cfg.Crawl.Delay)
	}
	if got := cfg.Generation.ExtraDenylist; len(got) != 2 || got[1] != "retired" {
		t.Errorf("ExtraDenylist = %v", got)
	}
	if !cfg.Redis.Enabled {
		t.Errorf("Redis.Enabled = false, want true")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Training:   TrainingConfig{Source: SourceFile, Dir: "data"},
			Postgres:   PostgresConfig{Host: "localhost", Database: "playergen"},
			Generation: GenerationConfig{MinProfileLength: 100, MaxBiographyLines: 1000},
			Crawl:      CrawlConfig{Concurrency: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown source", func(c *Config) { c.Training.Source = "s3" }, true},
		{"file without location", func(c *Config) { c.Training.Dir = "" }, true},
		{"postgres without db", func(c *Config) {
			c.Training.Source = SourcePostgres
			c.Postgres.Database = ""
		}, true},
		{"zero min length", func(c *Config) { c.Generation.MinProfileLength = 0 }, true},
		{"negative cache", func(c *Config) { c.Cache.Size = -1 }, true},
		{"zero concurrency", func(c *Config) { c.Crawl.Concurrency = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
