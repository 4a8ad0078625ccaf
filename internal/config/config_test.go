package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Corpus: CorpusConfig{Source: SourceCSV, CSVPath: "data/complaints.csv"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "memcached" }, "database.driver"},
		{"enabled without addrs", func(c *Config) { c.Database.Enabled = true }, "database.addrs"},
		{"threshold above one", func(c *Config) {
			v := 1.5
			c.Detector.DefaultThreshold = &v
		}, "detector.default_threshold"},
		{"csv without path", func(c *Config) { c.Corpus.CSVPath = "" }, "corpus.csv_path"},
		{"store without database", func(c *Config) { c.Corpus.Source = SourceStore }, "requires database.enabled"},
		{"unknown source", func(c *Config) { c.Corpus.Source = "mongo" }, "corpus.source"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidate_StoreSource(t *testing.T) {
	cfg := validConfig()
	cfg.Corpus.Source = SourceStore
	cfg.Database.Enabled = true
	cfg.Database.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("unexpected http timeouts: %+v", cfg.HTTP)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected driver valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Detector.MaxFeatures != 10000 {
		t.Errorf("expected MaxFeatures=10000, got %d", cfg.Detector.MaxFeatures)
	}
	if cfg.Threshold() != 0.8 {
		t.Errorf("expected threshold 0.8, got %v", cfg.Threshold())
	}
	if cfg.Detector.FitWorkers != 4 {
		t.Errorf("expected FitWorkers=4, got %d", cfg.Detector.FitWorkers)
	}
	if cfg.Corpus.Source != SourceCSV {
		t.Errorf("expected source csv, got %q", cfg.Corpus.Source)
	}
	if !cfg.ShouldRetrainOnStart() {
		t.Error("expected retrain on start by default")
	}
	if cfg.Corpus.MaxBatchSize != 100 {
		t.Errorf("expected MaxBatchSize=100, got %d", cfg.Corpus.MaxBatchSize)
	}
	if cfg.Storage.KeyPrefix != "civicdex:" {
		t.Errorf("expected KeyPrefix=civicdex:, got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_KeepsExplicitZeroThreshold(t *testing.T) {
	zero := 0.0
	off := false
	cfg := Config{
		Detector: DetectorConfig{DefaultThreshold: &zero},
		Corpus:   CorpusConfig{RetrainOnStart: &off},
	}
	cfg.ApplyDefaults()
	if cfg.Threshold() != 0 {
		t.Errorf("explicit zero threshold overwritten: %v", cfg.Threshold())
	}
	if cfg.ShouldRetrainOnStart() {
		t.Error("explicit retrain_on_start=false overwritten")
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("CIVICDEX_TEST_PORT", "9090")
	path := filepath.Join(t.TempDir(), "test.yaml")
	body := `
http:
  port: ${CIVICDEX_TEST_PORT}
detector:
  default_threshold: ${CIVICDEX_TEST_THRESHOLD:-0.65}
corpus:
  csv_path: /tmp/complaints.csv
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Threshold() != 0.65 {
		t.Errorf("expected threshold 0.65, got %v", cfg.Threshold())
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CIVICDEX_SET", "value")
	got := string(expandEnvVars([]byte("a=${CIVICDEX_SET} b=${CIVICDEX_UNSET:-fallback} c=${CIVICDEX_UNSET}")))
	want := "a=value b=fallback c="
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLocalConfigLoads(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("load local config: %v", err)
	}
	if cfg.Corpus.Source != SourceCSV {
		t.Errorf("expected csv source in local config, got %q", cfg.Corpus.Source)
	}
}
