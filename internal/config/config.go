package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the civicdex service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Detector DetectorConfig `yaml:"detector"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// DetectorConfig holds vector space and matching settings.
type DetectorConfig struct {
	MaxFeatures      int      `yaml:"max_features"`
	DefaultThreshold *float64 `yaml:"default_threshold"` // nil means 0.8; 0 is a valid threshold
	FitWorkers       int      `yaml:"fit_workers"`
}

// Corpus sources.
const (
	SourceCSV   = "csv"
	SourceStore = "store"
)

// CorpusConfig selects where historical complaints are loaded from.
type CorpusConfig struct {
	Source         string `yaml:"source"` // csv, store (default: csv)
	CSVPath        string `yaml:"csv_path"`
	RetrainOnStart *bool  `yaml:"retrain_on_start"` // default: true
	MaxBatchSize   int    `yaml:"max_batch_size"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Detector.MaxFeatures <= 0 {
		c.Detector.MaxFeatures = 10000
	}
	if c.Detector.DefaultThreshold == nil {
		t := 0.8
		c.Detector.DefaultThreshold = &t
	}
	if c.Detector.FitWorkers <= 0 {
		c.Detector.FitWorkers = 4
	}
	if c.Corpus.Source == "" {
		c.Corpus.Source = SourceCSV
	}
	if c.Corpus.RetrainOnStart == nil {
		on := true
		c.Corpus.RetrainOnStart = &on
	}
	if c.Corpus.MaxBatchSize <= 0 {
		c.Corpus.MaxBatchSize = 100
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "civicdex:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if c.Database.Enabled && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if t := c.Detector.DefaultThreshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("detector.default_threshold must be within [0, 1], got %v", *t)
	}
	switch c.Corpus.Source {
	case SourceCSV:
		if c.Corpus.CSVPath == "" {
			return fmt.Errorf("corpus.csv_path is required for source %q", SourceCSV)
		}
	case SourceStore:
		if !c.Database.Enabled {
			return fmt.Errorf("corpus source %q requires database.enabled", SourceStore)
		}
	default:
		return fmt.Errorf("corpus.source must be \"csv\" or \"store\", got %q", c.Corpus.Source)
	}
	return nil
}

// Threshold returns the configured default similarity threshold.
func (c *Config) Threshold() float64 {
	if c.Detector.DefaultThreshold == nil {
		return 0.8
	}
	return *c.Detector.DefaultThreshold
}

// ShouldRetrainOnStart reports whether the corpus is fitted at startup.
func (c *Config) ShouldRetrainOnStart() bool {
	return c.Corpus.RetrainOnStart == nil || *c.Corpus.RetrainOnStart
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
