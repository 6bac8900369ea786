package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents sentimento configuration
type Config struct {
	// Dataset locations and column names
	Data DataConfig `yaml:"data"`

	// Text normalization settings
	Text TextConfig `yaml:"text"`

	// Artifact locations
	Model ModelConfig `yaml:"model"`

	// Training parameters
	Training TrainingConfig `yaml:"training"`

	// HTTP server settings
	Server ServerConfig `yaml:"server"`

	// Prediction cache settings
	Cache CacheConfig `yaml:"cache"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig describes the raw and prepared corpus files
type DataConfig struct {
	RawPath       string `yaml:"raw_path"`
	ProcessedPath string `yaml:"processed_path"`

	// CSV dialects
	RawDelimiter       string `yaml:"raw_delimiter"`
	ProcessedDelimiter string `yaml:"processed_delimiter"`
	BatchDelimiter     string `yaml:"batch_delimiter"`

	// Encodings: "utf-8", "latin-1" or "auto"
	RawEncoding   string `yaml:"raw_encoding"`
	BatchEncoding string `yaml:"batch_encoding"`

	// Column names
	TextColumn      string `yaml:"text_column"`
	LabelColumn     string `yaml:"label_column"`
	ProcessedColumn string `yaml:"processed_column"`
}

// TextConfig contains normalizer settings
type TextConfig struct {
	// Optional stopword list, one word per line. Empty = built-in Portuguese list.
	StopwordsFile string `yaml:"stopwords_file"`
}

// ModelConfig contains artifact paths
type ModelConfig struct {
	ClassifierPath string `yaml:"classifier_path"`
	VectorizerPath string `yaml:"vectorizer_path"`
}

// TrainingConfig contains vectorizer and classifier parameters
type TrainingConfig struct {
	TestSize    float64 `yaml:"test_size"`
	Seed        int64   `yaml:"seed"`
	MaxFeatures int     `yaml:"max_features"`
	MaxIter     int     `yaml:"max_iter"`
	C           float64 `yaml:"c"`
	Tolerance   float64 `yaml:"tolerance"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `yaml:"address"`

	ReadTimeoutMs           int `yaml:"read_timeout_ms"`
	WriteTimeoutMs          int `yaml:"write_timeout_ms"`
	GracefulShutdownTimeout int `yaml:"graceful_shutdown_timeout_ms"`

	MaxUploadMB int    `yaml:"max_upload_mb"`
	UIEnabled   bool   `yaml:"ui_enabled"`
	GinMode     string `yaml:"gin_mode"` // debug, release, test
}

// CacheConfig contains Redis prediction cache settings
type CacheConfig struct {
	Enabled     bool   `yaml:"enabled"`
	RedisURL    string `yaml:"redis_url"`
	KeyPrefix   string `yaml:"key_prefix"`
	DatabaseNum int    `yaml:"database_num"`
	TTL         string `yaml:"ttl"` // Duration string like "24h"
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	File   string `yaml:"file"`   // log file path, empty = stderr
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns sentimento default configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			RawPath:            "data/raw/dataset_avaliacoes1.csv",
			ProcessedPath:      "data/processed/dados_limpos.csv",
			RawDelimiter:       ";",
			ProcessedDelimiter: ",",
			BatchDelimiter:     ";",
			RawEncoding:        "utf-8",
			BatchEncoding:      "auto",
			TextColumn:         "comentario",
			LabelColumn:        "classificacao",
			ProcessedColumn:    "Texto_Processado",
		},
		Text: TextConfig{
			StopwordsFile: "",
		},
		Model: ModelConfig{
			ClassifierPath: "models/modelo_sentimento.json",
			VectorizerPath: "models/vetorizador.json",
		},
		Training: TrainingConfig{
			TestSize:    0.2,
			Seed:        42,
			MaxFeatures: 5000,
			MaxIter:     1000,
			C:           1.0,
			Tolerance:   1e-4,
		},
		Server: ServerConfig{
			Address:                 "0.0.0.0:5000",
			ReadTimeoutMs:           10000,
			WriteTimeoutMs:          30000,
			GracefulShutdownTimeout: 10000,
			MaxUploadMB:             10,
			UIEnabled:               true,
			GinMode:                 "release",
		},
		Cache: CacheConfig{
			Enabled:     false,
			RedisURL:    "redis://localhost:6379",
			KeyPrefix:   "sentimento:pred",
			DatabaseNum: 0,
			TTL:         "24h",
			TimeoutMs:   200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If no config file specified, return defaults
	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Data.TextColumn == "" || c.Data.LabelColumn == "" || c.Data.ProcessedColumn == "" {
		return fmt.Errorf("data column names cannot be empty")
	}

	for name, delim := range map[string]string{
		"raw_delimiter":       c.Data.RawDelimiter,
		"processed_delimiter": c.Data.ProcessedDelimiter,
		"batch_delimiter":     c.Data.BatchDelimiter,
	} {
		if len([]rune(delim)) != 1 {
			return fmt.Errorf("%s must be a single character, got %q", name, delim)
		}
	}

	for name, enc := range map[string]string{
		"raw_encoding":   c.Data.RawEncoding,
		"batch_encoding": c.Data.BatchEncoding,
	} {
		if !isValidEncoding(enc) {
			return fmt.Errorf("invalid %s: %s", name, enc)
		}
	}

	if c.Model.ClassifierPath == "" || c.Model.VectorizerPath == "" {
		return fmt.Errorf("model artifact paths cannot be empty")
	}

	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		return fmt.Errorf("test_size must be between 0 and 1 (exclusive)")
	}
	if c.Training.MaxFeatures < 1 {
		return fmt.Errorf("max_features must be >= 1")
	}
	if c.Training.MaxIter < 1 {
		return fmt.Errorf("max_iter must be >= 1")
	}
	if c.Training.C <= 0 {
		return fmt.Errorf("c must be > 0")
	}
	if c.Training.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be > 0")
	}

	if c.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be >= 1")
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin_mode: %s", c.Server.GinMode)
	}

	if c.Cache.Enabled {
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache redis_url cannot be empty when enabled")
		}
		if _, err := c.Cache.TTLDuration(); err != nil {
			return fmt.Errorf("invalid cache ttl: %w", err)
		}
	}

	validLevel := false
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}

	return nil
}

// TTLDuration parses the cache TTL. An empty value means no expiry.
func (c CacheConfig) TTLDuration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TTL)
}

// Timeout returns the per-operation Redis timeout
func (c CacheConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ReadTimeout returns the HTTP read timeout
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMs) * time.Millisecond
}

// WriteTimeout returns the HTTP write timeout
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMs) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown budget
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.GracefulShutdownTimeout) * time.Millisecond
}

// MaxUploadBytes returns the multipart upload limit in bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

func isValidEncoding(enc string) bool {
	switch enc {
	case "utf-8", "latin-1", "auto":
		return true
	}
	return false
}
