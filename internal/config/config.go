package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "LGPS"

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" envconfig:"SERVER"`
	Security    SecurityConfig    `yaml:"security" envconfig:"SECURITY"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Paths       PathsConfig       `yaml:"paths" envconfig:"PATHS"`
	Reconstruct ReconstructConfig `yaml:"reconstruct" envconfig:"RECONSTRUCT"`
	Report      ReportConfig      `yaml:"report" envconfig:"REPORT"`
	Insights    InsightsConfig    `yaml:"insights" envconfig:"INSIGHTS"`
	Metrics     MetricsConfig     `yaml:"metrics" envconfig:"METRICS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative
// directories are resolved against BaseDir, which defaults to the
// executable's directory.
type PathsConfig struct {
	BaseDir     string `yaml:"base_dir" envconfig:"BASE_DIR"`
	RawDir      string `yaml:"raw_dir" envconfig:"RAW_DIR"`
	CompiledDir string `yaml:"compiled_dir" envconfig:"COMPILED_DIR"`
	ReportsDir  string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// ReconstructConfig tunes the table reconstruction engine.
type ReconstructConfig struct {
	StructuralLabels []string `yaml:"structural_labels" envconfig:"STRUCTURAL_LABELS"`
	EntityColumn     string   `yaml:"entity_column" envconfig:"ENTITY_COLUMN"`
	Concurrency      int      `yaml:"concurrency" envconfig:"CONCURRENCY"`
	Extensions       []string `yaml:"extensions" envconfig:"EXTENSIONS"`
}

// ReportConfig controls which outputs are written and how they are labelled.
type ReportConfig struct {
	Formats         []string `yaml:"formats" envconfig:"FORMATS"`
	Currency        string   `yaml:"currency" envconfig:"CURRENCY"`
	BaseValueMetric string   `yaml:"base_value_metric" envconfig:"BASE_VALUE_METRIC"`
	Title           string   `yaml:"title" envconfig:"TITLE"`
	FilterKeywords  []string `yaml:"filter_keywords" envconfig:"FILTER_KEYWORDS"`
	FilterExts      []string `yaml:"filter_extensions" envconfig:"FILTER_EXTENSIONS"`
}

// InsightsConfig configures the optional generated write-up.
type InsightsConfig struct {
	Enabled bool          `yaml:"enabled" envconfig:"ENABLED"`
	APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
	Model   string        `yaml:"model" envconfig:"MODEL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// MetricsConfig toggles OpenTelemetry metrics.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled" envconfig:"ENABLED"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
}

// Load builds the configuration from defaults, then the YAML file (when
// found), then a .env file, then LGPS_* environment variables. An empty
// configFile searches the usual locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile unmarshals the YAML file over cfg; keys absent from the
// file keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv reads .env from the working directory without overriding
// variables that are already set.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Reconstruct.Concurrency <= 0 {
		return fmt.Errorf("reconstruct concurrency must be positive, got %d", c.Reconstruct.Concurrency)
	}

	for _, f := range c.Report.Formats {
		if !IsKnownFormat(f) {
			return fmt.Errorf("unknown report format %q", f)
		}
	}

	if c.Insights.Enabled && c.Insights.APIKey == "" {
		return fmt.Errorf("insights enabled but no API key configured")
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// IsKnownFormat reports whether f names a supported report format.
func IsKnownFormat(f string) bool {
	for _, known := range ReportFormats {
		if strings.EqualFold(f, known) {
			return true
		}
	}
	return false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			RawDir:      DefaultRawDir,
			CompiledDir: DefaultCompiledDir,
			ReportsDir:  DefaultReportsDir,
			LogsDir:     DefaultLogsDir,
		},
		Reconstruct: ReconstructConfig{
			EntityColumn: "Fund",
			Concurrency:  DefaultConcurrency,
			Extensions:   []string{".docx", ".xlsx", ".html", ".htm", ".txt"},
		},
		Report: ReportConfig{
			Formats:         []string{FormatCSV, FormatXLSX, FormatMarkdown, FormatDOCX},
			Currency:        "GBP",
			BaseValueMetric: DefaultBaseValueMetric,
			Title:           DefaultReportTitle,
			FilterExts:      []string{".xls", ".xlsx", ".pdf"},
		},
		Insights: InsightsConfig{
			Model:   DefaultInsightsModel,
			Timeout: DefaultInsightsTimeout,
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			TraceExporter: "none",
		},
	}
}
