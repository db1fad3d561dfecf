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

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "POLL"

// Supported source formats
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSheets = "sheets"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
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
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// SourceConfig describes where the poll table is published and how often
// it is re-read.
type SourceConfig struct {
	// Format selects the fetcher: csv, xlsx or sheets
	Format string `yaml:"format" envconfig:"FORMAT"`
	// URL of the published csv or xlsx export
	URL string `yaml:"url" envconfig:"URL"`

	// Sheets API settings
	SheetID         string `yaml:"sheet_id" envconfig:"SHEET_ID"`
	Range           string `yaml:"range" envconfig:"RANGE"`
	APIKey          string `yaml:"api_key" envconfig:"API_KEY"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	Endpoint        string `yaml:"endpoint" envconfig:"ENDPOINT"`

	// SheetName picks a worksheet of an xlsx export; empty means the first one
	SheetName string `yaml:"sheet_name" envconfig:"SHEET_NAME"`

	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RefreshInterval time.Duration `yaml:"refresh_interval" envconfig:"REFRESH_INTERVAL"`
	FetchOnStart    bool          `yaml:"fetch_on_start" envconfig:"FETCH_ON_START"`
	UserAgent       string        `yaml:"user_agent" envconfig:"USER_AGENT"`
}

// Origin identifies the configured source in logs and snapshots
func (s SourceConfig) Origin() string {
	if s.Format == FormatSheets {
		return "sheets:" + s.SheetID
	}
	return s.URL
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	WriteWait       time.Duration `yaml:"write_wait" envconfig:"WRITE_WAIT"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, an optional YAML file and
// POLL_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped and variables already set are kept.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
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

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if err := c.Source.validate(); err != nil {
		return err
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/pollscope.log"
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0, 1]: %v", c.Telemetry.SampleRatio)
	}

	return nil
}

func (s *SourceConfig) validate() error {
	s.Format = strings.ToLower(strings.TrimSpace(s.Format))

	switch s.Format {
	case FormatCSV, FormatXLSX:
		if s.URL == "" {
			return fmt.Errorf("source url is required for format %q", s.Format)
		}
	case FormatSheets:
		if s.SheetID == "" {
			return fmt.Errorf("source sheet_id is required for format %q", s.Format)
		}
		if s.APIKey == "" && s.CredentialsFile == "" {
			return fmt.Errorf("source api_key or credentials_file is required for format %q", s.Format)
		}
	default:
		return fmt.Errorf("unsupported source format: %q", s.Format)
	}

	if s.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive")
	}
	if s.RefreshInterval < 0 {
		return fmt.Errorf("source refresh interval must not be negative")
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

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

	return "" // env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/pollscope.log",
		},
		Source: SourceConfig{
			Format:          FormatCSV,
			URL:             DefaultSheetCSVURL,
			Range:           "A:D",
			Timeout:         20 * time.Second,
			RefreshInterval: 15 * time.Minute,
			FetchOnStart:    true,
			UserAgent:       AppName + "/" + AppVersion,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			WriteWait:       10 * time.Second,
			PingPeriod:      54 * time.Second,
			PongWait:        60 * time.Second,
			MaxMessageSize:  512,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
