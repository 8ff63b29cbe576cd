package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/greghernandez/docsync/internal/utils"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.json"
	// ConfigDirName is the directory where config is stored
	ConfigDirName = ".docsync"
	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "DOCSYNC_"
	// MirrorDirName is the default mirror root under the home directory
	MirrorDirName = "Documents Mirror"
)

// Config holds application configuration
type Config struct {
	// MirrorDir is the local directory the remote tree is mirrored into
	MirrorDir string `json:"mirrorDir"`

	// ServiceURL is the base URL of the remote document service
	ServiceURL string `json:"serviceUrl"`

	// MaxRetries is the maximum number of retries for remote calls
	MaxRetries int `json:"maxRetries"`

	// RetryBaseDelay is the base delay for exponential backoff in milliseconds
	RetryBaseDelay int `json:"retryBaseDelay"`

	// RequestTimeout is the remote request timeout in seconds; 0 disables it
	RequestTimeout int `json:"requestTimeout"`

	// RateLimitQPS caps outbound remote calls per second
	RateLimitQPS float64 `json:"rateLimitQps"`

	// LogLevel sets the logging verbosity (debug, normal, quiet)
	LogLevel string `json:"logLevel"`

	// LogFile, when set, receives JSON log lines in addition to the console
	LogFile string `json:"logFile"`

	// PidFile is where the daemon records its process ID
	PidFile string `json:"pidFile"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		MirrorDir:      filepath.Join(home, MirrorDirName),
		ServiceURL:     "https://docs.example.com",
		MaxRetries:     utils.DefaultMaxRetries,
		RetryBaseDelay: utils.DefaultRetryDelayMs,
		RequestTimeout: utils.DefaultRequestTimeout,
		RateLimitQPS:   5,
		LogLevel:       "normal",
		PidFile:        filepath.Join(os.TempDir(), "docsync.pid"),
	}
}

// Load loads configuration with precedence: env vars > config file > defaults.
// An explicit path overrides the default config file location.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// StatePath returns the location of the state database inside the mirror root.
func (c *Config) StatePath() string {
	return filepath.Join(c.MirrorDir, utils.StateFileName)
}

// Timeout returns the remote request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Config) loadFromFile(path string) error {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv(EnvPrefix + "MIRROR_DIR"); v != "" {
		c.MirrorDir = v
	}
	if v := os.Getenv(EnvPrefix + "SERVICE_URL"); v != "" {
		c.ServiceURL = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvPrefix + "RETRY_BASE_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetryBaseDelay = n
		}
	}
	if v := os.Getenv(EnvPrefix + "REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RequestTimeout = n
		}
	}
	if v := os.Getenv(EnvPrefix + "RATE_LIMIT_QPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitQPS = f
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv(EnvPrefix + "PID_FILE"); v != "" {
		c.PidFile = v
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.MirrorDir == "" {
		return fmt.Errorf("mirrorDir must not be empty")
	}
	if c.ServiceURL == "" {
		return fmt.Errorf("serviceUrl must not be empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("maxRetries must not be negative")
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("retryBaseDelay must not be negative")
	}
	if c.RateLimitQPS <= 0 {
		return fmt.Errorf("rateLimitQps must be positive")
	}
	switch c.LogLevel {
	case "debug", "normal", "quiet":
	default:
		return fmt.Errorf("logLevel must be one of debug, normal, quiet")
	}
	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDirName, ConfigFileName), nil
}

// Save writes the configuration to the default location
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
