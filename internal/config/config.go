package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"github.com/MikeO7/HarborSim/internal/sim"
)

// Config represents the complete HarborSim configuration
type Config struct {
	Simulator SimulatorConfig `yaml:"simulator"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// SimulatorConfig controls the command engine and session
type SimulatorConfig struct {
	// Seed for IDs, sizes and names; 0 seeds from the clock
	Seed        int64         `yaml:"seed"`
	AllowImages []string      `yaml:"allow_images"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	Challenges  bool          `yaml:"challenges"`
}

// StoreConfig holds the snapshot mirror settings
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"`
	AllowOrigins    []string      `yaml:"allow_origins"`
	RateLimit       float64       `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns a config with sensible defaults
func Default() Config {
	return Config{
		Simulator: SimulatorConfig{
			Seed:        0,
			AllowImages: append([]string(nil), sim.DefaultAllowImages...),
			SettleDelay: 100 * time.Millisecond,
			Challenges:  true,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "data/harborsim.db",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			AllowOrigins:    []string{"http://localhost:3000"},
			RateLimit:       10,
			RateBurst:       20,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			JSON:       false,
			MaxSize:    10,
			MaxBackups: 1,
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	cfg := Default()

	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnvironmentOverrides applies environment variable overrides to the config
func (c *Config) ApplyEnvironmentOverrides() {
	if val := os.Getenv("HARBORSIM_SEED"); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Simulator.Seed = seed
		}
	}

	if val := os.Getenv("HARBORSIM_ALLOW_IMAGES"); val != "" {
		c.Simulator.AllowImages = splitList(val)
	}

	if val := os.Getenv("HARBORSIM_SETTLE_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Simulator.SettleDelay = d
		}
	}

	if val := os.Getenv("HARBORSIM_STORE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Store.Enabled = enabled
		}
	}

	if val := os.Getenv("HARBORSIM_STORE_PATH"); val != "" {
		c.Store.Path = val
	}

	if val := os.Getenv("HARBORSIM_ADDR"); val != "" {
		c.Server.Addr = val
	}

	if val := os.Getenv("HARBORSIM_SERVER_MODE"); val != "" {
		c.Server.Mode = val
	}

	if val := os.Getenv("HARBORSIM_ALLOW_ORIGINS"); val != "" {
		c.Server.AllowOrigins = splitList(val)
	}

	if val := os.Getenv("HARBORSIM_RATE_LIMIT"); val != "" {
		if rps, err := strconv.ParseFloat(val, 64); err == nil {
			c.Server.RateLimit = rps
		}
	}

	if val := os.Getenv("HARBORSIM_LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}

	if val := os.Getenv("HARBORSIM_LOG_JSON"); val != "" {
		if jsonLog, err := strconv.ParseBool(val); err == nil {
			c.Log.JSON = jsonLog
		}
	}

	if val := os.Getenv("HARBORSIM_LOG_FILE"); val != "" {
		c.Log.File = val
	}

	if val := os.Getenv("HARBORSIM_LOG_MAX_SIZE"); val != "" {
		if size, err := parseBytesString(val); err == nil {
			c.Log.MaxSize = size
		}
	}

	if val := os.Getenv("HARBORSIM_LOG_MAX_BACKUPS"); val != "" {
		if backups, err := strconv.Atoi(val); err == nil && backups > 0 {
			c.Log.MaxBackups = backups
		}
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseBytesString converts a docker style size ("10m", "1g") to whole
// megabytes, never less than 1
func parseBytesString(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	if !unicode.IsLetter(rune(s[len(s)-1])) {
		return 0, fmt.Errorf("missing unit in size %q", s)
	}

	bytes, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid syntax in size %q: %w", s, err)
	}

	mb := int(bytes / units.MiB)
	if mb < 1 {
		mb = 1
	}
	return mb, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Simulator.SettleDelay < 0 {
		return fmt.Errorf("simulator.settle_delay cannot be negative")
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return fmt.Errorf("store.path cannot be empty when the store is enabled")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	validModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validModes[c.Server.Mode] {
		return fmt.Errorf("invalid server mode: %s (must be debug, release, or test)", c.Server.Mode)
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit cannot be negative")
	}

	if c.Server.RateBurst < 0 {
		return fmt.Errorf("server.rate_burst cannot be negative")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	if c.Log.MaxSize < 0 {
		return fmt.Errorf("log.max_size cannot be negative")
	}

	return nil
}
