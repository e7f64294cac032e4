package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"pingflow/internal/ping"
)

// Config holds all configuration for pingflow
type Config struct {
	Targets      []string      `toml:"targets"`
	Ping         PingConfig    `toml:"ping"`
	DatabasePath string        `toml:"database"`
	Port         int           `toml:"port"`
	Window       int           `toml:"window"`  // rolling statistics window
	Workers      int           `toml:"workers"` // concurrent sweep pings
	Logging      LoggingConfig `toml:"logging"`
	Report       ReportConfig  `toml:"report"`
}

// PingConfig holds the probe parameters shared by all targets
type PingConfig struct {
	Count      int           `toml:"count"`
	Interval   time.Duration `toml:"interval"`
	Timeout    time.Duration `toml:"timeout"`
	PacketSize int           `toml:"packet_size"`
	TTL        int           `toml:"ttl"`
	IPVersion  int           `toml:"ip_version"`
}

// LoggingConfig controls log output. An empty Dir logs to stderr only, an
// empty Results disables the results file.
type LoggingConfig struct {
	Level    string `toml:"level"`
	Dir      string `toml:"dir"`
	MaxMB    int    `toml:"max_mb"`
	MaxFiles int    `toml:"max_files"`
	Results  string `toml:"results"`
}

// ReportConfig controls report generation
type ReportConfig struct {
	Dir   string `toml:"dir"`
	Hours int    `toml:"hours"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Targets: []string{"8.8.8.8", "1.1.1.1", "208.67.222.222"},
		Ping: PingConfig{
			Count:    1,
			Interval: time.Second,
			Timeout:  5 * time.Second,
		},
		DatabasePath: "pingflow.db",
		Port:         8080,
		Window:       10,
		Workers:      4,
		Logging: LoggingConfig{
			Level:    "info",
			MaxMB:    10,
			MaxFiles: 5,
		},
		Report: ReportConfig{
			Dir:   "reports",
			Hours: 24,
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path skips
// the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("config file not found: %w", err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// PingConfig returns the probe configuration for host.
func (c *Config) PingConfig(host string) ping.Config {
	pc := ping.DefaultConfig(host)
	pc.Count = c.Ping.Count
	pc.Interval = c.Ping.Interval
	pc.Timeout = c.Ping.Timeout
	pc.PacketSize = c.Ping.PacketSize
	pc.TTL = c.Ping.TTL
	if c.Ping.IPVersion != 0 {
		pc.IPVersion = ping.IPVersion(c.Ping.IPVersion)
	}
	return pc
}

// Validate checks if the configuration is valid and reports every problem
// at once
func (c *Config) Validate() error {
	var errs []string

	if len(c.Targets) == 0 {
		errs = append(errs, "at least one target must be specified")
	}
	for i, t := range c.Targets {
		if strings.TrimSpace(t) == "" {
			errs = append(errs, fmt.Sprintf("targets[%d] is empty", i))
		}
	}
	if c.Ping.Count < 0 {
		errs = append(errs, "ping.count must not be negative")
	}
	if c.Ping.Interval < 0 {
		errs = append(errs, "ping.interval must not be negative")
	}
	if c.Ping.Timeout <= 0 {
		errs = append(errs, "ping.timeout must be positive")
	}
	if c.Ping.PacketSize < 0 {
		errs = append(errs, "ping.packet_size must not be negative")
	}
	if c.Ping.TTL < 0 || c.Ping.TTL > 255 {
		errs = append(errs, "ping.ttl must be between 0 and 255")
	}
	if v := c.Ping.IPVersion; v != 0 && v != 4 && v != 6 {
		errs = append(errs, "ping.ip_version must be 4 or 6")
	}
	if c.DatabasePath == "" {
		errs = append(errs, "database path cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	if c.Window <= 0 {
		errs = append(errs, "window must be positive")
	}
	if c.Workers <= 0 {
		errs = append(errs, "workers must be positive")
	}
	if c.Logging.Dir != "" {
		if c.Logging.MaxMB <= 0 {
			errs = append(errs, "logging.max_mb must be > 0")
		}
		if c.Logging.MaxFiles <= 0 {
			errs = append(errs, "logging.max_files must be > 0")
		}
	}
	if c.Report.Hours <= 0 {
		errs = append(errs, "report.hours must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
