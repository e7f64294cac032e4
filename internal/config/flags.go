package config

import (
	"time"

	"github.com/spf13/cobra"
)

// Flags holds the command line overrides
type Flags struct {
	ConfigFile string
	EnvFile    string

	targets    []string
	count      int
	interval   time.Duration
	timeout    time.Duration
	packetSize int
	ttl        int
	ipVersion  int
	dbPath     string
	port       int
	window     int
	workers    int
	logLevel   string
	logDir     string
	results    string
	reportDir  string
	hours      int
}

// Register adds the flags to cmd and all its subcommands.
func (f *Flags) Register(cmd *cobra.Command) {
	def := Default()
	fs := cmd.PersistentFlags()

	fs.StringVarP(&f.ConfigFile, "config", "c", "", "TOML configuration file")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "file with PINGFLOW_* environment variables")

	fs.StringSliceVar(&f.targets, "targets", def.Targets, "comma-separated ping targets")
	fs.IntVar(&f.count, "count", def.Ping.Count, "pings per run, 0 pings until stopped")
	fs.DurationVar(&f.interval, "interval", def.Ping.Interval, "ping interval")
	fs.DurationVar(&f.timeout, "timeout", def.Ping.Timeout, "ping timeout")
	fs.IntVar(&f.packetSize, "size", def.Ping.PacketSize, "payload size in bytes, 0 for the system default")
	fs.IntVar(&f.ttl, "ttl", def.Ping.TTL, "time to live, 0 for the system default")
	fs.IntVar(&f.ipVersion, "ip", def.Ping.IPVersion, "IP version 4 or 6, 0 to auto-detect")
	fs.StringVar(&f.dbPath, "db", def.DatabasePath, "database path")
	fs.IntVar(&f.port, "port", def.Port, "web server port")
	fs.IntVar(&f.window, "window", def.Window, "rolling statistics window")
	fs.IntVar(&f.workers, "workers", def.Workers, "concurrent pings when sweeping")
	fs.StringVar(&f.logLevel, "log-level", def.Logging.Level, "log level")
	fs.StringVar(&f.logDir, "log-dir", def.Logging.Dir, "directory for rotated log files")
	fs.StringVar(&f.results, "results", def.Logging.Results, "file to append JSON results to")
	fs.StringVar(&f.reportDir, "report-dir", def.Report.Dir, "report output directory")
	fs.IntVar(&f.hours, "hours", def.Report.Hours, "hours of data to report on")
}

// Apply copies the flags that were given on the command line into cfg.
func (f *Flags) Apply(cmd *cobra.Command, cfg *Config) {
	changed := cmd.Flags().Changed

	if changed("targets") {
		cfg.Targets = f.targets
	}
	if changed("count") {
		cfg.Ping.Count = f.count
	}
	if changed("interval") {
		cfg.Ping.Interval = f.interval
	}
	if changed("timeout") {
		cfg.Ping.Timeout = f.timeout
	}
	if changed("size") {
		cfg.Ping.PacketSize = f.packetSize
	}
	if changed("ttl") {
		cfg.Ping.TTL = f.ttl
	}
	if changed("ip") {
		cfg.Ping.IPVersion = f.ipVersion
	}
	if changed("db") {
		cfg.DatabasePath = f.dbPath
	}
	if changed("port") {
		cfg.Port = f.port
	}
	if changed("window") {
		cfg.Window = f.window
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-dir") {
		cfg.Logging.Dir = f.logDir
	}
	if changed("results") {
		cfg.Logging.Results = f.results
	}
	if changed("report-dir") {
		cfg.Report.Dir = f.reportDir
	}
	if changed("hours") {
		cfg.Report.Hours = f.hours
	}
}

// Resolve builds the effective configuration: defaults, then the config
// file, then the environment, then the command line.
func (f *Flags) Resolve(cmd *cobra.Command) (Config, error) {
	if err := LoadDotEnv(f.EnvFile); err != nil {
		return Config{}, err
	}
	cfg, err := Load(f.ConfigFile)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	f.Apply(cmd, &cfg)
	return cfg, cfg.Validate()
}
