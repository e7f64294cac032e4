package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of all environment overrides
const EnvPrefix = "PINGFLOW_"

// LoadDotEnv loads variables from a .env style file into the environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides cfg with the PINGFLOW_* environment variables that are
// set.
func ApplyEnv(cfg *Config) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "TARGETS"); ok {
		cfg.Targets = splitList(v)
	}
	num("COUNT", &cfg.Ping.Count)
	dur("INTERVAL", &cfg.Ping.Interval)
	dur("TIMEOUT", &cfg.Ping.Timeout)
	num("PACKET_SIZE", &cfg.Ping.PacketSize)
	num("TTL", &cfg.Ping.TTL)
	num("IP_VERSION", &cfg.Ping.IPVersion)
	str("DB", &cfg.DatabasePath)
	num("PORT", &cfg.Port)
	num("WINDOW", &cfg.Window)
	num("WORKERS", &cfg.Workers)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_DIR", &cfg.Logging.Dir)
	str("RESULTS", &cfg.Logging.Results)
	str("REPORT_DIR", &cfg.Report.Dir)
	num("REPORT_HOURS", &cfg.Report.Hours)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
