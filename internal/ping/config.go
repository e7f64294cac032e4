package ping

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"pingflow/internal/models"
)

// IPVersion selects the IP family to ping with
type IPVersion int

const (
	IPAuto IPVersion = 0 // let the platform decide
	IPv4   IPVersion = 4
	IPv6   IPVersion = 6
)

// ErrInvalidConfig is wrapped by every Config validation error.
var ErrInvalidConfig = errors.New("invalid ping configuration")

// Config holds the parameters of a ping run
type Config struct {
	Host            string
	Count           int           // number of attempts, 0 runs forever
	Timeout         time.Duration // per attempt
	Interval        time.Duration // between attempts
	PacketSize      int           // payload bytes, 0 for the platform default
	TTL             int           // 0 for the platform default
	IPVersion       IPVersion
	ShowLostPackets bool // Linux only
}

// DefaultConfig returns the default configuration for host. IPv6 is selected
// when host is an IPv6 literal.
func DefaultConfig(host string) Config {
	cfg := Config{
		Host:     host,
		Count:    1,
		Timeout:  2 * time.Second,
		Interval: time.Second,
	}
	if isIPv6Literal(host) {
		cfg.IPVersion = IPv6
	}
	return cfg
}

// Validate checks if the configuration is usable
func (c Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("%w: count must not be negative", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", ErrInvalidConfig)
	}
	if c.PacketSize < 0 {
		return fmt.Errorf("%w: packet size must not be negative", ErrInvalidConfig)
	}
	if c.TTL < 0 || c.TTL > 255 {
		return fmt.Errorf("%w: ttl must be between 0 and 255", ErrInvalidConfig)
	}
	switch c.IPVersion {
	case IPAuto, IPv4, IPv6:
	default:
		return fmt.Errorf("%w: ip version must be 4 or 6", ErrInvalidConfig)
	}
	return nil
}

// echo returns the configuration as reported on results.
func (c Config) echo() models.ProbeConfig {
	return models.ProbeConfig{
		Timeout:    c.Timeout,
		Interval:   c.Interval,
		PacketSize: c.PacketSize,
		TTL:        c.TTL,
		IPVersion:  int(c.IPVersion),
	}
}

func isIPv6Literal(host string) bool {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	addr, err := netip.ParseAddr(host)
	return err == nil && addr.Is6()
}
