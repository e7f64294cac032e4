package ping

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name     string
		cfg      func() Config
		platform Platform
		expected []string
	}{
		{
			name:     "Linux defaults",
			cfg:      func() Config { return DefaultConfig("example.com") },
			platform: Linux,
			expected: []string{"ping", "-c", "1", "-W", "2", "example.com"},
		},
		{
			name: "Linux fractional timeout rounds up",
			cfg: func() Config {
				c := DefaultConfig("example.com")
				c.Timeout = 1500 * time.Millisecond
				return c
			},
			platform: Linux,
			expected: []string{"ping", "-c", "1", "-W", "2", "example.com"},
		},
		{
			name: "Linux sub-second timeout is at least one second",
			cfg: func() Config {
				c := DefaultConfig("example.com")
				c.Timeout = 200 * time.Millisecond
				return c
			},
			platform: Linux,
			expected: []string{"ping", "-c", "1", "-W", "1", "example.com"},
		},
		{
			name: "Linux all options",
			cfg: func() Config {
				return Config{
					Host: "10.0.0.1", Count: 3, Timeout: 5 * time.Second, Interval: 500 * time.Millisecond,
					PacketSize: 100, TTL: 32, IPVersion: IPv4, ShowLostPackets: true,
				}
			},
			platform: Linux,
			expected: []string{"ping", "-c", "3", "-W", "5", "-i", "0.5", "-s", "100", "-t", "32", "-4", "-O", "10.0.0.1"},
		},
		{
			name: "Linux platform defaults are not emitted",
			cfg: func() Config {
				c := DefaultConfig("example.com")
				c.PacketSize = 56
				c.TTL = 64
				return c
			},
			platform: Linux,
			expected: []string{"ping", "-c", "1", "-W", "2", "example.com"},
		},
		{
			name:     "Linux IPv6 literal is detected",
			cfg:      func() Config { return DefaultConfig("::1") },
			platform: Linux,
			expected: []string{"ping", "-c", "1", "-W", "2", "-6", "::1"},
		},
		{
			name: "Linux runs forever without count",
			cfg: func() Config {
				c := DefaultConfig("example.com")
				c.Count = 0
				return c
			},
			platform: Linux,
			expected: []string{"ping", "-W", "2", "example.com"},
		},
		{
			name: "Darwin timeout in milliseconds",
			cfg: func() Config {
				c := DefaultConfig("example.com")
				c.Timeout = 5 * time.Second
				c.TTL = 10
				return c
			},
			platform: Darwin,
			expected: []string{"ping", "-c", "1", "-W", "5000", "-m", "10", "example.com"},
		},
		{
			name: "Darwin never emits a version flag",
			cfg: func() Config {
				c := DefaultConfig("example.com")
				c.IPVersion = IPv4
				return c
			},
			platform: Darwin,
			expected: []string{"ping", "-c", "1", "-W", "2000", "example.com"},
		},
		{
			name: "Darwin IPv6 uses ping6",
			cfg: func() Config {
				c := DefaultConfig("2001:db8::1")
				c.TTL = 10
				return c
			},
			platform: Darwin,
			expected: []string{"ping6", "-c", "1", "-h", "10", "2001:db8::1"},
		},
		{
			name: "Windows flag order",
			cfg: func() Config {
				return Config{Host: "example.com", Count: 3, Timeout: 5 * time.Second, Interval: time.Second, PacketSize: 64, TTL: 128}
			},
			platform: Windows,
			expected: []string{"ping", "-n", "3", "-w", "5000", "-l", "64", "-i", "128", "example.com"},
		},
		{
			name: "Windows never gets an interval",
			cfg: func() Config {
				c := DefaultConfig("example.com")
				c.Interval = 2 * time.Second
				return c
			},
			platform: Windows,
			expected: []string{"ping", "-n", "1", "-w", "2000", "example.com"},
		},
		{
			name: "Windows runs forever with -t",
			cfg: func() Config {
				c := DefaultConfig("example.com")
				c.Count = 0
				c.IPVersion = IPv6
				return c
			},
			platform: Windows,
			expected: []string{"ping", "-t", "-w", "2000", "-6", "example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCommand(tt.cfg(), tt.platform)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("BuildCommand() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBuildCommandIsDeterministic(t *testing.T) {
	cfg := Config{Host: "example.com", Count: 4, Timeout: 3 * time.Second, Interval: 250 * time.Millisecond, TTL: 12}
	for _, platform := range []Platform{Linux, Darwin, Windows} {
		first := BuildCommand(cfg, platform)
		second := BuildCommand(cfg, platform)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: %q != %q", platform, first, second)
		}
		if first[len(first)-1] != cfg.Host {
			t.Errorf("%s: host is not the last argument: %q", platform, first)
		}
	}
}

func TestIsIPv6Literal(t *testing.T) {
	tests := []struct {
		host     string
		expected bool
	}{
		{"::1", true},
		{"[2001:db8::1]", true},
		{"fe80::1%eth0", true},
		{"127.0.0.1", false},
		{"example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isIPv6Literal(tt.host); got != tt.expected {
			t.Errorf("isIPv6Literal(%q) = %v, want %v", tt.host, got, tt.expected)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"forever", func(c *Config) { c.Count = 0 }, false},
		{"negative count", func(c *Config) { c.Count = -1 }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"negative interval", func(c *Config) { c.Interval = -time.Second }, true},
		{"ttl too large", func(c *Config) { c.TTL = 256 }, true},
		{"bad ip version", func(c *Config) { c.IPVersion = 5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("example.com")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
