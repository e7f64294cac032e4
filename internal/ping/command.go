package ping

import (
	"math"
	"runtime"
	"strconv"
	"time"
)

// Platform is the flavor of the local ping binary
type Platform int

const (
	Linux   Platform = iota // iputils style
	Darwin                  // BSD style
	Windows
)

// CurrentPlatform returns the platform family of the running system.
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin", "freebsd", "netbsd", "openbsd", "dragonfly":
		return Darwin
	default:
		return Linux
	}
}

func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case Darwin:
		return "darwin"
	case Windows:
		return "windows"
	}
	return "Platform(" + strconv.Itoa(int(p)) + ")"
}

// flagSet describes the command line dialect of one ping binary. Empty flag
// names are never emitted.
type flagSet struct {
	binary        string
	count         string
	forever       string // emitted instead of count for endless runs
	timeout       string
	timeoutMillis bool
	interval      string
	size          string
	ttl           string
	ipv4, ipv6    string
	showLost      string

	defaultInterval time.Duration
	defaultSize     int
	defaultTTL      int
}

var (
	linuxFlags = flagSet{
		binary: "ping", count: "-c", timeout: "-W", interval: "-i", size: "-s", ttl: "-t",
		ipv4: "-4", ipv6: "-6", showLost: "-O",
		defaultInterval: time.Second, defaultSize: 56, defaultTTL: 64,
	}
	darwinFlags = flagSet{
		binary: "ping", count: "-c", timeout: "-W", timeoutMillis: true, interval: "-i", size: "-s", ttl: "-m",
		defaultInterval: time.Second, defaultSize: 56, defaultTTL: 64,
	}
	// BSD ping6 is a separate binary with its own hop limit flag and no
	// per-reply wait option.
	darwin6Flags = flagSet{
		binary: "ping6", count: "-c", interval: "-i", size: "-s", ttl: "-h",
		defaultInterval: time.Second, defaultSize: 56, defaultTTL: 64,
	}
	windowsFlags = flagSet{
		binary: "ping", count: "-n", forever: "-t", timeout: "-w", timeoutMillis: true, size: "-l", ttl: "-i",
		ipv4: "-4", ipv6: "-6",
		defaultSize: 32, defaultTTL: 64,
	}
)

func flagsFor(cfg Config, platform Platform) flagSet {
	switch platform {
	case Windows:
		return windowsFlags
	case Darwin:
		if cfg.IPVersion == IPv6 {
			return darwin6Flags
		}
		return darwinFlags
	default:
		return linuxFlags
	}
}

// BuildCommand returns the argv for pinging cfg.Host on platform. The first
// element is the binary, the host is always the last. Optional flags are only
// emitted when they differ from the platform's default.
func BuildCommand(cfg Config, platform Platform) []string {
	f := flagsFor(cfg, platform)
	argv := []string{f.binary}

	switch {
	case cfg.Count > 0:
		argv = append(argv, f.count, strconv.Itoa(cfg.Count))
	case f.forever != "":
		argv = append(argv, f.forever)
	}

	if f.timeout != "" && cfg.Timeout > 0 {
		argv = append(argv, f.timeout, formatTimeout(cfg.Timeout, f.timeoutMillis))
	}

	if f.interval != "" && cfg.Interval > 0 && cfg.Interval != f.defaultInterval {
		argv = append(argv, f.interval, strconv.FormatFloat(cfg.Interval.Seconds(), 'f', -1, 64))
	}

	if cfg.PacketSize > 0 && cfg.PacketSize != f.defaultSize {
		argv = append(argv, f.size, strconv.Itoa(cfg.PacketSize))
	}

	if cfg.TTL > 0 && cfg.TTL != f.defaultTTL {
		argv = append(argv, f.ttl, strconv.Itoa(cfg.TTL))
	}

	switch cfg.IPVersion {
	case IPv4:
		if f.ipv4 != "" {
			argv = append(argv, f.ipv4)
		}
	case IPv6:
		if f.ipv6 != "" {
			argv = append(argv, f.ipv6)
		}
	}

	if cfg.ShowLostPackets && f.showLost != "" {
		argv = append(argv, f.showLost)
	}

	return append(argv, cfg.Host)
}

// formatTimeout renders the timeout in milliseconds, or in whole seconds
// rounded up with a minimum of one.
func formatTimeout(d time.Duration, millis bool) string {
	if millis {
		return strconv.FormatInt(int64(math.Round(d.Seconds()*1000)), 10)
	}
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
