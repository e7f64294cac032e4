// Package ping builds, runs and parses invocations of the system ping binary.
package ping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pingflow/internal/models"
	"pingflow/internal/runner"
)

// ErrAborted is returned when the context was done before or during a run.
var ErrAborted = runner.ErrAborted

// Pinger probes a single host
type Pinger struct {
	mu       sync.Mutex
	cfg      Config
	runner   *runner.Runner
	platform Platform
}

// Option configures a Pinger.
type Option func(*Pinger)

// WithRunner sets the runner used to execute commands.
func WithRunner(r *runner.Runner) Option {
	return func(p *Pinger) {
		p.runner = r
	}
}

// WithPlatform overrides the detected platform family.
func WithPlatform(platform Platform) Option {
	return func(p *Pinger) {
		p.platform = platform
	}
}

// WithConfig replaces every setting except the host. A zero IP version keeps
// the auto-detected one.
func WithConfig(cfg Config) Option {
	return func(p *Pinger) {
		cfg.Host = p.cfg.Host
		if cfg.IPVersion == IPAuto {
			cfg.IPVersion = p.cfg.IPVersion
		}
		p.cfg = cfg
	}
}

// New creates a new Pinger for host with the default configuration
func New(host string, opts ...Option) *Pinger {
	p := &Pinger{
		cfg:      DefaultConfig(host),
		runner:   runner.New(),
		platform: CurrentPlatform(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pinger) set(fn func(*Config)) *Pinger {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.cfg)
	return p
}

// SetCount sets the number of attempts, 0 pings until cancelled.
func (p *Pinger) SetCount(n int) *Pinger { return p.set(func(c *Config) { c.Count = n }) }

// SetTimeout sets the per attempt timeout.
func (p *Pinger) SetTimeout(d time.Duration) *Pinger { return p.set(func(c *Config) { c.Timeout = d }) }

// SetInterval sets the wait between attempts.
func (p *Pinger) SetInterval(d time.Duration) *Pinger {
	return p.set(func(c *Config) { c.Interval = d })
}

// SetPacketSize sets the payload size in bytes.
func (p *Pinger) SetPacketSize(n int) *Pinger { return p.set(func(c *Config) { c.PacketSize = n }) }

// SetTTL sets the time to live.
func (p *Pinger) SetTTL(n int) *Pinger { return p.set(func(c *Config) { c.TTL = n }) }

// SetIPVersion forces the IP family, overriding auto-detection.
func (p *Pinger) SetIPVersion(v IPVersion) *Pinger {
	return p.set(func(c *Config) { c.IPVersion = v })
}

// SetShowLostPackets makes the Linux binary report missing replies.
func (p *Pinger) SetShowLostPackets(on bool) *Pinger {
	return p.set(func(c *Config) { c.ShowLostPackets = on })
}

// Config returns a copy of the current configuration.
func (p *Pinger) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Command returns the argv a run would execute.
func (p *Pinger) Command() []string {
	return BuildCommand(p.Config(), p.platform)
}

func (p *Pinger) prepare() (Config, []string, time.Duration, error) {
	cfg := p.Config()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, 0, err
	}
	if cfg.Count == 0 {
		return cfg, nil, 0, fmt.Errorf("%w: count 0 pings until stopped, use Stream", ErrInvalidConfig)
	}
	argv := BuildCommand(cfg, p.platform)
	return cfg, argv, runner.Timeout(cfg.Count, cfg.Timeout, cfg.Interval), nil
}

// Run pings the host and blocks until done. Unreachable hosts and other probe
// failures are returned as a *models.Failure; an error is only returned when
// the ping could not be run at all or ctx was done. A count of 0 is rejected
// with ErrInvalidConfig; pinging until stopped is what Stream is for.
func (p *Pinger) Run(ctx context.Context) (models.ProbeResult, error) {
	cfg, argv, timeout, err := p.prepare()
	if err != nil {
		return nil, err
	}
	out, err := p.runner.RunSync(ctx, argv, timeout)
	if err != nil {
		return nil, err
	}
	return Parse(out, cfg, time.Now()), nil
}

// RunAsync starts a ping in the background. It returns ErrAborted without
// starting anything when ctx is already done.
func (p *Pinger) RunAsync(ctx context.Context) (*Async, error) {
	cfg, argv, timeout, err := p.prepare()
	if err != nil {
		return nil, err
	}
	pending, err := p.runner.RunAsync(ctx, argv, timeout)
	if err != nil {
		return nil, err
	}
	return &Async{pending: pending, cfg: cfg}, nil
}

// Async is a ping running in the background
type Async struct {
	pending *runner.Pending
	cfg     Config

	once   sync.Once
	result models.ProbeResult
	err    error
}

// Done is closed when the ping has finished.
func (a *Async) Done() <-chan struct{} {
	return a.pending.Done()
}

// Wait blocks until the ping has finished and returns its result. Unlike
// Run, an expired deadline is returned as an error wrapping runner.ErrTimeout.
func (a *Async) Wait() (models.ProbeResult, error) {
	a.once.Do(func() {
		out, err := a.pending.Wait()
		if err != nil {
			a.err = err
			return
		}
		a.result = Parse(out, a.cfg, time.Now())
	})
	return a.result, a.err
}
