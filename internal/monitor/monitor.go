package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"pingflow/internal/config"
	"pingflow/internal/logging"
	"pingflow/internal/models"
	"pingflow/internal/ping"
)

// Monitor pings every configured target until stopped, storing each result
// and keeping rolling statistics per target
type Monitor struct {
	config   config.Config
	store    models.Store
	recorder *logging.Recorder
	pingOpts []ping.Option
	maintain time.Duration

	mu   sync.RWMutex
	live map[string]models.RollingStats

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithRecorder appends every result and statistics snapshot to rec.
func WithRecorder(rec *logging.Recorder) Option {
	return func(m *Monitor) {
		m.recorder = rec
	}
}

// WithPingOptions passes opts on to every target's pinger.
func WithPingOptions(opts ...ping.Option) Option {
	return func(m *Monitor) {
		m.pingOpts = append(m.pingOpts, opts...)
	}
}

// WithMaintenanceInterval sets how often old data is archived.
func WithMaintenanceInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.maintain = d
	}
}

// New creates a new Monitor
func New(cfg config.Config, store models.Store, opts ...Option) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		config:   cfg,
		store:    store,
		maintain: time.Hour,
		live:     make(map[string]models.RollingStats),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins the monitoring process
func (m *Monitor) Start() error {
	log.WithField("targets", m.config.Targets).Info("starting monitor")

	results := make([]<-chan models.ProbeResult, 0, len(m.config.Targets))
	for _, target := range m.config.Targets {
		cfg := m.config.PingConfig(target)
		cfg.Count = 0
		opts := append([]ping.Option{ping.WithConfig(cfg)}, m.pingOpts...)
		results = append(results, ping.New(target, opts...).Stream(m.ctx))
	}

	m.wg.Add(1)
	go m.processResults(results)

	m.wg.Add(1)
	go m.maintenanceWorker()

	log.WithFields(log.Fields{
		"interval": m.config.Ping.Interval,
		"timeout":  m.config.Ping.Timeout,
	}).Info("monitor started")
	return nil
}

// Stop gracefully stops the monitor
func (m *Monitor) Stop() {
	log.Info("stopping monitor")
	m.cancel()
}

// Wait blocks until all goroutines finish
func (m *Monitor) Wait() {
	m.wg.Wait()
	log.Info("monitor stopped")
}

// Live returns the latest rolling statistics of every target that has
// enough results, sorted by target.
func (m *Monitor) Live() []models.RollingStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make([]models.RollingStats, 0, len(m.live))
	for _, s := range m.live {
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Target < stats[j].Target })
	return stats
}

func (m *Monitor) setLive(s models.RollingStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[s.Target] = s
}
