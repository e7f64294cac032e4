package monitor

import (
	log "github.com/sirupsen/logrus"

	"pingflow/internal/models"
	"pingflow/internal/stream"
)

// processResults stores the merged results of all targets and feeds each
// target's rolling statistics
func (m *Monitor) processResults(results []<-chan models.ProbeResult) {
	defer m.wg.Done()

	perTarget := make(map[string]chan models.ProbeResult, len(m.config.Targets))
	for _, target := range m.config.Targets {
		if _, ok := perTarget[target]; ok {
			continue
		}
		in := make(chan models.ProbeResult)
		perTarget[target] = in

		m.wg.Add(1)
		go m.trackStats(stream.RollingStats(m.ctx, in, m.config.Window))
	}
	defer func() {
		for _, in := range perTarget {
			close(in)
		}
	}()

	for result := range stream.Merge(m.ctx, results...) {
		m.handle(result)

		in, ok := perTarget[result.Info().Target]
		if !ok {
			continue
		}
		select {
		case in <- result:
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Monitor) handle(result models.ProbeResult) {
	info := result.Info()
	if err := m.store.SaveResult(result); err != nil {
		log.WithError(err).WithField("target", info.Target).Error("failed to save result")
	}
	if err := m.recorder.RecordResult(result); err != nil {
		log.WithError(err).Warn("failed to record result")
	}

	if f, ok := result.(*models.Failure); ok {
		log.WithFields(log.Fields{"target": info.Target, "error": f.Kind}).Debug("ping failed")
	}
}

func (m *Monitor) trackStats(stats <-chan models.RollingStats) {
	defer m.wg.Done()

	for s := range stats {
		m.setLive(s)
		if err := m.recorder.RecordStats(s); err != nil {
			log.WithError(err).Warn("failed to record stats")
		}
	}
}
