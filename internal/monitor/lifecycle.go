package monitor

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// maintenanceWorker runs periodic maintenance tasks
func (m *Monitor) maintenanceWorker() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.maintain)
	defer ticker.Stop()

	// Run immediately on start
	m.performMaintenance()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.performMaintenance()
		}
	}
}

// performMaintenance rolls up and drops old raw results
func (m *Monitor) performMaintenance() {
	start := time.Now()
	if err := m.store.ArchiveOldData(); err != nil {
		log.WithError(err).Error("failed to archive old data")
		return
	}
	log.WithField("took", time.Since(start)).Debug("maintenance complete")
}
