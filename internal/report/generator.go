package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"pingflow/internal/models"
)

// Generator creates static images and a text summary of stored results
type Generator struct {
	store models.Store
	now   func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(store models.Store) *Generator {
	return &Generator{store: store, now: time.Now}
}

// GenerateReport writes charts and a summary of the last hours into a new
// timestamped directory below outputDir and returns its path
func (g *Generator) GenerateReport(outputDir string, hours int) (string, error) {
	reportDir := filepath.Join(outputDir, fmt.Sprintf("pingflow_report_%s", g.now().Format("2006-01-02_15-04-05")))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	results, err := g.store.GetRecent(hours)
	if err != nil {
		return "", fmt.Errorf("load results: %w", err)
	}
	outages, err := g.store.GetOutages(daysFor(hours))
	if err != nil {
		return "", fmt.Errorf("load outages: %w", err)
	}
	series := groupByTarget(results)

	if err := g.generateLatencyCharts(reportDir, series); err != nil {
		log.WithError(err).Warn("failed to generate latency charts")
	}
	if err := g.generateLossChart(reportDir, series); err != nil {
		log.WithError(err).Warn("failed to generate packet loss chart")
	}
	if err := g.generateOutageChart(reportDir, outages); err != nil {
		log.WithError(err).Warn("failed to generate outage chart")
	}
	if err := g.generateTextReport(reportDir, hours, series, outages); err != nil {
		return reportDir, fmt.Errorf("text report: %w", err)
	}

	log.WithField("dir", reportDir).Info("report generated")
	return reportDir, nil
}

func daysFor(hours int) int {
	return (hours + 23) / 24
}
