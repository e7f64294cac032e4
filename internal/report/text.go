package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pingflow/internal/database"
	"pingflow/internal/models"
)

func (g *Generator) generateTextReport(outputDir string, hours int, series []targetSeries, outages []models.Outage) error {
	stats, err := g.store.GetStats(hours)
	if err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(outputDir, "summary.txt"))
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	fmt.Fprintf(w, "Network Connectivity Report\n")
	fmt.Fprintf(w, "Generated: %s\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Period: Last %d hours\n\n", hours)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintln(w, "\nOVERALL STATISTICS")
	for _, s := range stats {
		uptime := 0.0
		if s.TotalPings > 0 {
			uptime = float64(s.Successful) / float64(s.TotalPings) * 100
		}

		fmt.Fprintf(w, "Target: %s\n", s.Target)
		fmt.Fprintf(w, "  Total Pings: %d\n", s.TotalPings)
		fmt.Fprintf(w, "  Successful: %d (%.2f%%)\n", s.Successful, uptime)
		fmt.Fprintf(w, "  Packet Loss: %.2f%%\n", s.PacketLoss)
		if s.Successful > 0 {
			fmt.Fprintf(w, "  Average RTT: %.2f ms\n", s.AvgRTT)
			fmt.Fprintf(w, "  Min RTT: %.2f ms\n", s.MinRTT)
			fmt.Fprintf(w, "  Max RTT: %.2f ms\n", s.MaxRTT)
		}
		if kinds := errorKinds(series, s.Target); kinds != "" {
			fmt.Fprintf(w, "  Failures: %s\n", kinds)
		}
		fmt.Fprintln(w)
	}
	if len(stats) == 0 {
		fmt.Fprintln(w, "No results recorded.")
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nOUTAGE PERIODS (%d+ consecutive failures)\n", database.MinOutageChecks)
	since := g.now().Add(-time.Duration(hours) * time.Hour)
	count := 0
	for _, o := range outages {
		if o.EndTime.Before(since) {
			continue
		}
		count++
		fmt.Fprintf(w, "Outage #%d\n", count)
		fmt.Fprintf(w, "  Target: %s\n", o.Target)
		fmt.Fprintf(w, "  Start: %s\n", o.StartTime.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  End: %s\n", o.EndTime.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  Duration: %s\n", o.Duration)
		fmt.Fprintf(w, "  Failed Checks: %d\n", o.FailedChecks)
		fmt.Fprintln(w)
	}

	if count == 0 {
		fmt.Fprintln(w, "No significant outages detected.")
	} else {
		fmt.Fprintf(w, "\nTotal Outages: %d\n", count)
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "\nCharts are available in the accompanying files.")

	return w.Flush()
}

// errorKinds summarizes failure kinds for one target as "kind=n, ..."
func errorKinds(series []targetSeries, target string) string {
	counts := make(map[string]int)
	for _, s := range series {
		if s.target != target {
			continue
		}
		for _, r := range s.results {
			if !r.Success && r.ErrorKind != "" {
				counts[r.ErrorKind]++
			}
		}
	}

	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}
