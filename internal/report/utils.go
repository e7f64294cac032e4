package report

import (
	"sort"
	"strings"
	"time"

	"pingflow/internal/models"
)

// sanitizeFilename replaces dots and special characters for safe filenames
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		".", "_",
		":", "_",
		"/", "_",
		"\\", "_",
		" ", "_",
		"%", "_",
		"[", "",
		"]", "",
	)
	return replacer.Replace(s)
}

// targetSeries holds one target's results, oldest first
type targetSeries struct {
	target  string
	results []models.StoredResult
}

func groupByTarget(results []models.StoredResult) []targetSeries {
	byTarget := make(map[string][]models.StoredResult)
	for _, r := range results {
		byTarget[r.Target] = append(byTarget[r.Target], r)
	}

	series := make([]targetSeries, 0, len(byTarget))
	for target, rs := range byTarget {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Timestamp.Before(rs[j].Timestamp) })
		series = append(series, targetSeries{target: target, results: rs})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].target < series[j].target })
	return series
}

// latency returns the response times of the successful results.
func (s targetSeries) latency() ([]time.Time, []float64) {
	var xs []time.Time
	var ys []float64
	for _, r := range s.results {
		if r.Success {
			xs = append(xs, r.Timestamp)
			ys = append(ys, r.RTT)
		}
	}
	return xs, ys
}

// hourlyLoss returns the mean packet loss per hour.
func (s targetSeries) hourlyLoss() ([]time.Time, []float64) {
	var xs []time.Time
	var ys []float64
	var sum float64
	var n int
	flush := func() {
		if n > 0 {
			ys = append(ys, sum/float64(n))
		}
	}
	for _, r := range s.results {
		hour := r.Timestamp.Truncate(time.Hour)
		if len(xs) == 0 || !xs[len(xs)-1].Equal(hour) {
			flush()
			xs = append(xs, hour)
			sum, n = 0, 0
		}
		sum += r.PacketLoss
		n++
	}
	flush()
	return xs, ys
}
