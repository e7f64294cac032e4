package stream

import (
	"context"
	"math"
	"time"

	"github.com/gammazero/deque"

	"pingflow/internal/models"
)

// RollingStats keeps the last windowSize successes and the last windowSize
// results of any kind. Once min(3, windowSize) successes are held it sends a
// fresh snapshot for every further success. Failures only count towards the
// packet loss.
func RollingStats(ctx context.Context, in <-chan models.ProbeResult, windowSize int) <-chan models.RollingStats {
	if windowSize < 1 {
		windowSize = 1
	}
	minSuccesses := min(3, windowSize)

	out := make(chan models.RollingStats)
	go func() {
		defer close(out)
		var successes deque.Deque[*models.Success]
		var all deque.Deque[models.ProbeResult]
		for {
			select {
			case r, ok := <-in:
				if !ok {
					return
				}
				push(&all, r, windowSize)
				s, ok := r.(*models.Success)
				if !ok {
					continue
				}
				push(&successes, s, windowSize)
				if successes.Len() < minSuccesses {
					continue
				}
				stats := Compute(snapshot(&successes), snapshot(&all), time.Now())
				if !send(ctx, out, stats) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func push[T any](q *deque.Deque[T], v T, size int) {
	q.PushBack(v)
	for q.Len() > size {
		q.PopFront()
	}
}

// Compute summarizes the response times of successes and the loss over all.
// The standard deviation is the population one and jitter is the mean
// absolute deviation from the average. Values are rounded to two decimals.
func Compute(successes []*models.Success, all []models.ProbeResult, at time.Time) models.RollingStats {
	stats := models.RollingStats{Timestamp: at, PacketLoss: 100}
	if len(all) > 0 {
		stats.Target = all[len(all)-1].Info().Target
	}
	if len(successes) == 0 {
		return stats
	}

	times := make([]float64, len(successes))
	sum := 0.0
	minimum, maximum := math.Inf(1), math.Inf(-1)
	for i, s := range successes {
		t := s.AverageResponseTime()
		times[i] = t
		sum += t
		minimum = math.Min(minimum, t)
		maximum = math.Max(maximum, t)
	}
	n := float64(len(times))
	avg := sum / n

	var variance, deviation float64
	for _, t := range times {
		variance += (t - avg) * (t - avg)
		deviation += math.Abs(t - avg)
	}

	failed := 0
	for _, r := range all {
		if !r.Succeeded() {
			failed++
		}
	}
	loss := 0.0
	if len(all) > 0 {
		loss = float64(failed) / float64(len(all)) * 100
	}

	stats.Count = len(successes)
	stats.Average = round2(avg)
	stats.Minimum = round2(minimum)
	stats.Maximum = round2(maximum)
	stats.StandardDeviation = round2(math.Sqrt(variance / n))
	stats.Jitter = round2(deviation / n)
	stats.PacketLoss = round2(loss)
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
