package ping

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pingflow/internal/models"
	"pingflow/internal/runner"
)

// Output patterns of the supported ping dialects. New platform variants are
// added here.
var (
	// packet counts: iputils/BSD, then Windows
	statsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+) packets transmitted, (\d+) (?:packets )?received`),
		regexp.MustCompile(`Packets: Sent = (\d+), Received = (\d+)`),
	}

	// min/avg/max/stddev, BusyBox omits the deviation
	summaryPattern     = regexp.MustCompile(`(?:rtt|round-trip) min/avg/max/(?:mdev|stddev) = ([\d.]+)/([\d.]+)/([\d.]+)/([\d.]+) ms`)
	summaryPatternBare = regexp.MustCompile(`(?:rtt|round-trip) min/avg/max = ([\d.]+)/([\d.]+)/([\d.]+) ms`)
	// Windows prints min, max, avg
	windowsSummaryPattern = regexp.MustCompile(`Minimum = ([\d.]+)ms, Maximum = ([\d.]+)ms, Average = ([\d.]+)ms`)

	lossPattern      = regexp.MustCompile(`([\d.]+)% (?:packet )?loss`)
	replyTimePattern = regexp.MustCompile(`(?i)time\s*(?:=|<=?)\s*([\d.]+)\s*ms`)
)

// errorClasses is matched in order against the lowercased output, first
// match wins.
var errorClasses = []struct {
	kind    models.ErrorKind
	needles []string
}{
	{models.ErrorHostNotFound, []string{"unknown host", "name or service not known"}},
	{models.ErrorHostUnreachable, []string{"no route to host", "host unreachable"}},
	{models.ErrorPermissionDenied, []string{"permission denied"}},
	{models.ErrorTimeout, []string{"timeout", "timed out"}},
}

// Parse turns the outcome of running the command built from cfg into a
// probe result.
func Parse(out runner.Outcome, cfg Config, at time.Time) models.ProbeResult {
	text := out.Combined()
	info := models.ProbeInfo{
		Target:    cfg.Host,
		Timestamp: at,
		Output:    text,
		Config:    cfg.echo(),
	}

	if out.ExitCode == nil || *out.ExitCode != 0 {
		kind := classify(text)
		if kind == models.ErrorUnknown && out.TimedOut {
			kind = models.ErrorTimeout
		}
		return &models.Failure{ProbeInfo: info, Kind: kind}
	}

	s := &models.Success{ProbeInfo: info, Lines: parseLines(text)}

	if tx, rx, ok := matchStats(text); ok {
		s.Transmitted, s.Received = tx, rx
		s.Loss = lossPercent(tx, rx)
	} else if m := lossPattern.FindStringSubmatch(text); m != nil {
		s.Loss, _ = strconv.ParseFloat(m[1], 64)
	} else if len(s.Lines) == 0 {
		// nothing to go by, no reply seen
		s.Loss = 100
	}

	parseSummary(text, s)

	if s.Loss >= 100 {
		return &models.Failure{ProbeInfo: info, Kind: classify(text)}
	}
	return s
}

// FailureFromError builds a failure for a run that produced no output to
// parse, such as a spawn error or a timeout in background mode.
func FailureFromError(err error, cfg Config, at time.Time) *models.Failure {
	msg := err.Error()
	kind := models.ErrorUnknown
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") {
		kind = models.ErrorTimeout
	}
	return &models.Failure{
		ProbeInfo: models.ProbeInfo{
			Target:    cfg.Host,
			Timestamp: at,
			Output:    msg,
			Config:    cfg.echo(),
		},
		Kind: kind,
	}
}

func classify(text string) models.ErrorKind {
	lower := strings.ToLower(text)
	for _, c := range errorClasses {
		for _, n := range c.needles {
			if strings.Contains(lower, n) {
				return c.kind
			}
		}
	}
	return models.ErrorUnknown
}

func lossPercent(transmitted, received int) float64 {
	if transmitted == 0 {
		return 100
	}
	return math.Round(float64(transmitted-received) / float64(transmitted) * 100)
}

func matchStats(text string) (tx, rx int, ok bool) {
	for _, re := range statsPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		tx, _ = strconv.Atoi(m[1])
		rx, _ = strconv.Atoi(m[2])
		return tx, rx, true
	}
	return 0, 0, false
}

func parseSummary(text string, s *models.Success) {
	if m := summaryPattern.FindStringSubmatch(text); m != nil {
		s.MinRTT, s.AvgRTT, s.MaxRTT, s.StdDevRTT = parseMs(m[1]), parseMs(m[2]), parseMs(m[3]), parseMs(m[4])
		return
	}
	if m := summaryPatternBare.FindStringSubmatch(text); m != nil {
		s.MinRTT, s.AvgRTT, s.MaxRTT = parseMs(m[1]), parseMs(m[2]), parseMs(m[3])
		return
	}
	if m := windowsSummaryPattern.FindStringSubmatch(text); m != nil {
		s.MinRTT, s.MaxRTT, s.AvgRTT = parseMs(m[1]), parseMs(m[2]), parseMs(m[3])
	}
}

func parseMs(v string) *float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseLines(text string) []models.ResultLine {
	var lines []models.ResultLine
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		m := replyTimePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		t, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			t = 0
		}
		lines = append(lines, models.ResultLine{Line: line, Time: t})
	}
	return lines
}
