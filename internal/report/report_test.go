package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pingflow/internal/database"
	"pingflow/internal/models"
)

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"8.8.8.8":        "8_8_8_8",
		"[fe80::1%eth0]": "fe80__1_eth0",
		"example.com":    "example_com",
		"a/b c":          "a_b_c",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHourlyLoss(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := targetSeries{target: "a", results: []models.StoredResult{
		{Timestamp: base.Add(5 * time.Minute), PacketLoss: 0},
		{Timestamp: base.Add(35 * time.Minute), PacketLoss: 100},
		{Timestamp: base.Add(70 * time.Minute), PacketLoss: 50},
	}}

	xs, ys := s.hourlyLoss()
	if len(xs) != 2 || len(ys) != 2 {
		t.Fatalf("got %d buckets, %d values", len(xs), len(ys))
	}
	if !xs[0].Equal(base) || ys[0] != 50 || ys[1] != 50 {
		t.Errorf("buckets = %v %v", xs, ys)
	}
}

func TestGenerateReport(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.InitSchema(); err != nil {
		t.Fatal(err)
	}

	start := time.Now().Add(-30 * time.Minute)
	for i := 0; i < 15; i++ {
		rtt := 10 + float64(i%4)
		at := start.Add(time.Duration(i) * time.Minute)
		if err := db.SaveResult(&models.Success{
			ProbeInfo:   models.ProbeInfo{Target: "8.8.8.8", Timestamp: at},
			Transmitted: 1,
			Received:    1,
			MinRTT:      &rtt,
			AvgRTT:      &rtt,
			MaxRTT:      &rtt,
		}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 4; i++ {
		at := start.Add(time.Duration(20+i) * time.Minute)
		if err := db.SaveResult(&models.Failure{
			ProbeInfo: models.ProbeInfo{Target: "10.0.0.1", Timestamp: at},
			Kind:      models.ErrorTimeout,
		}); err != nil {
			t.Fatal(err)
		}
	}

	dir, err := NewGenerator(db).GenerateReport(t.TempDir(), 24)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}

	for _, name := range []string{"latency_8_8_8_8.png", "packet_loss.png", "outage_frequency.png", "summary.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "latency_10_0_0_1.png")); err == nil {
		t.Error("latency chart written for a target without successes")
	}

	summary, err := os.ReadFile(filepath.Join(dir, "summary.txt"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Target: 8.8.8.8", "Total Pings: 15", "Target: 10.0.0.1", "Failures: timeout=4", "Total Outages: 1"} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
