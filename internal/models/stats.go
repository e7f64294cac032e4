package models

import "time"

// RollingStats is a snapshot over the most recent results of one stream
type RollingStats struct {
	Target            string    `json:"target,omitempty"`
	Count             int       `json:"count"` // successful results in the window
	Average           float64   `json:"average_ms"`
	Minimum           float64   `json:"minimum_ms"`
	Maximum           float64   `json:"maximum_ms"`
	StandardDeviation float64   `json:"stddev_ms"`
	Jitter            float64   `json:"jitter_ms"`
	PacketLoss        float64   `json:"packet_loss"` // percentage over all results in the window
	Timestamp         time.Time `json:"timestamp"`
}

// Stats represents aggregated statistics for a target
type Stats struct {
	Target     string  `json:"target"`
	TotalPings int     `json:"total_pings"`
	Successful int     `json:"successful_pings"`
	AvgRTT     float64 `json:"avg_rtt"`
	MaxRTT     float64 `json:"max_rtt"`
	MinRTT     float64 `json:"min_rtt"`
	PacketLoss float64 `json:"packet_loss"`
}

// Outage represents a connectivity outage period
type Outage struct {
	Target       string    `json:"target"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	FailedChecks int       `json:"failed_checks"`
	Duration     string    `json:"duration"`
}

// StoredResult is a flattened probe result as kept in the database
type StoredResult struct {
	Timestamp  time.Time `json:"timestamp"`
	Target     string    `json:"target"`
	Success    bool      `json:"success"`
	RTT        float64   `json:"rtt_ms"`
	PacketLoss float64   `json:"packet_loss"`
	ErrorKind  string    `json:"error_kind,omitempty"`
}
