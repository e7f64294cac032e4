package models

import (
	"encoding/json"
	"time"
)

// ErrorKind classifies why a probe failed. Classification is a best-effort
// text match over the ping output, so anything unmatched ends up as
// ErrorUnknown.
type ErrorKind string

const (
	ErrorHostNotFound     ErrorKind = "hostname_not_found"
	ErrorHostUnreachable  ErrorKind = "host_unreachable"
	ErrorPermissionDenied ErrorKind = "permission_denied"
	ErrorTimeout          ErrorKind = "timeout"
	ErrorUnknown          ErrorKind = "unknown"
)

// ProbeConfig is the effective configuration echoed back on every result
type ProbeConfig struct {
	Timeout    time.Duration `json:"timeout"`
	Interval   time.Duration `json:"interval"`
	PacketSize int           `json:"packet_size,omitempty"`
	TTL        int           `json:"ttl,omitempty"`
	IPVersion  int           `json:"ip_version,omitempty"`
}

// ProbeInfo holds the fields shared by both result variants
type ProbeInfo struct {
	Target    string      `json:"target"`
	Timestamp time.Time   `json:"timestamp"`
	Output    string      `json:"output"`
	Config    ProbeConfig `json:"config"`
}

// Info returns a copy of the shared result fields.
func (p ProbeInfo) Info() ProbeInfo {
	return p
}

// ProbeResult is the outcome of one probe run. It is implemented by *Success
// and *Failure only; use a type switch to get at variant-specific fields.
type ProbeResult interface {
	Info() ProbeInfo
	Succeeded() bool
	PacketLoss() float64
	isProbeResult()
}

// ResultLine is a single parsed reply line
type ResultLine struct {
	Line string  `json:"line"`
	Time float64 `json:"time_ms"` // 0 if the time could not be parsed
}

// Success is a probe that got at least one reply
type Success struct {
	ProbeInfo
	Transmitted int          `json:"transmitted"`
	Received    int          `json:"received"`
	Loss        float64      `json:"packet_loss"` // percentage
	MinRTT      *float64     `json:"min_rtt_ms,omitempty"`
	AvgRTT      *float64     `json:"avg_rtt_ms,omitempty"`
	MaxRTT      *float64     `json:"max_rtt_ms,omitempty"`
	StdDevRTT   *float64     `json:"stddev_rtt_ms,omitempty"`
	Lines       []ResultLine `json:"lines"`
}

func (*Success) isProbeResult() {}

// Succeeded always reports true for a Success.
func (*Success) Succeeded() bool { return true }

// PacketLoss returns the computed loss percentage.
func (s *Success) PacketLoss() float64 { return s.Loss }

// AverageResponseTime prefers the summary average reported by ping, falls back
// to the mean of the per-reply times and finally to 0. It never reports
// "absent" so that statistics over many results stay total.
func (s *Success) AverageResponseTime() float64 {
	if s.AvgRTT != nil {
		return *s.AvgRTT
	}
	if len(s.Lines) == 0 {
		return 0
	}
	var sum float64
	for _, l := range s.Lines {
		sum += l.Time
	}
	return sum / float64(len(s.Lines))
}

// MarshalJSON adds the success discriminant to the encoded result.
func (s *Success) MarshalJSON() ([]byte, error) {
	type success Success
	return json.Marshal(struct {
		Success bool `json:"success"`
		*success
	}{true, (*success)(s)})
}

// Failure is a probe that got no reply at all, or that could not be run
type Failure struct {
	ProbeInfo
	Kind ErrorKind `json:"error"`
}

func (*Failure) isProbeResult() {}

// Succeeded always reports false for a Failure.
func (*Failure) Succeeded() bool { return false }

// PacketLoss is fixed at 100 for failures.
func (*Failure) PacketLoss() float64 { return 100 }

// MarshalJSON adds the success discriminant and the fixed loss to the encoded
// result.
func (f *Failure) MarshalJSON() ([]byte, error) {
	type failure Failure
	return json.Marshal(struct {
		Success    bool    `json:"success"`
		PacketLoss float64 `json:"packet_loss"`
		*failure
	}{false, 100, (*failure)(f)})
}
