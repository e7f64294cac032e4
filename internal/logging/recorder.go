package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"pingflow/internal/models"
)

// Recorder appends probe results and statistics as JSON lines to a rotated
// file. A nil *Recorder discards everything.
type Recorder struct {
	mu     sync.Mutex
	writer io.WriteCloser
	seq    uint64
}

// Record is one line of the results file
type Record struct {
	TS   time.Time `json:"ts"`
	Seq  uint64    `json:"seq"`
	Type string    `json:"type"`
	Data any       `json:"data"`
}

// NewRecorder opens path for appending, rotating it at maxMB megabytes and
// keeping maxFiles old files.
func NewRecorder(path string, maxMB, maxFiles int) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create results dir: %w", err)
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxMB,
		MaxBackups: maxFiles,
	}
	return &Recorder{writer: lj}, nil
}

// RecordResult appends a probe result.
func (r *Recorder) RecordResult(res models.ProbeResult) error {
	return r.write("result", res)
}

// RecordStats appends a rolling statistics snapshot.
func (r *Recorder) RecordStats(stats models.RollingStats) error {
	return r.write("stats", stats)
}

func (r *Recorder) write(kind string, data any) error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	b, err := json.Marshal(Record{TS: time.Now().UTC(), Seq: r.seq, Type: kind, Data: data})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	b = append(b, '\n')

	_, err = r.writer.Write(b)
	return err
}

// Close releases the results file.
func (r *Recorder) Close() error {
	if r == nil || r.writer == nil {
		return nil
	}
	return r.writer.Close()
}
