// Package logging sets up the process wide logrus logger and the results
// recorder.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFile is the name of the rotated log file inside the log directory
const LogFile = "pingflow.log"

// Config controls the log level and the optional rotated log file
type Config struct {
	Level    string
	Dir      string
	MaxMB    int
	MaxFiles int
}

// Setup configures the standard logrus logger: text on stderr and, when a
// directory is set, JSON lines in a rotated file. The returned closer
// releases that file.
func Setup(cfg Config) (io.Closer, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.StandardLogger().ReplaceHooks(make(log.LevelHooks))

	if cfg.Dir == "" {
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, LogFile),
		MaxSize:    cfg.MaxMB,
		MaxBackups: cfg.MaxFiles,
	}
	log.AddHook(&fileHook{w: lj, formatter: &log.JSONFormatter{}})
	return lj, nil
}

// fileHook writes every entry to w in its own format.
type fileHook struct {
	w         io.Writer
	formatter log.Formatter
}

func (h *fileHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *fileHook) Fire(entry *log.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.w.Write(b)
	return err
}
