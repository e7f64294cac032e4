package database

import (
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// timestamps are stored as UTC text so that they compare with sqlite's
// datetime() results
const timeLayout = "2006-01-02 15:04:05.000"

// DB wraps sql.DB with additional methods
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// WAL lets the web server read while the monitor writes
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			log.WithError(err).WithField("pragma", pragma).Warn("pragma failed")
		}
	}

	return &DB{db}, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS ping_results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp TEXT NOT NULL,
        target TEXT NOT NULL,
        success BOOLEAN NOT NULL,
        rtt_ms REAL,
        min_rtt_ms REAL,
        max_rtt_ms REAL,
        packet_loss REAL NOT NULL,
        error_kind TEXT,
        output TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_timestamp ON ping_results(timestamp);
    CREATE INDEX IF NOT EXISTS idx_target_timestamp ON ping_results(target, timestamp);

    CREATE TABLE IF NOT EXISTS hourly_stats (
        hour TEXT NOT NULL,
        target TEXT NOT NULL,
        total_pings INTEGER,
        successful_pings INTEGER,
        avg_rtt_ms REAL,
        max_rtt_ms REAL,
        min_rtt_ms REAL,
        packet_loss_percent REAL,
        PRIMARY KEY (hour, target)
    );
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}
