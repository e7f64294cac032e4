package database

import (
	"time"
)

// RawRetention is how long individual results are kept before only their
// hourly rollup remains
const RawRetention = 7 * 24 * time.Hour

// ArchiveOldData rolls up results older than RawRetention into hourly_stats
// and deletes them
func (db *DB) ArchiveOldData() error {
	cutoff := formatTime(time.Now().Add(-RawRetention))

	archiveQuery := `
        INSERT OR IGNORE INTO hourly_stats (hour, target, total_pings, successful_pings, avg_rtt_ms, max_rtt_ms, min_rtt_ms, packet_loss_percent)
        SELECT
            substr(timestamp, 1, 13) || ':00:00' as hour,
            target,
            COUNT(*) as total_pings,
            SUM(CASE WHEN success THEN 1 ELSE 0 END) as successful_pings,
            AVG(CASE WHEN success THEN rtt_ms END) as avg_rtt_ms,
            MAX(CASE WHEN success THEN rtt_ms END) as max_rtt_ms,
            MIN(CASE WHEN success THEN rtt_ms END) as min_rtt_ms,
            ROUND(AVG(packet_loss), 2) as packet_loss_percent
        FROM ping_results
        WHERE timestamp < ?
        GROUP BY hour, target
    `
	if _, err := db.Exec(archiveQuery, cutoff); err != nil {
		return err
	}

	if _, err := db.Exec(`DELETE FROM ping_results WHERE timestamp < ?`, cutoff); err != nil {
		return err
	}

	// Vacuum to reclaim space (run occasionally)
	if time.Now().Day() == 1 {
		_, err := db.Exec("VACUUM")
		return err
	}

	return nil
}
