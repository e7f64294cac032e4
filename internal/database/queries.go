package database

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"pingflow/internal/models"
)

// MinOutageChecks is the number of consecutive failures that make an outage
const MinOutageChecks = 3

// SaveResult saves a probe result to the database
func (db *DB) SaveResult(result models.ProbeResult) error {
	var (
		rtt, minRTT, maxRTT sql.NullFloat64
		errorKind           sql.NullString
	)
	switch r := result.(type) {
	case *models.Success:
		rtt = sql.NullFloat64{Float64: r.AverageResponseTime(), Valid: true}
		minRTT = nullFloat(r.MinRTT)
		maxRTT = nullFloat(r.MaxRTT)
	case *models.Failure:
		errorKind = sql.NullString{String: string(r.Kind), Valid: true}
	}

	info := result.Info()
	query := `
        INSERT INTO ping_results (timestamp, target, success, rtt_ms, min_rtt_ms, max_rtt_ms, packet_loss, error_kind, output)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := db.Exec(query,
		formatTime(info.Timestamp),
		info.Target,
		result.Succeeded(),
		rtt,
		minRTT,
		maxRTT,
		result.PacketLoss(),
		errorKind,
		info.Output,
	)
	if err != nil {
		return fmt.Errorf("save result for %s: %w", info.Target, err)
	}
	return nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// GetRecent retrieves recent results, newest first
func (db *DB) GetRecent(hours int) ([]models.StoredResult, error) {
	query := `
        SELECT timestamp, target, success, rtt_ms, packet_loss, error_kind
        FROM ping_results
        WHERE timestamp > datetime('now', '-' || ? || ' hours')
        ORDER BY timestamp DESC
        LIMIT 10000
    `

	rows, err := db.Query(query, hours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.StoredResult
	for rows.Next() {
		var r models.StoredResult
		var ts string
		var rtt sql.NullFloat64
		var errorKind sql.NullString
		if err := rows.Scan(&ts, &r.Target, &r.Success, &rtt, &r.PacketLoss, &errorKind); err != nil {
			log.WithError(err).Warn("skipping unreadable result row")
			continue
		}
		if r.Timestamp, err = parseTime(ts); err != nil {
			log.WithError(err).Warn("skipping result with bad timestamp")
			continue
		}
		r.RTT = rtt.Float64
		r.ErrorKind = errorKind.String
		results = append(results, r)
	}

	return results, rows.Err()
}

// GetStats retrieves aggregated statistics per target
func (db *DB) GetStats(hours int) ([]models.Stats, error) {
	query := `
        SELECT
            target,
            COUNT(*) as total_pings,
            SUM(CASE WHEN success THEN 1 ELSE 0 END) as successful_pings,
            COALESCE(AVG(CASE WHEN success THEN rtt_ms END), 0) as avg_rtt,
            COALESCE(MAX(CASE WHEN success THEN rtt_ms END), 0) as max_rtt,
            COALESCE(MIN(CASE WHEN success THEN rtt_ms END), 0) as min_rtt,
            ROUND(AVG(packet_loss), 2) as packet_loss
        FROM ping_results
        WHERE timestamp > datetime('now', '-' || ? || ' hours')
        GROUP BY target
        ORDER BY target
    `

	rows, err := db.Query(query, hours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.Stats
	for rows.Next() {
		var s models.Stats
		err := rows.Scan(&s.Target, &s.TotalPings, &s.Successful,
			&s.AvgRTT, &s.MaxRTT, &s.MinRTT, &s.PacketLoss)
		if err != nil {
			log.WithError(err).Warn("skipping unreadable stats row")
			continue
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOutages finds runs of at least MinOutageChecks consecutive failures
func (db *DB) GetOutages(days int) ([]models.Outage, error) {
	query := `
        WITH ordered AS (
            SELECT
                target,
                timestamp,
                success,
                ROW_NUMBER() OVER (PARTITION BY target ORDER BY timestamp) -
                ROW_NUMBER() OVER (PARTITION BY target, success ORDER BY timestamp) as grp
            FROM ping_results
            WHERE timestamp > datetime('now', '-' || ? || ' days')
        )
        SELECT
            target,
            MIN(timestamp) as start_time,
            MAX(timestamp) as end_time,
            COUNT(*) as failed_checks
        FROM ordered
        WHERE success = 0
        GROUP BY target, grp
        HAVING COUNT(*) >= ?
        ORDER BY start_time DESC
        LIMIT 100
    `

	rows, err := db.Query(query, days, MinOutageChecks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outages []models.Outage
	for rows.Next() {
		var o models.Outage
		var start, end string
		if err := rows.Scan(&o.Target, &start, &end, &o.FailedChecks); err != nil {
			log.WithError(err).Warn("skipping unreadable outage row")
			continue
		}
		if o.StartTime, err = parseTime(start); err != nil {
			continue
		}
		if o.EndTime, err = parseTime(end); err != nil {
			continue
		}
		o.Duration = o.EndTime.Sub(o.StartTime).String()
		outages = append(outages, o)
	}

	return outages, rows.Err()
}
