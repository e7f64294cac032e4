package models

// Store defines operations for result persistence
type Store interface {
	SaveResult(result ProbeResult) error
	GetRecent(hours int) ([]StoredResult, error)
	GetStats(hours int) ([]Stats, error)
	GetOutages(days int) ([]Outage, error)
	ArchiveOldData() error
}

// LiveStats exposes the latest rolling statistics per target
type LiveStats interface {
	Live() []RollingStats
}
