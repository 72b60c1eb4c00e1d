package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// JournalStatus represents the status of the walk journal.
type JournalStatus struct {
	Backend             string           `json:"backend"`
	Connected           bool             `json:"connected"`
	TotalWalks          int              `json:"total_walks"`
	FailedWalks         int              `json:"failed_walks"`
	LastWalkID          int64            `json:"last_walk_id"`
	LastWalkTime        time.Time        `json:"last_walk_time"`
	OldestWalkTime      time.Time        `json:"oldest_walk_time"`
	TotalCommitsVisited int              `json:"total_commits_visited"`
	TableSizes          map[string]int64 `json:"table_sizes"`
}
