// Package contract provides interfaces and shared utilities for gitwalk's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/gitwalk/schema"
)

// Command is a single git invocation.
type Command struct {
	Dir       string   // working directory
	Args      []string // arguments after the git binary
	Env       []string // extra KEY=VALUE pairs appended to the process environment
	MaxOutput int64    // ceiling for captured stdout and stderr, zero means unbounded
}

// CommandRunner executes git commands.
// This allows the repository logic to be tested without needing a real git executable.
type CommandRunner interface {
	// Run blocks until the command exits and returns its captured stdout.
	// A non-zero exit returns a *schema.ExecutionError carrying both streams.
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetLogStore() CacheStore
	GetJournalStore() JournalStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// JournalStore records walk bookkeeping. Visitor results are never stored.
type JournalStore interface {
	// BeginWalk creates a new walk run and returns its unique ID
	BeginWalk(startTime time.Time, repoPath string, params map[string]any) (int64, error)

	// RecordVisit stores the outcome of one commit step
	RecordVisit(record schema.CommitVisitRecord) error

	// EndWalk updates the walk run with completion data
	EndWalk(walkID int64, endTime time.Time, summary schema.WalkSummary) error

	// GetAllWalkRuns returns every walk run ordered by id
	GetAllWalkRuns() ([]schema.WalkRunRecord, error)

	// GetAllCommitVisits returns every commit step ordered by walk and sequence
	GetAllCommitVisits() ([]schema.CommitVisitRecord, error)

	// GetStatus returns status information about the journal
	GetStatus() (schema.JournalStatus, error)

	// Close closes the underlying connection
	Close() error
}
