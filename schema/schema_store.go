package schema

import "time"

// CommitVisitRecord is one commit step of a journaled walk.
type CommitVisitRecord struct {
	WalkID     int64
	Sequence   int
	CommitHash string
	VisitedAt  time.Time
	DurationMs int64
	Outcome    VisitOutcome
	ErrorText  *string
}

// WalkRunRecord represents a row from the gitwalk_walk_runs table.
type WalkRunRecord struct {
	WalkID           int64
	RepoPath         string
	StartTime        time.Time
	EndTime          *time.Time
	RunDurationMs    *int64
	TotalCommits     int32
	SelectedCommits  int32
	VisitedCommits   int32
	FinalState       *string
	ErrorText        *string
	RestoreErrorText *string
	ConfigParams     *string
}
