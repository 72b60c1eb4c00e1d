package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and journaling.
	DatabaseBackend string

	// ChangeStatus is the name-status letter git reports for a changed path.
	ChangeStatus string

	// WalkState is a state of the commit walk state machine.
	WalkState string

	// VisitOutcome describes how a single commit step of a walk ended.
	VisitOutcome string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Change statuses emitted by git --name-status.
const (
	StatusAdded       ChangeStatus = "A"
	StatusCopied      ChangeStatus = "C"
	StatusDeleted     ChangeStatus = "D"
	StatusModified    ChangeStatus = "M"
	StatusRenamed     ChangeStatus = "R"
	StatusTypeChanged ChangeStatus = "T"
	StatusUnmerged    ChangeStatus = "U"
	StatusUnknown     ChangeStatus = "X"
	StatusBroken      ChangeStatus = "B"
)

// Walk states, in the order a successful walk passes through them.
const (
	WalkIdle        WalkState = "idle"
	WalkSyncing     WalkState = "syncing"
	WalkListing     WalkState = "listing"
	WalkCleaning    WalkState = "cleaning"
	WalkCheckingOut WalkState = "checking_out"
	WalkVisiting    WalkState = "visiting"
	WalkRestoring   WalkState = "restoring"
	WalkDone        WalkState = "done"
	WalkFailed      WalkState = "failed"
)

// Per-commit outcomes recorded in the walk journal.
const (
	OutcomeVisited        VisitOutcome = "visited"
	OutcomeVisitFailed    VisitOutcome = "visit_failed"
	OutcomeCleanupFailed  VisitOutcome = "cleanup_failed"
	OutcomeCheckoutFailed VisitOutcome = "checkout_failed"
	OutcomeCancelled      VisitOutcome = "cancelled"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidChangeStatuses lists the status letters accepted from name-status output.
var ValidChangeStatuses = map[ChangeStatus]struct{}{
	StatusAdded:       {},
	StatusCopied:      {},
	StatusDeleted:     {},
	StatusModified:    {},
	StatusRenamed:     {},
	StatusTypeChanged: {},
	StatusUnmerged:    {},
	StatusUnknown:     {},
	StatusBroken:      {},
}

// HasSourcePath reports whether the status carries both a source and a destination path.
func (s ChangeStatus) HasSourcePath() bool {
	return s == StatusRenamed || s == StatusCopied
}
