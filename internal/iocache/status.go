package iocache

import (
	"fmt"
	"io"
	"slices"

	"github.com/huangsam/gitwalk/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeLayout))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintJournalStatus prints walk journal status information.
func PrintJournalStatus(w io.Writer, status schema.JournalStatus) {
	_, _ = fmt.Fprintf(w, "Journal Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Walks: %d\n", status.TotalWalks)
	if status.TotalWalks > 0 {
		_, _ = fmt.Fprintf(w, "Failed Walks: %d\n", status.FailedWalks)
		_, _ = fmt.Fprintf(w, "Last Walk ID: %d\n", status.LastWalkID)
		_, _ = fmt.Fprintf(w, "Last Walk: %s\n", status.LastWalkTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Walk: %s\n", status.OldestWalkTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Total Commits Visited: %d\n", status.TotalCommitsVisited)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
