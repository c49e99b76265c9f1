package core

import (
	"context"
	"log"

	"github.com/delphiknight/mediaport/internal/core/db"
)

// RetryStats reports the outcome of a retry run.
type RetryStats struct {
	Attempted int
	Succeeded int
	Skipped   int
	Failed    int
}

// RetryFailedImports re-attempts every import that previously logged an
// error. For each entry the old log row is deleted first, then the import
// runs from scratch; the delete-then-reimport order means an interruption in
// between loses that row until the next scan re-discovers the URL, which is
// acceptable because scans re-derive state cheaply.
//
// One entry's failure never blocks the rest of the queue. onResult, if set,
// is called after each attempt.
func RetryFailedImports(ctx context.Context, database *db.DB, opts ImportOptions, onResult func(entry db.ImportLogEntry, result ImportResult, err error)) (RetryStats, error) {
	failed, err := database.ListFailedImports()
	if err != nil {
		return RetryStats{}, err
	}

	var stats RetryStats
	for _, entry := range failed {
		stats.Attempted++

		if err := database.DeleteImportLog(entry.ID); err != nil {
			log.Printf("Retry: failed to delete log entry %d: %v", entry.ID, err)
			stats.Failed++
			if onResult != nil {
				onResult(entry, ImportResult{}, err)
			}
			continue
		}

		result, err := ImportFile(ctx, database, entry.DocumentID, entry.OriginalURL, opts)
		switch {
		case err != nil:
			stats.Failed++
		case result.Status == db.StatusSuccess:
			stats.Succeeded++
		default:
			stats.Skipped++
		}
		if onResult != nil {
			onResult(entry, result, err)
		}
	}

	return stats, nil
}
