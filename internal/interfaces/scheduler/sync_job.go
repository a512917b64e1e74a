package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"kasa/internal/domain/banksync"
)

// BankSyncJob implements the Job interface for syncing one user's bank
// transactions from the aggregation provider.
type BankSyncJob struct {
	userID      int64
	syncService *banksync.SyncService
}

// NewBankSyncJob creates a new bank sync job for a user
func NewBankSyncJob(userID int64, syncService *banksync.SyncService) *BankSyncJob {
	return &BankSyncJob{
		userID:      userID,
		syncService: syncService,
	}
}

// Execute runs the bank sync job
func (j *BankSyncJob) Execute(ctx context.Context) error {
	log.Printf("Starting bank sync for user %d", j.userID)

	result, err := j.syncService.SyncUser(ctx, j.userID)
	if err != nil {
		log.Printf("Bank sync failed for user %d: %v", j.userID, err)
		return fmt.Errorf("sync failed: %w", err)
	}

	if len(result.Errors) > 0 {
		log.Printf("Bank sync for user %d completed with errors: Created=%d, Updated=%d, FlaggedDuplicate=%d, Skipped=%d, Errors=%d",
			j.userID, result.Created, result.Updated, result.FlaggedDuplicate, result.Skipped, len(result.Errors))
		// Return error to mark for retry
		return fmt.Errorf("sync completed with %d errors", len(result.Errors))
	}

	log.Printf("Bank sync for user %d completed successfully: Created=%d, Updated=%d, FlaggedDuplicate=%d, Skipped=%d",
		j.userID, result.Created, result.Updated, result.FlaggedDuplicate, result.Skipped)

	return nil
}

// UserID returns the user ID associated with this job
func (j *BankSyncJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

// Description returns a human-readable description of the job
func (j *BankSyncJob) Description() string {
	return fmt.Sprintf("Bank sync for user %d", j.userID)
}
