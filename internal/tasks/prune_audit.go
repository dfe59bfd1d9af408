package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const defaultRetentionDays = 30

// AuditPruner deletes audit events and archived uploads past retention.
type AuditPruner interface {
	Prune(retention time.Duration) (int64, error)
}

// PruneAuditTrailTask removes audit history older than RetentionDays.
type PruneAuditTrailTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit pruning.
func (t PruneAuditTrailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_audit_trail",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Retention converts RetentionDays to a duration, falling back to 30 days.
func (t PruneAuditTrailTask) Retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = defaultRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// PruneAuditTrailProcessor creates the processor for PruneAuditTrailTask.
func PruneAuditTrailProcessor(pruner AuditPruner) backlite.QueueProcessor[PruneAuditTrailTask] {
	return func(ctx context.Context, task PruneAuditTrailTask) error {
		if pruner == nil {
			return fmt.Errorf("audit pruner not configured")
		}

		deleted, err := pruner.Prune(task.Retention())
		if err != nil {
			return fmt.Errorf("prune audit trail: %w", err)
		}

		log.Printf("[TASK] Pruned %d audit events older than %s", deleted, task.Retention())
		return nil
	}
}

// NewPruneAuditTrailQueue creates the backlite queue for audit pruning.
func NewPruneAuditTrailQueue(pruner AuditPruner) backlite.Queue {
	return backlite.NewQueue(PruneAuditTrailProcessor(pruner))
}
