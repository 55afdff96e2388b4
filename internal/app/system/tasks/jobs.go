// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	documentstore "github.com/dalemusser/dealdocs/internal/app/store/document"
	folderstore "github.com/dalemusser/dealdocs/internal/app/store/folder"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CounterReconciliationJob creates a job that recomputes each folder's
// denormalized document_count from the documents collection. The
// counters are $inc-maintained on upload/move/delete and drift when
// concurrent sessions race or a mutation partially fails.
func CounterReconciliationJob(db *mongo.Database, logger *zap.Logger) Job {
	folders := folderstore.New(db)
	documents := documentstore.New(db)

	return Job{
		Name:     "counter-reconciliation",
		Interval: 15 * time.Minute,
		Run: func(ctx context.Context) error {
			all, err := folders.ListAll(ctx, folderstore.ListOptions{})
			if err != nil {
				return err
			}

			fixed := 0
			for _, f := range all {
				actual, err := documents.CountByFolderID(ctx, f.ID)
				if err != nil {
					return err
				}
				if actual == f.DocumentCount {
					continue
				}
				if err := folders.SetDocumentCount(ctx, f.ID, actual); err != nil {
					return err
				}
				logger.Warn("reconciled folder document count",
					zap.String("folder_id", f.ID.Hex()),
					zap.Int64("was", f.DocumentCount),
					zap.Int64("now", actual))
				fixed++
			}

			if fixed > 0 {
				logger.Info("counter reconciliation complete",
					zap.Int("folders_fixed", fixed))
			}
			return nil
		},
	}
}

// AuditRetentionJob creates a job that prunes audit events older than
// the retention window.
func AuditRetentionJob(db *mongo.Database, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "audit-retention",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().Add(-retention)
			result, err := db.Collection("audit_logs").DeleteMany(ctx, bson.M{
				"created_at": bson.M{"$lt": cutoff},
			})
			if err != nil {
				return err
			}
			if result.DeletedCount > 0 {
				logger.Info("pruned old audit events",
					zap.Int64("deleted", result.DeletedCount))
			}
			return nil
		},
	}
}
