package workers

import (
	"context"
	"time"

	"github.com/alimgiray/codenexus/pkg/logger"
	"github.com/sirupsen/logrus"
)

const TaskJournalPrune = "journal_prune"

// CreationPruner deletes settled creation journal entries past retention
type CreationPruner interface {
	PruneCreations(retention time.Duration) (int64, error)
}

// PruneWorker periodically removes old entries from the creation journal
type PruneWorker struct {
	*BaseWorker
	pruner    CreationPruner
	retention time.Duration
	interval  time.Duration
}

// NewPruneWorker creates a worker that prunes every interval
func NewPruneWorker(workerID string, pruner CreationPruner, retention, interval time.Duration) *PruneWorker {
	return &PruneWorker{
		BaseWorker: NewBaseWorker(workerID, TaskJournalPrune),
		pruner:     pruner,
		retention:  retention,
		interval:   interval,
	}
}

// Start prunes once immediately and then on every tick
func (w *PruneWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)

	entry := logger.WithFields(logrus.Fields{"worker_id": w.WorkerID, "task": w.Task})
	entry.Info("Prune worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.prune(entry)
	for {
		select {
		case <-ctx.Done():
			entry.Info("Prune worker stopping due to context cancellation")
			return ctx.Err()
		case <-w.StopChan:
			entry.Info("Prune worker stopping")
			return nil
		case <-ticker.C:
			w.prune(entry)
		}
	}
}

func (w *PruneWorker) prune(entry *logrus.Entry) {
	deleted, err := w.pruner.PruneCreations(w.retention)
	if err != nil {
		entry.WithError(err).Error("Failed to prune creation journal")
		return
	}
	if deleted > 0 {
		entry.WithField("deleted", deleted).Info("Pruned creation journal")
	}
}
