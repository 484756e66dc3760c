package workers

import (
	"context"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// MaintenanceWorker reclaims disk space from badger's value log on a
// timer. A single store serves users, conversations and messages, so one
// worker covers all of them.
type MaintenanceWorker struct {
	log        *slog.Logger
	db         *badger.DB
	gcInterval time.Duration
}

func NewMaintenanceWorker(log *slog.Logger, db *badger.DB, gcInterval time.Duration) *MaintenanceWorker {
	return &MaintenanceWorker{log: log, db: db, gcInterval: gcInterval}
}

func (w *MaintenanceWorker) Run(ctx context.Context) error {
	w.log.Info("Starting storage maintenance worker", "interval", w.gcInterval)
	ticker := time.NewTicker(w.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// badger asks for repeated calls: each run rewrites at most
			// one value log file. ErrNoRewrite just means nothing to do.
			for {
				if err := w.db.RunValueLogGC(0.5); err != nil {
					if err != badger.ErrNoRewrite {
						w.log.Warn("Value log GC failed", "err", err)
					}
					break
				}
				w.log.Debug("Value log file reclaimed")
			}
		}
	}
}
