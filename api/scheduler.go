/*
scheduler.go - Automated projection snapshot scheduler

PURPOSE:
  Periodically recomputes the projection for every stored document and
  persists the headline summary, so dashboards can read a cheap snapshot
  instead of projecting on every page load.

DESIGN:
  - Runs on a cron schedule (default: hourly on the hour)
  - Walks all documents, projects each over its own settings range
  - Saves one ProjectionSnapshot per document, latest-wins
  - A failed document is logged and skipped, never fatal

CONFIGURATION:
  - Spec: cron expression (default: "0 * * * *")
  - Enabled: whether the scheduler is active (default: true)

USAGE:
  scheduler := NewSnapshotScheduler(store, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetSnapshot endpoint reads what this writes
  - engine/persist.go: ProjectionSnapshot definition
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ledgerline/cashflow-engine/engine"
)

// SnapshotScheduler refreshes persisted projection snapshots on a cron
// schedule.
type SnapshotScheduler struct {
	Store   Store
	Spec    string
	Enabled bool

	log  *logrus.Logger
	cron *cron.Cron
	wg   sync.WaitGroup
}

// NewSnapshotScheduler creates a new scheduler with the default hourly
// schedule.
func NewSnapshotScheduler(store Store, log *logrus.Logger) *SnapshotScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SnapshotScheduler{
		Store:   store,
		Spec:    "0 * * * *",
		Enabled: true,
		log:     log,
	}
}

// Start begins the scheduler and runs one refresh immediately.
func (ss *SnapshotScheduler) Start() error {
	if !ss.Enabled {
		ss.log.Info("snapshot scheduler disabled, not starting")
		return nil
	}

	ss.cron = cron.New()
	if _, err := ss.cron.AddFunc(ss.Spec, ss.RefreshAll); err != nil {
		return err
	}
	ss.cron.Start()

	ss.log.WithField("spec", ss.Spec).Info("snapshot scheduler started")

	// Initial refresh runs outside cron; Stop waits for it too.
	ss.wg.Add(1)
	go func() {
		defer ss.wg.Done()
		ss.RefreshAll()
	}()
	return nil
}

// Stop stops the scheduler and waits for any in-flight refresh,
// including the initial one launched by Start.
func (ss *SnapshotScheduler) Stop() {
	if ss.cron == nil {
		return
	}
	ctx := ss.cron.Stop()
	<-ctx.Done()
	ss.wg.Wait()
	ss.log.Info("snapshot scheduler stopped")
}

// RefreshAll recomputes and persists the snapshot for every document.
func (ss *SnapshotScheduler) RefreshAll() {
	ctx := context.Background()

	infos, err := ss.Store.ListDocuments(ctx)
	if err != nil {
		ss.log.WithError(err).Error("snapshot refresh: list documents failed")
		return
	}

	refreshed := 0
	for _, info := range infos {
		if err := ss.refreshOne(ctx, info.ID); err != nil {
			ss.log.WithError(err).WithField("document", info.ID).
				Warn("snapshot refresh: document skipped")
			continue
		}
		refreshed++
	}

	ss.log.WithFields(logrus.Fields{
		"documents": len(infos),
		"refreshed": refreshed,
	}).Info("snapshot refresh complete")
}

func (ss *SnapshotScheduler) refreshOne(ctx context.Context, id string) error {
	doc, err := ss.Store.LoadDocument(ctx, id)
	if err != nil {
		return err
	}

	result := engine.ComputeProjection(doc, nil)
	rng := doc.Range()

	return ss.Store.SaveSnapshot(ctx, engine.ProjectionSnapshot{
		DocumentID:        id,
		ComputedAt:        time.Now().UTC().Format(time.RFC3339),
		RangeStart:        rng.Start,
		RangeEnd:          rng.End,
		EndBalance:        result.EndBalance,
		LowestBalance:     result.LowestBalance,
		LowestBalanceDate: result.LowestBalanceDate,
		FirstNegativeDate: result.FirstNegativeDate,
		NegativeDayCount:  result.NegativeDayCount,
	})
}
