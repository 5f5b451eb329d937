// Package worker recomputes report snapshots in response to ledger
// change messages, so readers see fresh aggregates without paying the
// recompute cost on their own request.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/log"
	"bilancio/internal/report"
	"bilancio/internal/services"
)

// RefreshWorker listens for ledger changes and refreshes the affected
// owner's snapshots: the current month and the full year. It also runs
// a periodic sweep for owners seen so far, as a backup in case messages
// are lost.
type RefreshWorker struct {
	reports *services.ReportService
	logger  *log.Logger

	mu     sync.Mutex
	owners map[string]time.Time
}

func NewRefreshWorker(reports *services.ReportService, logger *log.Logger) *RefreshWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	}
	return &RefreshWorker{
		reports: reports,
		logger:  logger,
		owners:  make(map[string]time.Time),
	}
}

// HandleLedgerChanged processes one change message. A refresh failure is
// returned so the consumer requeues the message.
func (w *RefreshWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		"message_id", msg.MessageID,
		"owner", msg.Owner,
		"reason", msg.Reason,
		"record_id", msg.RecordID)

	if err := w.refreshOwner(ctx, msg.Owner); err != nil {
		return fmt.Errorf("refresh owner %q: %w", msg.Owner, err)
	}

	w.mu.Lock()
	w.owners[msg.Owner] = time.Now()
	w.mu.Unlock()
	return nil
}

// RunPeriodic sweeps every known owner at the given interval until the
// context is cancelled. Sweep failures are logged, not fatal: the next
// tick retries.
func (w *RefreshWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, owner := range w.knownOwners() {
				if err := w.refreshOwner(ctx, owner); err != nil {
					w.logger.ErrorContext(ctx, "Periodic refresh failed",
						"owner", owner, "error", err)
				}
			}
		}
	}
}

func (w *RefreshWorker) knownOwners() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	owners := make([]string, 0, len(w.owners))
	for owner := range w.owners {
		owners = append(owners, owner)
	}
	return owners
}

func (w *RefreshWorker) refreshOwner(ctx context.Context, owner string) error {
	monthly := w.reports.DefaultPeriod()
	yearly := report.Period{Mode: report.ModeYearly, Year: monthly.Year}

	for _, period := range []report.Period{monthly, yearly} {
		snap, err := w.reports.Refresh(ctx, owner, period)
		if err != nil {
			return err
		}
		w.logger.InfoContext(ctx, "Snapshot refreshed",
			"owner", owner,
			"mode", string(period.Mode),
			"year", snap.Period.Year,
			"generation", snap.Generation)
	}
	return nil
}
