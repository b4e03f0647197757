package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// writeOp is one durable write. fn must be safe to repeat.
type writeOp struct {
	draftID  uuid.UUID
	name     string
	fn       func(ctx context.Context) error
	queuedAt time.Time
}

// persister writes through to the store with bounded retries and hands anything
// that still fails to the reconciler, so the draft never waits on the store for long.
type persister struct {
	clock          clockwork.Clock
	attempts       int
	retryDelay     time.Duration
	attemptTimeout time.Duration
	reconciler     *Reconciler
}

// write returns the last error when the op had to be queued. Callers log it and carry on.
func (p *persister) write(ctx context.Context, op writeOp) error {
	// Preserve per-draft order behind anything already queued
	if p.reconciler.Pending(op.draftID) {
		p.reconciler.enqueue(op)
		return fmt.Errorf("%s queued behind reconciler backlog", op.name)
	}

	if err := p.writeWithRetry(ctx, op); err != nil {
		persistenceFailures.WithLabelValues(op.name).Inc()
		log.Error().
			Err(err).
			Str("draft_id", op.draftID.String()).
			Str("operation", op.name).
			Msg("store write failed, queued for reconciliation")
		p.reconciler.enqueue(op)
		return err
	}
	return nil
}

func (p *persister) writeWithRetry(ctx context.Context, op writeOp) error {
	var lastErr error

	for attempt := 0; attempt < p.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.clock.After(p.retryDelay * time.Duration(attempt)):
			}
		}

		if err := p.attempt(ctx, op); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("draft_id", op.draftID.String()).
				Str("operation", op.name).
				Int("attempt", attempt+1).
				Msg("store write failed, retrying")
			continue
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", p.attempts, lastErr)
}

func (p *persister) attempt(ctx context.Context, op writeOp) error {
	actx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
	defer cancel()
	return op.fn(actx)
}
