package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Reconciler retries store writes that failed in the commit path. Writes for one
// draft are replayed strictly in the order they were queued; different drafts are
// drained concurrently by a small worker pool.
type Reconciler struct {
	clock      clockwork.Clock
	interval   time.Duration
	timeout    time.Duration
	numWorkers int
	instanceID string

	mu     sync.Mutex
	queues map[uuid.UUID][]writeOp

	workCh chan uuid.UUID

	// Track in-flight drafts so two workers never drain the same queue
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

func newReconciler(clock clockwork.Clock, interval, timeout time.Duration, numWorkers int, instanceID string) *Reconciler {
	return &Reconciler{
		clock:      clock,
		interval:   interval,
		timeout:    timeout,
		numWorkers: numWorkers,
		instanceID: instanceID,
		queues:     make(map[uuid.UUID][]writeOp),
		workCh:     make(chan uuid.UUID, numWorkers*2),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

func (r *Reconciler) enqueue(op writeOp) {
	if op.queuedAt.IsZero() {
		op.queuedAt = r.clock.Now()
	}
	r.mu.Lock()
	r.queues[op.draftID] = append(r.queues[op.draftID], op)
	r.mu.Unlock()
	reconcilerBacklog.Inc()
}

// Pending reports whether writes for the draft are waiting.
func (r *Reconciler) Pending(draftID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues[draftID]) > 0
}

// Backlog is the total number of queued writes.
func (r *Reconciler) Backlog() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, q := range r.queues {
		n += len(q)
	}
	return n
}

// Run drains queues on every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	log.Info().
		Str("instance", r.instanceID).
		Int("workers", r.numWorkers).
		Dur("interval", r.interval).
		Msg("store reconciler started")

	var wg sync.WaitGroup
	for i := 0; i < r.numWorkers; i++ {
		wg.Add(1)
		go r.worker(ctx, &wg, i)
	}

	ticker := r.clock.NewTicker(r.interval)
	defer func() {
		ticker.Stop()
		wg.Wait()
		log.Info().Str("instance", r.instanceID).Msg("store reconciler stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.dispatch(ctx)
		}
	}
}

// dispatch hands every draft with a backlog to the worker pool.
func (r *Reconciler) dispatch(ctx context.Context) {
	r.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.queues))
	for id := range r.queues {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if !r.claim(id) {
			continue
		}
		select {
		case r.workCh <- id:
		case <-ctx.Done():
			r.release(id)
			return
		default:
			r.release(id)
			log.Warn().Str("draft_id", id.String()).Msg("reconciler work channel full")
		}
	}
}

// worker drains draft queues from the work channel
func (r *Reconciler) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			log.Debug().
				Str("instance", r.instanceID).
				Int("worker_id", workerID).
				Msg("reconciler worker shutting down")
			return
		case draftID := <-r.workCh:
			r.drainDraft(ctx, draftID)
			r.release(draftID)
		}
	}
}

// DrainAll makes one synchronous pass over every queue.
func (r *Reconciler) DrainAll(ctx context.Context) {
	r.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.queues))
	for id := range r.queues {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if !r.claim(id) {
			continue
		}
		r.drainDraft(ctx, id)
		r.release(id)
	}
}

// drainDraft replays queued writes in order and stops at the first failure.
func (r *Reconciler) drainDraft(ctx context.Context, draftID uuid.UUID) {
	for {
		r.mu.Lock()
		q := r.queues[draftID]
		if len(q) == 0 {
			delete(r.queues, draftID)
			r.mu.Unlock()
			return
		}
		op := q[0]
		r.mu.Unlock()

		actx, cancel := context.WithTimeout(ctx, r.timeout)
		err := op.fn(actx)
		cancel()
		if err != nil {
			log.Warn().
				Err(err).
				Str("draft_id", draftID.String()).
				Str("operation", op.name).
				Dur("age", r.clock.Since(op.queuedAt)).
				Msg("reconciliation attempt failed")
			return
		}

		r.mu.Lock()
		r.queues[draftID] = r.queues[draftID][1:]
		r.mu.Unlock()
		reconcilerBacklog.Dec()

		log.Info().
			Str("draft_id", draftID.String()).
			Str("operation", op.name).
			Msg("reconciled store write")
	}
}

func (r *Reconciler) claim(draftID uuid.UUID) bool {
	r.inFlightMu.Lock()
	defer r.inFlightMu.Unlock()
	if r.inFlight[draftID] {
		return false
	}
	r.inFlight[draftID] = true
	return true
}

func (r *Reconciler) release(draftID uuid.UUID) {
	r.inFlightMu.Lock()
	delete(r.inFlight, draftID)
	r.inFlightMu.Unlock()
}
