package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type sessionLoader func(ctx context.Context, draftID uuid.UUID) (*session, error)

// registryEntry is published before its session exists so concurrent callers for
// the same draft wait on one load instead of racing to build two. It also stays
// published while the session is torn down, so a reload cannot start until the
// lease of the old session is gone.
type registryEntry struct {
	ready chan struct{}
	s     *session
	err   error

	// removed is non-nil once teardown began and closed when it finished
	removed chan struct{}
}

// registry holds the live sessions of this process, at most one per draft.
type registry struct {
	clock      clockwork.Clock
	leaser     Leaser
	evictAfter time.Duration
	load       sessionLoader

	mu        sync.Mutex
	entries   map[uuid.UUID]*registryEntry
	evictions map[uuid.UUID]clockwork.Timer
}

func newRegistry(clock clockwork.Clock, leaser Leaser, evictAfter time.Duration, load sessionLoader) *registry {
	return &registry{
		clock:      clock,
		leaser:     leaser,
		evictAfter: evictAfter,
		load:       load,
		entries:    make(map[uuid.UUID]*registryEntry),
		evictions:  make(map[uuid.UUID]clockwork.Timer),
	}
}

// getOrCreate returns the live session for a draft, loading it on first use.
// A caller that arrives during teardown waits for it and then loads afresh.
func (r *registry) getOrCreate(ctx context.Context, draftID uuid.UUID) (*session, error) {
	for {
		r.mu.Lock()
		e, ok := r.entries[draftID]
		if ok && e.removed != nil {
			r.mu.Unlock()
			select {
			case <-e.removed:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if ok {
			r.mu.Unlock()
			select {
			case <-e.ready:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if e.err != nil {
				return nil, e.err
			}
			return e.s, nil
		}
		e = &registryEntry{ready: make(chan struct{})}
		r.entries[draftID] = e
		r.mu.Unlock()

		s, err := r.create(ctx, draftID)

		r.mu.Lock()
		e.s, e.err = s, err
		if err != nil {
			delete(r.entries, draftID)
		}
		r.mu.Unlock()
		close(e.ready)

		return s, err
	}
}

func (r *registry) create(ctx context.Context, draftID uuid.UUID) (*session, error) {
	if r.leaser != nil {
		if err := r.leaser.Acquire(ctx, draftID); err != nil {
			return nil, fmt.Errorf("acquire draft lease: %w", err)
		}
	}

	s, err := r.load(ctx, draftID)
	if err != nil {
		r.releaseLease(draftID)
		return nil, err
	}
	return s, nil
}

// get returns a loaded session without creating one.
func (r *registry) get(draftID uuid.UUID) (*session, bool) {
	r.mu.Lock()
	e, ok := r.entries[draftID]
	closing := ok && e.removed != nil
	r.mu.Unlock()
	if !ok || closing {
		return nil, false
	}
	select {
	case <-e.ready:
		return e.s, e.err == nil
	default:
		return nil, false
	}
}

// remove stops a session and forgets it. The entry stays visible until the actor,
// and with it the timer, has stopped and the lease is released. Only the
// registry bookkeeping happens under r.mu, so a slow actor holds up its own
// draft and no other.
func (r *registry) remove(ctx context.Context, draftID uuid.UUID) {
	for {
		r.mu.Lock()
		e, ok := r.entries[draftID]
		if !ok {
			r.mu.Unlock()
			return
		}
		if e.removed != nil {
			// Another caller is already tearing it down
			r.mu.Unlock()
			select {
			case <-e.removed:
			case <-ctx.Done():
			}
			return
		}

		select {
		case <-e.ready:
		default:
			// Still loading; wait and look again
			r.mu.Unlock()
			select {
			case <-e.ready:
				continue
			case <-ctx.Done():
				return
			}
		}

		if t, ok := r.evictions[draftID]; ok {
			t.Stop()
			delete(r.evictions, draftID)
		}
		e.removed = make(chan struct{})
		r.mu.Unlock()

		if e.s != nil {
			e.s.close()
		}
		if e.err == nil {
			r.releaseLease(draftID)
		}

		r.mu.Lock()
		if r.entries[draftID] == e {
			delete(r.entries, draftID)
		}
		r.mu.Unlock()
		close(e.removed)

		log.Info().Str("draft_id", draftID.String()).Msg("draft session removed")
		return
	}
}

// scheduleEviction removes a finished session after the grace period so late
// observers can still read its final state.
func (r *registry) scheduleEviction(draftID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[draftID]; !ok || e.removed != nil {
		return
	}
	if _, ok := r.evictions[draftID]; ok {
		return
	}
	r.evictions[draftID] = r.clock.AfterFunc(r.evictAfter, func() {
		r.mu.Lock()
		delete(r.evictions, draftID)
		r.mu.Unlock()
		r.remove(context.Background(), draftID)
	})

	log.Debug().
		Str("draft_id", draftID.String()).
		Dur("evict_after", r.evictAfter).
		Msg("draft session scheduled for eviction")
}

// ids lists the drafts with a loaded session.
func (r *registry) ids() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.FilterMap(lo.Entries(r.entries), func(kv lo.Entry[uuid.UUID, *registryEntry], _ int) (uuid.UUID, bool) {
		if kv.Value.removed != nil {
			return uuid.Nil, false
		}
		select {
		case <-kv.Value.ready:
			return kv.Key, kv.Value.err == nil
		default:
			return uuid.Nil, false
		}
	})
}

// removeAll tears every session down.
func (r *registry) removeAll(ctx context.Context) {
	for _, id := range r.ids() {
		r.remove(ctx, id)
	}
}

func (r *registry) releaseLease(draftID uuid.UUID) {
	if r.leaser == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.leaser.Release(ctx, draftID); err != nil {
		log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("failed to release draft lease")
	}
}
