package lease

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Local grants leases within one process. It is used when no Redis is configured.
type Local struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewLocal() *Local {
	return &Local{held: make(map[uuid.UUID]struct{})}
}

func (l *Local) Acquire(_ context.Context, draftID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[draftID]; ok {
		return fmt.Errorf("draft %s: %w", draftID, ErrHeld)
	}
	l.held[draftID] = struct{}{}
	return nil
}

func (l *Local) Release(_ context.Context, draftID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, draftID)
	return nil
}
