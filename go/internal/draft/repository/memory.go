package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mcdev12/livedraft/go/internal/models"
)

// MemoryStore keeps drafts in process memory. Used in tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	drafts  map[uuid.UUID]*models.Draft
	picks   map[uuid.UUID]map[int]models.DraftPick
	rosters map[uuid.UUID][]models.RosterEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts:  make(map[uuid.UUID]*models.Draft),
		picks:   make(map[uuid.UUID]map[int]models.DraftPick),
		rosters: make(map[uuid.UUID][]models.RosterEntry),
	}
}

func (m *MemoryStore) LoadDraft(ctx context.Context, draftID uuid.UUID) (*models.DraftSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drafts[draftID]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", draftID, models.ErrNotFound)
	}

	snap := &models.DraftSnapshot{Draft: *d}
	for _, p := range m.picks[draftID] {
		snap.Picks = append(snap.Picks, p)
	}
	sort.Slice(snap.Picks, func(i, j int) bool { return snap.Picks[i].OverallPick < snap.Picks[j].OverallPick })
	return snap, nil
}

func (m *MemoryStore) SaveDraft(ctx context.Context, draft models.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := draft
	m.drafts[draft.ID] = &d
	return nil
}

// AppendPick stores a pick keyed by its overall number, so a replay of the same pick is a no-op.
func (m *MemoryStore) AppendPick(ctx context.Context, draftID uuid.UUID, pick models.DraftPick) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drafts[draftID]; !ok {
		return fmt.Errorf("append pick to draft %s: %w", draftID, models.ErrNotFound)
	}
	picks, ok := m.picks[draftID]
	if !ok {
		picks = make(map[int]models.DraftPick)
		m.picks[draftID] = picks
	}
	if existing, ok := picks[pick.OverallPick]; ok && existing.ID != pick.ID {
		return fmt.Errorf("overall pick %d of draft %s already recorded", pick.OverallPick, draftID)
	}
	picks[pick.OverallPick] = pick
	return nil
}

func (m *MemoryStore) UpdateSessionStatus(ctx context.Context, draftID uuid.UUID, update models.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[draftID]
	if !ok {
		return fmt.Errorf("update draft %s: %w", draftID, models.ErrNotFound)
	}
	applyStatusUpdate(d, update)
	return nil
}

func (m *MemoryStore) FinalizeRosters(ctx context.Context, draftID uuid.UUID, entries []models.RosterEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drafts[draftID]; !ok {
		return fmt.Errorf("finalize rosters of draft %s: %w", draftID, models.ErrNotFound)
	}
	m.rosters[draftID] = append([]models.RosterEntry(nil), entries...)
	return nil
}

// Rosters returns the finalized roster entries of a draft.
func (m *MemoryStore) Rosters(_ context.Context, draftID uuid.UUID) ([]models.RosterEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.RosterEntry(nil), m.rosters[draftID]...), nil
}

// applyStatusUpdate folds a status update into a stored header.
func applyStatusUpdate(d *models.Draft, u models.StatusUpdate) {
	d.Status = u.Status
	d.CurrentRound = u.Round
	d.CurrentPick = u.Pick
	d.RemainingSec = u.RemainingSec
	d.HaltReason = u.HaltReason
	d.UpdatedAt = u.At

	switch u.Status {
	case models.DraftStatusInProgress:
		if d.StartedAt == nil {
			at := u.At
			d.StartedAt = &at
		}
	case models.DraftStatusCompleted:
		if d.CompletedAt == nil {
			at := u.At
			d.CompletedAt = &at
		}
	}
}
