package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/livedraft/go/internal/dbconfig"
	"github.com/mcdev12/livedraft/go/internal/models"
)

type contractStore interface {
	LoadDraft(ctx context.Context, draftID uuid.UUID) (*models.DraftSnapshot, error)
	SaveDraft(ctx context.Context, draft models.Draft) error
	AppendPick(ctx context.Context, draftID uuid.UUID, pick models.DraftPick) error
	UpdateSessionStatus(ctx context.Context, draftID uuid.UUID, update models.StatusUpdate) error
	FinalizeRosters(ctx context.Context, draftID uuid.UUID, entries []models.RosterEntry) error
	Rosters(ctx context.Context, draftID uuid.UUID) ([]models.RosterEntry, error)
}

var createdAt = time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)

func newDraft() models.Draft {
	return models.Draft{
		ID:       uuid.New(),
		LeagueID: uuid.New(),
		Status:   models.DraftStatusWaiting,
		Settings: models.DraftSettings{
			Rounds:         2,
			TimePerPickSec: 60,
			DraftType:      models.DraftTypeSnake,
			ScoringMode:    models.ScoringPPR,
			Roster:         models.DefaultRosterRequirements(),
		},
		CurrentRound: 1,
		CurrentPick:  1,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func newPick(draftID uuid.UUID, overall int) models.DraftPick {
	return models.DraftPick{
		ID:          uuid.New(),
		DraftID:     draftID,
		TeamID:      uuid.New(),
		PlayerID:    uuid.New(),
		Round:       1,
		Pick:        overall,
		OverallPick: overall,
		Origin:      models.PickOriginHuman,
		PickedAt:    createdAt.Add(time.Duration(overall) * time.Minute),
	}
}

func runStoreContract(t *testing.T, store contractStore) {
	ctx := context.Background()

	t.Run("unknown draft is not found", func(t *testing.T) {
		req := require.New(t)
		_, err := store.LoadDraft(ctx, uuid.New())
		req.True(errors.Is(err, models.ErrNotFound))

		err = store.AppendPick(ctx, uuid.New(), newPick(uuid.New(), 1))
		req.True(errors.Is(err, models.ErrNotFound))

		err = store.UpdateSessionStatus(ctx, uuid.New(), models.StatusUpdate{Status: models.DraftStatusPaused})
		req.True(errors.Is(err, models.ErrNotFound))
	})

	t.Run("picks come back in overall order", func(t *testing.T) {
		req := require.New(t)

		// Given a saved draft
		d := newDraft()
		req.NoError(store.SaveDraft(ctx, d))

		// When picks are appended out of order and one is re-sent
		third, first, second := newPick(d.ID, 3), newPick(d.ID, 1), newPick(d.ID, 2)
		for _, p := range []models.DraftPick{third, first, second, first} {
			req.NoError(store.AppendPick(ctx, d.ID, p))
		}

		// Then the snapshot holds each once in order
		snap, err := store.LoadDraft(ctx, d.ID)
		req.NoError(err)
		req.Equal(d.Settings, snap.Draft.Settings)
		req.Equal(models.DraftStatusWaiting, snap.Draft.Status)
		req.Len(snap.Picks, 3)
		for i, p := range snap.Picks {
			req.Equal(i+1, p.OverallPick)
		}
		req.Equal(first.ID, snap.Picks[0].ID)
		req.True(first.PickedAt.Equal(snap.Picks[0].PickedAt))

		// And a conflicting pick for a recorded slot is refused
		req.Error(store.AppendPick(ctx, d.ID, newPick(d.ID, 2)))
	})

	t.Run("status updates stamp start and completion once", func(t *testing.T) {
		req := require.New(t)
		d := newDraft()
		req.NoError(store.SaveDraft(ctx, d))

		startedAt := createdAt.Add(time.Hour)
		req.NoError(store.UpdateSessionStatus(ctx, d.ID, models.StatusUpdate{
			Status: models.DraftStatusInProgress, Round: 1, Pick: 1, At: startedAt,
		}))

		remaining := 42
		req.NoError(store.UpdateSessionStatus(ctx, d.ID, models.StatusUpdate{
			Status: models.DraftStatusPaused, Round: 1, Pick: 2, RemainingSec: &remaining, At: startedAt.Add(time.Minute),
		}))
		snap, err := store.LoadDraft(ctx, d.ID)
		req.NoError(err)
		req.Equal(models.DraftStatusPaused, snap.Draft.Status)
		req.Equal(2, snap.Draft.CurrentPick)
		req.NotNil(snap.Draft.RemainingSec)
		req.Equal(42, *snap.Draft.RemainingSec)

		req.NoError(store.UpdateSessionStatus(ctx, d.ID, models.StatusUpdate{
			Status: models.DraftStatusInProgress, Round: 1, Pick: 2, At: startedAt.Add(2 * time.Minute),
		}))
		req.NoError(store.UpdateSessionStatus(ctx, d.ID, models.StatusUpdate{
			Status: models.DraftStatusCompleted, Round: 2, Pick: 5, At: startedAt.Add(time.Hour),
		}))

		snap, err = store.LoadDraft(ctx, d.ID)
		req.NoError(err)
		req.Equal(models.DraftStatusCompleted, snap.Draft.Status)
		req.Nil(snap.Draft.RemainingSec)
		req.NotNil(snap.Draft.StartedAt)
		req.True(startedAt.Equal(*snap.Draft.StartedAt))
		req.NotNil(snap.Draft.CompletedAt)
		req.True(startedAt.Add(time.Hour).Equal(*snap.Draft.CompletedAt))
	})

	t.Run("finalize replaces roster rows", func(t *testing.T) {
		req := require.New(t)
		d := newDraft()
		req.NoError(store.SaveDraft(ctx, d))

		team := uuid.New()
		entry := func(round int, pos models.RosterPosition) models.RosterEntry {
			return models.RosterEntry{
				FantasyTeamID:   team,
				PlayerID:        uuid.New(),
				Position:        pos,
				Round:           round,
				AcquiredAt:      createdAt,
				AcquisitionType: models.AcquisitionTypeDraft,
			}
		}

		req.NoError(store.FinalizeRosters(ctx, d.ID, []models.RosterEntry{entry(1, models.RosterPositionStarter)}))
		final := []models.RosterEntry{entry(1, models.RosterPositionStarter), entry(2, models.RosterPositionBench)}
		req.NoError(store.FinalizeRosters(ctx, d.ID, final))

		got, err := store.Rosters(ctx, d.ID)
		req.NoError(err)
		req.Len(got, 2)
		req.ElementsMatch([]uuid.UUID{final[0].PlayerID, final[1].PlayerID}, []uuid.UUID{got[0].PlayerID, got[1].PlayerID})

		req.True(errors.Is(store.FinalizeRosters(ctx, uuid.New(), final), models.ErrNotFound))
	})
}

func Test_MemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func Test_BadgerStore_Contract(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	runStoreContract(t, store)
}

func Test_BadgerStore_Survives_Reopen(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	ctx := context.Background()

	// Given a draft with a pick written to disk
	store, err := OpenBadgerStore(dir)
	req.NoError(err)
	d := newDraft()
	req.NoError(store.SaveDraft(ctx, d))
	req.NoError(store.AppendPick(ctx, d.ID, newPick(d.ID, 1)))
	req.NoError(store.Close())

	// When the store is reopened
	store, err = OpenBadgerStore(dir)
	req.NoError(err)
	defer store.Close()

	// Then the snapshot is intact
	snap, err := store.LoadDraft(ctx, d.ID)
	req.NoError(err)
	req.Len(snap.Picks, 1)
	req.Equal(d.LeagueID, snap.Draft.LeagueID)
}

// Runs against a real database when LIVEDRAFT_TEST_POSTGRES is set, e.g. "1" with DB_* env vars.
func Test_PostgresStore_Contract(t *testing.T) {
	if os.Getenv("LIVEDRAFT_TEST_POSTGRES") == "" {
		t.Skip("LIVEDRAFT_TEST_POSTGRES not set")
	}
	ctx := context.Background()
	db, err := dbconfig.NewConfigFromEnv().Open(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewPostgresStore(db)
	require.NoError(t, store.Migrate(ctx))
	runStoreContract(t, store)
}
