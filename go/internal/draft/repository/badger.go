package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/mcdev12/livedraft/go/internal/models"
)

// Key layout:
//
//	draft:<draft id>                              header
//	pick:<draft id>:<overall pick, 6 digits>      one committed pick
//	roster:<draft id>:<player id>                 finalized roster entry
func draftKey(id uuid.UUID) []byte { return []byte("draft:" + id.String()) }

func pickPrefix(id uuid.UUID) []byte { return []byte("pick:" + id.String() + ":") }

func pickKey(id uuid.UUID, overall int) []byte {
	return []byte(fmt.Sprintf("pick:%s:%06d", id, overall))
}

func rosterPrefix(id uuid.UUID) []byte { return []byte("roster:" + id.String() + ":") }

func rosterKey(id, playerID uuid.UUID) []byte {
	return []byte("roster:" + id.String() + ":" + playerID.String())
}

// BadgerStore is an embedded durable draft store for single-node deployments.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a store in dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func (b *BadgerStore) LoadDraft(_ context.Context, draftID uuid.UUID) (*models.DraftSnapshot, error) {
	snap := &models.DraftSnapshot{}
	err := b.db.View(func(txn *badger.Txn) error {
		if err := getJSON(txn, draftKey(draftID), &snap.Draft); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = pickPrefix(draftID)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Keys sort by zero-padded overall pick
		for it.Rewind(); it.Valid(); it.Next() {
			var p models.DraftPick
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("decode pick %s: %w", it.Item().Key(), err)
			}
			snap.Picks = append(snap.Picks, p)
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("draft %s: %w", draftID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", draftID, err)
	}
	return snap, nil
}

func (b *BadgerStore) SaveDraft(_ context.Context, d models.Draft) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, draftKey(d.ID), d)
	})
}

// AppendPick is idempotent per overall pick number.
func (b *BadgerStore) AppendPick(_ context.Context, draftID uuid.UUID, p models.DraftPick) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.requireDraft(txn, draftID); err != nil {
			return err
		}

		var existing models.DraftPick
		err := getJSON(txn, pickKey(draftID, p.OverallPick), &existing)
		switch {
		case err == nil && existing.ID == p.ID:
			return nil
		case err == nil:
			return fmt.Errorf("overall pick %d of draft %s already recorded", p.OverallPick, draftID)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return setJSON(txn, pickKey(draftID, p.OverallPick), p)
	})
}

func (b *BadgerStore) UpdateSessionStatus(_ context.Context, draftID uuid.UUID, u models.StatusUpdate) error {
	return b.db.Update(func(txn *badger.Txn) error {
		var d models.Draft
		if err := getJSON(txn, draftKey(draftID), &d); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("update draft %s: %w", draftID, models.ErrNotFound)
			}
			return err
		}
		applyStatusUpdate(&d, u)
		return setJSON(txn, draftKey(draftID), d)
	})
}

// FinalizeRosters replaces any previous roster rows for the draft.
func (b *BadgerStore) FinalizeRosters(_ context.Context, draftID uuid.UUID, entries []models.RosterEntry) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.requireDraft(txn, draftID); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = rosterPrefix(draftID)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}

		for _, e := range entries {
			if err := setJSON(txn, rosterKey(draftID, e.PlayerID), e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Rosters returns the finalized roster entries of a draft.
func (b *BadgerStore) Rosters(_ context.Context, draftID uuid.UUID) ([]models.RosterEntry, error) {
	var out []models.RosterEntry
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = rosterPrefix(draftID)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var e models.RosterEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

func (b *BadgerStore) requireDraft(txn *badger.Txn, draftID uuid.UUID) error {
	if _, err := txn.Get(draftKey(draftID)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("draft %s: %w", draftID, models.ErrNotFound)
		}
		return err
	}
	return nil
}

func getJSON(txn *badger.Txn, key []byte, dst any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set(key, data)
}
