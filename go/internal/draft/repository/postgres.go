package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/livedraft/go/internal/models"
	"github.com/mcdev12/livedraft/go/internal/sqlutil"
)

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	id            UUID PRIMARY KEY,
	league_id     UUID NOT NULL,
	status        TEXT NOT NULL,
	settings      JSONB,
	current_round INTEGER NOT NULL DEFAULT 0,
	current_pick  INTEGER NOT NULL DEFAULT 0,
	remaining_sec INTEGER,
	halt_reason   TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMPTZ,
	completed_at  TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS draft_picks (
	id           UUID PRIMARY KEY,
	draft_id     UUID NOT NULL REFERENCES drafts(id) ON DELETE CASCADE,
	team_id      UUID NOT NULL,
	player_id    UUID NOT NULL,
	round        INTEGER NOT NULL,
	pick         INTEGER NOT NULL,
	overall_pick INTEGER NOT NULL,
	origin       TEXT NOT NULL,
	picked_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (draft_id, overall_pick)
);

CREATE TABLE IF NOT EXISTS draft_roster_entries (
	draft_id         UUID NOT NULL REFERENCES drafts(id) ON DELETE CASCADE,
	fantasy_team_id  UUID NOT NULL,
	player_id        UUID NOT NULL,
	position         TEXT NOT NULL,
	round            INTEGER NOT NULL,
	acquired_at      TIMESTAMPTZ NOT NULL,
	acquisition_type TEXT NOT NULL,
	PRIMARY KEY (draft_id, player_id)
);
`

// Postgres error code for foreign_key_violation.
const pqForeignKeyViolation = "23503"

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

func newQueries(tx *sql.Tx) *queries {
	return &queries{db: tx}
}

// PostgresStore is the durable draft store backed by lib/pq.
type PostgresStore struct {
	db *sql.DB
	q  *queries
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: &queries{db: db}}
}

// Migrate creates the draft tables when they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply draft schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadDraft(ctx context.Context, draftID uuid.UUID) (*models.DraftSnapshot, error) {
	var (
		d           models.Draft
		settings    pqtype.NullRawMessage
		remaining   sql.NullInt32
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	err := s.q.db.QueryRowContext(ctx, `
		SELECT id, league_id, status, settings, current_round, current_pick, remaining_sec,
		       halt_reason, started_at, completed_at, created_at, updated_at
		FROM drafts WHERE id = $1`, draftID,
	).Scan(&d.ID, &d.LeagueID, &d.Status, &settings, &d.CurrentRound, &d.CurrentPick, &remaining,
		&d.HaltReason, &startedAt, &completedAt, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %s: %w", draftID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if err := sqlutil.FromJSONB(settings, &d.Settings); err != nil {
		return nil, fmt.Errorf("draft %s settings: %w", draftID, err)
	}
	d.RemainingSec = sqlutil.FromSqlInt32(remaining)
	d.StartedAt = sqlutil.FromSqlTime(startedAt)
	d.CompletedAt = sqlutil.FromSqlTime(completedAt)
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()

	picks, err := s.q.listPicks(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return &models.DraftSnapshot{Draft: d, Picks: picks}, nil
}

func (q *queries) listPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, draft_id, team_id, player_id, round, pick, overall_pick, origin, picked_at
		FROM draft_picks WHERE draft_id = $1 ORDER BY overall_pick`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	defer rows.Close()

	var picks []models.DraftPick
	for rows.Next() {
		var p models.DraftPick
		if err := rows.Scan(&p.ID, &p.DraftID, &p.TeamID, &p.PlayerID, &p.Round, &p.Pick,
			&p.OverallPick, &p.Origin, &p.PickedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft pick: %w", err)
		}
		p.PickedAt = p.PickedAt.UTC()
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	return picks, nil
}

// SaveDraft inserts the header, or overwrites it when the draft already exists.
func (s *PostgresStore) SaveDraft(ctx context.Context, d models.Draft) error {
	settings, err := sqlutil.ToJSONB(d.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal draft settings: %w", err)
	}
	updatedAt := d.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = d.CreatedAt
	}

	_, err = s.q.db.ExecContext(ctx, `
		INSERT INTO drafts (id, league_id, status, settings, current_round, current_pick, remaining_sec,
		                    halt_reason, started_at, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			settings = EXCLUDED.settings,
			current_round = EXCLUDED.current_round,
			current_pick = EXCLUDED.current_pick,
			remaining_sec = EXCLUDED.remaining_sec,
			halt_reason = EXCLUDED.halt_reason,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at`,
		d.ID, d.LeagueID, string(d.Status), settings, d.CurrentRound, d.CurrentPick,
		sqlutil.ToSqlInt32(d.RemainingSec), d.HaltReason,
		sqlutil.ToSqlTime(d.StartedAt), sqlutil.ToSqlTime(d.CompletedAt), d.CreatedAt, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// AppendPick records a pick. Re-sending the same pick is a no-op; a different pick
// for an already recorded overall number is an error.
func (s *PostgresStore) AppendPick(ctx context.Context, draftID uuid.UUID, p models.DraftPick) error {
	res, err := s.q.db.ExecContext(ctx, `
		INSERT INTO draft_picks (id, draft_id, team_id, player_id, round, pick, overall_pick, origin, picked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (draft_id, overall_pick) DO NOTHING`,
		p.ID, draftID, p.TeamID, p.PlayerID, p.Round, p.Pick, p.OverallPick, string(p.Origin), p.PickedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return fmt.Errorf("append pick to draft %s: %w", draftID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to create draft pick: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return nil
	}

	var existing uuid.UUID
	err = s.q.db.QueryRowContext(ctx,
		`SELECT id FROM draft_picks WHERE draft_id = $1 AND overall_pick = $2`, draftID, p.OverallPick,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check existing pick: %w", err)
	}
	if existing != p.ID {
		return fmt.Errorf("overall pick %d of draft %s already recorded", p.OverallPick, draftID)
	}
	return nil
}

func (s *PostgresStore) UpdateSessionStatus(ctx context.Context, draftID uuid.UUID, u models.StatusUpdate) error {
	res, err := s.q.db.ExecContext(ctx, `
		UPDATE drafts SET
			status = $2::text,
			current_round = $3,
			current_pick = $4,
			remaining_sec = $5,
			halt_reason = $6,
			updated_at = $7,
			started_at = CASE WHEN $2::text = 'IN_PROGRESS' AND started_at IS NULL THEN $7 ELSE started_at END,
			completed_at = CASE WHEN $2::text = 'COMPLETED' AND completed_at IS NULL THEN $7 ELSE completed_at END
		WHERE id = $1`,
		draftID, string(u.Status), u.Round, u.Pick, sqlutil.ToSqlInt32(u.RemainingSec), u.HaltReason, u.At,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update draft %s: %w", draftID, models.ErrNotFound)
	}
	return nil
}

// FinalizeRosters replaces the draft's roster rows in one transaction using COPY.
func (s *PostgresStore) FinalizeRosters(ctx context.Context, draftID uuid.UUID, entries []models.RosterEntry) error {
	return sqlutil.Run(ctx, s.db, newQueries, func(q *queries) error {
		if _, err := q.db.ExecContext(ctx, `DELETE FROM draft_roster_entries WHERE draft_id = $1`, draftID); err != nil {
			return fmt.Errorf("failed to clear roster entries: %w", err)
		}
		return q.copyRosterEntries(ctx, draftID, entries)
	})
}

func (q *queries) copyRosterEntries(ctx context.Context, draftID uuid.UUID, entries []models.RosterEntry) error {
	stmt, err := q.db.PrepareContext(ctx, pq.CopyIn("draft_roster_entries",
		"draft_id", "fantasy_team_id", "player_id", "position", "round", "acquired_at", "acquisition_type"))
	if err != nil {
		return fmt.Errorf("failed to prepare roster copy: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, draftID, e.FantasyTeamID, e.PlayerID, string(e.Position),
			e.Round, e.AcquiredAt.UTC(), string(e.AcquisitionType)); err != nil {
			return fmt.Errorf("failed to copy roster entry: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return fmt.Errorf("finalize rosters of draft %s: %w", draftID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to flush roster copy: %w", err)
	}
	return nil
}

// Rosters returns the finalized roster entries of a draft in draft order.
func (s *PostgresStore) Rosters(ctx context.Context, draftID uuid.UUID) ([]models.RosterEntry, error) {
	rows, err := s.q.db.QueryContext(ctx, `
		SELECT fantasy_team_id, player_id, position, round, acquired_at, acquisition_type
		FROM draft_roster_entries WHERE draft_id = $1 ORDER BY fantasy_team_id, round`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster entries: %w", err)
	}
	defer rows.Close()

	var out []models.RosterEntry
	for rows.Next() {
		var e models.RosterEntry
		if err := rows.Scan(&e.FantasyTeamID, &e.PlayerID, &e.Position, &e.Round, &e.AcquiredAt, &e.AcquisitionType); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		e.AcquiredAt = e.AcquiredAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
