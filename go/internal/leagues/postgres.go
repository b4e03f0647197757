package leagues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/livedraft/go/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS leagues (
	id              UUID PRIMARY KEY,
	name            TEXT NOT NULL,
	league_type     TEXT NOT NULL DEFAULT 'REDRAFT',
	commissioner_id UUID NOT NULL,
	season          TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fantasy_teams (
	id        UUID PRIMARY KEY,
	league_id UUID NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
	owner_id  UUID NOT NULL,
	name      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	id               UUID PRIMARY KEY,
	full_name        TEXT NOT NULL,
	position         TEXT NOT NULL,
	pro_team         TEXT NOT NULL DEFAULT '',
	bye_week         INTEGER NOT NULL DEFAULT 0,
	projected_points DOUBLE PRECISION NOT NULL DEFAULT 0,
	adp              DOUBLE PRECISION NOT NULL DEFAULT 0,
	position_rank    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS league_drafts (
	id        UUID PRIMARY KEY,
	league_id UUID NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
	settings  JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS league_draft_teams (
	draft_id       UUID NOT NULL REFERENCES league_drafts(id) ON DELETE CASCADE,
	team_id        UUID NOT NULL REFERENCES fantasy_teams(id) ON DELETE CASCADE,
	draft_position INTEGER NOT NULL,
	auto_pick      BOOLEAN NOT NULL DEFAULT false,
	PRIMARY KEY (draft_id, team_id),
	UNIQUE (draft_id, draft_position)
);
`

// PostgresSource reads league configuration through a pgx pool.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Migrate creates the league tables when they do not exist.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply league schema: %w", err)
	}
	return nil
}

func (s *PostgresSource) LoadDraftConfig(ctx context.Context, draftID uuid.UUID) (*models.DraftConfig, error) {
	cfg := &models.DraftConfig{}

	var settings []byte
	err := s.pool.QueryRow(ctx, `
		SELECT d.id, d.settings, l.id, l.name, l.league_type, l.commissioner_id, l.season, l.created_at
		FROM league_drafts d JOIN leagues l ON l.id = d.league_id
		WHERE d.id = $1`, draftID,
	).Scan(&cfg.Draft.ID, &settings, &cfg.League.ID, &cfg.League.Name, &cfg.League.LeagueType,
		&cfg.League.CommissionerID, &cfg.League.Season, &cfg.League.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("draft %s: %w", draftID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league draft: %w", err)
	}
	if err := json.Unmarshal(settings, &cfg.Draft.Settings); err != nil {
		return nil, fmt.Errorf("draft %s settings: %w", draftID, err)
	}
	cfg.Draft.LeagueID = cfg.League.ID
	cfg.Draft.Status = models.DraftStatusWaiting

	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.league_id, t.owner_id, t.name, dt.draft_position, dt.auto_pick
		FROM league_draft_teams dt JOIN fantasy_teams t ON t.id = dt.team_id
		WHERE dt.draft_id = $1 ORDER BY dt.draft_position`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft teams: %w", err)
	}
	cfg.Teams, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DraftTeam, error) {
		var t models.DraftTeam
		err := row.Scan(&t.ID, &t.LeagueID, &t.OwnerID, &t.Name, &t.DraftPosition, &t.AutoPickEnabled)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan draft teams: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT id, full_name, position, pro_team, bye_week, projected_points, adp, position_rank
		FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	cfg.Players, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Player, error) {
		var p models.Player
		err := row.Scan(&p.ID, &p.FullName, &p.Position, &p.ProTeam, &p.ByeWeek, &p.ProjectedPoints, &p.ADP, &p.PositionRank)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan players: %w", err)
	}
	return cfg, nil
}

func (s *PostgresSource) IsCommissioner(ctx context.Context, leagueID, userID uuid.UUID) (bool, error) {
	var commissioner uuid.UUID
	err := s.pool.QueryRow(ctx, `SELECT commissioner_id FROM leagues WHERE id = $1`, leagueID).Scan(&commissioner)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("league %s: %w", leagueID, models.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to get league: %w", err)
	}
	return commissioner == userID, nil
}

// SeedResult counts the rows written by Seed.
type SeedResult struct {
	Players int
	Leagues int
	Teams   int
	Drafts  int
}

// Seed upserts a league file in a single transaction.
func (s *PostgresSource) Seed(ctx context.Context, src *FileSource) (SeedResult, error) {
	var res SeedResult
	f := src.File()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range f.Players {
			batch.Queue(`
				INSERT INTO players (id, full_name, position, pro_team, bye_week, projected_points, adp, position_rank)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO UPDATE SET
					full_name = EXCLUDED.full_name, position = EXCLUDED.position, pro_team = EXCLUDED.pro_team,
					bye_week = EXCLUDED.bye_week, projected_points = EXCLUDED.projected_points,
					adp = EXCLUDED.adp, position_rank = EXCLUDED.position_rank`,
				p.ID, p.FullName, string(p.Position), p.ProTeam, p.ByeWeek, p.ProjectedPoints, p.ADP, p.PositionRank)
			res.Players++
		}

		for i := range f.Leagues {
			l := &f.Leagues[i]
			leagueType := l.LeagueType
			if leagueType == "" {
				leagueType = models.LeagueTypeRedraft
			}
			batch.Queue(`
				INSERT INTO leagues (id, name, league_type, commissioner_id, season)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name, league_type = EXCLUDED.league_type,
					commissioner_id = EXCLUDED.commissioner_id, season = EXCLUDED.season`,
				l.ID, l.Name, string(leagueType), l.CommissionerID, l.Season)
			res.Leagues++

			for _, t := range l.Teams {
				batch.Queue(`
					INSERT INTO fantasy_teams (id, league_id, owner_id, name) VALUES ($1, $2, $3, $4)
					ON CONFLICT (id) DO UPDATE SET owner_id = EXCLUDED.owner_id, name = EXCLUDED.name`,
					t.ID, l.ID, t.OwnerID, t.Name)
				res.Teams++
			}

			for _, d := range l.Drafts {
				settings, err := json.Marshal(d.Settings)
				if err != nil {
					return fmt.Errorf("marshal draft %s settings: %w", d.ID, err)
				}
				batch.Queue(`
					INSERT INTO league_drafts (id, league_id, settings) VALUES ($1, $2, $3)
					ON CONFLICT (id) DO UPDATE SET settings = EXCLUDED.settings`,
					d.ID, l.ID, settings)
				batch.Queue(`DELETE FROM league_draft_teams WHERE draft_id = $1`, d.ID)

				teams, err := draftTeams(l, d)
				if err != nil {
					return fmt.Errorf("draft %s: %w", d.ID, err)
				}
				for _, t := range teams {
					batch.Queue(`
						INSERT INTO league_draft_teams (draft_id, team_id, draft_position, auto_pick)
						VALUES ($1, $2, $3, $4)`,
						d.ID, t.ID, t.DraftPosition, t.AutoPickEnabled)
				}
				res.Drafts++
			}
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("seed batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}
