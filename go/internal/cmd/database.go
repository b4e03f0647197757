package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/dbconfig"
	"github.com/mcdev12/livedraft/go/internal/draft/orchestrator"
	"github.com/mcdev12/livedraft/go/internal/draft/repository"
	"github.com/mcdev12/livedraft/go/internal/leagues"
)

// leagueSource serves draft configuration and commissioner checks.
type leagueSource interface {
	orchestrator.LeagueSource
	orchestrator.Authorizer
}

func setupStore(ctx context.Context, cfg *Config) (orchestrator.Store, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := dbconfig.NewConfigFromEnv().Open(ctx)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case "badger":
		store, err := repository.OpenBadgerStore(cfg.Store.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", cfg.Store.BadgerDir).Msg("using badger draft store")
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close badger store")
			}
		}, nil

	case "memory":
		log.Warn().Msg("using in-memory draft store, drafts will not survive a restart")
		return repository.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func setupLeagues(ctx context.Context, cfg *Config) (leagueSource, func(), error) {
	switch cfg.League.Source {
	case "file":
		src, err := leagues.LoadFile(cfg.League.File)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil

	case "postgres":
		pool, err := dbconfig.NewConfigFromEnv().OpenPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		src := leagues.NewPostgresSource(pool)
		if err := src.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return src, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown league source %q", cfg.League.Source)
}
