package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/draft/autopick"
	"github.com/mcdev12/livedraft/go/internal/draft/broadcast"
	"github.com/mcdev12/livedraft/go/internal/draft/gateway"
	"github.com/mcdev12/livedraft/go/internal/draft/orchestrator"
	"github.com/mcdev12/livedraft/go/internal/lease"
	"github.com/mcdev12/livedraft/go/internal/notify"
)

type Services struct {
	Orchestrator *orchestrator.Orchestrator
	Leagues      leagueSource
	Connections  *gateway.ConnectionManager
	Consumer     *orchestrator.CommandConsumer // nil without NATS

	closers []func()
}

// Close releases resources in reverse order of creation.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func (s *Services) onClose(f func()) {
	s.closers = append(s.closers, f)
}

// setupServices wires the draft stack:
// league source + store → orchestrator → broadcast hub → gateway / JetStream.
func setupServices(ctx context.Context, cfg *Config) (_ *Services, err error) {
	s := &Services{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()
	clock := clockwork.NewRealClock()

	store, closeStore, err := setupStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("setup store: %w", err)
	}
	s.onClose(closeStore)

	src, closeLeagues, err := setupLeagues(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("setup leagues: %w", err)
	}
	s.onClose(closeLeagues)
	s.Leagues = src

	leaser, err := setupLeaser(ctx, cfg, clock, s)
	if err != nil {
		return nil, fmt.Errorf("setup leaser: %w", err)
	}

	hub := broadcast.NewHub()
	hub.Add("log", broadcast.LogSink{})

	var (
		notifier orchestrator.Notifier = notify.LogNotifier{}
		js       jetstream.JetStream
	)
	if cfg.NATS.Enabled {
		var nc *nats.Conn
		nc, js, err = setupNATS(cfg, s)
		if err != nil {
			return nil, fmt.Errorf("setup nats: %w", err)
		}
		notifier = notify.NewNATSNotifier(nc, cfg.NATS.NotifyPrefix, clock)
	}

	s.Orchestrator = orchestrator.New(src, store, hub, src,
		orchestrator.WithClock(clock),
		orchestrator.WithNotifier(notifier),
		orchestrator.WithLeaser(leaser),
		orchestrator.WithAutoPicker(autoPicker(cfg.Draft.AutoPick)),
		orchestrator.WithConfig(orchestrator.Config{
			EvictAfter:        cfg.Draft.EvictAfter,
			StoreAttempts:     cfg.Draft.StoreAttempts,
			RetryDelay:        cfg.Draft.RetryDelay,
			ReconcileInterval: cfg.Draft.ReconcileInterval,
		}),
	)

	connCfg := gateway.DefaultConnectionConfig()
	if cfg.Draft.CommandTimeout > 0 {
		connCfg.CommandTimeout = cfg.Draft.CommandTimeout
	}
	s.Connections = gateway.NewConnectionManager(connCfg, s.Orchestrator)
	hub.Add("gateway", s.Connections)

	if js != nil {
		jsCfg := broadcast.DefaultJetStreamConfig()
		jsCfg.StreamName = cfg.NATS.EventStream
		jsCfg.SubjectPrefix = cfg.NATS.EventPrefix
		if cfg.NATS.Embedded && cfg.NATS.StoreDir == "" {
			jsCfg.Storage = jetstream.MemoryStorage
		}
		sink, err := broadcast.NewJetStreamSink(ctx, js, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("setup jetstream sink: %w", err)
		}
		s.onClose(func() {
			if err := sink.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close jetstream sink")
			}
		})
		hub.Add("jetstream", sink)

		s.Consumer = orchestrator.NewCommandConsumer(js, s.Orchestrator, cfg.NATS.CommandStream, cfg.NATS.CommandPrefix)
	}

	return s, nil
}

func setupLeaser(ctx context.Context, cfg *Config, clock clockwork.Clock, s *Services) (orchestrator.Leaser, error) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("no redis configured, draft leases are process-local")
		return lease.NewLocal(), nil
	}

	opts, err := redis.ParseURL(cfg.Redis.Addr)
	if err != nil {
		opts = &redis.Options{Addr: cfg.Redis.Addr}
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	leaser := lease.NewRedisLeaser(rdb, lease.Config{TTL: cfg.Redis.LeaseTTL}, clock)
	s.onClose(func() {
		leaser.Close()
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	})
	log.Info().Str("owner", leaser.Owner()).Msg("using redis draft leases")
	return leaser, nil
}

func setupNATS(cfg *Config, s *Services) (*nats.Conn, jetstream.JetStream, error) {
	url := cfg.NATS.URL
	if cfg.NATS.Embedded {
		ns, err := server.NewServer(&server.Options{
			Port:      -1,
			JetStream: true,
			StoreDir:  cfg.NATS.StoreDir,
			NoSigs:    true,
			NoLog:     true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create embedded NATS server: %w", err)
		}
		go ns.Start()
		if !ns.ReadyForConnections(10 * time.Second) {
			ns.Shutdown()
			return nil, nil, fmt.Errorf("embedded NATS server failed to start within timeout")
		}
		s.onClose(func() {
			ns.Shutdown()
			ns.WaitForShutdown()
		})
		url = ns.ClientURL()
		log.Info().Str("url", url).Msg("embedded NATS server started")
	}

	nc, js, err := orchestrator.ConnectNATS(url)
	if err != nil {
		return nil, nil, err
	}
	s.onClose(func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	})
	return nc, js, nil
}

// autoPicker maps the auto_pick setting to a selector. "random" is for load tests.
func autoPicker(name string) *autopick.Selector {
	if name == "random" {
		return autopick.NewSelector(autopick.NewRandomStrategy())
	}
	return autopick.NewSelector(autopick.RoundBanded{})
}
