package lease

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrHeld is returned when another instance owns the draft.
var ErrHeld = errors.New("draft lease held by another instance")

// KEYS[1] lease key, ARGV[1] owner token, ARGV[2] ttl in milliseconds
const renewScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`

// KEYS[1] lease key, ARGV[1] owner token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

var leasesLost = promauto.NewCounter(prometheus.CounterOpts{
	Name: "livedraft_lease_lost_total",
	Help: "Draft leases that could not be renewed",
})

type Config struct {
	Prefix string
	TTL    time.Duration
	// Owner identifies this instance. Defaults to a random token.
	Owner string
}

func DefaultConfig() Config {
	return Config{
		Prefix: "livedraft:lease:",
		TTL:    30 * time.Second,
	}
}

// RedisLeaser holds one key per draft, set with NX and a TTL, and renews it on a
// ticker at a third of the TTL until released.
type RedisLeaser struct {
	rdb   redis.Cmdable
	cfg   Config
	clock clockwork.Clock
	mu    sync.Mutex
	renew map[uuid.UUID]context.CancelFunc
	wg    sync.WaitGroup
}

func NewRedisLeaser(rdb redis.Cmdable, cfg Config, clock clockwork.Clock) *RedisLeaser {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultConfig().Prefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.Owner == "" {
		cfg.Owner = uuid.NewString()
	}
	return &RedisLeaser{
		rdb:   rdb,
		cfg:   cfg,
		clock: clock,
		renew: make(map[uuid.UUID]context.CancelFunc),
	}
}

func (l *RedisLeaser) key(draftID uuid.UUID) string {
	return l.cfg.Prefix + draftID.String()
}

// Owner returns the token written into held leases.
func (l *RedisLeaser) Owner() string {
	return l.cfg.Owner
}

func (l *RedisLeaser) Acquire(ctx context.Context, draftID uuid.UUID) error {
	key := l.key(draftID)
	ok, err := l.rdb.SetNX(ctx, key, l.cfg.Owner, l.cfg.TTL).Result()
	if err != nil {
		return fmt.Errorf("set lease %s: %w", key, err)
	}
	if !ok {
		// A restart of this instance may find its own key still alive
		renewed, err := l.extend(ctx, key)
		if err != nil {
			return err
		}
		if !renewed {
			return fmt.Errorf("draft %s: %w", draftID, ErrHeld)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, running := l.renew[draftID]; !running {
		renewCtx, cancel := context.WithCancel(context.Background())
		l.renew[draftID] = cancel
		l.wg.Add(1)
		go l.keepAlive(renewCtx, draftID)
	}

	log.Debug().Str("draft_id", draftID.String()).Str("owner", l.cfg.Owner).Msg("acquired draft lease")
	return nil
}

func (l *RedisLeaser) Release(ctx context.Context, draftID uuid.UUID) error {
	l.stopRenewal(draftID)

	key := l.key(draftID)
	if err := l.rdb.Eval(ctx, releaseScript, []string{key}, l.cfg.Owner).Err(); err != nil {
		return fmt.Errorf("release lease %s: %w", key, err)
	}
	return nil
}

// Close stops all renewals without deleting keys; they expire after the TTL.
func (l *RedisLeaser) Close() {
	l.mu.Lock()
	for id, cancel := range l.renew {
		cancel()
		delete(l.renew, id)
	}
	l.mu.Unlock()
	l.wg.Wait()
}

func (l *RedisLeaser) stopRenewal(draftID uuid.UUID) {
	l.mu.Lock()
	cancel, ok := l.renew[draftID]
	delete(l.renew, draftID)
	l.mu.Unlock()
	if ok {
		cancel()
	}
}

func (l *RedisLeaser) extend(ctx context.Context, key string) (bool, error) {
	n, err := l.rdb.Eval(ctx, renewScript, []string{key}, l.cfg.Owner, l.cfg.TTL.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("renew lease %s: %w", key, err)
	}
	return n == 1, nil
}

func (l *RedisLeaser) keepAlive(ctx context.Context, draftID uuid.UUID) {
	defer l.wg.Done()
	ticker := l.clock.NewTicker(l.cfg.TTL / 3)
	defer ticker.Stop()

	key := l.key(draftID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			renewCtx, cancel := context.WithTimeout(ctx, l.cfg.TTL/3)
			ok, err := l.extend(renewCtx, key)
			cancel()
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("lease renewal failed, retrying")
			case !ok:
				leasesLost.Inc()
				log.Error().Str("draft_id", draftID.String()).Str("owner", l.cfg.Owner).Msg("draft lease lost")
				l.stopRenewal(draftID)
				return
			}
		}
	}
}
