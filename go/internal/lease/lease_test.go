package lease

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const testTTL = 30 * time.Second

func newTestLeaser(t *testing.T) (*RedisLeaser, redismock.ClientMock, *clockwork.FakeClock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	clock := clockwork.NewFakeClock()
	l := NewRedisLeaser(db, Config{Prefix: "test:lease:", TTL: testTTL, Owner: "instance-a"}, clock)
	t.Cleanup(l.Close)
	return l, mock, clock
}

func Test_Acquire_And_Release(t *testing.T) {
	req := require.New(t)
	l, mock, _ := newTestLeaser(t)
	ctx := context.Background()
	draftID := uuid.New()
	key := "test:lease:" + draftID.String()

	// Given a free key
	mock.ExpectSetNX(key, "instance-a", testTTL).SetVal(true)
	mock.ExpectEval(releaseScript, []string{key}, "instance-a").SetVal(int64(1))

	// When the lease is taken and given back
	req.NoError(l.Acquire(ctx, draftID))
	req.NoError(l.Release(ctx, draftID))

	// Then only our token was ever touched
	req.NoError(mock.ExpectationsWereMet())
}

func Test_Acquire_Refused_When_Another_Instance_Holds_It(t *testing.T) {
	req := require.New(t)
	l, mock, _ := newTestLeaser(t)
	draftID := uuid.New()
	key := "test:lease:" + draftID.String()

	mock.ExpectSetNX(key, "instance-a", testTTL).SetVal(false)
	mock.ExpectEval(renewScript, []string{key}, "instance-a", testTTL.Milliseconds()).SetVal(int64(0))

	err := l.Acquire(context.Background(), draftID)
	req.True(errors.Is(err, ErrHeld))
	req.NoError(mock.ExpectationsWereMet())
}

func Test_Acquire_Reclaims_Own_Key(t *testing.T) {
	req := require.New(t)
	l, mock, _ := newTestLeaser(t)
	draftID := uuid.New()
	key := "test:lease:" + draftID.String()

	// Given a key left by this instance before a restart
	mock.ExpectSetNX(key, "instance-a", testTTL).SetVal(false)
	mock.ExpectEval(renewScript, []string{key}, "instance-a", testTTL.Milliseconds()).SetVal(int64(1))

	// Then acquiring succeeds
	req.NoError(l.Acquire(context.Background(), draftID))
	req.NoError(mock.ExpectationsWereMet())
}

func Test_Acquire_Surfaces_Redis_Errors(t *testing.T) {
	req := require.New(t)
	l, mock, _ := newTestLeaser(t)
	draftID := uuid.New()

	mock.ExpectSetNX("test:lease:"+draftID.String(), "instance-a", testTTL).SetErr(errors.New("connection refused"))

	err := l.Acquire(context.Background(), draftID)
	req.Error(err)
	req.False(errors.Is(err, ErrHeld))
}

func Test_Lease_Is_Renewed_Until_Lost(t *testing.T) {
	req := require.New(t)
	l, mock, clock := newTestLeaser(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	draftID := uuid.New()
	key := "test:lease:" + draftID.String()
	lostBefore := testutil.ToFloat64(leasesLost)

	// Given a held lease
	mock.ExpectSetNX(key, "instance-a", testTTL).SetVal(true)
	req.NoError(l.Acquire(ctx, draftID))

	// When a third of the TTL passes
	mock.ExpectEval(renewScript, []string{key}, "instance-a", testTTL.Milliseconds()).SetVal(int64(1))
	req.NoError(clock.BlockUntilContext(ctx, 1))
	clock.Advance(testTTL / 3)

	// Then the key is extended
	req.Eventually(func() bool {
		return mock.ExpectationsWereMet() == nil
	}, 2*time.Second, 10*time.Millisecond)

	// When the key has been taken over by the next renewal
	mock.ExpectEval(renewScript, []string{key}, "instance-a", testTTL.Milliseconds()).SetVal(int64(0))
	req.NoError(clock.BlockUntilContext(ctx, 1))
	clock.Advance(testTTL / 3)

	// Then renewal stops and the loss is counted
	req.Eventually(func() bool {
		return testutil.ToFloat64(leasesLost) == lostBefore+1
	}, 2*time.Second, 10*time.Millisecond)
	req.NoError(mock.ExpectationsWereMet())
}

func Test_Local_Leaser(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	l := NewLocal()
	draftID := uuid.New()

	req.NoError(l.Acquire(ctx, draftID))
	req.True(errors.Is(l.Acquire(ctx, draftID), ErrHeld))
	req.NoError(l.Acquire(ctx, uuid.New()))

	req.NoError(l.Release(ctx, draftID))
	req.NoError(l.Acquire(ctx, draftID))
}
