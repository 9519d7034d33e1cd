package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SyncLockKey guards the Tally sync critical section.
const SyncLockKey = "tallydesk:sync:lock"

// Lock is a best-effort distributed mutex on Redis SET NX. The token check on
// release keeps an expired holder from dropping someone else's lock.
type Lock struct {
	client *redis.Client
}

// NewLock constructs the lock helper.
func NewLock(client *redis.Client) *Lock {
	return &Lock{client: client}
}

// Acquire attempts to take the lock. When ok is true the caller must invoke
// release. A nil lock always succeeds with a no-op release.
func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error) {
	if l == nil || l.client == nil {
		return func() {}, true, nil
	}
	token := uuid.NewString()
	ok, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	release = func() {
		const script = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`
		_ = l.client.Eval(context.WithoutCancel(ctx), script, []string{key}, token).Err()
	}
	return release, true, nil
}
