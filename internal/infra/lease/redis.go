package lease

import (
	"context"
	"log/slog"
	"time"

	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rental-ledger:sweep:"

// Deletes the key only while it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// SweepLock keeps two sweeper replicas from running the same job at once.
// Row leases in the database still guard each payment; this only avoids
// duplicate candidate scans.
type SweepLock struct {
	client *redis.Client
	owner  string
	ttl    time.Duration
}

func NewSweepLock(client *redis.Client, owner string, ttl time.Duration) *SweepLock {
	return &SweepLock{client: client, owner: owner, ttl: ttl}
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return errs.Wrap(err, "failed to ping redis")
	}
	return nil
}

// Acquire returns ok=false without error when another owner holds the job.
func (l *SweepLock) Acquire(ctx context.Context, job string) (release func(), ok bool, err error) {
	key := keyPrefix + job
	ok, err = l.client.SetNX(ctx, key, l.owner, l.ttl).Result()
	if err != nil {
		return nil, false, errs.Wrapf(err, "acquire sweep lock %s", job)
	}
	if !ok {
		return nil, false, nil
	}
	release = func() {
		// Detached so a cancelled job context still frees the key.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := l.client.Eval(rctx, releaseScript, []string{key}, l.owner).Err(); err != nil {
			slog.Warn("failed to release sweep lock", "job", job, "error", err.Error())
		}
	}
	return release, true, nil
}
