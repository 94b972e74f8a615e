package xredis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client interface {
	Exist(ctx context.Context, key string) (bool, error)

	// Sorted set
	// ZIncrByIfExists increments member only when key is present. The check and
	// the increment run as one script, an absent key stays absent.
	ZIncrByIfExists(ctx context.Context, key string, incr int64, member string) (bool, error)
	// ZReplace atomically swaps the content of key with scores. A positive
	// ttl makes the key expire.
	ZReplace(ctx context.Context, key string, scores map[string]int64, ttl time.Duration) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRevRangeWithScores(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
}

var zIncrByIfExistsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("ZINCRBY", KEYS[1], ARGV[1], ARGV[2])
return 1
`)

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context, addr string) (*client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:            addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolFIFO:        false,
		PoolSize:        5,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{redisClient: redisClient}, nil
}

func (c *client) Exist(ctx context.Context, key string) (bool, error) {
	n, err := c.redisClient.Exists(ctx, key).Uint64()
	if err != nil {
		return false, err
	}

	if n != 1 {
		return false, nil
	}

	return true, nil
}

func (c *client) ZIncrByIfExists(ctx context.Context, key string, incr int64, member string) (bool, error) {
	n, err := zIncrByIfExistsScript.Run(ctx, c.redisClient, []string{key}, incr, member).Int()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (c *client) ZReplace(
	ctx context.Context, key string, scores map[string]int64, ttl time.Duration,
) error {
	members := make([]redis.Z, 0, len(scores))
	for member, score := range scores {
		members = append(members, redis.Z{Member: member, Score: float64(score)})
	}

	_, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, members...)
		}

		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}

		return nil
	})

	return err
}

func (c *client) ZRem(ctx context.Context, key string, members ...string) error {
	args := make([]any, 0, len(members))
	for _, m := range members {
		args = append(args, m)
	}

	return c.redisClient.ZRem(ctx, key, args...).Err()
}

func (c *client) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(offset + limit - 1)
	}

	return c.redisClient.ZRevRangeWithScores(ctx, key, int64(offset), stop).Result()
}

func (c *client) Close() error {
	return c.redisClient.Close()
}
