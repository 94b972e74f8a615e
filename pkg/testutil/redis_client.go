package testutil

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type MockRedisClient struct {
	ExistFunc               func(ctx context.Context, key string) (bool, error)
	ZIncrByIfExistsFunc     func(ctx context.Context, key string, incr int64, member string) (bool, error)
	ZReplaceFunc            func(ctx context.Context, key string, scores map[string]int64, ttl time.Duration) error
	ZRemFunc                func(ctx context.Context, key string, members ...string) error
	ZRevRangeWithScoresFunc func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	return false, nil
}

func (m *MockRedisClient) ZIncrByIfExists(
	ctx context.Context, key string, incr int64, member string,
) (bool, error) {
	if m.ZIncrByIfExistsFunc != nil {
		return m.ZIncrByIfExistsFunc(ctx, key, incr, member)
	}

	return false, nil
}

func (m *MockRedisClient) ZReplace(
	ctx context.Context, key string, scores map[string]int64, ttl time.Duration,
) error {
	if m.ZReplaceFunc != nil {
		return m.ZReplaceFunc(ctx, key, scores, ttl)
	}

	return nil
}

func (m *MockRedisClient) ZRem(ctx context.Context, key string, members ...string) error {
	if m.ZRemFunc != nil {
		return m.ZRemFunc(ctx, key, members...)
	}

	return nil
}

func (m *MockRedisClient) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	if m.ZRevRangeWithScoresFunc != nil {
		return m.ZRevRangeWithScoresFunc(ctx, key, offset, limit)
	}

	return nil, nil
}
