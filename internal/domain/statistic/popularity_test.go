package statistic_test

import (
	"context"
	"testing"
	"time"

	"github.com/medalboard/backend/internal/common"
	"github.com/medalboard/backend/internal/domain/statistic"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestPopularity_Database(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	userMedalRepo := repository.NewUserMedalRepository()
	for _, userID := range []string{testutil.User1.ID, testutil.User2.ID} {
		require.NoError(t, userMedalRepo.Create(ctx, &entity.UserMedal{
			UserID: userID, MedalID: testutil.Medal2.ID, EarnedAt: time.Now(),
		}))
	}
	require.NoError(t, userMedalRepo.Create(ctx, &entity.UserMedal{
		UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID, EarnedAt: time.Now(),
	}))

	p := statistic.New(userMedalRepo, nil)

	// Without redis these are no-ops.
	p.Change(ctx, testutil.Medal1.ID, 10)
	p.Remove(ctx, testutil.Medal2.ID)

	top, err := p.GetTop(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []repository.MedalOwnerCount{{MedalID: testutil.Medal2.ID, Owners: 2}}, top)
}

func TestPopularity_Change(t *testing.T) {
	ctx := testutil.MockContext()

	exists := false
	increments := map[string]int64{}
	removed := []string{}
	redisClient := &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			// The presence check belongs to the increment itself.
			t.Fatal("Change must not check the key separately")
			return false, nil
		},
		ZIncrByIfExistsFunc: func(ctx context.Context, key string, incr int64, member string) (bool, error) {
			require.Equal(t, common.RedisKeyPopularMedals, key)
			if !exists {
				return false, nil
			}

			increments[member] += incr
			return true, nil
		},
		ZRemFunc: func(ctx context.Context, key string, members ...string) error {
			removed = append(removed, members...)
			return nil
		},
	}

	p := statistic.New(repository.NewUserMedalRepository(), redisClient)

	// The ranking is not built yet, the next read loads it from the database.
	p.Change(ctx, testutil.Medal1.ID, 1)
	require.Empty(t, increments)

	exists = true
	p.Change(ctx, testutil.Medal1.ID, 1)
	p.Change(ctx, testutil.Medal1.ID, -1)
	p.Change(ctx, testutil.Medal2.ID, 1)
	require.Equal(t, map[string]int64{testutil.Medal1.ID: 0, testutil.Medal2.ID: 1}, increments)

	p.Remove(ctx, testutil.Medal2.ID)
	require.Equal(t, []string{testutil.Medal2.ID}, removed)
}

func TestPopularity_GetTop_SkipsEmptyScores(t *testing.T) {
	ctx := testutil.MockContext()

	redisClient := &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			return true, nil
		},
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			require.Equal(t, 0, offset)
			require.Equal(t, 3, limit)
			return []redis.Z{
				{Member: testutil.Medal1.ID, Score: 4},
				{Member: testutil.Medal2.ID, Score: 0},
			}, nil
		},
	}

	p := statistic.New(repository.NewUserMedalRepository(), redisClient)
	top, err := p.GetTop(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, []repository.MedalOwnerCount{{MedalID: testutil.Medal1.ID, Owners: 4}}, top)
}
