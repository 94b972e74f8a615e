package statistic

import (
	"context"

	"github.com/medalboard/backend/internal/common"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/medalboard/backend/pkg/xredis"
)

// Popularity ranks medals by their number of owners.
type Popularity interface {
	GetTop(ctx context.Context, limit int) ([]repository.MedalOwnerCount, error)

	// Change adds value to the owner count of a medal. Failures are only
	// logged, the database stays the source of truth.
	Change(ctx context.Context, medalID string, value int64)
	Remove(ctx context.Context, medalID string)
}

type popularity struct {
	userMedalRepo repository.UserMedalRepository
	redisClient   xredis.Client
}

// New returns a redis backed Popularity. If redisClient is nil, every read
// goes to the database.
func New(
	userMedalRepo repository.UserMedalRepository,
	redisClient xredis.Client,
) *popularity {
	return &popularity{
		userMedalRepo: userMedalRepo,
		redisClient:   redisClient,
	}
}

func (p *popularity) GetTop(ctx context.Context, limit int) ([]repository.MedalOwnerCount, error) {
	if p.redisClient == nil {
		result, err := p.userMedalRepo.CountOwners(ctx, limit)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count medal owners: %v", err)
			return nil, errorx.Unknown
		}

		return result, nil
	}

	ok, err := p.redisClient.Exist(ctx, common.RedisKeyPopularMedals)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return nil, errorx.Unknown
	}

	// If the key didn't exist in redis, load it from database.
	if !ok {
		if err := p.loadFromDB(ctx); err != nil {
			return nil, err
		}
	}

	results, err := p.redisClient.ZRevRangeWithScores(ctx, common.RedisKeyPopularMedals, 0, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	top := []repository.MedalOwnerCount{}
	for _, z := range results {
		medalID, ok := z.Member.(string)
		if !ok || z.Score <= 0 {
			continue
		}

		top = append(top, repository.MedalOwnerCount{MedalID: medalID, Owners: int64(z.Score)})
	}

	return top, nil
}

func (p *popularity) Change(ctx context.Context, medalID string, value int64) {
	if p.redisClient == nil {
		return
	}

	// A missing ranking is left alone, the next read rebuilds it with its TTL.
	_, err := p.redisClient.ZIncrByIfExists(ctx, common.RedisKeyPopularMedals, value, medalID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call ZIncrByIfExists redis: %v", err)
	}
}

func (p *popularity) Remove(ctx context.Context, medalID string) {
	if p.redisClient == nil {
		return
	}

	if err := p.redisClient.ZRem(ctx, common.RedisKeyPopularMedals, medalID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call ZRem redis: %v", err)
	}
}

func (p *popularity) loadFromDB(ctx context.Context) error {
	counts, err := p.userMedalRepo.CountOwners(ctx, 0)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load medal owners from database: %v", err)
		return errorx.Unknown
	}

	scores := make(map[string]int64, len(counts))
	for _, c := range counts {
		scores[c.MedalID] = c.Owners
	}

	ttl := xcontext.Configs(ctx).Redis.PopularTTL
	if err := p.redisClient.ZReplace(ctx, common.RedisKeyPopularMedals, scores, ttl); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot rebuild popular medals: %v", err)
		return errorx.Unknown
	}

	return nil
}
