package domain

import (
	"context"

	"github.com/medalboard/backend/internal/domain/statistic"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/xcontext"
)

type StatisticDomain interface {
	GetPopularMedals(context.Context, *model.GetPopularMedalsRequest) (*model.GetPopularMedalsResponse, error)
}

type statisticDomain struct {
	medalRepo  repository.MedalRepository
	popularity statistic.Popularity
}

func NewStatisticDomain(
	medalRepo repository.MedalRepository,
	popularity statistic.Popularity,
) *statisticDomain {
	return &statisticDomain{
		medalRepo:  medalRepo,
		popularity: popularity,
	}
}

func (d *statisticDomain) GetPopularMedals(
	ctx context.Context, req *model.GetPopularMedalsRequest,
) (*model.GetPopularMedalsResponse, error) {
	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	top, err := d.popularity.GetTop(ctx, limit)
	if err != nil {
		return nil, err
	}

	medalIDs := []string{}
	for _, t := range top {
		medalIDs = append(medalIDs, t.MedalID)
	}

	medals, err := d.medalRepo.GetByIDs(ctx, medalIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get medals: %v", err)
		return nil, errorx.Unknown
	}

	medalSet := map[string]int{}
	for i := range medals {
		medalSet[medals[i].ID] = i
	}

	result := []model.PopularMedal{}
	for _, t := range top {
		// Medals deleted after the ranking was built are skipped.
		i, ok := medalSet[t.MedalID]
		if !ok {
			continue
		}

		result = append(result, model.PopularMedal{
			Medal:  convertMedal(&medals[i], nil),
			Owners: t.Owners,
		})
	}

	return &model.GetPopularMedalsResponse{Medals: result}, nil
}
