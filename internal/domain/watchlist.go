package domain

import (
	"context"
	"errors"
	"time"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type WatchlistDomain interface {
	TrackMedal(context.Context, *model.TrackMedalRequest) (*model.TrackMedalResponse, error)
	UntrackMedal(context.Context, *model.UntrackMedalRequest) (*model.UntrackMedalResponse, error)
	IsTracked(context.Context, *model.IsTrackedRequest) (*model.IsTrackedResponse, error)
	GetTrackedMedals(context.Context, *model.GetTrackedMedalsRequest) (*model.GetTrackedMedalsResponse, error)

	TrackCollection(context.Context, *model.TrackCollectionRequest) (*model.TrackCollectionResponse, error)
	UntrackCollection(context.Context, *model.UntrackCollectionRequest) (*model.UntrackCollectionResponse, error)
	IsTrackingCollection(context.Context, *model.IsTrackingCollectionRequest) (*model.IsTrackingCollectionResponse, error)
	GetTrackedCollections(context.Context, *model.GetTrackedCollectionsRequest) (*model.GetTrackedCollectionsResponse, error)
}

type watchlistDomain struct {
	medalRepo             repository.MedalRepository
	userMedalRepo         repository.UserMedalRepository
	collectionRepo        repository.CollectionRepository
	trackedMedalRepo      repository.TrackedMedalRepository
	trackedCollectionRepo repository.TrackedCollectionRepository
}

func NewWatchlistDomain(
	medalRepo repository.MedalRepository,
	userMedalRepo repository.UserMedalRepository,
	collectionRepo repository.CollectionRepository,
	trackedMedalRepo repository.TrackedMedalRepository,
	trackedCollectionRepo repository.TrackedCollectionRepository,
) *watchlistDomain {
	return &watchlistDomain{
		medalRepo:             medalRepo,
		userMedalRepo:         userMedalRepo,
		collectionRepo:        collectionRepo,
		trackedMedalRepo:      trackedMedalRepo,
		trackedCollectionRepo: trackedCollectionRepo,
	}
}

func (d *watchlistDomain) TrackMedal(
	ctx context.Context, req *model.TrackMedalRequest,
) (*model.TrackMedalResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)

	medal, err := d.medalRepo.GetByID(ctx, req.MedalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot get medal: %v", err)
		return nil, errorx.Unknown
	}

	if medal.Status != entity.MedalEarnable {
		return nil, errorx.New(errorx.NotEarnable, "Only earnable medals can be tracked")
	}

	owned, err := d.userMedalRepo.Exists(ctx, requestUserID, req.MedalID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check ownership: %v", err)
		return nil, errorx.Unknown
	}

	if owned {
		return nil, errorx.New(errorx.AlreadyOwned, "User already owns the medal")
	}

	err = d.trackedMedalRepo.Upsert(ctx, &entity.TrackedMedal{
		UserID:  requestUserID,
		MedalID: req.MedalID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot track medal: %v", err)
		return nil, errorx.Unknown
	}

	return &model.TrackMedalResponse{}, nil
}

func (d *watchlistDomain) UntrackMedal(
	ctx context.Context, req *model.UntrackMedalRequest,
) (*model.UntrackMedalResponse, error) {
	if err := d.trackedMedalRepo.Delete(ctx, xcontext.RequestUserID(ctx), req.MedalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotTracked, "User is not tracking the medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot untrack medal: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UntrackMedalResponse{}, nil
}

func (d *watchlistDomain) IsTracked(
	ctx context.Context, req *model.IsTrackedRequest,
) (*model.IsTrackedResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	tracked, err := d.trackedMedalRepo.Exists(ctx, userID, req.MedalID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check tracked medal: %v", err)
		return nil, errorx.Unknown
	}

	return &model.IsTrackedResponse{Tracked: tracked}, nil
}

func (d *watchlistDomain) GetTrackedMedals(
	ctx context.Context, req *model.GetTrackedMedalsRequest,
) (*model.GetTrackedMedalsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	trackedMedals, err := d.trackedMedalRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tracked medals: %v", err)
		return nil, errorx.Unknown
	}

	medals := []model.TrackedMedal{}
	for i := range trackedMedals {
		medals = append(medals, model.TrackedMedal{
			Medal:     convertMedal(&trackedMedals[i].Medal, nil),
			CreatedAt: trackedMedals[i].CreatedAt.Format(model.DefaultTimeLayout),
		})
	}

	return &model.GetTrackedMedalsResponse{Medals: medals}, nil
}

func (d *watchlistDomain) TrackCollection(
	ctx context.Context, req *model.TrackCollectionRequest,
) (*model.TrackCollectionResponse, error) {
	if _, err := d.collectionRepo.GetByID(ctx, req.CollectionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found collection")
		}

		xcontext.Logger(ctx).Errorf("Cannot get collection: %v", err)
		return nil, errorx.Unknown
	}

	err := d.trackedCollectionRepo.Upsert(ctx, &entity.TrackedCollection{
		UserID:       xcontext.RequestUserID(ctx),
		CollectionID: req.CollectionID,
		StartedAt:    time.Now(),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot track collection: %v", err)
		return nil, errorx.Unknown
	}

	return &model.TrackCollectionResponse{}, nil
}

func (d *watchlistDomain) UntrackCollection(
	ctx context.Context, req *model.UntrackCollectionRequest,
) (*model.UntrackCollectionResponse, error) {
	err := d.trackedCollectionRepo.Delete(ctx, xcontext.RequestUserID(ctx), req.CollectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotTracked, "User is not tracking the collection")
		}

		xcontext.Logger(ctx).Errorf("Cannot untrack collection: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UntrackCollectionResponse{}, nil
}

func (d *watchlistDomain) IsTrackingCollection(
	ctx context.Context, req *model.IsTrackingCollectionRequest,
) (*model.IsTrackingCollectionResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	tracked, err := d.trackedCollectionRepo.Exists(ctx, userID, req.CollectionID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check tracked collection: %v", err)
		return nil, errorx.Unknown
	}

	return &model.IsTrackingCollectionResponse{Tracked: tracked}, nil
}

func (d *watchlistDomain) GetTrackedCollections(
	ctx context.Context, req *model.GetTrackedCollectionsRequest,
) (*model.GetTrackedCollectionsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	trackedCollections, err := d.trackedCollectionRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tracked collections: %v", err)
		return nil, errorx.Unknown
	}

	collectionIDs := []string{}
	for _, tc := range trackedCollections {
		collectionIDs = append(collectionIDs, tc.CollectionID)
	}

	medals, err := getCollectionMedals(ctx, d.collectionRepo, collectionIDs)
	if err != nil {
		return nil, err
	}

	collections := []model.TrackedCollection{}
	for i := range trackedCollections {
		tc := &trackedCollections[i]
		collections = append(collections, model.TrackedCollection{
			Collection: convertCollection(&tc.Collection, medals[tc.CollectionID]),
			StartedAt:  tc.StartedAt.Format(model.DefaultTimeLayout),
		})
	}

	return &model.GetTrackedCollectionsResponse{Collections: collections}, nil
}
