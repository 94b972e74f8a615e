package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/medalboard/backend/internal/common"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type CollectionDomain interface {
	Create(context.Context, *model.CreateCollectionRequest) (*model.CreateCollectionResponse, error)
	Update(context.Context, *model.UpdateCollectionRequest) (*model.UpdateCollectionResponse, error)
	Delete(context.Context, *model.DeleteCollectionRequest) (*model.DeleteCollectionResponse, error)
	Get(context.Context, *model.GetCollectionRequest) (*model.GetCollectionResponse, error)
	GetList(context.Context, *model.GetCollectionsRequest) (*model.GetCollectionsResponse, error)
}

type collectionDomain struct {
	collectionRepo        repository.CollectionRepository
	trackedCollectionRepo repository.TrackedCollectionRepository
	medalRepo             repository.MedalRepository
	globalRoleVerifier    *common.GlobalRoleVerifier
}

func NewCollectionDomain(
	collectionRepo repository.CollectionRepository,
	trackedCollectionRepo repository.TrackedCollectionRepository,
	medalRepo repository.MedalRepository,
	userRepo repository.UserRepository,
) *collectionDomain {
	return &collectionDomain{
		collectionRepo:        collectionRepo,
		trackedCollectionRepo: trackedCollectionRepo,
		medalRepo:             medalRepo,
		globalRoleVerifier:    common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *collectionDomain) Create(
	ctx context.Context, req *model.CreateCollectionRequest,
) (*model.CreateCollectionResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	if err := d.checkMedals(ctx, req.MedalIDs); err != nil {
		return nil, err
	}

	collection := &entity.Collection{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        name,
		Slug:        slug.Make(name),
		Description: req.Description,
		Image:       req.Image,
		OwnerID:     xcontext.RequestUserID(ctx),
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.collectionRepo.Create(ctx, collection); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create collection: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.collectionRepo.ReplaceMedals(ctx, collection.ID, req.MedalIDs); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add medals to collection: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateCollectionResponse{ID: collection.ID, Slug: collection.Slug}, nil
}

func (d *collectionDomain) Update(
	ctx context.Context, req *model.UpdateCollectionRequest,
) (*model.UpdateCollectionResponse, error) {
	if _, err := d.getOwnedCollection(ctx, req.ID); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
		}

		changes["name"] = name
		changes["slug"] = slug.Make(name)
	}

	if req.Description != "" {
		changes["description"] = req.Description
	}

	if req.Image != "" {
		changes["image"] = req.Image
	}

	if req.MedalIDs != nil {
		if err := d.checkMedals(ctx, req.MedalIDs); err != nil {
			return nil, err
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.collectionRepo.UpdateByID(ctx, req.ID, changes); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update collection: %v", err)
		return nil, errorx.Unknown
	}

	if req.MedalIDs != nil {
		if err := d.collectionRepo.ReplaceMedals(ctx, req.ID, req.MedalIDs); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot replace medals of collection: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateCollectionResponse{}, nil
}

func (d *collectionDomain) Delete(
	ctx context.Context, req *model.DeleteCollectionRequest,
) (*model.DeleteCollectionResponse, error) {
	if _, err := d.getOwnedCollection(ctx, req.ID); err != nil {
		return nil, err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := deleteCollection(ctx, d.collectionRepo, d.trackedCollectionRepo, req.ID); err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteCollectionResponse{}, nil
}

func (d *collectionDomain) Get(
	ctx context.Context, req *model.GetCollectionRequest,
) (*model.GetCollectionResponse, error) {
	collection, err := d.collectionRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found collection")
		}

		xcontext.Logger(ctx).Errorf("Cannot get collection: %v", err)
		return nil, errorx.Unknown
	}

	medals, err := getCollectionMedals(ctx, d.collectionRepo, []string{collection.ID})
	if err != nil {
		return nil, err
	}

	resp := model.GetCollectionResponse(convertCollection(collection, medals[collection.ID]))
	return &resp, nil
}

func (d *collectionDomain) GetList(
	ctx context.Context, req *model.GetCollectionsRequest,
) (*model.GetCollectionsResponse, error) {
	collections, err := d.collectionRepo.GetList(ctx, req.OwnerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get collection list: %v", err)
		return nil, errorx.Unknown
	}

	collectionIDs := []string{}
	for _, c := range collections {
		collectionIDs = append(collectionIDs, c.ID)
	}

	medals, err := getCollectionMedals(ctx, d.collectionRepo, collectionIDs)
	if err != nil {
		return nil, err
	}

	clientCollections := []model.Collection{}
	for i := range collections {
		clientCollections = append(clientCollections, convertCollection(&collections[i], medals[collections[i].ID]))
	}

	return &model.GetCollectionsResponse{Collections: clientCollections}, nil
}

// getOwnedCollection fails unless the request user owns the collection or is
// an admin.
func (d *collectionDomain) getOwnedCollection(ctx context.Context, id string) (*entity.Collection, error) {
	collection, err := d.collectionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found collection")
		}

		xcontext.Logger(ctx).Errorf("Cannot get collection: %v", err)
		return nil, errorx.Unknown
	}

	if !d.globalRoleVerifier.IsSelfOrAdmin(ctx, collection.OwnerID) {
		return nil, errorx.New(errorx.PermissionDenied, "Only the owner can modify the collection")
	}

	return collection, nil
}

func (d *collectionDomain) checkMedals(ctx context.Context, medalIDs []string) error {
	if len(medalIDs) == 0 {
		return nil
	}

	requested := map[string]bool{}
	for _, id := range medalIDs {
		if requested[id] {
			return errorx.New(errorx.BadRequest, "Duplicated medal %s", id)
		}
		requested[id] = true
	}

	medals, err := d.medalRepo.GetByIDs(ctx, common.MapKeys(requested))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get medals: %v", err)
		return errorx.Unknown
	}

	found := map[string]bool{}
	for _, m := range medals {
		found[m.ID] = true
	}

	for _, id := range medalIDs {
		if !found[id] {
			return errorx.New(errorx.NotFound, "Not found medal %s", id)
		}
	}

	return nil
}

// deleteCollection removes a collection with its membership and tracking
// rows. It must run in a transaction.
func deleteCollection(
	ctx context.Context,
	collectionRepo repository.CollectionRepository,
	trackedCollectionRepo repository.TrackedCollectionRepository,
	id string,
) error {
	if err := trackedCollectionRepo.DeleteByCollectionID(ctx, id); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete tracked collections: %v", err)
		return errorx.Unknown
	}

	if err := collectionRepo.DeleteMedalsByCollectionID(ctx, id); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete medals of collection: %v", err)
		return errorx.Unknown
	}

	if err := collectionRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found collection")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete collection: %v", err)
		return errorx.Unknown
	}

	return nil
}

func getCollectionMedals(
	ctx context.Context, collectionRepo repository.CollectionRepository, collectionIDs []string,
) (map[string][]model.Medal, error) {
	members, err := collectionRepo.GetMedals(ctx, collectionIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get medals of collections: %v", err)
		return nil, errorx.Unknown
	}

	result := map[string][]model.Medal{}
	for i := range members {
		result[members[i].CollectionID] = append(result[members[i].CollectionID], convertMedal(&members[i].Medal, nil))
	}

	return result, nil
}
