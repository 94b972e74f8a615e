package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medalboard/backend/internal/common"
	"github.com/medalboard/backend/internal/domain/statistic"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/pubsub"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserMedalDomain interface {
	Grant(context.Context, *model.GrantMedalRequest) (*model.GrantMedalResponse, error)
	Revoke(context.Context, *model.RevokeMedalRequest) (*model.RevokeMedalResponse, error)
	Reorder(context.Context, *model.ReorderMedalsRequest) (*model.ReorderMedalsResponse, error)
	GetList(context.Context, *model.GetUserMedalsRequest) (*model.GetUserMedalsResponse, error)
	Get(context.Context, *model.GetUserMedalRequest) (*model.GetUserMedalResponse, error)
	IsOwned(context.Context, *model.IsOwnedRequest) (*model.IsOwnedResponse, error)
	UpdateEarnedAt(context.Context, *model.UpdateEarnedAtRequest) (*model.UpdateEarnedAtResponse, error)
	MarkTrackedAsEarned(context.Context, *model.MarkTrackedAsEarnedRequest) (*model.MarkTrackedAsEarnedResponse, error)

	AddVouch(context.Context, *model.AddVouchRequest) (*model.AddVouchResponse, error)
	RemoveVouch(context.Context, *model.RemoveVouchRequest) (*model.RemoveVouchResponse, error)
	GetVouches(context.Context, *model.GetVouchesRequest) (*model.GetVouchesResponse, error)
}

type userMedalDomain struct {
	userRepo           repository.UserRepository
	medalRepo          repository.MedalRepository
	userMedalRepo      repository.UserMedalRepository
	vouchRepo          repository.UserMedalVouchRepository
	trackedMedalRepo   repository.TrackedMedalRepository
	publisher          pubsub.Publisher
	popularity         statistic.Popularity
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewUserMedalDomain(
	userRepo repository.UserRepository,
	medalRepo repository.MedalRepository,
	userMedalRepo repository.UserMedalRepository,
	vouchRepo repository.UserMedalVouchRepository,
	trackedMedalRepo repository.TrackedMedalRepository,
	publisher pubsub.Publisher,
	popularity statistic.Popularity,
) *userMedalDomain {
	return &userMedalDomain{
		userRepo:           userRepo,
		medalRepo:          medalRepo,
		userMedalRepo:      userMedalRepo,
		vouchRepo:          vouchRepo,
		trackedMedalRepo:   trackedMedalRepo,
		publisher:          publisher,
		popularity:         popularity,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *userMedalDomain) Grant(
	ctx context.Context, req *model.GrantMedalRequest,
) (*model.GrantMedalResponse, error) {
	isAdmin := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...) == nil
	if !isAdmin && req.UserID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Cannot grant medal to other users")
	}

	if _, err := d.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	medal, err := d.getMedal(ctx, req.MedalID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && medal.Status != entity.MedalEarnable {
		return nil, errorx.New(errorx.NotEarnable, "Medal %s is not earnable", medal.Name)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.grant(ctx, req.UserID, req.MedalID); err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.popularity.Change(ctx, req.MedalID, 1)
	publishEvent(ctx, d.publisher, model.MedalGrantedTopic, req.UserID, &model.OwnershipEvent{
		UserID:  req.UserID,
		MedalID: req.MedalID,
	})

	return &model.GrantMedalResponse{}, nil
}

// grant appends the medal to the end of the user's ordering. It must run in
// a transaction.
func (d *userMedalDomain) grant(ctx context.Context, userID, medalID string) error {
	owned, err := d.userMedalRepo.Exists(ctx, userID, medalID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check ownership: %v", err)
		return errorx.Unknown
	}

	if owned {
		return errorx.New(errorx.AlreadyOwned, "User already owns the medal")
	}

	sortOrder, err := d.userMedalRepo.NextSortOrder(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get next sort order: %v", err)
		return errorx.Unknown
	}

	err = d.userMedalRepo.Create(ctx, &entity.UserMedal{
		UserID:    userID,
		MedalID:   medalID,
		EarnedAt:  time.Now(),
		SortOrder: sortOrder,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorx.New(errorx.AlreadyOwned, "User already owns the medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot create user medal: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *userMedalDomain) Revoke(
	ctx context.Context, req *model.RevokeMedalRequest,
) (*model.RevokeMedalResponse, error) {
	if !d.globalRoleVerifier.IsSelfOrAdmin(ctx, req.UserID) {
		return nil, errorx.New(errorx.PermissionDenied, "Cannot revoke medal of other users")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.lockOwnership(ctx, req.UserID, req.MedalID); err != nil {
		return nil, err
	}

	if err := d.vouchRepo.DeleteByOwnership(ctx, req.UserID, req.MedalID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete vouches: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.userMedalRepo.Delete(ctx, req.UserID, req.MedalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotOwned, "User does not own the medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete user medal: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.popularity.Change(ctx, req.MedalID, -1)
	publishEvent(ctx, d.publisher, model.MedalRevokedTopic, req.UserID, &model.OwnershipEvent{
		UserID:  req.UserID,
		MedalID: req.MedalID,
	})

	return &model.RevokeMedalResponse{}, nil
}

func (d *userMedalDomain) Reorder(
	ctx context.Context, req *model.ReorderMedalsRequest,
) (*model.ReorderMedalsResponse, error) {
	if len(req.Medals) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Require at least one medal")
	}

	requestUserID := xcontext.RequestUserID(ctx)
	for _, m := range req.Medals {
		if m.UserID != req.Medals[0].UserID {
			return nil, errorx.New(errorx.BadRequest, "All medals must belong to the same user")
		}

		if m.UserID != requestUserID {
			return nil, errorx.New(errorx.PermissionDenied, "Cannot reorder medals of other users")
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	for _, m := range req.Medals {
		owned, err := d.userMedalRepo.Exists(ctx, m.UserID, m.MedalID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check ownership: %v", err)
			return nil, errorx.Unknown
		}

		if !owned {
			return nil, errorx.New(errorx.NotOwned, "User does not own medal %s", m.MedalID)
		}

		if err := d.userMedalRepo.UpdateSortOrder(ctx, m.UserID, m.MedalID, m.SortOrder); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update sort order: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ReorderMedalsResponse{}, nil
}

func (d *userMedalDomain) GetList(
	ctx context.Context, req *model.GetUserMedalsRequest,
) (*model.GetUserMedalsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	if err := checkOffset(req.Offset); err != nil {
		return nil, err
	}

	filter := repository.UserMedalFilter{
		UserID:       userID,
		Q:            req.Q,
		CategoryName: req.CategoryName,
		Offset:       req.Offset,
		Limit:        limit,
	}

	userMedals, err := d.userMedalRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user medal list: %v", err)
		return nil, errorx.Unknown
	}

	total, err := d.userMedalRepo.Count(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count user medals: %v", err)
		return nil, errorx.Unknown
	}

	clientUserMedals := []model.UserMedal{}
	for i := range userMedals {
		clientUserMedals = append(clientUserMedals, convertUserMedal(&userMedals[i]))
	}

	return &model.GetUserMedalsResponse{UserMedals: clientUserMedals, Total: total}, nil
}

func (d *userMedalDomain) Get(
	ctx context.Context, req *model.GetUserMedalRequest,
) (*model.GetUserMedalResponse, error) {
	userMedal, err := d.userMedalRepo.Get(ctx, req.UserID, req.MedalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotOwned, "User does not own the medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user medal: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetUserMedalResponse(convertUserMedal(userMedal))
	return &resp, nil
}

func (d *userMedalDomain) IsOwned(
	ctx context.Context, req *model.IsOwnedRequest,
) (*model.IsOwnedResponse, error) {
	owned, err := d.userMedalRepo.Exists(ctx, req.UserID, req.MedalID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check ownership: %v", err)
		return nil, errorx.Unknown
	}

	return &model.IsOwnedResponse{Owned: owned}, nil
}

func (d *userMedalDomain) UpdateEarnedAt(
	ctx context.Context, req *model.UpdateEarnedAtRequest,
) (*model.UpdateEarnedAtResponse, error) {
	if req.UserID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Cannot update medal of other users")
	}

	earnedAt, err := parseTime(req.EarnedAt)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid earned time")
	}

	if earnedAt.After(time.Now()) {
		return nil, errorx.New(errorx.BadRequest, "Earned time cannot be in the future")
	}

	if err := d.userMedalRepo.UpdateEarnedAt(ctx, req.UserID, req.MedalID, earnedAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotOwned, "User does not own the medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot update earned time: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateEarnedAtResponse{}, nil
}

func (d *userMedalDomain) MarkTrackedAsEarned(
	ctx context.Context, req *model.MarkTrackedAsEarnedRequest,
) (*model.MarkTrackedAsEarnedResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)

	medal, err := d.getMedal(ctx, req.MedalID)
	if err != nil {
		return nil, err
	}

	if medal.Status != entity.MedalEarnable {
		return nil, errorx.New(errorx.NotEarnable, "Medal %s is not earnable", medal.Name)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	tracked, err := d.trackedMedalRepo.Exists(ctx, requestUserID, req.MedalID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check tracked medal: %v", err)
		return nil, errorx.Unknown
	}

	if !tracked {
		return nil, errorx.New(errorx.NotTracked, "User is not tracking the medal")
	}

	if err := d.grant(ctx, requestUserID, req.MedalID); err != nil {
		return nil, err
	}

	if err := d.trackedMedalRepo.Delete(ctx, requestUserID, req.MedalID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot untrack medal: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.popularity.Change(ctx, req.MedalID, 1)
	publishEvent(ctx, d.publisher, model.MedalGrantedTopic, requestUserID, &model.OwnershipEvent{
		UserID:  requestUserID,
		MedalID: req.MedalID,
	})

	return &model.MarkTrackedAsEarnedResponse{}, nil
}

func (d *userMedalDomain) AddVouch(
	ctx context.Context, req *model.AddVouchRequest,
) (*model.AddVouchResponse, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	// Revoke takes the same lock before deleting vouches, so a vouch is
	// either cleaned by it or rejected here.
	if err := d.lockOwnership(ctx, req.UserID, req.MedalID); err != nil {
		return nil, err
	}

	vouch := &entity.UserMedalVouch{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		MedalID:     req.MedalID,
		VouchedByID: xcontext.RequestUserID(ctx),
	}

	if err := d.vouchRepo.Create(ctx, vouch); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create vouch: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.AddVouchResponse{ID: vouch.ID}, nil
}

func (d *userMedalDomain) lockOwnership(ctx context.Context, userID, medalID string) error {
	if _, err := d.userMedalRepo.GetForUpdate(ctx, userID, medalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotOwned, "User does not own the medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot lock ownership: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *userMedalDomain) RemoveVouch(
	ctx context.Context, req *model.RemoveVouchRequest,
) (*model.RemoveVouchResponse, error) {
	vouch, err := d.vouchRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found vouch")
		}

		xcontext.Logger(ctx).Errorf("Cannot get vouch: %v", err)
		return nil, errorx.Unknown
	}

	if vouch.VouchedByID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only the voucher can remove the vouch")
	}

	if err := d.vouchRepo.DeleteByID(ctx, vouch.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found vouch")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete vouch: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RemoveVouchResponse{}, nil
}

func (d *userMedalDomain) GetVouches(
	ctx context.Context, req *model.GetVouchesRequest,
) (*model.GetVouchesResponse, error) {
	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	if err := checkOffset(req.Offset); err != nil {
		return nil, err
	}

	vouches, err := d.vouchRepo.GetList(ctx, req.UserID, req.MedalID, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get vouch list: %v", err)
		return nil, errorx.Unknown
	}

	total, err := d.vouchRepo.Count(ctx, req.UserID, req.MedalID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count vouches: %v", err)
		return nil, errorx.Unknown
	}

	clientVouches := []model.Vouch{}
	for i := range vouches {
		clientVouches = append(clientVouches, convertVouch(&vouches[i]))
	}

	return &model.GetVouchesResponse{Vouches: clientVouches, Total: total}, nil
}

func (d *userMedalDomain) getMedal(ctx context.Context, medalID string) (*entity.Medal, error) {
	medal, err := d.medalRepo.GetByID(ctx, medalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot get medal: %v", err)
		return nil, errorx.Unknown
	}

	return medal, nil
}
