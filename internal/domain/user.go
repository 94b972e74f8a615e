package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/medalboard/backend/internal/common"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/enum"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const defaultUserImage = "/images/default.png"

type UserDomain interface {
	Create(context.Context, *model.CreateUserRequest) (*model.CreateUserResponse, error)
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
	Get(context.Context, *model.GetUserRequest) (*model.GetUserResponse, error)
	GetList(context.Context, *model.GetUsersRequest) (*model.GetUsersResponse, error)
	Update(context.Context, *model.UpdateUserRequest) (*model.UpdateUserResponse, error)
	UpdateByAdmin(context.Context, *model.UpdateUserByAdminRequest) (*model.UpdateUserByAdminResponse, error)
	Delete(context.Context, *model.DeleteUserRequest) (*model.DeleteUserResponse, error)
}

type userDomain struct {
	userRepo              repository.UserRepository
	userMedalRepo         repository.UserMedalRepository
	vouchRepo             repository.UserMedalVouchRepository
	userTaskRepo          repository.UserTaskRepository
	giftRepo              repository.GiftedMedalRepository
	trackedMedalRepo      repository.TrackedMedalRepository
	trackedCollectionRepo repository.TrackedCollectionRepository
	collectionRepo        repository.CollectionRepository
	followRepo            repository.FollowRepository
	globalRoleVerifier    *common.GlobalRoleVerifier
}

func NewUserDomain(
	userRepo repository.UserRepository,
	userMedalRepo repository.UserMedalRepository,
	vouchRepo repository.UserMedalVouchRepository,
	userTaskRepo repository.UserTaskRepository,
	giftRepo repository.GiftedMedalRepository,
	trackedMedalRepo repository.TrackedMedalRepository,
	trackedCollectionRepo repository.TrackedCollectionRepository,
	collectionRepo repository.CollectionRepository,
	followRepo repository.FollowRepository,
) *userDomain {
	return &userDomain{
		userRepo:              userRepo,
		userMedalRepo:         userMedalRepo,
		vouchRepo:             vouchRepo,
		userTaskRepo:          userTaskRepo,
		giftRepo:              giftRepo,
		trackedMedalRepo:      trackedMedalRepo,
		trackedCollectionRepo: trackedCollectionRepo,
		collectionRepo:        collectionRepo,
		followRepo:            followRepo,
		globalRoleVerifier:    common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *userDomain) Create(
	ctx context.Context, req *model.CreateUserRequest,
) (*model.CreateUserResponse, error) {
	if !common.IsValidUsername(req.Username) {
		return nil, errorx.New(errorx.BadRequest, "Username must be 3-30 letters, digits or underscores")
	}

	if err := checkEmail(req.Email); err != nil {
		return nil, err
	}

	if err := d.checkUnique(ctx, "", req.Username, req.Email); err != nil {
		return nil, err
	}

	role := entity.RoleUser
	if req.Role != "" {
		if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
			return nil, errorx.New(errorx.PermissionDenied, "Only admin can set the role")
		}

		var err error
		role, err = enum.ToEnum[entity.GlobalRole](req.Role)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid role")
		}
	}

	image := req.Image
	if image == "" {
		image = defaultUserImage
	}

	user := &entity.User{
		Base:     entity.Base{ID: uuid.NewString()},
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Image:    image,
		Role:     role,
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorx.New(errorx.AlreadyExists, "Username or email is already taken")
		}

		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateUserResponse{ID: user.ID}, nil
}

func (d *userDomain) GetMe(
	ctx context.Context, req *model.GetMeRequest,
) (*model.GetMeResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetMeResponse(convertUser(user, true))
	return &resp, nil
}

func (d *userDomain) Get(
	ctx context.Context, req *model.GetUserRequest,
) (*model.GetUserResponse, error) {
	var user *entity.User
	var err error
	switch {
	case req.ID != "":
		user, err = d.userRepo.GetByID(ctx, req.ID)
	case req.Username != "":
		user, err = d.userRepo.GetByUsername(ctx, req.Username)
	default:
		return nil, errorx.New(errorx.BadRequest, "Require id or username")
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetUserResponse(convertUser(user, d.globalRoleVerifier.IsSelfOrAdmin(ctx, user.ID)))
	return &resp, nil
}

func (d *userDomain) GetList(
	ctx context.Context, req *model.GetUsersRequest,
) (*model.GetUsersResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can list users")
	}

	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	if err := checkOffset(req.Offset); err != nil {
		return nil, err
	}

	users, err := d.userRepo.GetList(ctx, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user list: %v", err)
		return nil, errorx.Unknown
	}

	total, err := d.userRepo.Count(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count users: %v", err)
		return nil, errorx.Unknown
	}

	clientUsers := []model.User{}
	for i := range users {
		clientUsers = append(clientUsers, convertUser(&users[i], true))
	}

	return &model.GetUsersResponse{Users: clientUsers, Total: total}, nil
}

func (d *userDomain) Update(
	ctx context.Context, req *model.UpdateUserRequest,
) (*model.UpdateUserResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	err := d.update(ctx, userID, &entity.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Image:    req.Image,
	})
	if err != nil {
		return nil, err
	}

	return &model.UpdateUserResponse{}, nil
}

func (d *userDomain) UpdateByAdmin(
	ctx context.Context, req *model.UpdateUserByAdminRequest,
) (*model.UpdateUserByAdminResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can update other users")
	}

	data := &entity.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Image:    req.Image,
	}

	if req.Role != "" {
		role, err := enum.ToEnum[entity.GlobalRole](req.Role)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid role")
		}
		data.Role = role
	}

	if err := d.update(ctx, req.ID, data); err != nil {
		return nil, err
	}

	return &model.UpdateUserByAdminResponse{}, nil
}

func (d *userDomain) update(ctx context.Context, userID string, data *entity.User) error {
	if data.Username != "" && !common.IsValidUsername(data.Username) {
		return errorx.New(errorx.BadRequest, "Username must be 3-30 letters, digits or underscores")
	}

	if data.Email != "" {
		if err := checkEmail(data.Email); err != nil {
			return err
		}
	}

	if err := d.checkUnique(ctx, userID, data.Username, data.Email); err != nil {
		return err
	}

	if err := d.userRepo.UpdateByID(ctx, userID, data); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found user")
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorx.New(errorx.AlreadyExists, "Username or email is already taken")
		}

		xcontext.Logger(ctx).Errorf("Cannot update user: %v", err)
		return errorx.Unknown
	}

	return nil
}

// checkUnique fails if username or email belongs to a user other than userID.
func (d *userDomain) checkUnique(ctx context.Context, userID, username, email string) error {
	if username != "" {
		user, err := d.userRepo.GetByUsername(ctx, username)
		if err == nil && user.ID != userID {
			return errorx.New(errorx.AlreadyExists, "Username is already taken")
		}

		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user by username: %v", err)
			return errorx.Unknown
		}
	}

	if email != "" {
		user, err := d.userRepo.GetByEmail(ctx, email)
		if err == nil && user.ID != userID {
			return errorx.New(errorx.AlreadyExists, "Email is already taken")
		}

		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user by email: %v", err)
			return errorx.Unknown
		}
	}

	return nil
}

func (d *userDomain) Delete(
	ctx context.Context, req *model.DeleteUserRequest,
) (*model.DeleteUserResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can delete users")
	}

	if _, err := d.userRepo.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	collectionIDs, err := d.collectionRepo.GetIDsByOwnerID(ctx, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get owned collections: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	cleanups := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"vouches", d.vouchRepo.DeleteByUserID},
		{"task completions", d.userTaskRepo.DeleteByUserID},
		{"owned medals", d.userMedalRepo.DeleteByUserID},
		{"gift provenance", d.userMedalRepo.ClearGiftedBy},
		{"gifts", d.giftRepo.DeleteByUserID},
		{"tracked medals", d.trackedMedalRepo.DeleteByUserID},
		{"tracked collections", d.trackedCollectionRepo.DeleteByUserID},
		{"follows", d.followRepo.DeleteByUserID},
	}

	for _, cleanup := range cleanups {
		if err := cleanup.fn(ctx, req.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot delete %s of user: %v", cleanup.name, err)
			return nil, errorx.Unknown
		}
	}

	for _, id := range collectionIDs {
		if err := deleteCollection(ctx, d.collectionRepo, d.trackedCollectionRepo, id); err != nil {
			return nil, err
		}
	}

	if err := d.userRepo.DeleteByID(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete user: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteUserResponse{}, nil
}

func checkEmail(email string) error {
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || domain == "" {
		return errorx.New(errorx.BadRequest, "Invalid email")
	}

	return nil
}
