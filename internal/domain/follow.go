package domain

import (
	"context"
	"errors"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/pubsub"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type FollowDomain interface {
	Follow(context.Context, *model.FollowRequest) (*model.FollowResponse, error)
	Unfollow(context.Context, *model.UnfollowRequest) (*model.UnfollowResponse, error)
	IsFollowing(context.Context, *model.IsFollowingRequest) (*model.IsFollowingResponse, error)
	GetFollowers(context.Context, *model.GetFollowersRequest) (*model.GetFollowersResponse, error)
	GetFollowing(context.Context, *model.GetFollowingRequest) (*model.GetFollowingResponse, error)
}

type followDomain struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	publisher  pubsub.Publisher
}

func NewFollowDomain(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	publisher pubsub.Publisher,
) *followDomain {
	return &followDomain{
		followRepo: followRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

func (d *followDomain) Follow(
	ctx context.Context, req *model.FollowRequest,
) (*model.FollowResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)
	if req.UserID == requestUserID {
		return nil, errorx.New(errorx.SelfFollow, "Cannot follow yourself")
	}

	if _, err := d.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	following, err := d.followRepo.Exists(ctx, requestUserID, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check follow: %v", err)
		return nil, errorx.Unknown
	}

	if following {
		return nil, errorx.New(errorx.AlreadyFollowing, "User is already followed")
	}

	err = d.followRepo.Create(ctx, &entity.Follow{
		FollowerID:  requestUserID,
		FollowingID: req.UserID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorx.New(errorx.AlreadyFollowing, "User is already followed")
		}

		xcontext.Logger(ctx).Errorf("Cannot create follow: %v", err)
		return nil, errorx.Unknown
	}

	publishEvent(ctx, d.publisher, model.UserFollowedTopic, req.UserID, &model.FollowEvent{
		FollowerID:  requestUserID,
		FollowingID: req.UserID,
	})

	return &model.FollowResponse{}, nil
}

func (d *followDomain) Unfollow(
	ctx context.Context, req *model.UnfollowRequest,
) (*model.UnfollowResponse, error) {
	if err := d.followRepo.Delete(ctx, xcontext.RequestUserID(ctx), req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFollowing, "User is not followed")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete follow: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UnfollowResponse{}, nil
}

func (d *followDomain) IsFollowing(
	ctx context.Context, req *model.IsFollowingRequest,
) (*model.IsFollowingResponse, error) {
	followerID := req.FollowerID
	if followerID == "" {
		followerID = xcontext.RequestUserID(ctx)
	}

	following, err := d.followRepo.Exists(ctx, followerID, req.FollowingID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check follow: %v", err)
		return nil, errorx.Unknown
	}

	return &model.IsFollowingResponse{Following: following}, nil
}

func (d *followDomain) GetFollowers(
	ctx context.Context, req *model.GetFollowersRequest,
) (*model.GetFollowersResponse, error) {
	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	// One extra row tells whether a next page exists.
	follows, err := d.followRepo.GetFollowers(ctx, req.UserID, req.Cursor, limit+1)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get followers: %v", err)
		return nil, errorx.Unknown
	}

	total, err := d.followRepo.CountFollowers(ctx, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count followers: %v", err)
		return nil, errorx.Unknown
	}

	users, nextCursor := followPage(follows, limit, func(f *entity.Follow) *entity.User { return &f.Follower })
	return &model.GetFollowersResponse{Users: users, NextCursor: nextCursor, Total: total}, nil
}

func (d *followDomain) GetFollowing(
	ctx context.Context, req *model.GetFollowingRequest,
) (*model.GetFollowingResponse, error) {
	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	follows, err := d.followRepo.GetFollowing(ctx, req.UserID, req.Cursor, limit+1)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get following: %v", err)
		return nil, errorx.Unknown
	}

	total, err := d.followRepo.CountFollowing(ctx, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count following: %v", err)
		return nil, errorx.Unknown
	}

	users, nextCursor := followPage(follows, limit, func(f *entity.Follow) *entity.User { return &f.Following })
	return &model.GetFollowingResponse{Users: users, NextCursor: nextCursor, Total: total}, nil
}

// followPage trims the lookahead row. The cursor is the id of the last user
// of a full page.
func followPage(
	follows []entity.Follow, limit int, related func(*entity.Follow) *entity.User,
) ([]model.FollowUser, string) {
	nextCursor := ""
	if len(follows) > limit {
		follows = follows[:limit]
		nextCursor = related(&follows[limit-1]).ID
	}

	users := []model.FollowUser{}
	for i := range follows {
		users = append(users, model.FollowUser{
			User:       convertShortUser(related(&follows[i])),
			FollowedAt: follows[i].CreatedAt.Format(model.DefaultTimeLayout),
		})
	}

	return users, nextCursor
}
