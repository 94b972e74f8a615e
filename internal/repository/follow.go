package repository

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	Create(ctx context.Context, data *entity.Follow) error
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)

	// GetFollowers returns up to limit follow edges pointing to userID, newest
	// first, starting after the edge of the follower cursor. An empty cursor
	// starts from the newest edge.
	GetFollowers(ctx context.Context, userID, cursor string, limit int) ([]entity.Follow, error)

	// GetFollowing is the same as GetFollowers for the edges starting from
	// userID. The cursor is a followed user id.
	GetFollowing(ctx context.Context, userID, cursor string, limit int) ([]entity.Follow, error)

	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type followRepository struct{}

func NewFollowRepository() FollowRepository {
	return &followRepository{}
}

func (r *followRepository) Create(ctx context.Context, data *entity.Follow) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(data).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) error {
	tx := xcontext.DB(ctx).
		Delete(&entity.Follow{}, "follower_id=? AND following_id=?", followerID, followingID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Follow{}).
		Where("follower_id=? AND following_id=?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *followRepository) GetFollowers(
	ctx context.Context, userID, cursor string, limit int,
) ([]entity.Follow, error) {
	tx := xcontext.DB(ctx).
		Preload("Follower").
		Where("following_id=?", userID)

	if cursor != "" {
		anchor := xcontext.DB(ctx).
			Model(&entity.Follow{}).
			Select("created_at").
			Where("follower_id=? AND following_id=?", cursor, userID)

		tx = tx.Where(
			"created_at < (?) OR (created_at = (?) AND follower_id < ?)",
			anchor, anchor, cursor,
		)
	}

	var result []entity.Follow
	err := tx.
		Order("created_at DESC, follower_id DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *followRepository) GetFollowing(
	ctx context.Context, userID, cursor string, limit int,
) ([]entity.Follow, error) {
	tx := xcontext.DB(ctx).
		Preload("Following").
		Where("follower_id=?", userID)

	if cursor != "" {
		anchor := xcontext.DB(ctx).
			Model(&entity.Follow{}).
			Select("created_at").
			Where("follower_id=? AND following_id=?", userID, cursor)

		tx = tx.Where(
			"created_at < (?) OR (created_at = (?) AND following_id < ?)",
			anchor, anchor, cursor,
		)
	}

	var result []entity.Follow
	err := tx.
		Order("created_at DESC, following_id DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Follow{}).
		Where("following_id=?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Follow{}).
		Where("follower_id=?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *followRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).
		Delete(&entity.Follow{}, "follower_id=? OR following_id=?", userID, userID).Error
}
