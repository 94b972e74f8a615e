package repository

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserMedalVouchRepository interface {
	Create(ctx context.Context, data *entity.UserMedalVouch) error
	GetByID(ctx context.Context, id string) (*entity.UserMedalVouch, error)
	GetList(ctx context.Context, userID, medalID string, offset, limit int) ([]entity.UserMedalVouch, error)
	Count(ctx context.Context, userID, medalID string) (int64, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByOwnership(ctx context.Context, userID, medalID string) error

	// DeleteByUserID removes the vouches received and given by the user.
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByMedalID(ctx context.Context, medalID string) error
}

type userMedalVouchRepository struct{}

func NewUserMedalVouchRepository() UserMedalVouchRepository {
	return &userMedalVouchRepository{}
}

func (r *userMedalVouchRepository) Create(ctx context.Context, data *entity.UserMedalVouch) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(data).Error
}

func (r *userMedalVouchRepository) GetByID(ctx context.Context, id string) (*entity.UserMedalVouch, error) {
	var result entity.UserMedalVouch
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userMedalVouchRepository) GetList(
	ctx context.Context, userID, medalID string, offset, limit int,
) ([]entity.UserMedalVouch, error) {
	var result []entity.UserMedalVouch
	err := xcontext.DB(ctx).
		Preload("VouchedBy").
		Where("user_id=? AND medal_id=?", userID, medalID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userMedalVouchRepository) Count(ctx context.Context, userID, medalID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.UserMedalVouch{}).
		Where("user_id=? AND medal_id=?", userID, medalID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *userMedalVouchRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.UserMedalVouch{}, "id=?", id)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userMedalVouchRepository) DeleteByOwnership(ctx context.Context, userID, medalID string) error {
	return xcontext.DB(ctx).
		Delete(&entity.UserMedalVouch{}, "user_id=? AND medal_id=?", userID, medalID).Error
}

func (r *userMedalVouchRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).
		Delete(&entity.UserMedalVouch{}, "user_id=? OR vouched_by_id=?", userID, userID).Error
}

func (r *userMedalVouchRepository) DeleteByMedalID(ctx context.Context, medalID string) error {
	return xcontext.DB(ctx).Delete(&entity.UserMedalVouch{}, "medal_id=?", medalID).Error
}
