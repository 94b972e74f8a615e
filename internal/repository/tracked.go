package repository

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrackedMedalRepository interface {
	Upsert(ctx context.Context, data *entity.TrackedMedal) error
	Delete(ctx context.Context, userID, medalID string) error
	Exists(ctx context.Context, userID, medalID string) (bool, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.TrackedMedal, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByMedalID(ctx context.Context, medalID string) error
}

type trackedMedalRepository struct{}

func NewTrackedMedalRepository() TrackedMedalRepository {
	return &trackedMedalRepository{}
}

func (r *trackedMedalRepository) Upsert(ctx context.Context, data *entity.TrackedMedal) error {
	return xcontext.DB(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(data).Error
}

func (r *trackedMedalRepository) Delete(ctx context.Context, userID, medalID string) error {
	tx := xcontext.DB(ctx).Delete(&entity.TrackedMedal{}, "user_id=? AND medal_id=?", userID, medalID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *trackedMedalRepository) Exists(ctx context.Context, userID, medalID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.TrackedMedal{}).
		Where("user_id=? AND medal_id=?", userID, medalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *trackedMedalRepository) GetByUserID(ctx context.Context, userID string) ([]entity.TrackedMedal, error) {
	var result []entity.TrackedMedal
	err := xcontext.DB(ctx).
		Preload("Medal.Tasks").
		Where("user_id=?", userID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *trackedMedalRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).Delete(&entity.TrackedMedal{}, "user_id=?", userID).Error
}

func (r *trackedMedalRepository) DeleteByMedalID(ctx context.Context, medalID string) error {
	return xcontext.DB(ctx).Delete(&entity.TrackedMedal{}, "medal_id=?", medalID).Error
}

type TrackedCollectionRepository interface {
	Upsert(ctx context.Context, data *entity.TrackedCollection) error
	Delete(ctx context.Context, userID, collectionID string) error
	Exists(ctx context.Context, userID, collectionID string) (bool, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.TrackedCollection, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByCollectionID(ctx context.Context, collectionID string) error
}

type trackedCollectionRepository struct{}

func NewTrackedCollectionRepository() TrackedCollectionRepository {
	return &trackedCollectionRepository{}
}

func (r *trackedCollectionRepository) Upsert(ctx context.Context, data *entity.TrackedCollection) error {
	return xcontext.DB(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(data).Error
}

func (r *trackedCollectionRepository) Delete(ctx context.Context, userID, collectionID string) error {
	tx := xcontext.DB(ctx).
		Delete(&entity.TrackedCollection{}, "user_id=? AND collection_id=?", userID, collectionID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *trackedCollectionRepository) Exists(ctx context.Context, userID, collectionID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.TrackedCollection{}).
		Where("user_id=? AND collection_id=?", userID, collectionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *trackedCollectionRepository) GetByUserID(ctx context.Context, userID string) ([]entity.TrackedCollection, error) {
	var result []entity.TrackedCollection
	err := xcontext.DB(ctx).
		Preload("Collection.Owner").
		Where("user_id=?", userID).
		Order("started_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *trackedCollectionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).Delete(&entity.TrackedCollection{}, "user_id=?", userID).Error
}

func (r *trackedCollectionRepository) DeleteByCollectionID(ctx context.Context, collectionID string) error {
	return xcontext.DB(ctx).Delete(&entity.TrackedCollection{}, "collection_id=?", collectionID).Error
}
