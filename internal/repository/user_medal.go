package repository

import (
	"context"
	"time"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserMedalFilter struct {
	UserID       string
	Q            string
	CategoryName string
	Offset       int
	Limit        int
}

type MedalOwnerCount struct {
	MedalID string
	Owners  int64
}

type UserMedalRepository interface {
	Create(ctx context.Context, data *entity.UserMedal) error

	// CreateIfNotExists inserts the row unless the user already owns the medal.
	// It reports whether a row was inserted.
	CreateIfNotExists(ctx context.Context, data *entity.UserMedal) (bool, error)

	Get(ctx context.Context, userID, medalID string) (*entity.UserMedal, error)
	Exists(ctx context.Context, userID, medalID string) (bool, error)

	// NextSortOrder returns the position after the user's last medal. It equals
	// the number of owned medals while the order is dense.
	NextSortOrder(ctx context.Context, userID string) (int, error)
	GetList(ctx context.Context, filter UserMedalFilter) ([]entity.UserMedal, error)
	Count(ctx context.Context, filter UserMedalFilter) (int64, error)
	UpdateSortOrder(ctx context.Context, userID, medalID string, sortOrder int) error
	UpdateEarnedAt(ctx context.Context, userID, medalID string, earnedAt time.Time) error
	Delete(ctx context.Context, userID, medalID string) error

	// GetForUpdate locks the ownership row until the surrounding transaction
	// ends. Writers of vouches and the ownership itself serialize on it.
	GetForUpdate(ctx context.Context, userID, medalID string) (*entity.UserMedal, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByMedalID(ctx context.Context, medalID string) error
	ClearGiftedBy(ctx context.Context, giftedByID string) error
	CountByMedalID(ctx context.Context, medalID string) (int64, error)

	// CountOwners returns the number of owners per medal, most owned first. A
	// non-positive limit returns every owned medal.
	CountOwners(ctx context.Context, limit int) ([]MedalOwnerCount, error)
}

type userMedalRepository struct{}

func NewUserMedalRepository() UserMedalRepository {
	return &userMedalRepository{}
}

func (r *userMedalRepository) Create(ctx context.Context, data *entity.UserMedal) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(data).Error
}

func (r *userMedalRepository) CreateIfNotExists(ctx context.Context, data *entity.UserMedal) (bool, error) {
	tx := xcontext.DB(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *userMedalRepository) Get(ctx context.Context, userID, medalID string) (*entity.UserMedal, error) {
	var result entity.UserMedal
	err := xcontext.DB(ctx).
		Preload("Medal").
		Take(&result, "user_id=? AND medal_id=?", userID, medalID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userMedalRepository) GetForUpdate(ctx context.Context, userID, medalID string) (*entity.UserMedal, error) {
	var result entity.UserMedal
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&result, "user_id=? AND medal_id=?", userID, medalID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userMedalRepository) Exists(ctx context.Context, userID, medalID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.UserMedal{}).
		Where("user_id=? AND medal_id=?", userID, medalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *userMedalRepository) NextSortOrder(ctx context.Context, userID string) (int, error) {
	var next int64
	err := xcontext.DB(ctx).
		Model(&entity.UserMedal{}).
		Select("COALESCE(MAX(sort_order), -1) + 1").
		Where("user_id=?", userID).
		Scan(&next).Error
	if err != nil {
		return 0, err
	}

	return int(next), nil
}

func (r *userMedalRepository) filter(ctx context.Context, filter UserMedalFilter) *gorm.DB {
	tx := xcontext.DB(ctx).
		Model(&entity.UserMedal{}).
		Joins("JOIN medals ON medals.id=user_medals.medal_id").
		Where("user_medals.user_id=?", filter.UserID)

	if filter.Q != "" {
		tx = tx.Where("LOWER(medals.name) LIKE ?", likePattern(filter.Q))
	}

	if filter.CategoryName != "" {
		tx = tx.Where("EXISTS (?)", categoryNameSubquery(ctx, "user_medals.medal_id", filter.CategoryName))
	}

	return tx
}

func (r *userMedalRepository) GetList(ctx context.Context, filter UserMedalFilter) ([]entity.UserMedal, error) {
	var result []entity.UserMedal
	err := r.filter(ctx, filter).
		Preload("Medal").
		Order("user_medals.sort_order ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userMedalRepository) Count(ctx context.Context, filter UserMedalFilter) (int64, error) {
	var count int64
	if err := r.filter(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// UpdateSortOrder does not report a missing row, some drivers count only
// changed rows.
func (r *userMedalRepository) UpdateSortOrder(ctx context.Context, userID, medalID string, sortOrder int) error {
	return xcontext.DB(ctx).
		Model(&entity.UserMedal{}).
		Where("user_id=? AND medal_id=?", userID, medalID).
		Update("sort_order", sortOrder).Error
}

func (r *userMedalRepository) UpdateEarnedAt(ctx context.Context, userID, medalID string, earnedAt time.Time) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserMedal{}).
		Where("user_id=? AND medal_id=?", userID, medalID).
		Update("earned_at", earnedAt)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userMedalRepository) Delete(ctx context.Context, userID, medalID string) error {
	tx := xcontext.DB(ctx).Delete(&entity.UserMedal{}, "user_id=? AND medal_id=?", userID, medalID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userMedalRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).Delete(&entity.UserMedal{}, "user_id=?", userID).Error
}

func (r *userMedalRepository) DeleteByMedalID(ctx context.Context, medalID string) error {
	return xcontext.DB(ctx).Delete(&entity.UserMedal{}, "medal_id=?", medalID).Error
}

// ClearGiftedBy drops the provenance pointing to a user that is being deleted.
// The ownership itself is kept.
func (r *userMedalRepository) ClearGiftedBy(ctx context.Context, giftedByID string) error {
	return xcontext.DB(ctx).
		Model(&entity.UserMedal{}).
		Where("gifted_by_id=?", giftedByID).
		Update("gifted_by_id", nil).Error
}

func (r *userMedalRepository) CountByMedalID(ctx context.Context, medalID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.UserMedal{}).
		Where("medal_id=?", medalID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *userMedalRepository) CountOwners(ctx context.Context, limit int) ([]MedalOwnerCount, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.UserMedal{}).
		Select("medal_id, COUNT(*) AS owners").
		Group("medal_id").
		Order("owners DESC, medal_id ASC")

	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var result []MedalOwnerCount
	if err := tx.Scan(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
