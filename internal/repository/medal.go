package repository

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MedalFilter struct {
	Q            string
	Status       entity.MedalStatus
	CategoryName string
	Offset       int
	Limit        int
}

type MedalRepository interface {
	Create(ctx context.Context, data *entity.Medal) error
	GetByID(ctx context.Context, id string) (*entity.Medal, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Medal, error)
	GetList(ctx context.Context, filter MedalFilter) ([]entity.Medal, error)
	UpdateByID(ctx context.Context, id string, data map[string]any) error
	DeleteByID(ctx context.Context, id string) error
}

type medalRepository struct{}

func NewMedalRepository() MedalRepository {
	return &medalRepository{}
}

func (r *medalRepository) Create(ctx context.Context, data *entity.Medal) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(data).Error
}

// GetByID returns the medal with its current tasks.
func (r *medalRepository) GetByID(ctx context.Context, id string) (*entity.Medal, error) {
	var result entity.Medal
	err := xcontext.DB(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Take(&result, "id=?", id).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *medalRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Medal, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []entity.Medal
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *medalRepository) GetList(ctx context.Context, filter MedalFilter) ([]entity.Medal, error) {
	tx := xcontext.DB(ctx).Model(&entity.Medal{})
	if filter.Q != "" {
		tx = tx.Where("LOWER(medals.name) LIKE ?", likePattern(filter.Q))
	}

	if filter.Status != "" {
		tx = tx.Where("medals.status=?", filter.Status)
	}

	if filter.CategoryName != "" {
		tx = tx.Where("EXISTS (?)", categoryNameSubquery(ctx, "medals.id", filter.CategoryName))
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Medal
	if err := tx.Order("medals.name ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *medalRepository) UpdateByID(ctx context.Context, id string, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	tx := xcontext.DB(ctx).Model(&entity.Medal{}).Where("id=?", id).Updates(data)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *medalRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Unscoped().Delete(&entity.Medal{}, "id=?", id)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
