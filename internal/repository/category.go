package repository

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	Create(ctx context.Context, e *entity.Category) error
	GetList(ctx context.Context) ([]entity.Category, error)
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	UpdateByID(ctx context.Context, id string, data *entity.Category) error
	DeleteByID(ctx context.Context, id string) error

	// Medal links
	GetByMedalIDs(ctx context.Context, medalIDs []string) ([]entity.MedalCategory, error)
	LinkMedal(ctx context.Context, medalID string, categoryIDs []string) error
	UnlinkMedal(ctx context.Context, medalID string) error
}

type categoryRepository struct{}

func NewCategoryRepository() CategoryRepository {
	return &categoryRepository{}
}

func (r *categoryRepository) Create(ctx context.Context, e *entity.Category) error {
	if err := xcontext.DB(ctx).Create(e).Error; err != nil {
		return err
	}
	return nil
}

func (r *categoryRepository) GetList(ctx context.Context) ([]entity.Category, error) {
	var result []entity.Category
	if err := xcontext.DB(ctx).Order("name ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var result entity.Category
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *categoryRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []entity.Category
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	var result entity.Category
	if err := xcontext.DB(ctx).Take(&result, "name=?", name).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *categoryRepository) UpdateByID(ctx context.Context, id string, data *entity.Category) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Category{}).
		Where("id=?", id).
		Updates(map[string]any{"name": data.Name})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *categoryRepository) DeleteByID(ctx context.Context, id string) error {
	if err := xcontext.DB(ctx).Delete(&entity.MedalCategory{}, "category_id=?", id).Error; err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Unscoped().Delete(&entity.Category{}, "id=?", id)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *categoryRepository) GetByMedalIDs(ctx context.Context, medalIDs []string) ([]entity.MedalCategory, error) {
	if len(medalIDs) == 0 {
		return nil, nil
	}

	var result []entity.MedalCategory
	err := xcontext.DB(ctx).
		Preload("Category").
		Where("medal_id IN (?)", medalIDs).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *categoryRepository) LinkMedal(ctx context.Context, medalID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	links := make([]entity.MedalCategory, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		links = append(links, entity.MedalCategory{MedalID: medalID, CategoryID: id})
	}

	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Medal", "Category").
		Create(&links).Error
}

func (r *categoryRepository) UnlinkMedal(ctx context.Context, medalID string) error {
	return xcontext.DB(ctx).Delete(&entity.MedalCategory{}, "medal_id=?", medalID).Error
}
