package repository

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository interface {
	Create(ctx context.Context, data *entity.Task) error
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	GetByMedalID(ctx context.Context, medalID string) ([]entity.Task, error)
	CountByMedalIDs(ctx context.Context, medalIDs []string) (map[string]int64, error)
	UpdateByID(ctx context.Context, id string, data *entity.Task) error

	// DeleteByIDs soft deletes tasks so completion records keep their target.
	DeleteByIDs(ctx context.Context, ids []string) error

	// GetIDsByMedalID includes soft deleted tasks.
	GetIDsByMedalID(ctx context.Context, medalID string) ([]string, error)
	PurgeByMedalID(ctx context.Context, medalID string) error
}

type taskRepository struct{}

func NewTaskRepository() TaskRepository {
	return &taskRepository{}
}

func (r *taskRepository) Create(ctx context.Context, data *entity.Task) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(data).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	var result entity.Task
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *taskRepository) GetByMedalID(ctx context.Context, medalID string) ([]entity.Task, error) {
	var result []entity.Task
	err := xcontext.DB(ctx).
		Where("medal_id=?", medalID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *taskRepository) CountByMedalIDs(ctx context.Context, medalIDs []string) (map[string]int64, error) {
	result := map[string]int64{}
	if len(medalIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		MedalID string
		Total   int64
	}

	err := xcontext.DB(ctx).
		Model(&entity.Task{}).
		Select("medal_id, COUNT(*) AS total").
		Where("medal_id IN (?)", medalIDs).
		Group("medal_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range medalIDs {
		result[id] = 0
	}

	for _, row := range rows {
		result[row.MedalID] = row.Total
	}

	return result, nil
}

func (r *taskRepository) UpdateByID(ctx context.Context, id string, data *entity.Task) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Task{}).
		Where("id=?", id).
		Updates(map[string]any{
			"title":       data.Title,
			"description": data.Description,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *taskRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Delete(&entity.Task{}, "id IN (?)", ids).Error
}

func (r *taskRepository) GetIDsByMedalID(ctx context.Context, medalID string) ([]string, error) {
	var ids []string
	err := xcontext.DB(ctx).
		Unscoped().
		Model(&entity.Task{}).
		Where("medal_id=?", medalID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *taskRepository) PurgeByMedalID(ctx context.Context, medalID string) error {
	return xcontext.DB(ctx).Unscoped().Delete(&entity.Task{}, "medal_id=?", medalID).Error
}
