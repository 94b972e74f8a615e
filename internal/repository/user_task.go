package repository

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserTaskRepository interface {
	// Upsert marks the task as completed. Completing a task twice keeps the
	// first completion time.
	Upsert(ctx context.Context, data *entity.UserTask) error
	Delete(ctx context.Context, userID, taskID string) error

	// CountByMedalIDs counts the completed tasks per medal in one query. Tasks
	// no longer belonging to a medal are excluded. Every requested medal is
	// present in the result, zero when nothing is completed.
	CountByMedalIDs(ctx context.Context, userID string, medalIDs []string) (map[string]int64, error)
	GetByMedalID(ctx context.Context, userID, medalID string) ([]entity.UserTask, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByTaskIDs(ctx context.Context, taskIDs []string) error
}

type userTaskRepository struct{}

func NewUserTaskRepository() UserTaskRepository {
	return &userTaskRepository{}
}

func (r *userTaskRepository) Upsert(ctx context.Context, data *entity.UserTask) error {
	return xcontext.DB(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(data).Error
}

func (r *userTaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	tx := xcontext.DB(ctx).Delete(&entity.UserTask{}, "user_id=? AND task_id=?", userID, taskID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userTaskRepository) CountByMedalIDs(
	ctx context.Context, userID string, medalIDs []string,
) (map[string]int64, error) {
	result := map[string]int64{}
	if len(medalIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		MedalID   string
		Completed int64
	}

	err := xcontext.DB(ctx).
		Model(&entity.UserTask{}).
		Select("tasks.medal_id AS medal_id, COUNT(*) AS completed").
		Joins("JOIN tasks ON tasks.id=user_tasks.task_id").
		Where("user_tasks.user_id=?", userID).
		Where("tasks.medal_id IN (?)", medalIDs).
		Where("tasks.deleted_at IS NULL").
		Group("tasks.medal_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range medalIDs {
		result[id] = 0
	}

	for _, row := range rows {
		result[row.MedalID] = row.Completed
	}

	return result, nil
}

func (r *userTaskRepository) GetByMedalID(ctx context.Context, userID, medalID string) ([]entity.UserTask, error) {
	var result []entity.UserTask
	err := xcontext.DB(ctx).
		Joins("JOIN tasks ON tasks.id=user_tasks.task_id").
		Where("user_tasks.user_id=?", userID).
		Where("tasks.medal_id=?", medalID).
		Where("tasks.deleted_at IS NULL").
		Order("user_tasks.completed_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userTaskRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).Delete(&entity.UserTask{}, "user_id=?", userID).Error
}

func (r *userTaskRepository) DeleteByTaskIDs(ctx context.Context, taskIDs []string) error {
	if len(taskIDs) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Delete(&entity.UserTask{}, "task_id IN (?)", taskIDs).Error
}
