package domain

import (
	"context"
	"errors"
	"time"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserTaskDomain interface {
	Complete(context.Context, *model.CompleteTaskRequest) (*model.CompleteTaskResponse, error)
	Uncomplete(context.Context, *model.UncompleteTaskRequest) (*model.UncompleteTaskResponse, error)
	GetCompletedCounts(context.Context, *model.GetCompletedCountsRequest) (*model.GetCompletedCountsResponse, error)
	GetCompletedTasks(context.Context, *model.GetCompletedTasksRequest) (*model.GetCompletedTasksResponse, error)
}

type userTaskDomain struct {
	taskRepo     repository.TaskRepository
	userTaskRepo repository.UserTaskRepository
}

func NewUserTaskDomain(
	taskRepo repository.TaskRepository,
	userTaskRepo repository.UserTaskRepository,
) *userTaskDomain {
	return &userTaskDomain{
		taskRepo:     taskRepo,
		userTaskRepo: userTaskRepo,
	}
}

func (d *userTaskDomain) Complete(
	ctx context.Context, req *model.CompleteTaskRequest,
) (*model.CompleteTaskResponse, error) {
	if _, err := d.taskRepo.GetByID(ctx, req.TaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found task")
		}

		xcontext.Logger(ctx).Errorf("Cannot get task: %v", err)
		return nil, errorx.Unknown
	}

	err := d.userTaskRepo.Upsert(ctx, &entity.UserTask{
		UserID:      xcontext.RequestUserID(ctx),
		TaskID:      req.TaskID,
		CompletedAt: time.Now(),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot complete task: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CompleteTaskResponse{}, nil
}

func (d *userTaskDomain) Uncomplete(
	ctx context.Context, req *model.UncompleteTaskRequest,
) (*model.UncompleteTaskResponse, error) {
	if err := d.userTaskRepo.Delete(ctx, xcontext.RequestUserID(ctx), req.TaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotCompleted, "Task is not completed")
		}

		xcontext.Logger(ctx).Errorf("Cannot uncomplete task: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UncompleteTaskResponse{}, nil
}

func (d *userTaskDomain) GetCompletedCounts(
	ctx context.Context, req *model.GetCompletedCountsRequest,
) (*model.GetCompletedCountsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	if len(req.MedalIDs) > xcontext.Configs(ctx).ApiServer.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of medals (%d)",
			xcontext.Configs(ctx).ApiServer.MaxLimit)
	}

	completed, err := d.userTaskRepo.CountByMedalIDs(ctx, userID, req.MedalIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count completed tasks: %v", err)
		return nil, errorx.Unknown
	}

	total, err := d.taskRepo.CountByMedalIDs(ctx, req.MedalIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count tasks: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetCompletedCountsResponse{Completed: completed, Total: total}, nil
}

func (d *userTaskDomain) GetCompletedTasks(
	ctx context.Context, req *model.GetCompletedTasksRequest,
) (*model.GetCompletedTasksResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	userTasks, err := d.userTaskRepo.GetByMedalID(ctx, userID, req.MedalID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get completed tasks: %v", err)
		return nil, errorx.Unknown
	}

	tasks := []model.CompletedTask{}
	for _, ut := range userTasks {
		tasks = append(tasks, model.CompletedTask{
			TaskID:      ut.TaskID,
			CompletedAt: ut.CompletedAt.Format(model.DefaultTimeLayout),
		})
	}

	return &model.GetCompletedTasksResponse{Tasks: tasks}, nil
}
