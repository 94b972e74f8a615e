package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/medalboard/backend/internal/common"
	"github.com/medalboard/backend/internal/domain/statistic"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/enum"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MedalDomain interface {
	Create(context.Context, *model.CreateMedalRequest) (*model.CreateMedalResponse, error)
	Update(context.Context, *model.UpdateMedalRequest) (*model.UpdateMedalResponse, error)
	Delete(context.Context, *model.DeleteMedalRequest) (*model.DeleteMedalResponse, error)
	Get(context.Context, *model.GetMedalRequest) (*model.GetMedalResponse, error)
	GetList(context.Context, *model.GetMedalsRequest) (*model.GetMedalsResponse, error)
}

type medalDomain struct {
	medalRepo          repository.MedalRepository
	taskRepo           repository.TaskRepository
	categoryRepo       repository.CategoryRepository
	userMedalRepo      repository.UserMedalRepository
	vouchRepo          repository.UserMedalVouchRepository
	userTaskRepo       repository.UserTaskRepository
	giftRepo           repository.GiftedMedalRepository
	trackedMedalRepo   repository.TrackedMedalRepository
	collectionRepo     repository.CollectionRepository
	popularity         statistic.Popularity
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewMedalDomain(
	medalRepo repository.MedalRepository,
	taskRepo repository.TaskRepository,
	categoryRepo repository.CategoryRepository,
	userMedalRepo repository.UserMedalRepository,
	vouchRepo repository.UserMedalVouchRepository,
	userTaskRepo repository.UserTaskRepository,
	giftRepo repository.GiftedMedalRepository,
	trackedMedalRepo repository.TrackedMedalRepository,
	collectionRepo repository.CollectionRepository,
	userRepo repository.UserRepository,
	popularity statistic.Popularity,
) *medalDomain {
	return &medalDomain{
		medalRepo:          medalRepo,
		taskRepo:           taskRepo,
		categoryRepo:       categoryRepo,
		userMedalRepo:      userMedalRepo,
		vouchRepo:          vouchRepo,
		userTaskRepo:       userTaskRepo,
		giftRepo:           giftRepo,
		trackedMedalRepo:   trackedMedalRepo,
		collectionRepo:     collectionRepo,
		popularity:         popularity,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *medalDomain) Create(
	ctx context.Context, req *model.CreateMedalRequest,
) (*model.CreateMedalResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can create medal")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	status := entity.MedalEarnable
	if req.Status != "" {
		var err error
		status, err = enum.ToEnum[entity.MedalStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid medal status")
		}
	}

	if !status.AllowTasks() && len(req.Tasks) > 0 {
		return nil, errorx.New(errorx.TaskNotAllowed, "Medal with status %s cannot have tasks", status)
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	if err := d.checkCategories(ctx, req.CategoryIDs); err != nil {
		return nil, err
	}

	medal := &entity.Medal{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        name,
		Description: req.Description,
		Image:       req.Image,
		Status:      status,
		Price:       price,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.medalRepo.Create(ctx, medal); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create medal: %v", err)
		return nil, errorx.Unknown
	}

	for _, input := range req.Tasks {
		if err := d.createTask(ctx, medal.ID, input); err != nil {
			return nil, err
		}
	}

	if err := d.categoryRepo.LinkMedal(ctx, medal.ID, req.CategoryIDs); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot link categories to medal: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateMedalResponse{ID: medal.ID}, nil
}

func (d *medalDomain) Update(
	ctx context.Context, req *model.UpdateMedalRequest,
) (*model.UpdateMedalResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can update medal")
	}

	medal, err := d.medalRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot get medal: %v", err)
		return nil, errorx.Unknown
	}

	changes := map[string]any{}
	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
		}
		changes["name"] = name
	}

	if req.Description != "" {
		changes["description"] = req.Description
	}

	if req.Image != "" {
		changes["image"] = req.Image
	}

	status := medal.Status
	if req.Status != "" {
		status, err = enum.ToEnum[entity.MedalStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid medal status")
		}
		changes["status"] = status
	}

	if req.Price != "" {
		price, err := parsePrice(req.Price)
		if err != nil {
			return nil, err
		}
		changes["price"] = price
	}

	taskCount := len(medal.Tasks)
	if req.Tasks != nil {
		taskCount = len(req.Tasks)
	}

	if !status.AllowTasks() && taskCount > 0 {
		return nil, errorx.New(errorx.TaskNotAllowed, "Medal with status %s cannot have tasks", status)
	}

	if req.CategoryIDs != nil {
		if err := d.checkCategories(ctx, req.CategoryIDs); err != nil {
			return nil, err
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.medalRepo.UpdateByID(ctx, medal.ID, changes); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update medal: %v", err)
		return nil, errorx.Unknown
	}

	if req.Tasks != nil {
		if err := d.replaceTasks(ctx, medal, req.Tasks); err != nil {
			return nil, err
		}
	}

	if req.CategoryIDs != nil {
		if err := d.categoryRepo.UnlinkMedal(ctx, medal.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot unlink categories of medal: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.categoryRepo.LinkMedal(ctx, medal.ID, req.CategoryIDs); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot link categories to medal: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateMedalResponse{}, nil
}

// replaceTasks updates tasks carrying an id, creates the others and soft
// deletes current tasks missing from inputs.
func (d *medalDomain) replaceTasks(ctx context.Context, medal *entity.Medal, inputs []model.TaskInput) error {
	current := map[string]bool{}
	for _, task := range medal.Tasks {
		current[task.ID] = true
	}

	kept := map[string]bool{}
	for _, input := range inputs {
		if input.ID == "" {
			if err := d.createTask(ctx, medal.ID, input); err != nil {
				return err
			}
			continue
		}

		if !current[input.ID] {
			return errorx.New(errorx.BadRequest, "Task %s does not belong to the medal", input.ID)
		}

		if strings.TrimSpace(input.Title) == "" {
			return errorx.New(errorx.BadRequest, "Not allow an empty task title")
		}

		kept[input.ID] = true
		err := d.taskRepo.UpdateByID(ctx, input.ID, &entity.Task{
			Title:       input.Title,
			Description: input.Description,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update task: %v", err)
			return errorx.Unknown
		}
	}

	removed := []string{}
	for id := range current {
		if !kept[id] {
			removed = append(removed, id)
		}
	}

	if err := d.taskRepo.DeleteByIDs(ctx, removed); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete tasks: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *medalDomain) createTask(ctx context.Context, medalID string, input model.TaskInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return errorx.New(errorx.BadRequest, "Not allow an empty task title")
	}

	task := &entity.Task{
		Base:        entity.Base{ID: uuid.NewString()},
		Title:       title,
		Description: input.Description,
		MedalID:     medalID,
	}

	if err := d.taskRepo.Create(ctx, task); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create task: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *medalDomain) checkCategories(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	categories, err := d.categoryRepo.GetByIDs(ctx, ids)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get categories: %v", err)
		return errorx.Unknown
	}

	found := map[string]bool{}
	for _, c := range categories {
		found[c.ID] = true
	}

	for _, id := range ids {
		if !found[id] {
			return errorx.New(errorx.NotFound, "Not found category %s", id)
		}
	}

	return nil
}

func (d *medalDomain) Delete(
	ctx context.Context, req *model.DeleteMedalRequest,
) (*model.DeleteMedalResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can delete medal")
	}

	if _, err := d.medalRepo.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot get medal: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	taskIDs, err := d.taskRepo.GetIDsByMedalID(ctx, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tasks of medal: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.userTaskRepo.DeleteByTaskIDs(ctx, taskIDs); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete task completions: %v", err)
		return nil, errorx.Unknown
	}

	cleanups := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"vouches", d.vouchRepo.DeleteByMedalID},
		{"ownerships", d.userMedalRepo.DeleteByMedalID},
		{"gifts", d.giftRepo.DeleteByMedalID},
		{"tracked medals", d.trackedMedalRepo.DeleteByMedalID},
		{"collection memberships", d.collectionRepo.DeleteMedalsByMedalID},
		{"category links", d.categoryRepo.UnlinkMedal},
		{"tasks", d.taskRepo.PurgeByMedalID},
	}

	for _, cleanup := range cleanups {
		if err := cleanup.fn(ctx, req.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot delete %s of medal: %v", cleanup.name, err)
			return nil, errorx.Unknown
		}
	}

	if err := d.medalRepo.DeleteByID(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete medal: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.popularity.Remove(ctx, req.ID)

	return &model.DeleteMedalResponse{}, nil
}

func (d *medalDomain) Get(
	ctx context.Context, req *model.GetMedalRequest,
) (*model.GetMedalResponse, error) {
	medal, err := d.medalRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot get medal: %v", err)
		return nil, errorx.Unknown
	}

	categories, err := d.getCategories(ctx, []string{medal.ID})
	if err != nil {
		return nil, err
	}

	owners, err := d.userMedalRepo.CountByMedalID(ctx, medal.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count owners of medal: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMedalResponse{
		Medal:  convertMedal(medal, categories[medal.ID]),
		Owners: owners,
	}, nil
}

func (d *medalDomain) GetList(
	ctx context.Context, req *model.GetMedalsRequest,
) (*model.GetMedalsResponse, error) {
	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	if err := checkOffset(req.Offset); err != nil {
		return nil, err
	}

	filter := repository.MedalFilter{
		Q:            req.Q,
		CategoryName: req.CategoryName,
		Offset:       req.Offset,
		Limit:        limit,
	}

	if req.Status != "" {
		filter.Status, err = enum.ToEnum[entity.MedalStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid medal status")
		}
	}

	medals, err := d.medalRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get medal list: %v", err)
		return nil, errorx.Unknown
	}

	medalIDs := []string{}
	for _, m := range medals {
		medalIDs = append(medalIDs, m.ID)
	}

	categories, err := d.getCategories(ctx, medalIDs)
	if err != nil {
		return nil, err
	}

	clientMedals := []model.Medal{}
	for i := range medals {
		clientMedals = append(clientMedals, convertMedal(&medals[i], categories[medals[i].ID]))
	}

	return &model.GetMedalsResponse{Medals: clientMedals}, nil
}

func (d *medalDomain) getCategories(ctx context.Context, medalIDs []string) (map[string][]model.Category, error) {
	links, err := d.categoryRepo.GetByMedalIDs(ctx, medalIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get categories of medals: %v", err)
		return nil, errorx.Unknown
	}

	result := map[string][]model.Category{}
	for i := range links {
		result[links[i].MedalID] = append(result[links[i].MedalID], convertCategory(&links[i].Category))
	}

	return result, nil
}

func parsePrice(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}

	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, errorx.New(errorx.BadRequest, "Invalid price")
	}

	if price.IsNegative() {
		return decimal.NullDecimal{}, errorx.New(errorx.BadRequest, "Price must be non-negative")
	}

	return decimal.NewNullDecimal(price.Round(2)), nil
}
