package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/medalboard/backend/internal/common"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type CategoryDomain interface {
	Create(context.Context, *model.CreateCategoryRequest) (*model.CreateCategoryResponse, error)
	GetList(context.Context, *model.GetCategoriesRequest) (*model.GetCategoriesResponse, error)
	UpdateByID(context.Context, *model.UpdateCategoryRequest) (*model.UpdateCategoryResponse, error)
	DeleteByID(context.Context, *model.DeleteCategoryRequest) (*model.DeleteCategoryResponse, error)
}

type categoryDomain struct {
	categoryRepo       repository.CategoryRepository
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewCategoryDomain(
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
) *categoryDomain {
	return &categoryDomain{
		categoryRepo:       categoryRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *categoryDomain) Create(
	ctx context.Context, req *model.CreateCategoryRequest,
) (*model.CreateCategoryResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can create category")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	category := &entity.Category{
		Base: entity.Base{ID: uuid.NewString()},
		Name: name,
	}

	if err := d.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorx.New(errorx.AlreadyExists, "Category %s already exists", name)
		}

		xcontext.Logger(ctx).Errorf("Cannot create category: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateCategoryResponse{ID: category.ID}, nil
}

func (d *categoryDomain) GetList(
	ctx context.Context, req *model.GetCategoriesRequest,
) (*model.GetCategoriesResponse, error) {
	categories, err := d.categoryRepo.GetList(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get category list: %v", err)
		return nil, errorx.Unknown
	}

	clientCategories := []model.Category{}
	for i := range categories {
		clientCategories = append(clientCategories, convertCategory(&categories[i]))
	}

	return &model.GetCategoriesResponse{Categories: clientCategories}, nil
}

func (d *categoryDomain) UpdateByID(
	ctx context.Context, req *model.UpdateCategoryRequest,
) (*model.UpdateCategoryResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can update category")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	if err := d.categoryRepo.UpdateByID(ctx, req.ID, &entity.Category{Name: name}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found category")
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorx.New(errorx.AlreadyExists, "Category %s already exists", name)
		}

		xcontext.Logger(ctx).Errorf("Cannot update category: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateCategoryResponse{}, nil
}

func (d *categoryDomain) DeleteByID(
	ctx context.Context, req *model.DeleteCategoryRequest,
) (*model.DeleteCategoryResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can delete category")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.categoryRepo.DeleteByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found category")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete category: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteCategoryResponse{}, nil
}
