package middleware

import (
	"context"

	"github.com/medalboard/backend/internal/common"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/router"
)

type OnlyAdmin struct {
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewOnlyAdmin(userRepo repository.UserRepository) *OnlyAdmin {
	return &OnlyAdmin{
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (a *OnlyAdmin) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if err := a.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
			return nil, errorx.New(errorx.PermissionDenied, "Only admin can access this api")
		}

		return nil, nil
	}
}
