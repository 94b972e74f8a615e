package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

type GlobalRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewGlobalRoleVerifier(userRepo repository.UserRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRepo: userRepo}
}

func (verifier *GlobalRoleVerifier) Verify(ctx context.Context, requiredRoles ...entity.GlobalRole) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return errors.New("user is not authenticated")
	}

	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if !slices.Contains(requiredRoles, u.Role) {
		return errors.New("user role does not have permission")
	}

	return nil
}

// IsSelfOrAdmin reports whether the request user is userID or a global admin.
func (verifier *GlobalRoleVerifier) IsSelfOrAdmin(ctx context.Context, userID string) bool {
	if xcontext.RequestUserID(ctx) == userID {
		return true
	}

	return verifier.Verify(ctx, entity.GlobalAdminRoles...) == nil
}
