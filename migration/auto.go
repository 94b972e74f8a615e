package migration

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
)

// When this migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Medal{},
		&entity.Task{},
		&entity.MedalCategory{},
		&entity.UserMedal{},
		&entity.UserMedalVouch{},
		&entity.UserTask{},
		&entity.GiftedMedal{},
		&entity.TrackedMedal{},
		&entity.Collection{},
		&entity.CollectionMedal{},
		&entity.TrackedCollection{},
		&entity.Follow{},
		&entity.Migration{},
	)
}
