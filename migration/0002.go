package migration

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
)

// migrate0002 removes tracking rows left behind by deleted collections and
// medals.
func migrate0002(ctx context.Context) error {
	db := xcontext.DB(ctx)

	collections := db.Model(&entity.Collection{}).Select("id")
	err := db.Where("collection_id NOT IN (?)", collections).Delete(&entity.TrackedCollection{}).Error
	if err != nil {
		return err
	}

	medals := db.Model(&entity.Medal{}).Select("id")
	return db.Where("medal_id NOT IN (?)", medals).Delete(&entity.TrackedMedal{}).Error
}
