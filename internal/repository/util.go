package repository

import (
	"context"
	"strings"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// likePattern builds a case-insensitive substring pattern. It must be compared
// against a LOWER() column.
func likePattern(q string) string {
	return "%" + strings.ToLower(q) + "%"
}

// categoryNameSubquery matches the medal referenced by medalColumn when it is
// linked to the category named name, ignoring case.
func categoryNameSubquery(ctx context.Context, medalColumn, name string) *gorm.DB {
	return xcontext.DB(ctx).
		Model(&entity.MedalCategory{}).
		Select("1").
		Joins("JOIN categories ON categories.id=medal_categories.category_id").
		Where("medal_categories.medal_id=" + medalColumn).
		Where("LOWER(categories.name)=?", strings.ToLower(name))
}
