package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GiftFilter struct {
	GiftedToID string
	GiftedByID string
	Status     entity.GiftStatus
}

type GiftAuditFilter struct {
	From     time.Time
	To       time.Time
	Username string
	Asc      bool
}

type GiftedMedalRepository interface {
	Create(ctx context.Context, data *entity.GiftedMedal) error
	GetByID(ctx context.Context, id string) (*entity.GiftedMedal, error)
	GetPending(ctx context.Context, giftedToID, medalID string) (*entity.GiftedMedal, error)
	GetList(ctx context.Context, filter GiftFilter) ([]entity.GiftedMedal, error)
	Audit(ctx context.Context, filter GiftAuditFilter) ([]entity.GiftedMedal, error)

	// Resolve moves a PENDING gift to a terminal status. It returns
	// gorm.ErrRecordNotFound if the gift is not pending anymore.
	Resolve(ctx context.Context, id string, status entity.GiftStatus, acceptedAt sql.NullTime) error

	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByMedalID(ctx context.Context, medalID string) error
}

type giftedMedalRepository struct{}

func NewGiftedMedalRepository() GiftedMedalRepository {
	return &giftedMedalRepository{}
}

func (r *giftedMedalRepository) Create(ctx context.Context, data *entity.GiftedMedal) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(data).Error
}

func (r *giftedMedalRepository) GetByID(ctx context.Context, id string) (*entity.GiftedMedal, error) {
	var result entity.GiftedMedal
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *giftedMedalRepository) GetPending(ctx context.Context, giftedToID, medalID string) (*entity.GiftedMedal, error) {
	var result entity.GiftedMedal
	err := xcontext.DB(ctx).
		Take(&result, "gifted_to_id=? AND medal_id=? AND status=?", giftedToID, medalID, entity.GiftPending).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *giftedMedalRepository) withDetails(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Medal").Preload("GiftedBy").Preload("GiftedTo")
}

func (r *giftedMedalRepository) GetList(ctx context.Context, filter GiftFilter) ([]entity.GiftedMedal, error) {
	tx := r.withDetails(xcontext.DB(ctx))
	if filter.GiftedToID != "" {
		tx = tx.Where("gifted_to_id=?", filter.GiftedToID)
	}

	if filter.GiftedByID != "" {
		tx = tx.Where("gifted_by_id=?", filter.GiftedByID)
	}

	if filter.Status != "" {
		tx = tx.Where("status=?", filter.Status)
	}

	var result []entity.GiftedMedal
	if err := tx.Order("created_at DESC, id DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *giftedMedalRepository) Audit(ctx context.Context, filter GiftAuditFilter) ([]entity.GiftedMedal, error) {
	tx := r.withDetails(xcontext.DB(ctx))
	if !filter.From.IsZero() {
		tx = tx.Where("gifted_medals.created_at >= ?", filter.From)
	}

	if !filter.To.IsZero() {
		tx = tx.Where("gifted_medals.created_at <= ?", filter.To)
	}

	if filter.Username != "" {
		users := xcontext.DB(ctx).
			Model(&entity.User{}).
			Select("id").
			Where("LOWER(username) LIKE ?", likePattern(filter.Username))
		tx = tx.Where("gifted_by_id IN (?) OR gifted_to_id IN (?)", users, users)
	}

	order := "gifted_medals.created_at DESC, gifted_medals.id DESC"
	if filter.Asc {
		order = "gifted_medals.created_at ASC, gifted_medals.id ASC"
	}

	var result []entity.GiftedMedal
	if err := tx.Order(order).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *giftedMedalRepository) Resolve(
	ctx context.Context, id string, status entity.GiftStatus, acceptedAt sql.NullTime,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.GiftedMedal{}).
		Where("id=? AND status=?", id, entity.GiftPending).
		Updates(map[string]any{
			"status":      status,
			"pending_key": nil,
			"accepted_at": acceptedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *giftedMedalRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).
		Delete(&entity.GiftedMedal{}, "gifted_by_id=? OR gifted_to_id=?", userID, userID).Error
}

func (r *giftedMedalRepository) DeleteByMedalID(ctx context.Context, medalID string) error {
	return xcontext.DB(ctx).Delete(&entity.GiftedMedal{}, "medal_id=?", medalID).Error
}
