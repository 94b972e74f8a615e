package repository

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CollectionRepository interface {
	Create(ctx context.Context, data *entity.Collection) error
	GetByID(ctx context.Context, id string) (*entity.Collection, error)
	GetList(ctx context.Context, ownerID string) ([]entity.Collection, error)
	UpdateByID(ctx context.Context, id string, data map[string]any) error
	DeleteByID(ctx context.Context, id string) error
	GetIDsByOwnerID(ctx context.Context, ownerID string) ([]string, error)

	// Membership
	GetMedals(ctx context.Context, collectionIDs []string) ([]entity.CollectionMedal, error)
	ReplaceMedals(ctx context.Context, collectionID string, medalIDs []string) error
	DeleteMedalsByCollectionID(ctx context.Context, collectionID string) error
	DeleteMedalsByMedalID(ctx context.Context, medalID string) error
}

type collectionRepository struct{}

func NewCollectionRepository() CollectionRepository {
	return &collectionRepository{}
}

func (r *collectionRepository) Create(ctx context.Context, data *entity.Collection) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(data).Error
}

func (r *collectionRepository) GetByID(ctx context.Context, id string) (*entity.Collection, error) {
	var result entity.Collection
	if err := xcontext.DB(ctx).Preload("Owner").Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetList returns every collection if ownerID is empty.
func (r *collectionRepository) GetList(ctx context.Context, ownerID string) ([]entity.Collection, error) {
	tx := xcontext.DB(ctx).Preload("Owner")
	if ownerID != "" {
		tx = tx.Where("owner_id=?", ownerID)
	}

	var result []entity.Collection
	if err := tx.Order("created_at DESC, id DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *collectionRepository) UpdateByID(ctx context.Context, id string, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	tx := xcontext.DB(ctx).Model(&entity.Collection{}).Where("id=?", id).Updates(data)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *collectionRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Unscoped().Delete(&entity.Collection{}, "id=?", id)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *collectionRepository) GetIDsByOwnerID(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	err := xcontext.DB(ctx).
		Unscoped().
		Model(&entity.Collection{}).
		Where("owner_id=?", ownerID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *collectionRepository) GetMedals(ctx context.Context, collectionIDs []string) ([]entity.CollectionMedal, error) {
	if len(collectionIDs) == 0 {
		return nil, nil
	}

	var result []entity.CollectionMedal
	err := xcontext.DB(ctx).
		Preload("Medal").
		Where("collection_id IN (?)", collectionIDs).
		Order("position ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ReplaceMedals deletes the current membership and recreates it in the given
// order. Duplicated medal ids keep their first position.
func (r *collectionRepository) ReplaceMedals(ctx context.Context, collectionID string, medalIDs []string) error {
	if err := r.DeleteMedalsByCollectionID(ctx, collectionID); err != nil {
		return err
	}

	seen := map[string]bool{}
	members := []entity.CollectionMedal{}
	for _, id := range medalIDs {
		if seen[id] {
			continue
		}

		seen[id] = true
		members = append(members, entity.CollectionMedal{
			CollectionID: collectionID,
			MedalID:      id,
			Position:     len(members),
		})
	}

	if len(members) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Omit(clause.Associations).Create(&members).Error
}

func (r *collectionRepository) DeleteMedalsByCollectionID(ctx context.Context, collectionID string) error {
	return xcontext.DB(ctx).Delete(&entity.CollectionMedal{}, "collection_id=?", collectionID).Error
}

func (r *collectionRepository) DeleteMedalsByMedalID(ctx context.Context, medalID string) error {
	return xcontext.DB(ctx).Delete(&entity.CollectionMedal{}, "medal_id=?", medalID).Error
}
