package repository

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	UpdateByID(ctx context.Context, id string, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetList(ctx context.Context, offset, limit int) ([]entity.User, error)
	Count(ctx context.Context) (int64, error)
	DeleteByID(ctx context.Context, id string) error
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, data *entity.User) error {
	updateMap := map[string]any{}
	if data.Username != "" {
		updateMap["username"] = data.Username
	}

	if data.Name != "" {
		updateMap["name"] = data.Name
	}

	if data.Email != "" {
		updateMap["email"] = data.Email
	}

	if data.Image != "" {
		updateMap["image"] = data.Image
	}

	if data.Role != "" {
		updateMap["role"] = data.Role
	}

	if len(updateMap) == 0 {
		return nil
	}

	tx := xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Updates(updateMap)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []entity.User
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("username=?", username).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("email=?", email).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetList(ctx context.Context, offset, limit int) ([]entity.User, error) {
	var records []entity.User
	err := xcontext.DB(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := xcontext.DB(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *userRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Unscoped().Where("id=?", id).Delete(&entity.User{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
