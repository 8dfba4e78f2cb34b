package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mapUserToDomain(model), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID uint) (*domain.User, error) {
	var model userModel
	if err := r.db.WithContext(ctx).First(&model, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mapUserToDomain(model), nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	model := mapUserToModel(*user)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, userID uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", userID).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateSettings(ctx context.Context, userID uint, settings []byte) error {
	result := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", userID).
		Update("settings", datatypes.JSON(settings))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListByEmailPreference(ctx context.Context, flag string) ([]domain.User, error) {
	var models []userModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(datatypes.JSONQuery("settings").Equals(true, flag)).
		Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(models))
	for _, model := range models {
		users = append(users, *mapUserToDomain(model))
	}
	return users, nil
}

func mapUserToDomain(model userModel) *domain.User {
	var deleted *time.Time
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		deleted = &t
	}
	return &domain.User{
		ID:        model.ID,
		Email:     model.Email,
		Phone:     model.Phone,
		Active:    model.IsActive,
		Settings:  json.RawMessage(model.Settings),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		DeletedAt: deleted,
	}
}

func mapUserToModel(user domain.User) userModel {
	return userModel{
		ID:        user.ID,
		Email:     user.Email,
		Phone:     user.Phone,
		IsActive:  user.Active,
		Settings:  datatypes.JSON(user.Settings),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
