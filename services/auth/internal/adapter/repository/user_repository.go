package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/db/model"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository builds the gorm user repository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func toUserModel(user *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		PasswordHash:       user.PasswordHash,
		Role:               string(user.Role),
		EmailVerifiedAt:    user.EmailVerifiedAt,
		Image:              user.Image,
		TwoFactorSecretEnc: user.TwoFactorSecret,
		TwoFactorEnabled:   user.TwoFactorEnabled,
	}
}

func toUserEntity(m *model.UserModel) *entity.User {
	return &entity.User{
		ID:               m.ID,
		Email:            m.Email,
		Name:             m.Name,
		PasswordHash:     m.PasswordHash,
		Role:             entity.Role(m.Role),
		EmailVerifiedAt:  m.EmailVerifiedAt,
		Image:            m.Image,
		TwoFactorSecret:  m.TwoFactorSecretEnc,
		TwoFactorEnabled: m.TwoFactorEnabled,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return toUserEntity(&userModel), nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", entity.NormalizeEmail(email)).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return toUserEntity(&userModel), nil
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	userModel := toUserModel(user)
	if err := r.db.WithContext(ctx).Create(userModel).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}
	user.CreatedAt = userModel.CreatedAt
	user.UpdatedAt = userModel.UpdatedAt
	return nil
}

func (r *UserRepositoryImpl) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"email_verified_at": at})
}

func (r *UserRepositoryImpl) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"password_hash": hash})
}

func (r *UserRepositoryImpl) UpdateTwoFactor(ctx context.Context, userID string, secretEnc *string, enabled bool) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"two_factor_secret_enc": secretEnc,
		"two_factor_enabled":    enabled,
	})
}

func (r *UserRepositoryImpl) updateColumns(ctx context.Context, userID string, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.UserModel{}).Where("id = ?", userID).Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update user %s: %w", userID, gorm.ErrRecordNotFound)
	}
	return nil
}
