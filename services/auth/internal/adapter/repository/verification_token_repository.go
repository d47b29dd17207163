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

type VerificationTokenRepositoryImpl struct {
	db *gorm.DB
}

// NewVerificationTokenRepository builds the gorm token repository.
func NewVerificationTokenRepository(db *gorm.DB) repository.VerificationTokenRepository {
	return &VerificationTokenRepositoryImpl{db: db}
}

func toVerificationTokenModel(t *entity.VerificationToken) *model.VerificationTokenModel {
	return &model.VerificationTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		Token:     t.Token,
		Kind:      string(t.Kind),
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}

func toVerificationTokenEntity(m *model.VerificationTokenModel) *entity.VerificationToken {
	return &entity.VerificationToken{
		ID:        m.ID,
		UserID:    m.UserID,
		Token:     m.Token,
		Kind:      entity.TokenKind(m.Kind),
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}

func (r *VerificationTokenRepositoryImpl) Create(ctx context.Context, token *entity.VerificationToken) error {
	if err := r.db.WithContext(ctx).Create(toVerificationTokenModel(token)).Error; err != nil {
		return fmt.Errorf("failed to create verification token: %w", translateError(err))
	}
	return nil
}

func (r *VerificationTokenRepositoryImpl) FindByToken(ctx context.Context, token string) (*entity.VerificationToken, error) {
	var tokenModel model.VerificationTokenModel
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&tokenModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find verification token: %w", err)
	}
	return toVerificationTokenEntity(&tokenModel), nil
}

func (r *VerificationTokenRepositoryImpl) CountLive(ctx context.Context, userID string, kind entity.TokenKind, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.VerificationTokenModel{}).
		Where("user_id = ? AND kind = ? AND expires_at > ?", userID, string(kind), now).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count verification tokens: %w", err)
	}
	return count, nil
}

func (r *VerificationTokenRepositoryImpl) DeleteExpired(ctx context.Context, userID string, kind entity.TokenKind, now time.Time) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND expires_at <= ?", userID, string(kind), now).
		Delete(&model.VerificationTokenModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	return nil
}

func (r *VerificationTokenRepositoryImpl) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.VerificationTokenModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}
	return nil
}

func (r *VerificationTokenRepositoryImpl) ConsumeEmailVerification(ctx context.Context, tokenID, userID string, at time.Time) error {
	return r.consume(ctx, tokenID, userID, map[string]interface{}{"email_verified_at": at})
}

func (r *VerificationTokenRepositoryImpl) ConsumePasswordReset(ctx context.Context, tokenID, userID, passwordHash string) error {
	return r.consume(ctx, tokenID, userID, map[string]interface{}{"password_hash": passwordHash})
}

// consume deletes the token and updates the user in one transaction. The
// token delete must affect a row, so a concurrent consumer loses.
func (r *VerificationTokenRepositoryImpl) consume(ctx context.Context, tokenID, userID string, userColumns map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", tokenID).Delete(&model.VerificationTokenModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete verification token: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}

		if err := tx.Model(&model.UserModel{}).Where("id = ?", userID).Updates(userColumns).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
}
