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

type SessionRepositoryImpl struct {
	db *gorm.DB
}

// NewSessionRepository builds the gorm session repository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

func toSessionModel(s *entity.UserSession) *model.UserSessionModel {
	return &model.UserSessionModel{
		ID:           s.ID,
		UserID:       s.UserID,
		DeviceID:     s.DeviceID,
		IPAddress:    s.IPAddress,
		UserAgent:    s.UserAgent,
		ExpiresAt:    s.ExpiresAt,
		LastSignInAt: s.LastSignInAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toSessionEntity(m *model.UserSessionModel) *entity.UserSession {
	return &entity.UserSession{
		ID:           m.ID,
		UserID:       m.UserID,
		DeviceID:     m.DeviceID,
		IPAddress:    m.IPAddress,
		UserAgent:    m.UserAgent,
		ExpiresAt:    m.ExpiresAt,
		LastSignInAt: m.LastSignInAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// WithinUserLock takes pg_advisory_xact_lock keyed by the user id. The lock is
// released when the transaction ends.
func (r *SessionRepositoryImpl) WithinUserLock(ctx context.Context, userID string, fn func(store repository.SessionStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "user_sessions:"+userID).Error; err != nil {
			return fmt.Errorf("failed to acquire session lock: %w", err)
		}
		return fn(&SessionRepositoryImpl{db: tx})
	})
}

func (r *SessionRepositoryImpl) FindByDevice(ctx context.Context, userID, deviceID string) (*entity.UserSession, error) {
	var sessionModel model.UserSessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		First(&sessionModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return toSessionEntity(&sessionModel), nil
}

func (r *SessionRepositoryImpl) ListActive(ctx context.Context, userID string, now time.Time) ([]*entity.UserSession, error) {
	var sessionModels []model.UserSessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("expires_at ASC, created_at ASC, id ASC").
		Find(&sessionModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*entity.UserSession, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = toSessionEntity(&sessionModels[i])
	}
	return sessions, nil
}

func (r *SessionRepositoryImpl) DeleteExpired(ctx context.Context, userID string, now time.Time) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at <= ?", userID, now).
		Delete(&model.UserSessionModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.UserSession) error {
	sessionModel := toSessionModel(session)
	if err := r.db.WithContext(ctx).Create(sessionModel).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", translateError(err))
	}
	session.CreatedAt = sessionModel.CreatedAt
	session.UpdatedAt = sessionModel.UpdatedAt
	return nil
}

func (r *SessionRepositoryImpl) Update(ctx context.Context, session *entity.UserSession) error {
	err := r.db.WithContext(ctx).Model(&model.UserSessionModel{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"ip_address":      session.IPAddress,
			"user_agent":      session.UserAgent,
			"expires_at":      session.ExpiresAt,
			"last_sign_in_at": session.LastSignInAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserSessionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) DeleteByDevice(ctx context.Context, userID, deviceID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		Delete(&model.UserSessionModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
