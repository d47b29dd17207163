package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// SessionUseCase manages per-device sessions under a per-user lock
type SessionUseCase struct {
	logger            *zap.Logger
	sessionRepository repository.SessionRepository
	leaseRepository   repository.LeaseRepository
	auditLog          interfaces.AuditLogUseCase
	now               func() time.Time
}

// NewSessionUseCase creates the session use case. Without a lease store every
// extension claim succeeds.
func NewSessionUseCase(
	logger *zap.Logger,
	sessionRepo repository.SessionRepository,
	leaseRepo repository.LeaseRepository,
	auditLog interfaces.AuditLogUseCase,
) interfaces.SessionUseCase {
	return &SessionUseCase{
		logger:            logger,
		sessionRepository: sessionRepo,
		leaseRepository:   leaseRepo,
		auditLog:          auditLog,
		now:               time.Now,
	}
}

func sessionLimits(maxActive int, duration time.Duration) (int, time.Duration) {
	if maxActive <= 0 {
		maxActive = entity.DefaultMaxActiveSessions
	}
	if duration <= 0 {
		duration = entity.DefaultSessionTimeoutMinutes * time.Minute
	}
	if floor := entity.MinSessionTimeoutMinutes * time.Minute; duration < floor {
		duration = floor
	}
	return maxActive, duration
}

func validateSessionKey(userID, deviceID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(deviceID) == "" {
		return domainErrors.NewValidationError("user id and device id are required", nil)
	}
	return nil
}

// Upsert refreshes the device session or creates one, evicting the sessions
// closest to expiry while the user is at the cap
func (uc *SessionUseCase) Upsert(ctx context.Context, params dto.UpsertSessionParams) (*dto.UpsertSessionResult, error) {
	if err := validateSessionKey(params.UserID, params.DeviceID); err != nil {
		return nil, err
	}
	maxActive, duration := sessionLimits(params.MaxActiveSessions, params.Duration)

	var result *dto.UpsertSessionResult
	err := uc.sessionRepository.WithinUserLock(ctx, params.UserID, func(store repository.SessionStore) error {
		result = &dto.UpsertSessionResult{}
		now := uc.now()
		expiresAt := now.Add(duration)

		if err := store.DeleteExpired(ctx, params.UserID, now); err != nil {
			return err
		}

		existing, err := store.FindByDevice(ctx, params.UserID, params.DeviceID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.IPAddress = params.IP
			existing.UserAgent = params.UserAgent
			existing.ExpiresAt = expiresAt
			existing.LastSignInAt = now
			existing.UpdatedAt = now
			if err := store.Update(ctx, existing); err != nil {
				return err
			}
			result.SessionID = existing.ID
			result.ExpiresAt = expiresAt
			return nil
		}

		active, err := store.ListActive(ctx, params.UserID, now)
		if err != nil {
			return err
		}
		sortForEviction(active)
		for len(active) >= maxActive {
			victim := active[0]
			if err := store.Delete(ctx, victim.ID); err != nil {
				return err
			}
			result.EvictedIDs = append(result.EvictedIDs, victim.ID)
			active = active[1:]
		}

		session := &entity.UserSession{
			ID:           uuid.NewString(),
			UserID:       params.UserID,
			DeviceID:     params.DeviceID,
			IPAddress:    params.IP,
			UserAgent:    params.UserAgent,
			ExpiresAt:    expiresAt,
			LastSignInAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := store.Create(ctx, session); err != nil {
			return err
		}

		result.SessionID = session.ID
		result.ExpiresAt = expiresAt
		result.Created = true
		return nil
	})
	if err != nil {
		uc.logger.Error("Failed to upsert session",
			zap.String("userID", params.UserID),
			zap.String("deviceID", params.DeviceID),
			zap.Error(err),
		)
		return nil, err
	}

	for _, id := range result.EvictedIDs {
		recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeSessionEvicted, map[string]interface{}{
			"session_id":    id,
			"new_device_id": params.DeviceID,
		}, stringPtr(params.UserID))
	}

	return result, nil
}

// ClaimExtension takes the extension lease of the device session
func (uc *SessionUseCase) ClaimExtension(ctx context.Context, userID, deviceID string, hold time.Duration) (bool, error) {
	if err := validateSessionKey(userID, deviceID); err != nil {
		return false, err
	}
	if uc.leaseRepository == nil {
		return true, nil
	}

	claimed, err := uc.leaseRepository.Acquire(ctx, constants.SessionExtendLeaseKey(userID, deviceID), hold)
	if err != nil {
		uc.logger.Warn("Failed to claim session extension",
			zap.String("userID", userID),
			zap.String("deviceID", deviceID),
			zap.Error(err),
		)
		return false, err
	}
	return claimed, nil
}

// Extend slides the expiry of a device session. An expired session is
// revived only while the user has fewer live sessions than the cap.
func (uc *SessionUseCase) Extend(ctx context.Context, params dto.ExtendSessionParams) (*dto.ExtendSessionResult, error) {
	if err := validateSessionKey(params.UserID, params.DeviceID); err != nil {
		return nil, err
	}
	maxActive, duration := sessionLimits(params.MaxActiveSessions, params.Duration)

	var result *dto.ExtendSessionResult
	err := uc.sessionRepository.WithinUserLock(ctx, params.UserID, func(store repository.SessionStore) error {
		now := uc.now()

		session, err := store.FindByDevice(ctx, params.UserID, params.DeviceID)
		if err != nil {
			return err
		}
		if session == nil {
			return domainErrors.ErrSessionNotFound
		}

		outcome := dto.ExtendOutcomeExtended
		if !session.IsActive(now) {
			active, err := store.ListActive(ctx, params.UserID, now)
			if err != nil {
				return err
			}
			if len(active) >= maxActive {
				result = &dto.ExtendSessionResult{Outcome: dto.ExtendOutcomeSkipped, ExpiresAt: session.ExpiresAt}
				return nil
			}
			outcome = dto.ExtendOutcomeRevived
		}

		session.ExpiresAt = now.Add(duration)
		session.UpdatedAt = now
		if err := store.Update(ctx, session); err != nil {
			return err
		}

		result = &dto.ExtendSessionResult{Outcome: outcome, ExpiresAt: session.ExpiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("Session extension handled",
		zap.String("userID", params.UserID),
		zap.String("deviceID", params.DeviceID),
		zap.String("outcome", string(result.Outcome)),
	)
	return result, nil
}

// Revoke deletes the device session
func (uc *SessionUseCase) Revoke(ctx context.Context, userID, deviceID string) error {
	if err := validateSessionKey(userID, deviceID); err != nil {
		return err
	}
	if err := uc.sessionRepository.DeleteByDevice(ctx, userID, deviceID); err != nil {
		uc.logger.Error("Failed to revoke session",
			zap.String("userID", userID),
			zap.String("deviceID", deviceID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ListActive returns the user's live sessions in eviction order
func (uc *SessionUseCase) ListActive(ctx context.Context, userID, currentDeviceID string) ([]dto.SessionView, error) {
	sessions, err := uc.sessionRepository.ListActive(ctx, userID, uc.now())
	if err != nil {
		return nil, err
	}
	sortForEviction(sessions)

	views := make([]dto.SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, dto.SessionView{
			ID:           s.ID,
			DeviceID:     s.DeviceID,
			IPAddress:    s.IPAddress,
			UserAgent:    s.UserAgent,
			ExpiresAt:    s.ExpiresAt,
			LastSignInAt: s.LastSignInAt,
			Current:      currentDeviceID != "" && s.DeviceID == currentDeviceID,
		})
	}
	return views, nil
}

func sortForEviction(sessions []*entity.UserSession) {
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].EvictsBefore(sessions[j]) })
}
