package interfaces

import (
	"context"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

// SessionUseCase manages per-device sessions.
type SessionUseCase interface {
	// Upsert creates or refreshes the device session, evicting the sessions
	// closest to expiry when the user is at the cap.
	Upsert(ctx context.Context, params dto.UpsertSessionParams) (*dto.UpsertSessionResult, error)

	// ClaimExtension takes the per-device extension lease for hold. Only the
	// caller that gets it goes on to Extend.
	ClaimExtension(ctx context.Context, userID, deviceID string, hold time.Duration) (bool, error)

	// Extend slides the expiry of an existing session.
	Extend(ctx context.Context, params dto.ExtendSessionParams) (*dto.ExtendSessionResult, error)

	// Revoke deletes the device session.
	Revoke(ctx context.Context, userID, deviceID string) error

	// ListActive returns live sessions, the current device flagged.
	ListActive(ctx context.Context, userID, currentDeviceID string) ([]dto.SessionView, error)
}
