package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// DeviceThrottleUseCase allows one signup per ip or device inside a window
type DeviceThrottleUseCase struct {
	logger                    *zap.Logger
	registrationLogRepository repository.RegistrationLogRepository
	window                    time.Duration
	now                       func() time.Time
}

// NewDeviceThrottleUseCase creates the throttle. A zero window means 30 days.
func NewDeviceThrottleUseCase(
	logger *zap.Logger,
	registrationLogRepo repository.RegistrationLogRepository,
	window time.Duration,
) interfaces.DeviceThrottleUseCase {
	if window <= 0 {
		window = constants.RegistrationWindow
	}
	return &DeviceThrottleUseCase{
		logger:                    logger,
		registrationLogRepository: registrationLogRepo,
		window:                    window,
		now:                       time.Now,
	}
}

// Check fails when the ip or device already registered inside the window
func (uc *DeviceThrottleUseCase) Check(ctx context.Context, ip, deviceID string) error {
	ip = strings.TrimSpace(ip)
	deviceID = strings.TrimSpace(deviceID)
	if ip == "" && deviceID == "" {
		return nil
	}

	exists, err := uc.registrationLogRepository.ExistsSince(ctx, ip, deviceID, uc.now().Add(-uc.window))
	if err != nil {
		uc.logger.Error("Failed to check registration logs",
			zap.String("ip", ip),
			zap.String("deviceID", deviceID),
			zap.Error(err),
		)
		return err
	}

	if exists {
		uc.logger.Info("Registration blocked for known device or ip",
			zap.String("ip", ip),
			zap.String("deviceID", deviceID),
		)
		return domainErrors.ErrDuplicateDeviceOrIP
	}

	return nil
}

// Record appends a registration log entry
func (uc *DeviceThrottleUseCase) Record(ctx context.Context, userID, ip, deviceID string) error {
	log := &entity.RegistrationLog{
		UserID:    userID,
		IPAddress: strings.TrimSpace(ip),
		DeviceID:  strings.TrimSpace(deviceID),
		CreatedAt: uc.now(),
	}

	if err := uc.registrationLogRepository.Create(ctx, log); err != nil {
		uc.logger.Error("Failed to record registration",
			zap.String("userID", userID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
