package interfaces

import "context"

// DeviceThrottleUseCase limits signups to one per device or network.
type DeviceThrottleUseCase interface {
	// Check fails with ErrDuplicateDeviceOrIP when the ip or device registered
	// an account inside the window.
	Check(ctx context.Context, ip, deviceID string) error

	// Record remembers a successful signup.
	Record(ctx context.Context, userID, ip, deviceID string) error
}
