package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"go.uber.org/zap"
)

func newPasswordUser(t *testing.T, id, email, password string) *entity.User {
	t.Helper()
	hash, err := HashPassword(password, 10)
	require.NoError(t, err)
	return &entity.User{ID: id, Email: email, Name: "Test", PasswordHash: &hash, Role: entity.RoleUser}
}

func TestCredentialVerify(t *testing.T) {
	oauthOnly := &entity.User{ID: "user-2", Email: "oauth@example.com", Name: "OAuth", Role: entity.RoleUser}
	users := newMemoryUserRepo(newPasswordUser(t, "user-1", "alice@example.com", "correct-horse"), oauthOnly)
	uc := NewCredentialUseCase(zap.NewNop(), users, 10)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantID   string
	}{
		{name: "valid", email: "alice@example.com", password: "correct-horse", wantID: "user-1"},
		{name: "email is normalized", email: "  Alice@Example.COM ", password: "correct-horse", wantID: "user-1"},
		{name: "wrong password", email: "alice@example.com", password: "battery-staple"},
		{name: "unknown email", email: "bob@example.com", password: "correct-horse"},
		{name: "account without password", email: "oauth@example.com", password: "anything"},
		{name: "empty password", email: "alice@example.com", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := uc.Verify(ctx, tt.email, tt.password)
			if tt.wantID == "" {
				assert.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, user.ID)
		})
	}
}

func TestDeviceThrottle(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()

	t.Run("empty ip and device are not looked up", func(t *testing.T) {
		repo := new(MockRegistrationLogRepository)
		uc := NewDeviceThrottleUseCase(zap.NewNop(), repo, 0)

		assert.NoError(t, uc.Check(ctx, " ", ""))
		repo.AssertNotCalled(t, "ExistsSince")
	})

	t.Run("match inside the window blocks", func(t *testing.T) {
		repo := new(MockRegistrationLogRepository)
		uc := NewDeviceThrottleUseCase(zap.NewNop(), repo, 0).(*DeviceThrottleUseCase)
		uc.now = clock.Now

		since := clock.Now().AddDate(0, 0, -30)
		repo.On("ExistsSince", ctx, "10.0.0.1", "device-a", since).Return(true, nil)

		err := uc.Check(ctx, "10.0.0.1", "device-a")
		assert.ErrorIs(t, err, domainErrors.ErrDuplicateDeviceOrIP)
		repo.AssertExpectations(t)
	})

	t.Run("no match passes", func(t *testing.T) {
		repo := new(MockRegistrationLogRepository)
		uc := NewDeviceThrottleUseCase(zap.NewNop(), repo, 0)

		repo.On("ExistsSince", ctx, "10.0.0.2", "", mock.AnythingOfType("time.Time")).Return(false, nil)
		assert.NoError(t, uc.Check(ctx, "10.0.0.2", ""))
	})

	t.Run("record trims values", func(t *testing.T) {
		repo := new(MockRegistrationLogRepository)
		uc := NewDeviceThrottleUseCase(zap.NewNop(), repo, 0)

		repo.On("Create", ctx, mock.MatchedBy(func(l *entity.RegistrationLog) bool {
			return l.UserID == "user-1" && l.IPAddress == "10.0.0.1" && l.DeviceID == "device-a"
		})).Return(nil)
		require.NoError(t, uc.Record(ctx, "user-1", " 10.0.0.1 ", "device-a "))
		repo.AssertExpectations(t)
	})
}
