package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

// Mock use cases

type MockAppConfigUseCase struct {
	mock.Mock
}

func (m *MockAppConfigUseCase) Get(ctx context.Context) (*entity.AppConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AppConfig), args.Error(1)
}

func (m *MockAppConfigUseCase) GetOrDefault(ctx context.Context) *entity.AppConfig {
	args := m.Called(ctx)
	return args.Get(0).(*entity.AppConfig)
}

func (m *MockAppConfigUseCase) Update(ctx context.Context, patch entity.AppConfigPatch, actorID string) (*entity.AppConfig, error) {
	args := m.Called(ctx, patch, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AppConfig), args.Error(1)
}

func (m *MockAppConfigUseCase) UpdateGeneral(ctx context.Context, req dto.GeneralSettingsRequest, actorID string) (*entity.AppConfig, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AppConfig), args.Error(1)
}

func (m *MockAppConfigUseCase) UpdateSEO(ctx context.Context, req dto.SEOSettingsRequest, actorID string) (*entity.AppConfig, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AppConfig), args.Error(1)
}

func (m *MockAppConfigUseCase) UpdateUserPolicy(ctx context.Context, req dto.UserSettingsRequest, actorID string) (*entity.AppConfig, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AppConfig), args.Error(1)
}

func (m *MockAppConfigUseCase) UpdateSMTP(ctx context.Context, req dto.SMTPSettingsRequest, actorID string) (*entity.AppConfig, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AppConfig), args.Error(1)
}

func (m *MockAppConfigUseCase) Invalidate() {
	m.Called()
}

func (m *MockAppConfigUseCase) Listen(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockEmailUseCase struct {
	mock.Mock
}

func (m *MockEmailUseCase) Send(ctx context.Context, req dto.SendEmailRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockEmailUseCase) VerifySMTP(ctx context.Context, req dto.VerifySMTPRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockEmailUseCase) SendVerificationEmail(ctx context.Context, to, code string) error {
	args := m.Called(ctx, to, code)
	return args.Error(0)
}

func (m *MockEmailUseCase) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) SignIn(ctx context.Context, params dto.SignInParams) (*dto.SignInResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SignInResult), args.Error(1)
}

func (m *MockAuthUseCase) StartSession(ctx context.Context, user *entity.User, device dto.DeviceInfo) (*dto.SignInResult, error) {
	args := m.Called(ctx, user, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SignInResult), args.Error(1)
}

func (m *MockAuthUseCase) SignOut(ctx context.Context, userID, deviceID string) error {
	args := m.Called(ctx, userID, deviceID)
	return args.Error(0)
}

func (m *MockAuthUseCase) Me(ctx context.Context, userID string) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

type MockRegistrationUseCase struct {
	mock.Mock
}

func (m *MockRegistrationUseCase) SignUp(ctx context.Context, params dto.SignUpParams) (*dto.SignUpResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SignUpResult), args.Error(1)
}

func (m *MockRegistrationUseCase) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockRegistrationUseCase) ResendVerification(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type MockPasswordResetUseCase struct {
	mock.Mock
}

func (m *MockPasswordResetUseCase) RequestReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockPasswordResetUseCase) ResetPassword(ctx context.Context, token, password string) error {
	args := m.Called(ctx, token, password)
	return args.Error(0)
}

type MockSessionUseCase struct {
	mock.Mock
}

func (m *MockSessionUseCase) Upsert(ctx context.Context, params dto.UpsertSessionParams) (*dto.UpsertSessionResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UpsertSessionResult), args.Error(1)
}

func (m *MockSessionUseCase) Extend(ctx context.Context, params dto.ExtendSessionParams) (*dto.ExtendSessionResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExtendSessionResult), args.Error(1)
}

func (m *MockSessionUseCase) Revoke(ctx context.Context, userID, deviceID string) error {
	args := m.Called(ctx, userID, deviceID)
	return args.Error(0)
}

func (m *MockSessionUseCase) ClaimExtension(ctx context.Context, userID, deviceID string, hold time.Duration) (bool, error) {
	args := m.Called(ctx, userID, deviceID, hold)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionUseCase) ListActive(ctx context.Context, userID, currentDeviceID string) ([]dto.SessionView, error) {
	args := m.Called(ctx, userID, currentDeviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.SessionView), args.Error(1)
}

type MockOTPUseCase struct {
	mock.Mock
}

func (m *MockOTPUseCase) Setup(ctx context.Context, userID string) (*dto.TwoFactorSetup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TwoFactorSetup), args.Error(1)
}

func (m *MockOTPUseCase) Enable(ctx context.Context, userID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockOTPUseCase) Validate(ctx context.Context, user *entity.User, code string) error {
	args := m.Called(ctx, user, code)
	return args.Error(0)
}

type MockOAuthUseCase struct {
	mock.Mock
}

func (m *MockOAuthUseCase) ProvisionIfAbsent(ctx context.Context, profile dto.OAuthProfile, device dto.DeviceInfo) (*entity.User, bool, error) {
	args := m.Called(ctx, profile, device)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.User), args.Bool(1), args.Error(2)
}

func (m *MockOAuthUseCase) SignIn(ctx context.Context, profile dto.OAuthProfile, device dto.DeviceInfo) (*dto.SignInResult, error) {
	args := m.Called(ctx, profile, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SignInResult), args.Error(1)
}

type MockAuditLogUseCase struct {
	mock.Mock
}

func (m *MockAuditLogUseCase) AddLog(ctx context.Context, logType entity.AuditLogType, content map[string]interface{}, userID *string) error {
	args := m.Called(ctx, logType, content, userID)
	return args.Error(0)
}

func (m *MockAuditLogUseCase) GetUserLogs(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	logs, _ := args.Get(0).([]*entity.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockOAuthProvider) Exchange(ctx context.Context, code string) (*dto.OAuthProfile, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.OAuthProfile), args.Error(1)
}

// Helpers

const testDeviceID = "device-1"

// newTestEcho returns an echo instance with the validator and a fixed caller.
func newTestEcho(id *entity.Identity) *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id != nil {
				c.Set(middleware.IdentityKey, id)
			}
			c.Set(middleware.DeviceIDKey, testDeviceID)
			return next(c)
		}
	})
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	req.Header.Set("User-Agent", "handler-test")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func testUser() *entity.User {
	return &entity.User{
		ID:    "user-1",
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  entity.RoleUser,
	}
}
