package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"go.uber.org/zap"
)

// testEnv wires the real use cases over in-memory stores.
type testEnv struct {
	clock     *fakeClock
	users     *memoryUserRepo
	tokens    *memoryTokenRepo
	sessions  *memorySessionRepo
	regLogs   *MockRegistrationLogRepository
	mailer    *MockMailRepository
	auditRepo *MockAuditLogRepository
	appConfig *stubAppConfig

	credential   *CredentialUseCase
	throttle     *DeviceThrottleUseCase
	verification *VerificationTokenUseCase
	session      *SessionUseCase
	jwt          *TokenUseCase
	otp          *OTPUseCase
	email        *EmailUseCase
	auth         *AuthUseCase
	registration *RegistrationUseCase
	reset        *PasswordResetUseCase
	oauth        *OAuthUseCase

	mu     sync.Mutex
	sent   []repository.MailMessage
	audits []entity.AuditLogType
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	cipher := newTestCipher()

	smtpPassword, err := cipher.Encrypt("smtp-password")
	require.NoError(t, err)
	cfg := entity.DefaultAppConfig()
	cfg.SiteDisplayName = "Semo"
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPPort = 587
	cfg.SMTPUser = "mailer@example.com"
	cfg.SMTPPasswordEnc = smtpPassword
	cfg.SMTPConfigured = true

	env := &testEnv{
		clock:     newFakeClock(),
		users:     newMemoryUserRepo(),
		sessions:  newMemorySessionRepo(),
		regLogs:   new(MockRegistrationLogRepository),
		mailer:    new(MockMailRepository),
		auditRepo: new(MockAuditLogRepository),
		appConfig: &stubAppConfig{cfg: cfg},
	}
	env.tokens = newMemoryTokenRepo(env.users)

	env.regLogs.On("ExistsSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Maybe()
	env.regLogs.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	env.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.sent = append(env.sent, args.Get(2).(repository.MailMessage))
	}).Return(nil).Maybe()
	env.auditRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.audits = append(env.audits, args.Get(1).(*entity.AuditLog).Type)
	}).Return(nil).Maybe()

	audit := NewAuditLogUseCase(logger, env.auditRepo)
	env.credential = NewCredentialUseCase(logger, env.users, 10).(*CredentialUseCase)
	env.throttle = NewDeviceThrottleUseCase(logger, env.regLogs, 0).(*DeviceThrottleUseCase)
	env.throttle.now = env.clock.Now
	env.verification = NewVerificationTokenUseCase(logger, VerificationTokenConfig{}, env.tokens, env.users, nil).(*VerificationTokenUseCase)
	env.verification.now = env.clock.Now
	env.session = NewSessionUseCase(logger, env.sessions, nil, audit).(*SessionUseCase)
	env.session.now = env.clock.Now
	env.jwt = NewTokenUseCase(logger, TokenConfig{ServiceName: "auth", Secret: "test-secret"}).(*TokenUseCase)
	env.jwt.now = env.clock.Now
	env.otp = NewOTPUseCase(logger, env.users, cipher, audit, "Semo").(*OTPUseCase)
	env.email = NewEmailUseCase(logger, env.appConfig, env.mailer, cipher, "https://app.example.com", "noreply@example.com", 0).(*EmailUseCase)
	env.auth = NewAuthUseCase(logger, AuthConfig{}, env.users, env.appConfig, env.credential, env.session, env.jwt, env.otp, audit).(*AuthUseCase)
	env.registration = NewRegistrationUseCase(logger, env.appConfig, env.users, env.credential, env.throttle, env.verification, env.email, audit, 0).(*RegistrationUseCase)
	env.reset = NewPasswordResetUseCase(logger, env.users, env.credential, env.verification, env.email, audit, 0).(*PasswordResetUseCase)
	env.oauth = NewOAuthUseCase(logger, env.users, env.appConfig, env.throttle, env.auth, audit).(*OAuthUseCase)
	env.oauth.now = env.clock.Now

	return env
}

func (e *testEnv) sentMail() []repository.MailMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]repository.MailMessage(nil), e.sent...)
}

func (e *testEnv) auditTypes() []entity.AuditLogType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]entity.AuditLogType(nil), e.audits...)
}

// blockDevices makes every throttle lookup report a prior registration.
func (e *testEnv) blockDevices() {
	e.regLogs.ExpectedCalls = nil
	e.regLogs.On("ExistsSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	e.regLogs.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (e *testEnv) addUser(t *testing.T, id, email, password string, verified bool) *entity.User {
	t.Helper()
	user := newPasswordUser(t, id, email, password)
	if verified {
		user.VerifyEmail(e.clock.Now())
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}
