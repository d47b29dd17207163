package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/wekeepgrowing/semo-starter/pkg/messaging"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

var errCacheMiss = errors.New("cache miss")

const testEncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestCipher() *crypto.AESEncryptionService {
	cipher, err := crypto.NewAESEncryptionService(testEncryptionKey)
	if err != nil {
		panic(err)
	}
	return cipher
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryUserRepo is an in-memory UserRepository
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemoryUserRepo(users ...*entity.User) *memoryUserRepo {
	r := &memoryUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.EmailVerifiedAt = &at
	}
	return nil
}

func (r *memoryUserRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = &hash
	}
	return nil
}

func (r *memoryUserRepo) UpdateTwoFactor(ctx context.Context, userID string, secretEnc *string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.TwoFactorSecret = secretEnc
		u.TwoFactorEnabled = enabled
	}
	return nil
}

func (r *memoryUserRepo) get(id string) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

// memoryTokenRepo is an in-memory VerificationTokenRepository
type memoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.VerificationToken
	users  *memoryUserRepo
}

func newMemoryTokenRepo(users *memoryUserRepo) *memoryTokenRepo {
	return &memoryTokenRepo{tokens: map[string]*entity.VerificationToken{}, users: users}
}

func (r *memoryTokenRepo) Create(ctx context.Context, token *entity.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == token.Token {
			return repository.ErrDuplicate
		}
	}
	clone := *token
	r.tokens[token.ID] = &clone
	return nil
}

func (r *memoryTokenRepo) FindByToken(ctx context.Context, token string) (*entity.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == token {
			clone := *t
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryTokenRepo) CountLive(ctx context.Context, userID string, kind entity.TokenKind, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tokens {
		if t.UserID == userID && t.Kind == kind && t.ExpiresAt.After(now) {
			n++
		}
	}
	return n, nil
}

func (r *memoryTokenRepo) DeleteExpired(ctx context.Context, userID string, kind entity.TokenKind, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.UserID == userID && t.Kind == kind && !t.ExpiresAt.After(now) {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *memoryTokenRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
	return nil
}

func (r *memoryTokenRepo) take(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[id]; !ok {
		return false
	}
	delete(r.tokens, id)
	return true
}

func (r *memoryTokenRepo) ConsumeEmailVerification(ctx context.Context, tokenID, userID string, at time.Time) error {
	if !r.take(tokenID) {
		return repository.ErrNotFound
	}
	return r.users.MarkEmailVerified(ctx, userID, at)
}

func (r *memoryTokenRepo) ConsumePasswordReset(ctx context.Context, tokenID, userID, passwordHash string) error {
	if !r.take(tokenID) {
		return repository.ErrNotFound
	}
	return r.users.UpdatePasswordHash(ctx, userID, passwordHash)
}

func (r *memoryTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// memorySessionRepo is an in-memory SessionRepository. WithinUserLock
// serializes every caller, which is stricter than the per-user database lock.
type memorySessionRepo struct {
	lock     sync.Mutex
	mu       sync.Mutex
	sessions map[string]*entity.UserSession
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: map[string]*entity.UserSession{}}
}

func (r *memorySessionRepo) WithinUserLock(ctx context.Context, userID string, fn func(store repository.SessionStore) error) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return fn(r)
}

func (r *memorySessionRepo) FindByDevice(ctx context.Context, userID, deviceID string) (*entity.UserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID && s.DeviceID == deviceID {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memorySessionRepo) ListActive(ctx context.Context, userID string, now time.Time) ([]*entity.UserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.UserSession
	for _, s := range r.sessions {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			clone := *s
			out = append(out, &clone)
		}
	}
	// Map order; callers sort.
	return out, nil
}

func (r *memorySessionRepo) DeleteExpired(ctx context.Context, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID && !s.ExpiresAt.After(now) {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memorySessionRepo) Create(ctx context.Context, session *entity.UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == session.UserID && s.DeviceID == session.DeviceID {
			return repository.ErrDuplicate
		}
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memorySessionRepo) Update(ctx context.Context, session *entity.UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memorySessionRepo) DeleteByDevice(ctx context.Context, userID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID && s.DeviceID == deviceID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memorySessionRepo) all() []*entity.UserSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.UserSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		clone := *s
		out = append(out, &clone)
	}
	return out
}

// MockAuditLogRepository is a mock AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	logs, _ := args.Get(0).([]*entity.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

// MockAppConfigRepository is a mock AppConfigRepository
type MockAppConfigRepository struct {
	mock.Mock
}

func (m *MockAppConfigRepository) Get(ctx context.Context) (*entity.AppConfig, error) {
	args := m.Called(ctx)
	cfg, _ := args.Get(0).(*entity.AppConfig)
	return cfg, args.Error(1)
}

func (m *MockAppConfigRepository) ApplyPatch(ctx context.Context, patch entity.AppConfigPatch) error {
	args := m.Called(ctx, patch)
	return args.Error(0)
}

// MockTagCacheRepository is a mock TagCacheRepository
type MockTagCacheRepository struct {
	mock.Mock
}

func (m *MockTagCacheRepository) Get(ctx context.Context, key, tag string) (string, error) {
	args := m.Called(ctx, key, tag)
	return args.String(0), args.Error(1)
}

func (m *MockTagCacheRepository) Version(ctx context.Context, tag string) (int64, error) {
	args := m.Called(ctx, tag)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTagCacheRepository) SetIfVersion(ctx context.Context, key, value string, ttl time.Duration, tag string, version int64) (bool, error) {
	args := m.Called(ctx, key, value, ttl, tag, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockTagCacheRepository) InvalidateTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagCacheRepository) IsNotFound(err error) bool {
	return err == errCacheMiss
}

// memoryTagCache is a versioned tag cache shared by every use case built on
// it, standing in for one Redis instance.
type memoryTagCache struct {
	mu       sync.Mutex
	entries  map[string]memoryCacheEntry
	versions map[string]int64
}

type memoryCacheEntry struct {
	tag     string
	version int64
	value   string
}

func newMemoryTagCache() *memoryTagCache {
	return &memoryTagCache{
		entries:  map[string]memoryCacheEntry{},
		versions: map[string]int64{},
	}
}

func (c *memoryTagCache) Get(ctx context.Context, key, tag string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || entry.version < c.versions[tag] {
		return "", errCacheMiss
	}
	return entry.value, nil
}

func (c *memoryTagCache) Version(ctx context.Context, tag string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[tag], nil
}

func (c *memoryTagCache) SetIfVersion(ctx context.Context, key, value string, ttl time.Duration, tag string, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[tag] != version {
		return false, nil
	}
	c.entries[key] = memoryCacheEntry{tag: tag, version: version, value: value}
	return true, nil
}

func (c *memoryTagCache) InvalidateTag(ctx context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[tag]++
	for key, entry := range c.entries {
		if entry.tag == tag {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryTagCache) IsNotFound(err error) bool {
	return err == errCacheMiss
}

// memoryAppConfigRepo keeps the config row in memory. afterGet, when set,
// runs once after a row has been read and before it is returned.
type memoryAppConfigRepo struct {
	mu       sync.Mutex
	row      entity.AppConfig
	afterGet func()
}

func newMemoryAppConfigRepo(cfg *entity.AppConfig) *memoryAppConfigRepo {
	return &memoryAppConfigRepo{row: *cfg}
}

func (r *memoryAppConfigRepo) Get(ctx context.Context) (*entity.AppConfig, error) {
	r.mu.Lock()
	row := r.row
	hook := r.afterGet
	r.afterGet = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return &row, nil
}

func (r *memoryAppConfigRepo) ApplyPatch(ctx context.Context, patch entity.AppConfigPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if patch.MaintenanceMode != nil {
		r.row.MaintenanceMode = *patch.MaintenanceMode
	}
	if patch.SiteDisplayName != nil {
		r.row.SiteDisplayName = *patch.SiteDisplayName
	}
	return nil
}

// memoryLeases grants each key once until released.
type memoryLeases struct {
	mu   sync.Mutex
	held map[string]time.Duration
	err  error
}

func newMemoryLeases() *memoryLeases {
	return &memoryLeases{held: map[string]time.Duration{}}
}

func (l *memoryLeases) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = ttl
	return true, nil
}

func (l *memoryLeases) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}

// memoryRegistrationLogs matches entries created strictly after since, the
// same predicate the SQL store applies.
type memoryRegistrationLogs struct {
	mu   sync.Mutex
	logs []entity.RegistrationLog
}

func (r *memoryRegistrationLogs) Create(ctx context.Context, log *entity.RegistrationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = uint(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memoryRegistrationLogs) ExistsSince(ctx context.Context, ip, deviceID string, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, log := range r.logs {
		if !log.CreatedAt.After(since) {
			continue
		}
		if (ip != "" && log.IPAddress == ip) || (deviceID != "" && log.DeviceID == deviceID) {
			return true, nil
		}
	}
	return false, nil
}

// MockRegistrationLogRepository is a mock RegistrationLogRepository
type MockRegistrationLogRepository struct {
	mock.Mock
}

func (m *MockRegistrationLogRepository) Create(ctx context.Context, log *entity.RegistrationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockRegistrationLogRepository) ExistsSince(ctx context.Context, ip, deviceID string, since time.Time) (bool, error) {
	args := m.Called(ctx, ip, deviceID, since)
	return args.Bool(0), args.Error(1)
}

// MockMailRepository is a mock MailRepository
type MockMailRepository struct {
	mock.Mock
}

func (m *MockMailRepository) Send(ctx context.Context, settings repository.SMTPSettings, msg repository.MailMessage) error {
	args := m.Called(ctx, settings, msg)
	return args.Error(0)
}

func (m *MockMailRepository) Verify(ctx context.Context, settings repository.SMTPSettings, timeout time.Duration) error {
	args := m.Called(ctx, settings, timeout)
	return args.Error(0)
}

// MockMessagingClient is a mock messaging.RedisClient
type MockMessagingClient struct {
	mock.Mock
}

func (m *MockMessagingClient) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *MockMessagingClient) Subscribe(ctx context.Context, channel string) (<-chan messaging.Message, error) {
	args := m.Called(ctx, channel)
	ch, _ := args.Get(0).(<-chan messaging.Message)
	return ch, args.Error(1)
}

func (m *MockMessagingClient) Close() error {
	return nil
}

// stubAppConfig serves a fixed config
type stubAppConfig struct {
	cfg *entity.AppConfig
	err error
}

func (s *stubAppConfig) Get(ctx context.Context) (*entity.AppConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

func (s *stubAppConfig) GetOrDefault(ctx context.Context) *entity.AppConfig {
	if s.err != nil {
		return entity.DefaultAppConfig()
	}
	return s.cfg
}

func (s *stubAppConfig) Update(ctx context.Context, patch entity.AppConfigPatch, actorID string) (*entity.AppConfig, error) {
	s.cfg.Apply(patch)
	return s.cfg, nil
}

func (s *stubAppConfig) UpdateGeneral(ctx context.Context, req dto.GeneralSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return s.Update(ctx, req.Patch(), actorID)
}

func (s *stubAppConfig) UpdateSEO(ctx context.Context, req dto.SEOSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return s.Update(ctx, req.Patch(), actorID)
}

func (s *stubAppConfig) UpdateUserPolicy(ctx context.Context, req dto.UserSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return s.Update(ctx, req.Patch(), actorID)
}

func (s *stubAppConfig) UpdateSMTP(ctx context.Context, req dto.SMTPSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return s.cfg, nil
}

func (s *stubAppConfig) Invalidate() {}

func (s *stubAppConfig) Listen(ctx context.Context) error { return nil }

func assertAuthErrorType(t *testing.T, err error, errType string) {
	t.Helper()
	authErr, ok := domainErrors.AsAuthError(err)
	if assert.True(t, ok, "expected an AuthError, got %v", err) {
		assert.Equal(t, errType, authErr.Type)
	}
}
