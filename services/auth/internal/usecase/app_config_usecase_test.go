package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/semo-starter/pkg/messaging"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"go.uber.org/zap"
)

func newTestAppConfigUseCase(repo repository.AppConfigRepository, cache repository.TagCacheRepository, msg messaging.RedisClient) (*AppConfigUseCase, *fakeClock) {
	clock := newFakeClock()
	uc := NewAppConfigUseCase(zap.NewNop(), AppConfigCacheConfig{}, repo, cache, msg, newTestCipher(), nil)
	uc.now = clock.Now
	uc.resubscribeInitial = time.Millisecond
	uc.resubscribeMax = time.Millisecond
	return uc, clock
}

func storedConfig() *entity.AppConfig {
	cfg := entity.DefaultAppConfig()
	cfg.SiteDisplayName = "Stored"
	cfg.MaxActiveSessionsPerUser = 5
	return cfg
}

func expectCacheMiss(cache *MockTagCacheRepository, ctx interface{}) {
	cache.On("Get", ctx, constants.AppConfigCacheKey, constants.AppConfigCacheTag).Return("", errCacheMiss)
}

func TestAppConfigGet_LoadsFromDatabaseAndMemoizes(t *testing.T) {
	repo := new(MockAppConfigRepository)
	cache := new(MockTagCacheRepository)
	ctx := context.Background()

	expectCacheMiss(cache, ctx)
	cache.On("Version", ctx, constants.AppConfigCacheTag).Return(int64(4), nil)
	cache.On("SetIfVersion", ctx, constants.AppConfigCacheKey, mock.Anything, time.Hour, constants.AppConfigCacheTag, int64(4)).Return(true, nil)
	repo.On("Get", ctx).Return(storedConfig(), nil)

	uc, clock := newTestAppConfigUseCase(repo, cache, nil)

	cfg, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Stored", cfg.SiteDisplayName)

	cfg, err = uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Stored", cfg.SiteDisplayName)
	repo.AssertNumberOfCalls(t, "Get", 1)
	cache.AssertNumberOfCalls(t, "Get", 1)

	clock.Advance(6 * time.Second)
	_, err = uc.Get(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 2)
	cache.AssertExpectations(t)
}

func TestAppConfigGet_ServesRedisCopy(t *testing.T) {
	repo := new(MockAppConfigRepository)
	cache := new(MockTagCacheRepository)
	ctx := context.Background()

	raw, err := json.Marshal(storedConfig())
	require.NoError(t, err)
	cache.On("Get", ctx, constants.AppConfigCacheKey, constants.AppConfigCacheTag).Return(string(raw), nil)

	uc, _ := newTestAppConfigUseCase(repo, cache, nil)

	cfg, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxActiveSessionsPerUser)
	repo.AssertNotCalled(t, "Get", mock.Anything)
}

func TestAppConfigGet_DefaultsWhenNoRow(t *testing.T) {
	repo := new(MockAppConfigRepository)
	cache := new(MockTagCacheRepository)
	ctx := context.Background()

	cache.On("Get", ctx, constants.AppConfigCacheKey, constants.AppConfigCacheTag).Return("", errors.New("redis down"))
	cache.On("Version", ctx, constants.AppConfigCacheTag).Return(int64(0), errors.New("redis down"))
	repo.On("Get", ctx).Return(nil, nil)

	uc, _ := newTestAppConfigUseCase(repo, cache, nil)

	cfg, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultAppConfig(), cfg)
	cache.AssertNotCalled(t, "SetIfVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAppConfigGetOrDefault_FailsOpen(t *testing.T) {
	repo := new(MockAppConfigRepository)
	cache := new(MockTagCacheRepository)
	ctx := context.Background()

	expectCacheMiss(cache, ctx)
	cache.On("Version", ctx, constants.AppConfigCacheTag).Return(int64(0), nil)
	repo.On("Get", ctx).Return(nil, errors.New("db down"))

	uc, _ := newTestAppConfigUseCase(repo, cache, nil)

	_, err := uc.Get(ctx)
	assert.Error(t, err)
	assert.Equal(t, entity.DefaultAppConfig(), uc.GetOrDefault(ctx))
}

func TestAppConfigUpdate_InvalidatesAndPublishes(t *testing.T) {
	repo := new(MockAppConfigRepository)
	cache := new(MockTagCacheRepository)
	msg := new(MockMessagingClient)
	ctx := context.Background()

	updated := storedConfig()
	updated.MaintenanceMode = true

	expectCacheMiss(cache, ctx)
	cache.On("Version", ctx, constants.AppConfigCacheTag).Return(int64(0), nil).Once()
	cache.On("Version", ctx, constants.AppConfigCacheTag).Return(int64(1), nil).Once()
	cache.On("SetIfVersion", ctx, constants.AppConfigCacheKey, mock.Anything, mock.Anything, constants.AppConfigCacheTag, int64(0)).Return(true, nil).Once()
	cache.On("SetIfVersion", ctx, constants.AppConfigCacheKey, mock.Anything, mock.Anything, constants.AppConfigCacheTag, int64(1)).Return(true, nil).Once()
	cache.On("InvalidateTag", ctx, constants.AppConfigCacheTag).Return(nil).Once()
	repo.On("Get", ctx).Return(storedConfig(), nil).Once()
	repo.On("ApplyPatch", ctx, mock.MatchedBy(func(p entity.AppConfigPatch) bool {
		return p.MaintenanceMode != nil && *p.MaintenanceMode
	})).Return(nil).Once()
	repo.On("Get", ctx).Return(updated, nil).Once()
	msg.On("Publish", ctx, constants.AppConfigInvalidationChannel, mock.AnythingOfType("usecase.appConfigInvalidation")).Return(nil).Once()

	uc, _ := newTestAppConfigUseCase(repo, cache, msg)

	before, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, before.MaintenanceMode)

	on := true
	after, err := uc.Update(ctx, entity.AppConfigPatch{MaintenanceMode: &on}, "admin-1")
	require.NoError(t, err)
	assert.True(t, after.MaintenanceMode)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	msg.AssertExpectations(t)
}

func TestAppConfigUpdate_LoadRacingAnUpdateIsNotCached(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryTagCache()
	repo := newMemoryAppConfigRepo(storedConfig())

	reader, _ := newTestAppConfigUseCase(repo, cache, nil)
	admin, _ := newTestAppConfigUseCase(repo, cache, nil)

	// The admin turns maintenance on after the reader has loaded the row but
	// before the reader writes it to the shared cache.
	repo.afterGet = func() {
		on := true
		updated, err := admin.Update(ctx, entity.AppConfigPatch{MaintenanceMode: &on}, "admin-1")
		require.NoError(t, err)
		require.True(t, updated.MaintenanceMode)
	}

	stale, err := reader.Get(ctx)
	require.NoError(t, err)
	assert.False(t, stale.MaintenanceMode)

	other, _ := newTestAppConfigUseCase(repo, cache, nil)
	cfg, err := other.Get(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.MaintenanceMode)

	require.NoError(t, cache.InvalidateTag(ctx, constants.AppConfigCacheTag))
	fresh, _ := newTestAppConfigUseCase(repo, cache, nil)
	cfg, err = fresh.Get(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.MaintenanceMode)
}

func TestAppConfigGet_CallersCannotMutateTheMemo(t *testing.T) {
	ctx := context.Background()
	stored := storedConfig()
	stored.Keywords = []string{"auth", "starter"}
	uc, _ := newTestAppConfigUseCase(newMemoryAppConfigRepo(stored), newMemoryTagCache(), nil)

	first, err := uc.Get(ctx)
	require.NoError(t, err)
	first.SiteDisplayName = "Tampered"
	first.Keywords[0] = "tampered"

	second, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Stored", second.SiteDisplayName)
	assert.Equal(t, []string{"auth", "starter"}, second.Keywords)

	second.MaintenanceMode = true
	third, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, third.MaintenanceMode)
}

func TestAppConfigGet_IgnoresEntriesBehindTheTagVersion(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryTagCache()

	old := storedConfig()
	raw, err := json.Marshal(old)
	require.NoError(t, err)
	stored, err := cache.SetIfVersion(ctx, constants.AppConfigCacheKey, string(raw), time.Hour, constants.AppConfigCacheTag, 0)
	require.NoError(t, err)
	require.True(t, stored)

	cache.mu.Lock()
	cache.versions[constants.AppConfigCacheTag] = 2
	cache.mu.Unlock()

	current := storedConfig()
	current.SiteDisplayName = "Current"
	uc, _ := newTestAppConfigUseCase(newMemoryAppConfigRepo(current), cache, nil)

	cfg, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Current", cfg.SiteDisplayName)
}

func TestAppConfigUpdateSMTP_EncryptsPassword(t *testing.T) {
	repo := new(MockAppConfigRepository)
	cache := new(MockTagCacheRepository)
	ctx := context.Background()

	var captured entity.AppConfigPatch
	repo.On("ApplyPatch", ctx, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(entity.AppConfigPatch)
	}).Return(nil)
	repo.On("Get", ctx).Return(storedConfig(), nil)
	cache.On("InvalidateTag", ctx, constants.AppConfigCacheTag).Return(nil)
	expectCacheMiss(cache, ctx)
	cache.On("Version", ctx, constants.AppConfigCacheTag).Return(int64(0), nil)
	cache.On("SetIfVersion", ctx, constants.AppConfigCacheKey, mock.Anything, mock.Anything, constants.AppConfigCacheTag, int64(0)).Return(true, nil)

	uc, _ := newTestAppConfigUseCase(repo, cache, nil)

	_, err := uc.UpdateSMTP(ctx, dto.SMTPSettingsRequest{
		EmailHost:         "smtp.example.com",
		EmailPort:         465,
		EmailUser:         "mailer@example.com",
		EmailPassword:     "s3cret",
		IsEmailConfigured: true,
	}, "admin-1")
	require.NoError(t, err)

	require.NotNil(t, captured.SMTPPasswordEnc)
	assert.NotEqual(t, "s3cret", *captured.SMTPPasswordEnc)
	plain, err := newTestCipher().Decrypt(*captured.SMTPPasswordEnc)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", plain)

	_, err = uc.UpdateSMTP(ctx, dto.SMTPSettingsRequest{
		EmailHost: "smtp.example.com",
		EmailPort: 587,
		EmailUser: "mailer@example.com",
	}, "admin-1")
	require.NoError(t, err)
	assert.Nil(t, captured.SMTPPasswordEnc)
}

func TestAppConfigHandleInvalidation(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAppConfigRepo(storedConfig())
	uc, _ := newTestAppConfigUseCase(repo, newMemoryTagCache(), nil)

	notice := func(origin string) messaging.Message {
		payload, _ := json.Marshal(appConfigInvalidation{Origin: origin})
		return messaging.Message{Channel: constants.AppConfigInvalidationChannel, Payload: payload}
	}
	memoized := func() bool {
		cfg, _ := uc.readMemo()
		return cfg != nil
	}

	_, err := uc.Get(ctx)
	require.NoError(t, err)
	require.True(t, memoized())

	uc.handleInvalidation(notice(uc.instanceID))
	assert.True(t, memoized(), "own notice keeps the memo")

	uc.handleInvalidation(notice("peer"))
	assert.False(t, memoized(), "peer notice drops the memo")

	_, err = uc.Get(ctx)
	require.NoError(t, err)
	uc.handleInvalidation(messaging.Message{Payload: []byte("{")})
	assert.False(t, memoized(), "malformed notice drops the memo")
}

func TestAppConfigListen_ResubscribesAfterDrop(t *testing.T) {
	repo := new(MockAppConfigRepository)
	cache := new(MockTagCacheRepository)
	msg := new(MockMessagingClient)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expectCacheMiss(cache, mock.Anything)
	cache.On("Version", mock.Anything, constants.AppConfigCacheTag).Return(int64(0), nil)
	cache.On("SetIfVersion", mock.Anything, constants.AppConfigCacheKey, mock.Anything, mock.Anything, constants.AppConfigCacheTag, int64(0)).Return(true, nil)
	repo.On("Get", mock.Anything).Return(storedConfig(), nil)

	dropped := make(chan messaging.Message)
	close(dropped)
	msg.On("Subscribe", mock.Anything, constants.AppConfigInvalidationChannel).Return(nil, errors.New("connection refused")).Once()
	msg.On("Subscribe", mock.Anything, constants.AppConfigInvalidationChannel).Return((<-chan messaging.Message)(dropped), nil).Once()
	msg.On("Subscribe", mock.Anything, constants.AppConfigInvalidationChannel).Run(func(mock.Arguments) {
		cancel()
	}).Return((<-chan messaging.Message)(make(chan messaging.Message)), nil).Once()

	uc, _ := newTestAppConfigUseCase(repo, cache, msg)

	_, err := uc.Get(context.Background())
	require.NoError(t, err)

	err = uc.Listen(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	msg.AssertNumberOfCalls(t, "Subscribe", 3)

	_, err = uc.Get(context.Background())
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 2)
}

func TestAppConfigListen_NoMessaging(t *testing.T) {
	uc, _ := newTestAppConfigUseCase(new(MockAppConfigRepository), new(MockTagCacheRepository), nil)

	assert.NoError(t, uc.Listen(context.Background()))
}
