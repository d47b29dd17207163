package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-starter/pkg/messaging"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// AppConfigCacheConfig controls the two cache layers in front of the config row.
type AppConfigCacheConfig struct {
	// TTL bounds the Redis copy.
	TTL time.Duration
	// MemoTTL bounds the in-process copy.
	MemoTTL time.Duration
}

type appConfigInvalidation struct {
	Origin    string    `json:"origin"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppConfigUseCase resolves the singleton config through an in-process memo,
// the Redis tag cache and finally PostgreSQL
type AppConfigUseCase struct {
	logger           *zap.Logger
	config           AppConfigCacheConfig
	configRepository repository.AppConfigRepository
	cacheRepository  repository.TagCacheRepository
	messaging        messaging.RedisClient
	cipher           interfaces.SecretCipher
	auditLog         interfaces.AuditLogUseCase
	instanceID       string
	now              func() time.Time

	resubscribeInitial time.Duration
	resubscribeMax     time.Duration

	mu         sync.RWMutex
	memo       *entity.AppConfig
	memoExpiry time.Time
	// generation changes on every invalidation so a load that raced with an
	// update does not repopulate the memo with the old value.
	generation uint64
}

// NewAppConfigUseCase creates the config resolver. messaging may be nil for a
// single process deployment.
func NewAppConfigUseCase(
	logger *zap.Logger,
	config AppConfigCacheConfig,
	configRepo repository.AppConfigRepository,
	cacheRepo repository.TagCacheRepository,
	messagingClient messaging.RedisClient,
	cipher interfaces.SecretCipher,
	auditLog interfaces.AuditLogUseCase,
) *AppConfigUseCase {
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	if config.MemoTTL <= 0 {
		config.MemoTTL = 5 * time.Second
	}

	return &AppConfigUseCase{
		logger:           logger,
		config:           config,
		configRepository: configRepo,
		cacheRepository:  cacheRepo,
		messaging:        messagingClient,
		cipher:           cipher,
		auditLog:         auditLog,
		instanceID:       uuid.NewString(),
		now:              time.Now,

		resubscribeInitial: time.Second,
		resubscribeMax:     30 * time.Second,
	}
}

var _ interfaces.AppConfigUseCase = (*AppConfigUseCase)(nil)

// Get returns the resolved config
func (uc *AppConfigUseCase) Get(ctx context.Context) (*entity.AppConfig, error) {
	cfg, generation := uc.readMemo()
	if cfg != nil {
		return cfg, nil
	}

	if cfg = uc.readCache(ctx); cfg != nil {
		uc.writeMemo(cfg, generation)
		return cfg, nil
	}

	// The tag version is read before the row so an update that lands while
	// the row is in flight makes the cache write below a no-op.
	version, versionErr := uc.cacheRepository.Version(ctx, constants.AppConfigCacheTag)
	if versionErr != nil {
		uc.logger.Warn("App config cache version unavailable", zap.Error(versionErr))
	}

	cfg, err := uc.configRepository.Get(ctx)
	if err != nil {
		uc.logger.Error("Failed to load app config", zap.Error(err))
		return nil, err
	}
	if cfg == nil {
		cfg = entity.DefaultAppConfig()
	}

	if versionErr == nil {
		uc.writeCache(ctx, cfg, version)
	}
	uc.writeMemo(cfg, generation)
	return cfg, nil
}

// GetOrDefault never fails; errors resolve to the defaults
func (uc *AppConfigUseCase) GetOrDefault(ctx context.Context) *entity.AppConfig {
	cfg, err := uc.Get(ctx)
	if err != nil {
		uc.logger.Warn("Serving default app config", zap.Error(err))
		return entity.DefaultAppConfig()
	}
	return cfg
}

// Update applies patch, then drops the Redis entry, the local memo and every
// other process's memo. Concurrent updates resolve per column, last write wins.
func (uc *AppConfigUseCase) Update(ctx context.Context, patch entity.AppConfigPatch, actorID string) (*entity.AppConfig, error) {
	return uc.update(ctx, "config", patch, actorID)
}

func (uc *AppConfigUseCase) UpdateGeneral(ctx context.Context, req dto.GeneralSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return uc.update(ctx, "general", req.Patch(), actorID)
}

func (uc *AppConfigUseCase) UpdateSEO(ctx context.Context, req dto.SEOSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return uc.update(ctx, "seo", req.Patch(), actorID)
}

func (uc *AppConfigUseCase) UpdateUserPolicy(ctx context.Context, req dto.UserSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return uc.update(ctx, "user", req.Patch(), actorID)
}

// UpdateSMTP stores the SMTP settings. The password is encrypted and only
// replaced when a new one is given.
func (uc *AppConfigUseCase) UpdateSMTP(ctx context.Context, req dto.SMTPSettingsRequest, actorID string) (*entity.AppConfig, error) {
	host := strings.TrimSpace(req.EmailHost)
	user := strings.TrimSpace(req.EmailUser)
	patch := entity.AppConfigPatch{
		SMTPHost:       &host,
		SMTPPort:       &req.EmailPort,
		SMTPUser:       &user,
		SMTPConfigured: &req.IsEmailConfigured,
	}

	if password := strings.TrimSpace(req.EmailPassword); password != "" {
		encrypted, err := uc.cipher.Encrypt(password)
		if err != nil {
			uc.logger.Error("Failed to encrypt SMTP password", zap.Error(err))
			return nil, fmt.Errorf("failed to encrypt smtp password: %w", err)
		}
		patch.SMTPPasswordEnc = &encrypted
	}

	return uc.update(ctx, "smtp", patch, actorID)
}

func (uc *AppConfigUseCase) update(ctx context.Context, section string, patch entity.AppConfigPatch, actorID string) (*entity.AppConfig, error) {
	if patch.IsEmpty() {
		return uc.Get(ctx)
	}

	if err := uc.configRepository.ApplyPatch(ctx, patch); err != nil {
		uc.logger.Error("Failed to update app config",
			zap.String("section", section),
			zap.Error(err),
		)
		return nil, err
	}

	uc.invalidateShared(ctx)

	var actor *string
	if actorID != "" {
		actor = stringPtr(actorID)
	}
	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeConfigUpdated, map[string]interface{}{
		"section": section,
	}, actor)

	uc.logger.Info("App config updated", zap.String("section", section))
	return uc.Get(ctx)
}

// invalidateShared drops the Redis entry and the local memo, then tells the
// other processes to drop theirs.
func (uc *AppConfigUseCase) invalidateShared(ctx context.Context) {
	if err := uc.cacheRepository.InvalidateTag(ctx, constants.AppConfigCacheTag); err != nil {
		uc.logger.Error("Failed to invalidate app config cache", zap.Error(err))
	}
	uc.Invalidate()

	if uc.messaging == nil {
		return
	}
	notice := appConfigInvalidation{Origin: uc.instanceID, UpdatedAt: uc.now()}
	if err := uc.messaging.Publish(ctx, constants.AppConfigInvalidationChannel, notice); err != nil {
		uc.logger.Warn("Failed to publish app config invalidation", zap.Error(err))
	}
}

// Invalidate drops the in-process copy
func (uc *AppConfigUseCase) Invalidate() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.memo = nil
	uc.generation++
}

// Listen drops the memo whenever another process publishes an update. A
// dropped subscription is re-established with exponential backoff, and the
// memo is dropped too since notices may have been missed meanwhile.
func (uc *AppConfigUseCase) Listen(ctx context.Context) error {
	if uc.messaging == nil {
		return nil
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = uc.resubscribeInitial
	retry.MaxInterval = uc.resubscribeMax
	retry.MaxElapsedTime = 0
	retry.Reset()

	for {
		subscribed, err := uc.listenOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if subscribed {
			uc.Invalidate()
			retry.Reset()
		}

		wait := retry.NextBackOff()
		if err != nil {
			uc.logger.Warn("App config invalidation subscribe failed",
				zap.Duration("retryIn", wait),
				zap.Error(err),
			)
		} else {
			uc.logger.Warn("App config invalidation subscription dropped",
				zap.Duration("retryIn", wait),
			)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// listenOnce consumes one subscription until it drops or ctx is done.
func (uc *AppConfigUseCase) listenOnce(ctx context.Context) (bool, error) {
	messages, err := uc.messaging.Subscribe(ctx, constants.AppConfigInvalidationChannel)
	if err != nil {
		return false, err
	}

	for {
		select {
		case <-ctx.Done():
			return true, nil
		case msg, ok := <-messages:
			if !ok {
				return true, nil
			}
			uc.handleInvalidation(msg)
		}
	}
}

func (uc *AppConfigUseCase) handleInvalidation(msg messaging.Message) {
	var notice appConfigInvalidation
	if err := msg.Decode(&notice); err != nil {
		uc.logger.Warn("Malformed app config invalidation", zap.Error(err))
		uc.Invalidate()
		return
	}
	if notice.Origin == uc.instanceID {
		return
	}
	uc.logger.Debug("App config invalidated by peer", zap.String("origin", notice.Origin))
	uc.Invalidate()
}

func (uc *AppConfigUseCase) readMemo() (*entity.AppConfig, uint64) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.memo != nil && uc.now().Before(uc.memoExpiry) {
		return uc.memo.Clone(), uc.generation
	}
	return nil, uc.generation
}

func (uc *AppConfigUseCase) writeMemo(cfg *entity.AppConfig, generation uint64) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if generation != uc.generation {
		return
	}
	// Callers own what they are handed; the memo keeps its own copy.
	uc.memo = cfg.Clone()
	uc.memoExpiry = uc.now().Add(uc.config.MemoTTL)
}

func (uc *AppConfigUseCase) readCache(ctx context.Context) *entity.AppConfig {
	raw, err := uc.cacheRepository.Get(ctx, constants.AppConfigCacheKey, constants.AppConfigCacheTag)
	if err != nil {
		if !uc.cacheRepository.IsNotFound(err) {
			uc.logger.Warn("App config cache unavailable", zap.Error(err))
		}
		return nil
	}

	var cfg entity.AppConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		uc.logger.Warn("Discarding malformed cached app config", zap.Error(err))
		return nil
	}
	if cfg.Keywords == nil {
		cfg.Keywords = []string{}
	}
	return &cfg
}

func (uc *AppConfigUseCase) writeCache(ctx context.Context, cfg *entity.AppConfig, version int64) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		uc.logger.Warn("Failed to encode app config for cache", zap.Error(err))
		return
	}
	stored, err := uc.cacheRepository.SetIfVersion(ctx, constants.AppConfigCacheKey, string(raw), uc.config.TTL, constants.AppConfigCacheTag, version)
	if err != nil {
		uc.logger.Warn("Failed to cache app config", zap.Error(err))
		return
	}
	if !stored {
		uc.logger.Debug("Skipped caching app config loaded before an update", zap.Int64("version", version))
	}
}
