package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

type stubTokens struct {
	identities map[string]*entity.Identity
}

func (s *stubTokens) Issue(user *entity.User, deviceID string, sessionExpiresAt time.Time) (string, time.Time, error) {
	return "issued", sessionExpiresAt, nil
}

func (s *stubTokens) Parse(token string) (*entity.Identity, error) {
	id, ok := s.identities[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return id, nil
}

type stubAppConfig struct {
	cfg   *entity.AppConfig
	err   error
	calls int
}

func (s *stubAppConfig) Get(ctx context.Context) (*entity.AppConfig, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

func (s *stubAppConfig) GetOrDefault(ctx context.Context) *entity.AppConfig {
	if s.err != nil || s.cfg == nil {
		return entity.DefaultAppConfig()
	}
	return s.cfg
}

func (s *stubAppConfig) Update(ctx context.Context, patch entity.AppConfigPatch, actorID string) (*entity.AppConfig, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAppConfig) UpdateGeneral(ctx context.Context, req dto.GeneralSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAppConfig) UpdateSEO(ctx context.Context, req dto.SEOSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAppConfig) UpdateUserPolicy(ctx context.Context, req dto.UserSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAppConfig) UpdateSMTP(ctx context.Context, req dto.SMTPSettingsRequest, actorID string) (*entity.AppConfig, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAppConfig) Invalidate() {}

func (s *stubAppConfig) Listen(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type stubSessions struct {
	mu       sync.Mutex
	claims   map[string]bool
	claimErr error
	extended []dto.ExtendSessionParams
	holds    []time.Duration
	outcome  dto.ExtendOutcome
	err      error
}

func (s *stubSessions) ClaimExtension(ctx context.Context, userID, deviceID string, hold time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds = append(s.holds, hold)
	if s.claimErr != nil {
		return false, s.claimErr
	}
	if s.claims == nil {
		s.claims = map[string]bool{}
	}
	key := userID + ":" + deviceID
	if s.claims[key] {
		return false, nil
	}
	s.claims[key] = true
	return true, nil
}

func (s *stubSessions) extendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.extended)
}

func (s *stubSessions) Upsert(ctx context.Context, params dto.UpsertSessionParams) (*dto.UpsertSessionResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSessions) Extend(ctx context.Context, params dto.ExtendSessionParams) (*dto.ExtendSessionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extended = append(s.extended, params)
	if s.err != nil {
		return nil, s.err
	}
	outcome := s.outcome
	if outcome == "" {
		outcome = dto.ExtendOutcomeExtended
	}
	return &dto.ExtendSessionResult{Outcome: outcome}, nil
}

func (s *stubSessions) Revoke(ctx context.Context, userID, deviceID string) error {
	return nil
}

func (s *stubSessions) ListActive(ctx context.Context, userID, currentDeviceID string) ([]dto.SessionView, error) {
	return nil, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
