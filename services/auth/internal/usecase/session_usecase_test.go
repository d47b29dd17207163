package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"go.uber.org/zap"
)

func newTestSessionUseCase(repo *memorySessionRepo, clock *fakeClock) *SessionUseCase {
	uc := NewSessionUseCase(zap.NewNop(), repo, nil, nil).(*SessionUseCase)
	uc.now = clock.Now
	return uc
}

func upsertParams(userID, deviceID string, max int) dto.UpsertSessionParams {
	return dto.UpsertSessionParams{
		UserID:            userID,
		DeviceID:          deviceID,
		IP:                "10.0.0.1",
		UserAgent:         "test-agent",
		MaxActiveSessions: max,
		Duration:          30 * time.Minute,
	}
}

func TestSessionUpsert_CreatesThenRefreshesSameDevice(t *testing.T) {
	clock := newFakeClock()
	repo := newMemorySessionRepo()
	uc := newTestSessionUseCase(repo, clock)
	ctx := context.Background()

	first, err := uc.Upsert(ctx, upsertParams("user-1", "device-a", 3))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, clock.Now().Add(30*time.Minute), first.ExpiresAt)

	clock.Advance(10 * time.Minute)
	second, err := uc.Upsert(ctx, upsertParams("user-1", "device-a", 3))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, clock.Now().Add(30*time.Minute), second.ExpiresAt)
	assert.Len(t, repo.all(), 1)
}

func TestSessionUpsert_EvictsEarliestExpiryAtCap(t *testing.T) {
	clock := newFakeClock()
	repo := newMemorySessionRepo()
	uc := newTestSessionUseCase(repo, clock)
	ctx := context.Background()

	a, err := uc.Upsert(ctx, upsertParams("user-1", "device-a", 2))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	b, err := uc.Upsert(ctx, upsertParams("user-1", "device-b", 2))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	c, err := uc.Upsert(ctx, upsertParams("user-1", "device-c", 2))
	require.NoError(t, err)

	assert.Equal(t, []string{a.SessionID}, c.EvictedIDs)

	ids := map[string]bool{}
	for _, s := range repo.all() {
		ids[s.ID] = true
	}
	assert.Equal(t, map[string]bool{b.SessionID: true, c.SessionID: true}, ids)
}

func TestSessionUpsert_EvictionTieBreaksOnID(t *testing.T) {
	clock := newFakeClock()
	repo := newMemorySessionRepo()
	uc := newTestSessionUseCase(repo, clock)
	ctx := context.Background()

	// Same expiry and creation time; the lower id goes first.
	a, err := uc.Upsert(ctx, upsertParams("user-1", "device-a", 2))
	require.NoError(t, err)
	b, err := uc.Upsert(ctx, upsertParams("user-1", "device-b", 2))
	require.NoError(t, err)

	want := a.SessionID
	if b.SessionID < want {
		want = b.SessionID
	}

	c, err := uc.Upsert(ctx, upsertParams("user-1", "device-c", 2))
	require.NoError(t, err)
	assert.Equal(t, []string{want}, c.EvictedIDs)
}

func TestSessionUpsert_IgnoresExpiredSessionsForCap(t *testing.T) {
	clock := newFakeClock()
	repo := newMemorySessionRepo()
	uc := newTestSessionUseCase(repo, clock)
	ctx := context.Background()

	_, err := uc.Upsert(ctx, upsertParams("user-1", "device-a", 1))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	res, err := uc.Upsert(ctx, upsertParams("user-1", "device-b", 1))
	require.NoError(t, err)
	assert.Empty(t, res.EvictedIDs)
	assert.Len(t, repo.all(), 1)
}

func TestSessionUpsert_CapHoldsUnderConcurrency(t *testing.T) {
	clock := newFakeClock()
	repo := newMemorySessionRepo()
	uc := newTestSessionUseCase(repo, clock)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Upsert(ctx, upsertParams("user-1", fmt.Sprintf("device-%d", i), 3))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	active, err := repo.ListActive(ctx, "user-1", clock.Now())
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestSessionUpsert_RequiresDevice(t *testing.T) {
	uc := newTestSessionUseCase(newMemorySessionRepo(), newFakeClock())

	_, err := uc.Upsert(context.Background(), upsertParams("user-1", "", 3))
	assertAuthErrorType(t, err, domainErrors.ErrTypeValidation)
}

func TestSessionExtend(t *testing.T) {
	ctx := context.Background()
	params := func(device string, max int) dto.ExtendSessionParams {
		return dto.ExtendSessionParams{UserID: "user-1", DeviceID: device, MaxActiveSessions: max, Duration: 30 * time.Minute}
	}

	t.Run("live session slides", func(t *testing.T) {
		clock := newFakeClock()
		repo := newMemorySessionRepo()
		uc := newTestSessionUseCase(repo, clock)
		_, err := uc.Upsert(ctx, upsertParams("user-1", "device-a", 3))
		require.NoError(t, err)

		clock.Advance(20 * time.Minute)
		res, err := uc.Extend(ctx, params("device-a", 3))
		require.NoError(t, err)
		assert.Equal(t, dto.ExtendOutcomeExtended, res.Outcome)
		assert.Equal(t, clock.Now().Add(30*time.Minute), res.ExpiresAt)
	})

	t.Run("expired session revived under cap", func(t *testing.T) {
		clock := newFakeClock()
		repo := newMemorySessionRepo()
		uc := newTestSessionUseCase(repo, clock)
		_, err := uc.Upsert(ctx, upsertParams("user-1", "device-a", 3))
		require.NoError(t, err)

		clock.Advance(time.Hour)
		res, err := uc.Extend(ctx, params("device-a", 3))
		require.NoError(t, err)
		assert.Equal(t, dto.ExtendOutcomeRevived, res.Outcome)
		assert.True(t, res.ExpiresAt.After(clock.Now()))
	})

	t.Run("expired session skipped at cap", func(t *testing.T) {
		clock := newFakeClock()
		repo := newMemorySessionRepo()
		uc := newTestSessionUseCase(repo, clock)
		_, err := uc.Upsert(ctx, upsertParams("user-1", "device-a", 1))
		require.NoError(t, err)

		clock.Advance(time.Hour)
		// device-b takes the only slot; device-a stays behind as an expired row
		// until the next upsert for this user
		expiredA, err := repo.FindByDevice(ctx, "user-1", "device-a")
		require.NoError(t, err)
		_, err = uc.Upsert(ctx, upsertParams("user-1", "device-b", 1))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, expiredA))

		res, err := uc.Extend(ctx, params("device-a", 1))
		require.NoError(t, err)
		assert.Equal(t, dto.ExtendOutcomeSkipped, res.Outcome)
		assert.Equal(t, expiredA.ExpiresAt, res.ExpiresAt)
	})

	t.Run("missing session", func(t *testing.T) {
		uc := newTestSessionUseCase(newMemorySessionRepo(), newFakeClock())
		_, err := uc.Extend(ctx, params("device-x", 3))
		assert.ErrorIs(t, err, domainErrors.ErrSessionNotFound)
	})
}

func TestSessionRevokeAndList(t *testing.T) {
	clock := newFakeClock()
	repo := newMemorySessionRepo()
	uc := newTestSessionUseCase(repo, clock)
	ctx := context.Background()

	_, err := uc.Upsert(ctx, upsertParams("user-1", "device-a", 3))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = uc.Upsert(ctx, upsertParams("user-1", "device-b", 3))
	require.NoError(t, err)

	views, err := uc.ListActive(ctx, "user-1", "device-b")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "device-a", views[0].DeviceID)
	assert.False(t, views[0].Current)
	assert.True(t, views[1].Current)

	require.NoError(t, uc.Revoke(ctx, "user-1", "device-a"))
	views, err = uc.ListActive(ctx, "user-1", "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "device-b", views[0].DeviceID)
}

func TestSessionClaimExtension(t *testing.T) {
	ctx := context.Background()
	leases := newMemoryLeases()
	uc := NewSessionUseCase(zap.NewNop(), newMemorySessionRepo(), leases, nil)

	claimed, err := uc.ClaimExtension(ctx, "user-1", "device-a", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, 15*time.Minute, leases.held[constants.SessionExtendLeaseKey("user-1", "device-a")])

	claimed, err = uc.ClaimExtension(ctx, "user-1", "device-a", 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim inside the hold")

	claimed, err = uc.ClaimExtension(ctx, "user-1", "device-b", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "leases are per device")

	leases.release(constants.SessionExtendLeaseKey("user-1", "device-a"))
	claimed, err = uc.ClaimExtension(ctx, "user-1", "device-a", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	_, err = uc.ClaimExtension(ctx, "user-1", " ", time.Minute)
	assert.Error(t, err)

	leases.err = fmt.Errorf("redis down")
	claimed, err = uc.ClaimExtension(ctx, "user-2", "device-a", time.Minute)
	assert.Error(t, err)
	assert.False(t, claimed)
}

func TestSessionClaimExtension_NoLeaseStore(t *testing.T) {
	uc := newTestSessionUseCase(newMemorySessionRepo(), newFakeClock())

	for i := 0; i < 2; i++ {
		claimed, err := uc.ClaimExtension(context.Background(), "user-1", "device-a", time.Minute)
		require.NoError(t, err)
		assert.True(t, claimed)
	}
}
