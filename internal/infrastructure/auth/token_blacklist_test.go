package auth_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_Expiry(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "short", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	revoked, err := bl.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_NonPositiveTTLIsNoop(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "gone", 0))
	revoked, err := bl.IsRevoked(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeAllFor(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issued := time.Now().Add(-time.Minute)

	revoked, err := bl.IsRevokedForUser(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.RevokeAllFor(ctx, "user-1", time.Hour))

	revoked, err = bl.IsRevokedForUser(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsRevokedForUser(ctx, "user-1", time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after revocation stay valid")

	revoked, err = bl.IsRevokedForUser(ctx, "user-2", issued)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_Claim(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	first, err := bl.Claim(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := bl.Claim(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, again)

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "jti-2", time.Hour))
	claimed, err := bl.Claim(ctx, "jti-2", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed, "an already revoked token cannot be claimed")

	claimed, err = bl.Claim(ctx, "jti-3", 0)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestInMemoryTokenBlacklist_ClaimIsExclusive(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := bl.Claim(ctx, "shared", time.Hour); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryTokenBlacklist_RevokeAllForKeepsLaterTokens(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.RevokeAllFor(ctx, "user-1", time.Hour))
	reissued := time.Now().Truncate(time.Millisecond)

	revoked, err := bl.IsRevokedForUser(ctx, "user-1", reissued)
	require.NoError(t, err)
	assert.False(t, revoked, "a token issued right after the revocation stays valid")

	revoked, err = bl.IsRevokedForUser(ctx, "user-1", reissued.Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, revoked)
}
