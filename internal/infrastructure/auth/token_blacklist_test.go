package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	b := NewInMemoryTokenBlacklist()
	now := time.Now()
	b.now = func() time.Time { return now }

	revoked, err := b.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.AddToBlacklist(ctx, "jti-1", time.Minute))
	require.NoError(t, b.AddToBlacklist(ctx, "jti-expired", 0))

	revoked, err = b.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsBlacklisted(ctx, "jti-expired")
	require.NoError(t, err)
	assert.False(t, revoked, "non-positive ttl is ignored")

	now = now.Add(2 * time.Minute)
	revoked, err = b.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, b.revoked)
}

func TestRedisTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	b := NewRedisTokenBlacklist(client)

	require.NoError(t, b.AddToBlacklist(ctx, "jti-1", time.Minute))
	assert.True(t, mr.Exists(DefaultBlacklistPrefix+"jti-1"))

	revoked, err := b.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = b.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.Close()
	_, err = b.IsBlacklisted(ctx, "jti-1")
	assert.Error(t, err)
}
