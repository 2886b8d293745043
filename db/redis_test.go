package db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/blobsas/config"
)

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	sealed, err := c.Encrypt([]byte("X"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("X"), sealed)

	opened, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("X"), opened)

	sealed[len(sealed)-1] ^= 0xff
	_, err = c.Decrypt(sealed)
	assert.Error(t, err)

	_, err = c.Decrypt([]byte("abc"))
	assert.Error(t, err)

	_, err = NewCipher([]byte("short"))
	assert.Error(t, err)
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRateLimiter(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := rl.Allow(ctx, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
	}

	allowed, err := rl.Allow(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = rl.Allow(ctx, "10.0.0.2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	addr := mr.Addr()
	client, err := NewRedisClient(context.Background(), config.RedisConfiguration{Addr: addr})
	require.NoError(t, err)
	CloseRedis(client)

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfiguration{Addr: addr})
	assert.Error(t, err)
}
