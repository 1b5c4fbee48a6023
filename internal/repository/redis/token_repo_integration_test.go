//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fandom-project/back-end/internal/config"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	addr, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	rdb, err := Open(config.Redis{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestTokenRepository(t *testing.T) {
	rdb := setupRedis(t)
	repo := NewTokenRepository(rdb, time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Verify(ctx, 1, "t1"), ErrTokenNotFound)

	require.NoError(t, repo.Save(ctx, 1, "t1"))
	assert.NoError(t, repo.Verify(ctx, 1, "t1"))

	// 重新登录后旧 token 失效
	require.NoError(t, repo.Save(ctx, 1, "t2"))
	assert.ErrorIs(t, repo.Verify(ctx, 1, "t1"), ErrTokenMismatch)

	ttl, err := rdb.TTL(ctx, tokenKey(1)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, repo.Delete(ctx, 1))
	assert.ErrorIs(t, repo.Verify(ctx, 1, "t2"), ErrTokenNotFound)
}
