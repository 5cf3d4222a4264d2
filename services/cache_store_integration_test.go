//go:build integration

package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		redisC.Terminate(ctx)
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() {
		client.Close()
	})
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisCache_Integration(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)
	cache := NewRedisCache(client, "test:")

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))
	got, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(got))

	ttl, err := client.TTL(ctx, "test:k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, cache.Delete(ctx, "k"))
	_, ok = cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache_UnavailableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	defer client.Close()
	cache := NewRedisCache(client, "")

	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Error(t, cache.Set(context.Background(), "k", []byte("v"), time.Minute))
}
