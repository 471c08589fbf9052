package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis_Success(t *testing.T) {
	mockRedis := miniredis.RunT(t)

	client, err := InitRedis(context.Background(), mockRedis.Addr(), "", 0)

	require.NoError(t, err, "InitRedis should not return an error")
	require.NotNil(t, client, "Redis client should not be nil")
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err(), "Should be able to ping Redis")
}

func TestInitRedis_WithPassword(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	mockRedis.RequireAuth("testpassword")

	client, err := InitRedis(context.Background(), mockRedis.Addr(), "testpassword", 0)

	require.NoError(t, err, "InitRedis should work with correct password")
	require.NotNil(t, client)
	client.Close()
}

func TestInitRedis_WithWrongPassword(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	mockRedis.RequireAuth("correctPassword")

	client, err := InitRedis(context.Background(), mockRedis.Addr(), "wrongpassword", 0)

	assert.Error(t, err, "InitRedis should return error with wrong password")
	assert.Nil(t, client, "Redis client should be nil on error")
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestInitRedis_InvalidAddress(t *testing.T) {
	client, err := InitRedis(context.Background(), "invalid-address:6379", "", 0)

	assert.Error(t, err, "InitRedis should return error with invalid address")
	assert.Nil(t, client)
}

func TestInitRedis_SelectsDatabase(t *testing.T) {
	mockRedis := miniredis.RunT(t)

	client, err := InitRedis(context.Background(), mockRedis.Addr(), "", 5)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "testkey", "testvalue", time.Minute).Err())

	val, err := mockRedis.DB(5).Get("testkey")
	require.NoError(t, err)
	assert.Equal(t, "testvalue", val)
}
