package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis_EmptyURLDisables(t *testing.T) {
	client, err := NewRedis(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedis_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedis_BadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "http://not-redis")
	assert.Error(t, err)
}
