//go:build integration

package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/safar/artstore/internal/cart"
	"github.com/safar/artstore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	client := testutil.SetupRedis(t)
	ctx := context.Background()
	s := cart.NewRedisStore(client, time.Hour)

	empty, err := s.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	c := cart.New()
	require.NoError(t, c.Add(10, 2))
	require.NoError(t, c.Add(3, 1))
	require.NoError(t, s.Save(ctx, "session-1", c))

	loaded, err := s.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot(), loaded.Snapshot())

	ttl, err := client.TTL(ctx, "artstore:cart:session-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	other, err := s.Load(ctx, "session-2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestRedisStoreSaveReplacesAndDelete(t *testing.T) {
	client := testutil.SetupRedis(t)
	ctx := context.Background()
	s := cart.NewRedisStore(client, time.Hour)

	c := cart.New()
	require.NoError(t, c.Add(1, 1))
	require.NoError(t, c.Add(2, 1))
	require.NoError(t, s.Save(ctx, "sid", c))

	replaced := cart.New()
	require.NoError(t, replaced.Add(2, 4))
	require.NoError(t, s.Save(ctx, "sid", replaced))

	loaded, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, []cart.Line{{ArtworkID: 2, Quantity: 4}}, loaded.Snapshot())

	require.NoError(t, s.Delete(ctx, "sid"))
	gone, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, gone.IsEmpty())
}
