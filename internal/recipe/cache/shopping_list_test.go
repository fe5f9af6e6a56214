package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/foodgram/internal/recipe/domain"
)

func newCache(t *testing.T) (*RedisShoppingListCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisShoppingListCache(client, time.Minute), mr
}

func TestShoppingListCacheRoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	_, hit, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	items := []domain.ShoppingItem{{Name: "flour", Unit: "g", Amount: 300}}
	require.NoError(t, c.Set(ctx, 1, 0, items))
	assert.Equal(t, time.Minute, mr.TTL("shopping_list:1"))

	got, hit, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, items, got)
}

func TestShoppingListCacheEmptyListIsAHit(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 2, 0, nil))
	got, hit, err := c.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, got)
}

func TestShoppingListCacheInvalidate(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	for _, id := range []uint{1, 2, 3} {
		require.NoError(t, c.Set(ctx, id, 0, []domain.ShoppingItem{{Name: "egg", Unit: "pcs", Amount: 1}}))
	}
	require.NoError(t, c.Invalidate(ctx, 1, 3))
	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists("shopping_list:1"))
	assert.True(t, mr.Exists("shopping_list:2"))
	assert.False(t, mr.Exists("shopping_list:3"))

	gen, err := c.Version(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, gen)
	gen, err = c.Version(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, gen)
}

func TestShoppingListCacheSetAfterInvalidateIsDropped(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	version, err := c.Version(ctx, 7)
	require.NoError(t, err)

	// The list was built from old rows; the cart changed before it got written.
	require.NoError(t, c.Invalidate(ctx, 7))
	require.NoError(t, c.Set(ctx, 7, version, []domain.ShoppingItem{{Name: "flour", Unit: "g", Amount: 200}}))
	assert.False(t, mr.Exists("shopping_list:7"))

	fresh, err := c.Version(ctx, 7)
	require.NoError(t, err)
	items := []domain.ShoppingItem{{Name: "flour", Unit: "g", Amount: 300}}
	require.NoError(t, c.Set(ctx, 7, fresh, items))

	got, hit, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, items, got)
}

func TestShoppingListCacheCorruptEntryIsMiss(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("shopping_list:5", "{broken"))

	_, hit, err := c.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, hit)
}
