package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
)

func newTestStore(t *testing.T) (*CacheStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheStore(client, "logitrax:"), mr
}

var _ cache.Cache = (*CacheStore)(nil)

// cachedKeys 去掉失效代数key后的缓存条目
func cachedKeys(mr *miniredis.Miniredis) []string {
	var keys []string
	for _, k := range mr.Keys() {
		if !strings.HasPrefix(k, "logitrax:gen:") {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestCacheStore_SetGetWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, cache.KeyInventoryList, []string{"GamePal"}, 30*time.Second))
	assert.True(t, mr.Exists("logitrax:inventory:list"))
	assert.Equal(t, 30*time.Second, mr.TTL("logitrax:inventory:list"))

	var got []string
	hit, err := store.Get(ctx, cache.KeyInventoryList, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"GamePal"}, got)

	mr.FastForward(31 * time.Second)
	hit, err = store.Get(ctx, cache.KeyInventoryList, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheStore_InvalidatePrefix(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 250; i++ {
		key := cache.OrdersByStatusKey("Pending", cache.ManagerScope, i, 10)
		require.NoError(t, store.Set(ctx, key, i, time.Minute))
	}
	require.NoError(t, store.Set(ctx, cache.KeyInventoryList, 1, time.Minute))
	require.Len(t, cachedKeys(mr), 251)

	// 超过一批SCAN的量也要全部删掉
	require.NoError(t, store.InvalidatePrefix(ctx, cache.PrefixOrdersByStatus))
	assert.Equal(t, []string{"logitrax:inventory:list"}, cachedKeys(mr))

	require.NoError(t, store.Invalidate(ctx, cache.KeyInventoryList))
	assert.Empty(t, cachedKeys(mr))
}

func TestCacheStore_SetIfGenerationRejectsStaleRefill(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	key := cache.OrdersByStatusKey("", cache.ManagerScope, 1, 10)

	gen, err := store.Generation(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, gen)

	// 读库期间有订单写入
	require.NoError(t, store.InvalidatePrefix(ctx, cache.PrefixOrdersByStatus))

	stored, err := store.SetIfGeneration(ctx, key, []int{1}, time.Minute, gen)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists("logitrax:"+key))

	gen, err = store.Generation(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	stored, err = store.SetIfGeneration(ctx, key, []int{1, 2}, time.Minute, gen)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, time.Minute, mr.TTL("logitrax:"+key))

	// 别的族失效不影响订单族
	require.NoError(t, store.Invalidate(ctx, cache.KeyInventoryList))
	stored, err = store.SetIfGeneration(ctx, key, []int{1, 2}, time.Minute, gen)
	require.NoError(t, err)
	assert.True(t, stored)

	invGen, err := store.Generation(ctx, cache.KeyInventoryList)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), invGen)
}

func TestCacheStore_ErrorsWhenServerDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	var v int
	_, err := store.Get(context.Background(), "k", &v)
	assert.Error(t, err)
}
