package featureflag

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kapu/messenger-api-go/internal/constants"
	"github.com/kapu/messenger-api-go/internal/service/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisStore(t *testing.T) (*cache.CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCacheServiceWithClient(client, zap.NewNop()), mr
}

func TestLoadDefaults(t *testing.T) {
	store, _ := newRedisStore(t)
	flags := New(store, false, zap.NewNop())

	require.NoError(t, flags.Load(context.Background()))

	assert.True(t, flags.Enabled(AttachContact))
	assert.False(t, flags.Enabled(SecurePrivate))
	assert.False(t, flags.Enabled(QuickCompose))
	assert.Len(t, flags.Snapshot(), len(Known()))
}

func TestLoadReadsStoredValues(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.HSet(constants.CacheKeys.FeatureFlags, string(QuickCompose), "true")
	mr.HSet(constants.CacheKeys.FeatureFlags, string(AttachContact), "false")
	mr.HSet(constants.CacheKeys.FeatureFlags, string(SecurePrivate), "maybe")

	flags := New(store, false, zap.NewNop())
	require.NoError(t, flags.Load(context.Background()))

	assert.True(t, flags.Enabled(QuickCompose))
	assert.False(t, flags.Enabled(AttachContact))
	assert.False(t, flags.Enabled(SecurePrivate))
}

func TestGlobalDefaultForcesOn(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.HSet(constants.CacheKeys.FeatureFlags, string(NeverSendFromWatch), "false")

	flags := New(store, true, zap.NewNop())
	require.NoError(t, flags.Load(context.Background()))

	for _, flag := range Known() {
		assert.True(t, flags.Enabled(flag), "flag %s", flag)
	}
}

func TestUpdatePersists(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	flags := New(store, false, zap.NewNop())
	require.NoError(t, flags.Load(ctx))
	require.NoError(t, flags.Update(ctx, SecurePrivate, true))

	assert.True(t, flags.Enabled(SecurePrivate))
	assert.Equal(t, "true", mr.HGet(constants.CacheKeys.FeatureFlags, string(SecurePrivate)))

	reloaded := New(store, false, zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	assert.True(t, reloaded.Enabled(SecurePrivate))
}

func TestUpdateRejectsUnknownFlag(t *testing.T) {
	store, _ := newRedisStore(t)
	flags := New(store, false, zap.NewNop())

	err := flags.Update(context.Background(), Flag("flag_does_not_exist"), true)
	require.Error(t, err)

	_, err = ParseFlag("nope")
	assert.Error(t, err)
}

type failingStore struct{}

func (failingStore) HGetAll(context.Context, string) (map[string]string, error) {
	return nil, stderrors.New("redis down")
}

func (failingStore) HSet(context.Context, string, string, string) error {
	return stderrors.New("redis down")
}

func TestStoreFailuresPropagate(t *testing.T) {
	flags := New(failingStore{}, false, zap.NewNop())

	assert.Error(t, flags.Load(context.Background()))
	assert.Error(t, flags.Update(context.Background(), QuickCompose, true))
	assert.False(t, flags.Enabled(QuickCompose))
}
