package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/store"
)

func setupStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewStore(store.NewRedisKV(client), 30*24*time.Hour, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC) }
	return mr, s
}

func TestStore_SaveAndCurrent(t *testing.T) {
	mr, s := setupStore(t)
	ctx := context.Background()

	_, err := s.Current(ctx, 7)
	assert.ErrorIs(t, err, ErrNoSelection)

	require.NoError(t, s.Save(ctx, 7, 42))
	assert.True(t, mr.Exists("monitoring:selection:user:7"))
	assert.Equal(t, 30*24*time.Hour, mr.TTL("monitoring:selection:user:7"))

	sel, err := s.Current(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sel.PatientID)
	assert.True(t, sel.SelectedAt.Equal(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)))

	require.NoError(t, s.Clear(ctx, 7))
	_, err = s.Current(ctx, 7)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestStore_MalformedValue(t *testing.T) {
	mr, s := setupStore(t)
	require.NoError(t, mr.Set("monitoring:selection:user:7", "{oops"))

	_, err := s.Current(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestStore_Resolve(t *testing.T) {
	_, s := setupStore(t)
	ctx := context.Background()

	_, err := s.Resolve(ctx, 7, nil)
	assert.ErrorIs(t, err, ErrNoSelection)

	explicit := int64(12)
	id, err := s.Resolve(ctx, 7, &explicit)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	// 之后不带参数也能拿到
	id, err = s.Resolve(ctx, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	// 其他用户互不影响
	_, err = s.Resolve(ctx, 8, nil)
	assert.ErrorIs(t, err, ErrNoSelection)
}

// failingKV 模拟 Redis 不可用
type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection refused")
}

func (failingKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingKV) Del(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

func TestStore_ResolveWithKVDown(t *testing.T) {
	s := NewStore(failingKV{}, time.Hour, zap.NewNop())
	ctx := context.Background()

	explicit := int64(3)
	id, err := s.Resolve(ctx, 1, &explicit)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	_, err = s.Resolve(ctx, 1, nil)
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = s.Current(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSelection)
}
