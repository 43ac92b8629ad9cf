package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(time.Hour)
	defer mc.Close()

	_, err := mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "k", []byte("Doe^Jane"), time.Minute))
	v, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("Doe^Jane"), v)

	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mc.Delete(ctx, "k"))
	ok, _ = mc.Exists(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(time.Hour)
	defer mc.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set(ctx, "short", []byte("x"), time.Second))
	require.NoError(t, mc.Set(ctx, "forever", []byte("y"), 0))

	now = now.Add(2 * time.Second)
	_, err := mc.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get(ctx, "forever")
	assert.NoError(t, err)

	mc.sweep()
	assert.Equal(t, 1, mc.Len())
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(time.Hour)
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, PatientKey("A", "1"), []byte("a"), 0))
	require.NoError(t, mc.Set(ctx, PatientKey("A", "2"), []byte("b"), 0))
	require.NoError(t, mc.Set(ctx, "other", []byte("c"), 0))

	require.NoError(t, mc.Clear(ctx, KeyPrefix+"patient:*"))
	assert.Equal(t, 1, mc.Len())
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	mc := NewMemoryCache(time.Hour)
	assert.NoError(t, mc.Close())
	assert.NoError(t, mc.Close())
}

func TestPatientKey(t *testing.T) {
	assert.Equal(t, "img2pacs:patient:dcm4chee@localhost:11112:12345",
		PatientKey("DCM4CHEE@localhost:11112", "12345"))
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
