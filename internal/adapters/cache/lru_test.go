package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

var _ ports.Cache = (*LRU)(nil)

func TestLRU_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(10, time.Minute)

	_, err := c.Get(ctx, "missing")
	require.True(t, domain.IsNotFound(err))

	value := []byte(`["Nutrition"]`)
	require.NoError(t, c.Set(ctx, "digest", value))

	value[0] = 'x'

	got, err := c.Get(ctx, "digest")
	require.NoError(t, err)
	assert.Equal(t, `["Nutrition"]`, string(got))

	require.NoError(t, c.Delete(ctx, "digest"))
	require.NoError(t, c.Delete(ctx, "digest"))

	_, err = c.Get(ctx, "digest")
	assert.True(t, domain.IsNotFound(err))
}

func TestLRU_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(2, time.Minute)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	require.NoError(t, c.Set(ctx, "c", []byte("3")))

	assert.Equal(t, 2, c.Len())

	_, err := c.Get(ctx, "a")
	assert.True(t, domain.IsNotFound(err))
}

func TestLRU_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(10, 20*time.Millisecond)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "a")
		return domain.IsNotFound(err)
	}, time.Second, 10*time.Millisecond)
}

func TestNewLRU_Defaults(t *testing.T) {
	c := NewLRU(0, 0)
	require.NoError(t, c.Set(context.Background(), "k", nil))
	assert.Equal(t, 1, c.Len())
}
