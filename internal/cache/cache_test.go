package cache

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "p1|2025-06-30|position_betas", Key("p1", "2025-06-30", "position_betas"))
}

func TestGetSet(t *testing.T) {
	c := New(16, time.Minute, zerolog.Nop())

	key := Key("p1", "2025-06-30", "risk_metrics")
	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, 42)
	v, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, c.Len())
}

func TestTTLExpiry(t *testing.T) {
	c := New(16, 50*time.Millisecond, zerolog.Nop())

	key := Key("p1", "2025-06-30", "risk_metrics")
	c.Set(key, "value")

	_, ok := c.Get(key)
	require.True(t, ok)

	time.Sleep(120 * time.Millisecond)

	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestInvalidatePortfolio(t *testing.T) {
	c := New(16, time.Minute, zerolog.Nop())

	c.Set(Key("p1", "2025-06-30", "position_betas"), 1)
	c.Set(Key("p1", "2025-06-30", "factor_exposures"), 2)
	c.Set(Key("p2", "2025-06-30", "position_betas"), 3)

	c.InvalidatePortfolio("p1")

	_, ok := c.Get(Key("p1", "2025-06-30", "position_betas"))
	assert.False(t, ok)
	_, ok = c.Get(Key("p1", "2025-06-30", "factor_exposures"))
	assert.False(t, ok)

	// Other portfolios keep their entries
	v, ok := c.Get(Key("p2", "2025-06-30", "position_betas"))
	require.True(t, ok)
	assert.Equal(t, 3, v)
}
