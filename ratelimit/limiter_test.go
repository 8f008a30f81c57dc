package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter(t *testing.T) {
	t.Run("valid budget", func(t *testing.T) {
		l, err := NewLimiter(2, 10*time.Second)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("zero points", func(t *testing.T) {
		_, err := NewLimiter(0, 10*time.Second)
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})

	t.Run("negative window", func(t *testing.T) {
		_, err := NewLimiter(2, -time.Second)
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})
}

func TestConsumeBudget(t *testing.T) {
	l, err := NewLimiter(3, time.Hour)
	require.NoError(t, err)

	// First N requests pass, request N+1 is rejected.
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Consume("client-a"), "request %d should pass", i+1)
	}
	err = l.Consume("client-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestConsumeIsolatesIdentities(t *testing.T) {
	l, err := NewLimiter(1, time.Hour)
	require.NoError(t, err)

	require.NoError(t, l.Consume("client-a"))
	assert.ErrorIs(t, l.Consume("client-a"), ErrLimitExceeded)

	// A different identity has its own untouched budget.
	assert.NoError(t, l.Consume("client-b"))
}

func TestBudgetRefillsAfterWindow(t *testing.T) {
	l, err := NewLimiter(2, 100*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, l.Consume("client-a"))
	require.NoError(t, l.Consume("client-a"))
	require.ErrorIs(t, l.Consume("client-a"), ErrLimitExceeded)

	// After the window elapses the budget is available again.
	time.Sleep(120 * time.Millisecond)
	assert.NoError(t, l.Consume("client-a"))
}
