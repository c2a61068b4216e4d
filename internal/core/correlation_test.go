package core

import (
	"testing"
	"time"

	"github.com/incidentkit/incident-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationRegistry_RegisterAndResolve(t *testing.T) {
	registry := NewCorrelationRegistry(30 * time.Second)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, registry.Register("tok1", "team1", now))

	action, ok := registry.Resolve("tok1")
	require.True(t, ok)
	assert.Equal(t, "tok1", action.ClientToken)
	assert.Equal(t, "team1", action.TeamID)
	assert.Equal(t, now, action.RequestedAt)

	// Resolve is remove-once; a second call reports nothing.
	_, ok = registry.Resolve("tok1")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())
}

func TestCorrelationRegistry_DuplicateRegister(t *testing.T) {
	registry := NewCorrelationRegistry(30 * time.Second)
	now := time.Now()

	require.NoError(t, registry.Register("tok1", "team1", now))
	err := registry.Register("tok1", "team2", now)

	require.ErrorIs(t, err, domain.ErrTokenRegistered)

	// The original entry is kept.
	action, ok := registry.Resolve("tok1")
	require.True(t, ok)
	assert.Equal(t, "team1", action.TeamID)
}

func TestCorrelationRegistry_Sweep(t *testing.T) {
	registry := NewCorrelationRegistry(30 * time.Second)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, registry.Register("old1", "team1", base))
	require.NoError(t, registry.Register("old2", "team1", base.Add(time.Second)))
	require.NoError(t, registry.Register("fresh", "team1", base.Add(20*time.Second)))

	expired := registry.Sweep(base.Add(31 * time.Second))

	require.Len(t, expired, 2)
	assert.Equal(t, "old1", expired[0].ClientToken)
	assert.Equal(t, "old2", expired[1].ClientToken)

	// Expired entries are gone even though Resolve was never called.
	_, ok := registry.Resolve("old1")
	assert.False(t, ok)
	_, ok = registry.Resolve("fresh")
	assert.True(t, ok)
}

func TestCorrelationRegistry_SweepSkipsResolved(t *testing.T) {
	registry := NewCorrelationRegistry(30 * time.Second)
	base := time.Now()

	require.NoError(t, registry.Register("tok1", "team1", base))
	_, ok := registry.Resolve("tok1")
	require.True(t, ok)

	expired := registry.Sweep(base.Add(time.Minute))
	assert.Empty(t, expired)
}

func TestCorrelationRegistry_SweepBoundary(t *testing.T) {
	registry := NewCorrelationRegistry(30 * time.Second)
	base := time.Now()

	require.NoError(t, registry.Register("tok1", "team1", base))

	// Exactly at the timeout the entry survives; past it, it expires.
	assert.Empty(t, registry.Sweep(base.Add(30*time.Second)))
	assert.Len(t, registry.Sweep(base.Add(30*time.Second+time.Millisecond)), 1)
}
