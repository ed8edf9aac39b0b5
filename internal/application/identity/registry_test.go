package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankincense-labs/cx-management/internal/shared/testutil"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry(func() *Store { return newTestStore(nil, nil, newMemoryProfiles()) }, time.Hour, testutil.NewMockLogger())
	defer r.Close()

	id, store, created := r.GetOrCreate("")
	require.True(t, created)
	require.NotEmpty(t, id)

	again, sameStore, created := r.GetOrCreate(id)
	assert.False(t, created)
	assert.Equal(t, id, again)
	assert.Same(t, store, sameStore)

	other, _, created := r.GetOrCreate("unknown-session")
	assert.True(t, created)
	assert.NotEqual(t, "unknown-session", other)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SweepEvictsIdleSessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(func() *Store { return newTestStore(nil, nil, newMemoryProfiles()) }, 30*time.Minute, testutil.NewMockLogger())
	r.now = func() time.Time { return now }
	defer r.Close()

	stale, _ := r.Create()
	now = now.Add(20 * time.Minute)
	fresh, _ := r.Create()

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, ok := r.Get(stale)
	assert.False(t, ok)
	_, ok = r.Get(fresh)
	assert.True(t, ok)
}

func TestRegistry_SweepKeepsWatchedSessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(func() *Store { return newTestStore(nil, nil, newMemoryProfiles()) }, 30*time.Minute, testutil.NewMockLogger())
	r.now = func() time.Time { return now }
	defer r.Close()

	id, store := r.Create()
	unsubscribe := store.Subscribe(func(State) {})

	now = now.Add(time.Hour)
	assert.Equal(t, 0, r.Sweep())
	got, ok := r.Get(id)
	require.True(t, ok)
	assert.Same(t, store, got)

	// Once the watcher leaves, the session ages out like any other.
	unsubscribe()
	now = now.Add(time.Hour)
	assert.Equal(t, 1, r.Sweep())
	_, ok = r.Get(id)
	assert.False(t, ok)
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry(func() *Store { return newTestStore(nil, nil, newMemoryProfiles()) }, time.Hour, testutil.NewMockLogger())
	id, _ := r.Create()
	r.Remove(id)
	r.Remove(id)
	assert.Equal(t, 0, r.Len())
}
