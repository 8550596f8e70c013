package state

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	t.Parallel()
	m := NewManager()

	require.NoError(t, m.Create("exec-1", map[string]any{"count": 1}))

	got, err := m.Get("exec-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got["count"])

	t.Run("duplicate create is an error", func(t *testing.T) {
		err := m.Create("exec-1", nil)
		var dup *DuplicateStateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "exec-1", dup.ExecutionID)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := m.Get("exec-1")
		require.NoError(t, err)
		got["count"] = 99

		again, err := m.Get("exec-1")
		require.NoError(t, err)
		assert.Equal(t, 1, again["count"])
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	m := NewManager()
	require.NoError(t, m.Create("exec-1", map[string]any{"a": 1}))

	require.NoError(t, m.Update("exec-1", map[string]any{"b": 2}))
	got, err := m.Get("exec-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got["a"])
	assert.Equal(t, 2, got["b"])

	t.Run("unknown execution", func(t *testing.T) {
		err := m.Update("ghost", map[string]any{"x": 1})
		var notFound *StateNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "ghost", notFound.ExecutionID)
	})
}

func TestLocking(t *testing.T) {
	t.Parallel()
	m := NewManager()
	require.NoError(t, m.Create("exec-1", map[string]any{"guarded": "original"}))
	require.NoError(t, m.LockKey("exec-1", "guarded"))

	err := m.Set("exec-1", "guarded", "overwrite")
	var lockErr *StateLockError
	require.ErrorAs(t, err, &lockErr)
	assert.Equal(t, "exec-1", lockErr.ExecutionID)
	assert.Equal(t, "guarded", lockErr.Key)

	// A locked key poisons the whole patch: nothing is written.
	err = m.Update("exec-1", map[string]any{"free": 1, "guarded": "overwrite"})
	require.ErrorAs(t, err, &lockErr)
	got, err := m.Get("exec-1")
	require.NoError(t, err)
	assert.NotContains(t, got, "free")
	assert.Equal(t, "original", got["guarded"])

	// Unrelated keys remain writable while the lock is held.
	require.NoError(t, m.Set("exec-1", "other", true))

	require.NoError(t, m.UnlockKey("exec-1", "guarded"))
	require.NoError(t, m.Set("exec-1", "guarded", "overwrite"))
	got, err = m.Get("exec-1")
	require.NoError(t, err)
	assert.Equal(t, "overwrite", got["guarded"])
}

func TestSnapshots(t *testing.T) {
	t.Parallel()
	m := NewManager()
	require.NoError(t, m.Create("exec-1", map[string]any{"phase": "start"}))

	id, err := m.Snapshot("exec-1", "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	labeled, err := m.Snapshot("exec-1", "before-risky-step")
	require.NoError(t, err)
	assert.Equal(t, "before-risky-step", labeled)

	require.NoError(t, m.Update("exec-1", map[string]any{"phase": "mutated"}))

	snap, err := m.GetSnapshot("exec-1", id)
	require.NoError(t, err)
	assert.Equal(t, "start", snap["phase"])

	require.NoError(t, m.RestoreSnapshot("exec-1", labeled))
	got, err := m.Get("exec-1")
	require.NoError(t, err)
	assert.Equal(t, "start", got["phase"])

	t.Run("unknown snapshot", func(t *testing.T) {
		_, err := m.GetSnapshot("exec-1", "nope")
		var notFound *SnapshotNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "nope", notFound.SnapshotID)

		require.ErrorAs(t, m.RestoreSnapshot("exec-1", "nope"), &notFound)
	})
}

func TestDestroy(t *testing.T) {
	t.Parallel()
	m := NewManager()
	require.NoError(t, m.Create("exec-1", nil))
	require.NoError(t, m.LockKey("exec-1", "k"))
	_, err := m.Snapshot("exec-1", "s")
	require.NoError(t, err)

	require.NoError(t, m.Destroy("exec-1"))
	assert.False(t, m.Has("exec-1"))

	var notFound *StateNotFoundError
	require.ErrorAs(t, m.Destroy("exec-1"), &notFound)
	_, err = m.Get("exec-1")
	require.ErrorAs(t, err, &notFound)

	// Recreating the id starts from a clean slate: no leftover locks.
	require.NoError(t, m.Create("exec-1", nil))
	require.NoError(t, m.Set("exec-1", "k", 1))
}

func TestStateIsolation(t *testing.T) {
	t.Parallel()
	m := NewManager()
	require.NoError(t, m.Create("exec-a", nil))
	require.NoError(t, m.Create("exec-b", nil))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.Set("exec-a", fmt.Sprintf("key-%d", i), "a"))
		}(i)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.Set("exec-b", fmt.Sprintf("key-%d", i), "b"))
		}(i)
	}
	wg.Wait()

	a, err := m.Get("exec-a")
	require.NoError(t, err)
	b, err := m.Get("exec-b")
	require.NoError(t, err)
	require.Len(t, a, 50)
	require.Len(t, b, 50)
	for k, v := range a {
		assert.Equal(t, "a", v, "key %s leaked between executions", k)
	}
	for k, v := range b {
		assert.Equal(t, "b", v, "key %s leaked between executions", k)
	}
}
