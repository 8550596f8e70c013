package state

import (
	"maps"
	"sync"

	"github.com/google/uuid"
)

// bag holds the mutable data of a single execution. Its own mutex keeps
// state updates for one execution from contending with other executions.
type bag struct {
	mu        sync.RWMutex
	data      map[string]any
	locks     map[string]struct{}
	snapshots map[string]map[string]any
}

// Manager allocates, tracks and destroys per-execution state bags.
type Manager struct {
	mu   sync.RWMutex
	bags map[string]*bag
}

// NewManager creates an empty state manager.
func NewManager() *Manager {
	return &Manager{bags: make(map[string]*bag)}
}

// Create allocates a state bag for the given execution id, seeded with a
// copy of initial. Creating a bag for an id that is already live is an
// error; the engine generates a fresh id per run, so a collision indicates
// a caller bug rather than a benign retry.
func (m *Manager) Create(executionID string, initial map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bags[executionID]; exists {
		return &DuplicateStateError{ExecutionID: executionID}
	}

	data := make(map[string]any, len(initial))
	maps.Copy(data, initial)
	m.bags[executionID] = &bag{
		data:      data,
		locks:     make(map[string]struct{}),
		snapshots: make(map[string]map[string]any),
	}
	return nil
}

// Get returns a copy of the execution's current state.
func (m *Manager) Get(executionID string) (map[string]any, error) {
	b, err := m.bag(executionID)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.data))
	maps.Copy(out, b.data)
	return out, nil
}

// Update merge-writes the patch into the execution's bag. If any key in the
// patch is locked, the whole update is rejected with a StateLockError and
// no key is written.
func (m *Manager) Update(executionID string, patch map[string]any) error {
	b, err := m.bag(executionID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for key := range patch {
		if _, locked := b.locks[key]; locked {
			return &StateLockError{ExecutionID: executionID, Key: key}
		}
	}
	maps.Copy(b.data, patch)
	return nil
}

// Set writes a single key, honoring the same lock contract as Update.
func (m *Manager) Set(executionID, key string, value any) error {
	return m.Update(executionID, map[string]any{key: value})
}

// LockKey takes the advisory lock on a key. Locking an already-locked key
// is a no-op; locks are scoped to the execution id and must be released
// with UnlockKey or by Destroy.
func (m *Manager) LockKey(executionID, key string) error {
	b, err := m.bag(executionID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.locks[key] = struct{}{}
	return nil
}

// UnlockKey releases the advisory lock on a key. Unlocking a key that is
// not locked is a no-op.
func (m *Manager) UnlockKey(executionID, key string) error {
	b, err := m.bag(executionID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.locks, key)
	return nil
}

// Snapshot captures an immutable copy of the current state. When label is
// empty a snapshot id is generated; either way the id to reference the
// snapshot by is returned.
func (m *Manager) Snapshot(executionID, label string) (string, error) {
	b, err := m.bag(executionID)
	if err != nil {
		return "", err
	}

	id := label
	if id == "" {
		id = uuid.NewString()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	copied := make(map[string]any, len(b.data))
	maps.Copy(copied, b.data)
	b.snapshots[id] = copied
	return id, nil
}

// GetSnapshot returns a copy of a previously captured snapshot.
func (m *Manager) GetSnapshot(executionID, snapshotID string) (map[string]any, error) {
	b, err := m.bag(executionID)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	snap, ok := b.snapshots[snapshotID]
	if !ok {
		return nil, &SnapshotNotFoundError{ExecutionID: executionID, SnapshotID: snapshotID}
	}
	out := make(map[string]any, len(snap))
	maps.Copy(out, snap)
	return out, nil
}

// RestoreSnapshot replaces the execution's state with the snapshot's
// contents. The restore is wholesale: it does not consult key locks, since
// it rewinds the bag rather than writing individual keys.
func (m *Manager) RestoreSnapshot(executionID, snapshotID string) error {
	b, err := m.bag(executionID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	snap, ok := b.snapshots[snapshotID]
	if !ok {
		return &SnapshotNotFoundError{ExecutionID: executionID, SnapshotID: snapshotID}
	}
	data := make(map[string]any, len(snap))
	maps.Copy(data, snap)
	b.data = data
	return nil
}

// Destroy releases the bag together with its locks and snapshots. The
// engine calls this on every terminal path, success or failure.
func (m *Manager) Destroy(executionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bags[executionID]; !exists {
		return &StateNotFoundError{ExecutionID: executionID}
	}
	delete(m.bags, executionID)
	return nil
}

// Has reports whether a live bag exists for the execution id.
func (m *Manager) Has(executionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.bags[executionID]
	return ok
}

func (m *Manager) bag(executionID string) (*bag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bags[executionID]
	if !ok {
		return nil, &StateNotFoundError{ExecutionID: executionID}
	}
	return b, nil
}
