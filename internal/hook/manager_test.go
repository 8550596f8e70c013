package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerOrder(t *testing.T) {
	t.Parallel()
	m := NewManager()

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		m.Register(NodeBeforeExecute, Registration{
			Name: name,
			Handler: func(ctx context.Context, ev Event) error {
				order = append(order, name)
				return nil
			},
		})
	}

	m.Trigger(context.Background(), NodeBeforeExecute, Event{NodeID: "n"})
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestHandlerFailureIsolation(t *testing.T) {
	t.Parallel()
	m := NewManager()

	secondRan := false
	m.Register(WorkflowBeforeStart, Registration{
		Name: "always-fails",
		Handler: func(ctx context.Context, ev Event) error {
			return errors.New("boom")
		},
	})
	m.Register(WorkflowBeforeStart, Registration{
		Name: "observer",
		Handler: func(ctx context.Context, ev Event) error {
			secondRan = true
			return nil
		},
	})

	m.Trigger(context.Background(), WorkflowBeforeStart, Event{})

	assert.True(t, secondRan, "second handler must run despite the first one failing")
	assert.Equal(t, 1, m.Failures(WorkflowBeforeStart))
}

func TestHandlerPanicIsolation(t *testing.T) {
	t.Parallel()
	m := NewManager()

	secondRan := false
	m.Register(NodeAfterExecute, Registration{
		Name:    "panics",
		Handler: func(ctx context.Context, ev Event) error { panic("kaboom") },
	})
	m.Register(NodeAfterExecute, Registration{
		Name: "observer",
		Handler: func(ctx context.Context, ev Event) error {
			secondRan = true
			return nil
		},
	})

	require.NotPanics(t, func() {
		m.Trigger(context.Background(), NodeAfterExecute, Event{})
	})
	assert.True(t, secondRan)
	assert.Equal(t, 1, m.Failures(NodeAfterExecute))
}

func TestEventEnrichment(t *testing.T) {
	t.Parallel()
	m := NewManager()

	var seen Event
	m.Register(WorkflowAfterEnd, Registration{
		Name: "capture",
		Handler: func(ctx context.Context, ev Event) error {
			seen = ev
			return nil
		},
	})

	m.Trigger(context.Background(), WorkflowAfterEnd, Event{ExecutionID: "e-1"})
	assert.Equal(t, WorkflowAfterEnd, seen.Type)
	assert.Equal(t, "e-1", seen.ExecutionID)
	assert.False(t, seen.Timestamp.IsZero())
}

func TestUnregisterAndClear(t *testing.T) {
	t.Parallel()
	m := NewManager()

	calls := 0
	reg := Registration{
		Name:    "counting",
		Handler: func(ctx context.Context, ev Event) error { calls++; return nil },
	}
	m.Register(WorkflowError, reg)
	m.Register(WorkflowError, Registration{Name: "other", Handler: reg.Handler})
	require.Equal(t, 2, m.Handlers(WorkflowError))

	m.Unregister(WorkflowError, "counting")
	require.Equal(t, 1, m.Handlers(WorkflowError))

	m.Trigger(context.Background(), WorkflowError, Event{})
	assert.Equal(t, 1, calls)

	m.Clear()
	assert.Equal(t, 0, m.Handlers(WorkflowError))
	assert.Equal(t, 0, m.Failures(WorkflowError))
}
