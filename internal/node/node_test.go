package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValidate(t *testing.T) {
	t.Parallel()

	t.Run("complete metadata passes", func(t *testing.T) {
		m := Metadata{ID: "print", Name: "Print", Version: "1.0.0"}
		assert.NoError(t, m.Validate())
	})

	t.Run("missing fields are all reported", func(t *testing.T) {
		err := Metadata{Name: "Print"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "id")
		assert.Contains(t, err.Error(), "version")
		assert.NotContains(t, err.Error(), "name,")
	})

	t.Run("empty metadata fails", func(t *testing.T) {
		assert.Error(t, Metadata{}.Validate())
	})
}

func TestSingleEdge(t *testing.T) {
	t.Parallel()

	em := SingleEdge(EdgeSuccess, map[string]any{"answer": 42})
	require.Len(t, em, 1)

	payload, err := em[EdgeSuccess]()
	require.NoError(t, err)
	assert.Equal(t, 42, payload["answer"])
}

func TestErrorEdge(t *testing.T) {
	t.Parallel()

	em := ErrorEdge(errors.New("upstream unavailable"))
	require.Contains(t, em, EdgeError)

	payload, err := em[EdgeError]()
	require.NoError(t, err)
	assert.Equal(t, "upstream unavailable", payload["error"])
}
