package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodes.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `
node "http_request" {
  name        = "HTTP Request"
  version     = "1.0.0"
  description = "Performs an HTTP call."

  input "url" {
    type        = string
    description = "Target URL."
  }
  input "method" {
    type    = string
    default = "GET"
  }
  input "retries" {
    type    = number
    default = 0
  }
  output "status" {
    type = number
  }
}

node "print" {
  name    = "Print"
  version = "1.0.0"
}
`)

	nodes, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	httpNode := nodes[0]
	assert.Equal(t, "http_request", httpNode.ID)
	assert.Equal(t, "HTTP Request", httpNode.Name)
	assert.Equal(t, "1.0.0", httpNode.Version)
	assert.Equal(t, path, httpNode.Path)

	require.Contains(t, httpNode.Inputs, "url")
	assert.True(t, httpNode.Inputs["url"].Type.Equals(cty.String))
	assert.Nil(t, httpNode.Inputs["url"].Default, "input without default is required")

	require.Contains(t, httpNode.Inputs, "method")
	require.NotNil(t, httpNode.Inputs["method"].Default)
	assert.Equal(t, "GET", httpNode.Inputs["method"].Default.AsString())

	require.Contains(t, httpNode.Outputs, "status")
	assert.True(t, httpNode.Outputs["status"].Type.Equals(cty.Number))

	assert.Equal(t, "print", nodes[1].ID)
	assert.Empty(t, nodes[1].Inputs)
}

func TestParseFileErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing version", func(t *testing.T) {
		path := writeManifest(t, `
node "broken" {
  name = "Broken"
}
`)
		_, err := ParseFile(context.Background(), path)
		require.Error(t, err)
	})

	t.Run("input without type", func(t *testing.T) {
		path := writeManifest(t, `
node "broken" {
  name    = "Broken"
  version = "1.0.0"
  input "x" {}
}
`)
		_, err := ParseFile(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type")
	})

	t.Run("unsupported type keyword", func(t *testing.T) {
		path := writeManifest(t, `
node "broken" {
  name    = "Broken"
  version = "1.0.0"
  input "x" {
    type = widget
  }
}
`)
		_, err := ParseFile(context.Background(), path)
		require.Error(t, err)
	})

	t.Run("default incompatible with type", func(t *testing.T) {
		path := writeManifest(t, `
node "broken" {
  name    = "Broken"
  version = "1.0.0"
  input "x" {
    type    = number
    default = "not-a-number"
  }
}
`)
		_, err := ParseFile(context.Background(), path)
		require.Error(t, err)
	})

	t.Run("duplicate input", func(t *testing.T) {
		path := writeManifest(t, `
node "broken" {
  name    = "Broken"
  version = "1.0.0"
  input "x" {
    type = string
  }
  input "x" {
    type = string
  }
}
`)
		_, err := ParseFile(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Duplicate input")
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeManifest(t, `node "broken" {`)
		_, err := ParseFile(context.Background(), path)
		require.Error(t, err)
	})
}

func TestAnyType(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `
node "flexible" {
  name    = "Flexible"
  version = "2.1.0"
  input "payload" {
    type = any
  }
}
`)
	nodes, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].Inputs["payload"].Type.Equals(cty.DynamicPseudoType))
}
