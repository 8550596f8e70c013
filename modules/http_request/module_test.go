package http_request

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nodeflow/internal/node"
	"github.com/specialistvlad/nodeflow/internal/registry"
)

func TestExecuteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "token-1", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ping", body["op"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"pong": true})
	}))
	defer server.Close()

	n := New()
	edges, err := n.Execute(context.Background(), &node.ExecutionContext{}, map[string]any{
		"url":     server.URL,
		"method":  "POST",
		"headers": map[string]any{"X-Api-Key": "token-1"},
		"body":    map[string]any{"op": "ping"},
	})

	require.NoError(t, err)
	require.Contains(t, edges, node.EdgeSuccess)
	payload, err := edges[node.EdgeSuccess]()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, payload["status"])
	body, ok := payload["body"].(map[string]any)
	require.True(t, ok, "json responses are decoded")
	assert.Equal(t, true, body["pong"])
}

func TestExecuteErrorStatusFiresErrorEdge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	n := New()
	edges, err := n.Execute(context.Background(), &node.ExecutionContext{}, map[string]any{
		"url": server.URL,
	})

	require.NoError(t, err)
	require.Contains(t, edges, node.EdgeError)
	payload, err := edges[node.EdgeError]()
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, payload["status"])
	assert.Contains(t, payload["error"], "503")
}

func TestExecuteTransportFailureFiresErrorEdge(t *testing.T) {
	n := New()

	edges, err := n.Execute(context.Background(), &node.ExecutionContext{}, map[string]any{
		"url":     "http://127.0.0.1:1",
		"timeout": "500ms",
	})

	require.NoError(t, err, "network failures are business failures, not contract violations")
	require.Contains(t, edges, node.EdgeError)
}

func TestExecuteRejectsMissingURL(t *testing.T) {
	n := New()

	_, err := n.Execute(context.Background(), &node.ExecutionContext{}, map[string]any{})

	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	r := registry.New()
	require.NoError(t, (&Module{}).Register(r))
	assert.True(t, r.Has("http_request"))
}
