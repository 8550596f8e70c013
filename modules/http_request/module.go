// Package http_request provides the built-in 'http_request' node for
// calling HTTP APIs from a workflow. Transport failures and error statuses
// fire the error edge; only a malformed configuration is fatal.
package http_request

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/specialistvlad/nodeflow/internal/ctxlog"
	"github.com/specialistvlad/nodeflow/internal/node"
	"github.com/specialistvlad/nodeflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node factory with the registry. The node is a
// singleton so every execution shares one connection pool.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(New, registry.Options{Singleton: true, Source: "builtin"})
}

// New constructs the http_request node with its own resty client.
func New() node.Node {
	return &httpNode{client: resty.New()}
}

type httpNode struct {
	client *resty.Client
}

func (n *httpNode) Metadata() node.Metadata {
	return node.Metadata{
		ID:          "http_request",
		Name:        "HTTP Request",
		Version:     "1.0.0",
		Description: "Performs an HTTP request and merges the response into state.",
		Inputs:      []string{"url", "method", "headers", "body", "timeout"},
		Outputs:     []string{"status", "body"},
		AIHints: map[string]string{
			"purpose": "Call an external HTTP API; route failures through the error edge for retry or fallback steps.",
		},
	}
}

func (n *httpNode) Execute(ctx context.Context, ec *node.ExecutionContext, config map[string]any) (node.EdgeMap, error) {
	url, ok := config["url"].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("'url' must be a non-empty string")
	}
	method := "GET"
	if m, ok := config["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}

	if raw, ok := config["timeout"].(string); ok && raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid 'timeout': %w", err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := n.client.R().SetContext(ctx)
	if headers, ok := config["headers"].(map[string]any); ok {
		for name, value := range headers {
			req.SetHeader(name, fmt.Sprintf("%v", value))
		}
	}
	if body, ok := config["body"]; ok && body != nil {
		req.SetBody(body)
	}

	logger := ctxlog.FromContext(ctx).With("node", "http_request", "method", method, "url", url)
	logger.Debug("Performing HTTP request.")

	resp, err := req.Execute(method, url)
	if err != nil {
		logger.Warn("HTTP request failed.", "error", err)
		return node.SingleEdge(node.EdgeError, map[string]any{
			"error": fmt.Sprintf("http request failed: %v", err),
		}), nil
	}

	logger.Debug("HTTP response received.", "status", resp.StatusCode())

	if resp.IsError() {
		return node.SingleEdge(node.EdgeError, map[string]any{
			"error":  fmt.Sprintf("http request returned status %d", resp.StatusCode()),
			"status": resp.StatusCode(),
			"body":   decodeBody(resp),
		}), nil
	}

	return node.SingleEdge(node.EdgeSuccess, map[string]any{
		"status": resp.StatusCode(),
		"body":   decodeBody(resp),
	}), nil
}

// decodeBody returns the response body as structured data when it is JSON,
// falling back to the raw string.
func decodeBody(resp *resty.Response) any {
	raw := resp.String()
	if strings.Contains(resp.Header().Get("Content-Type"), "application/json") {
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			return decoded
		}
	}
	return raw
}
