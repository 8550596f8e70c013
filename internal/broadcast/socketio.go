package broadcast

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/nodeflow/internal/ctxlog"
)

// connectTimeout bounds the initial socket.io handshake.
const connectTimeout = 15 * time.Second

// SocketEmitter publishes events over a persistent socket.io connection.
type SocketEmitter struct {
	io *socket.Socket
}

// NewSocketEmitter dials the event endpoint and waits for the handshake to
// complete before returning. The namespace is taken from the URL path.
func NewSocketEmitter(ctx context.Context, rawURL string) (*SocketEmitter, error) {
	logger := ctxlog.FromContext(ctx).With("component", "broadcast", "url", rawURL)
	logger.Info("Connecting to event endpoint...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse events URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(parsedURL.Path, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to event endpoint.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, ok := errs[0].(error)
		if !ok {
			err = fmt.Errorf("connect_error: %v", errs[0])
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketEmitter{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

// Emit implements Emitter.
func (s *SocketEmitter) Emit(event string, payload map[string]any) error {
	return s.io.Emit(event, payload)
}

// Close implements Emitter.
func (s *SocketEmitter) Close() error {
	s.io.Disconnect()
	return nil
}
