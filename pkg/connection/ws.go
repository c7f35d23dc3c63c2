package connection

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quarrydb/quarrydb.go/internal/codec"
	"github.com/quarrydb/quarrydb.go/pkg/constants"
	"github.com/quarrydb/quarrydb.go/pkg/logger"
	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// WSConnection carries the pipeline exchange over a WebSocket: one text
// frame per pipeline request, one frame back per response. The socket itself
// is the session, so batons are optional on this transport, but any baton
// the server does return is still threaded into the next frame.
type WSConnection struct {
	marshaler   codec.Marshaler
	unmarshaler codec.Unmarshaler
	logger      logger.Logger
	authToken   string
	timeout     time.Duration
	wsURL       string

	// mu serializes exchanges: frames on the socket are strictly
	// request/response ordered.
	mu     sync.Mutex
	conn   *websocket.Conn
	baton  string
	closed bool
}

// NewWSConnection creates a WebSocket connection from the given config. The
// endpoint scheme is normalized to ws/wss and the pipeline path appended.
func NewWSConnection(conf *Config) *WSConnection {
	u := conf.URL
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = constants.PipelinePath
	u.RawQuery = ""

	return &WSConnection{
		marshaler:   conf.Marshaler,
		unmarshaler: conf.Unmarshaler,
		logger:      conf.Logger,
		authToken:   conf.AuthToken,
		timeout:     conf.Timeout,
		wsURL:       u.String(),
	}
}

// Connect dials the endpoint. Credentials are sent in the handshake, so an
// expired token fails here rather than on the first Send.
func (w *WSConnection) Connect(ctx context.Context) error {
	if w.wsURL == "" {
		return constants.ErrNoBaseURL
	}
	if w.marshaler == nil {
		return constants.ErrNoMarshaler
	}
	if w.unmarshaler == nil {
		return constants.ErrNoUnmarshaler
	}
	if _, err := url.Parse(w.wsURL); err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", w.wsURL, err)
	}

	warnIfTokenExpired(w.authToken, w.logger)

	header := http.Header{}
	if w.authToken != "" {
		header.Set("Authorization", "Bearer "+w.authToken)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, w.wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("websocket dial: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	return nil
}

// Send writes one pipeline request frame and waits for the response frame.
func (w *WSConnection) Send(ctx context.Context, requests []wire.Request) (*wire.PipelineResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.conn == nil {
		return nil, constants.ErrClosed
	}
	if requests == nil {
		requests = []wire.Request{}
	}

	body, err := w.marshaler.Marshal(&wire.PipelineRequest{
		Baton:    w.baton,
		Requests: requests,
	})
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(w.timeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}

	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := w.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return nil, wrapTimeout(err)
	}

	if err := w.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	_, data, err := w.conn.ReadMessage()
	if err != nil {
		return nil, wrapTimeout(err)
	}

	var out wire.PipelineResponse
	if err := w.unmarshaler.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrInvalidResponse, err)
	}
	if len(out.Results) != len(requests) {
		return nil, fmt.Errorf("%w: got %d results for %d requests",
			constants.ErrInvalidResponse, len(out.Results), len(requests))
	}

	w.baton = out.Baton

	return &out, nil
}

// Close sends a close frame and tears down the socket.
func (w *WSConnection) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.conn == nil {
		return nil
	}

	deadline := time.Now().Add(time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	return w.conn.Close()
}

func wrapTimeout(err error) error {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return fmt.Errorf("%w: %v", constants.ErrTimeout, err)
	}
	return err
}
