package connection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quarrydb/quarrydb.go/internal/codec"
	"github.com/quarrydb/quarrydb.go/pkg/constants"
	"github.com/quarrydb/quarrydb.go/pkg/logger"
	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// HTTPConnection exchanges pipeline requests over stateless HTTP POSTs.
//
// The server-issued baton from each response is threaded into the next
// request so that a logical session survives across exchanges; a returned
// base_url redirects subsequent requests to the node holding that session.
type HTTPConnection struct {
	marshaler   codec.Marshaler
	unmarshaler codec.Unmarshaler
	logger      logger.Logger
	authToken   string
	timeout     time.Duration
	httpClient  *http.Client

	// mu serializes exchanges: the baton identifies a single server-side
	// session that cannot be shared by interleaved requests.
	mu      sync.Mutex
	baseURL string
	baton   string
	closed  bool
}

// NewHTTPConnection creates an HTTP connection from the given config.
func NewHTTPConnection(conf *Config) *HTTPConnection {
	con := &HTTPConnection{
		marshaler:   conf.Marshaler,
		unmarshaler: conf.Unmarshaler,
		logger:      conf.Logger,
		authToken:   conf.AuthToken,
		timeout:     conf.Timeout,
		baseURL:     strings.TrimSuffix(conf.BaseURL, "/"),
	}

	if con.httpClient == nil {
		con.httpClient = &http.Client{}
	}

	return con
}

// SetTimeout overrides the default per-exchange timeout applied when the
// caller's context carries no deadline.
func (h *HTTPConnection) SetTimeout(timeout time.Duration) *HTTPConnection {
	h.timeout = timeout
	return h
}

// SetHTTPClient replaces the underlying HTTP client.
func (h *HTTPConnection) SetHTTPClient(client *http.Client) *HTTPConnection {
	h.httpClient = client
	return h
}

// Connect validates the configuration and performs an empty pipeline
// round-trip to verify the endpoint is reachable and the credentials are
// accepted.
func (h *HTTPConnection) Connect(ctx context.Context) error {
	if h.baseURL == "" {
		return constants.ErrNoBaseURL
	}
	if h.marshaler == nil {
		return constants.ErrNoMarshaler
	}
	if h.unmarshaler == nil {
		return constants.ErrNoUnmarshaler
	}

	warnIfTokenExpired(h.authToken, h.logger)

	_, err := h.Send(ctx, []wire.Request{})
	return err
}

// Send performs one pipeline round-trip. The results correspond positionally
// to the requests; a response whose result count does not match is rejected
// as invalid. Transport failures are returned to the caller unchanged and
// are never retried here.
func (h *HTTPConnection) Send(ctx context.Context, requests []wire.Request) (*wire.PipelineResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, constants.ErrClosed
	}
	if requests == nil {
		requests = []wire.Request{}
	}

	return h.exchange(ctx, requests)
}

// exchange runs a single POST against the pipeline endpoint. The caller must
// hold h.mu.
func (h *HTTPConnection) exchange(ctx context.Context, requests []wire.Request) (*wire.PipelineResponse, error) {
	body, err := h.marshaler.Marshal(&wire.PipelineRequest{
		Baton:    h.baton,
		Requests: requests,
	})
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok && h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+constants.PipelinePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(constants.RequestIDHeader, requestID)
	if h.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.authToken)
	}

	started := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
			return nil, fmt.Errorf("%w: %v", constants.ErrTimeout, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var serverErr wire.Error
		if uerr := h.unmarshaler.Unmarshal(respBytes, &serverErr); uerr == nil && serverErr.Message != "" {
			return nil, &serverErr
		}
		return nil, fmt.Errorf("%w: unexpected status %d", constants.ErrInvalidResponse, resp.StatusCode)
	}

	var out wire.PipelineResponse
	if err := h.unmarshaler.Unmarshal(respBytes, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrInvalidResponse, err)
	}
	if len(out.Results) != len(requests) {
		return nil, fmt.Errorf("%w: got %d results for %d requests",
			constants.ErrInvalidResponse, len(out.Results), len(requests))
	}

	h.baton = out.Baton
	if out.BaseURL != "" {
		h.baseURL = strings.TrimSuffix(out.BaseURL, "/")
	}

	if h.logger != nil {
		h.logger.Debug("pipeline exchange complete",
			"request_id", requestID,
			"requests", len(requests),
			"duration", time.Since(started),
			"has_baton", out.Baton != "")
	}

	return &out, nil
}

// Close releases the server-side session. When a baton is outstanding a
// close request is issued so the server can free it; the connection is
// unusable afterwards either way.
func (h *HTTPConnection) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.baton == "" {
		return nil
	}
	_, err := h.exchange(ctx, []wire.Request{wire.CloseRequest()})
	return err
}
