// Package connection provides the transports that carry pipeline requests to
// a QuarryDB server: a stateless HTTP connection that threads the
// server-issued baton across calls, and a WebSocket variant that exchanges
// the same pipeline payloads over a single socket.
package connection

import (
	"context"

	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// Connection is a single logical session against a QuarryDB server.
//
// Send performs exactly one pipeline round-trip; the supplied context is the
// sole cancellation point. Cancelling after the request has been written has
// no effect server-side (the protocol has no in-flight cancel), it only stops
// waiting for the response. A Connection is not safe for concurrent use;
// Send serializes callers internally to keep the session baton coherent.
type Connection interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	Send(ctx context.Context, requests []wire.Request) (*wire.PipelineResponse, error)
}
