// Package mock provides a canned-response Connection for unit tests.
package mock

import (
	"context"
	"errors"

	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// Connection replays queued pipeline responses and records every request
// batch it was sent.
type Connection struct {
	// Responses are returned in order, one per Send call.
	Responses []*wire.PipelineResponse
	// Err, when set, fails every Send.
	Err error

	// Sent holds the request batches passed to Send, in order.
	Sent [][]wire.Request

	next int
}

func New(responses ...*wire.PipelineResponse) *Connection {
	return &Connection{Responses: responses}
}

func (c *Connection) Connect(ctx context.Context) error { return nil }

func (c *Connection) Close(ctx context.Context) error { return nil }

func (c *Connection) Send(ctx context.Context, requests []wire.Request) (*wire.PipelineResponse, error) {
	c.Sent = append(c.Sent, requests)
	if c.Err != nil {
		return nil, c.Err
	}
	if c.next >= len(c.Responses) {
		return nil, errors.New("mock: no response queued")
	}
	resp := c.Responses[c.next]
	c.next++
	return resp, nil
}

// OkExecute wraps a query result as a single-entry pipeline response, the
// way the server answers one execute request.
func OkExecute(result *wire.QueryResult) *wire.PipelineResponse {
	return &wire.PipelineResponse{
		Results: []wire.Result{{
			Type:     wire.ResultTypeOk,
			Response: &wire.Response{Type: wire.RequestTypeExecute, Result: result},
		}},
	}
}

// OkSequence wraps the payload-free answer to a sequence request.
func OkSequence() *wire.PipelineResponse {
	return &wire.PipelineResponse{
		Results: []wire.Result{{
			Type:     wire.ResultTypeOk,
			Response: &wire.Response{Type: wire.RequestTypeSequence},
		}},
	}
}

// OkBatch wraps a batch result as a single-entry pipeline response.
func OkBatch(result *wire.BatchResult) *wire.PipelineResponse {
	return &wire.PipelineResponse{
		Results: []wire.Result{{
			Type:     wire.ResultTypeOk,
			Response: &wire.Response{Type: wire.RequestTypeBatch, BatchResult: result},
		}},
	}
}

// ErrorResult wraps a server error as a single-entry pipeline response.
func ErrorResult(message, code string) *wire.PipelineResponse {
	return &wire.PipelineResponse{
		Results: []wire.Result{{
			Type:  wire.ResultTypeError,
			Error: &wire.Error{Message: message, Code: code},
		}},
	}
}
