// Package fakeqdb provides a fake QuarryDB pipeline server for tests.
//
// The server speaks the pipeline protocol over plain HTTP. Stub results can
// be registered against request matchers; anything unmatched gets an empty
// success result of the right shape, so tests only script what they assert.
package fakeqdb

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/quarrydb/quarrydb.go/internal/codec"
	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// Stub pairs a request matcher with the result to return for it.
type Stub struct {
	Match  func(req wire.Request) bool
	Result wire.Result
}

// StubSQL matches an execute request by its exact SQL text.
func StubSQL(sql string, result wire.Result) Stub {
	return Stub{
		Match: func(req wire.Request) bool {
			return req.Type == wire.RequestTypeExecute && req.Stmt != nil && req.Stmt.SQL == sql
		},
		Result: result,
	}
}

// OkResult wraps a query result the way the server answers an execute.
func OkResult(result *wire.QueryResult) wire.Result {
	return wire.Result{
		Type:     wire.ResultTypeOk,
		Response: &wire.Response{Type: wire.RequestTypeExecute, Result: result},
	}
}

// ErrResult builds an error result with the given message and code.
func ErrResult(message, code string) wire.Result {
	return wire.Result{
		Type:  wire.ResultTypeError,
		Error: &wire.Error{Message: message, Code: code},
	}
}

// Server is the fake backend. Create one with New and point a connection at
// URL().
type Server struct {
	httpServer *httptest.Server
	jsonCodec  codec.JSON

	mu         sync.Mutex
	stubs      []Stub
	baton      string
	received   []wire.PipelineRequest
	overStatus int
	overBody   []byte
}

// New starts a fake server with the given stubs.
func New(stubs ...Stub) *Server {
	s := &Server{stubs: stubs}
	s.httpServer = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the base URL of the fake server.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the fake server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// SetBaton makes every subsequent response carry the given baton.
func (s *Server) SetBaton(baton string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baton = baton
}

// FailNextWith makes the next exchange return the raw status and body
// instead of a pipeline response. One-shot.
func (s *Server) FailNextWith(status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overStatus = status
	s.overBody = body
}

// Received returns every pipeline request the server decoded, in order.
func (s *Server) Received() []wire.PipelineRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wire.PipelineRequest, len(s.received))
	copy(out, s.received)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req wire.PipelineRequest
	if err := s.jsonCodec.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.received = append(s.received, req)
	if s.overStatus != 0 {
		status, raw := s.overStatus, s.overBody
		s.overStatus, s.overBody = 0, nil
		s.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write(raw)
		return
	}
	baton := s.baton
	stubs := s.stubs
	s.mu.Unlock()

	resp := wire.PipelineResponse{Baton: baton}
	for _, entry := range req.Requests {
		resp.Results = append(resp.Results, resolve(stubs, entry))
	}
	if resp.Results == nil {
		resp.Results = []wire.Result{}
	}

	out, err := s.jsonCodec.Marshal(&resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

func resolve(stubs []Stub, req wire.Request) wire.Result {
	for _, stub := range stubs {
		if stub.Match != nil && stub.Match(req) {
			return stub.Result
		}
	}

	// Default: an empty success of the shape the request expects.
	response := &wire.Response{Type: req.Type}
	switch req.Type {
	case wire.RequestTypeExecute:
		response.Result = &wire.QueryResult{}
	case wire.RequestTypeBatch:
		n := 0
		if req.Batch != nil {
			n = len(req.Batch.Steps)
		}
		response.BatchResult = &wire.BatchResult{
			StepResults: make([]*wire.QueryResult, n),
			StepErrors:  make([]*wire.Error, n),
		}
		for i := range response.BatchResult.StepResults {
			response.BatchResult.StepResults[i] = &wire.QueryResult{}
		}
	}
	return wire.Result{Type: wire.ResultTypeOk, Response: response}
}
