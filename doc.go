// The [quarrydb] package implements the QuarryDB pipeline protocol in the Go way.
//
// QuarryDB serves a SQLite-compatible SQL database over a stateless
// JSON-over-HTTP batch API: a client posts an ordered list of requests and
// receives positionally matching results in one round-trip. There is no
// streaming: every query materializes its full result set before the cursor
// can be read.
//
// # Connection Engines
//
// There are 2 different connection engines, HTTP and WebSocket, you can use
// to talk to a QuarryDB backend. Provide a proper endpoint URL to [New] so
// that it chooses the right one for you. Both carry the same pipeline
// payloads; the HTTP engine threads the server-issued baton across requests
// so a logical session survives the stateless transport.
//
// # Queries and Execution
//
// [DB.Query] returns a forward-only [Rows] cursor over the materialized
// result set; [DB.Execute] returns the affected-row count and last insert
// rowid. Arguments are positional, or named with [Named]; named parameters
// are rewritten to positional placeholders before they reach the wire.
//
// Multi-statement SQL with no bound arguments is sent as a single sequence
// request executed in source order; the protocol reports no per-statement
// row counts for that shape.
//
// # Transactions
//
// The protocol has no native multi-statement transaction primitive.
// [DB.ExecuteTransaction] emulates one atomically with a conditional batch:
// BEGIN, each statement guarded on its predecessor, a guarded COMMIT, and a
// ROLLBACK that fires whenever COMMIT did not succeed. The whole graph runs
// server-side in one round-trip.
//
// # Wire Model
//
// The [github.com/quarrydb/quarrydb.go/pkg/wire] package defines the request
// and response DTOs with the exact field names of the protocol, and
// [github.com/quarrydb/quarrydb.go/pkg/values] converts between native Go
// values and the wire's tagged value representation.
package quarrydb
