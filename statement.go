package quarrydb

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash"

	"github.com/quarrydb/quarrydb.go/pkg/values"
	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// Statement is one SQL statement with its bound arguments, used for atomic
// multi-statement execution.
type Statement struct {
	SQL  string
	Args []any
}

// NamedArg binds a value to an @name parameter. Use Named to construct one.
type NamedArg struct {
	Name  string
	Value any
}

// Named returns a named argument for an @name placeholder. The leading "@"
// may be included or omitted.
func Named(name string, value any) NamedArg {
	return NamedArg{Name: strings.TrimPrefix(name, "@"), Value: value}
}

// splitStatements counts top-level statements by splitting on ';', trimming
// and dropping empty segments. The split is purely syntactic: a semicolon
// inside a quoted literal or a comment is counted as a separator.
func splitStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			stmts = append(stmts, t)
		}
	}
	return stmts
}

const maxCachedShapes = 512

// shapeCache memoizes the statement split per distinct SQL text, keyed by
// xxhash of the text. Applications tend to run a small fixed set of
// statements, so the map is simply reset once it reaches its cap.
type shapeCache struct {
	mu sync.RWMutex
	m  map[uint64][]string
}

func newShapeCache() *shapeCache {
	return &shapeCache{m: make(map[uint64][]string)}
}

func (c *shapeCache) split(sql string) []string {
	key := xxhash.Sum64String(sql)

	c.mu.RLock()
	stmts, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return stmts
	}

	stmts = splitStatements(sql)

	c.mu.Lock()
	if len(c.m) >= maxCachedShapes {
		c.m = make(map[uint64][]string)
	}
	c.m[key] = stmts
	c.mu.Unlock()

	return stmts
}

// buildRequests decides the execution shape for one SQL text:
//
//   - multiple statements without arguments become a single sequence request
//     carrying the text verbatim (no per-statement row counts),
//   - multiple statements with arguments are rejected before any transport
//     call, since the protocol cannot bind arguments across a sequence,
//   - anything else becomes a single execute request.
func (db *DB) buildRequests(sql string, args []any) ([]wire.Request, error) {
	stmts := db.shapes.split(sql)
	if len(stmts) > 1 {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: multiple statements cannot carry bound parameters", ErrUnsupportedShape)
		}
		return []wire.Request{wire.SequenceRequest(sql)}, nil
	}

	stmt, err := buildStmt(sql, args)
	if err != nil {
		return nil, err
	}
	return []wire.Request{wire.ExecuteRequest(stmt)}, nil
}

// buildStmt encodes the arguments and, when they are named, rewrites each
// @name in the SQL to the positional placeholder ?N in bind order. Arguments
// must be all named or all positional.
func buildStmt(sql string, args []any) (wire.Stmt, error) {
	named := 0
	for _, a := range args {
		if _, ok := a.(NamedArg); ok {
			named++
		}
	}
	if named > 0 && named != len(args) {
		return wire.Stmt{}, fmt.Errorf("%w: named and positional arguments cannot be mixed", ErrUnsupportedShape)
	}

	wireArgs := make([]wire.Value, 0, len(args))
	for i, a := range args {
		v := a
		if na, ok := a.(NamedArg); ok {
			rewritten, n := replaceParamToken(sql, "@"+na.Name, "?"+strconv.Itoa(i+1))
			if n == 0 {
				return wire.Stmt{}, fmt.Errorf("%w: parameter @%s does not appear in the statement", ErrUnsupportedShape, na.Name)
			}
			sql = rewritten
			v = na.Value
		}
		wv, err := values.Encode(v)
		if err != nil {
			return wire.Stmt{}, err
		}
		wireArgs = append(wireArgs, wv)
	}

	return wire.Stmt{SQL: sql, Args: wireArgs}, nil
}

// replaceParamToken substitutes every occurrence of token that ends at a
// token boundary, so that a bound name that prefixes another (@id vs @ids)
// is never substituted inside the longer one. Returns the rewritten text and
// the number of substitutions.
func replaceParamToken(sql, token, placeholder string) (string, int) {
	var b strings.Builder
	count := 0
	for {
		i := strings.Index(sql, token)
		if i < 0 {
			b.WriteString(sql)
			break
		}
		end := i + len(token)
		if end < len(sql) && isNameByte(sql[end]) {
			// Prefix of a longer parameter name; keep scanning past it.
			stop := end
			for stop < len(sql) && isNameByte(sql[stop]) {
				stop++
			}
			b.WriteString(sql[:stop])
			sql = sql[stop:]
			continue
		}
		b.WriteString(sql[:i])
		b.WriteString(placeholder)
		sql = sql[end:]
		count++
	}
	return b.String(), count
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
