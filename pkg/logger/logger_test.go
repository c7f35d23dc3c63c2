package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(slog.NewTextHandler(&buf, nil))

	log.Info("connected", "endpoint", "http://localhost:8080")
	log.Warn("token expires soon")

	out := buf.String()
	assert.Contains(t, out, "msg=connected")
	assert.Contains(t, out, "endpoint=http://localhost:8080")
	assert.Contains(t, out, "level=WARN")
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	log := FromZerolog(zerolog.New(&buf))

	log.Info("pipeline exchange complete", "requests", 2)
	log.Error("exchange failed", "code", "INTERNAL")

	out := buf.String()
	assert.Contains(t, out, `"message":"pipeline exchange complete"`)
	assert.Contains(t, out, `"requests":2`)
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"code":"INTERNAL"`)
}
