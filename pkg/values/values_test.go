package values

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

func TestEncode(t *testing.T) {
	for name, tc := range map[string]struct {
		in   any
		want wire.Value
	}{
		"nil":        {nil, wire.Value{Type: wire.TypeNull}},
		"true":       {true, wire.Value{Type: wire.TypeInteger, Value: "1"}},
		"false":      {false, wire.Value{Type: wire.TypeInteger, Value: "0"}},
		"int":        {42, wire.Value{Type: wire.TypeInteger, Value: "42"}},
		"int64 max":  {int64(9223372036854775807), wire.Value{Type: wire.TypeInteger, Value: "9223372036854775807"}},
		"int64 min":  {int64(-9223372036854775808), wire.Value{Type: wire.TypeInteger, Value: "-9223372036854775808"}},
		"uint32":     {uint32(7), wire.Value{Type: wire.TypeInteger, Value: "7"}},
		"float64":    {3.5, wire.Value{Type: wire.TypeFloat, Value: 3.5}},
		"float32":    {float32(0.5), wire.Value{Type: wire.TypeFloat, Value: 0.5}},
		"string":     {"hello", wire.Value{Type: wire.TypeText, Value: "hello"}},
		"bytes":      {[]byte("abc"), wire.Value{Type: wire.TypeBlob, Base64: "YWJj"}},
		"empty blob": {[]byte{}, wire.Value{Type: wire.TypeBlob, Base64: ""}},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Encode(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeTime(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	got, err := Encode(ts)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeText, got.Type)
	assert.Equal(t, "2024-05-01T12:30:00Z", got.Value)
}

func TestRoundTrip(t *testing.T) {
	// Booleans come back as integers and every integer width as int64; the
	// protocol only distinguishes five value kinds.
	for name, tc := range map[string]struct {
		in   any
		want any
	}{
		"nil":       {nil, nil},
		"bool":      {true, int64(1)},
		"int16":     {int16(-300), int64(-300)},
		"int64 max": {int64(9223372036854775807), int64(9223372036854775807)},
		"int64 min": {int64(-9223372036854775808), int64(-9223372036854775808)},
		"float":     {2.25, 2.25},
		"text":      {"héllo; wörld", "héllo; wörld"},
		"blob":      {[]byte{0x00, 0xff, 0x10}, []byte{0x00, 0xff, 0x10}},
	} {
		t.Run(name, func(t *testing.T) {
			encoded, err := Encode(tc.in)
			require.NoError(t, err)
			decoded, err := Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.want, decoded)
		})
	}
}

func TestDecodeInteger(t *testing.T) {
	t.Run("string payload", func(t *testing.T) {
		v, err := Decode(wire.Value{Type: wire.TypeInteger, Value: "42"})
		require.NoError(t, err)
		assert.Equal(t, int64(42), v)
	})

	t.Run("deferred json number", func(t *testing.T) {
		v, err := Decode(wire.Value{Type: wire.TypeInteger, Value: json.Number("42")})
		require.NoError(t, err)
		assert.Equal(t, int64(42), v)
	})

	t.Run("integral float payload", func(t *testing.T) {
		v, err := Decode(wire.Value{Type: wire.TypeInteger, Value: float64(7)})
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
	})

	t.Run("fractional float payload fails", func(t *testing.T) {
		_, err := Decode(wire.Value{Type: wire.TypeInteger, Value: 7.5})
		assert.Error(t, err)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := Decode(wire.Value{Type: wire.TypeInteger, Value: "abc"})
		assert.Error(t, err)
	})
}

func TestDecodeFloat(t *testing.T) {
	v, err := Decode(wire.Value{Type: wire.TypeFloat, Value: json.Number("2.5")})
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
}

func TestDecodeBlob(t *testing.T) {
	t.Run("padding repair", func(t *testing.T) {
		// Some servers omit trailing '=' padding.
		repaired, err := Decode(wire.Value{Type: wire.TypeBlob, Base64: "YQ"})
		require.NoError(t, err)
		padded, err := Decode(wire.Value{Type: wire.TypeBlob, Base64: "YQ=="})
		require.NoError(t, err)
		assert.Equal(t, padded, repaired)
		assert.Equal(t, []byte("a"), repaired)
	})

	t.Run("still malformed after repair", func(t *testing.T) {
		_, err := Decode(wire.Value{Type: wire.TypeBlob, Base64: "!!!"})
		var blobErr *MalformedBlobError
		require.True(t, errors.As(err, &blobErr))
		assert.Equal(t, "!!!", blobErr.Base64)
	})

	t.Run("degenerate empty blob", func(t *testing.T) {
		v, err := Decode(wire.Value{Type: wire.TypeBlob, Base64: "", Value: "x"})
		require.NoError(t, err)
		assert.Equal(t, []byte{}, v)
	})

	t.Run("blank everywhere is null", func(t *testing.T) {
		v, err := Decode(wire.Value{Type: wire.TypeBlob})
		require.NoError(t, err)
		assert.Nil(t, v)
	})
}

func TestDecodeUnknownTag(t *testing.T) {
	_, err := Decode(wire.Value{Type: "datetime", Value: "2024-01-01"})
	assert.Error(t, err)
}
