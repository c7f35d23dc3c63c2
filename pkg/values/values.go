// Package values converts between native Go values and the tagged wire
// values of the QuarryDB pipeline protocol.
//
// The wire format has exactly five value kinds: null, integer, float, text
// and blob. Integers are transmitted as culture-invariant base-10 strings so
// that 64-bit values round-trip exactly; booleans are mapped onto integers
// because the protocol has no boolean kind; blobs travel Base64-encoded.
package values

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// MalformedBlobError reports a blob payload that failed to decode even after
// Base64 padding repair. It carries the offending string verbatim.
type MalformedBlobError struct {
	Base64 string
	cause  error
}

func (e *MalformedBlobError) Error() string {
	return fmt.Sprintf("malformed blob payload %q: %v", e.Base64, e.cause)
}

func (e *MalformedBlobError) Unwrap() error { return e.cause }

// Encode converts a native Go value into its wire representation.
//
// nil maps to null, booleans to integer "1"/"0", all fixed-width signed and
// unsigned integers to integer strings, float32/float64 to float (float32 is
// widened, so callers narrowing from wider decimal types accept that loss),
// []byte to a Base64 blob and strings to text. time.Time and any other value
// fall back to text via an invariant string conversion.
func Encode(v any) (wire.Value, error) {
	switch x := v.(type) {
	case nil:
		return wire.Value{Type: wire.TypeNull}, nil
	case bool:
		s := "0"
		if x {
			s = "1"
		}
		return wire.Value{Type: wire.TypeInteger, Value: s}, nil
	case int:
		return intValue(int64(x)), nil
	case int8:
		return intValue(int64(x)), nil
	case int16:
		return intValue(int64(x)), nil
	case int32:
		return intValue(int64(x)), nil
	case int64:
		return intValue(x), nil
	case uint:
		return uintValue(uint64(x)), nil
	case uint8:
		return uintValue(uint64(x)), nil
	case uint16:
		return uintValue(uint64(x)), nil
	case uint32:
		return uintValue(uint64(x)), nil
	case uint64:
		return uintValue(x), nil
	case float32:
		return wire.Value{Type: wire.TypeFloat, Value: float64(x)}, nil
	case float64:
		return wire.Value{Type: wire.TypeFloat, Value: x}, nil
	case []byte:
		return wire.Value{Type: wire.TypeBlob, Base64: base64.StdEncoding.EncodeToString(x)}, nil
	case string:
		return wire.Value{Type: wire.TypeText, Value: x}, nil
	case time.Time:
		return wire.Value{Type: wire.TypeText, Value: x.UTC().Format(time.RFC3339Nano)}, nil
	default:
		return wire.Value{Type: wire.TypeText, Value: fmt.Sprint(x)}, nil
	}
}

func intValue(i int64) wire.Value {
	return wire.Value{Type: wire.TypeInteger, Value: strconv.FormatInt(i, 10)}
}

func uintValue(u uint64) wire.Value {
	return wire.Value{Type: wire.TypeInteger, Value: strconv.FormatUint(u, 10)}
}

// Decode converts a wire value back into its native Go form: nil for null,
// int64 for integer, float64 for float, string for text and []byte for blob.
//
// The payload may arrive either as a concrete scalar or as a deferred value
// produced by a generic JSON decoder (json.Number, or a string-encoded
// number); both are normalized through the same conversion table.
func Decode(v wire.Value) (any, error) {
	switch v.Type {
	case wire.TypeNull:
		return nil, nil
	case wire.TypeInteger:
		return decodeInteger(v.Value)
	case wire.TypeFloat:
		return decodeFloat(v.Value)
	case wire.TypeText:
		return decodeText(v.Value)
	case wire.TypeBlob:
		data, err := decodeBlob(v)
		if err != nil || data == nil {
			// Untyped nil, so null blobs compare equal to nil.
			return nil, err
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown value type tag %q", v.Type)
	}
}

func decodeInteger(raw any) (int64, error) {
	switch x := raw.(type) {
	case string:
		i, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("integer payload %q: %w", x, err)
		}
		return i, nil
	case json.Number:
		return decodeInteger(x.String())
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("integer payload %v has a fractional part", x)
		}
		return int64(x), nil
	default:
		return 0, fmt.Errorf("unexpected integer payload of type %T", raw)
	}
}

func decodeFloat(raw any) (float64, error) {
	switch x := raw.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("float payload %q: %w", x.String(), err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("float payload %q: %w", x, err)
		}
		return f, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("unexpected float payload of type %T", raw)
	}
}

func decodeText(raw any) (string, error) {
	switch x := raw.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	default:
		return "", fmt.Errorf("unexpected text payload of type %T", raw)
	}
}

// decodeBlob repairs truncated Base64 before decoding: some servers omit the
// trailing '=' padding, so the payload is padded to a multiple of four
// characters first. A blob with a blank Base64 field but a populated raw
// value is a degenerate empty blob; blank in both fields decodes to nil.
func decodeBlob(v wire.Value) ([]byte, error) {
	if v.Base64 == "" {
		if blank(v.Value) {
			return nil, nil
		}
		return []byte{}, nil
	}
	encoded := v.Base64
	if n := len(encoded) % 4; n != 0 {
		encoded += "===="[:4-n]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &MalformedBlobError{Base64: v.Base64, cause: err}
	}
	return data, nil
}

func blank(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return s == ""
	}
	return false
}
