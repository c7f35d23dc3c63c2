package codec

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSON is the pipeline protocol codec. Decoding preserves numbers as
// json.Number so that integer payloads reach the value layer undamaged
// instead of being widened to float64.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) NewEncoder(w io.Writer) Encoder {
	return json.NewEncoder(w)
}

func (JSON) Unmarshal(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}

func (JSON) NewDecoder(r io.Reader) Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}
