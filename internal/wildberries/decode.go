package wildberries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errTrailingData = errors.New("trailing data after JSON value")

// DecodePayload decodes a search response body into a JSON tree with
// json.Number leaves. The endpoint sometimes wraps JSON in a script callback,
// so when strict decoding fails the first JSON value starting at the first
// '{' is decoded instead and anything after it is ignored.
func DecodePayload(body []byte) (any, error) {
	payload, err := decodeJSON(body, true)
	if err == nil {
		return payload, nil
	}

	start := bytes.IndexByte(body, '{')
	if start < 0 {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	payload, fallbackErr := decodeJSON(body[start:], false)
	if fallbackErr != nil {
		return nil, fmt.Errorf("decoding search response at offset %d: %w", start, fallbackErr)
	}
	return payload, nil
}

func decodeJSON(b []byte, strict bool) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	if strict {
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errTrailingData
		}
	}
	return v, nil
}
