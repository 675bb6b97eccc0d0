package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape reports what a raw payload looked like before normalization.
type Shape int

const (
	ShapeNull    Shape = iota // null or no body
	ShapeArray                // JSON array
	ShapeEncoded              // JSON string holding an encoded payload
	ShapeOther                // object, number, bool, or a string that decoded to a non-array
)

func (s Shape) String() string {
	switch s {
	case ShapeNull:
		return "null"
	case ShapeArray:
		return "array"
	case ShapeEncoded:
		return "encoded"
	default:
		return "other"
	}
}

// Normalize turns a raw RPC payload into a record list.
//
//   - null or empty body yields an empty list
//   - a JSON string is decoded once and its content normalized; invalid JSON
//     inside it is ErrMalformedResponse
//   - an array is decoded as is
//   - a body that is not valid JSON is ErrMalformedResponse
//   - any other JSON value, including a single object, yields an empty list with ShapeOther
//
// The returned slice is never nil.
func Normalize[T any](raw []byte) ([]T, Shape, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, ShapeNull, nil
	}

	if !json.Valid(raw) {
		return nil, ShapeOther, fmt.Errorf("%w: payload is not valid JSON", ErrMalformedResponse)
	}

	shape := ShapeArray
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, ShapeEncoded, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		inner := bytes.TrimSpace([]byte(text))
		if !json.Valid(inner) {
			return nil, ShapeEncoded, fmt.Errorf("%w: encoded payload is not valid JSON", ErrMalformedResponse)
		}
		raw = inner
		shape = ShapeEncoded
	}

	if raw[0] != '[' {
		return []T{}, ShapeOther, nil
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, shape, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, shape, nil
}
