package resource

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
)

// DecodeFunc turns a raw payload into a value.
type DecodeFunc[T any] func(data []byte) (T, error)

// FetchDecode builds a LoadFunc that fetches key through f and decodes it.
// Decode failures become *Error values with StatusParse.
func FetchDecode[T any](f Fetcher, decode DecodeFunc[T]) LoadFunc[T] {
	return func(ctx context.Context, key string) (T, error) {
		var zero T
		data, err := f.Fetch(ctx, key)
		if err != nil {
			if _, ok := AsError(err); ok {
				return zero, err
			}
			return zero, &Error{Resource: key, Status: StatusTransport, Err: err}
		}
		v, err := decode(data)
		if err != nil {
			return zero, &Error{Resource: key, Status: StatusParse, Err: err}
		}
		return v, nil
	}
}

// JSON decodes data into a new T.
func JSON[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decoding JSON: %w", err)
	}
	return v, nil
}
