// Package result provides a discriminated success/failure envelope for
// operations whose failure is an expected outcome (network errors, server
// rejections, validation failures). Panics stay reserved for programmer
// errors.
package result

// Result holds either Data (Success true) or Err (Success false). Callers
// must branch on Success before touching Data.
type Result[T any] struct {
	Success bool
	Data    T
	Err     error
}

// Ok wraps a successful value.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Err wraps an expected failure.
func Err[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// Unwrap converts the envelope back to Go's (value, error) convention.
func (r Result[T]) Unwrap() (T, error) {
	return r.Data, r.Err
}
