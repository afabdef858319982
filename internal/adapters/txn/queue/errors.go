package queue

import "errors"

// Admission failures. Callers translate ErrFull into backpressure and
// ErrClosed into a shutdown response.
var (
	ErrFull   = errors.New("transaction queue full")
	ErrClosed = errors.New("transaction queue closed")
)
