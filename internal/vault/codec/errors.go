package codec

import "fmt"

// ErrNotFound means no document exists for the requested (profile, type).
// Callers commonly treat it as the first-run signal, not a fault.
var ErrNotFound = fmt.Errorf("document not found")

// EncodeError wraps a failure to serialize a document payload. Cyclic object
// graphs are rejected by the encoder and surface here.
type EncodeError struct {
	Type string
	Err  error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode %s: %v", e.Type, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError wraps a failure to decode stored content as the requested
// document type, including a stored type tag that doesn't match.
type DecodeError struct {
	Type string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Type, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
