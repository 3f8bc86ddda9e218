package iris

import "fmt"

// DecodeError reports malformed or unsupported image bytes, or degenerate
// dimensions. It is fatal for the single image only; processing of the other
// eye is unaffected.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode image: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode image: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError reports an invalid eye side or a structurally incomplete
// feature record.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid analysis input: %s", e.Reason)
}
