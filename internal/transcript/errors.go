package transcript

import "fmt"

// InvalidInputError reports malformed word timings or slicing parameters.
// Index is the offending word position, or -1 when not tied to a word.
type InvalidInputError struct {
	Index  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input at word %d: %s", e.Index, e.Reason)
}

// UnsupportedMethodError is returned for slicing methods other than
// DURATION, TURNS and PARAGRAPH.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported slicing method %q", e.Method)
}
