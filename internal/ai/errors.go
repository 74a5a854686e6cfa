package ai

import (
	"errors"
	"fmt"
)

// ErrUnavailable signals that every model in the fallback chain was
// exhausted. Distinct from FormatError: the user may simply retry later.
var ErrUnavailable = errors.New("ai unavailable: all models exhausted")

// FormatError reports an upstream response that could not be parsed into
// the expected shape. Raw carries the cleaned response text for diagnosis.
type FormatError struct {
	Raw    string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unexpected ai response shape: %s", e.Reason)
}

// IsFormatError reports whether err is (or wraps) a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
