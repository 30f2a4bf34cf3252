package plantdata

import (
	"errors"
	"fmt"
)

// ErrDataNotFound means the named array declaration is absent from the file.
var ErrDataNotFound = errors.New("plant data declaration not found")

// ShapeError means the declaration parsed but is not an array.
type ShapeError struct {
	Got string // json type actually found
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("plant data must be an array, got %s", e.Got)
}

// FormatError means the relaxed literal still failed to parse, or a row
// failed validation. Construct points at the offending piece.
type FormatError struct {
	Construct string
	Err       error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad plant data near %q: %v", e.Construct, e.Err)
	}
	return fmt.Sprintf("bad plant data: %s", e.Construct)
}

func (e *FormatError) Unwrap() error { return e.Err }
