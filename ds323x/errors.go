package ds323x

import (
	"errors"
	"fmt"
)

// ErrInvalidInputData is returned when a parameter is outside the range the
// device accepts.
var ErrInvalidInputData = errors.New("ds323x: invalid input data")

// TransportError reports a failure of the underlying bus. The device shadows
// are left untouched when an operation returns one.
type TransportError struct {
	Op       string // "read" or "write"
	Register uint8
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ds323x: %s register 0x%02X: %v", e.Op, e.Register, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
