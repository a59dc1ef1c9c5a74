package shim

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadySettled is returned by completion triggers fired after the first one
	ErrAlreadySettled = errors.New("invocation already settled")

	// ErrHandlerFault marks invocations that failed because the handler panicked
	ErrHandlerFault = errors.New("handler fault")

	// ErrEncodeBody marks invocations whose JSON body could not be encoded
	ErrEncodeBody = errors.New("failed to encode response body")
)

// HandlerFault carries the value a handler panicked with
type HandlerFault struct {
	Value any
	Stack []byte
}

func (f *HandlerFault) Error() string {
	return fmt.Sprintf("handler fault: %v", f.Value)
}

// Unwrap matches ErrHandlerFault, and the panic value too when it was an error
func (f *HandlerFault) Unwrap() []error {
	if err, ok := f.Value.(error); ok {
		return []error{ErrHandlerFault, err}
	}
	return []error{ErrHandlerFault}
}
