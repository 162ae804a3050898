package widget

import (
	"fmt"
	"strings"
)

// ValidationError is a client-side rejection. It never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError wraps network and response-decoding failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackendRejection is a well-formed {success:false} answer.
type BackendRejection struct {
	Op      string
	Errors  []string
	Message string
}

func (e *BackendRejection) Error() string {
	switch {
	case len(e.Errors) > 0:
		return fmt.Sprintf("%s rejected: %s", e.Op, strings.Join(e.Errors, ", "))
	case e.Message != "":
		return fmt.Sprintf("%s rejected: %s", e.Op, e.Message)
	default:
		return e.Op + " rejected"
	}
}

// PersistenceError is a local storage failure. The widget keeps running in memory.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("local storage %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
