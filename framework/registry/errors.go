package registry

import (
	"errors"
	"reflect"
)

var (
	// ErrDuplicateRegistration is reported when a type already has an instance.
	// The first instance is kept.
	ErrDuplicateRegistration = errors.New("service already registered")

	// ErrTypeMismatch is reported when an instance does not satisfy the type
	// it is registered under.
	ErrTypeMismatch = errors.New("service does not match registered type")

	// ErrNotRegistered is returned by Get when no instance exists for a type.
	ErrNotRegistered = errors.New("service not registered")
)

// Error describes a failed registry operation on one service type.
type Error struct {
	Op   string       // "register", "get"
	Type reflect.Type // requested or registered type, may be nil
	Err  error
}

func (e *Error) Error() string {
	return "registry: " + e.Op + " " + TypeName(e.Type) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// NotRegistered builds the error returned when a lookup for t finds nothing.
func NotRegistered(t reflect.Type) error {
	return &Error{Op: "get", Type: t, Err: ErrNotRegistered}
}
