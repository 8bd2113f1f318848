package protocol

import (
	"errors"
	"fmt"
)

// Error categories. Handlers wrap one of these so the dispatcher can decide
// how a failure reaches the wire.
var (
	ErrParse          = errors.New("parse error")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotFound       = errors.New("not found")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrNative         = errors.New("native subsystem failure")
)

// ParseError describes a malformed line or an unexpected token.
type ParseError struct {
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Column > 0 {
		return fmt.Sprintf("parse error at column %d: %s", e.Column, e.Msg)
	}
	return "parse error: " + e.Msg
}

func (e *ParseError) Unwrap() error { return ErrParse }

// NotFound returns an ErrNotFound for the given kind of object and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Mismatch returns an ErrTypeMismatch for an operation applied to an object
// lacking the required capability.
func Mismatch(op, id string) error {
	return fmt.Errorf("%s: object %q does not support it: %w", op, id, ErrTypeMismatch)
}

// Native wraps a failure from an image, audio, file or dialog subsystem.
func Native(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNative, err)
}
