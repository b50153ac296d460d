// Package failure defines the error kinds shared by every pipeline stage.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so callers can branch on it.
type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindNotFound    Kind = "not_found"
	KindSchema      Kind = "schema"
	KindCapability  Kind = "capability"
	KindCardinality Kind = "cardinality"
	KindValue       Kind = "value"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrNotFound    = errors.New("not found")
	ErrSchema      = errors.New("schema error")
	ErrCapability  = errors.New("capability error")
	ErrCardinality = errors.New("cardinality error")
	ErrValue       = errors.New("value error")
)

var sentinels = map[Kind]error{
	KindNotFound:    ErrNotFound,
	KindSchema:      ErrSchema,
	KindCapability:  ErrCapability,
	KindCardinality: ErrCardinality,
	KindValue:       ErrValue,
}

// Error is a kinded failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New returns a kinded error with a formatted message.
func New(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to err. A nil err returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// NotFound, Schema, Capability, Cardinality and Value are shorthands for New.
func NotFound(op, format string, args ...any) error {
	return New(KindNotFound, op, format, args...)
}

func Schema(op, format string, args ...any) error {
	return New(KindSchema, op, format, args...)
}

func Capability(op, format string, args ...any) error {
	return New(KindCapability, op, format, args...)
}

func Cardinality(op, format string, args ...any) error {
	return New(KindCardinality, op, format, args...)
}

func Value(op, format string, args ...any) error {
	return New(KindValue, op, format, args...)
}

// KindOf returns the kind of the outermost *Error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
