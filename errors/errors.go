package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data. For escrows this means it was never created
	// or it was already resolved.
	ErrNotFound = Register(3, "not found")

	// ErrMsg is returned whenever an event is invalid and cannot be
	// handled.
	ErrMsg = Register(4, "invalid message")

	// ErrModel is returned whenever a message is invalid and cannot
	// be used (ie. persisted).
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when there is a record already that has
	// the same unique key/index used.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman is returned when application reaches a code path which
	// should not ever be reached if the code was written as expected.
	ErrHuman = Register(7, "coding error")

	// ErrSequence is returned when a signature carries a sequence other
	// than the next one expected for the signer.
	ErrSequence = Register(8, "invalid sequence")

	// ErrEmpty is returned when a value fails a not empty assertion.
	ErrEmpty = Register(9, "value is empty")

	// ErrState is returned when an object is in an unexpected state, ie.
	// a vault that does not belong to the escrow it is bound to.
	ErrState = Register(10, "invalid state")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(11, "invalid type")

	// ErrInsufficientAmount is returned when an amount of an asset is
	// insufficient, e.g. funds/fees.
	ErrInsufficientAmount = Register(12, "insufficient amount")

	// ErrAmount stands for invalid amount of whatever.
	ErrAmount = Register(13, "invalid amount")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(14, "invalid input")

	// ErrIteratorDone is returned by an iterator that has no more
	// elements.
	ErrIteratorDone = Register(15, "iterator done")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrUnderflow is returned when a computation cannot be completed
	// because the result value goes below the type minimum.
	ErrUnderflow = Register(17, "an operation cannot be completed due to value underflow")

	// ErrDatabase is returned when the backing store fails.
	ErrDatabase = Register(18, "database")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// codes holds every registered root error by its ABCI code. Code 1 is kept
// for errors that were never registered.
var codes = map[uint32]*Error{1: nil}

// Register declares a new root error. Extensions declaring their own errors
// must call it from a package level var block, a code may be taken only once
// and reusing it panics.
func Register(code uint32, description string) *Error {
	if prev, taken := codes[code]; taken {
		desc := "<internal>"
		if prev != nil {
			desc = prev.desc
		}
		panic(fmt.Sprintf("error code %d already taken by %q", code, desc))
	}
	e := &Error{code: code, desc: description}
	codes[code] = e
	return e
}

// Error is a root error. Errors returned at runtime wrap one of them, so the
// client always receives a known code.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string { return e.desc }

// ABCICode returns the code this error is reported with.
func (e Error) ABCICode() uint32 { return e.code }

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with a format string.
func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrapf(e, format, args...)
}

// Is returns true if err is e or wraps e at any depth. A nil root matches
// nil errors only, including typed nil pointers.
func (e *Error) Is(err error) bool {
	if e == nil {
		return errIsNil(err)
	}
	for ; err != nil; err = unwrap(err) {
		if err == e {
			return true
		}
	}
	return false
}

// Wrap returns err annotated with description, or nil for a nil err. A stack
// trace is recorded at the innermost wrap only.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error { return e.parent }

// Format prints the stack trace for %+v and the message otherwise.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	fmt.Fprint(s, e.Error())
	if verb != 'v' || !s.Flag('+') {
		return
	}
	if st := stackTrace(e); st != nil {
		fmt.Fprintf(s, "\n%+v", st)
	}
}

// Recover turns a panic into an ErrPanic assigned to *err. It must be
// deferred.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType annotates err with the Go type of obj.
func WithType(err error, obj interface{}) error {
	return Wrapf(err, "%T", obj)
}

type causer interface {
	Cause() error
}

// unwrap returns the error wrapped by err or nil.
func unwrap(err error) error {
	if c, ok := err.(causer); ok {
		return c.Cause()
	}
	return nil
}

// stackTrace returns the innermost recorded stack trace, if any.
func stackTrace(err error) errors.StackTrace {
	type tracer interface {
		StackTrace() errors.StackTrace
	}
	for ; err != nil; err = unwrap(err) {
		if t, ok := err.(tracer); ok {
			return t.StackTrace()
		}
	}
	return nil
}

// errIsNil also catches a nil pointer stored in a non nil interface.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
