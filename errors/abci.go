package errors

import (
	"errors"
	"fmt"
)

// SuccessABCICode is reported for a transaction processed without error.
const SuccessABCICode = 0

// Errors that do not carry a registered root are reported with code 1 and,
// outside of debug mode, a generic message so that no implementation detail
// reaches the client.
const (
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log of an ABCI response for given error.
//
// A registered root error gives its code, anything else code 1. Outside of
// debug mode the log of unregistered errors and of recovered panics is
// replaced with "internal error". In debug mode the log contains the stack
// trace.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	if debug {
		return code, fmt.Sprintf("%+v", err)
	}
	if code == internalABCICode || code == ErrPanic.code {
		return code, internalABCILog
	}
	return code, err.Error()
}

// ABCIError rebuilds an error from the code and log of an ABCI response.
// The result of a registered code wraps its root error, so that
//   ErrNotFound.Is(ABCIError(ABCIInfo(ErrNotFound, false)))
// holds on the client side.
func ABCIError(code uint32, log string) error {
	if root := codes[code]; root != nil {
		return Wrap(root, log)
	}
	return Wrap(errors.New(log), "unregistered code")
}

// abciCode walks down the causes of err until one carries a code.
func abciCode(err error) uint32 {
	type coder interface {
		ABCICode() uint32
	}
	for ; err != nil; err = unwrap(err) {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
	}
	return internalABCICode
}
