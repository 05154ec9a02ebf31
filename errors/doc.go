/*
Package errors implements the error handling used across barter.

Every error returned by an extension wraps one of the root errors registered
in this package (or registered by the extension itself with Register). The
root error decides the ABCI code returned to the client, so a client can tell
"the escrow is gone" (ErrNotFound) from "not enough funds"
(ErrInsufficientAmount) without parsing messages.

Wrap the root error at the point of creation so that a stacktrace is
attached:

	return errors.Wrapf(errors.ErrNotFound, "escrow %s", addr)

Use the Is method of the root error to test for a kind:

	if errors.ErrNotFound.Is(err) { ... }

%+v prints the full stacktrace of the most inner wrap.
*/
package errors
