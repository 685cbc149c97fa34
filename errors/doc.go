/*
Package errors implements the error taxonomy shared by all extensions.

Reuse the root errors declared in this package wherever possible and
declare package specific root errors only when a client must be able to
tell them apart. Register a custom error with Register(code, description)
during program startup; codes are unique and a reused code panics.

Create errors at the point of failure with ErrXyz.New("...") or
errors.Wrap(err, "..."), so that a stack trace is attached on the first
wrap. Code stands for the ABCI error code returned to the client.

	%s is just the error message
	%+v is the full stack trace
*/
package errors
