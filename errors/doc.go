/*
Package errors implements the error handling used across quorum.

Every error returned to a client must wrap one of the registered root errors.
Root errors carry an ABCI code so that a client can distinguish failure
classes (for example a duplicated multisig from a treasury mismatch) without
parsing the message.

Extensions declare their own root errors with Register(code, description),
once, during package initialization. x/multisig reserves codes 1030-1039 and
compress reserves 1040-1049.

Wrap an error at the point it is detected, either with errors.Wrap(err, "...")
or with ErrXyz.New("..."). The first wrap attaches a stacktrace. Test the kind
of an error with the Is method of the root error:

	if multisig.ErrAlreadyInitialized.Is(err) { ... }

Formatting an error with %+v prints the stacktrace, %s and %v print only the
message chain.
*/
package errors
