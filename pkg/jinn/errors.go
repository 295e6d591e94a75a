package jinn

import "errors"

// Sentinel errors returned by jinn operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, jinn.ErrCorruptBlock) {
//	    // the block failed to decode; iteration has been aborted
//	}
var (
	// ErrBadMagic indicates the file's first four bytes are not "jinn".
	//
	// Returned from [ReadHeader]. The file is not a jinn database (or is
	// empty/garbage). [Open] does not surface it: it writes a fresh header
	// instead.
	ErrBadMagic = errors.New("jinn: bad magic")

	// ErrUnsupportedVersion indicates the header's version byte is not one
	// this package understands.
	ErrUnsupportedVersion = errors.New("jinn: unsupported version")

	// ErrCorruptBlock indicates a block failed to decode: the stored bytes
	// did not contain a balanced '{'...'}' span, or the span was not valid
	// JSON. Iteration that encounters this aborts immediately.
	ErrCorruptBlock = errors.New("jinn: corrupt block")

	// ErrBlockSizeMismatch names the error for a newline-delimited file
	// whose records do not all encode to the same length. This package has
	// no newline-delimited loader, so none of its operations return it.
	ErrBlockSizeMismatch = errors.New("jinn: block size mismatch")

	// ErrInvalidArgument indicates a malformed public-API argument: an
	// update directive or query operator given a value of the wrong shape,
	// a zero block size, a record that does not fit its block, and so on.
	// A negative limit is not rejected; it behaves like no limit.
	ErrInvalidArgument = errors.New("jinn: invalid argument")

	// ErrClosed indicates an operation was attempted on a [DB] that has
	// already been closed.
	ErrClosed = errors.New("jinn: closed")
)
