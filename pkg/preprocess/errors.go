package preprocess

import (
	"errors"
)

var (
	// ErrInvalidArgument is returned by constructors when a configuration
	// value makes no sense (e.g. a non-positive chunk size).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInitializationFailure is returned when the underlying processing
	// state could not be allocated.
	ErrInitializationFailure = errors.New("unable to initialize the preprocessor state")

	// ErrShapeMismatch is returned when a buffer is not exactly one chunk
	// long.
	ErrShapeMismatch = errors.New("buffer size does not match the configured chunk size")
)
