package analytics

import "errors"

// ErrInvalidArgument is returned when a window size is not a positive integer.
var ErrInvalidArgument = errors.New("invalid argument")
