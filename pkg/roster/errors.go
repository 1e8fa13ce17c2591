package roster

import "errors"

// ErrInvalidInput is returned by Generate when the request is malformed —
// an empty or non-contiguous date list, or a target_limits entry for an
// unknown doctor. It is the only error Generate ever returns; an infeasible day is
// never an error, it is an Unfilled roster entry plus a rejection reason.
var ErrInvalidInput = errors.New("invalid scheduling input")
