package scheduler

import "errors"

// ErrInvalidConfig is returned when a sweeper is configured without a
// positive interval
var ErrInvalidConfig = errors.New("invalid scheduler configuration")
