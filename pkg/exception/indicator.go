package exception

import "github.com/yanun0323/errors"

var (
	// ErrInsufficientSamples means a window does not yet hold enough
	// samples for the requested statistic.
	ErrInsufficientSamples = errors.New("indicator: insufficient samples")
)
