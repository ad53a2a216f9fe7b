package exception

import "github.com/yanun0323/errors"

var (
	// ErrLimitBreach means an intended trade would take the position
	// outside the hard inventory limit.
	ErrLimitBreach = errors.New("risk: position limit breach")
)
