package exception

import "github.com/yanun0323/errors"

var (
	// ErrOrderQueueFull means the outbound command queue rejected a
	// command because its buffer is full.
	ErrOrderQueueFull = errors.New("order: queue full")

	// ErrGatewayReject means the gateway reported an error for an order
	// the engine submitted.
	ErrGatewayReject = errors.New("order: gateway reject")
)
