package order

import (
	"context"
	"sync/atomic"

	"github.com/yanun0323/logs"

	"main/internal/schema"
	"main/pkg/exception"
)

// Delegator carries one command to the external gateway.
type Delegator interface {
	Send(context.Context, schema.Command) error
}

// DelegatorFunc adapts a function to the Delegator interface.
type DelegatorFunc func(context.Context, schema.Command) error

// Send calls the wrapped function.
func (f DelegatorFunc) Send(ctx context.Context, cmd schema.Command) error {
	return f(ctx, cmd)
}

// Usecase is the bounded outbound command queue. Submit never blocks;
// a single worker drains the queue so commands reach the gateway in
// submission order.
type Usecase struct {
	delegator Delegator

	running atomic.Bool
	queue   chan schema.Command
}

// NewUsecase allocates the queue with the given capacity.
func NewUsecase(capacity int, delegator Delegator) *Usecase {
	if capacity <= 0 {
		capacity = 1
	}
	return &Usecase{
		delegator: delegator,
		queue:     make(chan schema.Command, capacity),
	}
}

// Submit enqueues a command without blocking.
func (use *Usecase) Submit(cmd schema.Command) error {
	select {
	case use.queue <- cmd:
		return nil
	default:
		return exception.ErrOrderQueueFull
	}
}

// Depth reports the number of queued commands.
func (use *Usecase) Depth() int {
	return len(use.queue)
}

// Run starts the single worker. Send failures are logged and dropped;
// the gateway reports the order's fate through its own error events.
func (use *Usecase) Run(ctx context.Context) {
	if use.running.Swap(true) {
		return
	}

	go func() {
		for {
			select {
			case cmd := <-use.queue:
				if err := use.delegator.Send(ctx, cmd); err != nil {
					logs.Errorf("send command type %d: %v", cmd.Type, err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
