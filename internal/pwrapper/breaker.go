package pwrapper

import (
	"context"

	"github.com/pioneer-storage/pioneer/internal/circuit"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// CircuitBreaking guards Get/Put/Remove with objectfs's internal/circuit
// breaker, tripping open when a backend (e.g. a flapping S3 endpoint) fails
// repeatedly instead of letting every caller hang on its own timeout.
type CircuitBreaking struct {
	*Wrapper

	breaker *circuit.CircuitBreaker
}

// NewCircuitBreaking wraps inner with a named circuit breaker.
func NewCircuitBreaking(inner pstorage.Client, name string, cfg circuit.Config) *CircuitBreaking {
	return &CircuitBreaking{Wrapper: &Wrapper{Inner: inner}, breaker: circuit.NewCircuitBreaker(name, cfg)}
}

func (c *CircuitBreaking) Get(ctx context.Context, key pstorage.StorageKey) (pstorage.FileData, error) {
	var out pstorage.FileData
	err := c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.Wrapper.Get(ctx, key)
		return err
	})
	return out, err
}

func (c *CircuitBreaking) Put(ctx context.Context, obj pstorage.Object, data pstorage.FileData) error {
	return c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) error {
		return c.Wrapper.Put(ctx, obj, data)
	})
}

func (c *CircuitBreaking) Remove(ctx context.Context, key pstorage.StorageKey) error {
	return c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) error {
		return c.Wrapper.Remove(ctx, key)
	})
}

// State reports the breaker's current CLOSED/OPEN/HALF_OPEN state.
func (c *CircuitBreaking) State() circuit.State {
	return c.breaker.GetState()
}
