// Package notify routes notification requests to provider-specific
// strategies. Strategies never deliver anything themselves: each one wraps
// an injected send function and calls it exactly once per notification.
package notify

import (
	"context"

	"github.com/darshan-rambhia/herald/internal/model"
)

// Strategy delivers a message through one provider.
type Strategy interface {
	// Notify delivers message and reports the outcome. A non-nil error
	// comes from the underlying transport and is returned as is.
	Notify(ctx context.Context, message model.Message) (model.Outcome, error)
}

// StrategyFunc adapts an ordinary function to the Strategy interface.
type StrategyFunc func(ctx context.Context, message model.Message) (model.Outcome, error)

// Notify calls f(ctx, message).
func (f StrategyFunc) Notify(ctx context.Context, message model.Message) (model.Outcome, error) {
	return f(ctx, message)
}
