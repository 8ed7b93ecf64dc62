package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/darshan-rambhia/herald/internal/model"
)

// ErrStrategyNotConfigured matches any StrategyNotConfiguredError via errors.Is.
var ErrStrategyNotConfigured = errors.New("notification strategy not configured")

// StrategyNotConfiguredError is returned when a request names a provider
// that has no strategy bound.
type StrategyNotConfiguredError struct {
	Provider model.Provider
}

func (e *StrategyNotConfiguredError) Error() string {
	return fmt.Sprintf("notification strategy for %q is not configured", string(e.Provider))
}

func (e *StrategyNotConfiguredError) Is(target error) bool {
	return target == ErrStrategyNotConfigured
}

// Strategies binds providers to strategies. A nil value is the same as a
// missing key: the provider has no strategy.
type Strategies map[model.Provider]Strategy

// Notifier dispatches requests to the strategy bound to their provider.
// It holds no mutable state and is safe for concurrent use.
type Notifier struct {
	strategies Strategies
}

// New creates a Notifier. The map is copied, so later changes made by the
// caller are not visible to the Notifier.
func New(strategies Strategies) *Notifier {
	s := make(Strategies, len(strategies))
	for p, st := range strategies {
		s[p] = st
	}
	return &Notifier{strategies: s}
}

// Notify delivers req.Message through the strategy bound to req.Provider
// and returns its outcome and error unchanged.
func (n *Notifier) Notify(ctx context.Context, req model.Request) (model.Outcome, error) {
	strategy := n.strategies[req.Provider]
	if strategy == nil {
		return "", &StrategyNotConfiguredError{Provider: req.Provider}
	}
	return strategy.Notify(ctx, req.Message)
}

// Configured lists the providers that have a strategy, in the order of
// model.Providers. Keys outside the known set are ignored.
func (n *Notifier) Configured() []model.Provider {
	var out []model.Provider
	for _, p := range model.Providers() {
		if n.strategies[p] != nil {
			out = append(out, p)
		}
	}
	return out
}
