package health

import (
	"context"
	"fmt"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	// Ready returns the first failing dependency, prefixed with its name.
	Ready(ctx context.Context) error
	// Report runs every check and maps dependency name to "ok" or the failure.
	Report(ctx context.Context) (map[string]string, bool)
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

func (s *service) Ready(ctx context.Context) error {
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			return fmt.Errorf("%s: %w", ch.Name(), err)
		}
	}
	return nil
}

func (s *service) Report(ctx context.Context) (map[string]string, bool) {
	out := make(map[string]string, len(s.checkers))
	ok := true
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			out[ch.Name()] = "unavailable"
			ok = false
			continue
		}
		out[ch.Name()] = "ok"
	}
	return out, ok
}
