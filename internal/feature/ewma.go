// Package feature holds the single-stream indicators consumed by strategies.
package feature

import (
	"fmt"

	"github.com/GarrickPinon/hft-engine/internal/core"
)

// EWMA is a recursive exponentially weighted moving average,
// v <- alpha*x + (1-alpha)*v. The first update seeds the value with no decay.
type EWMA struct {
	alpha       float64
	value       float64
	initialized bool
}

// NewEWMA validates alpha in (0, 1]. Alpha = 2/(N+1) approximates an N-sample
// moving average.
func NewEWMA(alpha float64) (*EWMA, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("ewma alpha %v must be in (0, 1]: %w", alpha, core.ErrInvalidConfig)
	}
	return &EWMA{alpha: alpha}, nil
}

// Update folds one observation into the average.
func (e *EWMA) Update(x float64) {
	if !e.initialized {
		e.value = x
		e.initialized = true
		return
	}
	e.value = e.alpha*x + (1.0-e.alpha)*e.value
}

// Value returns the current estimate; zero before the first update.
func (e *EWMA) Value() float64 { return e.value }

// Initialized reports whether a first observation has seeded the average.
func (e *EWMA) Initialized() bool { return e.initialized }
