// internal/attack/attack.go

// Package attack defines the evasion-attack capability surface of the
// toolkit.
package attack

import "errors"

// ErrNotImplemented is returned by attacks whose generation strategy is not
// implemented.
var ErrNotImplemented = errors.New("attack generation not implemented")

// EvasionAttack produces adversarial perturbations of a batch of inputs.
// y carries the true labels when the attack uses them; it may be nil.
type EvasionAttack interface {
	Generate(x [][]float32, y []int) ([][]float32, error)
	SetParams(params map[string]interface{}) error
}

// AutoAttack is a placeholder for the parameter-free attack ensemble of
// Croce & Hein (2020), which runs several attacks and keeps the strongest
// per-sample perturbation. The ensemble is not implemented; both methods
// fail with ErrNotImplemented rather than fabricating behavior.
//
// Paper link: https://arxiv.org/abs/2003.01690
type AutoAttack struct{}

// NewAutoAttack creates the placeholder attack.
func NewAutoAttack() *AutoAttack {
	return &AutoAttack{}
}

// Generate fails with ErrNotImplemented.
func (a *AutoAttack) Generate(x [][]float32, y []int) ([][]float32, error) {
	return nil, ErrNotImplemented
}

// SetParams fails with ErrNotImplemented; the attack has no parameters it
// could honor.
func (a *AutoAttack) SetParams(params map[string]interface{}) error {
	return ErrNotImplemented
}

// Ensure AutoAttack implements EvasionAttack at compile time
var _ EvasionAttack = (*AutoAttack)(nil)
