// internal/attack/attack_test.go
package attack

import (
	"errors"
	"testing"
)

func TestAutoAttack_GenerateNotImplemented(t *testing.T) {
	a := NewAutoAttack()

	x := [][]float32{{0.1, 0.2}}
	adv, err := a.Generate(x, []int{0})
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Expected ErrNotImplemented, got %v", err)
	}
	if adv != nil {
		t.Errorf("Expected nil output, got %v", adv)
	}

	// Labels are optional
	if _, err := a.Generate(x, nil); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Expected ErrNotImplemented without labels, got %v", err)
	}
}

func TestAutoAttack_SetParamsNotImplemented(t *testing.T) {
	a := NewAutoAttack()

	err := a.SetParams(map[string]interface{}{"eps": 0.3})
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Expected ErrNotImplemented, got %v", err)
	}
}
