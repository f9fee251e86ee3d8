// internal/classifier/mock.go
package classifier

import (
	"fmt"
)

// Mock is a mock implementation of Classifier for testing. It scores each
// row deterministically without requiring the ONNX shared library.
type Mock struct {
	// Classes is the width of the score rows to return
	Classes int
	// ClassOf maps a row (by its index within the call and its values) to
	// the class that receives the top score. When nil, class 0 wins.
	ClassOf func(i int, x []float32) int
	// ShouldError if true, Predict will return an error
	ShouldError bool
	// ErrorMessage is the error message to return when ShouldError is true
	ErrorMessage string
	// CallCount tracks the number of times Predict was called
	CallCount int
	// RowCount tracks the total number of rows scored across calls
	RowCount int
}

// NewMock creates a Mock with the given class count that always scores
// class 0 highest.
func NewMock(classes int) *Mock {
	return &Mock{Classes: classes}
}

// NewMockWithClassFunc creates a Mock whose winning class per row is chosen
// by fn, where i is the row's index within the Predict call.
func NewMockWithClassFunc(classes int, fn func(i int, x []float32) int) *Mock {
	return &Mock{Classes: classes, ClassOf: fn}
}

// Predict returns one score row per input, with score 1 at the winning
// class and 0 elsewhere. The batchSize hint is ignored; the mock always
// scores the whole batch at once.
func (m *Mock) Predict(batch [][]float32, batchSize int) ([][]float32, error) {
	m.CallCount++

	if m.ShouldError {
		if m.ErrorMessage != "" {
			return nil, fmt.Errorf("%s", m.ErrorMessage)
		}
		return nil, fmt.Errorf("mock inference error")
	}

	if len(batch) == 0 {
		return nil, fmt.Errorf("empty input batch")
	}
	if m.Classes <= 0 {
		return nil, fmt.Errorf("mock has no classes configured")
	}

	scores := make([][]float32, len(batch))
	for i, x := range batch {
		class := 0
		if m.ClassOf != nil {
			class = m.ClassOf(i, x)
		}
		if class < 0 || class >= m.Classes {
			return nil, fmt.Errorf("mock class %d out of range [0, %d)", class, m.Classes)
		}
		row := make([]float32, m.Classes)
		row[class] = 1
		scores[i] = row
	}
	m.RowCount += len(batch)

	return scores, nil
}

// NumClasses reports the configured score row width.
func (m *Mock) NumClasses() int {
	return m.Classes
}

// Close is a no-op for the mock implementation
func (m *Mock) Close() error {
	return nil
}

// SetError configures the mock to return an error on the next Predict call
func (m *Mock) SetError(msg string) {
	m.ShouldError = true
	m.ErrorMessage = msg
}

// ClearError clears any configured error
func (m *Mock) ClearError() {
	m.ShouldError = false
	m.ErrorMessage = ""
}

// Ensure Mock implements Classifier at compile time
var _ Classifier = (*Mock)(nil)
