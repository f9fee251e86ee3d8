// internal/classifier/classifier_test.go
package classifier

import (
	"os"
	"testing"
)

func TestMock_PredictDefault(t *testing.T) {
	mock := NewMock(3)

	batch := [][]float32{
		{0.1, 0.2, 0.3, 0.4},
		{0.5, 0.6, 0.7, 0.8},
	}

	scores, err := mock.Predict(batch, 0)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if len(scores) != len(batch) {
		t.Fatalf("Expected %d score rows, got %d", len(batch), len(scores))
	}
	for i, row := range scores {
		if len(row) != 3 {
			t.Errorf("Row %d has width %d, want 3", i, len(row))
		}
		// Default mock scores class 0 highest
		if row[0] != 1 || row[1] != 0 || row[2] != 0 {
			t.Errorf("Row %d = %v, expected top score at class 0", i, row)
		}
	}

	if mock.CallCount != 1 {
		t.Errorf("Expected CallCount=1, got %d", mock.CallCount)
	}
	if mock.RowCount != 2 {
		t.Errorf("Expected RowCount=2, got %d", mock.RowCount)
	}
}

func TestMock_PredictClassFunc(t *testing.T) {
	mock := NewMockWithClassFunc(2, func(i int, x []float32) int {
		return i % 2
	})

	batch := [][]float32{
		{0.1}, {0.2}, {0.3}, {0.4},
	}

	scores, err := mock.Predict(batch, 0)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	for i, row := range scores {
		want := i % 2
		if row[want] != 1 {
			t.Errorf("Row %d = %v, expected top score at class %d", i, row, want)
		}
	}
}

func TestMock_PredictError(t *testing.T) {
	mock := NewMock(3)
	mock.SetError("test error")

	_, err := mock.Predict([][]float32{{0.1}}, 0)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if err.Error() != "test error" {
		t.Errorf("Expected 'test error', got '%s'", err.Error())
	}

	mock.ClearError()
	if _, err := mock.Predict([][]float32{{0.1}}, 0); err != nil {
		t.Errorf("Expected no error after ClearError, got %v", err)
	}
}

func TestMock_EmptyBatch(t *testing.T) {
	mock := NewMock(3)
	if _, err := mock.Predict([][]float32{}, 0); err == nil {
		t.Fatal("Expected error for empty batch")
	}
}

func TestMock_ClassOutOfRange(t *testing.T) {
	mock := NewMockWithClassFunc(2, func(i int, x []float32) int {
		return 5
	})
	if _, err := mock.Predict([][]float32{{0.1}}, 0); err == nil {
		t.Fatal("Expected error for out-of-range class")
	}
}

func TestONNX_InvalidDimensions(t *testing.T) {
	if _, err := NewONNX("model.onnx", 0, 10); err == nil {
		t.Error("Expected error for zero input size")
	}
	if _, err := NewONNX("model.onnx", 784, 0); err == nil {
		t.Error("Expected error for zero class count")
	}
}

func TestONNX_WithModel(t *testing.T) {
	// Skip if ONNX model or library is not available
	modelPath := "testdata/dummy.onnx"
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		t.Skip("Skipping real inference test: testdata/dummy.onnx not found")
	}

	// Try to create the classifier - will fail if the ONNX library is not installed
	clf, err := NewONNX(modelPath, 4, 2)
	if err != nil {
		t.Skipf("Skipping real inference test: %v", err)
	}
	defer clf.Close()

	batch := [][]float32{
		{0.1, 0.2, 0.3, 0.4},
		{0.5, 0.6, 0.7, 0.8},
		{0.9, 1.0, 1.1, 1.2},
	}

	// batchSize 2 forces a partial final chunk
	scores, err := clf.Predict(batch, 2)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if len(scores) != len(batch) {
		t.Errorf("Expected %d score rows, got %d", len(batch), len(scores))
	}
	for i, row := range scores {
		if len(row) != clf.NumClasses() {
			t.Errorf("Row %d has width %d, want %d", i, len(row), clf.NumClasses())
		}
	}
}
