// internal/classifier/onnx.go
package classifier

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNX wraps an ONNX runtime session for thread-safe batched scoring.
// It implements the Classifier interface.
type ONNX struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	inputSize  int64
	numClasses int64
}

// NewONNX creates an ONNX classifier by loading the model from modelPath.
// inputSize is the flattened feature count per input and numClasses the
// width of the score rows the model emits.
func NewONNX(modelPath string, inputSize, numClasses int64) (*ONNX, error) {
	if inputSize <= 0 {
		return nil, fmt.Errorf("input size must be positive, got %d", inputSize)
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("number of classes must be positive, got %d", numClasses)
	}

	// Initialize the ONNX runtime environment
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	// Input/output names - adjust based on the exported model
	inputNames := []string{"input"}
	outputNames := []string{"scores"}

	// A dynamic session supports variable batch sizes
	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		nil, // Use default session options
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNX{
		session:    session,
		inputSize:  inputSize,
		numClasses: numClasses,
	}, nil
}

// Predict scores the batch in chunks of at most batchSize rows. Each input
// must have length inputSize; each returned row has length NumClasses.
func (o *ONNX) Predict(batch [][]float32, batchSize int) ([][]float32, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return nil, fmt.Errorf("inference session is nil")
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty input batch")
	}
	if batchSize <= 0 || batchSize > len(batch) {
		batchSize = len(batch)
	}

	scores := make([][]float32, 0, len(batch))
	for start := 0; start < len(batch); start += batchSize {
		end := start + batchSize
		if end > len(batch) {
			end = len(batch)
		}
		chunk, err := o.runChunk(batch[start:end], start)
		if err != nil {
			return nil, err
		}
		scores = append(scores, chunk...)
	}
	return scores, nil
}

// runChunk packs one chunk into a tensor, runs the session, and unpacks the
// per-row score vectors. offset is the chunk's position in the full batch,
// used only for error messages.
func (o *ONNX) runChunk(chunk [][]float32, offset int) ([][]float32, error) {
	rows := int64(len(chunk))

	// Pack the chunk into a single tensor [rows, inputSize]
	tensorData := make([]float32, 0, rows*o.inputSize)
	for i, row := range chunk {
		if int64(len(row)) != o.inputSize {
			return nil, fmt.Errorf("input %d has wrong size: got %d, expected %d", offset+i, len(row), o.inputSize)
		}
		tensorData = append(tensorData, row...)
	}

	inputShape := ort.NewShape(rows, o.inputSize)
	inputTensor, err := ort.NewTensor(inputShape, tensorData)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputShape := ort.NewShape(rows, o.numClasses)
	outputData := make([]float32, rows*o.numClasses)
	outputTensor, err := ort.NewTensor(outputShape, outputData)
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	err = o.session.Run(
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
	)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	// Split the flat output into per-row score vectors
	flat := outputTensor.GetData()
	scores := make([][]float32, rows)
	for i := int64(0); i < rows; i++ {
		row := make([]float32, o.numClasses)
		copy(row, flat[i*o.numClasses:(i+1)*o.numClasses])
		scores[i] = row
	}
	return scores, nil
}

// NumClasses reports the width of the model's score rows.
func (o *ONNX) NumClasses() int {
	return int(o.numClasses)
}

// Close releases the ONNX session resources.
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session != nil {
		err := o.session.Destroy()
		o.session = nil
		if err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
	}

	return ort.DestroyEnvironment()
}

// Ensure ONNX implements Classifier at compile time
var _ Classifier = (*ONNX)(nil)
