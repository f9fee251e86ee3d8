// internal/classifier/interface.go
package classifier

// Classifier is the minimal capability the smoothing layer requires from a
// wrapped model. This abstraction allows for easy mocking in tests and
// swapping implementations.
type Classifier interface {
	// Predict scores a batch of inputs, splitting the work into chunks of
	// at most batchSize rows when batchSize > 0. It returns one score row
	// of length NumClasses per input; a higher score means a more
	// preferred class. Scoring must be deterministic for identical input.
	Predict(batch [][]float32, batchSize int) ([][]float32, error)

	// NumClasses reports the width of the score rows Predict returns.
	NumClasses() int

	// Close releases any resources held by the classifier.
	Close() error
}
