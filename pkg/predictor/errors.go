package predictor

import (
	"errors"
	"fmt"
)

// ErrColumnNotFound is returned by PredictBatch for an unknown column
var ErrColumnNotFound = errors.New("column not found")

// ArtifactError reports a model artifact that could not be loaded
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("failed to load model artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}
