package cluster

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when the cluster count is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrEmptyInput is returned when Fit receives no vectors.
	ErrEmptyInput = errors.New("no input vectors")

	// ErrNotFitted is returned when results are requested before Fit.
	ErrNotFitted = errors.New("clusterer has not been fitted")
)

// ErrDimensionMismatch indicates input data whose length is inconsistent
// with the configured dimensionality.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
