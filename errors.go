package adago

import (
	"errors"
	"fmt"

	"github.com/hupe1980/adago/cluster"
)

var (
	// ErrInvalidK is returned when a cluster count is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidMomentum is returned when a memory-bank momentum lies
	// outside [0, 1).
	ErrInvalidMomentum = errors.New("momentum must be in [0, 1)")

	// ErrInvalidSize is returned when a memory bank is allocated with a
	// non-positive row count, dimension, or class count.
	ErrInvalidSize = errors.New("rows, dim and classes must be positive")

	// ErrEmptyPartition is returned when a required domain subset (or the
	// set of labeled source classes) is empty.
	ErrEmptyPartition = errors.New("empty domain partition")

	// ErrNilCollaborator is returned when a hook is constructed without
	// its state object or model function.
	ErrNilCollaborator = errors.New("nil collaborator")

	// ErrIndexOutOfRange is returned when a sample index does not address
	// a memory-bank row.
	ErrIndexOutOfRange = errors.New("sample index out of range")
)

// ErrDimensionMismatch indicates a feature/output dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// translateError lifts sub-package errors into the package taxonomy so
// callers only ever match against adago errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, cluster.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}
	if errors.Is(err, cluster.ErrEmptyInput) {
		return fmt.Errorf("%w: %w", ErrEmptyPartition, err)
	}

	var dm *cluster.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	return err
}
