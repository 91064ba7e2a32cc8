package dataset

import (
	"errors"
	"fmt"
)

// NoLabel marks a sample without a class label (all target samples).
const NoLabel = -1

// ErrEmptyVector is returned when a sample has no features.
var ErrEmptyVector = errors.New("sample has no features")

// ErrDimensionMismatch indicates a sample whose feature vector does not
// match the dataset dimensionality.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Sample is one training example.
type Sample struct {
	// Features is the raw input vector (dataset-owned).
	Features []float32

	// Domain is the domain indicator: >= 0 source, < 0 target.
	Domain int

	// Index is the stable row index of the sample within its domain side,
	// assigned by Dataset.Add. Target indices address memory-bank rows
	// directly, so they run 0..targetCount-1 in insertion order; source
	// indices likewise run 0..sourceCount-1.
	Index int

	// Label is the class id for source samples, NoLabel otherwise.
	Label int
}

// IsSource reports whether the sample belongs to a source domain.
func (s Sample) IsSource() bool { return s.Domain >= 0 }

// IsTarget reports whether the sample belongs to the target domain.
func (s Sample) IsTarget() bool { return s.Domain < 0 }

// Batch is a minibatch view of samples.
type Batch = []Sample

// Dataset is an ordered collection of samples with a fixed dimensionality.
// It assigns stable per-side row indices at Add time and is the unit the
// epoch-begin hook consumes.
type Dataset struct {
	dim     int
	samples []Sample
	sources int
	targets int
}

// New creates an empty dataset for vectors of the given dimensionality.
func New(dim int) (*Dataset, error) {
	if dim <= 0 {
		return nil, &ErrDimensionMismatch{Expected: 1, Actual: dim}
	}
	return &Dataset{dim: dim}, nil
}

// Add appends a sample, assigning its stable per-side index.
// Target samples must carry NoLabel.
func (d *Dataset) Add(features []float32, domain, label int) (Sample, error) {
	if len(features) == 0 {
		return Sample{}, ErrEmptyVector
	}
	if len(features) != d.dim {
		return Sample{}, &ErrDimensionMismatch{Expected: d.dim, Actual: len(features)}
	}

	s := Sample{
		Features: features,
		Domain:   domain,
		Label:    label,
	}
	if s.IsSource() {
		s.Index = d.sources
		d.sources++
	} else {
		s.Index = d.targets
		s.Label = NoLabel
		d.targets++
	}

	d.samples = append(d.samples, s)
	return s, nil
}

// Dim returns the feature dimensionality.
func (d *Dataset) Dim() int { return d.dim }

// Len returns the total number of samples.
func (d *Dataset) Len() int { return len(d.samples) }

// SourceCount returns the number of source samples.
func (d *Dataset) SourceCount() int { return d.sources }

// TargetCount returns the number of target samples. Memory banks are
// allocated with exactly this many rows.
func (d *Dataset) TargetCount() int { return d.targets }

// Samples returns all samples in insertion order.
// The returned slice is owned by the dataset; callers must not mutate it.
func (d *Dataset) Samples() []Sample { return d.samples }

// Split partitions the samples by domain sign into source and target
// subsets, preserving insertion order.
func (d *Dataset) Split() (source, target []Sample) {
	return Split(d.samples)
}

// Split partitions a batch by domain sign, preserving order.
func Split(samples []Sample) (source, target []Sample) {
	for _, s := range samples {
		if s.IsSource() {
			source = append(source, s)
		} else {
			target = append(target, s)
		}
	}
	return source, target
}

// Target returns only the target-domain rows of a batch, preserving order.
func Target(samples []Sample) []Sample {
	_, target := Split(samples)
	return target
}

// Features extracts the raw feature vectors of a batch, preserving order.
func Features(samples []Sample) [][]float32 {
	out := make([][]float32, len(samples))
	for i, s := range samples {
		out[i] = s.Features
	}
	return out
}

// Flatten concatenates feature vectors row-major into one slice.
func Flatten(rows [][]float32) []float32 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float32, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
