package adago

import (
	"context"

	"github.com/hupe1980/adago/dataset"
)

// FeatureFunc extracts feature vectors for a batch of samples, one row per
// sample in order. Implementations must not track gradients or mutate
// model/optimizer state; this is a pure feature-collection pass.
type FeatureFunc func(ctx context.Context, samples []dataset.Sample) ([][]float32, error)

// ForwardFunc runs the model forward pass in evaluation mode, returning
// both the raw class outputs (logits) and the intermediate feature vectors,
// one row per sample in order.
type ForwardFunc func(ctx context.Context, samples []dataset.Sample) (outputs, features [][]float32, err error)

// Hook is a training-loop callback. The owning loop invokes OnEpochBegin
// once before the first batch of every epoch and OnBatchEnd once after the
// forward/backward pass of every minibatch. Both calls are synchronous;
// the loop must not proceed until they return.
type Hook interface {
	OnEpochBegin(ctx context.Context, train *dataset.Dataset) error
	OnBatchEnd(ctx context.Context, batch dataset.Batch) error
}

// Hooks is an ordered sequence of hooks invoked in registration order.
// The first error aborts the sequence and is returned to the loop, which
// decides whether to abort the run.
type Hooks []Hook

// EpochBegin invokes OnEpochBegin on every hook in order.
func (h Hooks) EpochBegin(ctx context.Context, train *dataset.Dataset) error {
	for _, hook := range h {
		if err := hook.OnEpochBegin(ctx, train); err != nil {
			return err
		}
	}
	return nil
}

// BatchEnd invokes OnBatchEnd on every hook in order.
func (h Hooks) BatchEnd(ctx context.Context, batch dataset.Batch) error {
	for _, hook := range h {
		if err := hook.OnBatchEnd(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}
