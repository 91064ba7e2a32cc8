package adago

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/adago/cluster"
	"github.com/hupe1980/adago/dataset"
	"github.com/hupe1980/adago/floats"
)

// CentroidOptions holds the tunables of a SourceCentroids hook.
type CentroidOptions struct {
	// MaxIterations caps the spherical k-means iteration per epoch.
	MaxIterations int

	// RandomSeed seeds the clusterer's fallback initialization. It is
	// unused in practice: the clusterer is always seeded with the source
	// class centroids.
	RandomSeed int64

	Logger  *Logger
	Metrics MetricsCollector
}

// SourceCentroids is the epoch-begin hook that computes per-class source
// centroids and clusters the target features seeded by them.
type SourceCentroids struct {
	state    *AdaptState
	features FeatureFunc
	opts     CentroidOptions
}

// NewSourceCentroids creates the epoch-begin hook. features must extract
// with gradient tracking disabled.
func NewSourceCentroids(state *AdaptState, features FeatureFunc, optFns ...func(*CentroidOptions)) (*SourceCentroids, error) {
	if state == nil || features == nil {
		return nil, ErrNilCollaborator
	}

	opts := CentroidOptions{
		MaxIterations: cluster.DefaultOptions.MaxIterations,
		Logger:        NoopLogger(),
		Metrics:       NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &SourceCentroids{
		state:    state,
		features: features,
		opts:     opts,
	}, nil
}

// OnEpochBegin partitions the training set by domain sign, extracts
// features for both subsets, builds one centroid per source class, and
// publishes a freshly fitted target clusterer into the shared state.
//
// Each class centroid is the SUM of that class's normalized source
// features, not the mean: its magnitude scales with class size. The
// clusterer normalizes seeds internally, so only the direction survives,
// but the aggregation is kept as-is to match the behavior this design
// descends from.
//
// Classes with zero source samples this epoch are skipped, so the cluster
// count k can vary between epochs. The previous epoch's clusterer is
// discarded wholesale.
func (h *SourceCentroids) OnEpochBegin(ctx context.Context, train *dataset.Dataset) error {
	start := time.Now()

	k, iters, err := h.run(ctx, train)

	h.opts.Metrics.RecordCentroidPass(k, time.Since(start), err)
	if train != nil {
		h.opts.Logger.LogCentroidPass(ctx, k, train.SourceCount(), train.TargetCount(), iters, err)
	}

	return err
}

func (h *SourceCentroids) run(ctx context.Context, train *dataset.Dataset) (k, iters int, err error) {
	if train == nil {
		return 0, 0, ErrNilCollaborator
	}

	source, target := train.Split()
	if len(source) == 0 {
		return 0, 0, fmt.Errorf("%w: no source samples", ErrEmptyPartition)
	}
	if len(target) == 0 {
		return 0, 0, fmt.Errorf("%w: no target samples", ErrEmptyPartition)
	}

	// Feature collection for the two subsets is independent; run both
	// sides concurrently.
	var featsSource, featsTarget [][]float32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		featsSource, err = h.features(gctx, source)
		return err
	})
	g.Go(func() error {
		var err error
		featsTarget, err = h.features(gctx, target)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, 0, fmt.Errorf("feature extraction: %w", err)
	}

	if len(featsSource) != len(source) {
		return 0, 0, &ErrDimensionMismatch{Expected: len(source), Actual: len(featsSource)}
	}
	if len(featsTarget) != len(target) {
		return 0, 0, &ErrDimensionMismatch{Expected: len(target), Actual: len(featsTarget)}
	}

	dim := len(featsSource[0])

	centroids, err := classCentroids(source, featsSource, dim)
	if err != nil {
		return 0, 0, err
	}
	k = len(centroids) / dim

	km, err := cluster.New(k, dim, func(o *cluster.Options) {
		o.MaxIterations = h.opts.MaxIterations
		o.RandomSeed = h.opts.RandomSeed
	})
	if err != nil {
		return k, 0, translateError(err)
	}

	if err := km.Fit(dataset.Flatten(featsTarget), centroids); err != nil {
		return k, 0, translateError(err)
	}

	h.state.setTargetClusterer(km)

	return k, km.Iterations(), nil
}

// classCentroids sums the normalized features of each observed class into
// one flattened centroid per class, in ascending class order. Classes
// without samples contribute nothing.
func classCentroids(source []dataset.Sample, feats [][]float32, dim int) ([]float32, error) {
	maxLabel := -1
	for _, s := range source {
		if s.Label > maxLabel {
			maxLabel = s.Label
		}
	}
	if maxLabel < 0 {
		return nil, fmt.Errorf("%w: no labeled source classes", ErrEmptyPartition)
	}

	var centroids []float32

	for c := 0; c <= maxLabel; c++ {
		sum := make([]float32, dim)
		count := 0

		for i, s := range source {
			if s.Label != c {
				continue
			}
			if len(feats[i]) != dim {
				return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(feats[i])}
			}

			row, ok := floats.NormalizeL2Copy(feats[i])
			if !ok {
				continue // zero feature rows carry no direction
			}
			floats.AddInPlace(sum, row)
			count++
		}

		if count == 0 {
			continue // class absent this epoch, no centroid emitted
		}

		centroids = append(centroids, sum...)
	}

	if len(centroids) == 0 {
		return nil, fmt.Errorf("%w: no labeled source classes", ErrEmptyPartition)
	}

	return centroids, nil
}

// OnBatchEnd implements Hook as a no-op.
func (h *SourceCentroids) OnBatchEnd(context.Context, dataset.Batch) error {
	return nil
}
