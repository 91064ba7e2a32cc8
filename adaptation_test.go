package adago

import (
	"context"
	"errors"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/adago/dataset"
	"github.com/hupe1980/adago/testutil"
)

// linearForward derives logits from the first feature coordinates, one
// per class. Good enough to stand in for a classifier head in tests.
func linearForward(classes int) ForwardFunc {
	return func(_ context.Context, samples []dataset.Sample) ([][]float32, [][]float32, error) {
		outs := make([][]float32, len(samples))
		feats := make([][]float32, len(samples))
		for i, s := range samples {
			feats[i] = append([]float32(nil), s.Features...)
			logits := make([]float32, classes)
			for c := 0; c < classes && c < len(s.Features); c++ {
				logits[c] = s.Features[c]
			}
			outs[i] = logits
		}
		return outs, feats, nil
	}
}

func TestTwoEpochRun(t *testing.T) {
	const (
		dim     = 4
		classes = 2
	)

	rng := testutil.NewRNG(7)
	train, err := testutil.MakeBlobs(rng, testutil.BlobConfig{
		Dim:            dim,
		Classes:        classes,
		SourcePerClass: 5,
		TargetPerClass: 6,
		Shift:          0.15,
	})
	require.NoError(t, err)
	require.Equal(t, 12, train.TargetCount())

	bank, err := NewMemoryBank(train.TargetCount(), dim, classes)
	require.NoError(t, err)
	state := NewAdaptState(bank)

	centroids, err := NewSourceCentroids(state, identityFeatures)
	require.NoError(t, err)
	update, err := NewBankUpdate(state, linearForward(classes))
	require.NoError(t, err)

	hooks := Hooks{centroids, update}
	ctx := context.Background()

	batches := testutil.Batches(train.Samples(), 5)
	expectTouched := roaring.New()
	for _, batch := range batches {
		for _, s := range batch {
			if s.IsTarget() {
				expectTouched.Add(uint32(s.Index))
			}
		}
	}

	var clusterers []any
	for epoch := 0; epoch < 2; epoch++ {
		require.NoError(t, hooks.EpochBegin(ctx, train))

		km := state.TargetClusterer()
		require.NotNil(t, km)
		assert.Equal(t, classes, km.K(), "epoch %d", epoch)
		assert.Len(t, km.Labels(), train.TargetCount())
		clusterers = append(clusterers, km)

		for _, batch := range batches {
			require.NoError(t, hooks.BatchEnd(ctx, batch))
		}
	}

	// Fresh clusterer every epoch, no cross-epoch state leakage.
	assert.NotSame(t, clusterers[0], clusterers[1])

	// Exactly the target rows that appeared in batches were touched.
	assert.True(t, expectTouched.Equals(bank.Touched()))
	assert.EqualValues(t, train.TargetCount(), bank.Touched().GetCardinality())

	// Each row was blended twice with the same unit vector, so its norm
	// is 1-(1-m)^2 for the default momentum m=0.7.
	for _, idx := range bank.Touched().ToArray() {
		feat, err := bank.Feature(int(idx))
		require.NoError(t, err)
		assert.InDelta(t, 0.91, testutil.Norm(feat), 1e-4)
	}
}

func TestPartialRunTouchesOnlySeenBatches(t *testing.T) {
	rng := testutil.NewRNG(11)
	train, err := testutil.MakeBlobs(rng, testutil.BlobConfig{
		Dim:            3,
		Classes:        2,
		SourcePerClass: 3,
		TargetPerClass: 4,
	})
	require.NoError(t, err)

	bank, err := NewMemoryBank(train.TargetCount(), 3, 2)
	require.NoError(t, err)
	state := NewAdaptState(bank)

	update, err := NewBankUpdate(state, linearForward(2))
	require.NoError(t, err)

	_, target := train.Split()

	// Feed only the first half of the target rows.
	half := target[:len(target)/2]
	require.NoError(t, update.OnBatchEnd(context.Background(), half))

	touched := bank.Touched()
	assert.EqualValues(t, len(half), touched.GetCardinality())
	for _, s := range half {
		assert.True(t, touched.Contains(uint32(s.Index)))
	}
	for _, s := range target[len(target)/2:] {
		assert.False(t, touched.Contains(uint32(s.Index)))
	}
}

type stubHook struct {
	epochCalls int
	batchCalls int
	err        error
}

func (h *stubHook) OnEpochBegin(context.Context, *dataset.Dataset) error {
	h.epochCalls++
	return h.err
}

func (h *stubHook) OnBatchEnd(context.Context, dataset.Batch) error {
	h.batchCalls++
	return h.err
}

func TestHooks_DispatchOrderAndAbort(t *testing.T) {
	boom := errors.New("hook failed")
	first := &stubHook{}
	failing := &stubHook{err: boom}
	last := &stubHook{}

	hooks := Hooks{first, failing, last}

	assert.ErrorIs(t, hooks.EpochBegin(context.Background(), nil), boom)
	assert.Equal(t, 1, first.epochCalls)
	assert.Equal(t, 1, failing.epochCalls)
	assert.Zero(t, last.epochCalls, "error must abort the sequence")

	assert.ErrorIs(t, hooks.BatchEnd(context.Background(), nil), boom)
	assert.Equal(t, 1, first.batchCalls)
	assert.Zero(t, last.batchCalls)
}

func TestAdaptState_Accessors(t *testing.T) {
	bank, err := NewMemoryBank(2, 2, 2)
	require.NoError(t, err)

	state := NewAdaptState(bank)
	assert.Same(t, bank, state.MemoryBank())
	assert.Nil(t, state.TargetClusterer())
}

func TestBasicMetricsCollector(t *testing.T) {
	var m BasicMetricsCollector

	m.RecordCentroidPass(2, 0, nil)
	m.RecordCentroidPass(0, 0, errors.New("x"))
	m.RecordBankUpdate(5, 0, nil)
	m.RecordCheckpoint(1024, 0, nil)

	assert.EqualValues(t, 2, m.CentroidPassCount.Load())
	assert.EqualValues(t, 1, m.CentroidPassErrors.Load())
	assert.EqualValues(t, 5, m.BankUpdateRows.Load())
	assert.EqualValues(t, 1024, m.CheckpointBytes.Load())
}

func TestHookMetricsWiring(t *testing.T) {
	var m BasicMetricsCollector
	state := newTestState(t, 10, 2, 2)

	centroids, err := NewSourceCentroids(state, identityFeatures, func(o *CentroidOptions) {
		o.Metrics = &m
	})
	require.NoError(t, err)
	update, err := NewBankUpdate(state, linearForward(2), func(o *BankUpdateOptions) {
		o.Metrics = &m
	})
	require.NoError(t, err)

	train := twoClassTrainSet(t)
	require.NoError(t, centroids.OnEpochBegin(context.Background(), train))
	require.NoError(t, update.OnBatchEnd(context.Background(), train.Samples()))

	assert.EqualValues(t, 1, m.CentroidPassCount.Load())
	assert.EqualValues(t, 1, m.BankUpdateCount.Load())
	assert.EqualValues(t, 10, m.BankUpdateRows.Load())
}
