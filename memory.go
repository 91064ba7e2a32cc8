package adago

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/adago/checkpoint"
	"github.com/hupe1980/adago/dataset"
	"github.com/hupe1980/adago/floats"
)

// UpdateMode selects how new values are blended into the memory bank.
type UpdateMode int

const (
	// UpdateEMA blends rows as momentum*new + (1-momentum)*old.
	//
	// This is the mathematically intended exponential moving average. The
	// system this design descends from effectively discarded one of the
	// two weighted terms due to a defect, so existing runs may have relied
	// on unblended numerics; UpdateOverwrite exists for those callers.
	UpdateEMA UpdateMode = iota

	// UpdateOverwrite assigns the new value unblended, ignoring momentum.
	UpdateOverwrite
)

func (m UpdateMode) String() string {
	switch m {
	case UpdateEMA:
		return "EMA"
	case UpdateOverwrite:
		return "Overwrite"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// BankOptions holds the tunables of a MemoryBank.
type BankOptions struct {
	// Momentum is the fraction of the new value blended in per update;
	// the fraction of the old value retained is 1-momentum. Must lie in
	// [0, 1).
	Momentum float32

	// Mode selects EMA blending or plain overwrite.
	Mode UpdateMode
}

// DefaultBankOptions are the defaults used by NewMemoryBank.
var DefaultBankOptions = BankOptions{
	Momentum: 0.7,
	Mode:     UpdateEMA,
}

// MemoryBank is the persistent per-sample storage of target features and
// sharpened predictions. It is allocated once before training with one row
// per target sample, mutated in place for only the rows present in each
// batch, and never reset between epochs.
//
// Rows are addressed by the stable target sample index assigned by
// dataset.Dataset.Add. Storage is flat (row * dim), which keeps the
// "only touched rows mutate" invariant trivially checkable.
//
// All mutation is serialized internally, so overlapping batch pipelines
// cannot race on rows even if they deliver the same sample index twice.
type MemoryBank struct {
	mu       sync.RWMutex
	rows     int
	dim      int
	classes  int
	momentum float32
	mode     UpdateMode
	features []float32 // rows * dim, unit-norm rows once touched
	outputs  []float32 // rows * classes, sharpened pseudo-probabilities
	touched  *roaring.Bitmap
}

// NewMemoryBank allocates a bank with rows = total target sample count,
// feature dimensionality dim, and classes output columns.
func NewMemoryBank(rows, dim, classes int, optFns ...func(*BankOptions)) (*MemoryBank, error) {
	if rows <= 0 || dim <= 0 || classes <= 0 {
		return nil, ErrInvalidSize
	}

	opts := DefaultBankOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Momentum < 0 || opts.Momentum >= 1 {
		return nil, ErrInvalidMomentum
	}

	return &MemoryBank{
		rows:     rows,
		dim:      dim,
		classes:  classes,
		momentum: opts.Momentum,
		mode:     opts.Mode,
		features: make([]float32, rows*dim),
		outputs:  make([]float32, rows*classes),
		touched:  roaring.New(),
	}, nil
}

// Rows returns the allocated row count.
func (b *MemoryBank) Rows() int { return b.rows }

// Dim returns the feature dimensionality.
func (b *MemoryBank) Dim() int { return b.dim }

// Classes returns the output column count.
func (b *MemoryBank) Classes() int { return b.classes }

// Momentum returns the configured momentum.
func (b *MemoryBank) Momentum() float32 { return b.momentum }

// Mode returns the configured update mode.
func (b *MemoryBank) Mode() UpdateMode { return b.mode }

// Update blends the given rows into the bank. indices, feats and outs are
// parallel: row i of feats/outs is written to bank row indices[i]. Rows
// not listed are untouched. An empty update is a no-op.
func (b *MemoryBank) Update(indices []int, feats, outs [][]float32) error {
	if len(indices) == 0 {
		return nil
	}
	if len(feats) != len(indices) || len(outs) != len(indices) {
		return &ErrDimensionMismatch{Expected: len(indices), Actual: len(feats)}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Validate everything before mutating anything, so a malformed batch
	// cannot leave the bank half-written.
	for i, idx := range indices {
		if idx < 0 || idx >= b.rows {
			return fmt.Errorf("%w: %d (rows=%d)", ErrIndexOutOfRange, idx, b.rows)
		}
		if len(feats[i]) != b.dim {
			return &ErrDimensionMismatch{Expected: b.dim, Actual: len(feats[i])}
		}
		if len(outs[i]) != b.classes {
			return &ErrDimensionMismatch{Expected: b.classes, Actual: len(outs[i])}
		}
	}

	for i, idx := range indices {
		b.blendRow(b.features[idx*b.dim:(idx+1)*b.dim], feats[i])
		b.blendRow(b.outputs[idx*b.classes:(idx+1)*b.classes], outs[i])
		b.touched.Add(uint32(idx))
	}

	return nil
}

func (b *MemoryBank) blendRow(old, incoming []float32) {
	switch b.mode {
	case UpdateOverwrite:
		copy(old, incoming)
	default:
		m := b.momentum
		for j := range old {
			old[j] = m*incoming[j] + (1-m)*old[j]
		}
	}
}

// Feature returns a copy of the feature row at the given index.
func (b *MemoryBank) Feature(idx int) ([]float32, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if idx < 0 || idx >= b.rows {
		return nil, fmt.Errorf("%w: %d (rows=%d)", ErrIndexOutOfRange, idx, b.rows)
	}
	return slices.Clone(b.features[idx*b.dim : (idx+1)*b.dim]), nil
}

// Output returns a copy of the output row at the given index.
func (b *MemoryBank) Output(idx int) ([]float32, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if idx < 0 || idx >= b.rows {
		return nil, fmt.Errorf("%w: %d (rows=%d)", ErrIndexOutOfRange, idx, b.rows)
	}
	return slices.Clone(b.outputs[idx*b.classes : (idx+1)*b.classes]), nil
}

// Touched returns the set of row indices that have received at least one
// update during the run, as a copy.
func (b *MemoryBank) Touched() *roaring.Bitmap {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.touched.Clone()
}

// Snapshot captures the full bank state for checkpointing.
func (b *MemoryBank) Snapshot() checkpoint.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return checkpoint.Snapshot{
		Rows:     b.rows,
		Dim:      b.dim,
		Classes:  b.classes,
		Momentum: b.momentum,
		Mode:     uint8(b.mode),
		Features: slices.Clone(b.features),
		Outputs:  slices.Clone(b.outputs),
		Touched:  b.touched.Clone(),
	}
}

// RestoreSnapshot replaces the bank state with a previously captured
// snapshot. The snapshot geometry must match the allocated bank.
func (b *MemoryBank) RestoreSnapshot(snap checkpoint.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if snap.Rows != b.rows || snap.Dim != b.dim || snap.Classes != b.classes {
		return &ErrDimensionMismatch{Expected: b.rows * b.dim, Actual: snap.Rows * snap.Dim}
	}
	if len(snap.Features) != b.rows*b.dim || len(snap.Outputs) != b.rows*b.classes {
		return &ErrDimensionMismatch{Expected: b.rows * b.dim, Actual: len(snap.Features)}
	}

	copy(b.features, snap.Features)
	copy(b.outputs, snap.Outputs)
	if snap.Touched != nil {
		b.touched = snap.Touched.Clone()
	} else {
		b.touched = roaring.New()
	}
	b.momentum = snap.Momentum
	b.mode = UpdateMode(snap.Mode)

	return nil
}

// BankUpdateOptions holds the tunables of a BankUpdate hook.
type BankUpdateOptions struct {
	Logger  *Logger
	Metrics MetricsCollector
}

// BankUpdate is the batch-end hook that refreshes the memory bank from
// the target rows of each minibatch.
type BankUpdate struct {
	state   *AdaptState
	forward ForwardFunc
	logger  *Logger
	metrics MetricsCollector
}

// NewBankUpdate creates the batch-end hook. forward must run the model in
// evaluation mode with gradient tracking disabled.
func NewBankUpdate(state *AdaptState, forward ForwardFunc, optFns ...func(*BankUpdateOptions)) (*BankUpdate, error) {
	if state == nil || state.MemoryBank() == nil || forward == nil {
		return nil, ErrNilCollaborator
	}

	opts := BankUpdateOptions{
		Logger:  NoopLogger(),
		Metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &BankUpdate{
		state:   state,
		forward: forward,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// OnEpochBegin implements Hook as a no-op.
func (h *BankUpdate) OnEpochBegin(context.Context, *dataset.Dataset) error {
	return nil
}

// OnBatchEnd selects the target rows of the batch, recomputes their
// normalized features and sharpened pseudo-probabilities, and blends them
// into the bank. A batch without target rows is a no-op, not an error.
//
// The sharpening is deliberately batch-relative: softmax outputs are
// squared and renormalized per class COLUMN across the batch, not per
// sample. See floats.SharpenColumns.
func (h *BankUpdate) OnBatchEnd(ctx context.Context, batch dataset.Batch) error {
	start := time.Now()

	target := dataset.Target(batch)
	if len(target) == 0 {
		h.metrics.RecordBankUpdate(0, time.Since(start), nil)
		return nil
	}

	err := h.update(ctx, target)
	h.metrics.RecordBankUpdate(len(target), time.Since(start), err)
	h.logger.LogBankUpdate(ctx, len(target), err)

	return err
}

func (h *BankUpdate) update(ctx context.Context, target []dataset.Sample) error {
	outputs, feats, err := h.forward(ctx, target)
	if err != nil {
		return fmt.Errorf("forward pass: %w", err)
	}
	if len(outputs) != len(target) || len(feats) != len(target) {
		return &ErrDimensionMismatch{Expected: len(target), Actual: len(outputs)}
	}

	floats.NormalizeRows(feats)

	probs := floats.SoftmaxRows(outputs)
	floats.SharpenColumns(probs)

	indices := make([]int, len(target))
	for i, s := range target {
		indices[i] = s.Index
	}

	return h.state.MemoryBank().Update(indices, feats, probs)
}
