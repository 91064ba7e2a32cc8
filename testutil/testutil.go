package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/adago/dataset"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillGaussian fills vec with standard normal samples.
func (r *RNG) FillGaussian(vec []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range vec {
		vec[i] = float32(r.rand.NormFloat64())
	}
}

// ClassVector samples a vector around the direction of the given class.
// Class c points along axis c (mod dim); noise perturbs every coordinate
// and shift is added to the first coordinate, which is how a domain shift
// is simulated.
func (r *RNG) ClassVector(dim, class int, noise, shift float64) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(r.rand.NormFloat64() * noise)
	}
	vec[class%dim] += 1
	vec[0] += float32(shift)
	return vec
}

// BlobConfig describes a synthetic two-domain dataset.
type BlobConfig struct {
	Dim     int
	Classes int
	// SourcePerClass is the number of source samples per class.
	SourcePerClass int
	// TargetPerClass is the number of target samples per class. Target
	// labels are used only to place the vectors; they are not stored.
	TargetPerClass int
	// Shift is the domain shift applied to target vectors.
	Shift float64
	// Noise is the per-coordinate Gaussian noise scale.
	Noise float64
}

// MakeBlobs builds a dataset of class-structured source and target
// samples. Deterministic for a given RNG seed.
func MakeBlobs(rng *RNG, cfg BlobConfig) (*dataset.Dataset, error) {
	if cfg.Noise == 0 {
		cfg.Noise = 0.05
	}

	d, err := dataset.New(cfg.Dim)
	if err != nil {
		return nil, err
	}

	for c := 0; c < cfg.Classes; c++ {
		for i := 0; i < cfg.SourcePerClass; i++ {
			if _, err := d.Add(rng.ClassVector(cfg.Dim, c, cfg.Noise, 0), 0, c); err != nil {
				return nil, err
			}
		}
	}
	for c := 0; c < cfg.Classes; c++ {
		for i := 0; i < cfg.TargetPerClass; i++ {
			if _, err := d.Add(rng.ClassVector(cfg.Dim, c, cfg.Noise, cfg.Shift), -1, dataset.NoLabel); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

// Batches chops samples into contiguous minibatches of the given size.
func Batches(samples []dataset.Sample, size int) []dataset.Batch {
	if size <= 0 {
		size = len(samples)
	}

	var batches []dataset.Batch
	for start := 0; start < len(samples); start += size {
		end := start + size
		if end > len(samples) {
			end = len(samples)
		}
		batches = append(batches, samples[start:end])
	}
	return batches
}

// Norm returns the L2 norm of vec as float64, for test assertions.
func Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
