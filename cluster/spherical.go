package cluster

import (
	"math"
	"math/rand"
	"slices"

	"github.com/hupe1980/adago/floats"
)

// Options holds the tunables of a SphericalKMeans run.
type Options struct {
	// MaxIterations caps the Lloyd iteration count.
	MaxIterations int

	// RandomSeed seeds the fallback centroid initialization used when no
	// initial centroids are supplied. With supplied centroids the run has
	// no source of randomness at all.
	RandomSeed int64
}

// DefaultOptions are the defaults used by New.
var DefaultOptions = Options{
	MaxIterations: 100,
	RandomSeed:    0,
}

// SphericalKMeans clusters unit-norm vectors by cosine similarity.
// All vectors are stored flattened (row * dim), matching the layout the
// rest of the module uses for feature matrices.
//
// A SphericalKMeans is not safe for concurrent use.
type SphericalKMeans struct {
	k       int
	dim     int
	opts    Options
	fitted  bool
	iters   int
	centers []float32 // k * dim, unit-norm rows
	labels  []int     // per input vector
}

// New creates a spherical k-means clusterer for k clusters of the given
// dimensionality. Returns ErrInvalidK or ErrDimensionMismatch on malformed
// arguments.
func New(k, dim int, optFns ...func(*Options)) (*SphericalKMeans, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if dim <= 0 {
		return nil, &ErrDimensionMismatch{Expected: 1, Actual: dim}
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions.MaxIterations
	}

	return &SphericalKMeans{
		k:    k,
		dim:  dim,
		opts: opts,
	}, nil
}

// K returns the configured cluster count.
func (km *SphericalKMeans) K() int { return km.k }

// Dim returns the configured dimensionality.
func (km *SphericalKMeans) Dim() int { return km.dim }

// Fit runs Lloyd iteration over the flattened vectors (n * dim).
//
// If initialCentroids is non-nil it must hold exactly k*dim values; the
// rows are normalized and used to seed the iteration, making the whole
// run deterministic. With nil initial centroids, k distinct input points
// are chosen using the configured seed.
//
// Iteration stops when assignments no longer change or MaxIterations is
// reached. A cluster that loses all its points keeps its previous
// centroid rather than being reseeded, so seeded runs stay deterministic
// and no NaN centroids can arise.
func (km *SphericalKMeans) Fit(vectors []float32, initialCentroids []float32) error {
	if len(vectors) == 0 {
		return ErrEmptyInput
	}
	if len(vectors)%km.dim != 0 {
		return &ErrDimensionMismatch{Expected: km.dim, Actual: len(vectors)}
	}

	n := len(vectors) / km.dim

	// Clusterer enforces the unit-norm invariant itself; callers may pass
	// raw features. Zero rows stay zero and simply never win assignments.
	pts := slices.Clone(vectors)
	for i := 0; i < n; i++ {
		floats.NormalizeL2InPlace(pts[i*km.dim : (i+1)*km.dim])
	}

	centers, err := km.initCentroids(pts, n, initialCentroids)
	if err != nil {
		return err
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	counts := make([]int, km.k)
	sums := make([]float32, km.k*km.dim)

	iters := 0
	for iter := 0; iter < km.opts.MaxIterations; iter++ {
		iters = iter + 1
		changed := false

		// Assignment step: maximum cosine similarity. Points and centroids
		// are unit-norm, so the dot product is the cosine.
		for i := 0; i < n; i++ {
			vec := pts[i*km.dim : (i+1)*km.dim]
			best := 0
			bestSim := float32(math.Inf(-1))

			for j := 0; j < km.k; j++ {
				sim := floats.Dot(vec, centers[j*km.dim:(j+1)*km.dim])
				if sim > bestSim {
					bestSim = sim
					best = j
				}
			}

			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		if !changed {
			break
		}

		// Update step: mean of assigned points, re-normalized to the
		// sphere (normalizing the sum is equivalent).
		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}

		for i := 0; i < n; i++ {
			c := labels[i]
			floats.AddInPlace(sums[c*km.dim:(c+1)*km.dim], pts[i*km.dim:(i+1)*km.dim])
			counts[c]++
		}

		for j := 0; j < km.k; j++ {
			if counts[j] == 0 {
				continue // empty cluster keeps its previous centroid
			}
			center := centers[j*km.dim : (j+1)*km.dim]
			copy(center, sums[j*km.dim:(j+1)*km.dim])
			floats.NormalizeL2InPlace(center)
		}
	}

	km.centers = centers
	km.labels = labels
	km.iters = iters
	km.fitted = true

	return nil
}

func (km *SphericalKMeans) initCentroids(pts []float32, n int, initial []float32) ([]float32, error) {
	centers := make([]float32, km.k*km.dim)

	if initial != nil {
		if len(initial) != km.k*km.dim {
			return nil, &ErrDimensionMismatch{Expected: km.k * km.dim, Actual: len(initial)}
		}
		copy(centers, initial)
	} else {
		rng := rand.New(rand.NewSource(km.opts.RandomSeed)) // nolint gosec
		perm := rng.Perm(n)
		for j := 0; j < km.k; j++ {
			src := perm[j%n]
			copy(centers[j*km.dim:(j+1)*km.dim], pts[src*km.dim:(src+1)*km.dim])
		}
	}

	for j := 0; j < km.k; j++ {
		floats.NormalizeL2InPlace(centers[j*km.dim : (j+1)*km.dim])
	}

	return centers, nil
}

// Centroids returns the fitted centroids flattened (k * dim).
// The returned slice is owned by the clusterer; callers must not mutate it.
func (km *SphericalKMeans) Centroids() []float32 {
	return km.centers
}

// Labels returns the per-input cluster assignment from the last Fit.
// The returned slice is owned by the clusterer; callers must not mutate it.
func (km *SphericalKMeans) Labels() []int {
	return km.labels
}

// Iterations returns the number of Lloyd iterations the last Fit performed.
func (km *SphericalKMeans) Iterations() int {
	return km.iters
}

// Predict assigns a single vector to its nearest centroid by cosine
// similarity. The vector is normalized internally.
func (km *SphericalKMeans) Predict(vec []float32) (int, error) {
	if !km.fitted {
		return -1, ErrNotFitted
	}
	if len(vec) != km.dim {
		return -1, &ErrDimensionMismatch{Expected: km.dim, Actual: len(vec)}
	}

	v := slices.Clone(vec)
	floats.NormalizeL2InPlace(v)

	best := 0
	bestSim := float32(math.Inf(-1))
	for j := 0; j < km.k; j++ {
		sim := floats.Dot(v, km.centers[j*km.dim:(j+1)*km.dim])
		if sim > bestSim {
			bestSim = sim
			best = j
		}
	}

	return best, nil
}
