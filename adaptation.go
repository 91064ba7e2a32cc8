package adago

import (
	"sync"

	"github.com/hupe1980/adago/cluster"
)

// AdaptState is the shared adaptation-criterion state: the current-epoch
// target clusterer and the run-long memory bank. Exactly one instance
// exists per training run. It is written by the SourceCentroids and
// BankUpdate hooks and read by the downstream pseudo-labeling criterion.
//
// The state is an explicit object handed to the hooks at construction;
// there is no ambient singleton. All access is serialized internally, but
// the hooks themselves are expected to run at well-defined loop points
// (epoch begin, batch end) without overlapping each other.
type AdaptState struct {
	mu        sync.RWMutex
	clusterer *cluster.SphericalKMeans
	bank      *MemoryBank
}

// NewAdaptState creates the criterion state around a pre-allocated memory
// bank. The bank persists for the whole run; the clusterer starts nil and
// is replaced at every epoch begin.
func NewAdaptState(bank *MemoryBank) *AdaptState {
	return &AdaptState{bank: bank}
}

// TargetClusterer returns the clusterer published by the most recent
// epoch-begin pass, or nil before the first epoch.
func (s *AdaptState) TargetClusterer() *cluster.SphericalKMeans {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clusterer
}

// MemoryBank returns the persistent per-sample memory bank.
func (s *AdaptState) MemoryBank() *MemoryBank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bank
}

// setTargetClusterer replaces the current-epoch clusterer. The previous
// epoch's clusterer is discarded, never mutated.
func (s *AdaptState) setTargetClusterer(km *cluster.SphericalKMeans) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusterer = km
}
