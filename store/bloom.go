package store

import (
	"sync"

	"github.com/holiman/bloomfilter/v2"
)

// bloomSidecar is the optional per-prefix bloom filter sidecar mentioned in
// §6 ("Persisted state layout"): it accelerates negative Contains lookups
// by letting FactStore skip a KV round-trip when a key is provably absent.
// A false positive just falls through to the real KV read; bloomSidecar
// never causes a false negative, so it is always safe to disable.
type bloomSidecar struct {
	mu     sync.Mutex
	filter *bloomfilter.Filter
}

// newBloomSidecar builds a sidecar sized for roughly n expected keys at the
// given false-positive rate.
func newBloomSidecar(n uint64, falsePositiveRate float64) (*bloomSidecar, error) {
	if n == 0 {
		n = 1024
	}
	f, err := bloomfilter.NewOptimal(n, falsePositiveRate)
	if err != nil {
		return nil, err
	}
	return &bloomSidecar{filter: f}, nil
}

func (s *bloomSidecar) add(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Add(bloomfilter.HashBytes(key))
}

// maybeContains reports whether key might be present. false is a
// definitive "not present"; true means "check the KV".
func (s *bloomSidecar) maybeContains(key []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.Contains(bloomfilter.HashBytes(key))
}
