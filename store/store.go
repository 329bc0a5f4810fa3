package store

import (
	"github.com/zacernst/nmetl-core/fact"
)

// FactStore is the append-only, content-addressed fact store of C2. It is
// built on an abstract KV (§6) and implements the contract of §4.1: put,
// contains, scan_prefix, and the label/attribute convenience lookups.
type FactStore struct {
	kv     KV
	policy RetryPolicy
	bloom  *bloomSidecar
}

// Option configures a FactStore at construction time.
type Option func(*FactStore)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *FactStore) { s.policy = p }
}

// WithBloomSidecar attaches the optional bloom-filter sidecar described in
// §6, sized for roughly expectedKeys entries at the given false-positive
// rate. Keys already present in the KV are added to the filter when the
// store is built; if that scan fails, no sidecar is attached.
func WithBloomSidecar(expectedKeys uint64, falsePositiveRate float64) Option {
	return func(s *FactStore) {
		b, err := newBloomSidecar(expectedKeys, falsePositiveRate)
		if err != nil {
			return
		}
		it, err := s.kv.Range(nil, nil)
		if err != nil {
			return
		}
		defer it.Close()
		for it.Next() {
			b.add(it.Key())
		}
		if it.Err() != nil {
			return
		}
		s.bloom = b
	}
}

// NewFactStore wraps kv in a FactStore. If kv is nil, a fresh MemKV is
// used.
func NewFactStore(kv KV, opts ...Option) *FactStore {
	if kv == nil {
		kv = NewMemKV()
	}
	s := &FactStore{kv: kv, policy: DefaultRetryPolicy()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Put idempotently inserts f (§4.1 "put(fact) — idempotent insertion").
// Duplicate puts are harmless: the key is content-addressed, so a repeat
// Put overwrites identical bytes with identical bytes.
func (s *FactStore) Put(f fact.Fact) error {
	key := f.Key()
	val := fact.EncodeValue(f.Value())
	err := withRetry(s.policy, "put", func() error {
		return s.kv.Put(key, val)
	})
	if err != nil {
		return err
	}
	if s.bloom != nil {
		s.bloom.add(key)
	}
	return nil
}

// Contains reports whether f is already stored (§4.1 "contains(fact) -> bool").
func (s *FactStore) Contains(f fact.Fact) (bool, error) {
	key := f.Key()
	if s.bloom != nil && !s.bloom.maybeContains(key) {
		return false, nil
	}
	var val []byte
	err := withRetry(s.policy, "get", func() error {
		v, err := s.kv.Get(key)
		val = v
		return err
	})
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

// ScanPrefix returns every stored fact whose key starts with prefix, in
// key order (§4.1 "scan_prefix"). The returned facts are fully decoded
// from their keys (fact.DecodeKey); malformed keys (which should not occur
// given FactStore is the only writer) are skipped rather than aborting the
// scan.
func (s *FactStore) ScanPrefix(prefix []byte) ([]fact.Fact, error) {
	high := PrefixRangeEnd(prefix)
	var it Iterator
	err := withRetry(s.policy, "range", func() error {
		var rerr error
		it, rerr = s.kv.Range(prefix, high)
		return rerr
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []fact.Fact
	for it.Next() {
		f, derr := fact.DecodeKey(it.Key())
		if derr != nil {
			continue
		}
		out = append(out, f)
	}
	if it.Err() != nil {
		return nil, it.Err()
	}
	return out, nil
}

// GetAttribute returns the scalar value stored for (entityID, attribute),
// or (Null, false, nil) if none is stored. It fails with
// ErrAmbiguousAttribute if more than one value is present (§3, §4.1).
func (s *FactStore) GetAttribute(entityID, attribute string) (fact.Scalar, bool, error) {
	facts, err := s.ScanPrefix(fact.NodeAttributePrefix(entityID, attribute))
	if err != nil {
		return fact.Scalar{}, false, err
	}
	if len(facts) == 0 {
		facts, err = s.ScanPrefix(fact.RelationshipAttributePrefix(entityID, attribute))
		if err != nil {
			return fact.Scalar{}, false, err
		}
	}
	if len(facts) == 0 {
		return fact.Null, false, nil
	}
	if len(facts) > 1 {
		return fact.Scalar{}, false, ErrAmbiguousAttribute.New(attribute, entityID, len(facts))
	}
	return facts[0].Value(), true, nil
}

// GetNodeLabel returns the label stored for nodeID, or ("", false, nil) if
// none is stored. It is a convenience built by scanning every node-label
// key and filtering by node id, since the key layout orders by label
// first (§4.1).
func (s *FactStore) GetNodeLabel(nodeID string) (string, bool, error) {
	facts, err := s.ScanPrefix([]byte("node_label:"))
	if err != nil {
		return "", false, err
	}
	for _, f := range facts {
		if f.NodeID() == nodeID {
			return f.Label(), true, nil
		}
	}
	return "", false, nil
}

// NodesWithLabel returns every node id typed with label, via a single
// prefix scan (§4.1 "nodes_with_label"). The key layout
// (node_label:{label}::{node_id}) makes this an exact prefix match.
func (s *FactStore) NodesWithLabel(label string) ([]string, error) {
	facts, err := s.ScanPrefix(fact.NodeLabelPrefix(label))
	if err != nil {
		return nil, err
	}
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.NodeID()
	}
	return out, nil
}

// RelationshipsWithLabel returns every relationship id typed with label
// (§4.1 "relationships_with_label"). Unlike nodes_with_label, the
// relationship-label key orders by rel_id first
// (relationship_label:{rel_id}:{label}), so label is not a usable prefix;
// this scans the whole relationship_label namespace and filters. A
// secondary label-first index would remove this asymmetry but is not
// required by §4.1's key table, which fixes the key format byte-for-byte.
func (s *FactStore) RelationshipsWithLabel(label string) ([]string, error) {
	facts, err := s.ScanPrefix(fact.RelationshipLabelAllPrefix())
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range facts {
		if f.Label() == label {
			out = append(out, f.RelID())
		}
	}
	return out, nil
}

// SourceOf returns the source node id of relID, or ("", false, nil) if
// unset.
func (s *FactStore) SourceOf(relID string) (string, bool, error) {
	facts, err := s.ScanPrefix(fact.RelationshipSourcePrefix(relID))
	if err != nil {
		return "", false, err
	}
	if len(facts) == 0 {
		return "", false, nil
	}
	return facts[0].NodeID(), true, nil
}

// TargetOf returns the target node id of relID, or ("", false, nil) if
// unset.
func (s *FactStore) TargetOf(relID string) (string, bool, error) {
	facts, err := s.ScanPrefix(fact.RelationshipTargetPrefix(relID))
	if err != nil {
		return "", false, err
	}
	if len(facts) == 0 {
		return "", false, nil
	}
	return facts[0].NodeID(), true, nil
}
