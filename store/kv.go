// Package store implements the fact store (C2): an ordered-key KV
// abstraction, the FactStore built on top of it, and the prefix-scan
// convenience queries used by the query compiler (C5).
package store

// KV is the abstract ordered-key interface the core depends on (§6,
// "Fact-store KV interface (consumed)"). Concrete physical backends
// (embedded or distributed ordered-KV stores) are out of scope for the
// core; BoltKV and MemKV in this package are the reference
// implementations used for tests and small deployments.
//
// Keys sort byte-lexicographically. Range and iterator results are
// returned in ascending key order, which is what makes scan_prefix (§4.1)
// implementable as a single bounded Range call.
type KV interface {
	// Put stores value under key, overwriting any existing value.
	Put(key, value []byte) error
	// Get returns the value stored under key, or (nil, nil) if absent.
	Get(key []byte) ([]byte, error)
	// DeleteRange removes every key k with low <= k < high.
	DeleteRange(low, high []byte) error
	// Range returns an ascending iterator over every key k with
	// low <= k < high. If high is nil, the range is unbounded above.
	Range(low, high []byte) (Iterator, error)
}

// Iterator walks an ascending sequence of (key, value) pairs. Callers must
// call Close when done, even after an error or early exit.
type Iterator interface {
	// Next advances the iterator and reports whether a pair is available.
	Next() bool
	// Key returns the current key. Valid only after a Next that returned true.
	Key() []byte
	// Value returns the current value. Valid only after a Next that returned true.
	Value() []byte
	// Err returns the first error encountered by Next, if any.
	Err() error
	// Close releases resources held by the iterator.
	Close() error
}

// PrefixRangeEnd returns the exclusive upper bound that, paired with
// prefix as the lower bound, selects exactly the keys beginning with
// prefix. It implements scan_prefix (§4.1) in terms of Range by
// incrementing the last byte that is not already 0xFF and truncating any
// trailing 0xFF bytes; a prefix of all 0xFF bytes (vanishingly rare for
// the string-keyed encoding in fact.EncodeKey) has no finite upper bound
// and yields a nil high, meaning "unbounded above".
func PrefixRangeEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
