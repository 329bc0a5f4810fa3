package store

import goerrors "gopkg.in/src-d/go-errors.v1"

// ErrAmbiguousAttribute is raised by GetAttribute when more than one value
// is stored for an (entity_id, attribute) pair (§3, §7).
var ErrAmbiguousAttribute = goerrors.NewKind("ambiguous attribute %q for entity %q: %d values stored")

// ErrStoreUnavailable is raised when the backing KV is unavailable after
// the retry budget is exhausted (§4.1 "Failure model", §7).
var ErrStoreUnavailable = goerrors.NewKind("store unavailable: %s")
