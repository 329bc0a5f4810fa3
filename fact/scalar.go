// Package fact defines the atomic fact model: the tagged fact variants of
// §3 and the scalar value sum type they carry.
package fact

import (
	"fmt"
	"sort"

	"github.com/mitchellh/hashstructure"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrUnsupportedScalar is raised when a Go value cannot be coerced into a Scalar.
var ErrUnsupportedScalar = goerrors.NewKind("unsupported scalar type: %T")

// Kind tags the variant held by a Scalar.
type Kind uint8

const (
	// KindNull is the null scalar. The zero Scalar is KindNull.
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Scalar is the sum type described in §3: null, boolean, signed 64-bit int,
// 64-bit float, UTF-8 string, or a homogeneous list of scalars. Equality is
// structural (see Equal); ordering is defined only within a type (see Less).
type Scalar struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Scalar
}

// Null is the null scalar value.
var Null = Scalar{kind: KindNull}

// Bool wraps a boolean scalar.
func Bool(v bool) Scalar { return Scalar{kind: KindBool, b: v} }

// Int wraps a signed 64-bit integer scalar.
func Int(v int64) Scalar { return Scalar{kind: KindInt, i: v} }

// Float wraps a 64-bit float scalar.
func Float(v float64) Scalar { return Scalar{kind: KindFloat, f: v} }

// String wraps a UTF-8 string scalar.
func String(v string) Scalar { return Scalar{kind: KindString, s: v} }

// List wraps a homogeneous list of scalars. The elements are copied.
func List(vs []Scalar) Scalar {
	cp := make([]Scalar, len(vs))
	copy(cp, vs)
	return Scalar{kind: KindList, list: cp}
}

// FromGo coerces a plain Go value into a Scalar. It is the convenience
// constructor used by ingestion code and tests; it returns
// ErrUnsupportedScalar for any type outside the sum described in §3.
func FromGo(v interface{}) (Scalar, error) {
	switch x := v.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []interface{}:
		out := make([]Scalar, len(x))
		for i, e := range x {
			s, err := FromGo(e)
			if err != nil {
				return Scalar{}, err
			}
			out[i] = s
		}
		return List(out), nil
	case []Scalar:
		return List(x), nil
	default:
		return Scalar{}, ErrUnsupportedScalar.New(v)
	}
}

// Kind reports which variant is held.
func (s Scalar) Kind() Kind { return s.kind }

// IsNull reports whether s is the null scalar.
func (s Scalar) IsNull() bool { return s.kind == KindNull }

// Bool returns the boolean value, or false if s is not a bool.
func (s Scalar) Bool() bool { return s.b }

// Int returns the int64 value, or zero if s is not an int.
func (s Scalar) Int() int64 { return s.i }

// Float returns the float64 value, or zero if s is not a float.
func (s Scalar) Float() float64 { return s.f }

// Str returns the string value, or "" if s is not a string.
func (s Scalar) Str() string { return s.s }

// List returns the element slice, or nil if s is not a list. The returned
// slice shares no storage with the Scalar and may be mutated by the caller.
func (s Scalar) List() []Scalar {
	if s.kind != KindList {
		return nil
	}
	cp := make([]Scalar, len(s.list))
	copy(cp, s.list)
	return cp
}

// Equal reports structural equality, per §3 "Equality is structural".
// Do not compare Scalars with ==: the list variant holds a slice field.
func (s Scalar) Equal(o Scalar) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindNull:
		return true
	case KindBool:
		return s.b == o.b
	case KindInt:
		return s.i == o.i
	case KindFloat:
		return s.f == o.f
	case KindString:
		return s.s == o.s
	case KindList:
		if len(s.list) != len(o.list) {
			return false
		}
		for i := range s.list {
			if !s.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Less defines an order within a single Kind; EncodeValue's bytes follow
// the same order for every Kind except lists. Less between differing kinds
// orders by Kind.
func (s Scalar) Less(o Scalar) bool {
	if s.kind != o.kind {
		return s.kind < o.kind
	}
	switch s.kind {
	case KindBool:
		return !s.b && o.b
	case KindInt:
		return s.i < o.i
	case KindFloat:
		return s.f < o.f
	case KindString:
		return s.s < o.s
	case KindList:
		n := len(s.list)
		if len(o.list) < n {
			n = len(o.list)
		}
		for i := 0; i < n; i++ {
			if s.list[i].Equal(o.list[i]) {
				continue
			}
			return s.list[i].Less(o.list[i])
		}
		return len(s.list) < len(o.list)
	default:
		return false
	}
}

// Hash returns a structural hash suitable for use as a dedup token
// alongside the canonical byte-key (§3 "used as both storage key and
// deduplication token"). Lists hash element-wise via hashstructure so two
// structurally-equal lists always hash equal regardless of backing array
// identity.
func (s Scalar) Hash() (uint64, error) {
	switch s.kind {
	case KindList:
		els := make([]interface{}, len(s.list))
		for i, e := range s.list {
			h, err := e.Hash()
			if err != nil {
				return 0, err
			}
			els[i] = h
		}
		return hashstructure.Hash(els, nil)
	default:
		return hashstructure.Hash(s.rawValue(), nil)
	}
}

func (s Scalar) rawValue() interface{} {
	switch s.kind {
	case KindNull:
		return nil
	case KindBool:
		return s.b
	case KindInt:
		return s.i
	case KindFloat:
		return s.f
	case KindString:
		return s.s
	default:
		return nil
	}
}

func (s Scalar) String() string {
	switch s.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", s.b)
	case KindInt:
		return fmt.Sprintf("%d", s.i)
	case KindFloat:
		return fmt.Sprintf("%g", s.f)
	case KindString:
		return s.s
	case KindList:
		parts := make([]string, len(s.list))
		for i, e := range s.list {
			parts[i] = e.String()
		}
		return "[" + joinComma(parts) + "]"
	default:
		return "<invalid>"
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// SortScalars sorts a slice of Scalars in place using Less, giving a
// deterministic rendering of an otherwise implementation-defined
// enumeration order (§4.6 "Determinism").
func SortScalars(vs []Scalar) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Less(vs[j]) })
}
