package fact

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Key prefixes, exactly as specified in §4.1. Implementations sharing a
// store MUST match these byte-for-byte.
const (
	prefixNodeLabel            = "node_label"
	prefixNodeAttribute        = "node_attribute"
	prefixRelationshipLabel    = "relationship_label"
	prefixRelationshipAttr     = "relationship_attribute"
	prefixRelationshipSource   = "relationship_source_node"
	prefixRelationshipTarget   = "relationship_target_node"
	keySeparator               = ":"
	labelScanSeparatorSentinel = "::"
)

// EncodeKey renders the canonical byte-key for f, per the table in §4.1:
//
//	node_label:{label}::{node_id}
//	node_attribute:{node_id}:{attribute}:{encoded_value}
//	relationship_label:{rel_id}:{label}
//	relationship_attribute:{rel_id}:{attribute}:{encoded_value}
//	relationship_source_node:{rel_id}:{node_id}
//	relationship_target_node:{rel_id}:{node_id}
func EncodeKey(f Fact) []byte {
	switch f.kind {
	case NodeHasLabel:
		return []byte(prefixNodeLabel + keySeparator + f.label + labelScanSeparatorSentinel + f.nodeID)
	case NodeHasAttribute:
		return []byte(prefixNodeAttribute + keySeparator + f.nodeID + keySeparator + f.attr + keySeparator + string(EncodeValue(f.value)))
	case RelationshipHasLabel:
		return []byte(prefixRelationshipLabel + keySeparator + f.relID + keySeparator + f.label)
	case RelationshipHasAttribute:
		return []byte(prefixRelationshipAttr + keySeparator + f.relID + keySeparator + f.attr + keySeparator + string(EncodeValue(f.value)))
	case RelationshipHasSource:
		return []byte(prefixRelationshipSource + keySeparator + f.relID + keySeparator + f.nodeID)
	case RelationshipHasTarget:
		return []byte(prefixRelationshipTarget + keySeparator + f.relID + keySeparator + f.nodeID)
	default:
		panic(fmt.Sprintf("fact: unknown variant kind %d", f.kind))
	}
}

// NodeLabelPrefix returns the scan_prefix value that finds every
// NodeHasLabel fact for the given label (used by nodes_with_label, §4.1).
func NodeLabelPrefix(label string) []byte {
	return []byte(prefixNodeLabel + keySeparator + label + labelScanSeparatorSentinel)
}

// NodeAttributePrefix returns the scan_prefix value that finds every stored
// value of (node_id, attribute) (used by get_attribute, §4.1).
func NodeAttributePrefix(nodeID, attribute string) []byte {
	return []byte(prefixNodeAttribute + keySeparator + nodeID + keySeparator + attribute + keySeparator)
}

// RelationshipLabelAllPrefix returns the scan_prefix value that finds every
// RelationshipHasLabel fact with the given label.
//
// Relationship label keys are relationship_label:{rel_id}:{label}, i.e.
// rel_id comes first, so relationships_with_label cannot be answered by a
// single prefix scan; see store.FactStore.RelationshipsWithLabel for the
// full-scan-and-filter fallback this implies.
func RelationshipLabelAllPrefix() []byte {
	return []byte(prefixRelationshipLabel + keySeparator)
}

// RelationshipLabelPrefix returns the scan_prefix value that finds the
// RelationshipHasLabel fact(s) for a specific relationship id.
func RelationshipLabelPrefix(relID string) []byte {
	return []byte(prefixRelationshipLabel + keySeparator + relID + keySeparator)
}

// RelationshipAttributePrefix returns the scan_prefix value that finds
// every stored value of (rel_id, attribute).
func RelationshipAttributePrefix(relID, attribute string) []byte {
	return []byte(prefixRelationshipAttr + keySeparator + relID + keySeparator + attribute + keySeparator)
}

// RelationshipSourcePrefix returns the scan_prefix value that finds the
// RelationshipHasSource fact for a relationship id.
func RelationshipSourcePrefix(relID string) []byte {
	return []byte(prefixRelationshipSource + keySeparator + relID + keySeparator)
}

// RelationshipTargetPrefix returns the scan_prefix value that finds the
// RelationshipHasTarget fact for a relationship id.
func RelationshipTargetPrefix(relID string) []byte {
	return []byte(prefixRelationshipTarget + keySeparator + relID + keySeparator)
}

// DecodeKey reconstructs the Fact that produced key, per the encoding
// documented on EncodeKey. Every field needed to rebuild a Fact is present
// in its key, so the KV value byte-string carries no information the store
// does not already have from the key alone (store.FactStore nonetheless
// writes a copy of the encoded value as the KV value, per §6's "canonical
// choice is a compact binary encoding of the tagged variant").
func DecodeKey(key []byte) (Fact, error) {
	s := string(key)
	nameEnd := strings.IndexByte(s, ':')
	if nameEnd < 0 {
		return Fact{}, fmt.Errorf("fact: malformed key %q: no separator", s)
	}
	name, rest := s[:nameEnd], s[nameEnd+1:]

	switch name {
	case prefixNodeLabel:
		idx := strings.Index(rest, labelScanSeparatorSentinel)
		if idx < 0 {
			return Fact{}, fmt.Errorf("fact: malformed node_label key %q", s)
		}
		label, nodeID := rest[:idx], rest[idx+len(labelScanSeparatorSentinel):]
		return NewNodeHasLabel(nodeID, label), nil
	case prefixNodeAttribute:
		parts := strings.SplitN(rest, keySeparator, 3)
		if len(parts) != 3 {
			return Fact{}, fmt.Errorf("fact: malformed node_attribute key %q", s)
		}
		val, err := DecodeValue([]byte(parts[2]))
		if err != nil {
			return Fact{}, err
		}
		return NewNodeHasAttribute(parts[0], parts[1], val), nil
	case prefixRelationshipLabel:
		parts := strings.SplitN(rest, keySeparator, 2)
		if len(parts) != 2 {
			return Fact{}, fmt.Errorf("fact: malformed relationship_label key %q", s)
		}
		return NewRelationshipHasLabel(parts[0], parts[1]), nil
	case prefixRelationshipAttr:
		parts := strings.SplitN(rest, keySeparator, 3)
		if len(parts) != 3 {
			return Fact{}, fmt.Errorf("fact: malformed relationship_attribute key %q", s)
		}
		val, err := DecodeValue([]byte(parts[2]))
		if err != nil {
			return Fact{}, err
		}
		return NewRelationshipHasAttribute(parts[0], parts[1], val), nil
	case prefixRelationshipSource:
		parts := strings.SplitN(rest, keySeparator, 2)
		if len(parts) != 2 {
			return Fact{}, fmt.Errorf("fact: malformed relationship_source_node key %q", s)
		}
		return NewRelationshipHasSource(parts[0], parts[1]), nil
	case prefixRelationshipTarget:
		parts := strings.SplitN(rest, keySeparator, 2)
		if len(parts) != 2 {
			return Fact{}, fmt.Errorf("fact: malformed relationship_target_node key %q", s)
		}
		return NewRelationshipHasTarget(parts[0], parts[1]), nil
	default:
		return Fact{}, fmt.Errorf("fact: unknown key prefix %q", name)
	}
}

// DecodeValue is the inverse of EncodeValue.
func DecodeValue(b []byte) (Scalar, error) {
	if len(b) == 0 {
		return Scalar{}, fmt.Errorf("fact: empty encoded value")
	}
	switch b[0] {
	case tagNull:
		return Null, nil
	case tagFalse:
		return Bool(false), nil
	case tagTrue:
		return Bool(true), nil
	case tagInt:
		if len(b) != 9 {
			return Scalar{}, fmt.Errorf("fact: malformed int encoding")
		}
		u := binary.BigEndian.Uint64(b[1:])
		return Int(int64(u ^ 0x8000000000000000)), nil
	case tagFloat:
		if len(b) != 9 {
			return Scalar{}, fmt.Errorf("fact: malformed float encoding")
		}
		bits := binary.BigEndian.Uint64(b[1:])
		if bits&0x8000000000000000 != 0 {
			bits &^= 0x8000000000000000
		} else {
			bits = ^bits
		}
		return Float(math.Float64frombits(bits)), nil
	case tagString:
		return String(string(b[1:])), nil
	case tagList:
		var out []Scalar
		rest := b[1:]
		for len(rest) > 0 {
			if len(rest) < 4 {
				return Scalar{}, fmt.Errorf("fact: malformed list encoding")
			}
			n := binary.BigEndian.Uint32(rest[:4])
			rest = rest[4:]
			if uint32(len(rest)) < n {
				return Scalar{}, fmt.Errorf("fact: malformed list encoding")
			}
			el, err := DecodeValue(rest[:n])
			if err != nil {
				return Scalar{}, err
			}
			out = append(out, el)
			rest = rest[n:]
		}
		return List(out), nil
	default:
		return Scalar{}, fmt.Errorf("fact: unknown value tag %d", b[0])
	}
}

// Scalar encoding tags, one byte each, so that byte-equality of the encoded
// value corresponds to Scalar equality (§4.1 "type-tagged representation").
const (
	tagNull byte = iota
	tagFalse
	tagTrue
	tagInt
	tagFloat
	tagString
	tagList
)

// EncodeValue renders a type-tagged byte encoding of s such that equal
// Scalars encode to equal bytes, and, within a Kind other than lists, encoded
// bytes sort in Scalar.Less order (ints are encoded via a sign-flipped
// big-endian representation so lexicographic byte order matches numeric
// order). List elements are each prefixed with their encoded length, so list
// bytes do not follow Less order.
func EncodeValue(s Scalar) []byte {
	switch s.Kind() {
	case KindNull:
		return []byte{tagNull}
	case KindBool:
		if s.Bool() {
			return []byte{tagTrue}
		}
		return []byte{tagFalse}
	case KindInt:
		buf := make([]byte, 9)
		buf[0] = tagInt
		binary.BigEndian.PutUint64(buf[1:], uint64(s.Int())^0x8000000000000000)
		return buf
	case KindFloat:
		buf := make([]byte, 9)
		buf[0] = tagFloat
		bits := math.Float64bits(s.Float())
		if s.Float() < 0 {
			bits = ^bits
		} else {
			bits |= 0x8000000000000000
		}
		binary.BigEndian.PutUint64(buf[1:], bits)
		return buf
	case KindString:
		return append([]byte{tagString}, []byte(s.Str())...)
	case KindList:
		var b strings.Builder
		b.WriteByte(tagList)
		for _, e := range s.List() {
			enc := EncodeValue(e)
			var lenBuf [4]byte
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(enc)))
			b.Write(lenBuf[:])
			b.Write(enc)
		}
		return []byte(b.String())
	default:
		panic(fmt.Sprintf("fact: unknown scalar kind %d", s.Kind()))
	}
}
