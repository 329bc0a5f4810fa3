package fact

// VariantKind tags which of the six atomic fact shapes a Fact holds (§3).
type VariantKind uint8

const (
	NodeHasLabel VariantKind = iota
	NodeHasAttribute
	RelationshipHasLabel
	RelationshipHasAttribute
	RelationshipHasSource
	RelationshipHasTarget
)

func (v VariantKind) String() string {
	switch v {
	case NodeHasLabel:
		return "NodeHasLabel"
	case NodeHasAttribute:
		return "NodeHasAttribute"
	case RelationshipHasLabel:
		return "RelationshipHasLabel"
	case RelationshipHasAttribute:
		return "RelationshipHasAttribute"
	case RelationshipHasSource:
		return "RelationshipHasSource"
	case RelationshipHasTarget:
		return "RelationshipHasTarget"
	default:
		return "Unknown"
	}
}

// Fact is a tagged variant over the six atomic fact shapes of §3. All
// fields except Value are opaque string identifiers. A Fact is immutable
// after construction; the constructors below are the only valid way to
// build one so that EntityID/Label/etc. line up with the declared Kind.
type Fact struct {
	kind VariantKind

	nodeID string
	relID  string
	label  string
	attr   string
	value  Scalar
}

// NewNodeHasLabel builds a NodeHasLabel fact.
func NewNodeHasLabel(nodeID, label string) Fact {
	return Fact{kind: NodeHasLabel, nodeID: nodeID, label: label}
}

// NewNodeHasAttribute builds a NodeHasAttribute fact.
func NewNodeHasAttribute(nodeID, attribute string, value Scalar) Fact {
	return Fact{kind: NodeHasAttribute, nodeID: nodeID, attr: attribute, value: value}
}

// NewRelationshipHasLabel builds a RelationshipHasLabel fact.
func NewRelationshipHasLabel(relID, label string) Fact {
	return Fact{kind: RelationshipHasLabel, relID: relID, label: label}
}

// NewRelationshipHasAttribute builds a RelationshipHasAttribute fact.
func NewRelationshipHasAttribute(relID, attribute string, value Scalar) Fact {
	return Fact{kind: RelationshipHasAttribute, relID: relID, attr: attribute, value: value}
}

// NewRelationshipHasSource builds a RelationshipHasSource fact.
func NewRelationshipHasSource(relID, nodeID string) Fact {
	return Fact{kind: RelationshipHasSource, relID: relID, nodeID: nodeID}
}

// NewRelationshipHasTarget builds a RelationshipHasTarget fact.
func NewRelationshipHasTarget(relID, nodeID string) Fact {
	return Fact{kind: RelationshipHasTarget, relID: relID, nodeID: nodeID}
}

// Kind reports which of the six shapes f holds.
func (f Fact) Kind() VariantKind { return f.kind }

// NodeID returns the node_id field; valid for NodeHasLabel, NodeHasAttribute,
// RelationshipHasSource, and RelationshipHasTarget.
func (f Fact) NodeID() string { return f.nodeID }

// RelID returns the rel_id field; valid for the four Relationship* variants.
func (f Fact) RelID() string { return f.relID }

// Label returns the label field; valid for NodeHasLabel and
// RelationshipHasLabel.
func (f Fact) Label() string { return f.label }

// Attribute returns the attribute field; valid for NodeHasAttribute and
// RelationshipHasAttribute.
func (f Fact) Attribute() string { return f.attr }

// Value returns the scalar value; valid for NodeHasAttribute and
// RelationshipHasAttribute.
func (f Fact) Value() Scalar { return f.value }

// EntityID returns the id of the entity the fact describes, regardless of
// whether it is a node or a relationship fact: node_id for node facts,
// rel_id for relationship facts. Trigger seed-variable inference (§4.7)
// uses this to bind a variable without branching on Kind.
func (f Fact) EntityID() string {
	switch f.kind {
	case NodeHasLabel, NodeHasAttribute:
		return f.nodeID
	default:
		return f.relID
	}
}

// Equal reports structural equality (§3 "Fact equality is structural").
func (f Fact) Equal(o Fact) bool {
	if f.kind != o.kind {
		return false
	}
	switch f.kind {
	case NodeHasLabel:
		return f.nodeID == o.nodeID && f.label == o.label
	case NodeHasAttribute:
		return f.nodeID == o.nodeID && f.attr == o.attr && f.value.Equal(o.value)
	case RelationshipHasLabel:
		return f.relID == o.relID && f.label == o.label
	case RelationshipHasAttribute:
		return f.relID == o.relID && f.attr == o.attr && f.value.Equal(o.value)
	case RelationshipHasSource, RelationshipHasTarget:
		return f.relID == o.relID && f.nodeID == o.nodeID
	default:
		return false
	}
}

// Key returns the canonical byte-key (§4.1 "Key encoding"), used as both
// the storage key and the deduplication token: inserting a Fact whose Key
// already exists in the store is a no-op (§3).
func (f Fact) Key() []byte { return EncodeKey(f) }

func (f Fact) String() string {
	switch f.kind {
	case NodeHasLabel:
		return "NodeHasLabel(" + f.nodeID + ", " + f.label + ")"
	case NodeHasAttribute:
		return "NodeHasAttribute(" + f.nodeID + ", " + f.attr + ", " + f.value.String() + ")"
	case RelationshipHasLabel:
		return "RelationshipHasLabel(" + f.relID + ", " + f.label + ")"
	case RelationshipHasAttribute:
		return "RelationshipHasAttribute(" + f.relID + ", " + f.attr + ", " + f.value.String() + ")"
	case RelationshipHasSource:
		return "RelationshipHasSource(" + f.relID + ", " + f.nodeID + ")"
	case RelationshipHasTarget:
		return "RelationshipHasTarget(" + f.relID + ", " + f.nodeID + ")"
	default:
		return "<invalid fact>"
	}
}
