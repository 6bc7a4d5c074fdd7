// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jnode

import (
	"fmt"
	"iter"
	"math"
)

// Type is the type of a Node.
type Type byte

// Constants defining the valid Type values.
const (
	Unknown     Type = iota // not yet populated
	ObjectNode              // { ... }
	ArrayNode               // [ ... ]
	StringNode              // "..."
	DoubleNode              // number with a fraction or exponent
	IntegerNode             // number with no fraction or exponent
	BooleanNode             // true, false
	NullNode                // null
)

var typeStr = [...]string{
	Unknown:     "unknown",
	ObjectNode:  "object",
	ArrayNode:   "array",
	StringNode:  "string",
	DoubleNode:  "double",
	IntegerNode: "integer",
	BooleanNode: "boolean",
	NullNode:    "null",
}

func (t Type) String() string {
	v := int(t)
	if v >= len(typeStr) {
		return typeStr[Unknown]
	}
	return typeStr[v]
}

// InvalidInteger is the value reported by Node.Integer for a node that does
// not hold an integer.
const InvalidInteger = math.MinInt64

// A Node is a single value in a JSON document tree.
//
// A Node is created empty (with type Unknown) and is populated once, by the
// parser. After parsing, a tree is not modified, and its methods are safe for
// concurrent use by multiple goroutines.
//
// The methods of a Node accept a nil receiver, which behaves as an empty node
// of type Unknown.
type Node struct {
	v        payload
	pos, end int
}

// A payload is the value held by a Node. The concrete type of the payload
// determines the type of the node.
type payload interface{ nodeType() Type }

type (
	boolValue   bool
	intValue    int64
	doubleValue float64
	nullValue   struct{}

	objectValue struct {
		keys *StringPool
		kids []*Node
	}
	arrayValue struct {
		kids []*Node
	}
)

func (boolValue) nodeType() Type    { return BooleanNode }
func (intValue) nodeType() Type     { return IntegerNode }
func (doubleValue) nodeType() Type  { return DoubleNode }
func (nullValue) nodeType() Type    { return NullNode }
func (*objectValue) nodeType() Type { return ObjectNode }
func (*arrayValue) nodeType() Type  { return ArrayNode }

// NewTree returns a new empty node, suitable as the root of a parse.
func NewTree() *Node { return new(Node) }

// TypeOf returns the type of n. It returns Unknown if n == nil.
func TypeOf(n *Node) Type { return n.Type() }

// Type returns the type of n. It returns Unknown if n == nil.
func (n *Node) Type() Type {
	if n == nil || n.v == nil {
		return Unknown
	}
	return n.v.nodeType()
}

// Span returns the location of n in the source text it was parsed from.
func (n *Node) Span() Span {
	if n == nil {
		return Span{}
	}
	return Span{Pos: n.pos, End: n.end}
}

// GetString returns the string value of n, or nil if n is not a string.
func (n *Node) GetString() *String {
	if n != nil {
		if s, ok := n.v.(*String); ok {
			return s
		}
	}
	return nil
}

// GetBool returns the Boolean value of n, and reports whether n is a Boolean.
func (n *Node) GetBool() (bool, bool) {
	if n != nil {
		if b, ok := n.v.(boolValue); ok {
			return bool(b), true
		}
	}
	return false, false
}

// Bool returns the Boolean value of n, or false if n is not a Boolean.
func (n *Node) Bool() bool { v, _ := n.GetBool(); return v }

// GetInteger returns the integer value of n, and reports whether n is an
// integer.
func (n *Node) GetInteger() (int64, bool) {
	if n != nil {
		if z, ok := n.v.(intValue); ok {
			return int64(z), true
		}
	}
	return InvalidInteger, false
}

// Integer returns the integer value of n, or InvalidInteger if n is not an
// integer.
func (n *Node) Integer() int64 { v, _ := n.GetInteger(); return v }

// GetDouble returns the floating-point value of n, and reports whether n is
// a double.
func (n *Node) GetDouble() (float64, bool) {
	if n != nil {
		if f, ok := n.v.(doubleValue); ok {
			return float64(f), true
		}
	}
	return math.NaN(), false
}

// Double returns the floating-point value of n, or NaN if n is not a double.
func (n *Node) Double() float64 { v, _ := n.GetDouble(); return v }

// IsNull reports whether n is the null constant.
func (n *Node) IsNull() bool { return n.Type() == NullNode }

// Len reports the number of children of n. It is 0 for any node that is not
// an object or array.
func (n *Node) Len() int { return len(n.children()) }

// Index returns the child of n at offset i, or nil if n has no such child.
func (n *Node) Index(i int) *Node {
	kids := n.children()
	if i < 0 || i >= len(kids) {
		return nil
	}
	return kids[i]
}

// KeyAt returns the key of the member of n at offset i, or nil if n is not
// an object or has no such member.
func (n *Node) KeyAt(i int) *String {
	if n != nil {
		if o, ok := n.v.(*objectValue); ok {
			return o.keys.At(i)
		}
	}
	return nil
}

// Find returns the value of the first member of n with the given key, or nil
// if n is not an object or has no such member.
func (n *Node) Find(key string) *Node {
	if n == nil {
		return nil
	}
	o, ok := n.v.(*objectValue)
	if !ok {
		return nil
	}
	for i, kid := range o.kids {
		if o.keys.At(i).Equal(key) {
			return kid
		}
	}
	return nil
}

// All returns a sequence of the children of n in document order. For an
// object, each child is paired with its key; for an array the keys are nil.
func (n *Node) All() iter.Seq2[*String, *Node] {
	return func(yield func(*String, *Node) bool) {
		for i, kid := range n.children() {
			if !yield(n.KeyAt(i), kid) {
				return
			}
		}
	}
}

func (n *Node) String() string {
	switch t := n.Type(); t {
	case ObjectNode, ArrayNode:
		return fmt.Sprintf("%s(len=%d)", t, n.Len())
	case StringNode:
		return fmt.Sprintf("string(%s)", n.GetString())
	case IntegerNode:
		return fmt.Sprintf("integer(%d)", n.Integer())
	case DoubleNode:
		return fmt.Sprintf("double(%g)", n.Double())
	case BooleanNode:
		return fmt.Sprintf("boolean(%v)", n.Bool())
	default:
		return t.String()
	}
}

func (n *Node) children() []*Node {
	if n == nil {
		return nil
	}
	switch t := n.v.(type) {
	case *objectValue:
		return t.kids
	case *arrayValue:
		return t.kids
	}
	return nil
}

// populate sets the payload of n, whose source text begins at offset pos.
// It panics if n has already been populated.
func (n *Node) populate(v payload, pos int) {
	if n.v != nil {
		panic(fmt.Sprintf("jnode: node already populated as %s", n.Type()))
	}
	n.v = v
	n.pos = pos
}
