// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jnode

// An Iterator walks the children of an object or array node in document
// order. An Iterator does not modify its node, and any number of iterators may
// walk the same tree concurrently.
//
//	it := jnode.NewIterator(obj)
//	var key *jnode.String
//	var val *jnode.Node
//	for it.Next(&key, &val) == nil {
//	   log.Printf("%s: %v", key, val)
//	}
type Iterator struct {
	node *Node
	pos  int
}

// NewIterator constructs an iterator positioned before the first child of n.
func NewIterator(n *Node) *Iterator { return &Iterator{node: n} }

// Iterator returns a new iterator over the children of n.
func (n *Node) Iterator() *Iterator { return NewIterator(n) }

// Next stores the next child of the node into *value, and for an object its
// key into *key, and advances the iterator. For an array, key may be nil;
// if it is not, *key is set to nil.
//
// When no children remain, Next returns [ErrNoMoreElements], and continues
// to do so on each later call. Otherwise, Next reports [ErrInvalidNode] if the
// iterator has no node, [ErrInvalidKeyTarget] if the node is an object and key
// is nil, or [ErrInvalidValueTarget] if value is nil.
func (it *Iterator) Next(key **String, value **Node) error {
	if it == nil || it.node == nil {
		return ErrInvalidNode
	}
	isObj := it.node.Type() == ObjectNode
	if isObj && key == nil {
		return ErrInvalidKeyTarget
	}
	if value == nil {
		return ErrInvalidValueTarget
	}
	if it.pos >= it.node.Len() {
		return ErrNoMoreElements
	}
	if key != nil {
		*key = it.node.KeyAt(it.pos) // nil for arrays
	}
	*value = it.node.Index(it.pos)
	it.pos++
	return nil
}

// Pos reports the offset of the next child to be visited.
func (it *Iterator) Pos() int { return it.pos }

// Reset repositions the iterator before the first child of its node.
func (it *Iterator) Reset() { it.pos = 0 }
