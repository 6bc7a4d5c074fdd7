// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over a parsed JSON tree.
package cursor

import (
	"fmt"

	"github.com/creachadair/jnode"
)

// Scalar is the set of Go types that a scalar node can be extracted as.
type Scalar interface {
	string | int64 | float64 | bool
}

// Path traverses a sequential path into the structure of root, where path
// elements are as documented for the Cursor.Down method. This is a
// convenience wrapper for creating a cursor, applying path, and retrieving
// its node.
func Path(root *jnode.Node, path ...any) (*jnode.Node, error) {
	c := New(root).Down(path...)
	if err := c.Err(); err != nil {
		return nil, err
	}
	return c.Node(), nil
}

// Get traverses path from root as Path does, and returns the value of the
// node it reaches as a T. It reports an error if the node does not hold a
// value of type T.
func Get[T Scalar](root *jnode.Node, path ...any) (T, error) {
	var zero T
	n, err := Path(root, path...)
	if err != nil {
		return zero, err
	}
	var v any
	var ok bool
	switch any(zero).(type) {
	case string:
		if s := n.GetString(); s != nil {
			v, ok = s.Text(), true
		}
	case int64:
		v, ok = n.GetInteger()
	case float64:
		v, ok = n.GetDouble()
	case bool:
		v, ok = n.GetBool()
	}
	if !ok {
		return zero, fmt.Errorf("wrong node type %v for %T", n.Type(), zero)
	}
	return v.(T), nil
}

// A Cursor is a pointer that navigates into the structure of a tree.
type Cursor struct {
	org *jnode.Node
	stk []*jnode.Node
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin *jnode.Node) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin node of c.
func (c *Cursor) Origin() *jnode.Node { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Node reports the current node under the cursor.
func (c *Cursor) Node() *jnode.Node {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path reports the complete sequence of nodes from the origin to the current
// location in c.
func (c *Cursor) Path() []*jnode.Node {
	return append([]*jnode.Node{c.org}, c.stk...)
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current node, where path elements are strings (denoting object keys),
// integers (denoting offsets into arrays or objects), functions (see below),
// or nil. If the path cannot be completely consumed, traversal stops and an
// error is recorded. Use Err to recover the error.
//
// A string resolves the first member of an object with that key.
//
// An integer resolves an element of an array, or the value of a member of an
// object by position. Negative indices count backward from the end (-1 is
// last, -2 second last). An error is reported if the index is out of bounds.
//
// If a path element is a function, the function is executed and its result
// becomes the next node in the sequence. The function must have signature
//
//	func(*jnode.Node) (*jnode.Node, error)
//
// If the function reports an error, traversal stops and the error is recorded.
// A nil element does not move the cursor.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Node()
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			if cur.Type() != jnode.ObjectNode {
				return c.setErrorf("cannot traverse %v with %q", cur.Type(), t)
			}
			next := cur.Find(t)
			if next == nil {
				return c.setErrorf("key %q not found", t)
			}
			cur = c.push(next)

		case int:
			switch typ := cur.Type(); typ {
			case jnode.ArrayNode, jnode.ObjectNode:
				i, ok := fixArrayBound(cur.Len(), t)
				if !ok {
					return c.setErrorf("%v index %d out of bounds (n=%d)", typ, i, cur.Len())
				}
				cur = c.push(cur.Index(i))
			default:
				return c.setErrorf("cannot traverse %v with %v", typ, t)
			}

		case func(*jnode.Node) (*jnode.Node, error):
			next, err := t(cur)
			if err != nil {
				c.err = err
				return c
			}
			cur = c.push(next)

		case nil:
			// Do nothing.

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) push(n *jnode.Node) *jnode.Node { c.stk = append(c.stk, n); return n }

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
