// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jnode

import (
	"github.com/creachadair/jnode/internal/buffer"
	"github.com/creachadair/jnode/internal/escape"

	"go4.org/mem"
)

// A String is a decoded JSON string. Escape sequences are already resolved,
// and the stored text is followed by a single NUL terminator byte.
//
// The zero value is an empty string with no terminator, and is ready for use.
type String struct {
	buf *buffer.Buffer
}

// NewString constructs a new empty String.
func NewString() *String { return &String{buf: buffer.New()} }

// SetBytes replaces the contents of s with a copy of p.
func (s *String) SetBytes(p []byte) error {
	if s.buf == nil || s.buf.Cap() < len(p)+1 {
		s.buf = buffer.NewSize(len(p) + 1)
	}
	s.buf.Clear()
	if err := s.buf.Append(p); err != nil {
		return err
	}
	return s.buf.AppendByte(0)
}

// setBuffer replaces the contents of s with a copy of the contents of b.
func (s *String) setBuffer(b *buffer.Buffer) error { return s.SetBytes(b.Bytes()) }

// Data returns a read-only view of the decoded text of s, including its
// trailing terminator.
func (s *String) Data() mem.RO {
	if s == nil || s.buf == nil {
		return mem.RO{}
	}
	return s.buf.Contents()
}

// Bytes returns the decoded text of s without its terminator. The slice is
// shared with s and must not be modified.
func (s *String) Bytes() []byte {
	if s.Len() == 0 {
		return nil
	}
	return s.buf.Bytes()[:s.Len()]
}

// Len reports the length in bytes of the decoded text of s, not counting
// the terminator.
func (s *String) Len() int {
	if s == nil || s.buf == nil || s.buf.Len() == 0 {
		return 0
	}
	return s.buf.Len() - 1
}

// Text returns a copy of the decoded text of s.
func (s *String) Text() string { return string(s.Bytes()) }

// Equal reports whether the decoded text of s is equal to t.
func (s *String) Equal(t string) bool { return mem.B(s.Bytes()).EqualString(t) }

// String returns the text of s as a quoted JSON string.
func (s *String) String() string {
	return string(escape.Quote(nil, mem.B(s.Bytes())))
}

// nodeType satisfies the payload interface.
func (*String) nodeType() Type { return StringNode }

// A StringPool holds the member keys of an object, in the order they were
// added. A pool pre-allocates storage for the number of keys its creator
// expects, and grows as needed beyond that.
type StringPool struct {
	keys  []*String
	free  []String // pre-allocated slots not yet handed out
	limit int
}

// NewStringPool constructs a pool with room for hint keys.
func NewStringPool(hint int) *StringPool {
	hint = max(hint, 0)
	return &StringPool{
		keys: make([]*String, 0, hint),
		free: make([]String, hint),
	}
}

// SetLimit sets the maximum number of keys p may hold. A limit of zero or less
// removes the limit.
func (p *StringPool) SetLimit(n int) { p.limit = max(n, 0) }

// Next returns the next unused slot of p, initialized to an empty string.
// It reports [ErrCapacity] if p already holds the maximum number of keys.
func (p *StringPool) Next() (*String, error) {
	if p.limit > 0 && len(p.keys) >= p.limit {
		return nil, ErrCapacity
	}
	var s *String
	if len(p.free) != 0 {
		s, p.free = &p.free[0], p.free[1:]
	} else {
		s = new(String)
	}
	p.keys = append(p.keys, s)
	return s, nil
}

// Len reports the number of keys handed out by p.
func (p *StringPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// At returns the key at offset i of p, or nil if i is out of range.
func (p *StringPool) At(i int) *String {
	if i < 0 || i >= p.Len() {
		return nil
	}
	return p.keys[i]
}
