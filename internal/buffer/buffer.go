// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package buffer implements an append-only byte store that grows by a fixed
// factor when it runs out of room.
package buffer

import (
	"errors"

	"go4.org/mem"
)

// DefaultSize is the initial capacity of a buffer created by New.
const DefaultSize = 32

// ErrTooLarge is reported when a write would grow a buffer past its limit.
var ErrTooLarge = errors.New("buffer size limit exceeded")

// A Buffer is an append-only byte store. The zero value is ready for use and
// has no capacity; its first write allocates.
//
// The contents of a buffer always satisfy Len() <= Cap(), and growing the
// buffer preserves every byte already written at its original offset.
type Buffer struct {
	buf   []byte
	limit int // 0 means no limit
}

// New constructs an empty buffer with capacity DefaultSize.
func New() *Buffer { return NewSize(DefaultSize) }

// NewSize constructs an empty buffer with capacity n.
func NewSize(n int) *Buffer {
	if n < 0 {
		n = 0
	}
	return &Buffer{buf: make([]byte, 0, n)}
}

// SetLimit sets the maximum number of bytes b may hold. A limit of zero or
// less removes any limit. Setting a limit does not affect content already
// written.
func (b *Buffer) SetLimit(n int) { b.limit = max(n, 0) }

// Len reports the number of bytes written to b.
func (b *Buffer) Len() int { return len(b.buf) }

// Cap reports the allocated capacity of b.
func (b *Buffer) Cap() int { return cap(b.buf) }

// Append appends p to the contents of b, growing b if necessary.
func (b *Buffer) Append(p []byte) error {
	if err := b.reserve(len(p)); err != nil {
		return err
	}
	b.buf = append(b.buf, p...)
	return nil
}

// AppendString appends s to the contents of b, growing b if necessary.
func (b *Buffer) AppendString(s string) error {
	if err := b.reserve(len(s)); err != nil {
		return err
	}
	b.buf = append(b.buf, s...)
	return nil
}

// AppendByte appends a single byte to the contents of b.
func (b *Buffer) AppendByte(c byte) error {
	if err := b.reserve(1); err != nil {
		return err
	}
	b.buf = append(b.buf, c)
	return nil
}

// Clear discards the contents of b without releasing its capacity.
func (b *Buffer) Clear() { b.buf = b.buf[:0] }

// Contents returns a read-only view of the contents of b. The view is valid
// until the next write to b.
func (b *Buffer) Contents() mem.RO { return mem.B(b.buf) }

// Bytes returns the contents of b. The slice aliases the buffer and is only
// valid until the next write; the caller must not modify it.
func (b *Buffer) Bytes() []byte { return b.buf }

// reserve ensures b has room for n more bytes, growing its storage by a factor
// of 1.5 (or more, if n requires it).
func (b *Buffer) reserve(n int) error {
	need := len(b.buf) + n
	if b.limit > 0 && need > b.limit {
		return ErrTooLarge
	}
	if need <= cap(b.buf) {
		return nil
	}
	size := max(cap(b.buf)+cap(b.buf)/2, DefaultSize)
	for size < need {
		size += size / 2
	}
	if b.limit > 0 && size > b.limit {
		size = b.limit
	}
	grown := make([]byte, len(b.buf), size)
	copy(grown, b.buf)
	b.buf = grown
	return nil
}
