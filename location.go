// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jnode

import (
	"bytes"
	"fmt"
)

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// locate reports the line and column of offset pos in input.
// Offsets past the end of input are clamped to the end.
func locate(input []byte, pos int) LineCol {
	pos = min(max(pos, 0), len(input))
	head := input[:pos]
	line := bytes.Count(head, []byte("\n"))
	col := pos - (bytes.LastIndexByte(head, '\n') + 1)
	return LineCol{Line: line + 1, Column: col}
}
