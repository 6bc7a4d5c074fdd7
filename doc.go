// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package jnode implements a JSON parser that builds a tree of values.
//
// # Parsing
//
// Call Parse with the complete text of a document. The root of a document
// must be an object or an array. Parse returns the root of the tree, or an
// error:
//
//	root, err := jnode.Parse(input)
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// Syntax errors have concrete type *jnode.SyntaxError, and wrap one of the
// Err* values exported by this package, so the kind of failure can be checked
// with errors.Is:
//
//	if errors.Is(err, jnode.ErrUnexpectedEnd) {
//	   log.Print("Input is truncated")
//	}
//
// To change limits or accept non-standard input, construct a Parser and use
// its setter methods before parsing:
//
//	p := jnode.NewParser()
//	p.MaxDepth(32)
//	p.AllowComments(true)
//	root, err := p.Parse(input)
//
// # Trees
//
// A Node holds one value of the document. Its Type reports which kind of
// value it holds, and the accessors GetString, GetBool, GetInteger and
// GetDouble return its value. An accessor applied to a node of the wrong type
// reports the absence of a value rather than failing:
//
//	Type        | Accessor    | Absent value
//	----------- | ----------- | --------------------
//	StringNode  | GetString   | nil
//	BooleanNode | Bool        | false
//	IntegerNode | Integer     | InvalidInteger
//	DoubleNode  | Double      | NaN
//
// The children of an object or array are visited in document order with an
// Iterator, or with the All method:
//
//	for key, val := range root.All() {
//	   log.Printf("%s: %v", key, val)
//	}
//
// # Strings
//
// String values and object keys are stored decoded. By default, a "\uXXXX"
// escape is stored as the two bytes of its 16-bit code unit, high byte first,
// so "\u0041" decodes to the bytes 0x00 0x41. Use Parser.DecodeUTF8 to have
// such escapes transcoded to UTF-8 instead.
package jnode
