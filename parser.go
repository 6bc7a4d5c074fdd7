// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jnode

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/creachadair/jnode/internal/buffer"
	"github.com/creachadair/jnode/internal/escape"
	"github.com/tailscale/hujson"
	"github.com/valyala/fastjson/fastfloat"

	"go4.org/mem"
)

// DefaultMaxDepth is the default limit on the nesting depth of objects and
// arrays accepted by a Parser.
const DefaultMaxDepth = 200

// defaultKeyHint is the number of key slots reserved for an object when its
// first member is parsed.
const defaultKeyHint = 4

// A Parser parses JSON documents into trees of Node values. The zero value is
// ready for use and has the default settings.
//
// A Parser holds only configuration, so once configured it is safe to share
// among multiple goroutines. Each call to Parse or ParseTree parses a single
// document from start to finish.
type Parser struct {
	maxDepth   int
	maxInput   int
	maxNodes   int
	maxString  int
	maxMembers int
	tcomma     bool // allow trailing commas in objects and arrays
	comments   bool // allow JWCC comments
	utf8       bool // transcode \u escapes to UTF-8
}

// NewParser constructs a new Parser with default settings.
func NewParser() *Parser { return &Parser{maxDepth: DefaultMaxDepth} }

// MaxDepth sets the maximum nesting depth of objects and arrays. The root
// container has depth 1. If n <= 0, the default limit is used.
func (p *Parser) MaxDepth(n int) { p.maxDepth = n }

// MaxInputSize sets the maximum length in bytes of an input document.
// If n <= 0, input length is not limited.
func (p *Parser) MaxInputSize(n int) { p.maxInput = n }

// MaxNodes sets the maximum number of nodes in a parsed tree, including the
// root. If n <= 0, the number of nodes is not limited.
func (p *Parser) MaxNodes(n int) { p.maxNodes = n }

// MaxStringLength sets the maximum length in bytes of a decoded string value
// or object key. If n <= 0, string length is not limited.
func (p *Parser) MaxStringLength(n int) { p.maxString = n }

// MaxMembers sets the maximum number of members in a single object. If
// n <= 0, the number of members is not limited.
func (p *Parser) MaxMembers(n int) { p.maxMembers = n }

// AllowTrailingCommas configures the parser to allow (true) or reject (false)
// a comma after the last member of an object or the last element of an array.
func (p *Parser) AllowTrailingCommas(ok bool) { p.tcomma = ok }

// AllowComments configures the parser to accept (true) or reject (false)
// JSON with comments and trailing commas (JWCC). When enabled, the input is
// converted to standard JSON before parsing, and whitespace before the root
// value is permitted. A malformed comment is reported as [ErrInvalidComment].
func (p *Parser) AllowComments(ok bool) { p.comments = ok }

// DecodeUTF8 configures how the parser decodes "\uXXXX" escapes in strings.
//
// By default (false), each escape is stored as two bytes holding the 16-bit
// code unit, high byte first. When true, escapes are transcoded to UTF-8,
// combining surrogate pairs into a single code point. An unpaired surrogate
// is replaced by U+FFFD.
func (p *Parser) DecodeUTF8(ok bool) { p.utf8 = ok }

// Parse parses input as a JSON document, and returns the root of its tree.
// The root of a document must be an object or an array. In case of a syntax
// error, the returned error has type [*SyntaxError].
func Parse(input []byte) (*Node, error) { return NewParser().Parse(input) }

// ParseTree parses input as a JSON document into the empty node tree, with
// default settings. See [Parser.ParseTree].
func ParseTree(tree *Node, input []byte) error { return NewParser().ParseTree(tree, input) }

// Parse parses input as a JSON document, and returns the root of its tree.
// If parsing fails, Parse returns a nil tree.
func (p *Parser) Parse(input []byte) (*Node, error) {
	tree := NewTree()
	if err := p.ParseTree(tree, input); err != nil {
		return nil, err
	}
	return tree, nil
}

// ParseTree parses input as a JSON document into tree, which must be empty as
// returned by [NewTree]. If ParseTree reports an error, tree may be partly
// populated, and the caller must discard it.
func (p *Parser) ParseTree(tree *Node, input []byte) error {
	if tree == nil {
		return fmt.Errorf("nil tree: %w", ErrInvalidNode)
	} else if tree.v != nil {
		return fmt.Errorf("tree is already populated: %w", ErrInvalidNode)
	}
	if p.maxInput > 0 && len(input) > p.maxInput {
		return fmt.Errorf("input is %d bytes, limit is %d: %w", len(input), p.maxInput, ErrCapacity)
	}

	s := &parseState{Parser: p, maxDepth: p.maxDepth, input: input, sbuf: buffer.New()}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxDepth
	}
	s.sbuf.SetLimit(p.maxString)

	if p.comments {
		std, herr := hujson.Standardize(append([]byte(nil), input...))
		if herr != nil {
			// Parse the original text, skipping comments, so that JSON errors
			// report their own kind and offset. Only if that succeeds is the
			// failure specific to comments.
			s.jwcc = true
			s.skipSpaceAtEnd()
			if err := s.parseDocument(tree); err != nil {
				return err
			}
			return s.failAt(hujsonOffset(input, herr), ErrInvalidComment, "%v", herr)
		}
		s.input = std
		s.skipSpaceAtEnd()
	}
	return s.parseDocument(tree)
}

// hujsonOffset reports the input offset of the line and column named by a
// hujson error, or 0 if err does not name a position.
func hujsonOffset(input []byte, err error) int {
	var line, col int
	if _, serr := fmt.Sscanf(err.Error(), "hujson: line %d, column %d:", &line, &col); serr != nil {
		return 0
	}
	pos := 0
	for ; line > 1; line-- {
		i := bytes.IndexByte(input[pos:], '\n')
		if i < 0 {
			return len(input)
		}
		pos += i + 1
	}
	return min(pos+max(col-1, 0), len(input))
}

// parseState is the state of a single parse.
type parseState struct {
	*Parser
	maxDepth int

	input []byte
	jwcc  bool           // skip comments and allow trailing commas in input
	pos   int            // offset of the next unread byte
	depth int            // nesting depth of the current container
	nodes int            // nodes allocated so far
	sbuf  *buffer.Buffer // decoded text of the current string
}

func (s *parseState) parseDocument(tree *Node) error {
	if err := s.countNode(); err != nil {
		return err
	}
	if s.pos >= len(s.input) {
		return s.fail(ErrUnexpectedEnd, "empty document")
	}
	var err error
	switch c := s.input[s.pos]; c {
	case '{':
		err = s.parseObject(tree)
	case '[':
		err = s.parseArray(tree)
	default:
		return s.fail(ErrInvalidTree, "got %q, want object or array", c)
	}
	if err != nil {
		return err
	}

	// Reaching the end of input after the root value is success.
	if s.skipSpaceAtEnd() {
		return s.fail(ErrTrailingData, "got %q", s.input[s.pos])
	}
	return nil
}

// parseObject consumes an object into n.
// Precondition: input[pos] == '{'.
func (s *parseState) parseObject(n *Node) error {
	if err := s.enter(); err != nil {
		return err
	}
	obj := &objectValue{}
	n.populate(obj, s.pos)
	s.pos++ // "{"

	for first := true; ; first = false {
		if err := s.skipSpace(); err != nil {
			return err
		}
		if s.input[s.pos] == '}' {
			if !first && !s.tcomma && !s.jwcc {
				return s.fail(ErrInvalidObject, "trailing comma before \"}\"")
			}
			break
		}

		if obj.keys == nil {
			obj.keys = NewStringPool(defaultKeyHint)
			obj.keys.SetLimit(s.maxMembers)
		}
		key, err := obj.keys.Next()
		if err != nil {
			return s.fail(err, "object has more than %d members", s.maxMembers)
		}
		if err := s.parseKey(key); err != nil {
			return err
		}

		if err := s.skipSpace(); err != nil {
			return err
		} else if c := s.input[s.pos]; c != ':' {
			return s.fail(ErrInvalidObject, "got %q, want \":\" after key", c)
		}
		s.pos++ // ":"
		if err := s.skipSpace(); err != nil {
			return err
		}

		kid, err := s.parseElement()
		if err != nil {
			return err
		}
		obj.kids = append(obj.kids, kid)

		if err := s.skipSpace(); err != nil {
			return err
		}
		c := s.input[s.pos]
		if c == '}' {
			break
		} else if c != ',' {
			return s.fail(ErrInvalidObject, "got %q, want \",\" or \"}\"", c)
		}
		s.pos++ // ","
	}
	s.pos++ // "}"
	s.leave(n)
	return nil
}

// parseArray consumes an array into n.
// Precondition: input[pos] == '['.
func (s *parseState) parseArray(n *Node) error {
	if err := s.enter(); err != nil {
		return err
	}
	arr := &arrayValue{}
	n.populate(arr, s.pos)
	s.pos++ // "["

	for first := true; ; first = false {
		if err := s.skipSpace(); err != nil {
			return err
		}
		if s.input[s.pos] == ']' {
			if !first && !s.tcomma && !s.jwcc {
				return s.fail(ErrInvalidArray, "trailing comma before \"]\"")
			}
			break
		}

		kid, err := s.parseElement()
		if err != nil {
			return err
		}
		arr.kids = append(arr.kids, kid)

		if err := s.skipSpace(); err != nil {
			return err
		}
		c := s.input[s.pos]
		if c == ']' {
			break
		} else if c != ',' {
			return s.fail(ErrInvalidArray, "got %q, want \",\" or \"]\"", c)
		}
		s.pos++ // ","
	}
	s.pos++ // "]"
	s.leave(n)
	return nil
}

// parseElement allocates a node and parses a value into it. It is an error if
// no value begins at the current offset.
// Precondition: pos < len(input).
func (s *parseState) parseElement() (*Node, error) {
	if err := s.countNode(); err != nil {
		return nil, err
	}
	kid := new(Node)
	ok, err := s.parseValue(kid)
	if err != nil {
		return nil, err
	} else if !ok {
		return nil, s.fail(ErrExpectedValue, "got %q", s.input[s.pos])
	}
	return kid, nil
}

// parseValue consumes a single value of any type into n. It reports false
// without consuming input if the next byte does not begin a value.
// Precondition: pos < len(input).
func (s *parseState) parseValue(n *Node) (bool, error) {
	start := s.pos
	switch c := s.input[s.pos]; {
	case c == '{':
		return true, s.parseObject(n)

	case c == '[':
		return true, s.parseArray(n)

	case c == '"':
		str := new(String)
		if err := s.scanString(); err != nil {
			return true, err
		} else if err := str.setBuffer(s.sbuf); err != nil {
			return true, s.fail(ErrCapacity, "string value: %v", err)
		}
		n.populate(str, start)

	case c == 't':
		if err := s.scanLiteral("true", ErrInvalidBoolean); err != nil {
			return true, err
		}
		n.populate(boolValue(true), start)

	case c == 'f':
		if err := s.scanLiteral("false", ErrInvalidBoolean); err != nil {
			return true, err
		}
		n.populate(boolValue(false), start)

	case c == 'n':
		if err := s.scanLiteral("null", ErrInvalidNull); err != nil {
			return true, err
		}
		n.populate(nullValue{}, start)

	case c == '-' || isDigit(c):
		v, err := s.scanNumber()
		if err != nil {
			return true, err
		}
		n.populate(v, start)

	default:
		return false, nil
	}
	n.end = s.pos
	return true, nil
}

// parseKey consumes an object key into key.
func (s *parseState) parseKey(key *String) error {
	if err := s.scanString(); err != nil {
		return err
	}
	if err := key.setBuffer(s.sbuf); err != nil {
		return s.fail(ErrCapacity, "object key: %v", err)
	}
	return nil
}

// scanString consumes a quoted string literal, and leaves its decoded
// contents in sbuf.
func (s *parseState) scanString() error {
	if s.pos >= len(s.input) {
		return s.fail(ErrUnexpectedEnd, "want string")
	} else if c := s.input[s.pos]; c != '"' {
		return s.fail(ErrInvalidString, "got %q, want '\"'", c)
	}
	start := s.pos
	s.pos++
	s.sbuf.Clear()

	var esc bool
	for s.pos < len(s.input) {
		if !esc {
			// Copy a run of ordinary bytes all at once.
			i := s.pos
			for i < len(s.input) && s.input[i] != '"' && s.input[i] != '\\' {
				i++
			}
			if err := s.put(s.input[s.pos:i]...); err != nil {
				return err
			}
			s.pos = i
			if s.pos == len(s.input) {
				break
			}
		}

		c := s.input[s.pos]
		s.pos++
		if esc {
			// We are awaiting the completion of a \-escape.
			esc = false
			if c == 'u' {
				if err := s.scanUnicode(); err != nil {
					return err
				}
				continue
			}
			if b, ok := escape.Simple(c); ok {
				c = b
			}
			if err := s.put(c); err != nil {
				return err
			}
		} else if c == '"' {
			return nil
		} else {
			esc = c == '\\'
		}
	}
	return s.failAt(start, ErrUnexpectedEnd, "unterminated string")
}

// scanUnicode consumes the four hex digits of a \u escape and appends the
// decoded value to sbuf.
// Precondition: the "\u" prefix has been consumed.
func (s *parseState) scanUnicode() error {
	u, err := s.scanHex4()
	if err != nil {
		return err
	}
	var tmp [4]byte
	if !s.utf8 {
		return s.put(escape.AppendRaw16(tmp[:0], u)...)
	}

	// Recombine a surrogate pair, if the low half immediately follows.
	if escape.IsHighSurrogate(u) && mem.HasPrefix(mem.B(s.input[s.pos:]), mem.S(`\u`)) {
		save := s.pos
		s.pos += 2
		lo, err := s.scanHex4()
		if err != nil {
			return err
		} else if escape.IsLowSurrogate(lo) {
			u = escape.Combine(u, lo)
		} else {
			s.pos = save // not a pair; decode the next escape on its own
		}
	}
	return s.put(escape.AppendUTF8(tmp[:0], u)...)
}

func (s *parseState) scanHex4() (rune, error) {
	// Check the digits that are present before reporting a short input, so a
	// closed string with a short escape is reported as a bad escape.
	for i := s.pos; i < len(s.input) && i < s.pos+4; i++ {
		if !isHexDigit(s.input[i]) {
			return 0, s.failAt(i, ErrInvalidUnicode, "invalid hex digit %q", s.input[i])
		}
	}
	if len(s.input)-s.pos < 4 {
		return 0, s.fail(ErrUnexpectedEnd, "incomplete unicode escape")
	}
	u, err := escape.Hex4(mem.B(s.input[s.pos : s.pos+4]))
	if err != nil {
		return 0, s.fail(ErrInvalidUnicode, "%v", err)
	}
	s.pos += 4
	return u, nil
}

// scanLiteral consumes the constant want, or reports an error of the given
// kind if the input does not match.
func (s *parseState) scanLiteral(want string, kind error) error {
	rest := mem.B(s.input[s.pos:])
	if rest.Len() < len(want) {
		if mem.HasPrefix(mem.S(want), rest) {
			return s.failAt(len(s.input), ErrUnexpectedEnd, "incomplete %q", want)
		}
		return s.fail(kind, "got %q, want %q", rest.StringCopy(), want)
	}
	if got := rest.SliceTo(len(want)); !got.Equal(mem.S(want)) {
		return s.fail(kind, "got %q, want %q", got.StringCopy(), want)
	}
	s.pos += len(want)
	return nil
}

// scanNumber consumes a numeric literal and returns its value, either an
// intValue or a doubleValue.
func (s *parseState) scanNumber() (payload, error) {
	start := s.pos
	end := start
	for end < len(s.input) && isNumByte(s.input[end]) {
		end++
	}
	lit := s.input[start:end]
	isFloat, err := checkNumber(lit)
	if err != nil {
		return nil, s.fail(ErrInvalidNumber, "%q: %v", lit, err)
	}
	s.pos = end

	if isFloat {
		f, err := fastfloat.Parse(string(lit))
		if err != nil && !math.IsInf(f, 0) {
			return nil, s.failAt(start, ErrInvalidNumber, "%q: %v", lit, err)
		}
		return doubleValue(f), nil
	}

	// An out-of-range integer saturates to the nearest representable value.
	z, err := strconv.ParseInt(string(lit), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, s.failAt(start, ErrInvalidNumber, "%q: %v", lit, err)
	}
	return intValue(z), nil
}

// checkNumber reports whether lit is a well-formed JSON number, and whether
// it has a fraction or exponent.
func checkNumber(lit []byte) (isFloat bool, _ error) {
	i := 0
	if i < len(lit) && lit[i] == '-' {
		i++ // skip leading sign
	}
	nd := countDigits(lit[i:])
	if nd == 0 {
		return false, errors.New("missing digits")
	} else if nd > 1 && lit[i] == '0' {
		// A leading zero is OK if it's the only digit: 0.12 is OK, 01.2 is not.
		return false, errors.New("extra leading zeroes")
	}
	i += nd

	if i < len(lit) && lit[i] == '.' {
		i++
		nd := countDigits(lit[i:])
		if nd == 0 {
			return false, errors.New("no digits after decimal point")
		}
		i += nd
		isFloat = true
	}
	if i < len(lit) && (lit[i] == 'e' || lit[i] == 'E') {
		i++
		if i < len(lit) && (lit[i] == '+' || lit[i] == '-') {
			i++
		}
		nd := countDigits(lit[i:])
		if nd == 0 {
			return false, errors.New("missing exponent digits")
		}
		i += nd
		isFloat = true
	}
	if i < len(lit) {
		return false, fmt.Errorf("unexpected %q", lit[i])
	}
	return isFloat, nil
}

func countDigits(p []byte) int {
	for i, c := range p {
		if !isDigit(c) {
			return i
		}
	}
	return len(p)
}

// skipSpace consumes whitespace, and reports ErrUnexpectedEnd if no input
// remains afterward.
func (s *parseState) skipSpace() error {
	if !s.skipSpaceAtEnd() {
		return s.fail(ErrUnexpectedEnd, "want more input")
	}
	return nil
}

// skipSpaceAtEnd consumes whitespace, and reports whether any input remains.
func (s *parseState) skipSpaceAtEnd() bool {
	for s.pos < len(s.input) {
		if c := s.input[s.pos]; isSpace(c) {
			s.pos++
		} else if c != '/' || !s.jwcc || !s.skipComment() {
			break
		}
	}
	return s.pos < len(s.input)
}

// skipComment consumes a comment beginning at pos, and reports whether it
// found one. An unterminated block comment consumes the rest of the input.
func (s *parseState) skipComment() bool {
	rest := mem.B(s.input[s.pos:])
	switch {
	case mem.HasPrefix(rest, mem.S("//")):
		if i := mem.IndexByte(rest, '\n'); i >= 0 {
			s.pos += i + 1
		} else {
			s.pos = len(s.input)
		}
	case mem.HasPrefix(rest, mem.S("/*")):
		if i := mem.Index(rest.SliceFrom(2), mem.S("*/")); i >= 0 {
			s.pos += i + 4
		} else {
			s.pos = len(s.input)
		}
	default:
		return false
	}
	return true
}

// put appends decoded bytes to sbuf.
func (s *parseState) put(p ...byte) error {
	if err := s.sbuf.Append(p); err != nil {
		return s.fail(ErrCapacity, "string longer than %d bytes", s.maxString)
	}
	return nil
}

func (s *parseState) enter() error {
	s.depth++
	if s.depth > s.maxDepth {
		return s.fail(ErrTooDeep, "depth %d exceeds limit %d", s.depth, s.maxDepth)
	}
	return nil
}

// leave closes the container n, whose closing delimiter has been consumed.
func (s *parseState) leave(n *Node) {
	s.depth--
	n.end = s.pos
}

func (s *parseState) countNode() error {
	s.nodes++
	if s.maxNodes > 0 && s.nodes > s.maxNodes {
		return s.fail(ErrCapacity, "more than %d nodes", s.maxNodes)
	}
	return nil
}

func (s *parseState) fail(kind error, msg string, args ...any) error {
	return s.failAt(s.pos, kind, msg, args...)
}

func (s *parseState) failAt(pos int, kind error, msg string, args ...any) error {
	return &SyntaxError{
		Offset:   pos,
		Location: locate(s.input, pos),
		Message:  kind.Error() + ": " + fmt.Sprintf(msg, args...),
		err:      kind,
	}
}

func isSpace(c byte) bool   { return c == ' ' || c == '\r' || c == '\n' || c == '\t' }
func isDigit(c byte) bool   { return '0' <= c && c <= '9' }
func isNumByte(c byte) bool { return isDigit(c) || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' }

func isHexDigit(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
