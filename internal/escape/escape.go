// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles the escape sequences of JSON strings.
package escape

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

var simpleEsc = [...]byte{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

// Simple reports the byte denoted by the single-character escape "\c", and
// whether c is such an escape. The Unicode escape "\u" is not simple.
func Simple(c byte) (byte, bool) {
	if int(c) < len(simpleEsc) {
		if b := simpleEsc[c]; b != 0 {
			return b, true
		}
	}
	return 0, false
}

// Hex4 decodes exactly four hexadecimal digits from the front of src as a
// UTF-16 code unit.
func Hex4(src mem.RO) (rune, error) {
	if src.Len() < 4 {
		return 0, fmt.Errorf("want 4 hex digits, have %d", src.Len())
	}
	var v rune
	for i := range 4 {
		b := src.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += rune(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += rune(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += rune(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}

// AppendRaw16 appends the code unit u to dst as two bytes, high byte first.
// No transcoding is performed.
func AppendRaw16(dst []byte, u rune) []byte {
	return append(dst, byte(u>>8), byte(u))
}

// AppendUTF8 appends the UTF-8 encoding of r to dst. Surrogate halves and
// other invalid runes are encoded as the replacement rune.
func AppendUTF8(dst []byte, r rune) []byte {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return append(dst, buf[:n]...)
}

// IsHighSurrogate reports whether u is the first half of a surrogate pair.
func IsHighSurrogate(u rune) bool { return 0xD800 <= u && u < 0xDC00 }

// IsLowSurrogate reports whether u is the second half of a surrogate pair.
func IsLowSurrogate(u rune) bool { return 0xDC00 <= u && u < 0xE000 }

// Combine returns the code point encoded by the surrogate pair (hi, lo), or
// the replacement rune if they are not a valid pair.
func Combine(hi, lo rune) rune { return utf16.DecodeRune(hi, lo) }
