// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote appends src to dst as a double-quoted JSON string. Bytes that do not
// form valid UTF-8 are written as \u00XX escapes, so that decoded strings
// holding raw 16-bit code units remain printable.
func Quote(dst []byte, src mem.RO) []byte {
	dst = append(dst, '"')
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		switch {
		case r == utf8.RuneError && n <= 1:
			b := src.At(0)
			dst = append(dst, '\\', 'u', '0', '0', hexDigit[b>>4], hexDigit[b&15])
		case r < ' ':
			if c := controlEsc[r]; c != 0 {
				dst = append(dst, '\\', c)
			} else {
				dst = append(dst, '\\', 'u', '0', '0', hexDigit[r>>4], hexDigit[r&15])
			}
		case r == '\\' || r == '"':
			dst = append(dst, '\\', byte(r))
		case r == '\u2028' || r == '\u2029':
			dst = append(dst, '\\', 'u', '2', '0', '2', hexDigit[r&15])
		default:
			dst = mem.Append(dst, src.SliceTo(n))
		}
		src = src.SliceFrom(max(n, 1))
	}
	return append(dst, '"')
}
