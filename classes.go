// seehuhn.de/go/cstream - parse and optimize PDF content streams
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cstream

import "io"

// Lexical character classes, see section 7.2.3 of PDF 32000-1:2008.
// Every byte is either white-space, a delimiter, or regular.

// IsSpace reports whether c is a white-space character.
func IsSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

// IsDelimiter reports whether c is a delimiter character.
func IsDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// IsRegular reports whether c is a regular character, i.e. neither
// white-space nor a delimiter.
func IsRegular(c byte) bool {
	return !IsSpace(c) && !IsDelimiter(c)
}

// A Writer writes tokens with minimal separation: a single space is
// inserted between two adjacent regular characters, so that
// consecutive tokens do not merge, and no other separators are ever
// emitted.
type Writer struct {
	w    io.Writer
	last byte
}

// NewWriter returns a Writer which writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, last: '\n'}
}

// sepWriterFor wraps w in a Writer.  If w already is a Writer, it is
// returned unchanged, so that nested composite objects share the same
// separator state.
func sepWriterFor(w io.Writer) *Writer {
	if sw, ok := w.(*Writer); ok {
		return sw
	}
	return NewWriter(w)
}

func (sw *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if IsRegular(sw.last) && IsRegular(p[0]) {
		if _, err := sw.w.Write([]byte{' '}); err != nil {
			return 0, err
		}
	}
	n, err := sw.w.Write(p)
	if n > 0 {
		sw.last = p[n-1]
	}
	return n, err
}
