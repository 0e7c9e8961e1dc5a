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

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Object represents an operand in a PDF content stream.  The following
// types implement this interface: Array, Bool, Dict, Integer, Name,
// Operator, Procedure, Real, and String.
type Object interface {
	// PDF writes the content stream representation of the object to w.
	// The output uses the shortest valid encoding for the object.
	PDF(w io.Writer) error
}

// Bool represents a boolean operand.
type Bool bool

// PDF implements the [Object] interface.
func (x Bool) PDF(w io.Writer) error {
	var s string
	if x {
		s = "true"
	} else {
		s = "false"
	}
	return writeToken(w, s)
}

// Integer represents an integer operand.
type Integer int64

// PDF implements the [Object] interface.
func (x Integer) PDF(w io.Writer) error {
	return writeToken(w, strconv.FormatInt(int64(x), 10))
}

// Real represents a real number operand.
type Real float64

// PDF implements the [Object] interface.
//
// PDF has no exponential notation, so the number is written in the
// shortest place-value form which round-trips to the same value.
func (x Real) PDF(w io.Writer) error {
	return writeToken(w, FormatNumber(float64(x)))
}

// FormatNumber returns the shortest content stream representation of x:
// no exponent, no trailing zeros after the decimal point, no leading
// zero before it, and plain "0" for zero and negative zero.
func FormatNumber(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	fracPart = strings.TrimRight(fracPart, "0")

	if intPart == "" && fracPart == "" {
		// negative zero is not useful in PDF
		return "0"
	}
	if fracPart == "" {
		return sign + intPart
	}
	return sign + intPart + "." + fracPart
}

// String represents a raw byte string operand.  The character set
// encoding, if any, is determined by the context.
type String []byte

// PDF implements the [Object] interface.
//
// The string is written in literal form unless the hexadecimal form is
// shorter.  Balanced parentheses inside the string are left unescaped.
func (x String) PDF(w io.Writer) error {
	l := []byte(x)

	// Balanced parentheses do not need to be escaped.
	level := 0
	for _, c := range l {
		if c == '(' {
			level++
		} else if c == ')' {
			level--
			if level < 0 {
				break
			}
		}
	}
	balanced := level == 0

	var funny []int
	for i, c := range l {
		if c == '\n' || c == '\t' {
			continue
		}
		if c < 32 || c >= 127 || c == '\\' ||
			!balanced && (c == '(' || c == ')') {
			funny = append(funny, i)
		}
	}

	var buf []byte
	if 3*len(funny) <= len(l) {
		buf = append(buf, '(')
		pos := 0
		for _, i := range funny {
			buf = append(buf, l[pos:i]...)
			switch c := l[i]; c {
			case '\r':
				// a raw CR would be normalized to LF when read back
				buf = append(buf, '\\', 'r')
			case '\b':
				buf = append(buf, '\\', 'b')
			case '\f':
				buf = append(buf, '\\', 'f')
			case '(', ')', '\\':
				buf = append(buf, '\\', c)
			default:
				buf = append(buf, '\\',
					'0'+(c>>6), '0'+(c>>3)&7, '0'+c&7)
			}
			pos = i + 1
		}
		buf = append(buf, l[pos:]...)
		buf = append(buf, ')')
	} else {
		buf = append(buf, '<')
		const hexDigits = "0123456789abcdef"
		for _, c := range l {
			buf = append(buf, hexDigits[c>>4], hexDigits[c&0x0F])
		}
		buf = append(buf, '>')
	}

	sw := sepWriterFor(w)
	_, err := sw.Write(buf)
	return err
}

// Name represents a name operand.  The leading slash and any #xx hex
// escapes are not part of the value; they are added back when the name
// is written.
type Name string

// PDF implements the [Object] interface.
func (x Name) PDF(w io.Writer) error {
	l := []byte(x)

	buf := []byte{'/'}
	for _, c := range l {
		if c <= 0x20 || c >= 0x7F || IsDelimiter(c) || c == '#' {
			const hexDigits = "0123456789ABCDEF"
			buf = append(buf, '#', hexDigits[c>>4], hexDigits[c&0x0F])
		} else {
			buf = append(buf, c)
		}
	}

	sw := sepWriterFor(w)
	_, err := sw.Write(buf)
	return err
}

// Operator is an operator keyword in a content stream.  Unlike names,
// operators carry no leading slash and no #xx escapes.
type Operator string

// PDF implements the [Object] interface.
func (x Operator) PDF(w io.Writer) error {
	return writeToken(w, string(x))
}

// Array represents an array operand.
type Array []Object

// PDF implements the [Object] interface.
func (x Array) PDF(w io.Writer) error {
	sw := sepWriterFor(w)
	if _, err := sw.Write([]byte("[")); err != nil {
		return err
	}
	for _, val := range x {
		if err := Write(sw, val); err != nil {
			return err
		}
	}
	_, err := sw.Write([]byte("]"))
	return err
}

// Procedure represents a brace-delimited array, as found in Type 4
// (PostScript calculator) function streams.
type Procedure []Object

// PDF implements the [Object] interface.
func (x Procedure) PDF(w io.Writer) error {
	sw := sepWriterFor(w)
	if _, err := sw.Write([]byte("{")); err != nil {
		return err
	}
	for _, val := range x {
		if err := Write(sw, val); err != nil {
			return err
		}
	}
	_, err := sw.Write([]byte("}"))
	return err
}

// Dict represents a dictionary operand.  If a key is given more than
// once in the source, the last value wins.
type Dict map[Name]Object

// PDF implements the [Object] interface.  Keys are written in sorted
// order, for deterministic output.
func (x Dict) PDF(w io.Writer) error {
	sw := sepWriterFor(w)
	if _, err := sw.Write([]byte("<<")); err != nil {
		return err
	}

	keys := maps.Keys(x)
	slices.Sort(keys)
	for _, key := range keys {
		val := x[key]
		if val == nil {
			// a null value is equivalent to an absent entry
			continue
		}
		if err := key.PDF(sw); err != nil {
			return err
		}
		if err := Write(sw, val); err != nil {
			return err
		}
	}
	_, err := sw.Write([]byte(">>"))
	return err
}

// Write writes one object to w.  A nil object is written as null.
func Write(w io.Writer, obj Object) error {
	if obj == nil {
		return writeToken(w, "null")
	}
	return obj.PDF(w)
}

func writeToken(w io.Writer, s string) error {
	sw := sepWriterFor(w)
	_, err := sw.Write([]byte(s))
	return err
}
