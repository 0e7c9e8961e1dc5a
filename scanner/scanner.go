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

// Package scanner breaks a decoded content stream body into tokens.
//
// The scanner handles the lexical layer only: numbers, names, strings,
// array/dictionary/procedure literals, and bare keywords.  It never
// interprets operator semantics.  Composite literals are returned as
// single tokens, with nesting bounded by [MaxNesting].
package scanner

import (
	"io"
	"strconv"

	"seehuhn.de/go/cstream"
)

// MaxNesting is the maximum nesting depth of array, dictionary and
// procedure literals.  Deeper input is rejected with a
// [cstream.LexError] instead of exhausting the call stack.
const MaxNesting = 64

// A Token is a single lexical element of a content stream.
//
// Obj is the token's value.  Keywords which are not literals
// (true/false/null) are returned as [cstream.Operator] values; whether
// they are in fact valid operators is decided by the consumer.  Obj is
// nil for the null keyword.
type Token struct {
	Obj cstream.Object
	Pos int // byte offset of the first byte of the token
}

// A Scanner reads tokens from a content stream body.
type Scanner struct {
	data []byte
	pos  int
}

// New returns a Scanner reading from the given content stream body.
func New(data []byte) *Scanner {
	return &Scanner{data: data}
}

// Pos returns the byte offset of the next unread byte.
func (s *Scanner) Pos() int {
	return s.pos
}

// Next returns the next token.  At the end of the input, Next returns
// io.EOF.  Comments are skipped.
func (s *Scanner) Next() (Token, error) {
	s.skipWhiteSpace()
	if s.pos >= len(s.data) {
		return Token{Pos: s.pos}, io.EOF
	}

	tok := Token{Pos: s.pos}
	obj, err := s.next(0)
	if err != nil {
		return Token{Pos: tok.Pos}, err
	}
	tok.Obj = obj
	return tok, nil
}

// next reads one object, recursing into composite literals.
// The caller must have skipped leading white space.
func (s *Scanner) next(depth int) (cstream.Object, error) {
	if depth > MaxNesting {
		return nil, &cstream.LexError{Pos: s.pos, Msg: "literal nesting too deep"}
	}

	start := s.pos
	c := s.data[s.pos]
	switch {
	case c == '/':
		s.pos++
		return s.readName()

	case c == '(':
		s.pos++
		return s.readString(start)

	case c == '[':
		s.pos++
		return s.readArray(depth+1, start)

	case c == '{':
		s.pos++
		return s.readProcedure(depth+1, start)

	case c == '<':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
			s.pos += 2
			return s.readDict(depth+1, start)
		}
		s.pos++
		return s.readHexString(start)

	case c == ')':
		return nil, &cstream.LexError{Pos: start, Msg: "unmatched ')'"}
	case c == ']':
		return nil, &cstream.LexError{Pos: start, Msg: "unmatched ']'"}
	case c == '}':
		return nil, &cstream.LexError{Pos: start, Msg: "unmatched '}'"}
	case c == '>':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '>' {
			return nil, &cstream.LexError{Pos: start, Msg: "unmatched '>>'"}
		}
		return nil, &cstream.LexError{Pos: start, Msg: "'>' outside hex string"}

	case cstream.IsRegular(c):
		return s.readKeyword(start)

	default:
		return nil, &cstream.LexError{
			Pos: start,
			Msg: "unexpected byte " + strconv.Itoa(int(c)),
		}
	}
}

// readKeyword reads a run of regular characters and classifies it as a
// number, a boolean/null literal, or a bare keyword.
func (s *Scanner) readKeyword(start int) (cstream.Object, error) {
	for s.pos < len(s.data) && cstream.IsRegular(s.data[s.pos]) {
		s.pos++
	}
	kw := s.data[start:s.pos]

	c := kw[0]
	if c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.' {
		return s.parseNumber(kw, start)
	}

	switch string(kw) {
	case "true":
		return cstream.Bool(true), nil
	case "false":
		return cstream.Bool(false), nil
	case "null":
		return nil, nil
	}
	return cstream.Operator(kw), nil
}

// parseNumber interprets kw as a number.  Operators never start with a
// digit, sign, or period, so a malformed number here is a lexical
// error, not an unknown operator.
func (s *Scanner) parseNumber(kw []byte, start int) (cstream.Object, error) {
	if x, err := strconv.ParseInt(string(kw), 10, 64); err == nil {
		return cstream.Integer(x), nil
	}

	// PDF proper has no exponential notation, but some generators emit
	// it anyway; accept it on input.  The serializer never writes it.
	digitsSeen := false
	i := 0
	if i < len(kw) && (kw[i] == '+' || kw[i] == '-') {
		i++
	}
	for i < len(kw) && kw[i] >= '0' && kw[i] <= '9' {
		i++
		digitsSeen = true
	}
	if i < len(kw) && kw[i] == '.' {
		i++
		for i < len(kw) && kw[i] >= '0' && kw[i] <= '9' {
			i++
			digitsSeen = true
		}
	}
	if digitsSeen && i < len(kw) && (kw[i] == 'e' || kw[i] == 'E') {
		i++
		if i < len(kw) && (kw[i] == '+' || kw[i] == '-') {
			i++
		}
		expDigits := false
		for i < len(kw) && kw[i] >= '0' && kw[i] <= '9' {
			i++
			expDigits = true
		}
		if !expDigits {
			digitsSeen = false
		}
	}
	if !digitsSeen || i != len(kw) {
		return nil, &cstream.LexError{
			Pos: start,
			Msg: "malformed number " + strconv.Quote(string(kw)),
		}
	}

	x, err := strconv.ParseFloat(string(kw), 64)
	if err != nil {
		return nil, &cstream.LexError{
			Pos: start,
			Msg: "malformed number " + strconv.Quote(string(kw)),
		}
	}
	return cstream.Real(x), nil
}

// readName reads a name (not including the leading slash), decoding
// #xx hex escapes.
func (s *Scanner) readName() (cstream.Object, error) {
	start := s.pos
	var name []byte
	for s.pos < len(s.data) && cstream.IsRegular(s.data[s.pos]) {
		c := s.data[s.pos]
		if c == '#' {
			if s.pos+2 >= len(s.data) {
				return nil, &cstream.LexError{Pos: s.pos, Msg: "truncated # escape in name"}
			}
			hi := hexDigit(s.data[s.pos+1])
			lo := hexDigit(s.data[s.pos+2])
			if hi == 255 || lo == 255 {
				return nil, &cstream.LexError{Pos: s.pos, Msg: "invalid # escape in name"}
			}
			name = append(name, hi<<4|lo)
			s.pos += 3
			continue
		}
		name = append(name, c)
		s.pos++
	}
	if s.pos == start {
		return nil, &cstream.LexError{Pos: start - 1, Msg: "'/' not followed by a name"}
	}
	return cstream.Name(name), nil
}

// readString reads a literal string (not including the leading
// parenthesis).  CR and CRLF line ends are normalized to LF.
func (s *Scanner) readString(start int) (cstream.Object, error) {
	var res []byte
	level := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			level++
			res = append(res, c)
		case ')':
			level--
			if level == 0 {
				return cstream.String(res), nil
			}
			res = append(res, c)
		case '\r':
			if s.pos < len(s.data) && s.data[s.pos] == '\n' {
				s.pos++
			}
			res = append(res, '\n')
		case '\\':
			if s.pos >= len(s.data) {
				return nil, &cstream.LexError{Pos: start, Msg: "unterminated string"}
			}
			c = s.data[s.pos]
			s.pos++
			switch c {
			case 'n':
				res = append(res, '\n')
			case 'r':
				res = append(res, '\r')
			case 't':
				res = append(res, '\t')
			case 'b':
				res = append(res, '\b')
			case 'f':
				res = append(res, '\f')
			case '\n':
				// line continuation
			case '\r':
				// line continuation, CR or CRLF
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '0', '1', '2', '3', '4', '5', '6', '7':
				oct := c - '0'
				for i := 0; i < 2 && s.pos < len(s.data); i++ {
					c = s.data[s.pos]
					if c < '0' || c > '7' {
						break
					}
					oct = oct*8 + (c - '0')
					s.pos++
				}
				res = append(res, oct)
			default:
				// The backslash is dropped in front of any other character.
				res = append(res, c)
			}
		default:
			res = append(res, c)
		}
	}
	return nil, &cstream.LexError{Pos: start, Msg: "unterminated string"}
}

// readHexString reads a hex string (not including the leading '<').
func (s *Scanner) readHexString(start int) (cstream.Object, error) {
	var res []byte
	first := true
	var hi byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch {
		case c == '>':
			if !first {
				// an odd final digit behaves as if followed by 0
				res = append(res, hi)
			}
			return cstream.String(res), nil
		case cstream.IsSpace(c):
			continue
		default:
			d := hexDigit(c)
			if d == 255 {
				return nil, &cstream.LexError{
					Pos: s.pos - 1,
					Msg: "invalid character in hex string",
				}
			}
			if first {
				hi = d << 4
				first = false
			} else {
				res = append(res, hi|d)
				first = true
			}
		}
	}
	return nil, &cstream.LexError{Pos: start, Msg: "unterminated hex string"}
}

// readArray reads an array literal (after the leading '[').
func (s *Scanner) readArray(depth, start int) (cstream.Object, error) {
	arr := cstream.Array{}
	for {
		s.skipWhiteSpace()
		if s.pos >= len(s.data) {
			return nil, &cstream.LexError{Pos: start, Msg: "unterminated array"}
		}
		if s.data[s.pos] == ']' {
			s.pos++
			return arr, nil
		}
		obj, err := s.next(depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

// readProcedure reads a brace-delimited array (after the leading '{').
func (s *Scanner) readProcedure(depth, start int) (cstream.Object, error) {
	proc := cstream.Procedure{}
	for {
		s.skipWhiteSpace()
		if s.pos >= len(s.data) {
			return nil, &cstream.LexError{Pos: start, Msg: "unterminated procedure"}
		}
		if s.data[s.pos] == '}' {
			s.pos++
			return proc, nil
		}
		obj, err := s.next(depth)
		if err != nil {
			return nil, err
		}
		proc = append(proc, obj)
	}
}

// readDict reads a dictionary literal (after the leading "<<").
// Repeated keys are allowed; the last value wins.  A null value is
// equivalent to an absent entry.
func (s *Scanner) readDict(depth, start int) (cstream.Object, error) {
	dict := cstream.Dict{}
	for {
		s.skipWhiteSpace()
		if s.pos >= len(s.data) {
			return nil, &cstream.LexError{Pos: start, Msg: "unterminated dictionary"}
		}
		if s.data[s.pos] == '>' {
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '>' {
				s.pos += 2
				return dict, nil
			}
			return nil, &cstream.LexError{Pos: s.pos, Msg: "'>' outside hex string"}
		}

		keyPos := s.pos
		keyObj, err := s.next(depth)
		if err != nil {
			return nil, err
		}
		key, ok := keyObj.(cstream.Name)
		if !ok {
			return nil, &cstream.LexError{Pos: keyPos, Msg: "dictionary key is not a name"}
		}

		s.skipWhiteSpace()
		if s.pos >= len(s.data) {
			return nil, &cstream.LexError{Pos: start, Msg: "unterminated dictionary"}
		}
		if s.data[s.pos] == '>' {
			return nil, &cstream.LexError{Pos: keyPos, Msg: "dictionary key without value"}
		}
		val, err := s.next(depth)
		if err != nil {
			return nil, err
		}
		if val == nil {
			delete(dict, key)
		} else {
			dict[key] = val
		}
	}
}

// skipWhiteSpace skips white space and comments.
func (s *Scanner) skipWhiteSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if cstream.IsSpace(c) {
			s.pos++
		} else if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\r' && s.data[s.pos] != '\n' {
				s.pos++
			}
		} else {
			break
		}
	}
}

func hexDigit(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 255
	}
}
