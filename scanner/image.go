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

package scanner

import "seehuhn.de/go/cstream"

// ReadImageData reads the binary data of an inline image, from just
// after the ID keyword up to and including the EI keyword, and returns
// the data bytes.
//
// If length is positive (the /L key of the image dictionary), exactly
// that many bytes are consumed.  Otherwise the data ends at the first
// "EI" keyword which follows a CR or LF and is itself followed by
// white space, a delimiter, or the end of the stream.  If ascii is
// true (an ASCII filter is in use), extra leading white space is
// allowed between ID and the data.
func (s *Scanner) ReadImageData(length int, ascii bool) ([]byte, error) {
	start := s.pos

	// "The ID operator shall be followed by a single white-space
	// character."
	if s.pos < len(s.data) && cstream.IsSpace(s.data[s.pos]) {
		s.pos++
	}
	if ascii {
		s.skipWhiteSpace()
	}

	if length > 0 {
		if s.pos+length > len(s.data) {
			return nil, &cstream.LexError{Pos: start, Msg: "truncated inline image data"}
		}
		data := s.data[s.pos : s.pos+length]
		s.pos += length
		s.skipWhiteSpace()
		if !s.skipEI() {
			return nil, &cstream.LexError{Pos: s.pos, Msg: "inline image data not followed by EI"}
		}
		return data, nil
	}

	dataStart := s.pos
	// EI directly after the white space character which follows ID
	// denotes empty image data.
	if s.pos > start && s.skipEI() {
		return s.data[dataStart:dataStart], nil
	}
	for i := s.pos; i < len(s.data); i++ {
		if s.data[i] != '\r' && s.data[i] != '\n' {
			continue
		}
		s.pos = i + 1
		if s.skipEI() {
			return s.data[dataStart:i], nil
		}
	}
	return nil, &cstream.LexError{Pos: start, Msg: "unterminated inline image data"}
}

// skipEI consumes an EI keyword at the current position, if present.
func (s *Scanner) skipEI() bool {
	if s.pos+2 > len(s.data) || s.data[s.pos] != 'E' || s.data[s.pos+1] != 'I' {
		return false
	}
	if s.pos+2 < len(s.data) && cstream.IsRegular(s.data[s.pos+2]) {
		return false
	}
	s.pos += 2
	return true
}
