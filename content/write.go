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

package content

import (
	"bytes"
	"io"

	"seehuhn.de/go/cstream"
)

// Write writes the content stream to w: for each instruction the
// operands in order, then the operator keyword, with a single space
// between tokens only where required to keep them apart.
//
// Opaque instructions and inline images are re-emitted from their
// preserved source bytes, byte for byte.
func (s Stream) Write(w io.Writer) error {
	tw := cstream.NewWriter(w)
	for _, inst := range s {
		if inst.Raw != nil {
			if _, err := tw.Write(inst.Raw); err != nil {
				return err
			}
			continue
		}
		for _, arg := range inst.Args {
			if err := cstream.Write(tw, arg); err != nil {
				return err
			}
		}
		if err := cstream.Operator(inst.Name).PDF(tw); err != nil {
			return err
		}
	}
	return nil
}

// AppendTo appends the serialized content stream to buf and returns
// the extended slice.
func (s Stream) AppendTo(buf []byte) ([]byte, error) {
	b := bytes.NewBuffer(buf)
	if err := s.Write(b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
