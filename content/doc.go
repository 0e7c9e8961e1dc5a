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

// Package content assembles tokenized content streams into instructions.
//
// [Parse] turns the bytes of a content stream into a [Stream] of
// [Instruction] values, checking operand count and types for every
// operator it knows.  Instructions with unknown operators keep their
// exact source bytes, so that writing the Stream back out reproduces
// them verbatim.  An inline image (BI ... ID ... EI) is assembled into
// a single instruction holding the image dictionary and data.
package content
