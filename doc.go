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

// Package cstream provides the shared object model and error taxonomy
// for parsing and rewriting PDF content streams.
//
// The input to this module is a single decoded content stream body
// (filters already removed); the output is an equivalent, usually
// smaller, content stream body.  Document structure, cross-reference
// tables, resource dictionaries and stream filters are outside the
// scope of this module and must be handled by the caller.
//
// The subpackages build on each other in the order of the processing
// pipeline:
//
//   - [seehuhn.de/go/cstream/scanner] breaks the raw bytes into tokens,
//   - [seehuhn.de/go/cstream/content] groups tokens into instructions
//     and writes instructions back out,
//   - [seehuhn.de/go/cstream/graphics] replays instructions against a
//     graphics state stack,
//   - [seehuhn.de/go/cstream/optimize] rewrites the replayed sequence
//     into an equivalent but cheaper one.
package cstream
