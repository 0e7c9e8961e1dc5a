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

import "strconv"

// Errors fall into three groups:
//
//   - lexical errors ([LexError]): malformed tokens in the input,
//   - structural errors ([ArityError], [TypeError],
//     [UnbalancedStateError]): well-formed tokens which do not form a
//     valid instruction sequence,
//   - internal errors ([PipelineInvariantError]): a bug in a rewrite
//     pass, not a problem with the input.
//
// Lexical and structural errors are never recovered from: guessing
// intent on malformed input risks silently changing rendered output.
// The caller's safe options are to emit the original bytes unchanged,
// or to fail the whole document.

// LexError indicates that the input contains a malformed token.
type LexError struct {
	Pos int // byte offset into the content stream
	Msg string
}

func (err *LexError) Error() string {
	return "content stream: " + err.Msg + atByte(err.Pos)
}

// ArityError indicates that an operator was given the wrong number of
// operands.
type ArityError struct {
	Pos  int      // byte offset of the instruction
	Op   Operator // the offending operator
	Got  int
	Want string // human-readable description of the expected count
}

func (err *ArityError) Error() string {
	return "content stream: operator " + string(err.Op) + " has " +
		strconv.Itoa(err.Got) + " operand(s), expected " + err.Want +
		atByte(err.Pos)
}

// TypeError indicates that an operand has the wrong type for its
// operator.
type TypeError struct {
	Pos int      // byte offset of the instruction
	Op  Operator // the offending operator
	Msg string
}

func (err *TypeError) Error() string {
	return "content stream: operator " + string(err.Op) + ": " + err.Msg +
		atByte(err.Pos)
}

// UnbalancedStateError indicates that the q/Q nesting of the content
// stream is unbalanced.  A negative Depth means that more states were
// restored than saved; a positive Depth gives the number of saves
// still open at the end of the stream.
type UnbalancedStateError struct {
	Pos   int
	Depth int
}

func (err *UnbalancedStateError) Error() string {
	if err.Depth < 0 {
		return "content stream: graphics state restored below initial state" +
			atByte(err.Pos)
	}
	return "content stream: " + strconv.Itoa(err.Depth) +
		" graphics state save(s) left open at end of stream"
}

// PipelineInvariantError indicates that a rewrite pass produced an
// inconsistent instruction sequence.  This is a defect in the pass, not
// a problem with the input, and is always fatal to the current run.
type PipelineInvariantError struct {
	Pass string
	Err  error
}

func (err *PipelineInvariantError) Error() string {
	return "optimizer pass " + err.Pass + " violated an invariant: " +
		err.Err.Error()
}

func (err *PipelineInvariantError) Unwrap() error {
	return err.Err
}

func atByte(pos int) string {
	if pos <= 0 {
		return ""
	}
	return " (at byte " + strconv.Itoa(pos) + ")"
}
