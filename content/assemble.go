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
	"io"
	"strconv"

	"golang.org/x/exp/slices"

	"seehuhn.de/go/cstream"
	"seehuhn.de/go/cstream/scanner"
)

// Stream is a parsed content stream: the sequence of instructions in
// source order.
type Stream []Instruction

// Parse reads a decoded content stream body and groups its tokens into
// instructions: zero or more operands followed by one operator keyword.
//
// Operands of known operators are validated against the operator's
// arity and type requirements.  Unknown operators are not an error;
// they yield opaque instructions which preserve their source bytes.
func Parse(data []byte) (Stream, error) {
	s := scanner.New(data)

	var stream Stream
	var args []cstream.Object
	argsPos := -1

	for {
		tok, err := s.Next()
		if err == io.EOF {
			if len(args) > 0 {
				return nil, &cstream.LexError{
					Pos: argsPos,
					Msg: "operand(s) not followed by an operator",
				}
			}
			return stream, nil
		} else if err != nil {
			return nil, err
		}

		op, isOp := tok.Obj.(cstream.Operator)
		if !isOp {
			if argsPos < 0 {
				argsPos = tok.Pos
			}
			args = append(args, tok.Obj)
			continue
		}

		name := OpName(op)
		pos := tok.Pos
		if argsPos >= 0 {
			pos = argsPos
		}

		switch name {
		case opBeginInlineImage:
			if len(args) > 0 {
				return nil, &cstream.ArityError{
					Pos: pos, Op: op, Got: len(args), Want: "0",
				}
			}
			inst, err := readInlineImage(s, data, tok.Pos)
			if err != nil {
				return nil, err
			}
			stream = append(stream, inst)
		case opInlineImageData, opEndInlineImage:
			return nil, &cstream.LexError{Pos: tok.Pos, Msg: "stray " + string(op)}
		default:
			inst := Instruction{
				Name: name,
				Args: slices.Clone(args),
				Pos:  pos,
			}
			if info, known := operators[name]; known {
				if err := checkArgs(info, op, inst.Args, pos); err != nil {
					return nil, err
				}
			} else {
				inst.Raw = slices.Clone(data[pos:s.Pos()])
			}
			stream = append(stream, inst)
		}

		args = args[:0]
		argsPos = -1
	}
}

// checkArgs validates the operands of a known operator.
func checkArgs(info *opInfo, op cstream.Operator, args []cstream.Object, pos int) error {
	switch OpName(op) {
	case OpSetStrokeColor, OpSetFillColor:
		// 1 to 4 components; the exact count depends on the current
		// color space and is checked by the interpreter.
		if len(args) < 1 || len(args) > 4 {
			return &cstream.ArityError{Pos: pos, Op: op, Got: len(args), Want: "1 to 4"}
		}
		return checkNumbers(op, args, pos)

	case OpSetStrokeColorN, OpSetFillColorN:
		// components as for SC, optionally followed by a pattern name
		rest := args
		if n := len(rest); n > 0 {
			if _, ok := rest[n-1].(cstream.Name); ok {
				rest = rest[:n-1]
			}
		}
		if len(args) < 1 {
			return &cstream.ArityError{Pos: pos, Op: op, Got: 0, Want: "at least 1"}
		}
		return checkNumbers(op, rest, pos)

	case OpSetLineDash:
		if len(args) != 2 {
			return &cstream.ArityError{Pos: pos, Op: op, Got: len(args), Want: "2"}
		}
		arr, ok := args[0].(cstream.Array)
		if !ok {
			return &cstream.TypeError{Pos: pos, Op: op,
				Msg: "operand 1 must be an array"}
		}
		if err := checkNumbers(op, arr, pos); err != nil {
			return err
		}
		if !isNumber(args[1]) {
			return &cstream.TypeError{Pos: pos, Op: op,
				Msg: "operand 2 must be a number"}
		}
		return nil

	case OpTextShowArray:
		if len(args) != 1 {
			return &cstream.ArityError{Pos: pos, Op: op, Got: len(args), Want: "1"}
		}
		arr, ok := args[0].(cstream.Array)
		if !ok {
			return &cstream.TypeError{Pos: pos, Op: op,
				Msg: "operand must be an array"}
		}
		for _, el := range arr {
			if _, isStr := el.(cstream.String); !isStr && !isNumber(el) {
				return &cstream.TypeError{Pos: pos, Op: op,
					Msg: "array elements must be strings or numbers"}
			}
		}
		return nil
	}

	if len(args) != len(info.pattern) {
		return &cstream.ArityError{
			Pos: pos, Op: op,
			Got:  len(args),
			Want: strconv.Itoa(len(info.pattern)),
		}
	}
	for i, kind := range []byte(info.pattern) {
		arg := args[i]
		var ok bool
		var want string
		switch kind {
		case 'n':
			ok, want = isNumber(arg), "a number"
		case 'i':
			_, ok = arg.(cstream.Integer)
			want = "an integer"
		case 's':
			_, ok = arg.(cstream.String)
			want = "a string"
		case 'm':
			_, ok = arg.(cstream.Name)
			want = "a name"
		case 'a':
			_, ok = arg.(cstream.Array)
			want = "an array"
		case 'p':
			if _, isName := arg.(cstream.Name); isName {
				ok = true
			} else if _, isDict := arg.(cstream.Dict); isDict {
				ok = true
			}
			want = "a name or dictionary"
		}
		if !ok {
			return &cstream.TypeError{Pos: pos, Op: op,
				Msg: "operand " + strconv.Itoa(i+1) + " must be " + want}
		}
	}
	return nil
}

func checkNumbers(op cstream.Operator, args []cstream.Object, pos int) error {
	for i, arg := range args {
		if !isNumber(arg) {
			return &cstream.TypeError{Pos: pos, Op: op,
				Msg: "operand " + strconv.Itoa(i+1) + " must be a number"}
		}
	}
	return nil
}

func isNumber(obj cstream.Object) bool {
	switch obj.(type) {
	case cstream.Integer, cstream.Real:
		return true
	}
	return false
}

// readInlineImage reads the BI ... ID ... EI sequence starting just
// after the BI keyword and returns it as an OpInlineImage
// pseudo-instruction.  Args[0] is the image dictionary, Args[1] the
// raw image data; Raw preserves the whole sequence byte for byte.
func readInlineImage(s *scanner.Scanner, data []byte, biPos int) (Instruction, error) {
	dict := cstream.Dict{}
	for {
		tok, err := s.Next()
		if err == io.EOF {
			return Instruction{}, &cstream.LexError{Pos: biPos, Msg: "unterminated inline image"}
		} else if err != nil {
			return Instruction{}, err
		}
		if op, ok := tok.Obj.(cstream.Operator); ok {
			if OpName(op) == opInlineImageData {
				break
			}
			return Instruction{}, &cstream.LexError{
				Pos: tok.Pos,
				Msg: "unexpected " + string(op) + " in inline image dictionary",
			}
		}

		key, ok := tok.Obj.(cstream.Name)
		if !ok {
			return Instruction{}, &cstream.LexError{
				Pos: tok.Pos,
				Msg: "inline image dictionary key is not a name",
			}
		}
		valTok, err := s.Next()
		if err == io.EOF {
			return Instruction{}, &cstream.LexError{Pos: biPos, Msg: "unterminated inline image"}
		} else if err != nil {
			return Instruction{}, err
		}
		if _, isOp := valTok.Obj.(cstream.Operator); isOp {
			return Instruction{}, &cstream.LexError{
				Pos: valTok.Pos,
				Msg: "inline image dictionary key without value",
			}
		}
		if valTok.Obj != nil {
			dict[key] = valTok.Obj
		}
	}

	length := 0
	if x, ok := inlineImageInt(dict, "L", "Length"); ok {
		length = x
	}
	img, err := s.ReadImageData(length, hasASCIIFilter(dict))
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{
		Name: OpInlineImage,
		Args: []cstream.Object{dict, cstream.String(img)},
		Pos:  biPos,
		Raw:  slices.Clone(data[biPos:s.Pos()]),
	}, nil
}

func inlineImageInt(dict cstream.Dict, keys ...cstream.Name) (int, bool) {
	for _, key := range keys {
		if x, ok := dict[key].(cstream.Integer); ok {
			return int(x), true
		}
	}
	return 0, false
}

func hasASCIIFilter(dict cstream.Dict) bool {
	var filter cstream.Object
	for _, key := range []cstream.Name{"F", "Filter"} {
		if obj, ok := dict[key]; ok {
			filter = obj
			break
		}
	}

	isASCII := func(name cstream.Name) bool {
		switch name {
		case "AHx", "ASCIIHexDecode", "A85", "ASCII85Decode":
			return true
		}
		return false
	}

	switch f := filter.(type) {
	case cstream.Name:
		return isASCII(f)
	case cstream.Array:
		// only the first filter sees the raw bytes
		if len(f) > 0 {
			if name, ok := f[0].(cstream.Name); ok {
				return isASCII(name)
			}
		}
	}
	return false
}
