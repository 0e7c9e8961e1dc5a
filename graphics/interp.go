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

package graphics

import (
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/cstream"
	"seehuhn.de/go/cstream/content"
)

// Annotated is an instruction together with the graphics state in
// effect immediately before it executes.
type Annotated struct {
	Inst content.Instruction

	// Before is the state before the instruction executes.  The state
	// is shared between instructions and must not be modified.
	Before *State

	// Marked is the marked-content nesting depth the instruction
	// executes at.  BMC/BDC are annotated with the depth inside the
	// new section, EMC with the depth of the section it closes.
	Marked int

	// Compat is the BX/EX nesting depth, with the same convention as
	// Marked.
	Compat int
}

// Sequence is a content stream annotated with graphics state
// information.
type Sequence []Annotated

// Instructions strips the annotations from the sequence.
func (seq Sequence) Instructions() content.Stream {
	res := make(content.Stream, len(seq))
	for i, a := range seq {
		res[i] = a.Inst
	}
	return res
}

// Interpret replays the stream against the graphics state model and
// returns the annotated sequence.
//
// Unbalanced q/Q pairs are reported as [cstream.UnbalancedStateError].
// Color operators whose operand count contradicts the current color
// space are reported as [cstream.ArityError].
func Interpret(stream content.Stream) (Sequence, error) {
	interp := &interpreter{
		state: NewState(),
	}
	res := make(Sequence, 0, len(stream))
	for _, inst := range stream {
		ann, err := interp.step(inst)
		if err != nil {
			return nil, err
		}
		res = append(res, ann)
	}
	if len(interp.stack) > 0 {
		return nil, &cstream.UnbalancedStateError{
			Pos:   interp.lastPos,
			Depth: len(interp.stack),
		}
	}
	return res, nil
}

type interpreter struct {
	state   *State
	stack   []*State
	marked  int
	compat  int
	lastPos int

	// owned is set once the current state is an exclusive copy which
	// can be modified in place.
	owned bool
}

// mutable returns the current state, cloning it first if it is still
// shared with an already emitted annotation.
func (interp *interpreter) mutable() *State {
	if !interp.owned {
		interp.state = interp.state.Clone()
		interp.owned = true
	}
	return interp.state
}

func (interp *interpreter) step(inst content.Instruction) (Annotated, error) {
	interp.lastPos = inst.Pos
	ann := Annotated{
		Inst:   inst,
		Before: interp.state,
		Marked: interp.marked,
		Compat: interp.compat,
	}
	interp.owned = false

	if inst.Opaque() {
		return ann, nil
	}

	var err error
	switch inst.Name {
	case content.OpPushGraphicsState:
		interp.stack = append(interp.stack, interp.state)
	case content.OpPopGraphicsState:
		if len(interp.stack) == 0 {
			return ann, &cstream.UnbalancedStateError{Pos: inst.Pos, Depth: -1}
		}
		k := len(interp.stack) - 1
		interp.state = interp.stack[k]
		interp.stack = interp.stack[:k]

	case content.OpTransform:
		m, ok := getMatrix(inst.Args)
		if ok {
			st := interp.mutable()
			st.CTM = m.Mul(st.CTM)
		}

	case content.OpSetLineWidth:
		interp.mutable().LineWidth = num(inst.Args[0])
	case content.OpSetLineCap:
		interp.mutable().LineCap = LineCapStyle(inst.Args[0].(cstream.Integer))
	case content.OpSetLineJoin:
		interp.mutable().LineJoin = LineJoinStyle(inst.Args[0].(cstream.Integer))
	case content.OpSetMiterLimit:
		interp.mutable().MiterLimit = num(inst.Args[0])
	case content.OpSetLineDash:
		st := interp.mutable()
		arr := inst.Args[0].(cstream.Array)
		st.DashPattern = make([]float64, len(arr))
		for i, obj := range arr {
			st.DashPattern[i] = num(obj)
		}
		st.DashPhase = num(inst.Args[1])
	case content.OpSetRenderingIntent:
		interp.mutable().RenderingIntent = inst.Args[0].(cstream.Name)
	case content.OpSetFlatnessTolerance:
		interp.mutable().FlatnessTolerance = num(inst.Args[0])

	case content.OpSetStrokeColorSpace:
		st := interp.mutable()
		st.Stroke = defaultColor(inst.Args[0].(cstream.Name))
	case content.OpSetFillColorSpace:
		st := interp.mutable()
		st.Fill = defaultColor(inst.Args[0].(cstream.Name))
	case content.OpSetStrokeColor:
		err = interp.setColor(inst, true, false)
	case content.OpSetFillColor:
		err = interp.setColor(inst, false, false)
	case content.OpSetStrokeColorN:
		err = interp.setColor(inst, true, true)
	case content.OpSetFillColorN:
		err = interp.setColor(inst, false, true)
	case content.OpSetStrokeGray:
		interp.mutable().Stroke = Color{Space: DeviceGray, Values: argValues(inst.Args)}
	case content.OpSetFillGray:
		interp.mutable().Fill = Color{Space: DeviceGray, Values: argValues(inst.Args)}
	case content.OpSetStrokeRGB:
		interp.mutable().Stroke = Color{Space: DeviceRGB, Values: argValues(inst.Args)}
	case content.OpSetFillRGB:
		interp.mutable().Fill = Color{Space: DeviceRGB, Values: argValues(inst.Args)}
	case content.OpSetStrokeCMYK:
		interp.mutable().Stroke = Color{Space: DeviceCMYK, Values: argValues(inst.Args)}
	case content.OpSetFillCMYK:
		interp.mutable().Fill = Color{Space: DeviceCMYK, Values: argValues(inst.Args)}

	case content.OpClipNonZero, content.OpClipEvenOdd:
		interp.mutable().PendingClip = true

	case content.OpStroke, content.OpCloseAndStroke,
		content.OpFill, content.OpFillCompat, content.OpFillEvenOdd,
		content.OpFillAndStroke, content.OpFillAndStrokeEvenOdd,
		content.OpCloseFillAndStroke, content.OpCloseFillAndStrokeEvenOdd,
		content.OpEndPath:
		if interp.state.PendingClip {
			st := interp.mutable()
			st.PendingClip = false
			st.ClipDepth++
		}

	case content.OpTextBegin:
		st := interp.mutable()
		st.Tm = matrix.Identity
		st.Tlm = matrix.Identity
		st.InText = true
	case content.OpTextEnd:
		interp.mutable().InText = false

	case content.OpTextSetCharacterSpacing:
		interp.mutable().Tc = num(inst.Args[0])
	case content.OpTextSetWordSpacing:
		interp.mutable().Tw = num(inst.Args[0])
	case content.OpTextSetHorizontalScaling:
		interp.mutable().Th = num(inst.Args[0]) / 100
	case content.OpTextSetLeading:
		interp.mutable().Tl = num(inst.Args[0])
	case content.OpTextSetFont:
		st := interp.mutable()
		st.Font = inst.Args[0].(cstream.Name)
		st.FontSize = num(inst.Args[1])
	case content.OpTextSetRenderingMode:
		interp.mutable().Tmode = int(inst.Args[0].(cstream.Integer))
	case content.OpTextSetRise:
		interp.mutable().Trise = num(inst.Args[0])

	case content.OpTextMoveOffset:
		interp.textMove(num(inst.Args[0]), num(inst.Args[1]))
	case content.OpTextMoveOffsetSetLeading:
		st := interp.mutable()
		st.Tl = -num(inst.Args[1])
		interp.textMove(num(inst.Args[0]), num(inst.Args[1]))
	case content.OpTextSetMatrix:
		m, ok := getMatrix(inst.Args)
		if ok {
			st := interp.mutable()
			st.Tm = m
			st.Tlm = m
		}
	case content.OpTextNextLine:
		interp.textMove(0, -interp.state.Tl)
	case content.OpTextShowMoveNextLine:
		interp.textMove(0, -interp.state.Tl)
	case content.OpTextShowMoveNextLineSetSpacing:
		st := interp.mutable()
		st.Tw = num(inst.Args[0])
		st.Tc = num(inst.Args[1])
		interp.textMove(0, -st.Tl)

	case content.OpBeginMarkedContent, content.OpBeginMarkedContentWithProperties:
		interp.marked++
		ann.Marked = interp.marked
	case content.OpEndMarkedContent:
		if interp.marked > 0 {
			interp.marked--
		}
	case content.OpBeginCompatibility:
		interp.compat++
		ann.Compat = interp.compat
	case content.OpEndCompatibility:
		if interp.compat > 0 {
			interp.compat--
		}
	}
	return ann, err
}

func (interp *interpreter) textMove(tx, ty float64) {
	st := interp.mutable()
	st.Tlm = matrix.Translate(tx, ty).Mul(st.Tlm)
	st.Tm = st.Tlm
}

// setColor implements SC, sc, SCN and scn.  The operand count is
// checked against the current color space where the space is a device
// space; for spaces selected by resource name the operands are taken
// as given.
func (interp *interpreter) setColor(inst content.Instruction, stroke, extended bool) error {
	args := inst.Args
	var pattern cstream.Name
	if extended {
		if name, ok := args[len(args)-1].(cstream.Name); ok {
			pattern = name
			args = args[:len(args)-1]
		}
	}

	cur := interp.state.Fill
	if stroke {
		cur = interp.state.Stroke
	}
	if n := cur.components(); n >= 0 && len(args) != n {
		return &cstream.ArityError{
			Pos:  inst.Pos,
			Op:   cstream.Operator(inst.Name),
			Got:  len(inst.Args),
			Want: colorWant(cur.Space, extended),
		}
	}
	col := Color{Space: cur.Space, Values: argValues(args), Pattern: pattern}
	st := interp.mutable()
	if stroke {
		st.Stroke = col
	} else {
		st.Fill = col
	}
	return nil
}

func colorWant(space cstream.Name, extended bool) string {
	var n string
	switch space {
	case DeviceGray:
		n = "1"
	case DeviceRGB:
		n = "3"
	case DeviceCMYK:
		n = "4"
	}
	if extended {
		return n + " (plus optional pattern name)"
	}
	return n
}

// defaultColor returns the initial color for a newly selected color
// space, as specified in section 8.6.8 of PDF 32000-1:2008.
func defaultColor(space cstream.Name) Color {
	switch space {
	case DeviceGray:
		return Color{Space: DeviceGray, Values: []float64{0}}
	case DeviceRGB:
		return Color{Space: DeviceRGB, Values: []float64{0, 0, 0}}
	case DeviceCMYK:
		return Color{Space: DeviceCMYK, Values: []float64{0, 0, 0, 1}}
	default:
		return Color{Space: space}
	}
}

func num(obj cstream.Object) float64 {
	switch x := obj.(type) {
	case cstream.Integer:
		return float64(x)
	case cstream.Real:
		return float64(x)
	}
	return 0
}

func argValues(args []cstream.Object) []float64 {
	res := make([]float64, len(args))
	for i, obj := range args {
		res[i] = num(obj)
	}
	return res
}

func getMatrix(args []cstream.Object) (matrix.Matrix, bool) {
	if len(args) != 6 {
		return matrix.Matrix{}, false
	}
	var m matrix.Matrix
	for i, obj := range args {
		m[i] = num(obj)
	}
	return m, true
}
