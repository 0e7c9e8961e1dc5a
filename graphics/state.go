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

// Package graphics replays a content stream against the PDF graphics
// state model.
//
// The model tracks only what rewrite decisions need: the current
// transformation matrix, colors, line parameters, clipping depth, and
// text state.  It is not sufficient for rasterization.
package graphics

import (
	"golang.org/x/exp/slices"
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/cstream"
)

// Device color space names.
const (
	DeviceGray cstream.Name = "DeviceGray"
	DeviceRGB  cstream.Name = "DeviceRGB"
	DeviceCMYK cstream.Name = "DeviceCMYK"
	PatternCS  cstream.Name = "Pattern"
)

// Color is a color value together with its color space tag.  For
// color spaces selected by resource name, the component semantics are
// unknown and Values is interpreted opaquely.
type Color struct {
	Space   cstream.Name
	Values  []float64
	Pattern cstream.Name // pattern name from SCN/scn, if any
}

// components returns the number of color components for the space, or
// -1 if the space is not a device space.
func (c Color) components() int {
	switch c.Space {
	case DeviceGray:
		return 1
	case DeviceRGB:
		return 3
	case DeviceCMYK:
		return 4
	}
	return -1
}

// LineCapStyle is the style of the end of a stroked line.
// See section 8.4.3.3 of PDF 32000-1:2008.
type LineCapStyle uint8

// Possible values for LineCapStyle.
const (
	LineCapButt   LineCapStyle = 0
	LineCapRound  LineCapStyle = 1
	LineCapSquare LineCapStyle = 2
)

// LineJoinStyle is the style of the corner of a stroked line.
type LineJoinStyle uint8

// Possible values for LineJoinStyle.
const (
	LineJoinMiter LineJoinStyle = 0
	LineJoinRound LineJoinStyle = 1
	LineJoinBevel LineJoinStyle = 2
)

// State is a snapshot of the graphics state.  States recorded in a
// [Sequence] are shared between instructions and must not be modified;
// the interpreter derives new snapshots with [State.Clone].
type State struct {
	// CTM maps user coordinates to device coordinates.
	CTM matrix.Matrix

	Stroke Color
	Fill   Color

	LineWidth   float64
	LineCap     LineCapStyle
	LineJoin    LineJoinStyle
	MiterLimit  float64
	DashPattern []float64
	DashPhase   float64

	RenderingIntent   cstream.Name
	FlatnessTolerance float64

	// ClipDepth counts the clip intersections applied in the current
	// state.  PendingClip is set between a W/W* operator and the path
	// painting operator which resolves it.
	ClipDepth   int
	PendingClip bool

	// Text state.  Tm and Tlm are only meaningful inside BT/ET.
	Font     cstream.Name
	FontSize float64
	Tc       float64 // character spacing
	Tw       float64 // word spacing
	Th       float64 // horizontal scaling (1 = 100%)
	Tl       float64 // leading
	Tmode    int     // text rendering mode
	Trise    float64
	Tm       matrix.Matrix
	Tlm      matrix.Matrix
	InText   bool
}

// NewState returns a graphics state with the PDF default values.
func NewState() *State {
	return &State{
		CTM:    matrix.Identity,
		Stroke: Color{Space: DeviceGray, Values: []float64{0}},
		Fill:   Color{Space: DeviceGray, Values: []float64{0}},

		LineWidth:  1,
		LineCap:    LineCapButt,
		LineJoin:   LineJoinMiter,
		MiterLimit: 10,

		RenderingIntent:   "RelativeColorimetric",
		FlatnessTolerance: 1,

		Th: 1,
	}
}

// Clone returns a copy of the state which can be modified without
// affecting s.
func (s *State) Clone() *State {
	res := *s
	res.DashPattern = slices.Clone(s.DashPattern)
	res.Stroke.Values = slices.Clone(s.Stroke.Values)
	res.Fill.Values = slices.Clone(s.Fill.Values)
	return &res
}
