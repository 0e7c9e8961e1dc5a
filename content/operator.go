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

import "seehuhn.de/go/cstream"

// An Instruction is one complete content stream instruction: an
// operator together with its operands.
//
// Instructions with an operator this package does not know are kept
// verbatim: Raw holds their exact source bytes, and the serializer
// re-emits them unchanged.  Raw is also set for inline images, whose
// binary data must not be re-encoded.
type Instruction struct {
	Name OpName
	Args []cstream.Object
	Pos  int    // byte offset of the instruction in the source
	Raw  []byte // exact source bytes; nil for recognized operators
}

// Opaque reports whether the instruction's operator is unknown to this
// package.  Opaque instructions must be treated conservatively: never
// deleted, never reordered across, never assumed side-effect free.
func (inst Instruction) Opaque() bool {
	_, known := operators[inst.Name]
	return !known
}

// Info returns the operator metadata for the instruction, if the
// operator is known.
func (inst Instruction) Info() (OpInfo, bool) {
	info, ok := operators[inst.Name]
	if !ok {
		return OpInfo{}, false
	}
	return info.OpInfo, true
}

// Attr is a bit set of graphics state attributes, used to describe
// which parts of the state an operator reads or replaces.
type Attr uint32

// The tracked graphics state attributes.
const (
	AttrCTM Attr = 1 << iota
	AttrStrokeSpace
	AttrStrokeColor
	AttrFillSpace
	AttrFillColor
	AttrLineWidth
	AttrLineCap
	AttrLineJoin
	AttrMiterLimit
	AttrDash
	AttrRenderingIntent
	AttrFlatness
	AttrCharSpacing
	AttrWordSpacing
	AttrHorizScaling
	AttrLeading
	AttrFont
	AttrRenderMode
	AttrRise
	AttrTextMatrix

	attrFirstUnused
	AttrAll = attrFirstUnused - 1
)

// OpInfo describes the data flow of an operator through the graphics
// state, for use by the rewrite passes.
type OpInfo struct {
	// Paints is set for operators which mark the page: path painting,
	// text showing, shading, and image/XObject painting.
	Paints bool

	// Reads lists the state attributes whose current value the
	// operator's effect depends on.  Operators whose effect cannot be
	// analyzed (q/Q, gs, Do, marked content, ...) read all attributes.
	Reads Attr

	// Writes lists the state attributes the operator replaces with a
	// value independent of their previous one.
	Writes Attr
}

type opInfo struct {
	OpInfo

	// pattern gives the expected operands, one byte per operand:
	//
	//	n  number (integer or real)
	//	i  integer
	//	s  string
	//	m  name
	//	a  array
	//	p  property: name or dictionary
	//
	// Operators with context-dependent operand counts (SC, SCN, sc,
	// scn, TJ, d) are additionally validated in checkArgs.
	pattern string
}

const (
	attrStroke = AttrStrokeSpace | AttrStrokeColor
	attrFill   = AttrFillSpace | AttrFillColor
	attrLine   = AttrLineWidth | AttrLineCap | AttrLineJoin | AttrMiterLimit | AttrDash
	attrText   = AttrCharSpacing | AttrWordSpacing | AttrHorizScaling |
		AttrLeading | AttrFont | AttrRenderMode | AttrRise

	readsStroke = AttrCTM | attrStroke | attrLine | AttrRenderingIntent | AttrFlatness
	readsFill   = AttrCTM | attrFill | AttrRenderingIntent | AttrFlatness
)

var operators = map[OpName]*opInfo{
	// General Graphics State.  q and Q capture, respectively replace,
	// the whole state; both act as barriers for the rewrite passes.
	OpPushGraphicsState:    {OpInfo{Reads: AttrAll}, ""},
	OpPopGraphicsState:     {OpInfo{Reads: AttrAll}, ""},
	OpTransform:            {OpInfo{Reads: AttrCTM, Writes: AttrCTM}, "nnnnnn"},
	OpSetLineWidth:         {OpInfo{Writes: AttrLineWidth}, "n"},
	OpSetLineCap:           {OpInfo{Writes: AttrLineCap}, "i"},
	OpSetLineJoin:          {OpInfo{Writes: AttrLineJoin}, "i"},
	OpSetMiterLimit:        {OpInfo{Writes: AttrMiterLimit}, "n"},
	OpSetLineDash:          {OpInfo{Writes: AttrDash}, "an"},
	OpSetRenderingIntent:   {OpInfo{Writes: AttrRenderingIntent}, "m"},
	OpSetFlatnessTolerance: {OpInfo{Writes: AttrFlatness}, "n"},
	// gs may replace any subset of the state; treated as opaque to the
	// data flow analysis.
	OpSetExtGState: {OpInfo{Reads: AttrAll}, "m"},

	// Path Construction
	OpMoveTo:    {OpInfo{}, "nn"},
	OpLineTo:    {OpInfo{}, "nn"},
	OpCurveTo:   {OpInfo{}, "nnnnnn"},
	OpCurveToV:  {OpInfo{}, "nnnn"},
	OpCurveToY:  {OpInfo{}, "nnnn"},
	OpClosePath: {OpInfo{}, ""},
	OpRectangle: {OpInfo{}, "nnnn"},

	// Path Painting
	OpStroke:                    {OpInfo{Paints: true, Reads: readsStroke}, ""},
	OpCloseAndStroke:            {OpInfo{Paints: true, Reads: readsStroke}, ""},
	OpFill:                      {OpInfo{Paints: true, Reads: readsFill}, ""},
	OpFillCompat:                {OpInfo{Paints: true, Reads: readsFill}, ""},
	OpFillEvenOdd:               {OpInfo{Paints: true, Reads: readsFill}, ""},
	OpFillAndStroke:             {OpInfo{Paints: true, Reads: readsStroke | readsFill}, ""},
	OpFillAndStrokeEvenOdd:      {OpInfo{Paints: true, Reads: readsStroke | readsFill}, ""},
	OpCloseFillAndStroke:        {OpInfo{Paints: true, Reads: readsStroke | readsFill}, ""},
	OpCloseFillAndStrokeEvenOdd: {OpInfo{Paints: true, Reads: readsStroke | readsFill}, ""},
	OpEndPath:                   {OpInfo{}, ""},

	// Clipping Paths
	OpClipNonZero: {OpInfo{Reads: AttrCTM | AttrFlatness}, ""},
	OpClipEvenOdd: {OpInfo{Reads: AttrCTM | AttrFlatness}, ""},

	// Text Objects
	OpTextBegin: {OpInfo{Writes: AttrTextMatrix}, ""},
	OpTextEnd:   {OpInfo{}, ""},

	// Text State
	OpTextSetCharacterSpacing:  {OpInfo{Writes: AttrCharSpacing}, "n"},
	OpTextSetWordSpacing:       {OpInfo{Writes: AttrWordSpacing}, "n"},
	OpTextSetHorizontalScaling: {OpInfo{Writes: AttrHorizScaling}, "n"},
	OpTextSetLeading:           {OpInfo{Writes: AttrLeading}, "n"},
	OpTextSetFont:              {OpInfo{Writes: AttrFont}, "mn"},
	OpTextSetRenderingMode:     {OpInfo{Writes: AttrRenderMode}, "i"},
	OpTextSetRise:              {OpInfo{Writes: AttrRise}, "n"},

	// Text Positioning
	OpTextMoveOffset: {OpInfo{Reads: AttrTextMatrix, Writes: AttrTextMatrix}, "nn"},
	OpTextMoveOffsetSetLeading: {
		OpInfo{Reads: AttrTextMatrix, Writes: AttrTextMatrix | AttrLeading}, "nn"},
	OpTextSetMatrix: {OpInfo{Writes: AttrTextMatrix}, "nnnnnn"},
	OpTextNextLine: {
		OpInfo{Reads: AttrTextMatrix | AttrLeading, Writes: AttrTextMatrix}, ""},

	// Text Showing.  Glyph painting depends on nearly the whole state
	// (render mode can stroke, fill, or clip); read everything.
	OpTextShow:             {OpInfo{Paints: true, Reads: AttrAll, Writes: AttrTextMatrix}, "s"},
	OpTextShowArray:        {OpInfo{Paints: true, Reads: AttrAll, Writes: AttrTextMatrix}, "a"},
	OpTextShowMoveNextLine: {OpInfo{Paints: true, Reads: AttrAll, Writes: AttrTextMatrix}, "s"},
	OpTextShowMoveNextLineSetSpacing: {
		OpInfo{Paints: true, Reads: AttrAll,
			Writes: AttrTextMatrix | AttrWordSpacing | AttrCharSpacing}, "nns"},

	// Type 3 Fonts
	OpType3SetWidthOnly:           {OpInfo{Reads: AttrAll}, "nn"},
	OpType3SetWidthAndBoundingBox: {OpInfo{Reads: AttrAll}, "nnnnnn"},

	// Colour.  Setting a color space resets the color to its initial
	// value for that space; the generic SC/SCN forms read the space
	// selected earlier.
	OpSetStrokeColorSpace: {OpInfo{Writes: attrStroke}, "m"},
	OpSetFillColorSpace:   {OpInfo{Writes: attrFill}, "m"},
	OpSetStrokeColor:      {OpInfo{Reads: AttrStrokeSpace, Writes: AttrStrokeColor}, ""},
	OpSetStrokeColorN:     {OpInfo{Reads: AttrStrokeSpace, Writes: AttrStrokeColor}, ""},
	OpSetFillColor:        {OpInfo{Reads: AttrFillSpace, Writes: AttrFillColor}, ""},
	OpSetFillColorN:       {OpInfo{Reads: AttrFillSpace, Writes: AttrFillColor}, ""},
	OpSetStrokeGray:       {OpInfo{Writes: attrStroke}, "n"},
	OpSetFillGray:         {OpInfo{Writes: attrFill}, "n"},
	OpSetStrokeRGB:        {OpInfo{Writes: attrStroke}, "nnn"},
	OpSetFillRGB:          {OpInfo{Writes: attrFill}, "nnn"},
	OpSetStrokeCMYK:       {OpInfo{Writes: attrStroke}, "nnnn"},
	OpSetFillCMYK:         {OpInfo{Writes: attrFill}, "nnnn"},

	// Shading Patterns
	OpShading: {OpInfo{Paints: true, Reads: AttrAll}, "m"},

	// XObjects.  The XObject's content inherits the full state.
	OpXObject: {OpInfo{Paints: true, Reads: AttrAll}, "m"},

	// Marked Content.  Pure metadata, but a reordering and deletion
	// barrier for the rewrite passes.
	OpMarkedContentPoint:               {OpInfo{Reads: AttrAll}, "m"},
	OpMarkedContentPointWithProperties: {OpInfo{Reads: AttrAll}, "mp"},
	OpBeginMarkedContent:               {OpInfo{Reads: AttrAll}, "m"},
	OpBeginMarkedContentWithProperties: {OpInfo{Reads: AttrAll}, "mp"},
	OpEndMarkedContent:                 {OpInfo{Reads: AttrAll}, ""},

	// Compatibility
	OpBeginCompatibility: {OpInfo{Reads: AttrAll}, ""},
	OpEndCompatibility:   {OpInfo{Reads: AttrAll}, ""},

	// Inline Images
	OpInlineImage: {OpInfo{Paints: true, Reads: AttrAll}, ""},
}
