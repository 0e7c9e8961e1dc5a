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

package optimize

import (
	"seehuhn.de/go/cstream"
	"seehuhn.de/go/cstream/content"
	"seehuhn.de/go/cstream/graphics"
)

// degeneratePaths removes complete path objects which paint nothing:
// construction, optional clip operator, and painting operator, where
// every subpath is a bare moveto (optionally closed) or a rectangle
// with zero extent in both directions.
//
// A degenerate path which carries a clip still changes the clipping
// region, so only its painting operator is replaced by n.  Stroking a
// degenerate subpath paints a dot unless the line cap is butt, so
// stroke operators are removed only under butt caps.
type degeneratePaths struct {
	resolve Resolver
}

func (degeneratePaths) Name() string {
	return "remove-degenerate-paths"
}

func (p degeneratePaths) Apply(seq graphics.Sequence) (content.Stream, error) {
	res := make(content.Stream, 0, len(seq))
	for i := 0; i < len(seq); {
		g, ok := findPathObject(seq, i)
		if !ok {
			res = append(res, seq[i].Inst)
			i++
			continue
		}

		switch {
		case !g.degenerate, !p.dropAllowed(seq, g):
			for j := i; j <= g.paint; j++ {
				res = append(res, seq[j].Inst)
			}
		case seq[g.paint].Before.PendingClip:
			// The path is the carrier of a clip change; keep it, but
			// do not paint.
			for j := i; j < g.paint; j++ {
				res = append(res, seq[j].Inst)
			}
			paint := seq[g.paint].Inst
			if paint.Name != content.OpEndPath {
				paint = content.Instruction{Name: content.OpEndPath, Pos: paint.Pos}
			}
			res = append(res, paint)
		default:
			// drop the whole path object
		}
		i = g.paint + 1
	}
	return res, nil
}

// pathObject describes a run seq[start:paint+1] consisting of path
// construction operators, optionally W or W*, and one painting
// operator.
type pathObject struct {
	start, paint int
	degenerate   bool
}

// findPathObject matches a complete path object starting at index i.
func findPathObject(seq graphics.Sequence, i int) (pathObject, bool) {
	name := seq[i].Inst.Name
	if seq[i].Compat > 0 || name != content.OpMoveTo && name != content.OpRectangle {
		return pathObject{}, false
	}

	g := pathObject{start: i, degenerate: true}
construction:
	for ; i < len(seq); i++ {
		if seq[i].Compat > 0 {
			return pathObject{}, false
		}
		inst := seq[i].Inst
		switch inst.Name {
		case content.OpMoveTo:
		case content.OpRectangle:
			if numArg(inst.Args[2]) != 0 || numArg(inst.Args[3]) != 0 {
				g.degenerate = false
			}
		case content.OpLineTo, content.OpCurveTo, content.OpCurveToV, content.OpCurveToY:
			g.degenerate = false
		case content.OpClosePath:
			// closing does not add extent
		case content.OpClipNonZero, content.OpClipEvenOdd:
			// clip must be directly followed by the painting operator
			i++
			break construction
		default:
			break construction
		}
	}
	if i >= len(seq) || seq[i].Compat > 0 || !isPaintOp(seq[i].Inst.Name) {
		return pathObject{}, false
	}
	g.paint = i
	return g, true
}

func isPaintOp(name content.OpName) bool {
	switch name {
	case content.OpStroke, content.OpCloseAndStroke,
		content.OpFill, content.OpFillCompat, content.OpFillEvenOdd,
		content.OpFillAndStroke, content.OpFillAndStrokeEvenOdd,
		content.OpCloseFillAndStroke, content.OpCloseFillAndStrokeEvenOdd,
		content.OpEndPath:
		return true
	}
	return false
}

func isStrokeOp(name content.OpName) bool {
	switch name {
	case content.OpStroke, content.OpCloseAndStroke,
		content.OpFillAndStroke, content.OpFillAndStrokeEvenOdd,
		content.OpCloseFillAndStroke, content.OpCloseFillAndStrokeEvenOdd:
		return true
	}
	return false
}

// dropAllowed reports whether the degenerate path object may be
// removed outright.
func (p degeneratePaths) dropAllowed(seq graphics.Sequence, g pathObject) bool {
	paint := seq[g.paint]
	if isStrokeOp(paint.Inst.Name) && paint.Before.LineCap != graphics.LineCapButt {
		return false
	}

	// Next to an XObject paint we cannot tell, without resource
	// information, whether the XObject interacts with the path object
	// being removed.  Form XObjects can contain anything; images are
	// self-contained.
	if next := g.paint + 1; next < len(seq) && seq[next].Inst.Name == content.OpXObject {
		if p.resolve == nil {
			return false
		}
		name, ok := seq[next].Inst.Args[0].(cstream.Name)
		if !ok {
			return false
		}
		info, known := p.resolve(name)
		if !known || !info.IsImage {
			return false
		}
	}
	return true
}

func numArg(obj cstream.Object) float64 {
	switch x := obj.(type) {
	case cstream.Integer:
		return float64(x)
	case cstream.Real:
		return float64(x)
	}
	return 0
}
