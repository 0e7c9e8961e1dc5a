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
	"math"

	"seehuhn.de/go/cstream"
	"seehuhn.de/go/cstream/content"
	"seehuhn.de/go/cstream/graphics"
)

// numEps is the tolerance for numeric re-serialization.  Device space
// resolution is typically 1/72000 of an inch or coarser, so values
// closer than this are indistinguishable when rendered.
const numEps = 5e-5

// shrinkNumbers re-renders real operands with the smallest number of
// decimal digits which stays within [numEps] of the original value.
// This changes only the serialized representation, never the
// instruction structure, and therefore runs last.
type shrinkNumbers struct{}

func (shrinkNumbers) Name() string {
	return "shrink-numbers"
}

func (shrinkNumbers) Apply(seq graphics.Sequence) (content.Stream, error) {
	res := make(content.Stream, 0, len(seq))
	for _, ann := range seq {
		inst := ann.Inst
		if inst.Raw == nil && ann.Compat == 0 {
			inst.Args = shrinkArgs(inst.Args)
		}
		res = append(res, inst)
	}
	return res, nil
}

func shrinkArgs(args []cstream.Object) []cstream.Object {
	res, changed := shrinkObjects(args)
	if !changed {
		return args
	}
	return res
}

func shrinkObjects(args []cstream.Object) ([]cstream.Object, bool) {
	changed := false
	res := make([]cstream.Object, len(args))
	for i, obj := range args {
		res[i] = obj
		switch x := obj.(type) {
		case cstream.Real:
			if s := shrinkReal(float64(x)); s != obj {
				res[i] = s
				changed = true
			}
		case cstream.Array:
			if inner, ch := shrinkObjects(x); ch {
				res[i] = cstream.Array(inner)
				changed = true
			}
		}
	}
	return res, changed
}

// shrinkReal rounds x to the smallest number of decimal places which
// keeps the value within numEps of x.  At four decimal places the
// rounding error is at most 5e-5, so the search always succeeds.
func shrinkReal(x float64) cstream.Object {
	for prec := 0; ; prec++ {
		scale := math.Pow(10, float64(prec))
		r := math.Round(x*scale) / scale
		if math.Abs(r-x) <= numEps {
			if r == math.Trunc(r) && math.Abs(r) < 1e15 {
				return cstream.Integer(int64(r))
			}
			return cstream.Real(r)
		}
	}
}
