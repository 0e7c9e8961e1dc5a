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
	"seehuhn.de/go/cstream/content"
	"seehuhn.de/go/cstream/graphics"
)

// emptyBlocks removes q/Q pairs which have no effect: blocks which
// paint nothing and contain no irreversible side effects.  Since Q
// discards all state changes made inside the block, a block whose
// every instruction is a pure state setter can be deleted together
// with its contents.
//
// Clip intersections survive Q only as marks already painted through
// them, but W itself is irreversible inside the block in the sense
// that a paint operator might still follow; W therefore disqualifies
// a block, as do path construction, painting, opaque and
// marked-content instructions.  Nested blocks are handled inner
// first, so that q q Q Q collapses in a single run.
type emptyBlocks struct{}

func (emptyBlocks) Name() string {
	return "remove-empty-blocks"
}

func (emptyBlocks) Apply(seq graphics.Sequence) (content.Stream, error) {
	drop := make([]bool, len(seq))

	type block struct {
		start int  // index of the q instruction
		pure  bool // no effect other than discarded state changes
	}
	var stack []block

	for i, ann := range seq {
		switch ann.Inst.Name {
		case content.OpPushGraphicsState:
			if ann.Compat > 0 {
				stack = append(stack, block{start: i, pure: false})
			} else {
				stack = append(stack, block{start: i, pure: true})
			}
		case content.OpPopGraphicsState:
			if len(stack) == 0 {
				continue
			}
			k := len(stack) - 1
			b := stack[k]
			stack = stack[:k]
			if b.pure {
				for j := b.start; j <= i; j++ {
					drop[j] = true
				}
			} else if len(stack) > 0 {
				stack[len(stack)-1].pure = false
			}
		default:
			if len(stack) == 0 {
				continue
			}
			if !isErasable(ann) {
				stack[len(stack)-1].pure = false
			}
		}
	}

	res := make(content.Stream, 0, len(seq))
	for i, ann := range seq {
		if !drop[i] {
			res = append(res, ann.Inst)
		}
	}
	return res, nil
}

// isErasable reports whether the instruction can be deleted as part
// of an effect-free q/Q block.  Only pure state setters qualify:
// their effect is undone by the closing Q anyway.
func isErasable(ann graphics.Annotated) bool {
	if ann.Compat > 0 {
		return false
	}
	info, known := ann.Inst.Info()
	if !known {
		return false
	}
	return isPureSetter(ann.Inst.Name, info) && info.Reads != content.AttrAll
}
