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

// elideState removes state-setting instructions whose effect is
// overwritten before anything observes it.
//
// The pass walks the sequence backwards, maintaining the set of state
// attributes which are certain to be overwritten before the next
// read.  A pure setter all of whose written attributes are in this
// set has no observable effect and is dropped.  Every instruction the
// data flow analysis cannot see through (q, Q, gs, Do, text showing,
// marked content, opaque operators) clears the set, so setters are
// never removed across such a barrier.  The set is also empty at the
// end of the stream: the final state may be observed by a following
// content stream of the same page.
type elideState struct{}

func (elideState) Name() string {
	return "elide-redundant-state"
}

func (elideState) Apply(seq graphics.Sequence) (content.Stream, error) {
	drop := make([]bool, len(seq))

	var dead content.Attr
	for i := len(seq) - 1; i >= 0; i-- {
		ann := seq[i]
		info, known := ann.Inst.Info()
		if !known || ann.Compat > 0 || info.Reads == content.AttrAll {
			dead = 0
			continue
		}
		if isPureSetter(ann.Inst.Name, info) && info.Writes&^dead == 0 {
			drop[i] = true
			continue
		}
		dead = (dead | info.Writes) &^ info.Reads
	}

	res := make(content.Stream, 0, len(seq))
	for i, ann := range seq {
		if !drop[i] {
			res = append(res, ann.Inst)
		}
	}
	return res, nil
}

// isPureSetter reports whether the operator's only effect is to
// replace graphics state attributes.  BT also opens a text object, so
// it must be kept even when the text matrix it resets is dead.
func isPureSetter(name content.OpName, info content.OpInfo) bool {
	if info.Paints || info.Writes == 0 {
		return false
	}
	switch name {
	case content.OpTextBegin, content.OpTextEnd:
		return false
	}
	return true
}
