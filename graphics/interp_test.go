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
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/cstream"
	"seehuhn.de/go/cstream/content"
)

func interpret(t *testing.T, in string) Sequence {
	t.Helper()
	stream, err := content.Parse([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	seq, err := Interpret(stream)
	if err != nil {
		t.Fatal(err)
	}
	return seq
}

func TestSaveRestore(t *testing.T) {
	seq := interpret(t, "q 2 0 0 2 0 0 cm 10 10 m Q 0 0 m")

	inner := seq[2].Before // the first moveto
	if inner.CTM != (matrix.Matrix{2, 0, 0, 2, 0, 0}) {
		t.Errorf("inner CTM = %v", inner.CTM)
	}

	outer := seq[4].Before // the moveto after Q
	if outer.CTM != matrix.Identity {
		t.Errorf("CTM not restored: %v", outer.CTM)
	}

	// the state before q and the state after Q must be the same snapshot
	if seq[0].Before != outer {
		t.Errorf("restored state is not the saved snapshot")
	}
}

func TestTransformOrder(t *testing.T) {
	seq := interpret(t, "1 0 0 1 10 0 cm 2 0 0 2 0 0 cm 0 0 m")

	// the second cm maps into the space established by the first
	x, y := seq[2].Before.CTM.Apply(0, 0)
	if x != 10 || y != 0 {
		t.Errorf("origin maps to (%g, %g), want (10, 0)", x, y)
	}
	x, y = seq[2].Before.CTM.Apply(1, 0)
	if x != 12 || y != 0 {
		t.Errorf("(1,0) maps to (%g, %g), want (12, 0)", x, y)
	}
}

func TestColors(t *testing.T) {
	seq := interpret(t, ".1 .2 .3 RG /DeviceCMYK cs .5 .5 .5 .5 sc /Sep1 CS .7 SC S")

	st := seq[len(seq)-1].Before
	want := State{
		Stroke: Color{Space: "Sep1", Values: []float64{0.7}},
		Fill:   Color{Space: DeviceCMYK, Values: []float64{0.5, 0.5, 0.5, 0.5}},
	}
	if d := cmp.Diff(want.Stroke, st.Stroke); d != "" {
		t.Error(d)
	}
	if d := cmp.Diff(want.Fill, st.Fill); d != "" {
		t.Error(d)
	}
}

func TestColorSpaceReset(t *testing.T) {
	// selecting a color space resets the color to the initial value
	// for that space
	seq := interpret(t, "1 0 0 RG /DeviceCMYK CS S")
	st := seq[2].Before
	want := Color{Space: DeviceCMYK, Values: []float64{0, 0, 0, 1}}
	if d := cmp.Diff(want, st.Stroke); d != "" {
		t.Error(d)
	}
}

func TestColorArity(t *testing.T) {
	cases := []string{
		"/DeviceCMYK CS 1 2 3 SC",
		"/DeviceRGB cs .5 sc",
		"1 1 SC", // initial space is DeviceGray
	}
	for _, in := range cases {
		stream, err := content.Parse([]byte(in))
		if err != nil {
			t.Fatal(err)
		}
		_, err = Interpret(stream)
		if _, ok := err.(*cstream.ArityError); !ok {
			t.Errorf("%q: got %v, want ArityError", in, err)
		}
	}

	// in an unknown color space any component count is accepted
	interpret(t, "/Sep1 CS 1 1 SC")
}

func TestUnbalanced(t *testing.T) {
	stream, err := content.Parse([]byte("q Q Q"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Interpret(stream)
	ubErr, ok := err.(*cstream.UnbalancedStateError)
	if !ok {
		t.Fatalf("got %v", err)
	}
	if ubErr.Depth != -1 || ubErr.Pos != 4 {
		t.Errorf("got Depth %d at byte %d", ubErr.Depth, ubErr.Pos)
	}

	stream, err = content.Parse([]byte("q q Q"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Interpret(stream)
	ubErr, ok = err.(*cstream.UnbalancedStateError)
	if !ok {
		t.Fatalf("got %v", err)
	}
	if ubErr.Depth != 1 {
		t.Errorf("got Depth %d, want 1", ubErr.Depth)
	}
}

func TestTextPositioning(t *testing.T) {
	seq := interpret(t, "BT 14 TL 5 10 Td 0 20 Td T* ET")

	x, y := seq[3].Before.Tm.Apply(0, 0)
	if x != 5 || y != 10 {
		t.Errorf("after first Td: (%g, %g)", x, y)
	}

	// Td moves relative to the line matrix, T* moves down by the leading
	x, y = seq[4].Before.Tm.Apply(0, 0)
	if x != 5 || y != 30 {
		t.Errorf("after second Td: (%g, %g)", x, y)
	}
	ann := seq[len(seq)-1] // ET
	x, y = ann.Before.Tm.Apply(0, 0)
	if x != 5 || y != 16 {
		t.Errorf("after T*: (%g, %g)", x, y)
	}
}

func TestClipResolution(t *testing.T) {
	seq := interpret(t, "0 0 10 10 re W n S")

	if st := seq[1].Before; st.PendingClip {
		t.Errorf("clip pending before W")
	}
	if st := seq[2].Before; !st.PendingClip || st.ClipDepth != 0 {
		t.Errorf("W not pending before the painting operator")
	}

	st := seq[3].Before // the S after n
	if st.PendingClip {
		t.Errorf("clip still pending after painting")
	}
	if st.ClipDepth != 1 {
		t.Errorf("ClipDepth = %d, want 1", st.ClipDepth)
	}
}

func TestMarkedContent(t *testing.T) {
	seq := interpret(t, "/Span BMC (x) Tj EMC S")

	want := []int{1, 1, 1, 0}
	for i, d := range want {
		if seq[i].Marked != d {
			t.Errorf("instruction %d: Marked = %d, want %d", i, seq[i].Marked, d)
		}
	}
}

func TestCompatSections(t *testing.T) {
	seq := interpret(t, "BX /Foo 7 unknownOp EX S")

	want := []int{1, 1, 1, 0}
	for i, d := range want {
		if seq[i].Compat != d {
			t.Errorf("instruction %d: Compat = %d, want %d", i, seq[i].Compat, d)
		}
	}
}

func TestStateSharing(t *testing.T) {
	// instructions which do not change state must share snapshots
	seq := interpret(t, "0 0 m 10 0 l 10 10 l S")
	for i := 1; i < len(seq); i++ {
		if seq[i].Before != seq[0].Before {
			t.Errorf("instruction %d has its own state snapshot", i)
		}
	}
}
