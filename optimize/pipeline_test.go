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
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/cstream"
	"seehuhn.de/go/cstream/content"
	"seehuhn.de/go/cstream/graphics"
)

func TestRewrite(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
	}{
		{
			"dead color setter",
			"1 0 0 RG 0 0 0 RG 10 10 100 100 re f",
			"0 0 0 RG 10 10 100 100 re f",
		},
		{
			"empty block",
			"q 1 0 0 1 5 5 cm Q",
			"",
		},
		{
			"nested empty blocks",
			"q q 0.5 g Q 2 J Q",
			"",
		},
		{
			"paint keeps the block",
			"q 1 0 0 1 5 5 cm 0 0 10 10 re f Q",
			"q 1 0 0 1 5 5 cm 0 0 10 10 re f Q",
		},
		{
			"setter observed across instructions",
			"2 w 0 0 m 10 10 l S",
			"2 w 0 0 m 10 10 l S",
		},
		{
			"block removal exposes dead setter",
			"2 w q Q 4 w 0 0 m 10 10 l S",
			"4 w 0 0 m 10 10 l S",
		},
		{
			"path removal exposes dead setter",
			"1 0 0 RG 0 0 m S 0 0 0 RG 10 10 m 20 20 l S",
			"0 0 0 RG 10 10 m 20 20 l S",
		},
		{
			"setter dead before overwrite",
			"2 w 4 w 0 0 m 10 10 l S",
			"4 w 0 0 m 10 10 l S",
		},
		{
			"trailing setter kept",
			"1 0 0 RG",
			"1 0 0 RG",
		},
		{
			"no elision across q",
			"1 0 0 RG q 0 0 0 RG 0 0 m 10 10 l S Q 5 5 m 0 0 l S",
			"1 0 0 RG q 0 0 0 RG 0 0 m 10 10 l S Q 5 5 m 0 0 l S",
		},
		{
			"no elision across marked content",
			"1 0 0 RG /Span BMC 0 0 0 RG EMC S",
			"1 0 0 RG/Span BMC 0 0 0 RG EMC S",
		},
		{
			"degenerate fill",
			"0 0 m f",
			"",
		},
		{
			"degenerate stroke, butt cap",
			"0 0 m h S",
			"",
		},
		{
			"degenerate stroke, round cap",
			"1 J 0 0 m S",
			"1 J 0 0 m S",
		},
		{
			"zero rectangle",
			"5 5 0 0 re f",
			"",
		},
		{
			"degenerate clip carrier demoted",
			"0 0 0 0 re W f",
			"0 0 0 0 re W n",
		},
		{
			"non-degenerate path kept",
			"0 0 m 10 0 l S",
			"0 0 m 10 0 l S",
		},
		{
			"numeric shrink",
			"0.50 0.2500001 Td",
			".5 .25 Td",
		},
		{
			"near-integer becomes integer",
			"100.00002 0 Td",
			"100 0 Td",
		},
		{
			"1/72000 of an inch is kept",
			".0014 .0013 Td",
			".0014 .0013 Td",
		},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			out, err := Rewrite([]byte(test.in), nil)
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != test.out {
				t.Errorf("got %q, want %q", out, test.out)
			}
		})
	}
}

func TestPassesDisabled(t *testing.T) {
	// an empty pass list re-serializes the stream without rewriting
	const in = "1  0  0  RG 0 0 0 RG q 1 0 0 1 5 5 cm Q 0 0 m f"
	out, err := Rewrite([]byte(in), &Options{Passes: []Pass{}})
	if err != nil {
		t.Fatal(err)
	}
	want := "1 0 0 RG 0 0 0 RG q 1 0 0 1 5 5 cm Q 0 0 m f"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestOpaquePassthrough(t *testing.T) {
	// the rewrite must not touch instructions it does not understand,
	// including their original operand encoding
	const in = "(foo)  /Bar  XYZ"
	out, err := Rewrite([]byte(in), nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != in {
		t.Errorf("got %q, want %q", out, in)
	}
}

func TestIdempotence(t *testing.T) {
	cases := []string{
		"1 0 0 RG 0 0 0 RG 10 10 100 100 re S",
		"q 1 0 0 1 5 5 cm Q 0 0 m 5 5 l S",
		"q q 0.5 g 0 0 10 10 re f Q Q",
		"BT /F1 12 Tf 14 TL (one) Tj T* (two) Tj ET",
		"0.5000001 0 0 0.5 0 0 cm /Im1 Do",
		"(foo) /Bar XYZ 1 0 0 RG S",
		"2 w q Q 4 w 0 0 m 10 10 l S",
		"1 0 0 RG 0 0 m S 0 0 0 RG 10 10 m 20 20 l S",
	}
	for _, in := range cases {
		once, err := Rewrite([]byte(in), nil)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := Rewrite(once, nil)
		if err != nil {
			t.Fatal(err)
		}
		if string(once) != string(twice) {
			t.Errorf("%q: first %q, second %q", in, once, twice)
		}
	}
}

func TestBalanceEnforcement(t *testing.T) {
	cases := []string{
		"Q",
		"q Q Q 0 0 m S",
		"q 0 0 m S",
	}
	for _, in := range cases {
		out, err := Rewrite([]byte(in), nil)
		if _, ok := err.(*cstream.UnbalancedStateError); !ok {
			t.Errorf("%q: got %v, want UnbalancedStateError", in, err)
		}
		if out != nil {
			t.Errorf("%q: output produced despite error", in)
		}
	}
}

// paintStates returns the graphics state before each painting
// instruction.
func paintStates(t *testing.T, data []byte) []graphics.State {
	t.Helper()
	stream, err := content.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	seq, err := graphics.Interpret(stream)
	if err != nil {
		t.Fatal(err)
	}
	var res []graphics.State
	for _, ann := range seq {
		if info, ok := ann.Inst.Info(); ok && info.Paints {
			res = append(res, *ann.Before)
		}
	}
	return res
}

func TestSemanticEquivalence(t *testing.T) {
	cases := []string{
		"1 0 0 RG 0 0 0 RG 10 10 100 100 re S",
		"q 0.5 g 0 0 10 10 re f Q 1 g 0 0 5 5 re f",
		"q 1 0 0 1 5 5 cm Q 0 0 m 10 10 l S",
		"2 w 4 w 0 0 m 10 10 l S q Q 0 0 m 10 10 l S",
		"BT /F1 12 Tf (x) Tj ET BT /F2 8 Tf (y) Tj ET",
		"0 0 0 0 re W f 0 0 10 10 re f",
	}
	for _, in := range cases {
		out, err := Rewrite([]byte(in), nil)
		if err != nil {
			t.Fatal(err)
		}
		before := paintStates(t, []byte(in))
		after := paintStates(t, out)

		// painting instructions may disappear only when they paint
		// nothing; the ones which survive must observe the same state
		if len(after) > len(before) {
			t.Fatalf("%q: painting instructions appeared", in)
		}
		j := 0
		for _, st := range after {
			for j < len(before) && cmp.Diff(before[j], st) != "" {
				j++
			}
			if j >= len(before) {
				t.Errorf("%q: no matching painting state in the input", in)
				break
			}
			j++
		}
	}
}

func TestResolver(t *testing.T) {
	// without resource information, a degenerate path directly before
	// Do is left alone
	const in = "0 0 m f /Im1 Do"
	out, err := Rewrite([]byte(in), nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "0 0 m f/Im1 Do" {
		t.Errorf("conservative rewrite changed the stream: %q", out)
	}

	resolve := func(name cstream.Name) (ResourceInfo, bool) {
		return ResourceInfo{IsImage: name == "Im1"}, true
	}
	out, err = Rewrite([]byte(in), &Options{Resolve: resolve})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "/Im1 Do" {
		t.Errorf("got %q, want %q", out, "/Im1 Do")
	}
}
