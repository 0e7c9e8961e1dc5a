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

package cstream

import (
	"bytes"
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1, "-1"},
		{12, "12"},
		{100, "100"},
		{0.5, ".5"},
		{-0.5, "-.5"},
		{1.25, "1.25"},
		{0.0001, ".0001"},
		{-12.0, "-12"},
		{72000, "72000"},
		{0.1, ".1"},
		{3600, "3600"},
	}
	for _, test := range cases {
		if got := FormatNumber(test.in); got != test.out {
			t.Errorf("FormatNumber(%g) = %q, want %q", test.in, got, test.out)
		}
	}
}

func TestObjectPDF(t *testing.T) {
	cases := []struct {
		obj Object
		out string
	}{
		{Bool(true), "true"},
		{Bool(false), "false"},
		{nil, "null"},

		{Integer(0), "0"},
		{Integer(-42), "-42"},
		{Real(0.5), ".5"},
		{Real(-1.5), "-1.5"},

		{Name("Foo"), "/Foo"},
		{Name("A B"), "/A#20B"},
		{Name("a#b"), "/a#23b"},
		{Name("x/y"), "/x#2Fy"},
		{Name(""), "/"},

		{String(nil), "()"},
		{String("hello"), "(hello)"},
		{String("(balanced)"), "((balanced))"},
		{String(")"), "<29>"},
		{String("a)b"), "(a\\)b)"},
		{String("a\\b"), "(a\\\\b)"},
		{String("a\rb"), "(a\\rb)"},
		{String("\x00\x01\x02\x03"), "<00010203>"},

		{Operator("re"), "re"},

		{Array{Integer(1), Integer(2), Integer(3)}, "[1 2 3]"},
		{Array{Name("A"), Integer(1)}, "[/A 1]"},
		{Array{}, "[]"},
		{Procedure{Integer(2), Operator("mul")}, "{2 mul}"},

		{Dict{"B": Integer(2), "A": Integer(1)}, "<</A 1/B 2>>"},
		{Dict{"A": nil}, "<<>>"},
	}
	for _, test := range cases {
		buf := &bytes.Buffer{}
		err := Write(buf, test.obj)
		if err != nil {
			t.Errorf("%#v: %s", test.obj, err)
			continue
		}
		if got := buf.String(); got != test.out {
			t.Errorf("%#v: got %q, want %q", test.obj, got, test.out)
		}
	}
}

// TestWriterSeparation checks that a space is inserted exactly where
// two adjacent tokens would otherwise merge.
func TestWriterSeparation(t *testing.T) {
	cases := []struct {
		objs []Object
		out  string
	}{
		{[]Object{Integer(1), Integer(2)}, "1 2"},
		{[]Object{Integer(1), Name("F")}, "1/F"},
		{[]Object{Name("F"), Integer(1)}, "/F 1"},
		{[]Object{String("a"), String("b")}, "(a)(b)"},
		{[]Object{Integer(1), Array{Integer(2)}, Integer(3)}, "1[2]3"},
		{[]Object{Real(0.5), Real(0.25), Operator("Td")}, ".5 .25 Td"},
	}
	for _, test := range cases {
		buf := &bytes.Buffer{}
		w := NewWriter(buf)
		for _, obj := range test.objs {
			if err := Write(w, obj); err != nil {
				t.Fatal(err)
			}
		}
		if got := buf.String(); got != test.out {
			t.Errorf("%v: got %q, want %q", test.objs, got, test.out)
		}
	}
}

func TestCharClasses(t *testing.T) {
	var numSpace, numDelim, numRegular int
	for i := 0; i < 256; i++ {
		c := byte(i)
		k := 0
		if IsSpace(c) {
			numSpace++
			k++
		}
		if IsDelimiter(c) {
			numDelim++
			k++
		}
		if IsRegular(c) {
			numRegular++
			k++
		}
		if k != 1 {
			t.Errorf("byte %d is in %d classes", i, k)
		}
	}
	if numSpace != 6 || numDelim != 10 || numRegular != 240 {
		t.Errorf("wrong class sizes: %d, %d, %d",
			numSpace, numDelim, numRegular)
	}
}
