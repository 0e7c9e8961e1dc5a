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

// Package optimize rewrites content streams into smaller, equivalent
// form.
//
// The rewrite is organized as a sequence of passes over the annotated
// instruction sequence produced by the graphics package.  Each pass is
// idempotent and preserves the graphics state observed at every
// painting instruction.
package optimize

import (
	"bytes"

	"seehuhn.de/go/cstream"
	"seehuhn.de/go/cstream/content"
	"seehuhn.de/go/cstream/graphics"
)

// A Pass rewrites an annotated instruction sequence.  Passes must be
// idempotent, and must preserve the graphics state in effect at every
// painting instruction they keep.
//
// A Pass returns an error only when its input violates an invariant
// the interpreter is supposed to guarantee; such errors are reported
// to the caller as [cstream.PipelineInvariantError].
type Pass interface {
	Name() string
	Apply(seq graphics.Sequence) (content.Stream, error)
}

// ResourceInfo describes what is known about a named resource from
// the surrounding resource dictionary.
type ResourceInfo struct {
	// IsImage is set if the name refers to an image XObject.
	IsImage bool
}

// A Resolver maps resource names to information about the named
// resource.  The second return value reports whether the name is
// known.
//
// The rewrite passes use the resolver to decide when removing
// instructions near a Do operator is safe.  A nil resolver makes the
// passes behave conservatively and leave such instructions alone.
type Resolver func(name cstream.Name) (ResourceInfo, bool)

// Options controls the rewrite.
type Options struct {
	// Passes gives the passes to run, in order.  A nil slice selects
	// [DefaultPasses]; an empty, non-nil slice disables rewriting, so
	// that the input is only re-serialized.
	Passes []Pass

	// Resolve provides resource information to the passes.
	// May be nil.
	Resolve Resolver
}

// DefaultPasses returns the standard pass sequence: dead state setter
// removal, empty save/restore removal, degenerate path removal, and
// numeric shrinking.
func DefaultPasses(resolve Resolver) []Pass {
	return []Pass{
		elideState{},
		emptyBlocks{},
		degeneratePaths{resolve: resolve},
		shrinkNumbers{},
	}
}

// Rewrite parses the content stream in data, applies the rewrite
// passes until the result is stable, and serializes the result.
//
// Malformed input is reported as [cstream.LexError],
// [cstream.ArityError], [cstream.TypeError] or
// [cstream.UnbalancedStateError]; in this case no output is produced
// and the caller should fall back to the original bytes.  A
// [cstream.PipelineInvariantError] indicates a bug in a pass.
func Rewrite(data []byte, opt *Options) ([]byte, error) {
	if opt == nil {
		opt = &Options{}
	}
	passes := opt.Passes
	if passes == nil {
		passes = DefaultPasses(opt.Resolve)
	}

	stream, err := content.Parse(data)
	if err != nil {
		return nil, err
	}
	seq, err := graphics.Interpret(stream)
	if err != nil {
		return nil, err
	}

	// Removing an instruction can expose more work for an earlier
	// pass, for example when dropping a save/restore pair or a path
	// object makes a state setter before it redundant.  The pass list
	// is run repeatedly until the output is stable.  Passes only
	// remove or simplify instructions, so the iteration terminates.
	var prev []byte
	for {
		for _, pass := range passes {
			out, err := pass.Apply(seq)
			if err != nil {
				return nil, &cstream.PipelineInvariantError{Pass: pass.Name(), Err: err}
			}
			// Replaying the rewritten stream re-validates the state
			// consistency of the pass output before the next pass sees it.
			seq, err = graphics.Interpret(out)
			if err != nil {
				return nil, &cstream.PipelineInvariantError{Pass: pass.Name(), Err: err}
			}
		}

		buf := &bytes.Buffer{}
		if err := seq.Instructions().Write(buf); err != nil {
			return nil, err
		}
		if bytes.Equal(buf.Bytes(), prev) {
			return prev, nil
		}
		prev = buf.Bytes()
	}
}
