// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package tribles

import (
	"github.com/triblespace/go-tribles/patch"
)

// tribleSetConstraint exposes a TribleSet to the join driver. For
// every combination of bound fields and proposed variable there is an
// index whose ordering puts the bound fields first and the proposed
// field next, so estimates come from a segment count, proposals from
// an infix enumeration and confirmation from a prefix check, all on
// the same tree.
type tribleSetConstraint struct {
	e, a, v Variable
	set     *TribleSet
}

func (c *tribleSetConstraint) Variables() VariableSet {
	var vs VariableSet
	vs.Set(c.e)
	vs.Set(c.a)
	vs.Set(c.v)
	return vs
}

// plan selects the index aligned with the proposed variable under the
// current binding. It returns the tree, the tree-order prefix holding
// the bound fields, and the proposed field's length. ok is false when
// a bound value cannot be a triple field at all, in which case nothing
// matches.
func (c *tribleSetConstraint) plan(v Variable, b *Binding) (tree *patch.Tree, prefix []byte, fieldLen int, ok bool) {
	eBound, aBound, vBound := b.Bound(c.e), b.Bound(c.a), b.Bound(c.v)

	var eId, aId Id
	var vVal Value
	if eBound {
		val, _ := b.Get(c.e)
		id, err := ValueId(val)
		if err != nil {
			return nil, nil, 0, false
		}
		eId = id
	}
	if aBound {
		val, _ := b.Get(c.a)
		id, err := ValueId(val)
		if err != nil {
			return nil, nil, 0, false
		}
		aId = id
	}
	if vBound {
		vVal, _ = b.Get(c.v)
	}

	concat := func(parts ...[]byte) []byte {
		var p []byte
		for _, part := range parts {
			p = append(p, part...)
		}
		return p
	}

	switch {
	case v == c.e && !aBound && !vBound:
		return c.set.EAV, nil, IdLen, true
	case v == c.e && aBound && !vBound:
		return c.set.AEV, concat(aId[:]), IdLen, true
	case v == c.e && !aBound && vBound:
		return c.set.VEA, concat(vVal[:]), IdLen, true
	case v == c.e && aBound && vBound:
		return c.set.AVE, concat(aId[:], vVal[:]), IdLen, true

	case v == c.a && !eBound && !vBound:
		return c.set.AEV, nil, IdLen, true
	case v == c.a && eBound && !vBound:
		return c.set.EAV, concat(eId[:]), IdLen, true
	case v == c.a && !eBound && vBound:
		return c.set.VAE, concat(vVal[:]), IdLen, true
	case v == c.a && eBound && vBound:
		return c.set.EVA, concat(eId[:], vVal[:]), IdLen, true

	case v == c.v && !eBound && !aBound:
		return c.set.VEA, nil, ValueLen, true
	case v == c.v && eBound && !aBound:
		return c.set.EVA, concat(eId[:]), ValueLen, true
	case v == c.v && !eBound && aBound:
		return c.set.AVE, concat(aId[:]), ValueLen, true
	case v == c.v && eBound && aBound:
		return c.set.EAV, concat(eId[:], aId[:]), ValueLen, true
	}
	panic("tribles: variable not proposable for this pattern")
}

func (c *tribleSetConstraint) Estimate(v Variable, b *Binding) int {
	tree, prefix, _, ok := c.plan(v, b)
	if !ok {
		return 0
	}
	return int(tree.SegmentedLen(prefix))
}

func (c *tribleSetConstraint) Propose(v Variable, b *Binding) []Value {
	tree, prefix, fieldLen, ok := c.plan(v, b)
	if !ok {
		return nil
	}

	var proposals []Value
	tree.Infixes(prefix, fieldLen, func(infix []byte) {
		var val Value
		if fieldLen == IdLen {
			copy(val[IdLen:], infix)
		} else {
			copy(val[:], infix)
		}
		proposals = append(proposals, val)
	})
	return proposals
}

func (c *tribleSetConstraint) Confirm(v Variable, b *Binding, proposals []Value) []Value {
	tree, prefix, fieldLen, ok := c.plan(v, b)
	if !ok {
		return proposals[:0]
	}

	kept := proposals[:0]
	for _, p := range proposals {
		var fragment []byte
		if fieldLen == IdLen {
			id, err := ValueId(p)
			if err != nil {
				continue
			}
			fragment = id[:]
		} else {
			p := p
			fragment = p[:]
		}

		full := make([]byte, 0, len(prefix)+fieldLen)
		full = append(full, prefix...)
		full = append(full, fragment...)
		if tree.HasPrefix(full) {
			kept = append(kept, p)
		}
	}
	return kept
}
