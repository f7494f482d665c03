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
	"bytes"
	"sort"
)

// hashTribleSetConstraint exposes a HashTribleSet to the join driver.
// Go maps iterate in random order, so proposals are sorted to keep the
// driver's enumeration deterministic.
type hashTribleSetConstraint struct {
	e, a, v Variable
	set     *HashTribleSet
}

func (c *hashTribleSetConstraint) Variables() VariableSet {
	var vs VariableSet
	vs.Set(c.e)
	vs.Set(c.a)
	vs.Set(c.v)
	return vs
}

// column returns the id set or value set the proposed variable draws
// from under the current binding. Exactly one of ids and vals is
// non-nil on success.
func (c *hashTribleSetConstraint) column(v Variable, b *Binding) (ids map[Id]struct{}, vals map[Value]struct{}, ok bool) {
	eBound, aBound, vBound := b.Bound(c.e), b.Bound(c.a), b.Bound(c.v)

	var eId, aId Id
	var vVal Value
	if eBound {
		val, _ := b.Get(c.e)
		id, err := ValueId(val)
		if err != nil {
			return nil, nil, false
		}
		eId = id
	}
	if aBound {
		val, _ := b.Get(c.a)
		id, err := ValueId(val)
		if err != nil {
			return nil, nil, false
		}
		aId = id
	}
	if vBound {
		vVal, _ = b.Get(c.v)
	}

	switch {
	case v == c.e && !aBound && !vBound:
		return c.set.E, nil, true
	case v == c.e && aBound && !vBound:
		return c.set.AE[aId], nil, true
	case v == c.e && !aBound && vBound:
		return c.set.VE[vVal], nil, true
	case v == c.e && aBound && vBound:
		return c.set.AVE[idValueKey{aId, vVal}], nil, true

	case v == c.a && !eBound && !vBound:
		return c.set.A, nil, true
	case v == c.a && eBound && !vBound:
		return c.set.EA[eId], nil, true
	case v == c.a && !eBound && vBound:
		return c.set.VA[vVal], nil, true
	case v == c.a && eBound && vBound:
		return c.set.EVA[idValueKey{eId, vVal}], nil, true

	case v == c.v && !eBound && !aBound:
		return nil, c.set.V, true
	case v == c.v && eBound && !aBound:
		return nil, c.set.EV[eId], true
	case v == c.v && !eBound && aBound:
		return nil, c.set.AV[aId], true
	case v == c.v && eBound && aBound:
		return nil, c.set.EAV[[2]Id{eId, aId}], true
	}
	panic("tribles: variable not proposable for this pattern")
}

func (c *hashTribleSetConstraint) Estimate(v Variable, b *Binding) int {
	ids, vals, ok := c.column(v, b)
	if !ok {
		return 0
	}
	if ids != nil {
		return len(ids)
	}
	return len(vals)
}

func (c *hashTribleSetConstraint) Propose(v Variable, b *Binding) []Value {
	ids, vals, ok := c.column(v, b)
	if !ok {
		return nil
	}

	var proposals []Value
	if ids != nil {
		proposals = make([]Value, 0, len(ids))
		for id := range ids {
			proposals = append(proposals, IdValue(id))
		}
	} else {
		proposals = make([]Value, 0, len(vals))
		for val := range vals {
			proposals = append(proposals, val)
		}
	}
	sort.Slice(proposals, func(i, j int) bool {
		return bytes.Compare(proposals[i][:], proposals[j][:]) < 0
	})
	return proposals
}

func (c *hashTribleSetConstraint) Confirm(v Variable, b *Binding, proposals []Value) []Value {
	ids, vals, ok := c.column(v, b)
	if !ok {
		return proposals[:0]
	}

	kept := proposals[:0]
	for _, p := range proposals {
		if ids != nil {
			id, err := ValueId(p)
			if err != nil {
				continue
			}
			if _, present := ids[id]; present {
				kept = append(kept, p)
			}
		} else if _, present := vals[p]; present {
			kept = append(kept, p)
		}
	}
	return kept
}
