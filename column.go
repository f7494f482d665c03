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

// Column is a single-attribute index: the values one fixed attribute
// assigns to entities, kept in both directions for the join driver.
type Column struct {
	EV map[Id]map[Value]struct{}
	VE map[Value]map[Id]struct{}
}

// NewColumn returns an empty column.
func NewColumn() *Column {
	return &Column{
		EV: map[Id]map[Value]struct{}{},
		VE: map[Value]map[Id]struct{}{},
	}
}

// Add records one entity-value pair.
func (c *Column) Add(e Id, v Value) {
	putPair(c.EV, e, v)
	putPair(c.VE, v, e)
}

// Len returns the number of entities carrying the attribute.
func (c *Column) Len() int {
	return len(c.EV)
}

// Pattern returns a constraint binding the two variables to the
// entity and value sides of the column.
func (c *Column) Pattern(e, v Variable) Constraint {
	return &columnConstraint{e: e, v: v, column: c}
}

// columnConstraint is the two-variable counterpart of the triple
// pattern: the attribute is fixed by the column itself.
type columnConstraint struct {
	e, v   Variable
	column *Column
}

func (c *columnConstraint) Variables() VariableSet {
	var vs VariableSet
	vs.Set(c.e)
	vs.Set(c.v)
	return vs
}

// boundEntity reads the entity binding, reporting whether it can name
// an entity at all.
func (c *columnConstraint) boundEntity(b *Binding) (Id, bool) {
	val, _ := b.Get(c.e)
	id, err := ValueId(val)
	return id, err == nil
}

func (c *columnConstraint) Estimate(v Variable, b *Binding) int {
	eBound, vBound := b.Bound(c.e), b.Bound(c.v)
	switch {
	case v == c.e && !vBound:
		return len(c.column.EV)
	case v == c.e && vBound:
		val, _ := b.Get(c.v)
		return len(c.column.VE[val])
	case v == c.v && !eBound:
		return len(c.column.VE)
	case v == c.v && eBound:
		id, ok := c.boundEntity(b)
		if !ok {
			return 0
		}
		return len(c.column.EV[id])
	}
	panic("tribles: variable not proposable for this column")
}

func (c *columnConstraint) Propose(v Variable, b *Binding) []Value {
	eBound, vBound := b.Bound(c.e), b.Bound(c.v)

	var proposals []Value
	switch {
	case v == c.e && !vBound:
		proposals = make([]Value, 0, len(c.column.EV))
		for id := range c.column.EV {
			proposals = append(proposals, IdValue(id))
		}
	case v == c.e && vBound:
		val, _ := b.Get(c.v)
		proposals = make([]Value, 0, len(c.column.VE[val]))
		for id := range c.column.VE[val] {
			proposals = append(proposals, IdValue(id))
		}
	case v == c.v && !eBound:
		proposals = make([]Value, 0, len(c.column.VE))
		for val := range c.column.VE {
			proposals = append(proposals, val)
		}
	case v == c.v && eBound:
		id, ok := c.boundEntity(b)
		if !ok {
			return nil
		}
		proposals = make([]Value, 0, len(c.column.EV[id]))
		for val := range c.column.EV[id] {
			proposals = append(proposals, val)
		}
	default:
		panic("tribles: variable not proposable for this column")
	}

	sort.Slice(proposals, func(i, j int) bool {
		return bytes.Compare(proposals[i][:], proposals[j][:]) < 0
	})
	return proposals
}

func (c *columnConstraint) Confirm(v Variable, b *Binding, proposals []Value) []Value {
	eBound, vBound := b.Bound(c.e), b.Bound(c.v)

	kept := proposals[:0]
	for _, p := range proposals {
		switch {
		case v == c.e && !vBound:
			id, err := ValueId(p)
			if err != nil {
				continue
			}
			if _, present := c.column.EV[id]; present {
				kept = append(kept, p)
			}
		case v == c.e && vBound:
			id, err := ValueId(p)
			if err != nil {
				continue
			}
			val, _ := b.Get(c.v)
			if _, present := c.column.VE[val][id]; present {
				kept = append(kept, p)
			}
		case v == c.v && !eBound:
			if _, present := c.column.VE[p]; present {
				kept = append(kept, p)
			}
		case v == c.v && eBound:
			id, ok := c.boundEntity(b)
			if !ok {
				continue
			}
			if _, present := c.column.EV[id][p]; present {
				kept = append(kept, p)
			}
		default:
			panic("tribles: variable not proposable for this column")
		}
	}
	return kept
}
