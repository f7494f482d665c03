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
	"github.com/triblespace/go-tribles/internal/bitset"
)

// Variable names one of up to 256 query variables.
type Variable = uint8

// VariableSet is the set of variables a constraint touches.
type VariableSet = bitset.BitSet256

// Binding is a partial assignment from variables to values.
type Binding struct {
	values [256]Value
	bound  bitset.BitSet256
}

// Get returns the value bound to the variable, if any.
func (b *Binding) Get(v Variable) (Value, bool) {
	if !b.bound.Test(v) {
		return Value{}, false
	}
	return b.values[v], true
}

// Bound reports whether the variable has a value.
func (b *Binding) Bound(v Variable) bool {
	return b.bound.Test(v)
}

func (b *Binding) set(v Variable, value Value) {
	b.values[v] = value
	b.bound.Set(v)
}

func (b *Binding) unset(v Variable) {
	b.bound.Clear(v)
}

// Constraint restricts the values a set of variables can take. The
// join driver interrogates constraints variable by variable.
//
// Estimate and Propose may only be called for an unbound variable the
// constraint mentions, anything else is a programmer error and may
// panic. Estimate must be an upper bound on the number of values
// Propose yields for the same state.
type Constraint interface {
	// Variables returns the variables this constraint mentions.
	Variables() VariableSet

	// Estimate bounds the number of values that could extend the
	// binding at the variable.
	Estimate(v Variable, b *Binding) int

	// Propose returns candidate values for the variable, in a
	// deterministic order.
	Propose(v Variable, b *Binding) []Value

	// Confirm filters the proposals down to those this constraint
	// admits, preserving their order.
	Confirm(v Variable, b *Binding, proposals []Value) []Value
}

// Query enumerates every binding that satisfies a constraint, one
// variable at a time, always extending the variable with the smallest
// estimate. Results arrive in a deterministic order.
type Query struct {
	constraint Constraint
	variables  bitset.BitSet256

	binding    Binding
	stack      []Variable
	candidates [][]Value
	positions  []int
	mode       exploreMode
	done       bool
}

type exploreMode int

const (
	modeVertical exploreMode = iota
	modeHorizontal
	modeBacktrack
)

// NewQuery starts the evaluation of a constraint.
func NewQuery(c Constraint) *Query {
	return &Query{
		constraint: c,
		variables:  c.Variables(),
	}
}

// Next returns the next satisfying binding. The returned binding is a
// copy and stays valid across further calls.
func (q *Query) Next() (Binding, bool) {
	if q.done {
		return Binding{}, false
	}
	for {
		switch q.mode {
		case modeVertical:
			v, ok := q.pickVariable()
			if !ok {
				// Every mentioned variable is bound.
				result := q.binding
				if len(q.stack) == 0 {
					q.done = true
				}
				q.mode = modeHorizontal
				return result, true
			}

			proposals := q.constraint.Propose(v, &q.binding)
			proposals = q.constraint.Confirm(v, &q.binding, proposals)

			q.stack = append(q.stack, v)
			q.candidates = append(q.candidates, proposals)
			q.positions = append(q.positions, 0)
			q.mode = modeHorizontal

		case modeHorizontal:
			depth := len(q.stack) - 1
			if depth < 0 {
				q.done = true
				return Binding{}, false
			}
			cs := q.candidates[depth]
			pos := q.positions[depth]
			if pos < len(cs) {
				q.positions[depth]++
				q.binding.set(q.stack[depth], cs[pos])
				q.mode = modeVertical
			} else {
				q.mode = modeBacktrack
			}

		case modeBacktrack:
			depth := len(q.stack) - 1
			q.binding.unset(q.stack[depth])
			q.stack = q.stack[:depth]
			q.candidates = q.candidates[:depth]
			q.positions = q.positions[:depth]
			if depth == 0 {
				q.done = true
				return Binding{}, false
			}
			q.mode = modeHorizontal
		}
	}
}

// ForEach runs the query to completion, calling f for every result.
func (q *Query) ForEach(f func(*Binding)) {
	for {
		b, ok := q.Next()
		if !ok {
			return
		}
		f(&b)
	}
}

// pickVariable selects the unbound variable with the smallest
// estimate, breaking ties towards the lowest variable id.
func (q *Query) pickVariable() (Variable, bool) {
	open := q.variables
	open.Subtract(&q.binding.bound)

	var best Variable
	bestEstimate := -1
	for _, v := range open.All() {
		e := q.constraint.Estimate(v, &q.binding)
		if bestEstimate < 0 || e < bestEstimate {
			best, bestEstimate = v, e
		}
	}
	return best, bestEstimate >= 0
}
