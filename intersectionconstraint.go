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

// IntersectionConstraint is the conjunction of several constraints.
// Proposals come from the member with the smallest estimate and are
// confirmed by every member that mentions the variable.
type IntersectionConstraint struct {
	constraints []Constraint
}

// And combines constraints into their conjunction.
func And(cs ...Constraint) *IntersectionConstraint {
	return &IntersectionConstraint{constraints: cs}
}

func (c *IntersectionConstraint) Variables() VariableSet {
	var vs VariableSet
	for _, m := range c.constraints {
		mv := m.Variables()
		vs.Union(&mv)
	}
	return vs
}

func (c *IntersectionConstraint) Estimate(v Variable, b *Binding) int {
	best := -1
	for _, m := range c.constraints {
		mv := m.Variables()
		if !mv.Test(v) {
			continue
		}
		if e := m.Estimate(v, b); best < 0 || e < best {
			best = e
		}
	}
	if best < 0 {
		panic("tribles: no constraint mentions the variable")
	}
	return best
}

func (c *IntersectionConstraint) Propose(v Variable, b *Binding) []Value {
	var proposer Constraint
	best := -1
	for _, m := range c.constraints {
		mv := m.Variables()
		if !mv.Test(v) {
			continue
		}
		if e := m.Estimate(v, b); best < 0 || e < best {
			proposer, best = m, e
		}
	}
	if proposer == nil {
		panic("tribles: no constraint mentions the variable")
	}
	return proposer.Propose(v, b)
}

func (c *IntersectionConstraint) Confirm(v Variable, b *Binding, proposals []Value) []Value {
	for _, m := range c.constraints {
		mv := m.Variables()
		if !mv.Test(v) {
			continue
		}
		proposals = m.Confirm(v, b, proposals)
		if len(proposals) == 0 {
			break
		}
	}
	return proposals
}
