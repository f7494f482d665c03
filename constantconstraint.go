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

// ConstantConstraint pins a variable to a single value.
type ConstantConstraint struct {
	variable Variable
	constant Value
}

// Is constrains the variable to the given value.
func Is(v Variable, constant Value) *ConstantConstraint {
	return &ConstantConstraint{variable: v, constant: constant}
}

func (c *ConstantConstraint) Variables() VariableSet {
	var vs VariableSet
	vs.Set(c.variable)
	return vs
}

func (c *ConstantConstraint) Estimate(Variable, *Binding) int {
	return 1
}

func (c *ConstantConstraint) Propose(Variable, *Binding) []Value {
	return []Value{c.constant}
}

func (c *ConstantConstraint) Confirm(_ Variable, _ *Binding, proposals []Value) []Value {
	kept := proposals[:0]
	for _, p := range proposals {
		if p == c.constant {
			kept = append(kept, p)
		}
	}
	return kept
}
