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

package patch

// unionNodes merges two subtrees rooted at the same depth. Both
// operands are borrowed, the result is a fresh reference. Subtrees
// that are pointer-equal are re-shared without being walked.
func unionNodes(s *Schema, a, b node, atDepth int) node {
	if a == b {
		return a.retain()
	}

	endA, endB := a.endDepth(s), b.endDepth(s)
	ka, kb := a.anyLeaf().key, b.anyLeaf().key

	// Walk the implicit prefixes in lockstep. A divergence splits
	// both operands below a fresh two-way branch.
	for depth := atDepth; depth < min(endA, endB); depth++ {
		idx := s.keyIndex(depth)
		if ka[idx] != kb[idx] {
			return newBranch2(s, depth, a.retain(), b.retain())
		}
	}

	if endA == endB {
		if endA == s.keyLen {
			// Two leaves with the same key.
			return a.retain()
		}
		// Two branches diverging at the same depth, merge the
		// children of b into a copy of a.
		r := a.retain().(*branch).cow()
		bb := b.(*branch)
		bb.table.each(func(key byte, child node) {
			r.mergeChild(s, key, child)
		})
		return r
	}

	if endA > endB {
		return unionNodes(s, b, a, atDepth)
	}

	// a branches first, b folds into one of a's child slots.
	r := a.retain().(*branch).cow()
	r.mergeChild(s, kb[s.keyIndex(r.end)], b)
	return r
}

// mergeChild folds a borrowed node into the child slot for the given
// byte, keeping counts and fingerprint consistent.
func (n *branch) mergeChild(s *Schema, b byte, other node) {
	old := n.table.get(b)
	if old == nil {
		n.addChild(s, other.retain())
		return
	}

	oldHash := old.fingerprint()
	oldCount := old.count()
	oldSeg := old.countSegment(s, n.end)

	merged := unionNodes(s, old, other, n.end)
	n.table.update(b, merged)
	old.release()

	n.hash = n.hash.Xor(oldHash).Xor(merged.fingerprint())
	n.leafCount += merged.count() - oldCount
	n.segmentCount += merged.countSegment(s, n.end) - oldSeg
}
