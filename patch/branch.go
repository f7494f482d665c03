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

// branch is an interior node. The key bytes on the path from the root
// to the branch are not stored, they are read on demand from childleaf,
// which points at an arbitrary leaf below the branch.
type branch struct {
	rc refcount

	// end is the tree depth at which this branch diverges. The
	// implicit prefix covers the depths before it.
	end       int
	childleaf *leaf

	leafCount    uint64
	segmentCount uint64
	hash         Fingerprint

	table byteTable
}

// newBranch2 builds the smallest branch over two nodes that diverge at
// the given depth. It takes ownership of the references passed in.
func newBranch2(s *Schema, atDepth int, a, b node) *branch {
	n := &branch{
		end:       atDepth,
		childleaf: a.anyLeaf(),
		table:     newByteTable(2),
	}
	n.rc.init()
	n.addChild(s, a)
	n.addChild(s, b)
	return n
}

// addChild links a node below the branch, taking ownership of the
// reference and folding its counts and fingerprint into the branch.
func (n *branch) addChild(s *Schema, child node) {
	b := child.anyLeaf().key[s.keyIndex(n.end)]
	n.table.insert(b, child)
	n.leafCount += child.count()
	n.segmentCount += child.countSegment(s, n.end)
	n.hash = n.hash.Xor(child.fingerprint())
}

func (n *branch) count() uint64 { return n.leafCount }

func (n *branch) countSegment(s *Schema, atDepth int) uint64 {
	// A branch whose implicit prefix crosses a segment boundary
	// contributes a single fragment to the parent's segment.
	if !s.sameSegment(atDepth, n.end) {
		return 1
	}
	return n.segmentCount
}

func (n *branch) fingerprint() Fingerprint { return n.hash }
func (n *branch) anyLeaf() *leaf { return n.childleaf }
func (n *branch) endDepth(*Schema) int { return n.end }

func (n *branch) retain() node {
	n.rc.inc()
	return n
}

func (n *branch) release() {
	if n.rc.dec() {
		n.table.each(func(_ byte, child node) {
			child.release()
		})
	}
}

// cow consumes the caller's reference and returns a branch the caller
// owns exclusively. A shared branch is cloned shallowly, the children
// are re-retained, not copied.
func (n *branch) cow() *branch {
	if n.rc.unique() {
		return n
	}
	clone := &branch{
		end:          n.end,
		childleaf:    n.childleaf,
		leafCount:    n.leafCount,
		segmentCount: n.segmentCount,
		hash:         n.hash,
		table:        n.table.clone(),
	}
	clone.rc.init()
	clone.table.each(func(_ byte, child node) {
		child.retain()
	})
	n.release()
	return clone
}

func (n *branch) insert(s *Schema, e *Entry, atDepth int) node {
	// Check the implicit prefix. A mismatch splits the path below
	// the new divergence point.
	lk, ek := n.childleaf.key, e.leaf.key
	for depth := atDepth; depth < n.end; depth++ {
		idx := s.keyIndex(depth)
		if lk[idx] != ek[idx] {
			return newBranch2(s, depth, n, e.leaf.retain())
		}
	}

	b := ek[s.keyIndex(n.end)]
	un := n.cow()
	if child := un.table.get(b); child != nil {
		oldHash := child.fingerprint()
		oldCount := child.count()
		oldSeg := child.countSegment(s, un.end)

		replacement := child.insert(s, e, un.end)
		if replacement != child {
			un.table.update(b, replacement)
		}

		un.hash = un.hash.Xor(oldHash).Xor(replacement.fingerprint())
		un.leafCount += replacement.count() - oldCount
		un.segmentCount += replacement.countSegment(s, un.end) - oldSeg
	} else {
		un.addChild(s, e.leaf.retain())
	}
	return un
}

func (n *branch) get(s *Schema, key []byte, atDepth int) *leaf {
	lk := n.childleaf.key
	for depth := atDepth; depth < n.end; depth++ {
		idx := s.keyIndex(depth)
		if lk[idx] != key[idx] {
			return nil
		}
	}
	child := n.table.get(key[s.keyIndex(n.end)])
	if child == nil {
		return nil
	}
	return child.get(s, key, n.end)
}

func (n *branch) hasPrefix(s *Schema, prefix []byte, atDepth int) bool {
	lk := n.childleaf.key
	for depth := atDepth; depth < min(n.end, len(prefix)); depth++ {
		if lk[s.keyIndex(depth)] != prefix[depth] {
			return false
		}
	}

	// The prefix ends within this branch's implicit prefix.
	if len(prefix) <= n.end {
		return true
	}

	// The prefix continues in a child.
	child := n.table.get(prefix[n.end])
	if child == nil {
		return false
	}
	return child.hasPrefix(s, prefix, n.end)
}

func (n *branch) segmentedLen(s *Schema, prefix []byte, atDepth int) uint64 {
	lk := n.childleaf.key
	for depth := atDepth; depth < min(n.end, len(prefix)); depth++ {
		if lk[s.keyIndex(depth)] != prefix[depth] {
			return 0
		}
	}
	if len(prefix) <= n.end {
		if !s.sameSegment(len(prefix), n.end) {
			return 1
		}
		return n.segmentCount
	}
	child := n.table.get(prefix[n.end])
	if child == nil {
		return 0
	}
	return child.segmentedLen(s, prefix, n.end)
}

func (n *branch) prefixCount(s *Schema, prefix []byte, atDepth int) uint64 {
	lk := n.childleaf.key
	for depth := atDepth; depth < min(n.end, len(prefix)); depth++ {
		if lk[s.keyIndex(depth)] != prefix[depth] {
			return 0
		}
	}
	if len(prefix) <= n.end {
		return n.leafCount
	}
	child := n.table.get(prefix[n.end])
	if child == nil {
		return 0
	}
	return child.prefixCount(s, prefix, n.end)
}

func (n *branch) infixes(s *Schema, prefix []byte, infixLen, atDepth int, f func([]byte)) {
	plen := len(prefix)
	lk := n.childleaf.key
	for depth := atDepth; depth < min(n.end, plen); depth++ {
		if lk[s.keyIndex(depth)] != prefix[depth] {
			return
		}
	}

	// The whole infix lies within the implicit prefix, every leaf
	// below shares it.
	if plen+infixLen <= n.end {
		f(extractInfix(s, n.childleaf, plen, infixLen))
		return
	}

	// The prefix extends into a child.
	if plen > n.end {
		if child := n.table.get(prefix[n.end]); child != nil {
			child.infixes(s, prefix, infixLen, n.end, f)
		}
		return
	}

	// The prefix ends here but the infix reaches into the children.
	n.table.each(func(_ byte, child node) {
		child.infixes(s, prefix, infixLen, n.end, f)
	})
}

func (n *branch) each(f func(*leaf)) {
	n.table.each(func(_ byte, child node) {
		child.each(f)
	})
}
