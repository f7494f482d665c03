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

import (
	"math"
	"sync/atomic"
)

// refcount tracks how many owners a node has. A count above one forces
// copy-on-write before any in-place mutation. Increments saturate by
// panic, a runaway sharing degree is a programmer error.
type refcount struct {
	n atomic.Uint32
}

func (r *refcount) init() {
	r.n.Store(1)
}

func (r *refcount) inc() {
	for {
		current := r.n.Load()
		if current == math.MaxUint32 {
			panic("patch: max refcount exceeded")
		}
		if r.n.CompareAndSwap(current, current+1) {
			return
		}
	}
}

// dec drops a reference and reports whether it was the last one.
func (r *refcount) dec() bool {
	return r.n.Add(^uint32(0)) == 0
}

// unique reports whether the caller holds the only reference.
func (r *refcount) unique() bool {
	return r.n.Load() == 1
}

// leaf holds one key and its optional payload. Leaves are immutable
// once created and may be shared by any number of trees.
type leaf struct {
	rc    refcount
	hash  Fingerprint
	key   []byte
	value []byte
}

func newLeaf(key, value []byte) *leaf {
	l := &leaf{
		key:   append([]byte(nil), key...),
		value: value,
	}
	l.hash = fingerprintKey(l.key)
	l.rc.init()
	return l
}

func (l *leaf) count() uint64 { return 1 }
func (l *leaf) countSegment(*Schema, int) uint64 { return 1 }
func (l *leaf) fingerprint() Fingerprint { return l.hash }
func (l *leaf) anyLeaf() *leaf { return l }
func (l *leaf) endDepth(s *Schema) int { return s.keyLen }

func (l *leaf) retain() node {
	l.rc.inc()
	return l
}

func (l *leaf) release() {
	l.rc.dec()
}

func (l *leaf) insert(s *Schema, e *Entry, atDepth int) node {
	for depth := atDepth; depth < s.keyLen; depth++ {
		idx := s.keyIndex(depth)
		if l.key[idx] != e.leaf.key[idx] {
			return newBranch2(s, depth, l, e.leaf.retain())
		}
	}
	// The key is already present.
	return l
}

func (l *leaf) get(s *Schema, key []byte, atDepth int) *leaf {
	for depth := atDepth; depth < s.keyLen; depth++ {
		idx := s.keyIndex(depth)
		if l.key[idx] != key[idx] {
			return nil
		}
	}
	return l
}

func (l *leaf) hasPrefix(s *Schema, prefix []byte, atDepth int) bool {
	for depth := atDepth; depth < len(prefix); depth++ {
		if l.key[s.keyIndex(depth)] != prefix[depth] {
			return false
		}
	}
	return true
}

func (l *leaf) segmentedLen(s *Schema, prefix []byte, atDepth int) uint64 {
	if !l.hasPrefix(s, prefix, atDepth) {
		return 0
	}
	return 1
}

func (l *leaf) prefixCount(s *Schema, prefix []byte, atDepth int) uint64 {
	if !l.hasPrefix(s, prefix, atDepth) {
		return 0
	}
	return 1
}

func (l *leaf) infixes(s *Schema, prefix []byte, infixLen, atDepth int, f func([]byte)) {
	if !l.hasPrefix(s, prefix, atDepth) {
		return
	}
	f(extractInfix(s, l, len(prefix), infixLen))
}

func (l *leaf) each(f func(*leaf)) {
	f(l)
}

// extractInfix reads the key fragment covering tree depths
// [plen, plen+infixLen) from a leaf. The schema guarantees that the
// fragment is a contiguous ascending byte range of the key.
func extractInfix(s *Schema, l *leaf, plen, infixLen int) []byte {
	if infixLen == 0 {
		return nil
	}
	// The range end is keyIndex(plen+infixLen-1) inclusive, the
	// ordering is not monotonic across segments so the index one past
	// the fragment may be anywhere in the key.
	start := s.keyIndex(plen)
	end := s.keyIndex(plen + infixLen - 1)
	return l.key[start : end+1]
}
