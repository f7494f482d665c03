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
	"math/bits"

	"github.com/triblespace/go-tribles/internal/bitset"
)

// byteTable is a cuckoo-hashed table from key bytes to child nodes.
// Capacities run through {2, 4, 8, 16, 32, 64, 128, 256}. Every entry
// lives in one of its two buckets. At capacity 256 the first bucket
// function is the identity and placement can no longer fail.
//
// The set of present bytes is mirrored in a bitset, which gives
// membership checks a fast path and enumeration a deterministic
// ascending order independent of slot layout.
type byteTable struct {
	present bitset.BitSet256
	slots   []tableSlot
}

type tableSlot struct {
	key   byte
	child node
}

// A displacement chain longer than this means the table is effectively
// full and must grow.
const maxDisplacements = 8

func newByteTable(capacity int) byteTable {
	return byteTable{slots: make([]tableSlot, capacity)}
}

func (t *byteTable) bucket1(b byte) int {
	return int(b) & (len(t.slots) - 1)
}

func (t *byteTable) bucket2(b byte) int {
	return int(bits.Reverse8(b)) & (len(t.slots) - 1)
}

// get returns the child stored under the byte, or nil.
func (t *byteTable) get(b byte) node {
	if !t.present.Test(b) {
		return nil
	}
	if s := &t.slots[t.bucket1(b)]; s.child != nil && s.key == b {
		return s.child
	}
	if s := &t.slots[t.bucket2(b)]; s.child != nil && s.key == b {
		return s.child
	}
	return nil
}

// update replaces the child stored under an existing byte.
func (t *byteTable) update(b byte, child node) {
	if s := &t.slots[t.bucket1(b)]; s.child != nil && s.key == b {
		s.child = child
		return
	}
	if s := &t.slots[t.bucket2(b)]; s.child != nil && s.key == b {
		s.child = child
		return
	}
	panic("patch: update of byte not present in table")
}

// insert places a new byte into the table, growing it as often as
// needed. The byte must not be present yet.
func (t *byteTable) insert(b byte, child node) {
	// The bit is set before placement: a failed cuckoo chain hands
	// back some other displaced entry, not necessarily this one.
	t.present.Set(b)
	cur := tableSlot{key: b, child: child}
	for {
		var ok bool
		cur, ok = t.place(cur)
		if ok {
			return
		}
		t.grow()
	}
}

// place tries to fit the slot into its buckets, displacing residents
// along the cuckoo chain. On failure it returns the slot left without
// a home, which is never lost.
func (t *byteTable) place(cur tableSlot) (tableSlot, bool) {
	h1, h2 := t.bucket1(cur.key), t.bucket2(cur.key)
	if t.slots[h1].child == nil {
		t.slots[h1] = cur
		return tableSlot{}, true
	}
	if t.slots[h2].child == nil {
		t.slots[h2] = cur
		return tableSlot{}, true
	}

	pos := h1
	for i := 0; i < maxDisplacements; i++ {
		cur, t.slots[pos] = t.slots[pos], cur

		// Move the evicted resident to its alternate bucket.
		if t.bucket1(cur.key) == pos {
			pos = t.bucket2(cur.key)
		} else {
			pos = t.bucket1(cur.key)
		}
		if t.slots[pos].child == nil {
			t.slots[pos] = cur
			return tableSlot{}, true
		}
	}
	return cur, false
}

// grow moves the table to the next capacity, re-placing every entry.
// Re-placement can fail again on an unlucky byte distribution, in which
// case the capacity doubles once more. 256 always succeeds.
func (t *byteTable) grow() {
	entries := make([]tableSlot, 0, t.present.Size())
	for _, s := range t.slots {
		if s.child != nil {
			entries = append(entries, s)
		}
	}

	for capacity := len(t.slots) * 2; ; capacity *= 2 {
		t.slots = make([]tableSlot, capacity)
		refitted := true
		for _, e := range entries {
			if _, ok := t.place(e); !ok {
				refitted = false
				break
			}
		}
		if refitted {
			return
		}
	}
}

// each calls f for every entry in ascending byte order.
func (t *byteTable) each(f func(b byte, child node)) {
	for b, ok := t.present.FirstSet(); ok; {
		f(byte(b), t.get(byte(b)))
		if b == 255 {
			return
		}
		b, ok = t.present.NextSet(b + 1)
	}
}

// clone returns a copy of the table. The caller is responsible for
// retaining the children.
func (t *byteTable) clone() byteTable {
	c := byteTable{present: t.present}
	c.slots = append([]tableSlot(nil), t.slots...)
	return c
}
