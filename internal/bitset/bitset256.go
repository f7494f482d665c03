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

// Package bitset implements a fixed 256-bit bitset, a mapping between
// the integers [0..255] and boolean values.
//
// The query engine uses it for variable sets and binding masks, the
// trie uses it for ascending child-byte enumeration.
package bitset

import (
	"fmt"
	"math/bits"
)

// BitSet256 represents a fixed size bitset from [0..255].
// The zero value is an empty set.
type BitSet256 [4]uint64

func (b *BitSet256) String() string {
	return fmt.Sprint(b.All())
}

// Set sets the bit.
func (b *BitSet256) Set(bit uint8) {
	b[bit>>6] |= 1 << (bit & 63)
}

// Clear clears the bit.
func (b *BitSet256) Clear(bit uint8) {
	b[bit>>6] &^= 1 << (bit & 63)
}

// Test reports whether the bit is set.
func (b *BitSet256) Test(bit uint8) bool {
	return b[bit>>6]&(1<<(bit&63)) != 0
}

// IsEmpty reports whether no bit is set.
func (b *BitSet256) IsEmpty() bool {
	return b[0]|b[1]|b[2]|b[3] == 0
}

// Size returns the number of set bits.
func (b *BitSet256) Size() int {
	return bits.OnesCount64(b[0]) + bits.OnesCount64(b[1]) +
		bits.OnesCount64(b[2]) + bits.OnesCount64(b[3])
}

// FirstSet returns the lowest set bit along with an ok code.
func (b *BitSet256) FirstSet() (first uint8, ok bool) {
	if x := bits.TrailingZeros64(b[0]); x != 64 {
		return uint8(x), true
	} else if x := bits.TrailingZeros64(b[1]); x != 64 {
		return uint8(x + 64), true
	} else if x := bits.TrailingZeros64(b[2]); x != 64 {
		return uint8(x + 128), true
	} else if x := bits.TrailingZeros64(b[3]); x != 64 {
		return uint8(x + 192), true
	}
	return
}

// LastSet returns the highest set bit along with an ok code.
func (b *BitSet256) LastSet() (last uint8, ok bool) {
	for w := 3; w >= 0; w-- {
		if b[w] != 0 {
			return uint8(w<<6 + 63 - bits.LeadingZeros64(b[w])), true
		}
	}
	return
}

// NextSet returns the next set bit at or after the given bit,
// along with an ok code.
func (b *BitSet256) NextSet(bit uint8) (uint8, bool) {
	wIdx := int(bit >> 6)

	// process the first (maybe partial) word
	if first := b[wIdx] >> (bit & 63); first != 0 {
		return bit + uint8(bits.TrailingZeros64(first)), true
	}

	for wIdx++; wIdx < 4; wIdx++ {
		if word := b[wIdx]; word != 0 {
			return uint8(wIdx<<6 + bits.TrailingZeros64(word)), true
		}
	}
	return 0, false
}

// Union sets b to the union b ∪ o.
func (b *BitSet256) Union(o *BitSet256) {
	b[0] |= o[0]
	b[1] |= o[1]
	b[2] |= o[2]
	b[3] |= o[3]
}

// Intersect sets b to the intersection b ∩ o.
func (b *BitSet256) Intersect(o *BitSet256) {
	b[0] &= o[0]
	b[1] &= o[1]
	b[2] &= o[2]
	b[3] &= o[3]
}

// Subtract clears every bit of b that is set in o.
func (b *BitSet256) Subtract(o *BitSet256) {
	b[0] &^= o[0]
	b[1] &^= o[1]
	b[2] &^= o[2]
	b[3] &^= o[3]
}

// All returns the set bits in ascending order.
func (b *BitSet256) All() []uint8 {
	all := make([]uint8, 0, b.Size())
	for w, word := range b {
		for word != 0 {
			all = append(all, uint8(w<<6+bits.TrailingZeros64(word)))
			word &= word - 1
		}
	}
	return all
}
