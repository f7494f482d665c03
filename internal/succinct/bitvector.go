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

// Package succinct holds the compressed sequence structures backing
// the read-optimized triple archive: rank and select enabled bit
// vectors, packed integer vectors, Elias-Fano sequences and wavelet
// matrices.
package succinct

import (
	"github.com/bits-and-blooms/bitset"
)

// BitVector is an immutable bit sequence with rank and select support.
type BitVector struct {
	bits *bitset.BitSet
	n    int
	ones int
}

// BitVectorBuilder accumulates bits in append order.
type BitVectorBuilder struct {
	bits *bitset.BitSet
	n    int
	ones int
}

// NewBitVectorBuilder returns a builder with capacity for n bits.
func NewBitVectorBuilder(n int) *BitVectorBuilder {
	return &BitVectorBuilder{bits: bitset.New(uint(n))}
}

// Push appends one bit.
func (b *BitVectorBuilder) Push(bit bool) {
	if bit {
		b.bits.Set(uint(b.n))
		b.ones++
	}
	b.n++
}

// SetAt sets the bit at a position beyond the pushed range, extending
// the vector. Positions in between stay zero.
func (b *BitVectorBuilder) SetAt(pos int) {
	b.bits.Set(uint(pos))
	b.ones++
	if pos >= b.n {
		b.n = pos + 1
	}
}

// Build freezes the builder into a vector of the given final length.
func (b *BitVectorBuilder) Build(n int) *BitVector {
	if n < b.n {
		n = b.n
	}
	return &BitVector{bits: b.bits, n: n, ones: b.ones}
}

// Len returns the number of bits.
func (v *BitVector) Len() int { return v.n }

// Ones returns the number of set bits.
func (v *BitVector) Ones() int { return v.ones }

// Get returns the bit at a position.
func (v *BitVector) Get(pos int) bool {
	return v.bits.Test(uint(pos))
}

// Rank1 returns the number of set bits strictly before pos.
func (v *BitVector) Rank1(pos int) int {
	if pos <= 0 {
		return 0
	}
	return int(v.bits.Rank(uint(pos - 1)))
}

// Rank0 returns the number of clear bits strictly before pos.
func (v *BitVector) Rank0(pos int) int {
	return pos - v.Rank1(pos)
}

// Select1 returns the position of the k-th set bit, counting from
// zero. k must be below Ones.
func (v *BitVector) Select1(k int) int {
	// Binary search for the smallest position whose inclusive rank
	// exceeds k.
	lo, hi := 0, v.n-1
	for lo < hi {
		mid := (lo + hi) / 2
		if v.Rank1(mid+1) <= k {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
