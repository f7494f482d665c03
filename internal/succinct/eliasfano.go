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

package succinct

import (
	"math/bits"
)

// EliasFano stores a monotone non-decreasing integer sequence in
// near-optimal space. Positional access runs a select on the high
// bits. The low bits of every value are stored verbatim, the high
// bits in a unary-coded bit vector.
type EliasFano struct {
	low  *IntVector
	high *BitVector
	l    uint
	n    int
}

// NewEliasFano encodes a non-decreasing sequence of values below the
// universe bound.
func NewEliasFano(values []uint64, universe uint64) *EliasFano {
	n := len(values)
	if n == 0 {
		return &EliasFano{low: NewIntVector(0, 1), high: NewBitVectorBuilder(1).Build(1)}
	}

	// Optimal low-bit width, floor(log2(u/n)) clamped to [0, 63].
	var l uint
	if universe > uint64(n) {
		l = uint(bits.Len64(universe/uint64(n)) - 1)
	}

	lowWidth := l
	if lowWidth == 0 {
		lowWidth = 1
	}
	low := NewIntVector(n, lowWidth)
	highBits := NewBitVectorBuilder(n + int(universe>>l) + 1)

	var prev uint64
	for i, v := range values {
		if v < prev {
			panic("succinct: sequence is not monotone")
		}
		prev = v

		if l > 0 {
			low.Push(v & (1<<l - 1))
		} else {
			low.Push(0)
		}
		highBits.SetAt(int(v>>l) + i)
	}

	return &EliasFano{
		low:  low,
		high: highBits.Build(n + int(values[n-1]>>l) + 1),
		l:    l,
		n:    n,
	}
}

// Len returns the number of encoded values.
func (ef *EliasFano) Len() int { return ef.n }

// Access returns the value at a position.
func (ef *EliasFano) Access(pos int) uint64 {
	high := uint64(ef.high.Select1(pos) - pos)
	if ef.l == 0 {
		return high
	}
	return high<<ef.l | ef.low.Get(pos)
}
