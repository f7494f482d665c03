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

// WaveletMatrix answers access and rank queries over a sequence of
// small integers in O(width) bit vector operations. Level i holds bit
// width-1-i of every element, reordered by the bits above it.
type WaveletMatrix struct {
	levels []*BitVector
	zeros  []int
	width  uint
	n      int
}

// NewWaveletMatrix builds a matrix over the sequence, all of whose
// values must fit the bit width.
func NewWaveletMatrix(values []uint64, width uint) *WaveletMatrix {
	if width < 1 || width > 64 {
		panic("succinct: wavelet width out of range")
	}

	wm := &WaveletMatrix{
		levels: make([]*BitVector, width),
		zeros:  make([]int, width),
		width:  width,
		n:      len(values),
	}

	cur := append([]uint64(nil), values...)
	next := make([]uint64, len(values))
	for lv := 0; lv < int(width); lv++ {
		shift := width - 1 - uint(lv)
		builder := NewBitVectorBuilder(len(cur))

		// Stable partition by the level's bit, zeros first.
		k := 0
		for _, v := range cur {
			if v>>shift&1 == 0 {
				builder.Push(false)
				next[k] = v
				k++
			} else {
				builder.Push(true)
			}
		}
		wm.zeros[lv] = k
		for _, v := range cur {
			if v>>shift&1 == 1 {
				next[k] = v
				k++
			}
		}

		wm.levels[lv] = builder.Build(len(cur))
		cur, next = next, cur
	}
	return wm
}

// Len returns the sequence length.
func (wm *WaveletMatrix) Len() int { return wm.n }

// Access returns the value at a position.
func (wm *WaveletMatrix) Access(pos int) uint64 {
	var value uint64
	for lv, level := range wm.levels {
		value <<= 1
		if level.Get(pos) {
			value |= 1
			pos = wm.zeros[lv] + level.Rank1(pos)
		} else {
			pos = level.Rank0(pos)
		}
	}
	return value
}

// Rank returns how often the value occurs strictly before pos.
func (wm *WaveletMatrix) Rank(value uint64, pos int) int {
	start, end := 0, pos
	for lv, level := range wm.levels {
		bit := value >> (wm.width - 1 - uint(lv)) & 1
		if bit == 1 {
			start = wm.zeros[lv] + level.Rank1(start)
			end = wm.zeros[lv] + level.Rank1(end)
		} else {
			start = level.Rank0(start)
			end = level.Rank0(end)
		}
	}
	return end - start
}

// Select returns the position of the k-th occurrence of the value,
// counting from zero, or -1 if there are fewer occurrences.
func (wm *WaveletMatrix) Select(value uint64, k int) int {
	// Invert Rank by binary search, occurrences are monotone in the
	// position.
	lo, hi := 0, wm.n
	if wm.Rank(value, hi) <= k {
		return -1
	}
	for lo < hi {
		mid := (lo + hi) / 2
		if wm.Rank(value, mid+1) <= k {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
