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

// IntVector packs fixed-width integers into machine words.
type IntVector struct {
	words []uint64
	width uint
	n     int
}

// NewIntVector returns an empty vector of the given bit width,
// preallocated for n entries. The width must be in [1, 64].
func NewIntVector(n int, width uint) *IntVector {
	if width < 1 || width > 64 {
		panic("succinct: int width out of range")
	}
	words := (n*int(width) + 63) / 64
	return &IntVector{words: make([]uint64, 0, words), width: width}
}

// Push appends a value, which must fit the width.
func (v *IntVector) Push(x uint64) {
	if v.width < 64 && x>>v.width != 0 {
		panic("succinct: value exceeds int width")
	}
	bitPos := uint(v.n) * v.width
	word := int(bitPos >> 6)
	shift := bitPos & 63

	for need := int((bitPos + v.width + 63) >> 6); len(v.words) < need; {
		v.words = append(v.words, 0)
	}
	v.words[word] |= x << shift
	if shift+v.width > 64 {
		v.words[word+1] |= x >> (64 - shift)
	}
	v.n++
}

// Len returns the number of entries.
func (v *IntVector) Len() int { return v.n }

// Get returns the entry at a position.
func (v *IntVector) Get(pos int) uint64 {
	bitPos := uint(pos) * v.width
	word := int(bitPos >> 6)
	shift := bitPos & 63

	x := v.words[word] >> shift
	if shift+v.width > 64 {
		x |= v.words[word+1] << (64 - shift)
	}
	if v.width == 64 {
		return x
	}
	return x & (1<<v.width - 1)
}
