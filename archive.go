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

import (
	"bytes"
	"errors"
	"math/bits"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/triblespace/go-tribles/internal/succinct"
	"github.com/triblespace/go-tribles/patch"
)

var errEmptyArchive = errors.New("cannot archive an empty triple set")

// Archive is a read-optimized, immutable rendering of a TribleSet.
// Every distinct value of the set, with ids embedded as values, forms
// a sorted domain. Per field an Elias-Fano sequence maps triple ranks
// to domain indices in that field's primary order, and per ordering a
// wavelet matrix holds the domain indices of the ordering's last
// field.
type Archive struct {
	Domain []Value

	EOffsets *succinct.EliasFano
	AOffsets *succinct.EliasFano
	VOffsets *succinct.EliasFano

	EAV *succinct.WaveletMatrix
	EVA *succinct.WaveletMatrix
	AEV *succinct.WaveletMatrix
	AVE *succinct.WaveletMatrix
	VEA *succinct.WaveletMatrix
	VAE *succinct.WaveletMatrix
}

// NewArchive builds the archive of a triple set. The set must not be
// empty.
func NewArchive(set *TribleSet) (*Archive, error) {
	tripleCount := int(set.Len())
	if tripleCount == 0 {
		return nil, errEmptyArchive
	}

	domain := buildDomain(set)
	width := uint(bits.Len(uint(len(domain) - 1)))
	if width == 0 {
		width = 1
	}

	domainIndex := func(v Value) uint64 {
		i := sort.Search(len(domain), func(i int) bool {
			return bytes.Compare(domain[i][:], v[:]) >= 0
		})
		return uint64(i)
	}

	a := &Archive{Domain: domain}

	universe := uint64(len(domain))
	a.EOffsets = fieldOffsets(set.EAV, IdLen, tripleCount, universe, domainIndex, idFragmentValue)
	a.AOffsets = fieldOffsets(set.AEV, IdLen, tripleCount, universe, domainIndex, idFragmentValue)
	a.VOffsets = fieldOffsets(set.VEA, ValueLen, tripleCount, universe, domainIndex, fragmentValue)

	lastField := func(tree *patch.Tree, extract func(Trible) Value) *succinct.WaveletMatrix {
		symbols := make([]uint64, 0, tripleCount)
		tree.Each(func(key, _ []byte) {
			var t Trible
			copy(t[:], key)
			symbols = append(symbols, domainIndex(extract(t)))
		})
		return succinct.NewWaveletMatrix(symbols, width)
	}

	var g errgroup.Group
	g.Go(func() error { a.EAV = lastField(set.EAV, tribleV); return nil })
	g.Go(func() error { a.EVA = lastField(set.EVA, tribleA); return nil })
	g.Go(func() error { a.AEV = lastField(set.AEV, tribleV); return nil })
	g.Go(func() error { a.AVE = lastField(set.AVE, tribleE); return nil })
	g.Go(func() error { a.VEA = lastField(set.VEA, tribleA); return nil })
	g.Go(func() error { a.VAE = lastField(set.VAE, tribleE); return nil })
	g.Wait()

	return a, nil
}

func tribleE(t Trible) Value { return IdValue(t.E()) }
func tribleA(t Trible) Value { return IdValue(t.A()) }
func tribleV(t Trible) Value { return t.V() }

func idFragmentValue(fragment []byte) Value {
	var v Value
	copy(v[IdLen:], fragment)
	return v
}

func fragmentValue(fragment []byte) Value {
	var v Value
	copy(v[:], fragment)
	return v
}

// buildDomain merges the distinct entities, attributes and values of
// the set into one sorted, deduplicated value domain.
func buildDomain(set *TribleSet) []Value {
	var domain []Value
	set.EAV.Infixes(nil, IdLen, func(infix []byte) {
		domain = append(domain, idFragmentValue(infix))
	})
	set.AEV.Infixes(nil, IdLen, func(infix []byte) {
		domain = append(domain, idFragmentValue(infix))
	})
	set.VEA.Infixes(nil, ValueLen, func(infix []byte) {
		domain = append(domain, fragmentValue(infix))
	})

	sort.Slice(domain, func(i, j int) bool {
		return bytes.Compare(domain[i][:], domain[j][:]) < 0
	})
	dedup := domain[:0]
	for i, v := range domain {
		if i == 0 || v != dedup[len(dedup)-1] {
			dedup = append(dedup, v)
		}
	}
	return dedup
}

// fieldOffsets encodes, for every triple in the tree's order, the
// domain index of the tree's first field. The sequence is monotone
// because the domain shares the tree's byte order.
func fieldOffsets(tree *patch.Tree, fieldLen, tripleCount int, universe uint64, domainIndex func(Value) uint64, fragment func([]byte) Value) *succinct.EliasFano {
	values := make([]uint64, 0, tripleCount)
	tree.Infixes(nil, fieldLen, func(infix []byte) {
		idx := domainIndex(fragment(infix))
		count := tree.PrefixCount(infix)
		for i := uint64(0); i < count; i++ {
			values = append(values, idx)
		}
	})
	return succinct.NewEliasFano(values, universe)
}
