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
	"golang.org/x/sync/errgroup"

	"github.com/triblespace/go-tribles/patch"
)

// TribleSet is a set of triples held under all six field orderings, so
// that any combination of bound fields has an aligned index. The six
// trees store the same canonical 64-byte keys and share their leaves.
type TribleSet struct {
	EAV, EVA, AEV, AVE, VEA, VAE *patch.Tree
}

// NewTribleSet returns an empty triple set.
func NewTribleSet() *TribleSet {
	return &TribleSet{
		EAV: patch.New(orderEAV),
		EVA: patch.New(orderEVA),
		AEV: patch.New(orderAEV),
		AVE: patch.New(orderAVE),
		VEA: patch.New(orderVEA),
		VAE: patch.New(orderVAE),
	}
}

func (s *TribleSet) trees() [6]*patch.Tree {
	return [6]*patch.Tree{s.EAV, s.EVA, s.AEV, s.AVE, s.VEA, s.VAE}
}

// Add inserts one triple into all six indices. The six trees share a
// single leaf for the triple.
func (s *TribleSet) Add(t Trible) {
	e := patch.NewEntry(t[:])
	for _, tree := range s.trees() {
		tree.Insert(e)
	}
}

// AddAll inserts a batch of triples, fanning the six indices out over
// one goroutine each.
func (s *TribleSet) AddAll(ts []Trible) {
	entries := make([]*patch.Entry, len(ts))
	for i := range ts {
		entries[i] = patch.NewEntry(ts[i][:])
	}

	var g errgroup.Group
	for _, tree := range s.trees() {
		tree := tree
		g.Go(func() error {
			for _, e := range entries {
				tree.Insert(e)
			}
			return nil
		})
	}
	g.Wait()
}

// Union adds every triple of o to s, merging the six index pairs in
// parallel.
func (s *TribleSet) Union(o *TribleSet) {
	st, ot := s.trees(), o.trees()
	var g errgroup.Group
	for i := range st {
		i := i
		g.Go(func() error {
			st[i].Union(ot[i])
			return nil
		})
	}
	g.Wait()
}

// Clone returns an independent copy sharing structure with s.
func (s *TribleSet) Clone() *TribleSet {
	return &TribleSet{
		EAV: s.EAV.Clone(),
		EVA: s.EVA.Clone(),
		AEV: s.AEV.Clone(),
		AVE: s.AVE.Clone(),
		VEA: s.VEA.Clone(),
		VAE: s.VAE.Clone(),
	}
}

// Len returns the number of triples in the set.
func (s *TribleSet) Len() uint64 {
	return s.EAV.Len()
}

// Fingerprint returns the commutative fingerprint of the set.
func (s *TribleSet) Fingerprint() patch.Fingerprint {
	return s.EAV.Fingerprint()
}

// Equal reports whether two sets hold the same triples.
func (s *TribleSet) Equal(o *TribleSet) bool {
	return s.EAV.Equal(o.EAV)
}

// Has reports whether the triple is present.
func (s *TribleSet) Has(t Trible) bool {
	return s.EAV.Has(t[:])
}

// Each calls f for every triple, in entity-attribute-value order.
func (s *TribleSet) Each(f func(Trible)) {
	s.EAV.Each(func(key, _ []byte) {
		var t Trible
		copy(t[:], key)
		f(t)
	})
}

// Pattern returns a constraint binding the three variables to the
// entity, attribute and value positions of the triples in this set.
func (s *TribleSet) Pattern(e, a, v Variable) Constraint {
	return &tribleSetConstraint{e: e, a: a, v: v, set: s}
}
