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

// HashTribleSet is a map-backed triple index. It trades the structural
// sharing and fingerprinting of TribleSet for plain hash lookups and
// serves as the fallback index for data that lives outside the tries.
type HashTribleSet struct {
	E map[Id]struct{}
	A map[Id]struct{}
	V map[Value]struct{}

	EA map[Id]map[Id]struct{}
	EV map[Id]map[Value]struct{}
	AE map[Id]map[Id]struct{}
	AV map[Id]map[Value]struct{}
	VE map[Value]map[Id]struct{}
	VA map[Value]map[Id]struct{}

	EAV map[[2]Id]map[Value]struct{}
	EVA map[idValueKey]map[Id]struct{}
	AVE map[idValueKey]map[Id]struct{}

	All map[Trible]struct{}
}

type idValueKey struct {
	id  Id
	val Value
}

// NewHashTribleSet returns an empty hash index.
func NewHashTribleSet() *HashTribleSet {
	return &HashTribleSet{
		E:   map[Id]struct{}{},
		A:   map[Id]struct{}{},
		V:   map[Value]struct{}{},
		EA:  map[Id]map[Id]struct{}{},
		EV:  map[Id]map[Value]struct{}{},
		AE:  map[Id]map[Id]struct{}{},
		AV:  map[Id]map[Value]struct{}{},
		VE:  map[Value]map[Id]struct{}{},
		VA:  map[Value]map[Id]struct{}{},
		EAV: map[[2]Id]map[Value]struct{}{},
		EVA: map[idValueKey]map[Id]struct{}{},
		AVE: map[idValueKey]map[Id]struct{}{},
		All: map[Trible]struct{}{},
	}
}

// Len returns the number of triples.
func (s *HashTribleSet) Len() int {
	return len(s.All)
}

// Has reports whether the triple is present.
func (s *HashTribleSet) Has(t Trible) bool {
	_, ok := s.All[t]
	return ok
}

// Add inserts one triple into every map.
func (s *HashTribleSet) Add(t Trible) {
	e, a, v := t.E(), t.A(), t.V()

	s.E[e] = struct{}{}
	s.A[a] = struct{}{}
	s.V[v] = struct{}{}

	putPair(s.EA, e, a)
	putPair(s.EV, e, v)
	putPair(s.AE, a, e)
	putPair(s.AV, a, v)
	putPair(s.VE, v, e)
	putPair(s.VA, v, a)

	putPair(s.EAV, [2]Id{e, a}, v)
	putPair(s.EVA, idValueKey{e, v}, a)
	putPair(s.AVE, idValueKey{a, v}, e)

	s.All[t] = struct{}{}
}

// Each calls f for every triple in unspecified order.
func (s *HashTribleSet) Each(f func(Trible)) {
	for t := range s.All {
		f(t)
	}
}

// Pattern returns a constraint binding the three variables to the
// entity, attribute and value positions of the triples in this index.
func (s *HashTribleSet) Pattern(e, a, v Variable) Constraint {
	return &hashTribleSetConstraint{e: e, a: a, v: v, set: s}
}

func putPair[K comparable, V comparable](m map[K]map[V]struct{}, k K, v V) {
	inner, ok := m[k]
	if !ok {
		inner = map[V]struct{}{}
		m[k] = inner
	}
	inner[v] = struct{}{}
}
