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
	"encoding/hex"
	mRand "math/rand"
	"testing"
)

func hexId(t *testing.T, s string) Id {
	t.Helper()
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != IdLen {
		t.Fatalf("bad id literal %q", s)
	}
	var id Id
	copy(id[:], raw)
	return id
}

func hexValue(t *testing.T, s string) Value {
	t.Helper()
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != ValueLen {
		t.Fatalf("bad value literal %q", s)
	}
	var v Value
	copy(v[:], raw)
	return v
}

func randomTribles(rng *mRand.Rand, entities, attributes, n int) []Trible {
	es := make([]Id, entities)
	as := make([]Id, attributes)
	for i := range es {
		rng.Read(es[i][:])
	}
	for i := range as {
		rng.Read(as[i][:])
	}

	ts := make([]Trible, n)
	for i := range ts {
		var v Value
		rng.Read(v[:])
		ts[i] = NewTrible(es[rng.Intn(len(es))], as[rng.Intn(len(as))], v)
	}
	return ts
}

func TestTribleFields(t *testing.T) {
	t.Parallel()

	e := hexId(t, "01010101010101010101010101010101")
	a := hexId(t, "02020202020202020202020202020202")
	v := hexValue(t, "0303030303030303030303030303030303030303030303030303030303030303")

	tr := NewTrible(e, a, v)
	if tr.E() != e || tr.A() != a || tr.V() != v {
		t.Fatalf("field extraction does not invert construction")
	}
}

func TestValueIdRoundTrip(t *testing.T) {
	t.Parallel()

	id := NewId()
	back, err := ValueId(IdValue(id))
	if err != nil {
		t.Fatalf("embedded id failed to parse: %v", err)
	}
	if back != id {
		t.Fatalf("id round trip changed the id")
	}

	var bad Value
	bad[0] = 1
	if _, err := ValueId(bad); err == nil {
		t.Fatalf("value with high bytes set parsed as an id")
	}
}

func TestSixIndicesAgree(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(3))
	ts := randomTribles(rng, 20, 10, 2000)

	set := NewTribleSet()
	for _, tr := range ts {
		set.Add(tr)
	}

	trees := set.trees()
	for i, tree := range trees {
		if tree.Len() != trees[0].Len() {
			t.Fatalf("index %d disagrees on the count: %d != %d", i, tree.Len(), trees[0].Len())
		}
	}
	for _, tr := range ts {
		for i, tree := range trees {
			if !tree.Has(tr[:]) {
				t.Fatalf("index %d lost triple %x", i, tr)
			}
		}
	}
}

func TestAddAllMatchesAdd(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(5))
	ts := randomTribles(rng, 10, 5, 500)

	one := NewTribleSet()
	for _, tr := range ts {
		one.Add(tr)
	}
	bulk := NewTribleSet()
	bulk.AddAll(ts)

	if !one.Equal(bulk) {
		t.Fatalf("bulk load diverged from sequential insertion")
	}
	for i, tree := range bulk.trees() {
		if tree.Fingerprint() != bulk.EAV.Fingerprint() {
			t.Fatalf("bulk index %d has a diverging fingerprint", i)
		}
	}
}

func TestSegmentedCounts(t *testing.T) {
	t.Parallel()

	e := hexId(t, "01000000000000000000000000000016")
	a1 := hexId(t, "02000000000000000000000000000016")
	a2 := hexId(t, "04000000000000000000000000000016")
	v1 := hexValue(t, "0300000000000000000000000000000000000000000000000000000000000032")
	v2 := hexValue(t, "0500000000000000000000000000000000000000000000000000000000000032")

	set := NewTribleSet()
	set.Add(NewTrible(e, a1, v1))
	set.Add(NewTrible(e, a2, v2))

	if got := set.EAV.SegmentedLen(e[:]); got != 2 {
		t.Fatalf("attributes under the entity: got %d, want 2", got)
	}
	if got := set.AEV.SegmentedLen(a1[:]); got != 1 {
		t.Fatalf("entities under the attribute: got %d, want 1", got)
	}
	if got := set.EAV.SegmentedLen(nil); got != 1 {
		t.Fatalf("distinct entities: got %d, want 1", got)
	}
	if got := set.VEA.SegmentedLen(nil); got != 2 {
		t.Fatalf("distinct values: got %d, want 2", got)
	}
}

func TestTribleSetUnionClone(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(9))
	left := randomTribles(rng, 8, 4, 300)
	right := randomTribles(rng, 8, 4, 300)

	a := NewTribleSet()
	a.AddAll(left)
	b := NewTribleSet()
	b.AddAll(right)

	snapshot := a.Clone()
	a.Union(b)

	if snapshot.Len() != uint64(lenDistinct(left)) {
		t.Fatalf("union mutated an earlier clone")
	}
	for _, tr := range right {
		if !a.Has(tr) {
			t.Fatalf("union lost triple %x", tr)
		}
		if snapshot.Has(tr) {
			t.Fatalf("union leaked into an earlier clone")
		}
	}
}

func lenDistinct(ts []Trible) int {
	seen := map[Trible]struct{}{}
	for _, tr := range ts {
		seen[tr] = struct{}{}
	}
	return len(seen)
}
