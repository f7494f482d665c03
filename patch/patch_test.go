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
	"bytes"
	"encoding/hex"
	mRand "math/rand"
	"sort"
	"testing"

	"github.com/dchest/siphash"
)

var (
	zeroKeyTest, _  = hex.DecodeString("0000000000000000000000000000000000000000000000000000000000000000")
	oneKeyTest, _   = hex.DecodeString("0000000000000000000000000000000000000000000000000000000000000001")
	ffx32KeyTest, _ = hex.DecodeString("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
)

func keyFingerprint(key []byte) Fingerprint {
	lo, hi := siphash.Hash128(sipKey0, sipKey1, key)
	return Fingerprint{lo, hi}
}

func randomKeys(rng *mRand.Rand, n, keyLen int) [][]byte {
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = make([]byte, keyLen)
		rng.Read(keys[i])
	}
	return keys
}

func TestInsertIntoEmpty(t *testing.T) {
	t.Parallel()

	tree := New(Identity(32))
	tree.Insert(NewEntry(zeroKeyTest))

	if got := tree.Len(); got != 1 {
		t.Fatalf("wrong length after first insert: got %d, want 1", got)
	}
	if !tree.Has(zeroKeyTest) {
		t.Fatalf("key %x not found after insert", zeroKeyTest)
	}
	if want := keyFingerprint(zeroKeyTest); tree.Fingerprint() != want {
		t.Fatalf("fingerprint mismatch: got %x, want %x", tree.Fingerprint(), want)
	}
}

func TestInsertThreeKeys(t *testing.T) {
	t.Parallel()

	tree := New(Identity(32))
	tree.Insert(NewEntry(zeroKeyTest))
	tree.Insert(NewEntry(oneKeyTest))
	tree.Insert(NewEntry(ffx32KeyTest))

	if got := tree.Len(); got != 3 {
		t.Fatalf("wrong length: got %d, want 3", got)
	}

	want := keyFingerprint(zeroKeyTest).
		Xor(keyFingerprint(oneKeyTest)).
		Xor(keyFingerprint(ffx32KeyTest))
	if tree.Fingerprint() != want {
		t.Fatalf("fingerprint is not the xor of the key fingerprints: got %x, want %x",
			tree.Fingerprint(), want)
	}

	if !tree.HasPrefix([]byte{0x00}) {
		t.Fatalf("missing prefix 00")
	}
	if tree.HasPrefix([]byte{0x80}) {
		t.Fatalf("unexpected prefix 80")
	}
}

func TestInsertIdempotent(t *testing.T) {
	t.Parallel()

	tree := New(Identity(32))
	for i := 0; i < 5; i++ {
		tree.Insert(NewEntry(zeroKeyTest))
		tree.Insert(NewEntry(oneKeyTest))
	}

	if got := tree.Len(); got != 2 {
		t.Fatalf("duplicate inserts changed the length: got %d, want 2", got)
	}
	want := keyFingerprint(zeroKeyTest).Xor(keyFingerprint(oneKeyTest))
	if tree.Fingerprint() != want {
		t.Fatalf("duplicate inserts changed the fingerprint")
	}
}

func TestInsertionOrderIrrelevant(t *testing.T) {
	t.Parallel()

	keys := [][]byte{zeroKeyTest, oneKeyTest, ffx32KeyTest}

	p := New(Identity(32))
	q := New(Identity(32))
	for _, k := range keys {
		p.Insert(NewEntry(k))
	}
	for i := len(keys) - 1; i >= 0; i-- {
		q.Insert(NewEntry(keys[i]))
	}

	if !p.Equal(q) {
		t.Fatalf("insertion order changed the set: %x != %x", p.Fingerprint(), q.Fingerprint())
	}

	p.Union(q)
	if got := p.Len(); got != 3 {
		t.Fatalf("union of equal sets changed the length: got %d, want 3", got)
	}
}

func TestInsertRandom(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(42))
	keys := randomKeys(rng, 4096, 32)

	tree := New(Identity(32))
	want := Fingerprint{}
	distinct := map[string]struct{}{}
	for _, k := range keys {
		if _, dup := distinct[string(k)]; !dup {
			distinct[string(k)] = struct{}{}
			want = want.Xor(keyFingerprint(k))
		}
		tree.Insert(NewEntry(k))
	}

	if got := tree.Len(); got != uint64(len(distinct)) {
		t.Fatalf("wrong length: got %d, want %d", got, len(distinct))
	}
	if tree.Fingerprint() != want {
		t.Fatalf("fingerprint does not xor-aggregate over distinct keys")
	}
	for _, k := range keys {
		if !tree.Has(k) {
			t.Fatalf("key %x missing after bulk insert", k)
		}
		for l := 0; l <= len(k); l++ {
			if !tree.HasPrefix(k[:l]) {
				t.Fatalf("prefix %x of present key not found", k[:l])
			}
		}
	}
}

func TestGetPayload(t *testing.T) {
	t.Parallel()

	tree := New(Identity(32))
	tree.Insert(NewEntryWithValue(zeroKeyTest, []byte("hello")))

	got, ok := tree.Get(zeroKeyTest)
	if !ok {
		t.Fatalf("key not found")
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("wrong payload: got %q", got)
	}
	if _, ok := tree.Get(oneKeyTest); ok {
		t.Fatalf("found a key that was never inserted")
	}
}

func TestCloneIsolation(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(7))
	keys := randomKeys(rng, 512, 32)

	p := New(Identity(32))
	for _, k := range keys {
		p.Insert(NewEntry(k))
	}

	q := p.Clone()
	preHash, preLen := q.Fingerprint(), q.Len()

	extra := randomKeys(rng, 512, 32)
	for _, k := range extra {
		p.Insert(NewEntry(k))
	}

	if q.Fingerprint() != preHash || q.Len() != preLen {
		t.Fatalf("mutating the original changed the clone")
	}
	for _, k := range keys {
		if !q.Has(k) {
			t.Fatalf("clone lost key %x", k)
		}
	}
	for _, k := range extra {
		if q.Has(k) {
			t.Fatalf("clone gained key %x inserted into the original", k)
		}
	}
}

func TestCloneMutateClone(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(11))
	keys := randomKeys(rng, 256, 32)

	p := New(Identity(32))
	for _, k := range keys {
		p.Insert(NewEntry(k))
	}
	q := p.Clone()

	extra := randomKeys(rng, 256, 32)
	for _, k := range extra {
		q.Insert(NewEntry(k))
	}

	for _, k := range extra {
		if p.Has(k) {
			t.Fatalf("original gained key %x inserted into the clone", k)
		}
	}
	for _, k := range keys {
		if !p.Has(k) || !q.Has(k) {
			t.Fatalf("shared key %x lost", k)
		}
	}
}

func TestUnionDisjoint(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(13))

	a := New(Identity(32))
	b := New(Identity(32))
	akeys := randomKeys(rng, 300, 32)
	bkeys := randomKeys(rng, 300, 32)
	for _, k := range akeys {
		a.Insert(NewEntry(k))
	}
	for _, k := range bkeys {
		b.Insert(NewEntry(k))
	}

	wantHash := a.Fingerprint().Xor(b.Fingerprint())
	wantLen := a.Len() + b.Len()

	a.Union(b)
	if a.Fingerprint() != wantHash {
		t.Fatalf("union fingerprint is not the xor of disjoint operands")
	}
	if a.Len() != wantLen {
		t.Fatalf("union length: got %d, want %d", a.Len(), wantLen)
	}
	for _, k := range append(akeys, bkeys...) {
		if !a.Has(k) {
			t.Fatalf("union lost key %x", k)
		}
	}
	for _, k := range bkeys {
		if !b.Has(k) {
			t.Fatalf("union mutated its operand")
		}
	}
}

func TestUnionOverlap(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(17))
	shared := randomKeys(rng, 200, 32)
	onlyA := randomKeys(rng, 100, 32)
	onlyB := randomKeys(rng, 100, 32)

	a := New(Identity(32))
	b := New(Identity(32))
	for _, k := range shared {
		a.Insert(NewEntry(k))
		b.Insert(NewEntry(k))
	}
	for _, k := range onlyA {
		a.Insert(NewEntry(k))
	}
	for _, k := range onlyB {
		b.Insert(NewEntry(k))
	}

	// Inclusion-exclusion under xor: the intersection cancels once.
	want := a.Fingerprint().Xor(b.Fingerprint())
	for _, k := range shared {
		want = want.Xor(keyFingerprint(k))
	}

	a.Union(b)
	if a.Fingerprint() != want {
		t.Fatalf("union fingerprint violates inclusion-exclusion")
	}
	if got := a.Len(); got != uint64(len(shared)+len(onlyA)+len(onlyB)) {
		t.Fatalf("union length: got %d, want %d", got, len(shared)+len(onlyA)+len(onlyB))
	}
}

func TestUnionSharedSubtrees(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(19))
	keys := randomKeys(rng, 500, 32)

	a := New(Identity(32))
	for _, k := range keys {
		a.Insert(NewEntry(k))
	}
	b := a.Clone()
	extra := randomKeys(rng, 50, 32)
	for _, k := range extra {
		b.Insert(NewEntry(k))
	}

	a.Union(b)
	if !a.Equal(b) {
		t.Fatalf("union with a superset clone did not converge")
	}
}

func TestInfixesAscending(t *testing.T) {
	t.Parallel()

	rng := mRand.New(mRand.NewSource(23))
	keys := randomKeys(rng, 1000, 32)

	tree := New(Identity(32))
	for _, k := range keys {
		tree.Insert(NewEntry(k))
	}

	var listed [][]byte
	tree.Infixes(nil, 32, func(infix []byte) {
		listed = append(listed, append([]byte(nil), infix...))
	})

	want := make([][]byte, len(keys))
	for i, k := range keys {
		want[i] = k
	}
	sort.Slice(want, func(i, j int) bool { return bytes.Compare(want[i], want[j]) < 0 })

	if len(listed) != len(want) {
		t.Fatalf("wrong number of infixes: got %d, want %d", len(listed), len(want))
	}
	for i := range want {
		if !bytes.Equal(listed[i], want[i]) {
			t.Fatalf("infix %d out of order: got %x, want %x", i, listed[i], want[i])
		}
	}
}

func TestInfixesPrefixFilter(t *testing.T) {
	t.Parallel()

	tree := New(Identity(32))
	var prefixed [][]byte
	rng := mRand.New(mRand.NewSource(29))
	for i := 0; i < 200; i++ {
		k := make([]byte, 32)
		rng.Read(k)
		if i%4 == 0 {
			k[0], k[1] = 0xab, 0xcd
			prefixed = append(prefixed, k)
		} else if k[0] == 0xab {
			k[0] = 0xac
		}
		tree.Insert(NewEntry(k))
	}

	count := 0
	tree.Infixes([]byte{0xab, 0xcd}, 30, func(infix []byte) {
		if len(infix) != 30 {
			t.Fatalf("wrong infix length %d", len(infix))
		}
		count++
	})
	if count != len(prefixed) {
		t.Fatalf("prefix filter: got %d infixes, want %d", count, len(prefixed))
	}
}

func TestInfixExistenceProbe(t *testing.T) {
	t.Parallel()

	tree := New(Identity(32))
	tree.Insert(NewEntry(oneKeyTest))

	calls := 0
	tree.Infixes(oneKeyTest[:4], 0, func(infix []byte) {
		if len(infix) != 0 {
			t.Fatalf("zero-length infix produced %d bytes", len(infix))
		}
		calls++
	})
	if calls != 1 {
		t.Fatalf("existence probe fired %d times, want 1", calls)
	}

	calls = 0
	tree.Infixes([]byte{0xff}, 0, func([]byte) { calls++ })
	if calls != 0 {
		t.Fatalf("existence probe fired for an absent prefix")
	}
}

func TestSegmentedLen(t *testing.T) {
	t.Parallel()

	// Two 4-byte segments over an 8-byte key.
	order := []int{0, 1, 2, 3, 4, 5, 6, 7}
	segs := []int{0, 0, 0, 0, 1, 1, 1, 1}
	tree := New(NewSchema(8, order, segs))

	put := func(hi, lo uint32) {
		k := []byte{
			byte(hi >> 24), byte(hi >> 16), byte(hi >> 8), byte(hi),
			byte(lo >> 24), byte(lo >> 16), byte(lo >> 8), byte(lo),
		}
		tree.Insert(NewEntry(k))
	}

	put(1, 10)
	put(1, 11)
	put(1, 12)
	put(2, 10)
	put(3, 10)

	// Distinct first segments.
	if got := tree.SegmentedLen(nil); got != 3 {
		t.Fatalf("distinct first segments: got %d, want 3", got)
	}
	// Distinct second segments below each first segment.
	if got := tree.SegmentedLen([]byte{0, 0, 0, 1}); got != 3 {
		t.Fatalf("distinct extensions of first group: got %d, want 3", got)
	}
	if got := tree.SegmentedLen([]byte{0, 0, 0, 2}); got != 1 {
		t.Fatalf("distinct extensions of second group: got %d, want 1", got)
	}
	if got := tree.SegmentedLen([]byte{0, 0, 0, 9}); got != 0 {
		t.Fatalf("extensions of an absent group: got %d, want 0", got)
	}
}

func TestPrefixCount(t *testing.T) {
	t.Parallel()

	tree := New(Identity(32))
	rng := mRand.New(mRand.NewSource(31))
	inGroup := 0
	for i := 0; i < 300; i++ {
		k := make([]byte, 32)
		rng.Read(k)
		if i%3 == 0 {
			k[0] = 0x42
			inGroup++
		} else if k[0] == 0x42 {
			k[0] = 0x43
		}
		tree.Insert(NewEntry(k))
	}

	if got := tree.PrefixCount([]byte{0x42}); got != uint64(inGroup) {
		t.Fatalf("prefix count: got %d, want %d", got, inGroup)
	}
	if got := tree.PrefixCount(nil); got != tree.Len() {
		t.Fatalf("empty prefix count: got %d, want %d", got, tree.Len())
	}
}

func TestOrderedSchema(t *testing.T) {
	t.Parallel()

	// Index 8-byte keys by their second half first.
	order := []int{4, 5, 6, 7, 0, 1, 2, 3}
	segs := []int{0, 0, 0, 0, 1, 1, 1, 1}
	tree := New(NewSchema(8, order, segs))

	tree.Insert(NewEntry([]byte{1, 1, 1, 1, 9, 9, 9, 9}))
	tree.Insert(NewEntry([]byte{2, 2, 2, 2, 9, 9, 9, 9}))
	tree.Insert(NewEntry([]byte{3, 3, 3, 3, 8, 8, 8, 8}))

	// Prefixes are given in tree order, the second half leads.
	if got := tree.SegmentedLen([]byte{9, 9, 9, 9}); got != 2 {
		t.Fatalf("distinct first halves under 99999999: got %d, want 2", got)
	}
	if !tree.HasPrefix([]byte{8, 8, 8, 8}) {
		t.Fatalf("reordered prefix not found")
	}

	var infixes [][]byte
	tree.Infixes([]byte{9, 9, 9, 9}, 4, func(infix []byte) {
		infixes = append(infixes, append([]byte(nil), infix...))
	})
	if len(infixes) != 2 {
		t.Fatalf("wrong number of reordered infixes: %d", len(infixes))
	}
	if !bytes.Equal(infixes[0], []byte{1, 1, 1, 1}) || !bytes.Equal(infixes[1], []byte{2, 2, 2, 2}) {
		t.Fatalf("reordered infixes wrong or out of order: %x", infixes)
	}
}

func TestByteTableGrowth(t *testing.T) {
	t.Parallel()

	// 256 keys differing in their first byte force the root table
	// through every capacity.
	tree := New(Identity(32))
	for i := 0; i < 256; i++ {
		k := make([]byte, 32)
		k[0] = byte(i)
		tree.Insert(NewEntry(k))
	}

	if got := tree.Len(); got != 256 {
		t.Fatalf("wrong length after saturating a branch: got %d, want 256", got)
	}
	for i := 0; i < 256; i++ {
		k := make([]byte, 32)
		k[0] = byte(i)
		if !tree.Has(k) {
			t.Fatalf("key with leading byte %02x lost during table growth", i)
		}
	}
}

func TestEntryReuseAcrossTrees(t *testing.T) {
	t.Parallel()

	a := New(Identity(32))
	b := New(Identity(32))

	e := NewEntry(oneKeyTest)
	a.Insert(e)
	b.Insert(e)

	if !a.Has(oneKeyTest) || !b.Has(oneKeyTest) {
		t.Fatalf("entry reuse across trees lost the key")
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("entry reuse produced diverging fingerprints")
	}
}

func TestSchemaValidation(t *testing.T) {
	t.Parallel()

	expectPanic := func(name string, f func()) {
		defer func() {
			if recover() == nil {
				t.Fatalf("%s did not panic", name)
			}
		}()
		f()
	}

	expectPanic("duplicate index", func() {
		NewSchema(2, []int{0, 0}, []int{0, 0})
	})
	expectPanic("non-ascending segment", func() {
		NewSchema(3, []int{0, 2, 1}, []int{0, 0, 0})
	})
	expectPanic("infix across segments", func() {
		tree := New(NewSchema(2, []int{0, 1}, []int{0, 1}))
		tree.Infixes(nil, 2, func([]byte) {})
	})
}
