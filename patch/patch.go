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

// Package patch implements a persistent adaptive trie with cuckoo-style
// hashed child tables.
//
// The trie stores fixed-length binary keys as a set. It is path
// compressed, structurally shared between copies via reference-counted
// nodes with copy-on-write mutation, and it maintains a commutative
// 128-bit fingerprint per subtree, which makes set equality a single
// comparison and set union a fingerprint merge.
//
// A tree is parameterized by a Schema, which fixes the key length, a
// permutation of the key bytes that determines the indexing order, and a
// segmentation of the key bytes into fields. Segment-aware queries
// (SegmentedLen, Infixes) treat the tree as an index over the leading
// fields of the key.
package patch

import (
	"fmt"

	"github.com/dchest/siphash"
)

// MaxKeyLen is the largest supported key length in bytes.
const MaxKeyLen = 64

// The fixed SipHash-2-4 key under which every leaf is fingerprinted.
// It defines the fingerprint and must never change within a process.
const (
	sipKey0 = 0x87df79e1c9fbd4a0
	sipKey1 = 0x3a3b8e2f5c1d9b47
)

// Fingerprint is a 128-bit commutative set fingerprint. The fingerprint
// of a subtree is the XOR over the SipHash-2-4 fingerprints of its
// distinct keys.
type Fingerprint [2]uint64

// Xor combines two fingerprints.
func (f Fingerprint) Xor(o Fingerprint) Fingerprint {
	return Fingerprint{f[0] ^ o[0], f[1] ^ o[1]}
}

// IsZero reports whether f is the fingerprint of the empty set.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

func fingerprintKey(key []byte) Fingerprint {
	lo, hi := siphash.Hash128(sipKey0, sipKey1, key)
	return Fingerprint{lo, hi}
}

// Schema describes a key type: its length, the byte ordering under which
// the tree indexes it, and the segmentation of the key into fields.
//
// The ordering is a bijection from tree depths to key byte positions.
// The segmentation assigns a segment id to every key byte position.
// Within one segment the ordering must be strictly increasing, so that a
// segment occupies a contiguous ascending byte range of the key.
type Schema struct {
	keyLen    int
	treeToKey [MaxKeyLen]uint8
	keyToTree [MaxKeyLen]uint8
	segments  [MaxKeyLen]uint8
}

// NewSchema builds a Schema over keys of the given length. treeToKey
// maps tree depths to key byte positions and must be a permutation of
// [0, keyLen). segments assigns a segment id to every key byte position.
// NewSchema panics on a malformed description, as schemas are
// compile-time properties of an index.
func NewSchema(keyLen int, treeToKey []int, segments []int) *Schema {
	if keyLen < 1 || keyLen > MaxKeyLen {
		panic(fmt.Sprintf("patch: key length %d out of range [1, %d]", keyLen, MaxKeyLen))
	}
	if len(treeToKey) != keyLen || len(segments) != keyLen {
		panic("patch: ordering and segmentation must cover every key byte")
	}

	s := &Schema{keyLen: keyLen}
	var seen [MaxKeyLen]bool
	for depth, ki := range treeToKey {
		if ki < 0 || ki >= keyLen || seen[ki] {
			panic("patch: ordering is not a permutation of the key bytes")
		}
		seen[ki] = true
		s.treeToKey[depth] = uint8(ki)
		s.keyToTree[ki] = uint8(depth)
	}
	for ki, seg := range segments {
		if seg < 0 || seg > 255 {
			panic("patch: segment id out of range")
		}
		s.segments[ki] = uint8(seg)
	}

	// Each segment must map to a contiguous, strictly ascending key
	// byte range, otherwise infix extraction is undefined.
	for depth := 1; depth < keyLen; depth++ {
		prev, cur := s.treeToKey[depth-1], s.treeToKey[depth]
		if s.segments[prev] == s.segments[cur] && cur != prev+1 {
			panic("patch: ordering must be ascending within a segment")
		}
	}
	return s
}

// Identity returns a Schema that indexes keys in their natural byte
// order as a single segment.
func Identity(keyLen int) *Schema {
	order := make([]int, keyLen)
	segs := make([]int, keyLen)
	for i := range order {
		order[i] = i
	}
	return NewSchema(keyLen, order, segs)
}

// KeyLen returns the key length in bytes.
func (s *Schema) KeyLen() int { return s.keyLen }

// keyIndex maps a tree depth to the key byte position indexed there.
func (s *Schema) keyIndex(depth int) int { return int(s.treeToKey[depth]) }

// segment returns the segment id of a key byte position.
func (s *Schema) segment(keyIdx int) int { return int(s.segments[keyIdx]) }

// sameSegment reports whether two tree depths fall into the same key
// segment.
func (s *Schema) sameSegment(depthA, depthB int) bool {
	return s.segments[s.treeToKey[depthA]] == s.segments[s.treeToKey[depthB]]
}

// Entry is a key prepared for insertion. The precomputed leaf and
// fingerprint can be reused across many trees, which lets parallel
// indices over the same keys share their leaves.
type Entry struct {
	leaf *leaf
	hash Fingerprint
}

// NewEntry prepares a key for insertion. The key bytes are copied.
func NewEntry(key []byte) *Entry {
	return NewEntryWithValue(key, nil)
}

// NewEntryWithValue prepares a key carrying an associated payload.
func NewEntryWithValue(key, value []byte) *Entry {
	l := newLeaf(key, value)
	return &Entry{leaf: l, hash: l.hash}
}

// Key returns the entry's key bytes. The returned slice must not be
// modified.
func (e *Entry) Key() []byte { return e.leaf.key }

// Tree is a persistent adaptive trie over fixed-length keys.
// The zero value is not usable, use New.
//
// A Tree value supports any number of concurrent readers or one writer.
// Clones obtained from Clone are independent values that share structure
// and may be read and written concurrently with the original.
type Tree struct {
	schema *Schema
	root   node
}

// New returns an empty tree over the given schema.
func New(schema *Schema) *Tree {
	return &Tree{schema: schema}
}

// Schema returns the tree's schema.
func (t *Tree) Schema() *Schema { return t.schema }

// Clone returns an independent copy of the tree in constant time.
// The copy shares structure with the original until either is mutated.
func (t *Tree) Clone() *Tree {
	if t.root != nil {
		t.root.retain()
	}
	return &Tree{schema: t.schema, root: t.root}
}

// Release drops the tree's contents and returns it to the empty state,
// giving up the references it holds on shared structure.
func (t *Tree) Release() {
	if t.root != nil {
		t.root.release()
		t.root = nil
	}
}

// Insert adds the entry's key to the set. Inserting a key that is
// already present leaves the tree unchanged.
func (t *Tree) Insert(e *Entry) {
	if len(e.leaf.key) != t.schema.keyLen {
		panic(fmt.Sprintf("patch: entry key length %d does not match schema key length %d",
			len(e.leaf.key), t.schema.keyLen))
	}
	if t.root == nil {
		t.root = e.leaf.retain()
		return
	}
	t.root = t.root.insert(t.schema, e, 0)
}

// Get returns the payload stored with the key and whether the key is
// present. Keys inserted without a payload report a nil payload.
func (t *Tree) Get(key []byte) ([]byte, bool) {
	if t.root == nil || len(key) != t.schema.keyLen {
		return nil, false
	}
	l := t.root.get(t.schema, key, 0)
	if l == nil {
		return nil, false
	}
	return l.value, true
}

// Has reports whether the key is present.
func (t *Tree) Has(key []byte) bool {
	_, ok := t.Get(key)
	return ok
}

// Len returns the number of distinct keys in the set.
func (t *Tree) Len() uint64 {
	if t.root == nil {
		return 0
	}
	return t.root.count()
}

// Fingerprint returns the XOR over the fingerprints of all keys in the
// set. The empty set has the zero fingerprint.
func (t *Tree) Fingerprint() Fingerprint {
	if t.root == nil {
		return Fingerprint{}
	}
	return t.root.fingerprint()
}

// Equal reports whether two trees hold the same set of keys, by
// comparing their 128-bit fingerprints.
func (t *Tree) Equal(o *Tree) bool {
	return t.schema.keyLen == o.schema.keyLen &&
		t.Len() == o.Len() &&
		t.Fingerprint() == o.Fingerprint()
}

// Union adds every key of o to t. Subtrees that are shared between the
// two operands are re-shared instead of being walked.
func (t *Tree) Union(o *Tree) {
	if o.root == nil {
		return
	}
	if t.root == nil {
		t.root = o.root.retain()
		return
	}
	merged := unionNodes(t.schema, t.root, o.root, 0)
	t.root.release()
	t.root = merged
}

// HasPrefix reports whether any key starts with the given bytes in tree
// order.
func (t *Tree) HasPrefix(prefix []byte) bool {
	if len(prefix) > t.schema.keyLen {
		panic("patch: prefix longer than key")
	}
	if t.root == nil {
		return false
	}
	return t.root.hasPrefix(t.schema, prefix, 0)
}

// SegmentedLen returns the number of distinct key fragments below the
// prefix, counted within the segment that contains the first depth past
// the prefix.
func (t *Tree) SegmentedLen(prefix []byte) uint64 {
	if len(prefix) >= t.schema.keyLen {
		panic("patch: prefix must be shorter than the key")
	}
	if t.root == nil {
		return 0
	}
	return t.root.segmentedLen(t.schema, prefix, 0)
}

// PrefixCount returns the number of keys that start with the given
// bytes in tree order.
func (t *Tree) PrefixCount(prefix []byte) uint64 {
	if len(prefix) > t.schema.keyLen {
		panic("patch: prefix longer than key")
	}
	if t.root == nil {
		return 0
	}
	return t.root.prefixCount(t.schema, prefix, 0)
}

// Infixes calls f once for every distinct key fragment of infixLen
// bytes that follows the prefix, in ascending tree order. The fragment
// passed to f is only valid for the duration of the call.
//
// The fragment range, prefix end to infix end, must lie within a single
// key segment. An infixLen of zero degenerates into a prefix existence
// check that calls f at most once.
func (t *Tree) Infixes(prefix []byte, infixLen int, f func(infix []byte)) {
	plen := len(prefix)
	if infixLen < 0 || plen+infixLen > t.schema.keyLen {
		panic("patch: infix range exceeds the key")
	}
	if infixLen > 0 && !t.schema.sameSegment(plen, plen+infixLen-1) {
		panic("patch: infix range spans key segments")
	}
	if t.root == nil {
		return
	}
	t.root.infixes(t.schema, prefix, infixLen, 0, f)
}

// Each calls f for every key in ascending tree order, passing the key
// in its natural byte order together with its payload. The slices
// passed to f must not be retained.
func (t *Tree) Each(f func(key, value []byte)) {
	if t.root == nil {
		return
	}
	t.root.each(func(l *leaf) {
		f(l.key, l.value)
	})
}

// node is the closed sum over the two node kinds of the trie.
type node interface {
	// count returns the number of leaves below the node.
	count() uint64
	// countSegment returns the node's contribution to the segment
	// that contains atDepth.
	countSegment(s *Schema, atDepth int) uint64
	// fingerprint returns the XOR over the node's leaf fingerprints.
	fingerprint() Fingerprint
	// anyLeaf returns some leaf below the node. The implicit prefix
	// of a path-compressed branch is read from it.
	anyLeaf() *leaf
	// endDepth returns the tree depth at which the node ends, the
	// key length for leaves.
	endDepth(s *Schema) int

	// retain takes an additional reference on the node.
	retain() node
	// release drops a reference on the node.
	release()

	// insert consumes the caller's reference on the receiver and
	// returns a reference to the node that replaces it.
	insert(s *Schema, e *Entry, atDepth int) node

	get(s *Schema, key []byte, atDepth int) *leaf
	hasPrefix(s *Schema, prefix []byte, atDepth int) bool
	segmentedLen(s *Schema, prefix []byte, atDepth int) uint64
	prefixCount(s *Schema, prefix []byte, atDepth int) uint64
	infixes(s *Schema, prefix []byte, infixLen int, atDepth int, f func([]byte))
	each(f func(*leaf))
}
