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
	"crypto/sha256"
	"fmt"

	"github.com/triblespace/go-tribles/patch"
)

// BlobParseError reports that a blob's bytes did not decode as the
// target type.
type BlobParseError struct {
	Reason string
}

func (e *BlobParseError) Error() string {
	return fmt.Sprintf("cannot parse blob: %s", e.Reason)
}

// NotFoundError reports that no blob is stored under a digest.
type NotFoundError struct {
	Digest Value
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no blob for digest %x", e.Digest)
}

// Bloblike is implemented by types that serialize into a blob.
type Bloblike interface {
	IntoBlob() []byte
}

// blobDecoder constrains the pointer side of a Bloblike type.
type blobDecoder[T any] interface {
	*T
	FromBlob([]byte) error
}

// Handle is a typed reference to a blob: its content digest plus a
// phantom type tag recording what the bytes decode as.
type Handle[T Bloblike] struct {
	digest Value
}

// Digest returns the content digest the handle wraps.
func (h Handle[T]) Digest() Value { return h.digest }

// HandleFromDigest wraps a raw digest without checking that a matching
// blob exists anywhere.
func HandleFromDigest[T Bloblike](digest Value) Handle[T] {
	return Handle[T]{digest: digest}
}

// Value embeds the handle's digest into a triple value slot.
func (h Handle[T]) Value() Value { return h.digest }

// HashFunc digests a serialized blob. The default is SHA-256.
type HashFunc func([]byte) Value

func sha256Hash(b []byte) Value {
	return Value(sha256.Sum256(b))
}

// BlobSet is a persistent mapping from content digests to blobs,
// stored in an identity-ordered trie so that digest enumeration and
// set algebra come for free.
type BlobSet struct {
	blobs *patch.Tree
	hash  HashFunc
}

// NewBlobSet returns an empty blob set using SHA-256 digests.
func NewBlobSet() *BlobSet {
	return NewBlobSetWithHash(sha256Hash)
}

// NewBlobSetWithHash returns an empty blob set using the given digest
// function.
func NewBlobSetWithHash(hash HashFunc) *BlobSet {
	return &BlobSet{blobs: patch.New(valueSchema), hash: hash}
}

// PutRaw stores a blob and returns its digest. Storing the same bytes
// twice leaves the set unchanged.
func (bs *BlobSet) PutRaw(blob []byte) Value {
	digest := bs.hash(blob)
	bs.blobs.Insert(patch.NewEntryWithValue(digest[:], blob))
	return digest
}

// GetRaw returns the blob stored under a digest.
func (bs *BlobSet) GetRaw(digest Value) ([]byte, bool) {
	return bs.blobs.Get(digest[:])
}

// Len returns the number of blobs.
func (bs *BlobSet) Len() uint64 {
	return bs.blobs.Len()
}

// Equal reports whether two sets hold the same digests.
func (bs *BlobSet) Equal(o *BlobSet) bool {
	return bs.blobs.Equal(o.blobs)
}

// Clone returns an independent copy sharing structure with bs.
func (bs *BlobSet) Clone() *BlobSet {
	return &BlobSet{blobs: bs.blobs.Clone(), hash: bs.hash}
}

// Union adds every blob of o to bs.
func (bs *BlobSet) Union(o *BlobSet) {
	bs.blobs.Union(o.blobs)
}

// Each calls f for every digest and blob, in ascending digest order.
func (bs *BlobSet) Each(f func(digest Value, blob []byte)) {
	bs.blobs.Each(func(key, value []byte) {
		var d Value
		copy(d[:], key)
		f(d, value)
	})
}

// Put serializes a value, stores it and returns its typed handle.
func Put[T Bloblike](bs *BlobSet, value T) Handle[T] {
	return Handle[T]{digest: bs.PutRaw(value.IntoBlob())}
}

// Get loads the blob behind a handle and decodes it. It fails with a
// NotFoundError if the digest is absent and with a BlobParseError if
// the bytes do not decode.
func Get[T Bloblike, PT blobDecoder[T]](bs *BlobSet, handle Handle[T]) (T, error) {
	var value T
	raw, ok := bs.GetRaw(handle.digest)
	if !ok {
		return value, &NotFoundError{Digest: handle.digest}
	}
	if err := PT(&value).FromBlob(raw); err != nil {
		return value, err
	}
	return value, nil
}

// Keep returns the subset of blobs whose digest occurs in the value
// position of any triple in the set.
//
// Keep is deliberately conservative: a blob survives when any triple
// value matches its digest, no matter what type the triple's attribute
// declares. Discriminating by attribute type would let an attacker
// starve the collector by writing values that merely look like live
// digests, turning garbage collection into a preimage probing game.
func (bs *BlobSet) Keep(tribles *TribleSet) *BlobSet {
	const (
		varE Variable = 0
		varA Variable = 1
		varV Variable = 2
	)

	kept := NewBlobSetWithHash(bs.hash)
	q := NewQuery(And(
		&blobSetConstraint{variable: varV, set: bs},
		tribles.Pattern(varE, varA, varV),
	))
	q.ForEach(func(b *Binding) {
		digest, _ := b.Get(varV)
		if kept.blobs.Has(digest[:]) {
			return
		}
		if blob, ok := bs.GetRaw(digest); ok {
			kept.blobs.Insert(patch.NewEntryWithValue(digest[:], blob))
		}
	})
	return kept
}

// blobSetConstraint binds a variable to the digest column of a blob
// set.
type blobSetConstraint struct {
	variable Variable
	set      *BlobSet
}

func (c *blobSetConstraint) Variables() VariableSet {
	var vs VariableSet
	vs.Set(c.variable)
	return vs
}

func (c *blobSetConstraint) Estimate(Variable, *Binding) int {
	return int(c.set.blobs.Len())
}

func (c *blobSetConstraint) Propose(Variable, *Binding) []Value {
	proposals := make([]Value, 0, c.set.blobs.Len())
	c.set.blobs.Infixes(nil, ValueLen, func(infix []byte) {
		var v Value
		copy(v[:], infix)
		proposals = append(proposals, v)
	})
	return proposals
}

func (c *blobSetConstraint) Confirm(_ Variable, _ *Binding, proposals []Value) []Value {
	kept := proposals[:0]
	for _, p := range proposals {
		if c.set.blobs.Has(p[:]) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Text is a string blob.
type Text string

// IntoBlob serializes the text.
func (t Text) IntoBlob() []byte { return []byte(t) }

// FromBlob decodes the text.
func (t *Text) FromBlob(b []byte) error {
	*t = Text(b)
	return nil
}

// RawBlob is an opaque byte blob.
type RawBlob []byte

// IntoBlob returns the bytes unchanged.
func (r RawBlob) IntoBlob() []byte { return r }

// FromBlob copies the bytes.
func (r *RawBlob) FromBlob(b []byte) error {
	*r = append(RawBlob(nil), b...)
	return nil
}
