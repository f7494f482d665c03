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

package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
)

// NotFoundError reports that a backend holds no blob under a digest.
type NotFoundError struct {
	Digest Digest
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no blob for digest %x", e.Digest)
}

// MemStore is an in-memory blob backend, mostly useful as the far side
// of tests and as the reference behavior for real backends.
// It is safe for concurrent use.
type MemStore struct {
	mu    sync.RWMutex
	blobs map[Digest][]byte
	hash  func([]byte) Digest
}

// NewMemStore returns an empty store using SHA-256 digests.
func NewMemStore() *MemStore {
	return &MemStore{
		blobs: map[Digest][]byte{},
		hash:  func(b []byte) Digest { return sha256.Sum256(b) },
	}
}

// List enumerates the stored digests in ascending order.
func (m *MemStore) List(ctx context.Context, f func(Digest) error) error {
	m.mu.RLock()
	digests := make([]Digest, 0, len(m.blobs))
	for d := range m.blobs {
		digests = append(digests, d)
	}
	m.mu.RUnlock()

	sort.Slice(digests, func(i, j int) bool {
		return bytes.Compare(digests[i][:], digests[j][:]) < 0
	})
	for _, d := range digests {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// PullRaw loads a blob.
func (m *MemStore) PullRaw(_ context.Context, digest Digest) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[digest]
	if !ok {
		return nil, &NotFoundError{Digest: digest}
	}
	return blob, nil
}

// PushRaw stores a blob under its content digest.
func (m *MemStore) PushRaw(_ context.Context, blob []byte) (Digest, error) {
	digest := m.hash(blob)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[digest]; !ok {
		m.blobs[digest] = append([]byte(nil), blob...)
	}
	return digest, nil
}

// Len returns the number of stored blobs.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
