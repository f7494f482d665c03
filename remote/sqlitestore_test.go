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
	"errors"
	"fmt"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening the store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	digest, err := store.PushRaw(ctx, []byte("durable"))
	if err != nil {
		t.Fatalf("push: %v", err)
	}

	// Idempotent on identical content.
	again, err := store.PushRaw(ctx, []byte("durable"))
	if err != nil {
		t.Fatalf("second push: %v", err)
	}
	if again != digest {
		t.Fatalf("identical content produced different digests")
	}

	blob, err := store.PullRaw(ctx, digest)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if string(blob) != "durable" {
		t.Fatalf("round trip changed the content: %q", blob)
	}

	var missing Digest
	missing[7] = 0x11
	_, err = store.PullRaw(ctx, missing)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("missing blob: got %v, want a NotFoundError", err)
	}
}

func TestSQLiteStoreListAscending(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening the store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 32; i++ {
		if _, err := store.PushRaw(ctx, []byte(fmt.Sprintf("row-%d", i))); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	var prev Digest
	count := 0
	err = store.List(ctx, func(d Digest) error {
		if count > 0 && bytes.Compare(prev[:], d[:]) >= 0 {
			return errors.New("listing is not ascending")
		}
		prev = d
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if count != 32 {
		t.Fatalf("listed %d digests, want 32", count)
	}
}

func TestSQLiteToMemTransfer(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening the store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 16; i++ {
		if _, err := store.PushRaw(ctx, []byte(fmt.Sprintf("payload-%d", i))); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	dst := NewMemStore()
	transferred := 0
	err = Transfer(ctx, store, dst, func(m Mapping, err error) {
		if err != nil {
			t.Errorf("per-blob failure: %v", err)
			return
		}
		transferred++
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if transferred != 16 || dst.Len() != 16 {
		t.Fatalf("transferred %d blobs into %d, want 16", transferred, dst.Len())
	}
}
