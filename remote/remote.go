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

// Package remote connects blob sets to external content-addressed
// storage. It defines the pull and push capabilities a backend has to
// offer and a transfer primitive that copies every listed blob from
// one backend into another.
package remote

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Digest is a 32-byte content digest.
type Digest [32]byte

// BlobPull is the read side of a blob backend.
type BlobPull interface {
	// List calls f for every digest in the store and stops early if
	// f returns an error.
	List(ctx context.Context, f func(Digest) error) error

	// PullRaw loads the blob stored under a digest.
	PullRaw(ctx context.Context, digest Digest) ([]byte, error)
}

// BlobPush is the write side of a blob backend.
type BlobPush interface {
	// PushRaw stores a blob and returns the digest the backend
	// assigned to it.
	PushRaw(ctx context.Context, blob []byte) (Digest, error)
}

// BlobStore is a backend offering both directions.
type BlobStore interface {
	BlobPull
	BlobPush
}

// TransferOp names the stage at which a transfer failed.
type TransferOp int

const (
	// TransferList means the source failed to enumerate digests.
	TransferList TransferOp = iota
	// TransferLoad means a listed blob failed to load.
	TransferLoad
	// TransferStore means a loaded blob failed to store.
	TransferStore
)

func (op TransferOp) String() string {
	switch op {
	case TransferList:
		return "list"
	case TransferLoad:
		return "load"
	case TransferStore:
		return "store"
	}
	return "unknown"
}

// TransferError wraps a backend failure with the stage it occurred in
// and, past listing, the source digest it concerned.
type TransferError struct {
	Op     TransferOp
	Digest Digest
	Err    error
}

func (e *TransferError) Error() string {
	if e.Op == TransferList {
		return fmt.Sprintf("failed to transfer blobs: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to transfer blob %x: %s: %v", e.Digest, e.Op, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Mapping reports one transferred blob. The digests differ when source
// and target hash their content differently.
type Mapping struct {
	Src Digest
	Dst Digest
}

// transferWorkers bounds how many blobs are in flight at once.
const transferWorkers = 8

// Transfer copies every blob listed by the source into the target and
// calls report once per blob with either its digest mapping or the
// error that stopped it. A listing failure ends the transfer and is
// returned as a TransferError, blob-level failures are only reported.
//
// Blobs are pulled concurrently. Pushes and reports are serialized, so
// the target needs no concurrency support of its own.
func Transfer(ctx context.Context, src BlobPull, dst BlobPush, report func(Mapping, error)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(transferWorkers)

	var mu sync.Mutex

	listErr := src.List(ctx, func(digest Digest) error {
		g.Go(func() error {
			blob, err := src.PullRaw(ctx, digest)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report(Mapping{Src: digest}, &TransferError{Op: TransferLoad, Digest: digest, Err: err})
				return nil
			}
			target, err := dst.PushRaw(ctx, blob)
			if err != nil {
				report(Mapping{Src: digest}, &TransferError{Op: TransferStore, Digest: digest, Err: err})
				return nil
			}
			report(Mapping{Src: digest, Dst: target}, nil)
			return nil
		})
		return ctx.Err()
	})

	g.Wait()
	if listErr != nil {
		return &TransferError{Op: TransferList, Err: listErr}
	}
	return nil
}
