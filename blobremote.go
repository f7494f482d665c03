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
	"context"

	"github.com/triblespace/go-tribles/remote"
)

// BlobSet doubles as a local blob backend, so sets can sit on either
// side of a remote transfer.
var (
	_ remote.BlobPull = (*BlobSet)(nil)
	_ remote.BlobPush = (*BlobSet)(nil)
)

// List enumerates the stored digests in ascending order.
func (bs *BlobSet) List(_ context.Context, f func(remote.Digest) error) error {
	var err error
	bs.Each(func(digest Value, _ []byte) {
		if err != nil {
			return
		}
		err = f(remote.Digest(digest))
	})
	return err
}

// PullRaw loads a blob, failing with a NotFoundError when the digest
// is absent.
func (bs *BlobSet) PullRaw(_ context.Context, digest remote.Digest) ([]byte, error) {
	blob, ok := bs.GetRaw(Value(digest))
	if !ok {
		return nil, &NotFoundError{Digest: Value(digest)}
	}
	return blob, nil
}

// PushRaw stores a blob and returns its digest.
func (bs *BlobSet) PushRaw(_ context.Context, blob []byte) (remote.Digest, error) {
	return remote.Digest(bs.PutRaw(blob)), nil
}

// PullHandle loads a typed blob from any pull backend and decodes it.
func PullHandle[T Bloblike, PT blobDecoder[T]](ctx context.Context, src remote.BlobPull, handle Handle[T]) (T, error) {
	var value T
	raw, err := src.PullRaw(ctx, remote.Digest(handle.digest))
	if err != nil {
		return value, err
	}
	if err := PT(&value).FromBlob(raw); err != nil {
		return value, err
	}
	return value, nil
}

// PushValue serializes a typed blob into any push backend and returns
// the handle the backend's digest implies.
func PushValue[T Bloblike](ctx context.Context, dst remote.BlobPush, value T) (Handle[T], error) {
	digest, err := dst.PushRaw(ctx, value.IntoBlob())
	if err != nil {
		return Handle[T]{}, err
	}
	return Handle[T]{digest: Value(digest)}, nil
}
