package drc

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
)

// cmisKeyLimit is the longest identifier the CMIS metadata model accepts.
const cmisKeyLimit = 100

// CMISBackend adapts a content store to CMIS identifier constraints. Keys
// over the metadata limit are replaced by a stable digest so the same version
// always maps to the same stored object.
type CMISBackend struct {
	inner DocumentBackend
}

func NewCMISBackend(inner DocumentBackend) *CMISBackend {
	return &CMISBackend{inner: inner}
}

var _ DocumentBackend = (*CMISBackend)(nil)

// shortenKey maps an internal content key onto a CMIS-safe identifier. Keys
// within the limit pass through unchanged.
func shortenKey(key string) string {
	if len(key) <= cmisKeyLimit {
		return key
	}
	sum := sha1.Sum([]byte(key))
	digest := hex.EncodeToString(sum[:])
	head := key[:cmisKeyLimit-len(digest)-1]
	return head + "-" + digest
}

func (b *CMISBackend) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	return b.inner.Put(ctx, shortenKey(key), r)
}

func (b *CMISBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.inner.Get(ctx, shortenKey(key))
}

func (b *CMISBackend) Delete(ctx context.Context, key string) error {
	return b.inner.Delete(ctx, shortenKey(key))
}
