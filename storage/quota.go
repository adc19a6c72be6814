package storage

import (
	"context"
	"fmt"
)

type quotaStore struct {
	Store
	maxBytes int64
}

// NewQuotaStore wraps inner so that Save rejects any entry whose key plus
// value exceeds maxBytes, the way browser storage refuses writes past its
// per-origin quota. A rejected batch writes nothing.
func NewQuotaStore(inner Store, maxBytes int64) Store {
	return &quotaStore{Store: inner, maxBytes: maxBytes}
}

func (s *quotaStore) Save(ctx context.Context, entries ...Entry) error {
	for _, e := range entries {
		if size := int64(len(e.Key) + len(e.Value)); size > s.maxBytes {
			return fmt.Errorf("%w: %s is %d bytes, quota %d", ErrQuotaExceeded, e.Key, size, s.maxBytes)
		}
	}
	return s.Store.Save(ctx, entries...)
}

// Close closes the wrapped store when it holds resources.
func (s *quotaStore) Close() error {
	return Close(s.Store)
}
