package sessionstore

import (
	"context"

	"github.com/nayidisha/disha/internal/store"
)

// SQLite adapts the local database's kv table.
type SQLite struct {
	kv *store.KVRepo
}

// NewSQLite returns a Store backed by kv.
func NewSQLite(kv *store.KVRepo) *SQLite {
	return &SQLite{kv: kv}
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.kv.Get(ctx, key)
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	return s.kv.Put(ctx, key, value)
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, key)
}

func (s *SQLite) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.kv.Keys(ctx, prefix)
}
