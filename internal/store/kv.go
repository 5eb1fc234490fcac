package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// KVRepo is a durable string-keyed blob table.
type KVRepo struct {
	drv *entsql.Driver
}

// Get returns the value for key and whether it was present.
func (r *KVRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("value").
		From(entsql.Table(tableKV)).
		Where(entsql.EQ("key", key)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, false, fmt.Errorf("query kv %q: %w", key, err)
	}
	defer rows.Close()

	var values [][]byte
	if err := entsql.ScanSlice(rows, &values); err != nil {
		return nil, false, fmt.Errorf("scan kv %q: %w", key, err)
	}
	if len(values) == 0 {
		return nil, false, nil
	}
	return values[0], true, nil
}

// Put inserts or replaces the value for key.
func (r *KVRepo) Put(ctx context.Context, key string, value []byte) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableKV).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("put kv %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (r *KVRepo) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableKV).
		Where(entsql.EQ("key", key)).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete kv %q: %w", key, err)
	}
	return nil
}

// Keys lists keys starting with prefix, sorted.
func (r *KVRepo) Keys(ctx context.Context, prefix string) ([]string, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("key").
		From(entsql.Table(tableKV)).
		OrderBy("key")
	if prefix != "" {
		sel.Where(entsql.HasPrefix("key", prefix))
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list kv keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	if err := entsql.ScanSlice(rows, &keys); err != nil {
		return nil, fmt.Errorf("scan kv keys: %w", err)
	}
	return keys, nil
}
