package drc

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"zgw/pkg/platform/sentinel"
	"zgw/pkg/platform/tx"
)

// DocumentBackend stores version content blobs. Keys are opaque to callers;
// the service derives them from document id and version number.
type DocumentBackend interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MemoryBackend implements DocumentBackend for tests and local development.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: map[string][]byte{}}
}

func (b *MemoryBackend) Put(_ context.Context, key string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read blob: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data
	return int64(len(data)), nil
}

func (b *MemoryBackend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.blobs[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}

// PostgresBackend stores blobs in a bytea table next to the document rows, so
// content commits in the same transaction as metadata.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) q(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return b.db
}

func (b *PostgresBackend) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read blob: %w", err)
	}
	_, err = b.q(ctx).ExecContext(ctx, `
		INSERT INTO drc_content (key, data) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data`,
		key, data)
	if err != nil {
		return 0, fmt.Errorf("store blob: %w", err)
	}
	return int64(len(data)), nil
}

func (b *PostgresBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	var data []byte
	err := b.q(ctx).QueryRowContext(ctx, `SELECT data FROM drc_content WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load blob: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.q(ctx).ExecContext(ctx, `DELETE FROM drc_content WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
