// Package kv is an embedded record store on goleveldb. Records are JSON
// documents keyed by a one-byte pool prefix followed by the record address.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"crosspay/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// pool is the key prefix of one record family.
type pool byte

const (
	poolProfiles    pool = 'P'
	poolTransfers   pool = 'T'
	poolWithdrawals pool = 'W'
	poolProviders   pool = 'L'
	poolBalances    pool = 'B'
	poolAudit       pool = 'A'
	poolIdempotency pool = 'I'
)

func (p pool) prefix() []byte {
	return []byte{byte(p)}
}

func (p pool) key(parts ...[]byte) []byte {
	n := 1
	for _, part := range parts {
		n += len(part)
	}
	k := make([]byte, 0, n)
	k = append(k, byte(p))
	for _, part := range parts {
		k = append(k, part...)
	}
	return k
}

var errForeignTx = errors.New("kv: transaction was not started by this store")

// Store owns the leveldb handle.
type Store struct {
	db  *leveldb.DB
	log zerolog.Logger
}

// Open opens (or creates) the database at path. An empty path keeps
// everything in memory.
func Open(path string, log zerolog.Logger) (*Store, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}

	log.Info().Str("path", path).Msg("LevelDB record store opened")
	return &Store{db: db, log: log}, nil
}

// Close releases the database. Open transactions are discarded.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin opens a write transaction. leveldb admits one transaction at a
// time, so Begin blocks until the previous one commits or rolls back.
func (s *Store) Begin(ctx context.Context) (ports.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tr, err := s.db.OpenTransaction()
	if err != nil {
		return nil, fmt.Errorf("open transaction: %w", err)
	}
	return &kvTx{tr: tr}, nil
}

type kvTx struct {
	mu   sync.Mutex
	tr   *leveldb.Transaction
	done bool
}

func (t *kvTx) Commit(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return leveldb.ErrClosed
	}
	if err := t.tr.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.done = true
	return nil
}

func (t *kvTx) Rollback(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.tr.Discard()
	t.done = true
	return nil
}

// swap writes rec at key if the stored record is still at version expect.
func (t *kvTx) swap(key []byte, expect int64, rec any) error {
	raw, err := t.tr.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return ports.ErrStaleRecord
	}
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}

	var stored struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("decode record version: %w", err)
	}
	if stored.Version != expect {
		return ports.ErrStaleRecord
	}
	return putRecord(t.tr, key, rec)
}

// insert writes rec at key unless something already lives there.
func (t *kvTx) insert(key []byte, rec any) error {
	exists, err := t.tr.Has(key, nil)
	if err != nil {
		return fmt.Errorf("check record: %w", err)
	}
	if exists {
		return ports.ErrAddressInUse
	}
	return putRecord(t.tr, key, rec)
}

func asKVTx(tx ports.Tx) (*kvTx, error) {
	t, ok := tx.(*kvTx)
	if !ok {
		return nil, errForeignTx
	}
	return t, nil
}

// reader is satisfied by both *leveldb.DB and *leveldb.Transaction.
type reader interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
}

type writer interface {
	Put(key, value []byte, wo *opt.WriteOptions) error
}

// getRecord decodes the record at key. A missing key yields (nil, nil).
func getRecord[T any](r reader, key []byte) (*T, error) {
	raw, err := r.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	rec := new(T)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func putRecord(w writer, key []byte, rec any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := w.Put(key, raw, nil); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// scan decodes every record of a pool, in key order, keeping those for
// which keep returns true.
func scan[T any](db *leveldb.DB, p pool, keep func(*T) bool) ([]T, error) {
	iter := db.NewIterator(util.BytesPrefix(p.prefix()), nil)
	defer iter.Release()

	var out []T
	for iter.Next() {
		var rec T
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		if keep(&rec) {
			out = append(out, rec)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// page slices out one page of params from a filtered result set.
func page[T any](all []T, params ports.ListParams) []T {
	start := params.Offset()
	if start >= len(all) {
		return nil
	}
	end := len(all)
	if params.PageSize > 0 && start+params.PageSize < end {
		end = start + params.PageSize
	}
	return all[start:end]
}
