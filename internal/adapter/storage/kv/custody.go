package kv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"

	"github.com/syndtr/goleveldb/leveldb"
)

var errBalanceOverflow = errors.New("custody balance overflow")

// CustodyLedger implements ports.AssetCustody. Balances are 8-byte
// big-endian values under identity 0x00 asset.
type CustodyLedger struct {
	store *Store
}

// NewCustodyLedger creates a new CustodyLedger.
func NewCustodyLedger(store *Store) *CustodyLedger {
	return &CustodyLedger{store: store}
}

func balanceKey(identity, asset string) []byte {
	return poolBalances.key([]byte(identity), []byte{0}, []byte(asset))
}

func readBalance(r reader, key []byte) (uint64, error) {
	raw, err := r.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read custody balance: %w", err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("custody balance %q: bad length %d", key, len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

func writeBalance(w writer, key []byte, amount uint64) error {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], amount)
	if err := w.Put(key, raw[:], nil); err != nil {
		return fmt.Errorf("write custody balance: %w", err)
	}
	return nil
}

func (l *CustodyLedger) BalanceOf(_ context.Context, tx ports.Tx, identity, asset string) (uint64, error) {
	t, err := asKVTx(tx)
	if err != nil {
		return 0, err
	}
	return readBalance(t.tr, balanceKey(identity, asset))
}

func (l *CustodyLedger) MoveCustody(_ context.Context, tx ports.Tx, from, to, asset string, amount uint64) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	fromKey, toKey := balanceKey(from, asset), balanceKey(to, asset)

	fromBal, err := readBalance(t.tr, fromKey)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return ports.ErrInsufficientCustody
	}
	if err := writeBalance(t.tr, fromKey, fromBal-amount); err != nil {
		return err
	}

	toBal, err := readBalance(t.tr, toKey)
	if err != nil {
		return err
	}
	sum, ok := domain.CheckedAdd(toBal, amount)
	if !ok {
		return errBalanceOverflow
	}
	return writeBalance(t.tr, toKey, sum)
}

// Credit adds amount to identity's balance in its own transaction. It is
// the operator funding path.
func (l *CustodyLedger) Credit(ctx context.Context, identity, asset string, amount uint64) error {
	tx, err := l.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	t := tx.(*kvTx)
	key := balanceKey(identity, asset)
	bal, err := readBalance(t.tr, key)
	if err != nil {
		return err
	}
	sum, ok := domain.CheckedAdd(bal, amount)
	if !ok {
		return errBalanceOverflow
	}
	if err := writeBalance(t.tr, key, sum); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
