package kv

import (
	"context"
	"sort"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
)

// TransferRepo implements ports.TransferRepository.
type TransferRepo struct {
	store *Store
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(store *Store) *TransferRepo {
	return &TransferRepo{store: store}
}

func (r *TransferRepo) Create(_ context.Context, tx ports.Tx, tr *domain.TransferRequest) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	return t.insert(poolTransfers.key(tr.Address.Bytes()), tr)
}

func (r *TransferRepo) GetByAddress(_ context.Context, addr domain.Address) (*domain.TransferRequest, error) {
	return getRecord[domain.TransferRequest](r.store.db, poolTransfers.key(addr.Bytes()))
}

func (r *TransferRepo) GetByAddressForUpdate(_ context.Context, tx ports.Tx, addr domain.Address) (*domain.TransferRequest, error) {
	t, err := asKVTx(tx)
	if err != nil {
		return nil, err
	}
	return getRecord[domain.TransferRequest](t.tr, poolTransfers.key(addr.Bytes()))
}

func (r *TransferRepo) Update(_ context.Context, tx ports.Tx, tr *domain.TransferRequest) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	next := *tr
	next.Version++
	if err := t.swap(poolTransfers.key(tr.Address.Bytes()), tr.Version, &next); err != nil {
		return err
	}
	tr.Version = next.Version
	return nil
}

// List scans the transfer pool for records naming the identity as sender
// or receiver, newest first.
func (r *TransferRepo) List(_ context.Context, params ports.ListParams) ([]domain.TransferRequest, int64, error) {
	all, err := scan(r.store.db, poolTransfers, func(t *domain.TransferRequest) bool {
		if t.Sender != params.Identity && t.Receiver != params.Identity {
			return false
		}
		return params.Status == nil || string(t.Status) == *params.Status
	})
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, params), int64(len(all)), nil
}
