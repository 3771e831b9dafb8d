package kv

import (
	"context"
	"sort"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
)

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	store *Store
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(store *Store) *WithdrawalRepo {
	return &WithdrawalRepo{store: store}
}

func (r *WithdrawalRepo) Create(_ context.Context, tx ports.Tx, w *domain.WithdrawalRequest) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	return t.insert(poolWithdrawals.key(w.Address.Bytes()), w)
}

func (r *WithdrawalRepo) GetByAddress(_ context.Context, addr domain.Address) (*domain.WithdrawalRequest, error) {
	return getRecord[domain.WithdrawalRequest](r.store.db, poolWithdrawals.key(addr.Bytes()))
}

func (r *WithdrawalRepo) GetByAddressForUpdate(_ context.Context, tx ports.Tx, addr domain.Address) (*domain.WithdrawalRequest, error) {
	t, err := asKVTx(tx)
	if err != nil {
		return nil, err
	}
	return getRecord[domain.WithdrawalRequest](t.tr, poolWithdrawals.key(addr.Bytes()))
}

// Update keeps an already stored provider choice; the field is write-once.
func (r *WithdrawalRepo) Update(_ context.Context, tx ports.Tx, w *domain.WithdrawalRequest) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	key := poolWithdrawals.key(w.Address.Bytes())

	stored, err := getRecord[domain.WithdrawalRequest](t.tr, key)
	if err != nil {
		return err
	}
	next := *w
	if stored != nil && stored.SelectedProvider != nil {
		next.SelectedProvider = stored.SelectedProvider
	}
	next.Version++
	if err := t.swap(key, w.Version, &next); err != nil {
		return err
	}
	w.Version = next.Version
	return nil
}

// List scans the withdrawal pool for records the identity requested or was
// selected to pay out, newest first.
func (r *WithdrawalRepo) List(_ context.Context, params ports.ListParams) ([]domain.WithdrawalRequest, int64, error) {
	all, err := scan(r.store.db, poolWithdrawals, func(w *domain.WithdrawalRequest) bool {
		isProvider := w.SelectedProvider != nil && *w.SelectedProvider == params.Identity
		if w.Payee != params.Identity && !isProvider {
			return false
		}
		return params.Status == nil || string(w.Status) == *params.Status
	})
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, params), int64(len(all)), nil
}
