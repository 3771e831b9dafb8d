package kv

import (
	"context"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
)

// ProviderRepo implements ports.ProviderRepository.
type ProviderRepo struct {
	store *Store
}

// NewProviderRepo creates a new ProviderRepo.
func NewProviderRepo(store *Store) *ProviderRepo {
	return &ProviderRepo{store: store}
}

func (r *ProviderRepo) Create(_ context.Context, tx ports.Tx, p *domain.LiquidityProvider) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	return t.insert(poolProviders.key(p.Address.Bytes()), p)
}

func (r *ProviderRepo) GetByAddress(_ context.Context, addr domain.Address) (*domain.LiquidityProvider, error) {
	return getRecord[domain.LiquidityProvider](r.store.db, poolProviders.key(addr.Bytes()))
}

func (r *ProviderRepo) GetByAddressForUpdate(_ context.Context, tx ports.Tx, addr domain.Address) (*domain.LiquidityProvider, error) {
	t, err := asKVTx(tx)
	if err != nil {
		return nil, err
	}
	return getRecord[domain.LiquidityProvider](t.tr, poolProviders.key(addr.Bytes()))
}

func (r *ProviderRepo) Update(_ context.Context, tx ports.Tx, p *domain.LiquidityProvider) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	next := *p
	next.Version++
	if err := t.swap(poolProviders.key(p.Address.Bytes()), p.Version, &next); err != nil {
		return err
	}
	p.Version = next.Version
	return nil
}
