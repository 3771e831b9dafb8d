package kv

import (
	"context"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
)

// ProfileRepo implements ports.ProfileRepository.
type ProfileRepo struct {
	store *Store
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(store *Store) *ProfileRepo {
	return &ProfileRepo{store: store}
}

func (r *ProfileRepo) Create(_ context.Context, tx ports.Tx, p *domain.UserProfile) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	return t.insert(poolProfiles.key(p.Address.Bytes()), p)
}

func (r *ProfileRepo) GetByAddress(_ context.Context, addr domain.Address) (*domain.UserProfile, error) {
	return getRecord[domain.UserProfile](r.store.db, poolProfiles.key(addr.Bytes()))
}

// GetByAddressForUpdate reads through tx. The store's single-writer
// transaction already excludes every other writer.
func (r *ProfileRepo) GetByAddressForUpdate(_ context.Context, tx ports.Tx, addr domain.Address) (*domain.UserProfile, error) {
	t, err := asKVTx(tx)
	if err != nil {
		return nil, err
	}
	return getRecord[domain.UserProfile](t.tr, poolProfiles.key(addr.Bytes()))
}

func (r *ProfileRepo) Update(_ context.Context, tx ports.Tx, p *domain.UserProfile) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	next := *p
	next.Version++
	if err := t.swap(poolProfiles.key(p.Address.Bytes()), p.Version, &next); err != nil {
		return err
	}
	p.Version = next.Version
	return nil
}
