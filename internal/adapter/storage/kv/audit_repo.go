package kv

import (
	"context"
	"encoding/binary"

	"crosspay/internal/core/domain"
)

// AuditRepo implements ports.AuditRepository. Keys sort by creation time.
type AuditRepo struct {
	store *Store
}

// NewAuditRepo creates a LevelDB-backed AuditRepository.
func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{store: store}
}

func (r *AuditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(log.CreatedAt.UnixNano()))
	return putRecord(r.store.db, poolAudit.key(ts[:], log.ID[:]), log)
}

// List returns every audit entry, oldest first.
func (r *AuditRepo) List(_ context.Context) ([]domain.AuditLog, error) {
	return scan(r.store.db, poolAudit, func(*domain.AuditLog) bool { return true })
}
