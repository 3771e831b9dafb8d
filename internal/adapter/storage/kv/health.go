package kv

import "context"

// HealthCheck implements ports.HealthChecker for the LevelDB store.
type HealthCheck struct {
	store *Store
}

// NewHealthCheck creates a LevelDB health checker.
func NewHealthCheck(store *Store) *HealthCheck {
	return &HealthCheck{store: store}
}

// Ping fails once the database has been closed.
func (h *HealthCheck) Ping(_ context.Context) error {
	_, err := h.store.db.GetProperty("leveldb.num-files-at-level0")
	return err
}

func (h *HealthCheck) Name() string {
	return "leveldb"
}
