package domain

import (
	"strings"
	"time"
)

// IdempotencyScope separates idempotency keys of different operations.
type IdempotencyScope string

const (
	IdempotencyScopeTransfer   IdempotencyScope = "transfer"
	IdempotencyScopeWithdrawal IdempotencyScope = "withdrawal"
)

// BuildIdempotencyKey constructs the standard key format:
// "scope:identity:client_key". Keys are per identity so two callers can reuse
// the same client key.
func BuildIdempotencyKey(scope IdempotencyScope, identity, clientKey string) string {
	return strings.Join([]string{string(scope), identity, clientKey}, ":")
}

// IdempotencyLog durably maps a scoped idempotency key to the record the
// first request created. It is written in the same transaction as the record.
type IdempotencyLog struct {
	Key           string    `json:"key"`
	RecordAddress Address   `json:"record_address"`
	CreatedAt     time.Time `json:"created_at"`
}
