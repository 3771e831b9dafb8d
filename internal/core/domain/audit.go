package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionProfileCreate        AuditAction = "PROFILE_CREATE"
	AuditActionKYCUpdate            AuditAction = "KYC_UPDATE"
	AuditActionProviderRegister     AuditAction = "PROVIDER_REGISTER"
	AuditActionProviderAvailability AuditAction = "PROVIDER_AVAILABILITY"
	AuditActionTransferCreate       AuditAction = "TRANSFER_CREATE"
	AuditActionTransferSettle       AuditAction = "TRANSFER_SETTLE"
	AuditActionTransferCancel       AuditAction = "TRANSFER_CANCEL"
	AuditActionWithdrawalCreate     AuditAction = "WITHDRAWAL_CREATE"
	AuditActionWithdrawalSelect     AuditAction = "WITHDRAWAL_SELECT_PROVIDER"
	AuditActionWithdrawalFinalize   AuditAction = "WITHDRAWAL_FINALIZE"
	AuditActionWithdrawalCancel     AuditAction = "WITHDRAWAL_CANCEL"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Actor        string      `json:"actor,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
