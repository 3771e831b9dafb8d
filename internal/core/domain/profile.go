package domain

import (
	"time"

	"crosspay/pkg/apperror"
)

// UserRole describes which side of a transfer an identity takes part in.
type UserRole string

const (
	UserRoleSender   UserRole = "SENDER"
	UserRoleReceiver UserRole = "RECEIVER"
	UserRoleBoth     UserRole = "BOTH"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleSender, UserRoleReceiver, UserRoleBoth:
		return true
	}
	return false
}

// UserProfile is the per-identity KYC and accounting record.
type UserProfile struct {
	Address       Address   `json:"address"`
	Authority     string    `json:"authority"`
	Role          UserRole  `json:"role"`
	KYCVerified   bool      `json:"kyc_verified"`
	KYCHash       Digest    `json:"kyc_hash"`
	CountryCode   string    `json:"country_code"`
	TotalSent     uint64    `json:"total_sent"`     // gross
	TotalReceived uint64    `json:"total_received"` // net
	TransferSeq   uint64    `json:"transfer_seq"`
	WithdrawalSeq uint64    `json:"withdrawal_seq"`
	CreatedAt     time.Time `json:"created_at"`
	Version       int64     `json:"version"`
}

// NewUserProfile builds an unverified profile for identity.
func NewUserProfile(identity string, role UserRole, countryCode string, now time.Time) (*UserProfile, error) {
	if !role.IsValid() {
		return nil, apperror.Validation("role must be one of SENDER, RECEIVER, BOTH")
	}
	if !IsValidCountryCode(countryCode) {
		return nil, apperror.ErrInvalidCountryCode()
	}
	return &UserProfile{
		Address:     ProfileAddress(identity),
		Authority:   identity,
		Role:        role,
		CountryCode: countryCode,
		CreatedAt:   now.UTC(),
	}, nil
}

// NextTransferNonce returns the nonce for a new transfer and advances the
// pending sequence.
func (p *UserProfile) NextTransferNonce() (uint64, error) {
	nonce := p.TransferSeq
	next, ok := CheckedAdd(nonce, 1)
	if !ok {
		return 0, apperror.ErrArithmeticOverflow()
	}
	p.TransferSeq = next
	return nonce, nil
}

// NextWithdrawalNonce returns the nonce for a new withdrawal and advances the
// pending sequence.
func (p *UserProfile) NextWithdrawalNonce() (uint64, error) {
	nonce := p.WithdrawalSeq
	next, ok := CheckedAdd(nonce, 1)
	if !ok {
		return 0, apperror.ErrArithmeticOverflow()
	}
	p.WithdrawalSeq = next
	return nonce, nil
}

func (p *UserProfile) RecordSent(amount uint64) error {
	total, ok := CheckedAdd(p.TotalSent, amount)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	p.TotalSent = total
	return nil
}

func (p *UserProfile) RecordReceived(amount uint64) error {
	total, ok := CheckedAdd(p.TotalReceived, amount)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	p.TotalReceived = total
	return nil
}

func (p *UserProfile) SetKYC(verified bool, hash Digest) {
	p.KYCVerified = verified
	p.KYCHash = hash
}
