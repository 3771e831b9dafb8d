package domain

import (
	"time"

	"crosspay/pkg/apperror"
)

// WithdrawalStatus represents the lifecycle state of a withdrawal.
type WithdrawalStatus string

const (
	WithdrawalStatusPending          WithdrawalStatus = "PENDING"
	WithdrawalStatusProviderSelected WithdrawalStatus = "PROVIDER_SELECTED"
	WithdrawalStatusCompleted        WithdrawalStatus = "COMPLETED"
	WithdrawalStatusFailed           WithdrawalStatus = "FAILED"
)

// PayoutMethod is how the provider hands local currency to the payee.
type PayoutMethod string

const (
	PayoutMethodMobileMoney  PayoutMethod = "MOBILE_MONEY"
	PayoutMethodBankTransfer PayoutMethod = "BANK_TRANSFER"
	PayoutMethodCash         PayoutMethod = "CASH"
)

func (m PayoutMethod) IsValid() bool {
	switch m {
	case PayoutMethodMobileMoney, PayoutMethodBankTransfer, PayoutMethodCash:
		return true
	}
	return false
}

// WithdrawalRequest is a cash-out of tokens through a liquidity provider.
type WithdrawalRequest struct {
	Address          Address          `json:"address"`
	Payee            string           `json:"payee"`
	Amount           uint64           `json:"amount"`
	Asset            string           `json:"asset"`
	PayoutMethod     PayoutMethod     `json:"payout_method"`
	SelectedProvider *string          `json:"selected_provider,omitempty"` // provider owner; write-once
	Status           WithdrawalStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	Nonce            uint64           `json:"nonce"`
	Version          int64            `json:"version"`
}

// NewWithdrawalRequest builds a pending withdrawal.
func NewWithdrawalRequest(payee string, amount uint64, asset string, method PayoutMethod, nonce uint64, now time.Time) (*WithdrawalRequest, error) {
	if amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !method.IsValid() {
		return nil, apperror.ErrInvalidPayoutMethod()
	}
	return &WithdrawalRequest{
		Address:      WithdrawalAddress(payee, nonce),
		Payee:        payee,
		Amount:       amount,
		Asset:        asset,
		PayoutMethod: method,
		Status:       WithdrawalStatusPending,
		CreatedAt:    now.UTC(),
		Nonce:        nonce,
	}, nil
}

func (w *WithdrawalRequest) IsTerminal() bool {
	return w.Status == WithdrawalStatusCompleted || w.Status == WithdrawalStatusFailed
}

// HasProvider reports whether a provider has been selected.
func (w *WithdrawalRequest) HasProvider() bool {
	return w.SelectedProvider != nil
}

// Involves reports whether identity is the payee or the selected provider.
func (w *WithdrawalRequest) Involves(identity string) bool {
	return identity == w.Payee || (w.SelectedProvider != nil && identity == *w.SelectedProvider)
}

// SelectProvider records the provider choice. The choice is write-once, so
// a second call fails with ProviderAlreadySelected whatever the status.
func (w *WithdrawalRequest) SelectProvider(owner string) error {
	if w.SelectedProvider != nil {
		return apperror.ErrProviderAlreadySelected()
	}
	if w.Status != WithdrawalStatusPending {
		return apperror.ErrInvalidWithdrawalStatus()
	}
	w.SelectedProvider = &owner
	w.Status = WithdrawalStatusProviderSelected
	return nil
}

func (w *WithdrawalRequest) Finalize(now time.Time) error {
	if w.Status != WithdrawalStatusProviderSelected {
		return apperror.ErrInvalidWithdrawalStatus()
	}
	ts := now.UTC()
	w.Status = WithdrawalStatusCompleted
	w.CompletedAt = &ts
	return nil
}

// Fail aborts a withdrawal that has not completed.
func (w *WithdrawalRequest) Fail(now time.Time) error {
	if w.IsTerminal() {
		return apperror.ErrInvalidWithdrawalStatus()
	}
	ts := now.UTC()
	w.Status = WithdrawalStatusFailed
	w.CompletedAt = &ts
	return nil
}
