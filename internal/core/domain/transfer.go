package domain

import (
	"time"

	"crosspay/pkg/apperror"
)

// TransferStatus represents the lifecycle state of a transfer.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// TransferRequest is a point-to-point movement of a token amount.
// Amount == NetAmount + PlatformFee for every stored record.
type TransferRequest struct {
	Address     Address        `json:"address"`
	Sender      string         `json:"sender"`
	Receiver    string         `json:"receiver"`
	Amount      uint64         `json:"amount"`
	NetAmount   uint64         `json:"net_amount"`
	PlatformFee uint64         `json:"platform_fee"`
	Asset       string         `json:"asset"`
	Status      TransferStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Nonce       uint64         `json:"nonce"`
	Version     int64          `json:"version"`
}

// NewTransferRequest prices amount and builds a pending transfer.
func NewTransferRequest(sender, receiver string, amount uint64, asset string, nonce uint64, now time.Time) (*TransferRequest, error) {
	if amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	t := &TransferRequest{
		Address:     TransferAddress(sender, receiver, nonce),
		Sender:      sender,
		Receiver:    receiver,
		Amount:      amount,
		NetAmount:   CalculateNetAmount(amount),
		PlatformFee: CalculatePlatformFee(amount),
		Asset:       asset,
		Status:      TransferStatusPending,
		CreatedAt:   now.UTC(),
		Nonce:       nonce,
	}
	if err := t.VerifyConservation(); err != nil {
		return nil, err
	}
	return t, nil
}

// VerifyConservation re-derives fee and net from the gross amount and checks
// them against the stored values.
func (t *TransferRequest) VerifyConservation() error {
	if t.PlatformFee != CalculatePlatformFee(t.Amount) || t.NetAmount != CalculateNetAmount(t.Amount) {
		return apperror.ErrInvalidFeeCalculation()
	}
	sum, ok := CheckedAdd(t.NetAmount, t.PlatformFee)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	if sum != t.Amount {
		return apperror.ErrInvalidFeeCalculation()
	}
	return nil
}

// IsTerminal returns true if no further transition is allowed.
func (t *TransferRequest) IsTerminal() bool {
	return t.Status != TransferStatusPending
}

// Involves reports whether identity is the sender or the receiver.
func (t *TransferRequest) Involves(identity string) bool {
	return identity == t.Sender || identity == t.Receiver
}

func (t *TransferRequest) Complete(now time.Time) error {
	return t.finish(TransferStatusCompleted, now)
}

func (t *TransferRequest) Cancel(now time.Time) error {
	return t.finish(TransferStatusCancelled, now)
}

func (t *TransferRequest) Fail(now time.Time) error {
	return t.finish(TransferStatusFailed, now)
}

func (t *TransferRequest) finish(to TransferStatus, now time.Time) error {
	if t.Status != TransferStatusPending {
		return apperror.ErrInvalidTransferStatus()
	}
	ts := now.UTC()
	t.Status = to
	t.CompletedAt = &ts
	return nil
}
