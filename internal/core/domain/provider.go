package domain

import (
	"time"

	"crosspay/pkg/apperror"
)

// Trust score bounds, in hundredths of a percent.
const (
	DefaultTrustScore uint16 = 7000
	MinTrustScore     uint16 = 5000
	MaxTrustScore     uint16 = 10000
)

// LiquidityProvider exchanges settled tokens for local currency.
//
// AvailableLiquidity is what new selections may reserve. ReservedLiquidity
// is held by withdrawals in PROVIDER_SELECTED and is consumed on finalize or
// returned on cancel.
type LiquidityProvider struct {
	Address               Address   `json:"address"`
	Authority             string    `json:"authority"`
	Location              string    `json:"location"`
	ExchangeRate          uint64    `json:"exchange_rate"` // local units per token, scaled 1e6
	AvailableLiquidity    uint64    `json:"available_liquidity"`
	ReservedLiquidity     uint64    `json:"reserved_liquidity"`
	TotalVolume           uint64    `json:"total_volume"`
	CompletedTransactions uint64    `json:"completed_transactions"`
	TrustScore            uint16    `json:"trust_score"`
	IsActive              bool      `json:"is_active"`
	CreatedAt             time.Time `json:"created_at"`
	Version               int64     `json:"version"`
}

// NewLiquidityProvider builds an active provider with no liquidity.
func NewLiquidityProvider(owner, location string, exchangeRate uint64, now time.Time) (*LiquidityProvider, error) {
	if !IsValidLocation(location) {
		return nil, apperror.ErrInvalidLocation()
	}
	if exchangeRate == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	return &LiquidityProvider{
		Address:      ProviderAddress(owner),
		Authority:    owner,
		Location:     location,
		ExchangeRate: exchangeRate,
		TrustScore:   DefaultTrustScore,
		IsActive:     true,
		CreatedAt:    now.UTC(),
	}, nil
}

// MeetsTrustPolicy reports whether the trust score is inside the band
// matching policy expects of an active provider. Nothing in the settlement
// path enforces it.
func (p *LiquidityProvider) MeetsTrustPolicy() bool {
	return p.TrustScore >= MinTrustScore && p.TrustScore <= MaxTrustScore
}

// CanServe reports whether amount could be reserved right now.
func (p *LiquidityProvider) CanServe(amount uint64) error {
	if !p.IsActive {
		return apperror.ErrProviderNotActive()
	}
	if p.AvailableLiquidity < amount {
		return apperror.ErrInsufficientLiquidity()
	}
	return nil
}

// SetAvailability is the owner's direct control over unreserved liquidity.
func (p *LiquidityProvider) SetAvailability(available uint64, active bool) {
	p.AvailableLiquidity = available
	p.IsActive = active
}

// Reserve moves amount from available to reserved.
func (p *LiquidityProvider) Reserve(amount uint64) error {
	if err := p.CanServe(amount); err != nil {
		return err
	}
	reserved, ok := CheckedAdd(p.ReservedLiquidity, amount)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	p.AvailableLiquidity -= amount
	p.ReservedLiquidity = reserved
	return nil
}

// Release returns a reservation to available liquidity.
func (p *LiquidityProvider) Release(amount uint64) error {
	held := min(amount, p.ReservedLiquidity)
	available, ok := CheckedAdd(p.AvailableLiquidity, held)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	p.ReservedLiquidity -= held
	p.AvailableLiquidity = available
	return nil
}

// Settle books a completed withdrawal of amount. The reservation is consumed
// first; any remainder is taken from available liquidity, clamping at zero.
func (p *LiquidityProvider) Settle(amount uint64) error {
	volume, ok := CheckedAdd(p.TotalVolume, amount)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	count, ok := CheckedAdd(p.CompletedTransactions, 1)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}

	covered := min(amount, p.ReservedLiquidity)
	p.ReservedLiquidity -= covered
	p.AvailableLiquidity = SaturatingSub(p.AvailableLiquidity, amount-covered)
	p.TotalVolume = volume
	p.CompletedTransactions = count
	return nil
}
