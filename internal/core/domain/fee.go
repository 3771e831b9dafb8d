package domain

import (
	"math/bits"
	"unicode/utf8"
)

const (
	// PlatformFeeBPS is the platform fee in basis points (0.50%).
	PlatformFeeBPS uint64 = 50
	// BasisPointsDivisor converts basis points to a fraction.
	BasisPointsDivisor uint64 = 10000

	MaxCountryCodeLength = 3
	MaxLocationLength    = 50
)

// CalculatePlatformFee returns floor(amount * PlatformFeeBPS / BasisPointsDivisor).
// It returns 0 if the multiplication overflows.
func CalculatePlatformFee(amount uint64) uint64 {
	hi, lo := bits.Mul64(amount, PlatformFeeBPS)
	if hi != 0 {
		return 0
	}
	return lo / BasisPointsDivisor
}

// CalculateNetAmount returns amount minus the platform fee, saturating at zero.
func CalculateNetAmount(amount uint64) uint64 {
	fee := CalculatePlatformFee(amount)
	if fee > amount {
		return 0
	}
	return amount - fee
}

// CheckedAdd returns a+b and false if the sum overflows.
func CheckedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// SaturatingSub returns a-b, or 0 when b > a.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func IsValidCountryCode(code string) bool {
	n := utf8.RuneCountInString(code)
	return n > 0 && n <= MaxCountryCodeLength
}

func IsValidLocation(location string) bool {
	n := utf8.RuneCountInString(location)
	return n > 0 && n <= MaxLocationLength
}
