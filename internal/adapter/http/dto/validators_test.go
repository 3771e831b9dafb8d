package dto

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := CreateTransferRequest{
		Receiver: "  bob  ",
		Asset:    " USDC ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "bob", req.Receiver)
	assert.Equal(t, "USDC", req.Asset)
}

func TestSanitizeStruct_KeepsTextVerbatim(t *testing.T) {
	req := RegisterProviderRequest{Location: "  Cote d'Ivoire & Ghana border market, Aflao <stall 4> "}
	SanitizeStruct(&req)

	assert.Equal(t, "Cote d'Ivoire & Ghana border market, Aflao <stall 4>", req.Location)
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	type withPointer struct {
		Note *string
	}
	note := "  paid in cash  "
	req := withPointer{Note: &note}
	SanitizeStruct(&req)

	assert.Equal(t, "paid in cash", *req.Note)
}

func TestSanitizeStruct_SkipsNilAndNonString(t *testing.T) {
	req := SetAvailabilityRequest{}
	SanitizeStruct(&req)
	assert.Nil(t, req.AvailableLiquidity)
	assert.Nil(t, req.IsActive)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID(t *testing.T) {
	valid := []string{"bob", "lp-nairobi", "REF_002", "a.b.c"}
	for _, tc := range valid {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}

	invalid := []string{"bob smith", "bob<1>", "x;DROP", "", "a\nb"}
	for _, tc := range invalid {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestAssetCode(t *testing.T) {
	assert.True(t, assetCodeRe.MatchString("USDC"))
	assert.True(t, assetCodeRe.MatchString("EURC2"))
	assert.False(t, assetCodeRe.MatchString("usdc"))
	assert.False(t, assetCodeRe.MatchString("U"))
	assert.False(t, assetCodeRe.MatchString("USD-C"))
}

func TestBinding_CreateTransferRequest(t *testing.T) {
	ok := CreateTransferRequest{Receiver: "bob", Asset: "USDC"}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok), "amount is checked by the service")

	bad := CreateTransferRequest{Receiver: "bob smith", Asset: "USDC", Amount: 1}
	assert.Error(t, binding.Validator.ValidateStruct(&bad))

	missing := CreateTransferRequest{Amount: 1}
	assert.Error(t, binding.Validator.ValidateStruct(&missing))
}

func TestBinding_SetKYCRequest(t *testing.T) {
	verified := true

	noHash := SetKYCRequest{Verified: &verified}
	assert.NoError(t, binding.Validator.ValidateStruct(&noHash))

	withHash := SetKYCRequest{Verified: &verified, KYCHash: strings.Repeat("ab", 32)}
	assert.NoError(t, binding.Validator.ValidateStruct(&withHash))

	shortHash := SetKYCRequest{Verified: &verified, KYCHash: "abcd"}
	assert.Error(t, binding.Validator.ValidateStruct(&shortHash))

	missingFlag := SetKYCRequest{}
	assert.Error(t, binding.Validator.ValidateStruct(&missingFlag))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(41, 2, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(41), p.Total)

	empty := NewPagination(0, 1, 20)
	require.Equal(t, 0, empty.TotalPages)
}
