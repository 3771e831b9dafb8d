package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAddress_Deterministic(t *testing.T) {
	a := TransferAddress("alice", "bob", 5)
	b := TransferAddress("alice", "bob", 5)
	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())
}

func TestDeriveAddress_Distinct(t *testing.T) {
	seen := map[Address]string{}
	add := func(name string, a Address) {
		prev, dup := seen[a]
		require.False(t, dup, "%s collides with %s", name, prev)
		seen[a] = name
	}

	add("transfer n0", TransferAddress("alice", "bob", 0))
	add("transfer n1", TransferAddress("alice", "bob", 1))
	add("transfer swapped", TransferAddress("bob", "alice", 0))
	add("withdrawal n0", WithdrawalAddress("alice", 0))
	add("profile", ProfileAddress("alice"))
	add("provider", ProviderAddress("alice"))

	// Length prefixing keeps shifted boundaries apart.
	add("ab|c", DeriveAddress("ns", []byte("ab"), []byte("c")))
	add("a|bc", DeriveAddress("ns", []byte("a"), []byte("bc")))
}

func TestAddress_TextRoundTrip(t *testing.T) {
	a := WithdrawalAddress("bob", 9)

	parsed, err := ParseAddress(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)

	raw, err := json.Marshal(struct {
		A Address `json:"a"`
	}{a})
	require.NoError(t, err)
	assert.Contains(t, string(raw), a.String())

	var back struct {
		A Address `json:"a"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, a, back.A)
}

func TestParseAddress_Invalid(t *testing.T) {
	_, err := ParseAddress("0OIl")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddress("3mJr7AoUXx2Wqd")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestAddress_SQLValueScan(t *testing.T) {
	a := ProfileAddress("carol")
	v, err := a.Value()
	require.NoError(t, err)

	var back Address
	require.NoError(t, back.Scan(v))
	assert.Equal(t, a, back)

	assert.Error(t, back.Scan("text"))
	assert.Error(t, back.Scan([]byte{1, 2}))
}

func TestDigest_TextRoundTrip(t *testing.T) {
	d := Digest{0xde, 0xad, 0xbe, 0xef}
	parsed, err := ParseDigest(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	_, err = ParseDigest("abcd")
	assert.Error(t, err)
	_, err = ParseDigest("zz")
	assert.Error(t, err)
}
