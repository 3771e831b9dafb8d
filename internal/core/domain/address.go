package domain

import (
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
)

// AddressLength is the size of a derived record address in bytes.
const AddressLength = 32

// Record namespaces. Each record kind lives in its own namespace so that two
// kinds can never derive the same address from the same seeds.
const (
	NamespaceProfile    = "user_profile"
	NamespaceTransfer   = "transfer_request"
	NamespaceWithdrawal = "withdrawal_request"
	NamespaceProvider   = "liquidity_provider"
)

var ErrInvalidAddress = errors.New("invalid address")

// Address locates a record in the record store. It is derived, never chosen.
type Address [AddressLength]byte

// DeriveAddress hashes the namespace and seeds with SHA3-256. Every element
// is prefixed with its little-endian uint32 length so ("ab","c") and
// ("a","bc") cannot collide.
func DeriveAddress(namespace string, seeds ...[]byte) Address {
	h := sha3.New256()
	writeSeed(h, []byte(namespace))
	for _, s := range seeds {
		writeSeed(h, s)
	}

	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

func writeSeed(w interface{ Write([]byte) (int, error) }, seed []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(seed)))
	_, _ = w.Write(n[:])
	_, _ = w.Write(seed)
}

// NonceSeed encodes a nonce the way address derivation expects it.
func NonceSeed(nonce uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], nonce)
	return b[:]
}

// ProfileAddress returns the address of identity's user profile.
func ProfileAddress(identity string) Address {
	return DeriveAddress(NamespaceProfile, []byte(identity))
}

// ProviderAddress returns the address of owner's liquidity provider record.
func ProviderAddress(owner string) Address {
	return DeriveAddress(NamespaceProvider, []byte(owner))
}

// TransferAddress returns the address of the transfer sender creates to
// receiver with the given nonce.
func TransferAddress(sender, receiver string, nonce uint64) Address {
	return DeriveAddress(NamespaceTransfer, []byte(sender), []byte(receiver), NonceSeed(nonce))
}

// WithdrawalAddress returns the address of payee's withdrawal with the given nonce.
func WithdrawalAddress(payee string, nonce uint64) Address {
	return DeriveAddress(NamespaceWithdrawal, []byte(payee), NonceSeed(nonce))
}

// ParseAddress decodes a base58 address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != AddressLength {
		return a, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, AddressLength, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// AddressFromBytes copies a raw 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, AddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores the address as bytea.
func (a Address) Value() (driver.Value, error) {
	return a[:], nil
}

func (a *Address) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidAddress, src)
	}
	parsed, err := AddressFromBytes(b)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Digest is an opaque 32-byte commitment, rendered as hex.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDigest decodes a 64-character hex string.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest: %w", err)
	}
	if len(raw) != len(d) {
		return d, fmt.Errorf("invalid digest: want %d bytes, got %d", len(d), len(raw))
	}
	copy(d[:], raw)
	return d, nil
}
