package crowdfund

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/crowdfund/errors"
	"golang.org/x/crypto/ed25519"
)

// AddressLength is the length of all addresses. An external signer address
// is its ed25519 public key, a derived address is a sha256 digest.
const AddressLength = 32

// Address identifies an account on the ledger.
//
// It will be of size AddressLength
type Address []byte

// KeyAddress returns the address of an account controlled by the holder of
// the matching private key.
func KeyAddress(pub ed25519.PublicKey) Address {
	return Address(append([]byte(nil), pub...))
}

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// Clone returns a copy that does not share the underlying array.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	return append(Address(nil), a...)
}

// Validate returns an error if the address is not the valid size
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address: %X", []byte(a))
	}
	return nil
}

// String returns a human readable string.
// Currently hex, use Bech32 or Base58 for other representations.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// Bech32 returns the bech32 representation of this address, using given
// human readable part.
func (a Address) Bech32(hrp string) (string, error) {
	conv, err := bech32.ConvertBits(a, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "cannot convert to 5 bit encoding")
	}
	enc, err := bech32.Encode(hrp, conv)
	if err != nil {
		return "", errors.Wrap(err, "bech32 encoding")
	}
	return enc, nil
}

// Base58 returns the base58 representation of this address.
func (a Address) Base58() string {
	return base58.Encode(a)
}

// MarshalJSON provides a hex representation for JSON,
// to override the standard base64 []byte encoding
func (a Address) MarshalJSON() ([]byte, error) {
	s := strings.ToUpper(hex.EncodeToString(a))
	return json.Marshal(s)
}

// UnmarshalJSON accepts any of the formats understood by ParseAddress.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	// No value zero the address.
	if len(enc) == 0 {
		*a = nil
		return nil
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes an address from its human readable form. The format
// can be declared with a prefix:
//
//   hex:<hex data>
//   bech32:<bech32 string>
//   base58:<base58 string>
//
// A value without a prefix is decoded as hex.
func ParseAddress(enc string) (Address, error) {
	format, data := "hex", enc
	if chunks := strings.SplitN(enc, ":", 2); len(chunks) == 2 {
		format, data = chunks[0], chunks[1]
	}

	var addr Address
	switch format {
	case "hex":
		val, err := hex.DecodeString(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "cannot decode hex")
		}
		addr = val
	case "bech32":
		_, payload, err := bech32.Decode(data)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "deserialize bech32: %s", err)
		}
		val, err := bech32.ConvertBits(payload, 5, 8, false)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "convert bech32 payload: %s", err)
		}
		addr = val
	case "base58":
		addr = base58.Decode(data)
	default:
		return nil, errors.Wrapf(errors.ErrType, "unknown format %q", format)
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}

// MustParseAddress is like ParseAddress but panics on error. Use only for
// constants you control.
func MustParseAddress(enc string) Address {
	addr, err := ParseAddress(enc)
	if err != nil {
		panic(err)
	}
	return addr
}
