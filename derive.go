package crowdfund

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/iov-one/crowdfund/errors"
)

const (
	// MaxSeedLength is the maximum length of a single derivation seed.
	MaxSeedLength = 32
	// MaxSeeds is the maximum number of seeds, including the nonce.
	MaxSeeds = 16

	derivedAddressMarker = "ProgramDerivedAddress"
)

// CreateDerivedAddress computes the address owned by the program at owner
// for given seeds and nonce. The nonce is hashed as the last seed.
//
// An address that is a valid ed25519 point could have a private key and
// therefore a signer outside of the program. Such results are rejected with
// ErrInvalidSeeds and a different nonce must be used.
func CreateDerivedAddress(owner Address, nonce uint8, seeds ...[]byte) (Address, error) {
	if err := validateSeeds(owner, seeds); err != nil {
		return nil, err
	}
	addr := deriveAddress(owner, nonce, seeds)
	if IsOnCurve(addr) {
		return nil, errors.Wrapf(errors.ErrInvalidSeeds, "nonce %d", nonce)
	}
	return addr, nil
}

// FindDerivedAddress searches for the highest nonce that produces a valid
// derived address for given seeds. The returned nonce is the canonical one
// and must be stored to allow later verification without the search.
func FindDerivedAddress(owner Address, seeds ...[]byte) (Address, uint8, error) {
	if err := validateSeeds(owner, seeds); err != nil {
		return nil, 0, err
	}
	for n := 255; n >= 0; n-- {
		addr := deriveAddress(owner, uint8(n), seeds)
		if !IsOnCurve(addr) {
			return addr, uint8(n), nil
		}
	}
	return nil, 0, errors.Wrap(errors.ErrInvalidSeeds, "no viable nonce")
}

func validateSeeds(owner Address, seeds [][]byte) error {
	if err := owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if len(seeds)+1 > MaxSeeds {
		return errors.Wrapf(errors.ErrInvalidSeeds, "too many seeds: %d", len(seeds))
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return errors.Wrapf(errors.ErrInvalidSeeds, "seed %d too long: %d", i, len(s))
		}
	}
	return nil
}

// deriveAddress is sha256(seeds || nonce || owner || marker).
func deriveAddress(owner Address, nonce uint8, seeds [][]byte) Address {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write([]byte{nonce})
	h.Write(owner)
	h.Write([]byte(derivedAddressMarker))
	return Address(h.Sum(nil))
}

// IsOnCurve returns true if given address decodes to a point of the ed25519
// curve, meaning it can be an external signer public key.
func IsOnCurve(a Address) bool {
	if len(a) != AddressLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(a)
	return err == nil
}
