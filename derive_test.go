package crowdfund

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDerivedAddress(t *testing.T) {
	owner := MustParseAddress("base58:8AwEsUh1mXnd4KG2n8AmtqnbuDawmeSpgNAiLPyrtZy7")
	authority := newTestAddress(t)
	id := bytes.Repeat([]byte{7}, 32)

	addr, nonce, err := FindDerivedAddress(owner, []byte("campaign"), authority, id)
	require.NoError(t, err)
	assert.Len(t, addr, AddressLength)
	assert.False(t, IsOnCurve(addr))

	// the same inputs always give the same result
	again, againNonce, err := FindDerivedAddress(owner, []byte("campaign"), authority, id)
	require.NoError(t, err)
	assert.Equal(t, addr, again)
	assert.Equal(t, nonce, againNonce)

	// the stored nonce reproduces the address without a search
	created, err := CreateDerivedAddress(owner, nonce, []byte("campaign"), authority, id)
	require.NoError(t, err)
	assert.Equal(t, addr, created)

	// digest layout
	h := sha256.New()
	h.Write([]byte("campaign"))
	h.Write(authority)
	h.Write(id)
	h.Write([]byte{nonce})
	h.Write(owner)
	h.Write([]byte("ProgramDerivedAddress"))
	assert.Equal(t, Address(h.Sum(nil)), addr)

	// every higher nonce lands on the curve
	for n := 255; n > int(nonce); n-- {
		_, err := CreateDerivedAddress(owner, uint8(n), []byte("campaign"), authority, id)
		assert.True(t, errors.ErrInvalidSeeds.Is(err), "nonce %d", n)
	}

	other, _, err := FindDerivedAddress(owner, []byte("campaign"), authority, bytes.Repeat([]byte{8}, 32))
	require.NoError(t, err)
	assert.NotEqual(t, addr, other)
}

func TestDerivedAddressSeedLimits(t *testing.T) {
	owner := newTestAddress(t)

	_, _, err := FindDerivedAddress(owner, make([]byte, MaxSeedLength+1))
	assert.True(t, errors.ErrInvalidSeeds.Is(err))

	seeds := make([][]byte, MaxSeeds)
	_, _, err = FindDerivedAddress(owner, seeds...)
	assert.True(t, errors.ErrInvalidSeeds.Is(err))

	_, err = CreateDerivedAddress(Address{1}, 0, []byte("a"))
	assert.True(t, errors.ErrInput.Is(err))
}

func TestIsOnCurve(t *testing.T) {
	// public keys are curve points
	assert.True(t, IsOnCurve(newTestAddress(t)))
	assert.False(t, IsOnCurve(Address{1, 2, 3}))
}
