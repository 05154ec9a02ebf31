package barter

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/iov-one/barter/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"
)

func TestAddressJSONRoundTrip(t *testing.T) {
	ns := MustNewNamespace("testnet", 1)
	addr, _ := ns.MustDerive([]byte("escrow"))

	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+addr.String()+`"`, string(raw))

	var got Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, addr.Equals(got))

	var empty Address
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.Nil(t, empty)
}

func TestParseAddress(t *testing.T) {
	cases := map[string]struct {
		input   string
		wantErr *errors.Error
	}{
		"valid": {
			input: Address(make([]byte, AddressLength)).String(),
		},
		"not base58": {
			input:   "0OIl",
			wantErr: errors.ErrInput,
		},
		"too short": {
			input:   Address([]byte{1, 2, 3}).String(),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := ParseAddress(tc.input)
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}
}

func TestSignerAddressIsNotDerived(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	assert.False(t, Address(pub).IsDerived())
	assert.Equal(t, "(nil)", Address(nil).String())
}
