package cash

import (
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
	"github.com/iov-one/barter/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRent = 10

var native = bartertest.NewAsset("native")

func newLedger(t testing.TB) (barter.CacheableKVStore, BaseController) {
	t.Helper()
	db := store.MemStore()
	conf := &Configuration{NativeAsset: native, AccountRent: testRent}
	require.NoError(t, gconf.Save(db, ConfigurationName, conf))
	return db, NewController()
}

func TestMoveAndBalance(t *testing.T) {
	db, ctrl := newLedger(t)
	alice := bartertest.NewSigner()
	bob := bartertest.NewSigner()
	gold := bartertest.NewAsset("gold")

	require.NoError(t, ctrl.Issue(db, alice, gold, 100))

	cases := map[string]struct {
		authority barter.Address
		src       barter.Address
		amount    uint64
		wantErr   *errors.Error
	}{
		"not the authority": {
			authority: bob,
			src:       alice,
			amount:    1,
			wantErr:   errors.ErrUnauthorized,
		},
		"no wallet": {
			authority: bob,
			src:       bob,
			amount:    1,
			wantErr:   errors.ErrInsufficientAmount,
		},
		"too much": {
			authority: alice,
			src:       alice,
			amount:    101,
			wantErr:   errors.ErrInsufficientAmount,
		},
		"all": {
			authority: alice,
			src:       alice,
			amount:    100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			cache := db.CacheWrap()
			defer cache.Discard()

			err := ctrl.Move(cache, tc.authority, tc.src, bob, gold, tc.amount)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				return
			}
			got, err := ctrl.Balance(cache, bob, gold)
			require.NoError(t, err)
			assert.Equal(t, tc.amount, got)
			got, err = ctrl.Balance(cache, alice, gold)
			require.NoError(t, err)
			assert.EqualValues(t, 0, got)
		})
	}
}

func TestCreditOverflow(t *testing.T) {
	db, ctrl := newLedger(t)
	alice := bartertest.NewSigner()
	bob := bartertest.NewSigner()
	gold := bartertest.NewAsset("gold")

	require.NoError(t, ctrl.Issue(db, alice, gold, 1))
	require.NoError(t, ctrl.Issue(db, bob, gold, ^uint64(0)))

	err := ctrl.Move(db, alice, alice, bob, gold, 1)
	assert.True(t, errors.ErrOverflow.Is(err))
}

func TestVaultLifecycle(t *testing.T) {
	db, ctrl := newLedger(t)
	alice := bartertest.NewSigner()
	gold := bartertest.NewAsset("gold")
	record, _ := bartertest.Namespace.MustDerive([]byte("record"))
	vault, _ := bartertest.Namespace.MustDerive([]byte("vault"))

	require.NoError(t, ctrl.Issue(db, alice, native, 100))
	require.NoError(t, ctrl.Issue(db, alice, gold, 50))
	supplyBefore, err := ctrl.Supply(db, native)
	require.NoError(t, err)

	w, err := ctrl.Open(db, vault, gold, record, alice)
	require.NoError(t, err)
	assert.EqualValues(t, testRent, w.Rent)
	assert.Equal(t, record, w.Authority)

	_, err = ctrl.Open(db, vault, gold, record, alice)
	assert.True(t, errors.ErrDuplicate.Is(err))

	// Rent is locked, not destroyed.
	bal, err := ctrl.Balance(db, alice, native)
	require.NoError(t, err)
	assert.EqualValues(t, 90, bal)
	supply, err := ctrl.Supply(db, native)
	require.NoError(t, err)
	assert.Equal(t, supplyBefore, supply)

	require.NoError(t, ctrl.Move(db, alice, alice, vault, gold, 50))

	// Only the record can debit the vault.
	err = ctrl.Move(db, alice, vault, alice, gold, 50)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// Cannot close while holding assets.
	err = ctrl.Close(db, record, vault, gold, alice)
	assert.True(t, errors.ErrState.Is(err))

	require.NoError(t, ctrl.Move(db, record, vault, alice, gold, 50))
	require.NoError(t, ctrl.Close(db, record, vault, gold, alice))

	_, err = ctrl.Wallet(db, vault, gold)
	assert.True(t, errors.ErrNotFound.Is(err))
	bal, err = ctrl.Balance(db, alice, native)
	require.NoError(t, err)
	assert.EqualValues(t, 100, bal)
	bal, err = ctrl.Balance(db, alice, gold)
	require.NoError(t, err)
	assert.EqualValues(t, 50, bal)
}

func TestOpenWithoutRent(t *testing.T) {
	db, ctrl := newLedger(t)
	poor := bartertest.NewSigner()
	gold := bartertest.NewAsset("gold")
	vault, _ := bartertest.Namespace.MustDerive([]byte("vault"))

	_, err := ctrl.Open(db, vault, gold, vault, poor)
	assert.True(t, errors.ErrInsufficientAmount.Is(err))
}
