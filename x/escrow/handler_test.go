package escrow

import (
	"context"
	"math"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/app"
	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
	"github.com/iov-one/barter/store"
	"github.com/iov-one/barter/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rent = 10

var (
	native = bartertest.NewAsset("native")
	assetX = bartertest.NewAsset("x")
	assetY = bartertest.NewAsset("y")
)

// fixture holds a ledger with two funded parties and the escrow routes.
type fixture struct {
	db     barter.CacheableKVStore
	bank   cash.BaseController
	auth   *bartertest.CtxAuth
	router *app.Router
	maker  barter.Address
	taker  barter.Address
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := store.MemStore()
	conf := &cash.Configuration{NativeAsset: native, AccountRent: rent}
	require.NoError(t, gconf.Save(db, cash.ConfigurationName, conf))

	f := &fixture{
		db:     db,
		bank:   cash.NewController(),
		auth:   &bartertest.CtxAuth{Key: "escrow-test"},
		router: app.NewRouter(),
		maker:  bartertest.NewSigner(),
		taker:  bartertest.NewSigner(),
	}
	RegisterRoutes(f.router, bartertest.Namespace, f.auth, f.bank)

	f.issue(t, f.maker, native, 1000)
	f.issue(t, f.maker, assetX, 1000)
	f.issue(t, f.taker, native, 1000)
	f.issue(t, f.taker, assetY, 500)
	return f
}

func (f *fixture) issue(t testing.TB, holder, asset barter.Address, amount uint64) {
	t.Helper()
	require.NoError(t, f.bank.Issue(f.db, holder, asset, amount))
}

func (f *fixture) deliver(signer barter.Address, msg barter.Msg) (*barter.DeliverResult, error) {
	ctx := f.auth.SetSigners(context.Background(), signer)
	return f.router.Deliver(ctx, f.db, &bartertest.Tx{Msg: msg})
}

func (f *fixture) check(signer barter.Address, msg barter.Msg) (*barter.CheckResult, error) {
	ctx := f.auth.SetSigners(context.Background(), signer)
	return f.router.Check(ctx, f.db, &bartertest.Tx{Msg: msg})
}

func (f *fixture) balance(t testing.TB, holder, asset barter.Address) uint64 {
	t.Helper()
	b, err := f.bank.Balance(f.db, holder, asset)
	require.NoError(t, err)
	return b
}

func (f *fixture) supply(t testing.TB) map[string]uint64 {
	t.Helper()
	res := make(map[string]uint64)
	for _, a := range []barter.Address{native, assetX, assetY} {
		s, err := f.bank.Supply(f.db, a)
		require.NoError(t, err)
		res[a.String()] = s
	}
	return res
}

// make opens the escrow of scenario A and returns its address.
func (f *fixture) make(t testing.TB, seed uint64) barter.Address {
	t.Helper()
	res, err := f.deliver(f.maker, &MakeMsg{
		Seed:            seed,
		AssetOffered:    assetX,
		AssetRequested:  assetY,
		RequestedAmount: 500,
		DepositAmount:   1000,
	})
	require.NoError(t, err)
	return res.Data
}

func (f *fixture) assertResolved(t testing.TB, escrowAddr barter.Address, seed uint64) {
	t.Helper()
	err := NewBucket().Has(f.db, escrowAddr)
	assert.True(t, errors.ErrNotFound.Is(err), "escrow still exists: %v", err)

	vault, err := VaultAddress(bartertest.Namespace, f.maker, seed)
	require.NoError(t, err)
	_, err = f.bank.Wallet(f.db, vault, assetX)
	assert.True(t, errors.ErrNotFound.Is(err), "vault still exists: %v", err)
}

func TestMake(t *testing.T) {
	f := newFixture(t)
	before := f.supply(t)

	escrowAddr := f.make(t, 1)

	want, _, err := EscrowAddress(bartertest.Namespace, f.maker, 1)
	require.NoError(t, err)
	assert.Equal(t, want, escrowAddr)
	assert.True(t, escrowAddr.IsDerived())

	var escrow Escrow
	require.NoError(t, NewBucket().One(f.db, escrowAddr, &escrow))
	assert.Equal(t, f.maker, escrow.Maker)
	assert.EqualValues(t, 1, escrow.Seed)
	assert.EqualValues(t, 500, escrow.RequestedAmount)
	reconstructed, err := escrow.Address(bartertest.Namespace)
	require.NoError(t, err)
	assert.Equal(t, escrowAddr, reconstructed)

	vaultAddr, err := VaultAddress(bartertest.Namespace, f.maker, 1)
	require.NoError(t, err)
	vault, err := f.bank.Wallet(f.db, vaultAddr, assetX)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, vault.Amount)
	assert.Equal(t, escrowAddr, vault.Authority)

	assert.EqualValues(t, 0, f.balance(t, f.maker, assetX))
	assert.EqualValues(t, 1000-rent, f.balance(t, f.maker, native))
	assert.Equal(t, before, f.supply(t))

	keys, err := NewBucket().ByIndex(f.db, MakerIndex, f.maker)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{escrowAddr}, keys)

	// Vault funds cannot be moved by the maker.
	err = f.bank.Move(f.db, f.maker, vaultAddr, f.maker, assetX, 1)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestMakeFailures(t *testing.T) {
	cases := map[string]struct {
		signer  func(*fixture) barter.Address
		msg     func(*fixture) *MakeMsg
		prepare func(testing.TB, *fixture)
		wantErr *errors.Error
	}{
		"duplicate seed": {
			prepare: func(t testing.TB, f *fixture) {
				f.issue(t, f.maker, assetX, 1000)
				f.make(t, 7)
			},
			msg: func(f *fixture) *MakeMsg {
				return &MakeMsg{Seed: 7, AssetOffered: assetX, AssetRequested: assetY, RequestedAmount: 1, DepositAmount: 1}
			},
			wantErr: errors.ErrDuplicate,
		},
		"insufficient deposit": {
			msg: func(f *fixture) *MakeMsg {
				return &MakeMsg{Seed: 7, AssetOffered: assetX, AssetRequested: assetY, RequestedAmount: 1, DepositAmount: 1001}
			},
			wantErr: errors.ErrInsufficientAmount,
		},
		"no funds for rent": {
			signer: func(f *fixture) barter.Address { return f.taker },
			msg: func(f *fixture) *MakeMsg {
				return &MakeMsg{Seed: 7, AssetOffered: assetY, AssetRequested: assetX, RequestedAmount: 1, DepositAmount: 1}
			},
			prepare: func(t testing.TB, f *fixture) {
				require.NoError(t, f.bank.Move(f.db, f.taker, f.taker, f.maker, native, 1000))
			},
			wantErr: errors.ErrInsufficientAmount,
		},
		"explicit maker did not sign": {
			signer: func(f *fixture) barter.Address { return f.taker },
			msg: func(f *fixture) *MakeMsg {
				return &MakeMsg{Maker: f.maker, Seed: 7, AssetOffered: assetX, AssetRequested: assetY, RequestedAmount: 1, DepositAmount: 1}
			},
			wantErr: errors.ErrUnauthorized,
		},
		"same assets": {
			msg: func(f *fixture) *MakeMsg {
				return &MakeMsg{Seed: 7, AssetOffered: assetX, AssetRequested: assetX, RequestedAmount: 1, DepositAmount: 1}
			},
			wantErr: errors.ErrMsg,
		},
		"zero deposit": {
			msg: func(f *fixture) *MakeMsg {
				return &MakeMsg{Seed: 7, AssetOffered: assetX, AssetRequested: assetY, RequestedAmount: 1}
			},
			wantErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			if tc.prepare != nil {
				tc.prepare(t, f)
			}
			signer := f.maker
			if tc.signer != nil {
				signer = tc.signer(f)
			}

			before := dump(t, f.db)
			_, err := f.deliver(signer, tc.msg(f))
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %v", tc.wantErr, err)
			}
			assert.Equal(t, before, dump(t, f.db), "failed make must not change the state")
		})
	}
}

// Scenario A: the taker pays 500 Y and receives the 1000 X deposit.
func TestTake(t *testing.T) {
	f := newFixture(t)
	before := f.supply(t)
	escrowAddr := f.make(t, 1)

	_, err := f.check(f.taker, &TakeMsg{Escrow: escrowAddr})
	require.NoError(t, err)
	_, err = f.deliver(f.taker, &TakeMsg{Escrow: escrowAddr})
	require.NoError(t, err)

	assert.EqualValues(t, 500, f.balance(t, f.maker, assetY))
	assert.EqualValues(t, 1000, f.balance(t, f.taker, assetX))
	assert.EqualValues(t, 0, f.balance(t, f.taker, assetY))
	// rent is returned to the maker
	assert.EqualValues(t, 1000, f.balance(t, f.maker, native))
	f.assertResolved(t, escrowAddr, 1)
	assert.Equal(t, before, f.supply(t))

	keys, err := NewBucket().ByIndex(f.db, MakerIndex, f.maker)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

// Scenario B: the maker refunds before any take.
func TestRefund(t *testing.T) {
	f := newFixture(t)
	before := f.supply(t)
	escrowAddr := f.make(t, 1)

	_, err := f.check(f.maker, &RefundMsg{Escrow: escrowAddr})
	require.NoError(t, err)
	_, err = f.deliver(f.maker, &RefundMsg{Escrow: escrowAddr})
	require.NoError(t, err)

	assert.EqualValues(t, 1000, f.balance(t, f.maker, assetX))
	assert.EqualValues(t, 1000, f.balance(t, f.maker, native))
	f.assertResolved(t, escrowAddr, 1)
	assert.Equal(t, before, f.supply(t))

	_, err = f.deliver(f.taker, &TakeMsg{Escrow: escrowAddr})
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.EqualValues(t, 500, f.balance(t, f.taker, assetY))
}

func TestSingleResolution(t *testing.T) {
	take := func(f *fixture, e barter.Address) error {
		_, err := f.deliver(f.taker, &TakeMsg{Escrow: e})
		return err
	}
	refund := func(f *fixture, e barter.Address) error {
		_, err := f.deliver(f.maker, &RefundMsg{Escrow: e})
		return err
	}

	cases := map[string]struct {
		first, second func(*fixture, barter.Address) error
	}{
		"take, take":     {take, take},
		"take, refund":   {take, refund},
		"refund, take":   {refund, take},
		"refund, refund": {refund, refund},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			f.issue(t, f.taker, assetY, 500)
			escrowAddr := f.make(t, 3)

			require.NoError(t, tc.first(f, escrowAddr))
			after := dump(t, f.db)
			err := tc.second(f, escrowAddr)
			assert.True(t, errors.ErrNotFound.Is(err), "got %v", err)
			assert.Equal(t, after, dump(t, f.db))
		})
	}
}

func TestRefundAuthorization(t *testing.T) {
	f := newFixture(t)
	escrowAddr := f.make(t, 1)
	before := dump(t, f.db)

	_, err := f.check(f.taker, &RefundMsg{Escrow: escrowAddr})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	_, err = f.deliver(f.taker, &RefundMsg{Escrow: escrowAddr})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, before, dump(t, f.db))

	// Authorization is verified before the vault state.
	vaultAddr, err := VaultAddress(bartertest.Namespace, f.maker, 1)
	require.NoError(t, err)
	require.NoError(t, f.bank.Move(f.db, escrowAddr, vaultAddr, f.maker, assetX, 1000))
	require.NoError(t, f.bank.Close(f.db, escrowAddr, vaultAddr, assetX, f.maker))
	_, err = f.deliver(f.taker, &RefundMsg{Escrow: escrowAddr})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	_, err = f.deliver(f.maker, &RefundMsg{Escrow: escrowAddr})
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestTakeFailures(t *testing.T) {
	cases := map[string]struct {
		prepare func(testing.TB, *fixture, barter.Address)
		msg     func(*fixture, barter.Address) *TakeMsg
		wantErr *errors.Error
	}{
		"insufficient payment": {
			prepare: func(t testing.TB, f *fixture, _ barter.Address) {
				require.NoError(t, f.bank.Move(f.db, f.taker, f.taker, f.maker, assetY, 1))
			},
			wantErr: errors.ErrInsufficientAmount,
		},
		"payment overflows maker balance": {
			prepare: func(t testing.TB, f *fixture, _ barter.Address) {
				f.issue(t, f.maker, assetY, math.MaxUint64-100)
			},
			wantErr: errors.ErrOverflow,
		},
		"release overflows taker balance": {
			prepare: func(t testing.TB, f *fixture, _ barter.Address) {
				f.issue(t, f.taker, assetX, math.MaxUint64-100)
			},
			wantErr: errors.ErrOverflow,
		},
		"unknown escrow": {
			msg: func(f *fixture, _ barter.Address) *TakeMsg {
				addr, _, err := EscrowAddress(bartertest.Namespace, f.maker, 99)
				if err != nil {
					panic(err)
				}
				return &TakeMsg{Escrow: addr}
			},
			wantErr: errors.ErrNotFound,
		},
		"vault missing": {
			prepare: func(t testing.TB, f *fixture, escrowAddr barter.Address) {
				vaultAddr, err := VaultAddress(bartertest.Namespace, f.maker, 1)
				require.NoError(t, err)
				require.NoError(t, f.bank.Move(f.db, escrowAddr, vaultAddr, f.maker, assetX, 1000))
				require.NoError(t, f.bank.Close(f.db, escrowAddr, vaultAddr, assetX, f.maker))
			},
			wantErr: errors.ErrNotFound,
		},
		"explicit taker did not sign": {
			msg: func(f *fixture, escrowAddr barter.Address) *TakeMsg {
				return &TakeMsg{Escrow: escrowAddr, Taker: bartertest.NewSigner()}
			},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			escrowAddr := f.make(t, 1)
			if tc.prepare != nil {
				tc.prepare(t, f, escrowAddr)
			}
			msg := &TakeMsg{Escrow: escrowAddr}
			if tc.msg != nil {
				msg = tc.msg(f, escrowAddr)
			}

			before := dump(t, f.db)
			_, err := f.deliver(f.taker, msg)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %v", tc.wantErr, err)
			}
			assert.Equal(t, before, dump(t, f.db), "failed take must not change the state")
		})
	}
}

func TestManyEscrowsOfOneMaker(t *testing.T) {
	f := newFixture(t)
	f.issue(t, f.maker, assetX, 1000)
	f.issue(t, f.taker, assetY, 500)

	first := f.make(t, 1)
	second := f.make(t, 2)
	assert.NotEqual(t, first, second)

	keys, err := NewBucket().ByIndex(f.db, MakerIndex, f.maker)
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	_, err = f.deliver(f.taker, &TakeMsg{Escrow: second})
	require.NoError(t, err)

	var escrow Escrow
	require.NoError(t, NewBucket().One(f.db, first, &escrow))
	assert.EqualValues(t, 1, escrow.Seed)
}

// dump returns all key value pairs of the store, to compare states.
func dump(t testing.TB, db barter.ReadOnlyKVStore) map[string]string {
	t.Helper()
	it, err := db.Iterator(nil, nil)
	require.NoError(t, err)
	defer it.Release()

	res := make(map[string]string)
	for {
		k, v, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res
		}
		require.NoError(t, err)
		res[string(k)] = string(v)
	}
}
