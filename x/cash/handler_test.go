package cash

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/app"
	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendHandler(t *testing.T) {
	alice := bartertest.NewSigner()
	bob := bartertest.NewSigner()
	gold := bartertest.NewAsset("gold")

	cases := map[string]struct {
		signer  barter.Address
		msg     *SendMsg
		wantErr *errors.Error
		wantBob uint64
	}{
		"success": {
			signer:  alice,
			msg:     &SendMsg{Source: alice, Destination: bob, Asset: gold, Amount: 30, Memo: "rent"},
			wantBob: 30,
		},
		"not signed by source": {
			signer:  bob,
			msg:     &SendMsg{Source: alice, Destination: bob, Asset: gold, Amount: 30},
			wantErr: errors.ErrUnauthorized,
		},
		"insufficient": {
			signer:  alice,
			msg:     &SendMsg{Source: alice, Destination: bob, Asset: gold, Amount: 31},
			wantErr: errors.ErrInsufficientAmount,
		},
		"zero amount": {
			signer:  alice,
			msg:     &SendMsg{Source: alice, Destination: bob, Asset: gold},
			wantErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db, ctrl := newLedger(t)
			require.NoError(t, ctrl.Issue(db, alice, gold, 30))

			r := app.NewRouter()
			RegisterRoutes(r, &bartertest.Auth{Signer: tc.signer}, ctrl)

			tx := &bartertest.Tx{Msg: tc.msg}
			_, err := r.Deliver(context.Background(), db, tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %v", tc.wantErr, err)
			}
			got, err := ctrl.Balance(db, bob, gold)
			require.NoError(t, err)
			assert.Equal(t, tc.wantBob, got)
		})
	}
}

func TestGenesis(t *testing.T) {
	alice := bartertest.NewSigner()
	genesis := `{
		"conf": {"cash": {"native_asset": "` + native.String() + `", "account_rent": 5}},
		"cash": [{"address": "` + alice.String() + `", "coins": [{"asset": "` + native.String() + `", "amount": 1000}]}]
	}`
	var opts barter.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db, ctrl := newLedger(t)
	require.NoError(t, Initializer{}.FromGenesis(opts, db))

	conf, err := LoadConfiguration(db)
	require.NoError(t, err)
	assert.EqualValues(t, 5, conf.AccountRent)

	bal, err := ctrl.Balance(db, alice, native)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, bal)
}
