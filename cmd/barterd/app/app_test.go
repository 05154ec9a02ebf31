package app

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/app"
	"github.com/iov-one/barter/coin"
	"github.com/iov-one/barter/commands/server"
	"github.com/iov-one/barter/crypto"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x/cash"
	"github.com/iov-one/barter/x/escrow"
	"github.com/iov-one/barter/x/sigs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const testChainID = "barter-test"

type testApp struct {
	t      *testing.T
	abci   abci.Application
	height int64
}

func newTestApp(t *testing.T, reg *prometheus.Registry, state interface{}) *testApp {
	t.Helper()
	application, err := GenerateApp(&server.Options{Logger: log.NewNopLogger(), Registry: reg})
	require.NoError(t, err)

	bz, err := json.Marshal(state)
	require.NoError(t, err)
	application.InitChain(abci.RequestInitChain{ChainId: testChainID, AppStateBytes: bz})
	a := &testApp{t: t, abci: application}
	a.block()
	return a
}

// block delivers given transactions in a new block and commits it.
func (a *testApp) block(txs ...[]byte) []abci.ResponseDeliverTx {
	a.height++
	a.abci.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{ChainID: testChainID, Height: a.height}})
	res := make([]abci.ResponseDeliverTx, len(txs))
	for i, tx := range txs {
		res[i] = a.abci.DeliverTx(tx)
	}
	a.abci.EndBlock(abci.RequestEndBlock{Height: a.height})
	a.abci.Commit()
	return res
}

func (a *testApp) query(path string, data []byte) [][]byte {
	a.t.Helper()
	res := a.abci.Query(abci.RequestQuery{Path: path, Data: data})
	require.EqualValues(a.t, 0, res.Code, res.Log)
	var set app.ResultSet
	require.NoError(a.t, set.Unmarshal(res.Value))
	return set.Results
}

func (a *testApp) balance(holder, asset barter.Address) uint64 {
	a.t.Helper()
	key := append(holder.Clone(), asset...)
	values := a.query("/wallets", key)
	if len(values) == 0 {
		return 0
	}
	var w cash.Wallet
	require.NoError(a.t, orm.Unmarshal(values[0], &w))
	return w.Amount
}

func signTx(t *testing.T, msg barter.Msg, key crypto.PrivateKey, seq int64) []byte {
	t.Helper()
	tx := &Tx{Msg: msg}
	sig, err := sigs.SignTx(key, tx, testChainID, seq)
	require.NoError(t, err)
	tx.Signatures = []*sigs.StdSignature{sig}
	bz, err := tx.Marshal()
	require.NoError(t, err)
	return bz
}

func TestEscrowOverABCI(t *testing.T) {
	ns := DefaultNamespace()
	native, err := NativeAsset(ns)
	require.NoError(t, err)
	gold, _ := ns.MustDerive([]byte("asset"), []byte("gold"))

	makerKey := crypto.GenPrivKeyEd25519()
	takerKey := crypto.GenPrivKeyEd25519()
	maker := makerKey.PublicKey().Address()
	taker := takerKey.PublicKey().Address()

	reg := prometheus.NewRegistry()
	a := newTestApp(t, reg, map[string]interface{}{
		paramsKey: barter.GenesisParams{
			Namespace: barter.NamespaceParams{Name: DefaultNamespaceName, Version: 1},
		},
		"cash": []cash.GenesisAccount{
			{Address: maker, Coins: []coin.Coin{coin.NewCoin(native, 1000)}},
			{Address: taker, Coins: []coin.Coin{coin.NewCoin(gold, 50)}},
		},
		"conf": map[string]interface{}{
			cash.ConfigurationName: cash.Configuration{NativeAsset: native, AccountRent: 10},
		},
	})

	makeMsg := &escrow.MakeMsg{
		Seed:            7,
		AssetOffered:    native,
		AssetRequested:  gold,
		RequestedAmount: 50,
		DepositAmount:   300,
	}
	res := a.block(signTx(t, makeMsg, makerKey, 0))
	require.EqualValues(t, 0, res[0].Code, res[0].Log)
	escrowAddr := barter.Address(res[0].Data)
	want, _, err := escrow.EscrowAddress(ns, maker, 7)
	require.NoError(t, err)
	assert.Equal(t, want, escrowAddr)

	assert.Len(t, a.query("/escrows", escrowAddr), 1)
	assert.Len(t, a.query("/escrows/maker", maker), 1)
	assert.EqualValues(t, 1000-300-10, a.balance(maker, native))

	take := signTx(t, &escrow.TakeMsg{Escrow: escrowAddr}, takerKey, 0)
	res = a.block(take)
	require.EqualValues(t, 0, res[0].Code, res[0].Log)

	assert.EqualValues(t, 300, a.balance(taker, native))
	assert.EqualValues(t, 50, a.balance(maker, gold))
	assert.EqualValues(t, 1000-300, a.balance(maker, native))
	assert.Empty(t, a.query("/escrows", escrowAddr))

	// Replay of the same signed transaction.
	res = a.block(take)
	_, err = barter.ParseDeliverOrError(res[0])
	assert.True(t, errors.ErrSequence.Is(err))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "barter_tx_processed_total")
}

func TestUnsignedTxIsRejected(t *testing.T) {
	state, err := GenInitOptions([]string{crypto.GenPrivKeyEd25519().PublicKey().Address().String()})
	require.NoError(t, err)
	a := newTestApp(t, nil, state)

	missing, _ := DefaultNamespace().MustDerive([]byte("escrow"))
	tx := &Tx{Msg: &escrow.RefundMsg{Escrow: missing}}
	bz, err := tx.Marshal()
	require.NoError(t, err)
	res := a.block(bz)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res[0].Code)

	res = a.block([]byte("not a transaction"))
	assert.Equal(t, errors.ErrInput.ABCICode(), res[0].Code)
}

func TestGenesisOfOtherNamespace(t *testing.T) {
	state := barter.Options{}
	raw, err := json.Marshal(barter.GenesisParams{
		Namespace: barter.NamespaceParams{Name: "othernet", Version: 1},
	})
	require.NoError(t, err)
	state[paramsKey] = raw

	err = paramsInitializer{ns: DefaultNamespace()}.FromGenesis(state, nil)
	assert.True(t, errors.ErrState.Is(err))
}
