package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecorator(t *testing.T) {
	kv := store.MemStore()
	checkKv := kv.CacheWrap()
	signers := new(SigCheckHandler)
	d := NewDecorator()
	chainID := "deco-rate"
	ctx := barter.WithChainID(context.Background(), chainID)

	priv := bartertest.NewKey()
	perms := []barter.Address{priv.PublicKey().Address()}

	tx := &signedTx{payload: []byte("art")}
	sig, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)

	deliver := func(dec barter.Decorator, my barter.Tx) error {
		_, err := dec.Deliver(ctx, kv, my, signers)
		return err
	}
	check := func(dec barter.Decorator, my barter.Tx) error {
		_, err := dec.Check(ctx, checkKv, my, signers)
		return err
	}

	for i, fn := range []func(barter.Decorator, barter.Tx) error{check, deliver} {
		// test with no sigs
		tx.sigs = nil
		err := fn(d, tx)
		assert.True(t, errors.ErrUnauthorized.Is(err), "%d", i)

		// test with one
		tx.sigs = []*StdSignature{sig}
		require.NoError(t, fn(d, tx), "%d", i)
		assert.Equal(t, perms, signers.Signers)

		// test with replay
		err = fn(d, tx)
		assert.True(t, errors.ErrSequence.Is(err), "%d", i)

		// test allowing none
		ad := d.AllowMissingSigs()
		tx.sigs = nil
		require.NoError(t, fn(ad, tx), "%d", i)
		assert.Empty(t, signers.Signers)

		// test allowing, with next sequence
		tx.sigs = []*StdSignature{sig1}
		require.NoError(t, fn(ad, tx), "%d", i)
		assert.Equal(t, perms, signers.Signers)
	}
}

func TestSignatureOfOtherChainIsRejected(t *testing.T) {
	kv := store.MemStore()
	priv := bartertest.NewKey()
	tx := &signedTx{payload: []byte("art")}

	sig, err := SignTx(priv, tx, "other-chain", 0)
	require.NoError(t, err)
	tx.sigs = []*StdSignature{sig}

	_, err = VerifyTxSignatures(kv, tx, "this-chain")
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// Sequence did not move.
	user, err := NewBucket().GetOrCreate(kv, priv.PublicKey())
	require.NoError(t, err)
	assert.EqualValues(t, 0, user.Sequence)
}

func TestRegisterQuery(t *testing.T) {
	kv := store.MemStore()
	priv := bartertest.NewKey()
	tx := &signedTx{payload: []byte("art")}
	sig, err := SignTx(priv, tx, "query-chain", 0)
	require.NoError(t, err)
	tx.sigs = []*StdSignature{sig}
	_, err = VerifyTxSignatures(kv, tx, "query-chain")
	require.NoError(t, err)

	qr := barter.NewQueryRouter()
	RegisterQuery(qr)
	res, err := qr.Handler("/auth").Query(kv, barter.KeyQueryMod, priv.PublicKey().Address())
	require.NoError(t, err)
	require.Len(t, res, 1)
}

func TestCheckAndIncrementSequence(t *testing.T) {
	u := &UserData{PubKey: bartertest.NewKey().PublicKey(), Sequence: 5}
	assert.True(t, errors.ErrSequence.Is(u.CheckAndIncrementSequence(4)))
	require.NoError(t, u.CheckAndIncrementSequence(5))
	assert.EqualValues(t, 6, u.Sequence)

	u.Sequence = maxSequenceValue
	assert.True(t, errors.ErrOverflow.Is(u.CheckAndIncrementSequence(maxSequenceValue)))
}

//---------------- helpers --------

// SigCheckHandler stores the seen signers on each call
type SigCheckHandler struct {
	Signers []barter.Address
}

var _ barter.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Check(ctx barter.Context, store barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	s.Signers = Authenticate{}.GetSigners(ctx)
	return &barter.CheckResult{}, nil
}

func (s *SigCheckHandler) Deliver(ctx barter.Context, store barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	s.Signers = Authenticate{}.GetSigners(ctx)
	return &barter.DeliverResult{}, nil
}

type signedTx struct {
	payload []byte
	sigs    []*StdSignature
}

var _ SignedTx = (*signedTx)(nil)

func (tx *signedTx) GetMsg() (barter.Msg, error) {
	return &bartertest.Msg{RoutePath: "test/sigs"}, nil
}

func (tx *signedTx) GetSignBytes() ([]byte, error) {
	return tx.payload, nil
}

func (tx *signedTx) GetSignatures() []*StdSignature {
	return tx.sigs
}
