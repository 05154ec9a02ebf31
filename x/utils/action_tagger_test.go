package utils

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

func TestActionTagger(t *testing.T) {
	db := store.MemStore()
	tx := &bartertest.Tx{Msg: &bartertest.Msg{RoutePath: "escrow/take"}}

	res, err := NewActionTagger().Deliver(context.Background(), db, tx, &bartertest.Handler{})
	require.NoError(t, err)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, []byte(ActionKey), res.Tags[0].Key)
	assert.Equal(t, []byte("escrow/take"), res.Tags[0].Value)

	_, err = NewActionTagger().Deliver(context.Background(), db, tx, &bartertest.Handler{DeliverErr: errors.ErrNotFound})
	assert.True(t, errors.ErrNotFound.Is(err))

	created := bartertest.NewAsset("listing")
	res, err = NewActionTagger().Deliver(context.Background(), db, tx, &bartertest.Handler{
		DeliverResult: barter.DeliverResult{Data: created},
	})
	require.NoError(t, err)
	require.Len(t, res.Tags, 2)
	assert.Equal(t, []byte(CreatedKey), res.Tags[1].Key)
	assert.Equal(t, []byte(created.String()), res.Tags[1].Value)

	var h barter.Handler = &bartertest.Handler{}
	_, err = NewActionTagger().Check(context.Background(), db, tx, h)
	assert.NoError(t, err)
}
