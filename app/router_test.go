package app

import (
	"context"
	"testing"

	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()

	var h bartertest.Handler
	r.Handle("escrow/make", &h)

	db := store.MemStore()
	ctx := context.Background()

	tx := &bartertest.Tx{Msg: &bartertest.Msg{RoutePath: "escrow/make"}}
	_, err := r.Check(ctx, db, tx)
	require.NoError(t, err)
	_, err = r.Deliver(ctx, db, tx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.CheckCallCount())
	assert.Equal(t, 1, h.DeliverCallCount())

	unknown := &bartertest.Tx{Msg: &bartertest.Msg{RoutePath: "escrow/unknown"}}
	_, err = r.Deliver(ctx, db, unknown)
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = r.Check(ctx, db, unknown)
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = r.Deliver(ctx, db, &bartertest.Tx{})
	assert.True(t, errors.ErrMsg.Is(err))

	_, err = r.Deliver(ctx, db, &bartertest.Tx{Err: errors.ErrType})
	assert.True(t, errors.ErrType.Is(err))
	assert.Equal(t, 1, h.DeliverCallCount())
}

func TestRouterRegistration(t *testing.T) {
	r := NewRouter()
	r.Handle("cash/send", &bartertest.Handler{})

	assert.Panics(t, func() {
		r.Handle("cash/send", &bartertest.Handler{})
	}, "duplicated path")
	assert.Panics(t, func() {
		r.Handle("cash send", &bartertest.Handler{})
	}, "invalid path")
}
