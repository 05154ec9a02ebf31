package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	ctx := barter.WithLogger(context.Background(), log.NewTMLogger(&buf))
	db := store.MemStore()

	_, err := NewLogging().Deliver(ctx, db, nil, &bartertest.Handler{DeliverResult: barter.DeliverResult{Log: "made"}})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "made")
	assert.Contains(t, buf.String(), "duration")

	buf.Reset()
	_, err = NewLogging().Deliver(ctx, db, nil, &bartertest.Handler{DeliverErr: errors.ErrUnauthorized})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Contains(t, buf.String(), "unauthorized")
}
