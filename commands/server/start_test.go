package server

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/iov-one/barter/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestServeUntilSignal(t *testing.T) {
	defer setupViper(t)()
	viper.Set(FlagBind, "tcp://127.0.0.1:36658")

	var got *Options
	gen := func(opts *Options) (abci.Application, error) {
		got = opts
		return abci.NewBaseApplication(), nil
	}

	stop := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- serve(gen, log.NewNopLogger(), stop) }()

	stop <- syscall.SIGTERM
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	require.NotNil(t, got)
	assert.Equal(t, viper.GetString(FlagHome), got.Home)
	assert.NotNil(t, got.Registry)
}

func TestServeGeneratorFailure(t *testing.T) {
	defer setupViper(t)()

	gen := func(*Options) (abci.Application, error) {
		return nil, errors.ErrHuman
	}
	err := serve(gen, log.NewNopLogger(), make(chan os.Signal))
	assert.True(t, errors.ErrHuman.Is(err))
}
