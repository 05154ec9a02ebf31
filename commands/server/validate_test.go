package server

import (
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

type keyInitializer struct {
	want string
}

func (i keyInitializer) FromGenesis(opts barter.Options, db barter.KVStore) error {
	var got string
	if err := opts.ReadOptions("key", &got); err != nil {
		return err
	}
	if got != i.want {
		return errors.Wrapf(errors.ErrInput, "key %q", got)
	}
	return db.Set([]byte("key"), []byte(got))
}

func TestValidateGenesis(t *testing.T) {
	defer setupViper(t)()
	genFile := GenesisFile(viper.GetString(FlagHome))

	err := ValidateGenesis(keyInitializer{want: "default"}, []string{genFile})
	assert.True(t, errors.ErrEmpty.Is(err))

	require.NoError(t, initGenesis(genTestOptions, log.NewNopLogger(), genFile, false, nil))

	// Without arguments the genesis of the home directory is used.
	cmd := ValidateCmd(keyInitializer{want: "default"})
	require.NoError(t, cmd.RunE(cmd, nil))

	err = ValidateGenesis(keyInitializer{want: "other"}, []string{genFile})
	assert.True(t, errors.ErrInput.Is(err))
}
