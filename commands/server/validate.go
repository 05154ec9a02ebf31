package server

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ValidateCmd runs the initializer against the app_state of given genesis
// files, or the one in the home directory if none is given. Nothing is
// persisted.
func ValidateCmd(ini barter.Initializer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [genesis.json...]",
		Short: "Check that the genesis app_state can be loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{GenesisFile(viper.GetString(FlagHome))}
			}
			return ValidateGenesis(ini, args)
		},
	}
}

// ValidateGenesis loads the app_state of every file into a throw away store.
func ValidateGenesis(ini barter.Initializer, genesisPaths []string) error {
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini barter.Initializer, genesisPath string) error {
	doc, err := readGenesis(genesisPath)
	if err != nil {
		return err
	}
	var state barter.Options
	if err := barter.Options(doc).ReadOptions(appStateKey, &state); err != nil {
		return err
	}
	if len(state) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state")
	}

	// Use in memory store because we want to discard the result.
	db := store.MemStore()
	if err := ini.FromGenesis(state, db); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
