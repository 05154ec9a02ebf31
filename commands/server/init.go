/*
Package server implements the commands of the application daemon: writing
the application state into the genesis file, validating a genesis file and
running the ABCI server.
*/
package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/barter/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// FlagHome is the directory holding the tendermint configuration
	// and the application database.
	FlagHome = "home"

	appStateKey = "app_state"
	flagForce   = "force"
)

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// InitCmd will add the application state to a genesis file created
// by "tendermint init". Arguments are passed to the generator.
func InitCmd(gen GenOptions, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [args...]",
		Short: "Initialize app_state in the genesis file",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := viper.GetString(FlagHome)
			return initGenesis(gen, logger, GenesisFile(home), viper.GetBool(flagForce), args)
		},
	}
	cmd.Flags().Bool(flagForce, false, "overwrite existing app_state")
	_ = viper.BindPFlag(flagForce, cmd.Flags().Lookup(flagForce))
	return cmd
}

// GenesisFile returns the path of the genesis file in the home directory.
func GenesisFile(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

func initGenesis(gen GenOptions, logger log.Logger, genFile string, force bool, args []string) error {
	doc, err := readGenesis(genFile)
	if err != nil {
		return err
	}
	if len(doc[appStateKey]) != 0 && string(doc[appStateKey]) != "null" && !force {
		return errors.Wrapf(errors.ErrDuplicate, "%s already contains app_state", genFile)
	}

	options, err := gen(args)
	if err != nil {
		return errors.Wrap(err, "generate app_state")
	}
	doc[appStateKey] = options
	if err := writeGenesis(genFile, doc); err != nil {
		return err
	}
	logger.Info("App state written", "path", genFile)
	return nil
}

// genesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type genesisDoc map[string]json.RawMessage

func readGenesis(filename string) (genesisDoc, error) {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "%s, run tendermint init first", filename)
		}
		return nil, errors.Wrap(err, "read genesis")
	}
	var doc genesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis: %s", err)
	}
	return doc, nil
}

func writeGenesis(filename string, doc genesisDoc) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal genesis")
	}
	return ioutil.WriteFile(filename, out, 0600)
}
