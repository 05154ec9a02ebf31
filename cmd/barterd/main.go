package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/barter"
	bapp "github.com/iov-one/barter/cmd/barterd/app"
	"github.com/iov-one/barter/commands/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const flagLogLevel = "log_level"

func main() {
	logger := &lazyLogger{log.NewNopLogger()}
	root := &cobra.Command{
		Use:   "barterd",
		Short: "Barter escrow ABCI application",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opt, err := log.AllowLevel(viper.GetString(flagLogLevel))
			if err != nil {
				return err
			}
			logger.Logger = log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stdout)), opt).
				With("module", "barter")
			return nil
		},
		SilenceUsage: true,
	}

	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".barterd")
	root.PersistentFlags().String(server.FlagHome, defaultHome, "directory to store files under")
	root.PersistentFlags().String(flagLogLevel, "info", "log level, one of debug, info, error, none")
	_ = viper.BindPFlag(server.FlagHome, root.PersistentFlags().Lookup(server.FlagHome))
	_ = viper.BindPFlag(flagLogLevel, root.PersistentFlags().Lookup(flagLogLevel))

	// BARTER_HOME, BARTER_LOG_LEVEL, BARTER_BIND and BARTER_METRICS
	viper.SetEnvPrefix("BARTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	root.AddCommand(
		server.InitCmd(bapp.GenInitOptions, logger),
		server.StartCmd(bapp.GenerateApp, logger),
		validateCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the app version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(barter.Version())
			},
		},
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// validateCmd builds the initializers lazily, once the home directory is
// known and the namespace can be read from its genesis.
func validateCmd() *cobra.Command {
	cmd := server.ValidateCmd(nil)
	cmd.RunE = func(c *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{server.GenesisFile(viper.GetString(server.FlagHome))}
		}
		ns, err := bapp.NamespaceOf(args[0])
		if err != nil {
			return err
		}
		return server.ValidateGenesis(bapp.Initializers(ns), args)
	}
	return cmd
}

// lazyLogger lets commands be built before the log level flag is parsed.
type lazyLogger struct {
	log.Logger
}
