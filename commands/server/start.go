package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/barter/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// FlagBind is the address the ABCI server listens on.
	FlagBind = "bind"
	// FlagMetrics is the address of the prometheus endpoint.
	FlagMetrics = "metrics"
	flagDebug   = "debug"

	shutdownTimeout = 5 * time.Second
)

// Options are passed to the AppGenerator.
type Options struct {
	Home   string
	Logger log.Logger
	Debug  bool
	// Registry collects the application metrics. It is served over
	// HTTP only when a metrics address is configured.
	Registry *prometheus.Registry
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(*Options) (abci.Application, error)

// StartCmd runs the ABCI server until the process is interrupted.
func StartCmd(gen AppGenerator, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the abci server",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(stop)
			return serve(gen, logger, stop)
		},
	}
	cmd.Flags().String(FlagBind, "tcp://localhost:26658", "address server listens on")
	cmd.Flags().String(FlagMetrics, "", "address of the prometheus /metrics endpoint, empty to disable")
	cmd.Flags().Bool(flagDebug, false, "call stack returned on error")
	for _, name := range []string{FlagBind, FlagMetrics, flagDebug} {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func serve(gen AppGenerator, logger log.Logger, stop <-chan os.Signal) error {
	opts := &Options{
		Home:     viper.GetString(FlagHome),
		Logger:   logger,
		Debug:    viper.GetBool(flagDebug),
		Registry: prometheus.NewRegistry(),
	}
	app, err := gen(opts)
	if err != nil {
		return errors.Wrap(err, "create application")
	}

	addr := viper.GetString(FlagBind)
	logger.Info("Starting ABCI app", "bind", addr)
	svr, err := server.NewServer(addr, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "create listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrHuman, "start abci server: %s", err)
	}
	defer func() {
		if err := svr.Stop(); err != nil {
			logger.Error("Cannot stop abci server", "err", err)
		}
	}()

	if maddr := viper.GetString(FlagMetrics); maddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
		msvr := &http.Server{Addr: maddr, Handler: mux}
		go func() {
			if err := msvr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
		logger.Info("Serving metrics", "addr", maddr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = msvr.Shutdown(ctx)
		}()
	}

	sig := <-stop
	logger.Info("Shutting down", "signal", sig)
	return nil
}
