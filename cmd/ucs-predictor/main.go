// Command ucs-predictor serves the UCS prediction form over HTTP or runs it
// as an interactive terminal session.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-ucsform/internal/config"
	"github.com/goliatone/go-ucsform/internal/logging"
	"github.com/goliatone/go-ucsform/pkg/layout"
	"github.com/goliatone/go-ucsform/pkg/predictor"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger

	backend  string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ucs-predictor",
		Short: "Predict unconfined compressive strength from soil measurements",
		Long: `ucs-predictor collects soil and material measurements, validates them,
and asks a remote prediction service for the Unconfined Compressive
Strength (MPa).

Settings come from UCS_PREDICTOR_* environment variables; flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("backend") {
				cfg.BackendURL = a.backend
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = a.logLevel
			}
			a.cfg = cfg

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.backend, "backend", "", "prediction service URL (overrides UCS_PREDICTOR_BACKEND_URL)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides UCS_PREDICTOR_LOG_LEVEL)")

	root.AddCommand(newServeCmd(a), newPromptCmd(a))
	return root
}

func (a *app) predictor() (*predictor.Client, error) {
	client, err := predictor.New(
		a.cfg.BackendURL,
		predictor.WithTimeout(a.cfg.BackendTimeout),
		predictor.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *app) layout() (layout.Layout, error) {
	if a.cfg.LayoutFile == "" {
		return layout.Default()
	}
	dir, name := filepath.Split(a.cfg.LayoutFile)
	if dir == "" {
		dir = "."
	}
	l, err := layout.LoadFS(os.DirFS(dir), name)
	if err != nil {
		return layout.Layout{}, err
	}
	return l, nil
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
