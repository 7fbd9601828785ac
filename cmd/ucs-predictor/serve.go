package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-ucsform/internal/server"
	"github.com/goliatone/go-ucsform/pkg/renderers/page"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}

			srv, err := a.buildServer()
			if err != nil {
				return err
			}
			a.logger.Info("starting server",
				zap.String("addr", a.cfg.Addr),
				zap.String("backend", a.cfg.BackendURL),
			)
			err = srv.ListenAndServe(cmd.Context(), a.cfg.Addr, a.cfg.ShutdownGrace)
			if err != nil && !isCancelled(err) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides UCS_PREDICTOR_ADDR)")
	return cmd
}

func (a *app) buildServer() (*server.Server, error) {
	l, err := a.layout()
	if err != nil {
		return nil, err
	}
	client, err := a.predictor()
	if err != nil {
		return nil, err
	}
	renderer, err := page.New(
		page.WithLayout(l),
		page.WithTheme(page.DefaultTheme(a.cfg.Theme, a.cfg.ThemeVariant, "/assets")),
		page.WithDeriveURL("/api/derive"),
		page.WithTemplatesDir(a.cfg.TemplatesDir),
		page.WithStylesheet(a.cfg.StylesheetURL),
	)
	if err != nil {
		return nil, err
	}
	return server.New(renderer, client,
		server.WithLogger(a.logger),
		server.WithRateLimit(a.cfg.RateLimit, a.cfg.RateBurst),
		server.WithTrustForwarded(a.cfg.TrustForwarded),
	)
}
