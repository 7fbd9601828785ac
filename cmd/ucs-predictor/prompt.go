package main

import (
	"github.com/spf13/cobra"

	ucsform "github.com/goliatone/go-ucsform"
	"github.com/goliatone/go-ucsform/pkg/predictor"
	"github.com/goliatone/go-ucsform/pkg/renderers/tui"
)

func newPromptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Fill in the form interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.buildSession(nil)
			if err != nil {
				return err
			}
			return session.Run(cmd.Context())
		},
	}
}

func (a *app) buildSession(driver tui.PromptDriver) (*tui.Session, error) {
	l, err := a.layout()
	if err != nil {
		return nil, err
	}
	controller, err := ucsform.NewController(a.cfg.BackendURL, a.logger,
		predictor.WithTimeout(a.cfg.BackendTimeout),
	)
	if err != nil {
		return nil, err
	}
	return tui.New(controller,
		tui.WithLayout(l),
		tui.WithPromptDriver(driver),
		tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
	)
}
