// Package ucsform is the top-level entry point for the UCS prediction form.
// It wires the controller to the HTTP predictor and exposes the embedded page
// bundles for callers that host the form themselves.
package ucsform

import (
	"context"
	"io/fs"

	"go.uber.org/zap"

	"github.com/goliatone/go-ucsform/pkg/form"
	"github.com/goliatone/go-ucsform/pkg/predictor"
	"github.com/goliatone/go-ucsform/pkg/renderers/page"
)

// EmbeddedTemplates exposes the page templates so callers can reuse or
// extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return page.TemplatesFS()
}

// AssetsFS exposes the page stylesheet bundle.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(ucsform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return page.AssetsFS()
}

// NewController builds a controller that posts to the prediction service at
// endpoint (empty means the default service).
func NewController(endpoint string, logger *zap.Logger, options ...predictor.Option) (*form.Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := predictor.New(endpoint, append([]predictor.Option{predictor.WithLogger(logger)}, options...)...)
	if err != nil {
		return nil, err
	}
	return form.NewController(client, form.WithLogger(logger)), nil
}

// GenerateHTML renders the page for snap with the default page renderer
// configured by options.
func GenerateHTML(ctx context.Context, snap form.Snapshot, options ...page.Option) ([]byte, error) {
	renderer, err := page.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, snap)
}
