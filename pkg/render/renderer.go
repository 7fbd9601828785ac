package render

import (
	"context"

	"github.com/goliatone/go-ucsform/pkg/form"
)

// Renderer converts a form snapshot into a byte representation (HTML, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, snap form.Snapshot) ([]byte, error)
}
