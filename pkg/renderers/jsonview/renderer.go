// Package jsonview renders a form snapshot as a JSON document for API
// clients that negotiate application/json on the form routes.
package jsonview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-ucsform/pkg/form"
	"github.com/goliatone/go-ucsform/pkg/render"
)

// Renderer implements render.Renderer for JSON output.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints output using indent per level.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New constructs the JSON renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

type fieldView struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Required bool   `json:"required"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

type snapshotView struct {
	Phase       string      `json:"phase"`
	Fields      []fieldView `json:"fields"`
	Submitting  bool        `json:"submitting"`
	SubmitLabel string      `json:"submitLabel"`
	Result      *string     `json:"result"`
	Display     string      `json:"display,omitempty"`
	Notice      string      `json:"notice,omitempty"`
}

// Render writes the snapshot. Fields keep enumeration order and result is
// null until a prediction succeeds.
func (r *Renderer) Render(_ context.Context, snap form.Snapshot) ([]byte, error) {
	view := snapshotView{
		Phase:       string(snap.Phase()),
		Submitting:  snap.Submitting,
		SubmitLabel: snap.SubmitLabel(),
		Display:     snap.DisplayResult(),
		Notice:      snap.Notice,
	}
	if snap.HasResult {
		result := snap.Result
		view.Result = &result
	}
	for _, f := range form.Fields() {
		view.Fields = append(view.Fields, fieldView{
			Name:     string(f),
			Value:    snap.State.Get(f),
			Required: f.Required(),
			ReadOnly: f.Derived(),
		})
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(view, "", r.indent)
	} else {
		out, err = json.Marshal(view)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview renderer: %w", err)
	}
	return out, nil
}
