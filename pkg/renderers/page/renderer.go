package page

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-ucsform/pkg/form"
	"github.com/goliatone/go-ucsform/pkg/layout"
	"github.com/goliatone/go-ucsform/pkg/render"
	rendertemplate "github.com/goliatone/go-ucsform/pkg/render/template"
	gotemplate "github.com/goliatone/go-ucsform/pkg/render/template/gotemplate"
)

const pageTemplate = "templates/page.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	layout           *layout.Layout
	theme            *theme.RendererConfig
	actionPath       string
	deriveURL        string
	stylesheet       string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir layers a directory on disk over the template bundle.
// Files mirror the bundle layout (templates/page.tmpl); anything missing
// falls back to the bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithLayout overrides the embedded layout.
func WithLayout(l layout.Layout) Option {
	return func(cfg *config) {
		cfg.layout = &l
	}
}

// WithTheme sets the theme used for CSS variables and asset URLs.
func WithTheme(t *theme.RendererConfig) Option {
	return func(cfg *config) {
		cfg.theme = t
	}
}

// WithActionPath sets the form's POST target. Defaults to "/".
func WithActionPath(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.actionPath = path
		}
	}
}

// WithDeriveURL enables live PI/Mixing updates against the given endpoint.
func WithDeriveURL(url string) Option {
	return func(cfg *config) {
		cfg.deriveURL = url
	}
}

// WithStylesheet sets the stylesheet URL, taking precedence over the theme.
func WithStylesheet(url string) Option {
	return func(cfg *config) {
		cfg.stylesheet = url
	}
}

// Renderer produces the full HTML page for a form snapshot.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	layout     layout.Layout
	theme      *theme.RendererConfig
	actionPath string
	deriveURL  string
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the page renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		actionPath: "/",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOptions := []gotemplate.Option{
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		}
		if cfg.templatesDir != "" {
			engineOptions = append(engineOptions, gotemplate.WithBaseDir(cfg.templatesDir))
		}
		engine, err := gotemplate.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("page renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	l := cfg.layout
	if l == nil {
		def, err := layout.Default()
		if err != nil {
			return nil, fmt.Errorf("page renderer: %w", err)
		}
		l = &def
	}

	return &Renderer{
		templates:  renderer,
		layout:     *l,
		theme:      cfg.theme,
		actionPath: cfg.actionPath,
		deriveURL:  cfg.deriveURL,
		stylesheet: cfg.stylesheet,
	}, nil
}

func (r *Renderer) Name() string {
	return "page"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Layout returns the layout the renderer was built with.
func (r *Renderer) Layout() layout.Layout {
	return r.layout
}

func (r *Renderer) Render(_ context.Context, snap form.Snapshot) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("page renderer: template renderer is nil")
	}

	result, err := r.templates.RenderTemplate(pageTemplate, r.view(snap))
	if err != nil {
		return nil, fmt.Errorf("page renderer: render template: %w", err)
	}
	return []byte(result), nil
}

type pageView struct {
	Title       string        `json:"title"`
	ResultTitle string        `json:"result_title"`
	Action      string        `json:"action"`
	DeriveURL   string        `json:"derive_url"`
	Stylesheet  string        `json:"stylesheet"`
	Sections    []sectionView `json:"sections"`
	Result      string        `json:"result"`
	Notice      string        `json:"notice"`
	Submitting  bool          `json:"submitting"`
	SubmitLabel string        `json:"submit_label"`
	Phase       string        `json:"phase"`
	Theme       themeView     `json:"theme"`
}

type sectionView struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Fields []fieldView `json:"fields"`
}

type fieldView struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Unit     string `json:"unit"`
	Help     string `json:"help"`
	Value    string `json:"value"`
	ReadOnly bool   `json:"read_only"`
	Max      string `json:"max"`
	Step     string `json:"step"`
}

func (r *Renderer) view(snap form.Snapshot) pageView {
	sections := make([]sectionView, 0, len(r.layout.Sections))
	for _, section := range r.layout.Sections {
		sv := sectionView{ID: section.ID, Title: section.Title}
		for _, field := range section.Fields {
			fv := fieldView{
				Name:     string(field.Name),
				Label:    field.Label,
				Unit:     field.Unit,
				Help:     field.Help,
				Value:    snap.State.Get(field.Name),
				ReadOnly: field.ReadOnly,
				Step:     field.Step,
			}
			if field.Max != nil {
				fv.Max = form.FormatNumber(*field.Max)
			}
			sv.Fields = append(sv.Fields, fv)
		}
		sections = append(sections, sv)
	}

	return pageView{
		Title:       r.layout.Title,
		ResultTitle: r.layout.ResultTitle,
		Action:      r.actionPath,
		DeriveURL:   r.deriveURL,
		Stylesheet:  stylesheetURL(r.theme, r.stylesheet),
		Sections:    sections,
		Result:      snap.DisplayResult(),
		Notice:      sanitizeNotice(snap.Notice),
		Submitting:  snap.Submitting,
		SubmitLabel: snap.SubmitLabel(),
		Phase:       string(snap.Phase()),
		Theme:       buildThemeView(r.theme),
	}
}
