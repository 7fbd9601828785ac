package page

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ucsform/pkg/form"
)

type stubTemplates struct {
	name string
	data any
	err  error
}

func (s *stubTemplates) RenderTemplate(name string, data any, _ ...io.Writer) (string, error) {
	s.name = name
	s.data = data
	if s.err != nil {
		return "", s.err
	}
	return "ok", nil
}

func (s *stubTemplates) RenderString(string, any, ...io.Writer) (string, error) {
	return "", nil
}

func (s *stubTemplates) RegisterFilter(string, func(any, any) (any, error)) error {
	return nil
}

func (s *stubTemplates) GlobalContext(any) error {
	return nil
}

func snapshotWith(t *testing.T, edits map[form.Field]string) form.Snapshot {
	t.Helper()
	st := form.Initial()
	for _, f := range form.EditableFields() {
		raw, ok := edits[f]
		if !ok {
			continue
		}
		next, err := st.Update(f, raw)
		if err != nil {
			t.Fatalf("update %s: %v", f, err)
		}
		st = next
	}
	return form.Snapshot{State: st}
}

func TestRender_DefaultPage(t *testing.T) {
	renderer, err := New(WithDeriveURL("/api/derive"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	snap := snapshotWith(t, map[form.Field]string{
		form.FieldLL: "45",
		form.FieldPL: "20",
	})
	out, err := renderer.Render(context.Background(), snap)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		"<title>UCS PREDICTOR</title>",
		`name="PI" value="25" disabled`,
		`name="Mixing" value="" max="12"`,
		`data-derive-url="/api/derive"`,
		`data-phase="idle"`,
		">Predict UCS</button>",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
	if strings.Contains(html, "ucs-result") {
		t.Fatalf("result block rendered without a prediction")
	}
	if strings.Contains(html, "ucs-notice") {
		t.Fatalf("notice rendered without a message")
	}
}

func TestRender_ResultAndSubmitting(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.Render(context.Background(), form.Snapshot{
		State:     form.Initial(),
		Result:    "3.14",
		HasResult: true,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "<p>3.14 MPa</p>") {
		t.Fatalf("missing result in output:\n%s", out)
	}

	out, err = renderer.Render(context.Background(), form.Snapshot{
		State:      form.Initial(),
		Submitting: true,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), " disabled>Predicting...</button>") {
		t.Fatalf("submit control not disabled while submitting:\n%s", out)
	}
}

func TestRender_NoticeIsSanitized(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.Render(context.Background(), form.Snapshot{
		State:  form.Initial(),
		Notice: `<script>alert(1)</script>` + form.MessageClaySilt,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if strings.Contains(html, "<script>alert") {
		t.Fatalf("notice markup leaked:\n%s", html)
	}
	if !strings.Contains(html, form.MessageClaySilt) {
		t.Fatalf("notice text missing:\n%s", html)
	}
}

func TestRender_ValuesAreEscaped(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	snap := snapshotWith(t, map[form.Field]string{form.FieldClay: `"><b>x`})
	out, err := renderer.Render(context.Background(), snap)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), `"><b>x`) {
		t.Fatalf("value was not escaped:\n%s", out)
	}
}

func TestRender_ViewPassedToTemplates(t *testing.T) {
	stub := &stubTemplates{}
	renderer, err := New(
		WithTemplateRenderer(stub),
		WithActionPath("/form"),
		WithTheme(DefaultTheme("", "dark", "/assets")),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	snap := snapshotWith(t, map[form.Field]string{form.FieldMixing: "30"})
	snap.Notice = form.MessageUnreachable
	if _, err := renderer.Render(context.Background(), snap); err != nil {
		t.Fatalf("render: %v", err)
	}
	if stub.name != pageTemplate {
		t.Fatalf("template = %q", stub.name)
	}

	view, ok := stub.data.(pageView)
	if !ok {
		t.Fatalf("data type = %T", stub.data)
	}

	got := struct {
		Action, Stylesheet, Notice, Phase, ThemeVariant string
		SectionIDs                                      []string
		Mixing                                          fieldView
	}{
		Action:       view.Action,
		Stylesheet:   view.Stylesheet,
		Notice:       view.Notice,
		Phase:        view.Phase,
		ThemeVariant: view.Theme.Variant,
	}
	for _, section := range view.Sections {
		got.SectionIDs = append(got.SectionIDs, section.ID)
		for _, field := range section.Fields {
			if field.Name == string(form.FieldMixing) {
				got.Mixing = field
			}
		}
	}

	want := struct {
		Action, Stylesheet, Notice, Phase, ThemeVariant string
		SectionIDs                                      []string
		Mixing                                          fieldView
	}{
		Action:       "/form",
		Stylesheet:   "/assets/ucsform.css",
		Notice:       form.MessageUnreachable,
		Phase:        "settled",
		ThemeVariant: "dark",
		SectionIDs:   []string{"material", "chemical", "process"},
		Mixing: fieldView{
			Name:  "Mixing",
			Label: "Mixing",
			Help:  "Capped at 12.",
			Value: "12",
			Max:   "12",
			Step:  "0.01",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_PropagatesTemplateErrors(t *testing.T) {
	renderer, err := New(WithTemplateRenderer(&stubTemplates{err: errors.New("boom")}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := renderer.Render(context.Background(), form.Snapshot{}); err == nil {
		t.Fatalf("expected render error")
	}
}

func TestCSSVarsStyle_DropsUnsafeEntries(t *testing.T) {
	got := cssVarsStyle(map[string]string{
		"--ucs-text":   "#111",
		"--ucs-bad":    "red;}</style><script>",
		"color":        "blue",
		"--ucs-border": " #ccc ",
	})
	want := ":root{--ucs-border:#ccc;--ucs-text:#111;}"
	if got != want {
		t.Fatalf("cssVarsStyle = %q, want %q", got, want)
	}
}

func TestDefaultTheme_FallsBackToLight(t *testing.T) {
	cfg := DefaultTheme("custom", "neon", "")
	if cfg.Variant != "light" || cfg.Theme != "custom" {
		t.Fatalf("theme = %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.Tokens["background"] != "#ffffff" {
		t.Fatalf("tokens = %v", cfg.Tokens)
	}
	if got := cfg.AssetURL(StylesheetName); got != "/ucsform.css" {
		t.Fatalf("asset url = %q", got)
	}
}

func TestAssetsFS_ServesStylesheet(t *testing.T) {
	f, err := AssetsFS().Open(StylesheetName)
	if err != nil {
		t.Fatalf("open stylesheet: %v", err)
	}
	_ = f.Close()
}

func TestThemeFromManifest_MergesVariant(t *testing.T) {
	manifest := DefaultManifest()
	manifest.Assets.Prefix = "/static/"
	manifest.Variants["contrast"] = theme.Variant{
		Tokens: map[string]string{"text": "#000000"},
		Assets: theme.Assets{Files: map[string]string{"stylesheet": "contrast.css"}},
	}

	cfg := ThemeFromManifest(manifest, "Contrast", "/assets")
	if cfg.Variant != "contrast" {
		t.Fatalf("variant = %q", cfg.Variant)
	}
	if cfg.CSSVars["--ucs-text"] != "#000000" || cfg.CSSVars["--ucs-background"] != "#ffffff" {
		t.Fatalf("css vars = %v", cfg.CSSVars)
	}
	if got := stylesheetURL(cfg, ""); got != "/static/contrast.css" {
		t.Fatalf("stylesheet = %q", got)
	}
	if ThemeFromManifest(nil, "dark", "") != nil {
		t.Fatalf("expected nil config for nil manifest")
	}
}

func TestRender_TemplatesDirOverridesBundle(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	custom := `<h1>{{ title }}</h1><link href="{{ stylesheet }}">`
	if err := os.WriteFile(filepath.Join(dir, "templates", "page.tmpl"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	renderer, err := New(
		WithTemplatesDir(dir),
		WithTheme(DefaultTheme("", "light", "/assets")),
		WithStylesheet("https://cdn.example.com/ucs.css"),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), form.Snapshot{State: form.Initial()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<h1>UCS PREDICTOR</h1><link href="https://cdn.example.com/ucs.css">`
	if string(out) != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestNew_RejectsMissingTemplatesDir(t *testing.T) {
	if _, err := New(WithTemplatesDir(filepath.Join(t.TempDir(), "missing"))); err == nil {
		t.Fatalf("expected error for missing templates dir")
	}
}
