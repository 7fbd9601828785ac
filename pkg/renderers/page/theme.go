package page

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

const (
	defaultThemeName = "ucsform"
	stylesheetKey    = "stylesheet"
	cssVarPrefix     = "--ucs-"
)

// DefaultManifest describes the built-in palette. The base tokens are the
// light variant; "dark" overrides them.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    defaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"background": "#ffffff",
			"text":       "#222222",
			"card":       "#f7f7f7",
			"border":     "#cccccc",
			"alert":      "#c0392b",
		},
		Assets: theme.Assets{
			Files: map[string]string{
				stylesheetKey: StylesheetName,
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"background": "#1b1d21",
					"text":       "#e8e8e8",
					"card":       "#26292f",
					"border":     "#44484f",
					"alert":      "#ff6b5b",
				},
			},
		},
	}
}

// DefaultTheme resolves the built-in manifest for variant ("light" or
// "dark"; anything else falls back to light) under the given theme name.
// Assets resolve under assetsPrefix.
func DefaultTheme(name, variant, assetsPrefix string) *theme.RendererConfig {
	manifest := DefaultManifest()
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		manifest.Name = trimmed
	}
	return ThemeFromManifest(manifest, variant, assetsPrefix)
}

// ThemeFromManifest merges the variant's tokens and asset files over the
// manifest base. A manifest asset prefix takes precedence over assetsPrefix.
func ThemeFromManifest(manifest *theme.Manifest, variant, assetsPrefix string) *theme.RendererConfig {
	if manifest == nil {
		return nil
	}

	variant = strings.ToLower(strings.TrimSpace(variant))
	selected, ok := manifest.Variants[variant]
	if !ok {
		variant = "light"
	}

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	files := make(map[string]string, len(manifest.Assets.Files))
	for key, value := range manifest.Assets.Files {
		files[key] = value
	}
	prefix := manifest.Assets.Prefix
	if ok {
		for key, value := range selected.Tokens {
			tokens[key] = value
		}
		for key, value := range selected.Assets.Files {
			files[key] = value
		}
		if selected.Assets.Prefix != "" {
			prefix = selected.Assets.Prefix
		}
	}
	if prefix == "" {
		prefix = assetsPrefix
	}
	prefix = strings.TrimRight(prefix, "/")

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars[cssVarPrefix+key] = value
	}

	return &theme.RendererConfig{
		Theme:   manifest.Name,
		Variant: variant,
		Tokens:  tokens,
		CSSVars: vars,
		AssetURL: func(key string) string {
			if key == "" {
				return ""
			}
			if file, ok := files[key]; ok {
				key = file
			}
			return prefix + "/" + strings.TrimLeft(key, "/")
		},
	}
}

type themeView struct {
	Name    string `json:"name"`
	Variant string `json:"variant"`
	CSSVars string `json:"css_vars"`
}

func buildThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	return themeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		CSSVars: cssVarsStyle(cfg.CSSVars),
	}
}

// cssVarsStyle renders a :root block. Entries that could break out of the
// declaration are dropped.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if !strings.HasPrefix(key, "--") || unsafeCSS(key) || unsafeCSS(vars[key]) {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root{")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(":")
		b.WriteString(strings.TrimSpace(vars[key]))
		b.WriteString(";")
	}
	b.WriteString("}")
	return b.String()
}

func unsafeCSS(s string) bool {
	return strings.ContainsAny(s, "<>{};\"'\\")
}

// stylesheetURL prefers an explicit override, then the theme asset.
func stylesheetURL(cfg *theme.RendererConfig, override string) string {
	if override != "" {
		return override
	}
	if cfg != nil && cfg.AssetURL != nil {
		return cfg.AssetURL(stylesheetKey)
	}
	return ""
}
