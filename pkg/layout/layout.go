// Package layout describes how the form fields are grouped and labelled.
// The default document is embedded; callers can load an override from any
// fs.FS holding a YAML or JSON file with the same shape.
package layout

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ucsform/pkg/form"
)

//go:embed layout.yaml
var defaultDocument []byte

// Layout is the resolved, validated form layout.
type Layout struct {
	Title       string
	ResultTitle string
	Sections    []Section
}

// Section groups fields under a heading.
type Section struct {
	ID     string
	Title  string
	Fields []Field
}

// Field carries presentation hints for one form field.
type Field struct {
	Name     form.Field
	Label    string
	Unit     string
	Help     string
	ReadOnly bool
	Max      *float64
	Step     string
}

// Editable reports whether a user may type into the field.
func (f Field) Editable() bool {
	return !f.ReadOnly
}

type documentFile struct {
	Title       string                `json:"title" yaml:"title"`
	ResultTitle string                `json:"resultTitle" yaml:"resultTitle"`
	Sections    []sectionFile         `json:"sections" yaml:"sections"`
	Fields      map[string]fieldHints `json:"fields" yaml:"fields"`
}

type sectionFile struct {
	ID     string   `json:"id" yaml:"id"`
	Title  string   `json:"title" yaml:"title"`
	Fields []string `json:"fields" yaml:"fields"`
}

type fieldHints struct {
	Label string   `json:"label" yaml:"label"`
	Unit  string   `json:"unit" yaml:"unit"`
	Help  string   `json:"help" yaml:"help"`
	Max   *float64 `json:"max" yaml:"max"`
	Step  string   `json:"step" yaml:"step"`
}

// Default returns the embedded layout.
func Default() (Layout, error) {
	return Parse(defaultDocument, "layout.yaml")
}

// MustDefault is Default for package initialisation and tests.
func MustDefault() Layout {
	l, err := Default()
	if err != nil {
		panic(err)
	}
	return l
}

// LoadFS reads path from fsys and parses it.
func LoadFS(fsys fs.FS, path string) (Layout, error) {
	if fsys == nil {
		return Layout{}, fmt.Errorf("layout: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Layout{}, fmt.Errorf("layout: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a JSON or YAML layout document. Every form field must appear
// in exactly one section.
func Parse(data []byte, source string) (Layout, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Layout{}, fmt.Errorf("layout: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Layout{}, fmt.Errorf("layout: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}
	return normalise(doc, source)
}

func normalise(doc documentFile, source string) (Layout, error) {
	out := Layout{
		Title:       strings.TrimSpace(doc.Title),
		ResultTitle: strings.TrimSpace(doc.ResultTitle),
	}
	if out.ResultTitle == "" {
		out.ResultTitle = "Predicted UCS"
	}

	for name := range doc.Fields {
		if _, err := form.ParseField(name); err != nil {
			return Layout{}, fmt.Errorf("layout: file %s: hints for %w", source, err)
		}
	}

	seen := make(map[form.Field]string, len(form.Fields()))
	for i, raw := range doc.Sections {
		section := Section{
			ID:    strings.TrimSpace(raw.ID),
			Title: strings.TrimSpace(raw.Title),
		}
		if section.ID == "" {
			section.ID = fmt.Sprintf("section-%d", i+1)
		}
		for _, name := range raw.Fields {
			f, err := form.ParseField(name)
			if err != nil {
				return Layout{}, fmt.Errorf("layout: file %s section %q: %w", source, section.ID, err)
			}
			if prev, dup := seen[f]; dup {
				return Layout{}, fmt.Errorf("layout: file %s: field %s listed in %q and %q", source, f, prev, section.ID)
			}
			seen[f] = section.ID
			section.Fields = append(section.Fields, buildField(f, doc.Fields[string(f)]))
		}
		out.Sections = append(out.Sections, section)
	}

	for _, f := range form.Fields() {
		if _, ok := seen[f]; !ok {
			return Layout{}, fmt.Errorf("layout: file %s does not place field %s", source, f)
		}
	}
	return out, nil
}

func buildField(f form.Field, hints fieldHints) Field {
	label := strings.TrimSpace(hints.Label)
	if label == "" {
		label = string(f)
	}
	return Field{
		Name:     f,
		Label:    label,
		Unit:     strings.TrimSpace(hints.Unit),
		Help:     strings.TrimSpace(hints.Help),
		ReadOnly: f.Derived(),
		Max:      hints.Max,
		Step:     strings.TrimSpace(hints.Step),
	}
}

// Lookup returns the hints for f.
func (l Layout) Lookup(f form.Field) (Field, bool) {
	for _, section := range l.Sections {
		for _, field := range section.Fields {
			if field.Name == f {
				return field, true
			}
		}
	}
	return Field{}, false
}
