package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ucsform/pkg/form"
)

// SampleValues is a complete record that passes validation. PI is left out
// since it is derived from LL and PL.
func SampleValues() map[form.Field]string {
	return map[form.Field]string{
		form.FieldClay:         "30",
		form.FieldSilt:         "25",
		form.FieldLL:           "45",
		form.FieldPL:           "20",
		form.FieldDryDensity:   "1.7",
		form.FieldSiO2:         "55",
		form.FieldAl2O3:        "18",
		form.FieldCaOlime:      "6",
		form.FieldMixing:       "3",
		form.FieldCuringDays:   "28",
		form.FieldWaterContent: "14.5",
	}
}

// FilledState applies SampleValues, then overrides, to the initial state in
// enumeration order.
func FilledState(t *testing.T, overrides map[form.Field]string) form.State {
	t.Helper()

	values := SampleValues()
	for f, v := range overrides {
		values[f] = v
	}
	st := form.Initial()
	for _, f := range form.EditableFields() {
		raw, ok := values[f]
		if !ok {
			continue
		}
		next, err := st.Update(f, raw)
		if err != nil {
			t.Fatalf("update %s: %v", f, err)
		}
		st = next
	}
	return st
}

// CompareJSONGolden decodes the golden file at path and got, then diffs the
// decoded values so whitespace differences do not matter.
func CompareJSONGolden(t *testing.T, path string, got []byte) string {
	t.Helper()

	var wantValue, gotValue any
	if err := json.Unmarshal(readGolden(t, path), &wantValue); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	if err := json.Unmarshal(got, &gotValue); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return cmp.Diff(wantValue, gotValue)
}

func readGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
