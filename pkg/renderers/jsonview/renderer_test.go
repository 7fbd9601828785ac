package jsonview_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-ucsform/pkg/form"
	"github.com/goliatone/go-ucsform/pkg/renderers/jsonview"
	"github.com/goliatone/go-ucsform/pkg/testsupport"
)

func TestRender_SettledSnapshot(t *testing.T) {
	renderer := jsonview.New(jsonview.WithIndent("  "))
	snap := form.Snapshot{
		State:     testsupport.FilledState(t, map[form.Field]string{form.FieldMixing: "40"}),
		Result:    "3.14",
		HasResult: true,
	}

	out, err := renderer.Render(testsupport.Context(), snap)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	golden := filepath.Join("testdata", "settled.golden.json")
	if testsupport.WriteMaybeGolden(t, golden, out) {
		return
	}
	if diff := testsupport.CompareJSONGolden(t, golden, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(out), "\n  \"phase\"") {
		t.Fatalf("expected indented output, got %s", out)
	}
}

func TestRender_IdleSnapshotHasNullResult(t *testing.T) {
	out, err := jsonview.New().Render(testsupport.Context(), form.Snapshot{
		State:  form.Initial(),
		Notice: form.MessageUnreachable,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result, ok := decoded["result"]; !ok || result != nil {
		t.Fatalf("result = %v (present %v)", result, ok)
	}
	if decoded["notice"] != form.MessageUnreachable || decoded["phase"] != "settled" {
		t.Fatalf("decoded = %v", decoded)
	}
	if _, ok := decoded["display"]; ok {
		t.Fatalf("display should be omitted without a result")
	}
}

func TestRenderer_Identity(t *testing.T) {
	r := jsonview.New()
	if r.Name() != "json" || r.ContentType() != "application/json" {
		t.Fatalf("identity = %s %s", r.Name(), r.ContentType())
	}
}
