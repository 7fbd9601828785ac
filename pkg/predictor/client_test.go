package predictor_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ucsform/pkg/form"
	"github.com/goliatone/go-ucsform/pkg/predictor"
)

func samplePayload(t *testing.T) form.Payload {
	t.Helper()
	st := form.Initial()
	for _, f := range form.EditableFields() {
		var err error
		st, err = st.Update(f, "30")
		if err != nil {
			t.Fatalf("update %s: %v", f, err)
		}
	}
	return st.Payload()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *predictor.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := predictor.New(srv.URL+"/predict", predictor.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestPredict_Success(t *testing.T) {
	var (
		gotMethod string
		gotType   string
		gotID     string
		gotBody   map[string]any
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get("X-Request-ID")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ucs": 3.14159}`))
	})

	ctx := form.WithRequestID(context.Background(), "abc-123")
	ucs, err := client.Predict(ctx, samplePayload(t))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if ucs != 3.14159 {
		t.Fatalf("ucs = %v", ucs)
	}
	if gotMethod != http.MethodPost || gotType != "application/json" || gotID != "abc-123" {
		t.Fatalf("unexpected request: method=%s type=%s id=%s", gotMethod, gotType, gotID)
	}

	want := map[string]any{
		"Clay": 30.0, "Silt": 30.0, "LL": 30.0, "PL": 30.0, "PI": 0.0,
		"DryDensity": 30.0, "SiO2": 30.0, "Al2O3": 30.0, "CaOlime": 30.0,
		"Mixing": 12.0, "CuringDays": 30.0, "WaterContent": 30.0,
	}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestPredict_InvalidResponses(t *testing.T) {
	bodies := []string{`{}`, `{"ucs":"3.1"}`, `{"ucs":null}`, `[]`, `null`}
	for _, body := range bodies {
		body := body
		t.Run(body, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := client.Predict(context.Background(), samplePayload(t))
			if !errors.Is(err, form.ErrInvalidResponse) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestPredict_Unreachable(t *testing.T) {
	t.Run("non-json body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		})
		_, err := client.Predict(context.Background(), samplePayload(t))
		if !errors.Is(err, form.ErrBackendUnreachable) {
			t.Fatalf("expected ErrBackendUnreachable, got %v", err)
		}
	})

	t.Run("server error status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"ucs": 1}`, http.StatusInternalServerError)
		})
		_, err := client.Predict(context.Background(), samplePayload(t))
		if !errors.Is(err, form.ErrBackendUnreachable) {
			t.Fatalf("expected ErrBackendUnreachable, got %v", err)
		}
	})

	t.Run("closed server", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		endpoint := srv.URL + "/predict"
		srv.Close()

		client, err := predictor.New(endpoint)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		_, err = client.Predict(context.Background(), samplePayload(t))
		if !errors.Is(err, form.ErrBackendUnreachable) {
			t.Fatalf("expected ErrBackendUnreachable, got %v", err)
		}
	})
}

func TestPredict_DrivesController(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ucs": 1.005}`))
	})
	st := form.Initial()
	for _, f := range form.EditableFields() {
		st, _ = st.Update(f, "40")
	}
	ctrl := form.NewController(client, form.WithState(st))
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got, _ := ctrl.Result(); got != "1.00" && got != "1.01" {
		t.Fatalf("result = %q", got)
	}
}

func TestNew_RejectsBadEndpoints(t *testing.T) {
	for _, endpoint := range []string{"ftp://example.com/predict", "http://", "::bad"} {
		if _, err := predictor.New(endpoint); err == nil {
			t.Errorf("expected error for %q", endpoint)
		}
	}
	client, err := predictor.New("")
	if err != nil {
		t.Fatalf("default endpoint: %v", err)
	}
	if client.Endpoint() != predictor.DefaultEndpoint {
		t.Fatalf("endpoint = %q", client.Endpoint())
	}
}

func TestContract_ValidatesRecordNulls(t *testing.T) {
	contract, err := predictor.DefaultContract()
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	if err := contract.ValidateRecord(form.Initial().Payload()); err != nil {
		t.Fatalf("null measurements should be accepted: %v", err)
	}
	if err := contract.ValidatePrediction(map[string]any{"ucs": 2.0}); err != nil {
		t.Fatalf("prediction: %v", err)
	}
	if len(predictor.ContractDocument()) == 0 {
		t.Fatalf("expected embedded contract document")
	}
}
