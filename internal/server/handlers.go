package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-ucsform/pkg/form"
	"github.com/goliatone/go-ucsform/pkg/predictor"
	"github.com/goliatone/go-ucsform/pkg/render"
)

const maxBodyBytes = 64 << 10

// Form actions accepted by POST /.
const (
	ActionUpdate  = "update"
	ActionPredict = "predict"
	ActionReset   = "reset"
	ActionDismiss = "dismiss"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, form.Snapshot{State: form.Initial()})
}

func (s *Server) handleFormAction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	controller := s.newController()
	for _, f := range form.EditableFields() {
		if _, ok := r.PostForm[string(f)]; !ok {
			continue
		}
		if err := controller.UpdateField(f, r.PostForm.Get(string(f))); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	action := strings.TrimSpace(r.PostForm.Get("action"))
	switch action {
	case "", ActionUpdate:
	case ActionPredict:
		// Failures surface as the snapshot notice.
		_ = controller.Submit(r.Context())
	case ActionReset:
		controller.Reset()
	case ActionDismiss:
		controller.DismissNotice()
	default:
		http.Error(w, fmt.Sprintf("unknown action %q", action), http.StatusBadRequest)
		return
	}

	s.writePage(w, r, controller.Snapshot())
}

// writePage renders snap with the renderer named by ?format=, or the one
// negotiated from Accept.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, snap form.Snapshot) {
	renderer, err := s.pickRenderer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotAcceptable)
		return
	}
	out, err := renderer.Render(r.Context(), snap)
	if err != nil {
		s.logger.Error("render page",
			zap.Error(err),
			zap.String("renderer", renderer.Name()),
			zap.String("request_id", form.RequestID(r.Context())),
		)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Add("Vary", "Accept")
	if _, err := w.Write(out); err != nil {
		s.logger.Debug("write page", zap.Error(err))
	}
}

func (s *Server) pickRenderer(r *http.Request) (render.Renderer, error) {
	if name := strings.TrimSpace(r.URL.Query().Get("format")); name != "" {
		renderer, err := s.renderers.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(s.renderers.List(), ", "))
		}
		return renderer, nil
	}
	return s.renderers.Negotiate(r.Header.Get("Accept"))
}

type deriveResponse struct {
	Values map[string]string `json:"values"`
}

func (s *Server) handleDerive(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	values := make(map[string]string, len(form.Fields()))
	for f, v := range controller.State().Values() {
		values[string(f)] = v
	}
	writeJSON(w, http.StatusOK, deriveResponse{Values: values})
}

type predictResponse struct {
	UCS     string `json:"ucs"`
	Display string `json:"display"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	err := controller.Submit(r.Context())
	snap := controller.Snapshot()
	if err == nil {
		writeJSON(w, http.StatusOK, predictResponse{UCS: snap.Result, Display: snap.DisplayResult()})
		return
	}

	var verr *form.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Message, Field: string(verr.Field)})
		return
	}
	message := snap.Notice
	if message == "" {
		message = form.NoticeFor(err)
	}
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: message})
}

// decodeRecord reads a JSON object of field values into a fresh controller.
// Strings are taken verbatim, numbers are formatted, null clears the field.
// PI is ignored since it is always derived.
func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (*form.Controller, bool) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var raw map[string]any
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return nil, false
	}

	// Keys must match a field name exactly; values are looked up verbatim.
	for name := range raw {
		f, err := form.ParseField(name)
		if err == nil && string(f) != name {
			err = fmt.Errorf("%w: %q", form.ErrUnknownField, name)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
	}

	controller := s.newController()
	for _, f := range form.EditableFields() {
		value, present := raw[string(f)]
		if !present {
			continue
		}
		text, err := fieldText(value)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("field %s: %v", f, err))
			return nil, false
		}
		if err := controller.UpdateField(f, text); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
	}
	return controller, true
}

func fieldText(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("expected string or number, got %T", value)
	}
}

func handleContract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(predictor.ContractDocument())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
