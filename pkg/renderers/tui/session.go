package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-ucsform/pkg/form"
	"github.com/goliatone/go-ucsform/pkg/layout"
)

// Menu entries offered after the first pass over the form.
const (
	MenuPredict = "Predict UCS"
	MenuEdit    = "Edit a field"
	MenuReset   = "Reset"
	MenuQuit    = "Quit"
)

var menuOptions = []string{MenuPredict, MenuEdit, MenuReset, MenuQuit}

// Session drives a form controller from the terminal.
type Session struct {
	controller *form.Controller
	driver     PromptDriver
	out        io.Writer
	layout     *layout.Layout
	theme      Theme
}

// New builds a session around controller. The survey driver is used unless
// WithPromptDriver supplies another.
func New(controller *form.Controller, options ...Option) (*Session, error) {
	if controller == nil {
		return nil, ErrNoController
	}
	s := &Session{controller: controller}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(s.out)
	}
	if s.layout == nil {
		l, err := layout.Default()
		if err != nil {
			return nil, fmt.Errorf("tui: %w", err)
		}
		s.layout = &l
	}
	return s, nil
}

// Name reports the session identifier.
func (s *Session) Name() string {
	return "tui"
}

// Run asks for every editable field in layout order, then loops over the
// action menu until the user quits. An interrupt ends the session without
// error.
func (s *Session) Run(ctx context.Context) error {
	err := s.run(ctx)
	if errors.Is(err, ErrAborted) {
		return nil
	}
	return err
}

func (s *Session) run(ctx context.Context) error {
	if err := s.info(ctx, s.layout.Title); err != nil {
		return err
	}
	if err := s.fillAll(ctx); err != nil {
		return err
	}

	for {
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      "Next step",
			Options:      menuOptions,
			DefaultIndex: 0,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(menuOptions) {
			continue
		}

		switch menuOptions[idx] {
		case MenuPredict:
			if err := s.predict(ctx); err != nil {
				return err
			}
		case MenuEdit:
			if err := s.editOne(ctx); err != nil {
				return err
			}
		case MenuReset:
			ok, err := s.driver.Confirm(ctx, ConfirmConfig{
				Message: "Clear all fields?",
				Default: true,
			})
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			s.controller.Reset()
			if err := s.info(ctx, "Form cleared."); err != nil {
				return err
			}
			if err := s.fillAll(ctx); err != nil {
				return err
			}
		case MenuQuit:
			return nil
		}
	}
}

func (s *Session) fillAll(ctx context.Context) error {
	for _, section := range s.layout.Sections {
		if err := s.info(ctx, section.Title); err != nil {
			return err
		}
		for _, field := range section.Fields {
			if !field.Editable() {
				continue
			}
			if err := s.ask(ctx, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) editOne(ctx context.Context) error {
	var fields []layout.Field
	var labels []string
	current := s.controller.State()
	for _, section := range s.layout.Sections {
		for _, field := range section.Fields {
			if !field.Editable() {
				continue
			}
			fields = append(fields, field)
			labels = append(labels, fmt.Sprintf("%s [%s]", fieldLabel(field), current.Get(field.Name)))
		}
	}

	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:  "Field to edit",
		Options:  labels,
		PageSize: len(labels),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(fields) {
		return nil
	}
	return s.ask(ctx, fields[idx])
}

func (s *Session) ask(ctx context.Context, field layout.Field) error {
	raw, err := s.driver.Input(ctx, InputConfig{
		Message: fieldLabel(field),
		Default: s.controller.State().Get(field.Name),
		Help:    field.Help,
	})
	if err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if err := s.controller.UpdateField(field.Name, raw); err != nil {
		return err
	}

	st := s.controller.State()
	switch field.Name {
	case form.FieldLL, form.FieldPL:
		if pi := st.Get(form.FieldPI); pi != "" {
			return s.info(ctx, fmt.Sprintf("PI = %s", pi))
		}
	case form.FieldMixing:
		if v, ok := form.ParseNumber(raw); ok && v > form.MixingMax {
			return s.info(ctx, fmt.Sprintf("Mixing capped at %s", st.Get(form.FieldMixing)))
		}
	}
	return nil
}

func (s *Session) predict(ctx context.Context) error {
	// The outcome is read back from the snapshot.
	_ = s.controller.Submit(ctx)

	snap := s.controller.Snapshot()
	if snap.Notice != "" {
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+snap.Notice); err != nil {
			return err
		}
		// Shown once; the next prompt acknowledges it.
		s.controller.DismissNotice()
		return nil
	}
	if snap.HasResult {
		return s.info(ctx, fmt.Sprintf("%s: %s", s.layout.ResultTitle, snap.DisplayResult()))
	}
	return nil
}

func (s *Session) info(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	return s.driver.Info(ctx, s.theme.InfoPrefix+msg)
}

func fieldLabel(field layout.Field) string {
	if field.Unit == "" {
		return field.Label
	}
	return field.Label + " (" + field.Unit + ")"
}
