package tui

import (
	"io"

	"github.com/goliatone/go-ucsform/pkg/layout"
)

// Theme captures optional formatting hints applied when printing messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutput sends informational messages from the default driver to w.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithLayout overrides the embedded layout used for labels and ordering.
func WithLayout(l layout.Layout) Option {
	return func(s *Session) {
		s.layout = &l
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}
