// Package template defines the template rendering contract used by the page
// renderer. Implementations live in subpackages.
package template
