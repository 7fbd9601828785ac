package page

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	noticePolicyOnce sync.Once
	noticePolicy     *bluemonday.Policy
)

// sanitizeNotice strips all markup from a notification and returns escaped
// text that is safe to emit verbatim.
func sanitizeNotice(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	noticePolicyOnce.Do(func() {
		noticePolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(noticePolicy.Sanitize(trimmed))
}
