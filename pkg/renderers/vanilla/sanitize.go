package vanilla

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	noticePolicyOnce sync.Once
	noticePolicy     *bluemonday.Policy
)

// sanitizeNoticeMarkup strips everything from operator-supplied notice text
// except a small inline subset. Notices come from remote site configuration,
// so they are never trusted as raw HTML.
func sanitizeNoticeMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(noticeSanitizer().Sanitize(trimmed))
}

func noticeSanitizer() *bluemonday.Policy {
	noticePolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("a", "strong", "em", "code", "br")
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		noticePolicy = policy
	})
	return noticePolicy
}
