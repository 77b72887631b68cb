package detect

import (
	"regexp"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
)

var emailRe = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9._%+\-]*@[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}`)

// EmailDetector matches internet addresses with an RFC-lite pattern:
// tight enough to avoid swallowing neighbouring punctuation, loose enough
// for plus-tags and subdomains.
type EmailDetector struct{}

func (EmailDetector) Name() string { return "email" }

func (EmailDetector) Detect(text string, _ *Context) ([]entity.Span, error) {
	var spans []entity.Span
	for _, m := range emailRe.FindAllStringIndex(text, -1) {
		matched := text[m[0]:m[1]]
		local, domain, _ := strings.Cut(matched, "@")
		s, ok := span(text, m[0], m[1], entity.LabelEmail, "email", 0.99, map[string]any{
			"local":  local,
			"domain": strings.ToLower(domain),
		})
		if ok {
			spans = append(spans, s)
		}
	}
	return spans, nil
}
