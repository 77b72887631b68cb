package detect

import (
	"regexp"

	"github.com/sdrasco/freedact/internal/entity"
)

var (
	// Separated NANP forms, optionally with a +1 / 1 country prefix.
	phoneFullRe = regexp.MustCompile(`(?:\+?1[\s.\-])?\(?[2-9]\d{2}\)?[\s.\-]\d{3}[\s.\-]?\d{4}`)

	// Bare ten-digit runs and local seven-digit forms carry lower
	// confidence; they collide with account numbers and dates more often.
	phoneBareRe  = regexp.MustCompile(`[2-9]\d{9}`)
	phoneLocalRe = regexp.MustCompile(`[2-9]\d{2}[.\-]\d{4}`)

	phoneAcctCtxRe = regexp.MustCompile(`(?i)(account|acct|routing|aba|iban|card|ssn|ein|member|invoice|order|case)\s*(no\.?|number|num|#|id)?\s*[:#]?\s*$`)
)

// PhoneDetector recognizes North American numbers. It is keyword-free but
// refuses matches directly preceded by an account-style label, leaving
// those to the account detector.
type PhoneDetector struct{}

func (PhoneDetector) Name() string { return "phone" }

func (PhoneDetector) Detect(text string, _ *Context) ([]entity.Span, error) {
	var spans []entity.Span
	// Ranges a higher-priority form already examined, including ones the
	// account-context check refused. Without this a rejected
	// "Account No: 415-867-5309" would resurface as the local7 tail.
	var claimed [][2]int
	overlapsClaimed := func(start, end int) bool {
		for _, c := range claimed {
			if c[0] < end && start < c[1] {
				return true
			}
		}
		return false
	}
	add := func(start, end int, conf float64, kind string) {
		if !digitBoundary(text, start, end) {
			return
		}
		claimed = append(claimed, [2]int{start, end})
		if phoneAcctCtxRe.MatchString(text[clampLow(start-24):start]) {
			return
		}
		s, ok := span(text, start, end, entity.LabelPhone, "phone", conf, map[string]any{
			"digits": compactDigits(text[start:end]),
			"kind":   kind,
		})
		if ok {
			spans = append(spans, s)
		}
	}

	for _, m := range phoneFullRe.FindAllStringIndex(text, -1) {
		kind := "nanp10"
		if n := len(compactDigits(text[m[0]:m[1]])); n == 11 {
			kind = "nanp11"
		} else if n != 10 {
			continue
		}
		add(m[0], m[1], 0.95, kind)
	}
	for _, m := range phoneBareRe.FindAllStringIndex(text, -1) {
		if overlapsClaimed(m[0], m[1]) {
			continue
		}
		add(m[0], m[1], 0.75, "nanp10")
	}
	for _, m := range phoneLocalRe.FindAllStringIndex(text, -1) {
		if overlapsClaimed(m[0], m[1]) {
			continue
		}
		add(m[0], m[1], 0.80, "local7")
	}
	return spans, nil
}

// digitBoundary rejects matches embedded in a longer digit run.
func digitBoundary(text string, start, end int) bool {
	if start > 0 && isDigitByte(text[start-1]) {
		return false
	}
	if end < len(text) && isDigitByte(text[end]) {
		return false
	}
	return true
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

func clampLow(i int) int {
	if i < 0 {
		return 0
	}
	return i
}

func compactDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if isDigitByte(s[i]) {
			out = append(out, s[i])
		}
	}
	return string(out)
}
