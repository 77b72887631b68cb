package detect

import (
	"regexp"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
)

var (
	dobTriggerRe  = regexp.MustCompile(`(?i)\b(dob|date of birth|birth ?date)\b`)
	dobTrailRe    = regexp.MustCompile(`^[\s:;.\-–—]{0,3}$`)
	bornTriggerRe = regexp.MustCompile(`(?i)\bborn\b`)
)

// DOBDetector promotes generic dates to DOB when a birth trigger appears
// on the same line ("DOB: 03/07/1990", separator run of at most three
// characters), on the immediately preceding line as a bare label, or as
// "born" within forty characters before the date.
type DOBDetector struct{}

func (DOBDetector) Name() string { return "date_dob" }

func (DOBDetector) Detect(text string, ctx *Context) ([]entity.Span, error) {
	dates, err := DateDetector{}.Detect(text, ctx)
	if err != nil {
		return nil, err
	}
	lines := ctxLines(text, ctx)

	var spans []entity.Span
	for _, d := range dates {
		conf, trigger := 0.0, ""

		lineNo := lines.LineOf(d.Start)
		lineStart, _ := lines.Bounds(lineNo)
		before := text[lineStart:d.Start]
		if loc := dobTriggerRe.FindStringIndex(before); loc != nil && dobTrailRe.MatchString(before[loc[1]:]) {
			conf, trigger = 0.99, "same_line"
		}
		if conf == 0 && bornTriggerRe.MatchString(text[clampLow(d.Start-40):d.Start]) {
			conf, trigger = 0.99, "born"
		}
		if conf == 0 && lineNo > 0 {
			prev := strings.TrimSpace(lines.Line(lineNo - 1))
			if loc := dobTriggerRe.FindStringIndex(prev); loc != nil && loc[0] == 0 && dobTrailRe.MatchString(prev[loc[1]:]) {
				conf, trigger = 0.98, "previous_line"
			}
		}
		if conf == 0 {
			continue
		}

		s, ok := span(text, d.Start, d.End, entity.LabelDOB, "date_dob", conf, map[string]any{
			"value":   d.AttrString("value"),
			"style":   d.AttrString("style"),
			"trigger": trigger,
		})
		if ok {
			spans = append(spans, s)
		}
	}
	return spans, nil
}
