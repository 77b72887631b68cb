package detect

import (
	"regexp"
	"sort"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/pseudo"
)

const monthAlt = `January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec`

var (
	isoRe        = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	numericUSRe  = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	monthDayRe   = regexp.MustCompile(`(?:` + monthAlt + `)\.? \d{1,2}(?:st|nd|rd|th)?,? \d{4}`)
	dayMonthRe   = regexp.MustCompile(`\d{1,2}(?:st|nd|rd|th)? (?:of )?(?:` + monthAlt + `)\.?,? ?\d{4}`)
	dateStyleSet = []struct {
		re    *regexp.Regexp
		style string
		conf  float64
	}{
		{monthDayRe, "month_dy", 0.95},
		{dayMonthRe, "d_month_y", 0.95},
		{isoRe, "iso", 0.93},
		{numericUSRe, "numeric_mdy", 0.90},
	}
)

// DateDetector finds calendar dates in the four supported styles and
// validates them against the real calendar (month ranges, day-in-month,
// leap years) before emitting. The normalized value attribute carries the
// ISO form used by the DOB promoter and the surrogate generator.
type DateDetector struct{}

func (DateDetector) Name() string { return "date_generic" }

func (DateDetector) Detect(text string, _ *Context) ([]entity.Span, error) {
	type cand struct {
		start, end int
		style      string
		conf       float64
		value      string
	}
	var cands []cand
	for _, ds := range dateStyleSet {
		for _, m := range ds.re.FindAllStringIndex(text, -1) {
			if !digitBoundary(text, m[0], m[1]) {
				continue
			}
			value, ok := pseudo.ISOValue(text[m[0]:m[1]])
			if !ok {
				continue
			}
			cands = append(cands, cand{m[0], m[1], ds.style, ds.conf, value})
		}
	}

	// Longest match wins where styles overlap ("7 March 1990" over the
	// trailing "March 1990" fragment).
	sort.Slice(cands, func(i, j int) bool {
		li, lj := cands[i].end-cands[i].start, cands[j].end-cands[j].start
		if li != lj {
			return li > lj
		}
		return cands[i].start < cands[j].start
	})
	var kept []cand
	for _, c := range cands {
		clash := false
		for _, k := range kept {
			if c.start < k.end && k.start < c.end {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].start < kept[j].start })

	spans := make([]entity.Span, 0, len(kept))
	for _, c := range kept {
		s, ok := span(text, c.start, c.end, entity.LabelDateGeneric, "date_generic", c.conf, map[string]any{
			"value": c.value,
			"style": c.style,
		})
		if ok {
			spans = append(spans, s)
		}
	}
	return spans, nil
}
