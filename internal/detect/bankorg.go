package detect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
)

var (
	bankOfNameRe = regexp.MustCompile(`\bBank of [A-Z][A-Za-z'’\-]+(?: [A-Z][A-Za-z'’\-]+)?(?:, N\.A\.)?`)
	bankNamedRe  = regexp.MustCompile(`\b(?:[A-Z][A-Za-z&'’\-]+ ){1,4}(?:Bank|Bancorp|Bancshares|Trust Company|Trust|Credit Union|Savings Bank|Savings|Building Society)\b(?:, N\.A\.)?`)
)

// BankOrgDetector finds financial-institution names by their trailing
// designator (Bank, Trust, Credit Union, ...) or the "Bank of X" form.
type BankOrgDetector struct{}

func (BankOrgDetector) Name() string { return "bank_org" }

func (BankOrgDetector) Detect(text string, _ *Context) ([]entity.Span, error) {
	type cand struct{ start, end int }
	var cands []cand

	for _, m := range bankOfNameRe.FindAllStringIndex(text, -1) {
		cands = append(cands, cand{m[0], m[1]})
	}
	for _, m := range bankNamedRe.FindAllStringIndex(text, -1) {
		start := trimLeadingStops(text, m[0], m[1])
		if start < m[1] && strings.ContainsRune(text[start:m[1]], ' ') {
			cands = append(cands, cand{start, m[1]})
		}
	}

	// Longer candidate wins on overlap ("Bank of America" over "The Bank").
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
		s, ok := span(text, c.start, c.end, entity.LabelBankOrg, "bank_org", 0.95, map[string]any{
			"surface": text[c.start:c.end],
		})
		if ok {
			spans = append(spans, s)
		}
	}
	return spans, nil
}

// trimLeadingStops walks the span start past capitalized function words
// ("The First National Bank" keeps only "First National Bank").
func trimLeadingStops(text string, start, end int) int {
	for {
		sp := strings.IndexByte(text[start:end], ' ')
		if sp < 0 {
			return start
		}
		word := text[start : start+sp]
		if !titleStops[strings.ToLower(word)] {
			return start
		}
		start += sp + 1
	}
}
