package detect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
)

var (
	ibanRe    = regexp.MustCompile(`[A-Z]{2}\d{2}(?: ?[A-Z0-9]{2,4}){3,8}`)
	swiftRe   = regexp.MustCompile(`[A-Z]{6}[A-Z0-9]{2}(?:[A-Z0-9]{3})?`)
	routingRe = regexp.MustCompile(`\d{9}`)
	cardRe    = regexp.MustCompile(`\d(?:[ \-]?\d){12,18}`)
	ssnRe     = regexp.MustCompile(`\d{3}[\- ]\d{2}[\- ]\d{4}`)
	einRe     = regexp.MustCompile(`\d{2}-\d{7}`)

	routingCtxRe = regexp.MustCompile(`(?i)\b(routing|aba|rtn)\b`)
	genericRe    = regexp.MustCompile(`(?i)\b(?:account|acct|a/c|member|policy|loan)\s*(?:no\.?|number|num|#|id)?\s*[:#]?\s+((?:[A-Z]{2,4}-)?\d[\d\- ]*\d|\d{6,})`)
)

// AccountDetector recognizes financial identifiers: IBAN, SWIFT/BIC, ABA
// routing numbers, payment cards, SSN, EIN, and keyword-anchored generic
// account numbers. Same-range collisions are resolved by subtype priority
// before any span leaves the detector.
type AccountDetector struct{}

func (AccountDetector) Name() string { return "account_ids" }

type acctCand struct {
	start, end int
	subtype    string
	conf       float64
}

func (AccountDetector) Detect(text string, _ *Context) ([]entity.Span, error) {
	var cands []acctCand
	add := func(start, end int, subtype string, conf float64) {
		if digitBoundary(text, start, end) {
			cands = append(cands, acctCand{start, end, subtype, conf})
		}
	}

	for _, m := range ibanRe.FindAllStringIndex(text, -1) {
		compact := compactAlnum(text[m[0]:m[1]])
		if len(compact) >= 15 && len(compact) <= 34 && isoCountry(compact[:2]) {
			add(m[0], m[1], entity.SubtypeIBAN, 0.99)
		}
	}
	for _, m := range swiftRe.FindAllStringIndex(text, -1) {
		// The country code at positions 5-6 separates real BICs from
		// ordinary eight-letter capitalized words (PURCHASE, SCHEDULE).
		if letterBoundary(text, m[0], m[1]) && isoCountry(text[m[0]+4:m[0]+6]) {
			add(m[0], m[1], entity.SubtypeSwiftBIC, 0.99)
		}
	}
	for _, m := range routingRe.FindAllStringIndex(text, -1) {
		if routingCtxRe.MatchString(contextWindow(text, m[0], 40)) {
			add(m[0], m[1], entity.SubtypeRouting, 0.99)
		}
	}
	for _, m := range cardRe.FindAllStringIndex(text, -1) {
		digits := compactDigits(text[m[0]:m[1]])
		if len(digits) >= 13 && len(digits) <= 19 && cardScheme(digits) != "" && luhnValid(digits) {
			add(m[0], m[1], entity.SubtypeCard, 0.99)
		}
	}
	for _, m := range ssnRe.FindAllStringIndex(text, -1) {
		// Statute citations ("42 U.S.C. § 405-10-1234") reuse the layout.
		if strings.Contains(text[clampLow(m[0]-8):m[0]], "§") {
			continue
		}
		add(m[0], m[1], entity.SubtypeSSN, 0.99)
	}
	for _, m := range einRe.FindAllStringIndex(text, -1) {
		add(m[0], m[1], entity.SubtypeEIN, 0.99)
	}
	for _, m := range genericRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		if len(compactDigits(text[start:end])) >= 6 && len(compactAlnum(text[start:end])) <= 34 {
			add(start, end, entity.SubtypeGeneric, 0.90)
		}
	}

	return resolveBySubtype(text, cands), nil
}

// resolveBySubtype keeps the highest-priority candidate wherever ranges
// collide, then returns spans in document order.
func resolveBySubtype(text string, cands []acctCand) []entity.Span {
	sort.SliceStable(cands, func(i, j int) bool {
		pi, pj := entity.SubtypePriority[cands[i].subtype], entity.SubtypePriority[cands[j].subtype]
		if pi != pj {
			return pi > pj
		}
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].end-cands[i].start > cands[j].end-cands[j].start
	})
	var kept []acctCand
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
		attrs := map[string]any{
			"subtype": c.subtype,
			"digits":  compactDigits(text[c.start:c.end]),
		}
		if c.subtype == entity.SubtypeCard {
			attrs["scheme"] = cardScheme(compactDigits(text[c.start:c.end]))
		}
		if s, ok := span(text, c.start, c.end, entity.LabelAccountID, "account_ids", c.conf, attrs); ok {
			spans = append(spans, s)
		}
	}
	return spans
}

// contextWindow returns the text up to n bytes on each side of [start, …).
func contextWindow(text string, start, n int) string {
	lo := clampLow(start - n)
	hi := start + n
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

func letterBoundary(text string, start, end int) bool {
	isL := func(b byte) bool {
		return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
	}
	if start > 0 && isL(text[start-1]) {
		return false
	}
	if end < len(text) && isL(text[end]) {
		return false
	}
	return true
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func cardScheme(digits string) string {
	if len(digits) < 4 {
		return ""
	}
	p2, p3, p4 := digits[:2], digits[:3], digits[:4]
	switch {
	case p2 == "34" || p2 == "37":
		return "amex"
	case digits[0] == '4':
		return "visa"
	case p2 >= "51" && p2 <= "55":
		return "mastercard"
	case p4 >= "2221" && p4 <= "2720":
		return "mastercard"
	case p4 == "6011" || p2 == "65":
		return "discover"
	case p2 == "35":
		return "jcb"
	case p2 == "36" || p2 == "38" || (p3 >= "300" && p3 <= "305"):
		return "diners"
	}
	return ""
}

var isoCountries = func() map[string]bool {
	const codes = "AD AE AF AG AL AM AO AR AT AU AZ BA BB BD BE BG BH BI BJ BN " +
		"BO BR BS BT BW BY BZ CA CH CI CL CM CN CO CR CU CV CY CZ DE DJ DK DM " +
		"DO DZ EC EE EG ES ET FI FJ FR GA GB GD GE GH GM GN GR GT GW GY HK HN " +
		"HR HT HU ID IE IL IN IQ IR IS IT JM JO JP KE KG KH KM KN KP KR KW KZ " +
		"LA LB LC LI LK LR LS LT LU LV LY MA MC MD ME MG MK ML MM MN MO MR MT " +
		"MU MV MW MX MY MZ NA NE NG NI NL NO NP NZ OM PA PE PG PH PK PL PT PY " +
		"QA RO RS RU RW SA SB SC SD SE SG SI SK SL SM SN SO SR SS ST SV SY SZ " +
		"TD TG TH TJ TM TN TO TR TT TW TZ UA UG US UY UZ VC VE VN VU WS YE ZA ZM ZW"
	m := make(map[string]bool)
	for _, c := range strings.Fields(codes) {
		m[c] = true
	}
	return m
}()

func isoCountry(code string) bool { return isoCountries[strings.ToUpper(code)] }

func compactAlnum(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' {
			out = append(out, b)
		}
	}
	return string(out)
}
