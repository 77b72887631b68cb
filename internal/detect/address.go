package detect

import (
	"regexp"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/textutil"
)

var (
	streetLineRe = regexp.MustCompile(`^\d{1,5} (?:[NSEW]\.? )?[A-Z][A-Za-z'\-]*(?: [A-Z][A-Za-z'\-]*){0,3} (?:St|Street|Ave|Avenue|Rd|Road|Blvd|Boulevard|Ln|Lane|Dr|Drive|Ct|Court|Way|Ter|Terrace|Pl|Place|Pkwy|Parkway|Cir|Circle)\.?(?:,? (?:Apt|Apartment|Suite|Ste|Unit|#|Fl|Floor)\.? ?[A-Za-z0-9\-]+)?,?$`)
	unitOnlyRe   = regexp.MustCompile(`^(?:Apt|Apartment|Suite|Ste|Unit|#|No)\.? ?[A-Za-z0-9\-]+,?$`)
	czsLineRe    = regexp.MustCompile(`^[A-Z][A-Za-z.'\-]+(?: [A-Z][A-Za-z.'\-]+)*, ?[A-Z]{2},? \d{5}(-\d{4})?$`)
	poBoxRe      = regexp.MustCompile(`^(?:P\.? ?O\.?|Post Office) Box \d+,?$`)
	zip9TailRe   = regexp.MustCompile(`\d{5}-\d{4}$`)
)

// AddressDetector classifies whole lines as address components: street,
// unit, city-state-ZIP, or PO box. Each matching line becomes one span
// with a "kind" attribute; the linker later merges adjacent lines into
// address blocks.
type AddressDetector struct{}

func (AddressDetector) Name() string { return "address" }

func (AddressDetector) Detect(text string, ctx *Context) ([]entity.Span, error) {
	lines := ctxLines(text, ctx)
	var spans []entity.Span
	for i := 0; i < lines.Count(); i++ {
		lineStart, lineEnd := lines.Bounds(i)
		raw := text[lineStart:lineEnd]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		start := lineStart + strings.Index(raw, trimmed)
		end := start + len(trimmed)

		var kind string
		attrs := map[string]any{}
		var conf float64
		switch {
		case streetLineRe.MatchString(trimmed):
			kind, conf = entity.AddrKindStreet, 0.92
		case unitOnlyRe.MatchString(trimmed):
			kind, conf = entity.AddrKindUnit, 0.88
		case poBoxRe.MatchString(trimmed):
			kind, conf = entity.AddrKindPOBox, 0.95
		case czsLineRe.MatchString(trimmed):
			kind, conf = entity.AddrKindCityStateZip, 0.95
			attrs["zip"] = zipKindOf(trimmed)
		default:
			continue
		}
		attrs["kind"] = kind
		s, ok := span(text, start, end, entity.LabelAddressBlock, "address", conf, attrs)
		if ok {
			spans = append(spans, s)
		}
	}
	return spans, nil
}

func zipKindOf(line string) string {
	if zip9TailRe.MatchString(strings.TrimRight(line, ",")) {
		return entity.ZIP9
	}
	return entity.ZIP5
}

func ctxLines(text string, ctx *Context) *textutil.LineIndex {
	if ctx != nil && ctx.Lines != nil {
		return ctx.Lines
	}
	return textutil.NewLineIndex(text)
}
