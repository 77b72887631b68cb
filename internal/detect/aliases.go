package detect

import (
	"regexp"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/textutil"
)

var (
	// Dotted forms end on "."; a trailing \b would never match there, so
	// the boundary sits inside each word-ending alternative instead.
	aliasMarkerRe = regexp.MustCompile(`(?i)\b(hereinafter\b|hereafter\b|a/k/a\b|f/k/a\b|d/b/a\b|a\.k\.a\.|f\.k\.a\.|d\.b\.a\.|aka\b|fka\b|dba\b)`)

	// Anchored continuations after a marker: optional connective phrase,
	// then either a quoted alias or a bare capitalized run.
	aliasConnectRe = regexp.MustCompile(`^(?:[\s,:]*(?:referred\s+to\s+as)?[\s,:]*(?:the\s+)?)`)
	aliasQuotedRe  = regexp.MustCompile(`^(["“'‘])([^"“”'‘’\n]{1,60})(["”'’])`)
	aliasBareRe    = regexp.MustCompile(`^[A-Z][A-Za-z'’.\-]*(?: [A-Z][A-Za-z'’.\-]*){0,3}`)

	subjectRunRe = regexp.MustCompile(`[A-Z][A-Za-z'’.\-]*(?: [A-Z][A-Za-z'’.\-]*){0,4}`)

	partyLetterRe = regexp.MustCompile(`(?i)^party [a-z]$`)
)

// AliasDetector finds alias definitions: hereinafter/hereafter clauses
// and a/k/a, f/k/a, d/b/a markers, quoted or bare. The emitted span
// covers the alias surface itself (quotes excluded); the definition
// context travels in the attributes, including the subject when one can
// be pinned to a nearby capitalized run.
type AliasDetector struct{}

func (AliasDetector) Name() string { return "aliases" }

func (AliasDetector) Detect(text string, ctx *Context) ([]entity.Span, error) {
	lines := ctxLines(text, ctx)
	var spans []entity.Span

	for _, m := range aliasMarkerRe.FindAllStringSubmatchIndex(text, -1) {
		marker := normalizeMarker(text[m[2]:m[3]])
		pos := m[1]
		rest := text[pos:]

		conn := aliasConnectRe.FindStringIndex(rest)
		pos += conn[1]
		rest = text[pos:]

		var aliasStart, aliasEnd int
		quote := ""
		if qm := aliasQuotedRe.FindStringSubmatchIndex(rest); qm != nil {
			aliasStart, aliasEnd = pos+qm[4], pos+qm[5]
			quote = rest[qm[2]:qm[3]]
		} else if bm := aliasBareRe.FindStringIndex(rest); bm != nil && marker != "hereinafter" {
			// Bare aliases are accepted after a/k/a-style markers only;
			// hereinafter without quotes is too ambiguous.
			aliasStart, aliasEnd = pos+bm[0], pos+bm[1]
		} else {
			continue
		}

		alias := text[aliasStart:aliasEnd]
		kind := "nickname"
		if roleWords[strings.ToLower(alias)] || partyLetterRe.MatchString(alias) {
			kind = "role"
		}

		attrs := map[string]any{
			"alias":      alias,
			"alias_kind": kind,
			"marker":     marker,
			"quote":      quote,
			"scope_hint": "document",
		}
		conf := 0.97
		if subjStart, subjEnd, ok := findAliasSubject(text, lines, m[2]); ok {
			attrs["subject_text"] = text[subjStart:subjEnd]
			attrs["subject_span"] = []int{subjStart, subjEnd}
			conf = 0.99
		} else {
			lineNo := lines.LineOf(m[2])
			lineStart, _ := lines.Bounds(lineNo)
			guessEnd := textutil.RTrimIndex(text, lineStart, m[2])
			attrs["subject_guess"] = strings.TrimSpace(text[lineStart:guessEnd])
			attrs["subject_guess_line"] = lineNo
		}

		s, ok := span(text, aliasStart, aliasEnd, entity.LabelAliasLabel, "aliases", conf, attrs)
		if ok {
			spans = append(spans, s)
		}
	}
	return spans, nil
}

// findAliasSubject looks for the capitalized run closest before the
// marker on the same line, allowing a short tail of punctuation between
// run and marker.
func findAliasSubject(text string, lines *textutil.LineIndex, markerStart int) (int, int, bool) {
	lineNo := lines.LineOf(markerStart)
	lineStart, _ := lines.Bounds(lineNo)
	before := text[lineStart:markerStart]

	runs := subjectRunRe.FindAllStringIndex(before, -1)
	if len(runs) == 0 {
		return 0, 0, false
	}
	last := runs[len(runs)-1]
	tail := strings.TrimLeft(before[last[1]:], " ,;:(\"“'‘")
	if tail != "" {
		return 0, 0, false
	}
	start, end := lineStart+last[0], lineStart+last[1]
	end = textutil.RTrimIndex(text, start, end)
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func normalizeMarker(raw string) string {
	cleaned := strings.ToLower(strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, raw))
	if cleaned == "hereafter" {
		return "hereinafter"
	}
	return cleaned
}
