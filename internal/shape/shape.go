// Package shape makes a replacement string visually consistent with the
// text it replaces. FormatLike mirrors the source's case, outer and
// interior punctuation, possessive marker, and initials layout onto a
// candidate replacement, so a redacted document keeps the typography of
// the original.
package shape

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"
)

// initialsRe matches sources that are sequences of single letters
// separated by periods, hyphens, or spaces ("J.D", "J. D", "J-D"), with an
// optional trailing period. Outer punctuation is stripped before matching.
var initialsRe = regexp.MustCompile(`^(?:[A-Za-z][.\- ]+)+[A-Za-z][.]?$`)

// FormatLike formats candidate so it visually matches source. rng supplies
// extra initials when the candidate has fewer tokens than the source has
// initials; it may be nil, in which case the candidate's first initial is
// reused.
func FormatLike(source, candidate string, rng *rand.Rand) string {
	prefix, core, suffix := splitOuter(source)
	core, possessive := splitPossessive(core)

	if core == "" {
		return candidate
	}
	if !hasLetter(core) {
		// Digit-only sources keep the candidate's own layout.
		return prefix + candidate + suffix
	}

	var out string
	if initialsRe.MatchString(core) {
		out = formatInitials(core, candidate, rng)
	} else {
		out = mirrorPunct(core, candidate)
		out = MatchCase(core, out)
	}
	return prefix + out + possessive + suffix
}

// MatchCase mirrors the aggregate case of source onto candidate:
// all-upper, all-lower, or title case map wholesale; any other mix is
// applied letter-by-letter, cycling the source's case pattern.
func MatchCase(source, candidate string) string {
	letters := lettersOf(source)
	if len(letters) == 0 {
		return candidate
	}

	switch {
	case allUpper(letters):
		return strings.ToUpper(candidate)
	case allLower(letters):
		return strings.ToLower(candidate)
	case isTitle(source):
		return titleCase(candidate)
	}

	// Mixed case: cycle the source pattern across the candidate's letters.
	pattern := make([]bool, len(letters))
	for i, r := range letters {
		pattern[i] = unicode.IsUpper(r)
	}
	var b strings.Builder
	i := 0
	for _, r := range candidate {
		if unicode.IsLetter(r) {
			if pattern[i%len(pattern)] {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			i++
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatInitials derives one initial per source letter from the
// candidate's tokens, mirroring the source's separators and letter case.
func formatInitials(core, candidate string, rng *rand.Rand) string {
	srcLetters, srcSeps := splitInitials(core)
	tokens := letterTokens(candidate)

	var b strings.Builder
	for i, src := range srcLetters {
		var initial rune
		switch {
		case i < len(tokens):
			initial = []rune(tokens[i])[0]
		case rng != nil:
			initial = rune('a' + rng.Intn(26))
		case len(tokens) > 0:
			initial = []rune(tokens[0])[0]
		default:
			initial = 'x'
		}
		if unicode.IsUpper(src) {
			initial = unicode.ToUpper(initial)
		} else {
			initial = unicode.ToLower(initial)
		}
		b.WriteRune(initial)
		b.WriteString(srcSeps[i])
	}
	return b.String()
}

// punctRun is one interior punctuation run of the source, positioned by
// how many alphanumeric runes precede it.
type punctRun struct {
	offset int
	run    string
}

// mirrorPunct re-inserts the source's interior punctuation runs into the
// candidate. When the candidate has interior separators of its own, source
// runs snap to the nearest candidate word boundary; otherwise they are
// inserted at the raw letter offset.
func mirrorPunct(core, candidate string) string {
	srcRuns := interiorRuns(core)
	if len(srcRuns) == 0 {
		return candidate
	}

	candLetters, candRuns := explode(candidate)
	boundaries := make(map[int]string, len(candRuns)) // offset → candidate's own run
	for _, r := range candRuns {
		boundaries[r.offset] = r.run
	}

	// Choose an insert position for every source run.
	placed := make(map[int]string, len(srcRuns))
	if len(candRuns) > 0 {
		used := make(map[int]bool, len(candRuns))
		for _, sr := range srcRuns {
			best, bestDist := -1, -1
			for _, cr := range candRuns {
				if used[cr.offset] {
					continue
				}
				dist := cr.offset - sr.offset
				if dist < 0 {
					dist = -dist
				}
				if best == -1 || dist < bestDist {
					best, bestDist = cr.offset, dist
				}
			}
			if best >= 0 {
				used[best] = true
				placed[best] = sr.run
			} else {
				placed[clampOffset(sr.offset, len(candLetters))] = sr.run
			}
		}
	} else {
		for _, sr := range srcRuns {
			placed[clampOffset(sr.offset, len(candLetters))] = sr.run
		}
	}

	var b strings.Builder
	for i, r := range candLetters {
		if run, ok := placed[i]; ok {
			b.WriteString(run)
		} else if run, ok := boundaries[i]; ok && i > 0 {
			b.WriteString(run) // candidate separator not claimed by the source
		}
		b.WriteRune(r)
	}
	if run, ok := placed[len(candLetters)]; ok {
		b.WriteString(run)
	}
	return b.String()
}

// --- helpers --------------------------------------------------------------

// splitOuter strips the leading and trailing non-alphanumeric runs.
func splitOuter(s string) (prefix, core, suffix string) {
	runes := []rune(s)
	start, end := 0, len(runes)
	for start < end && !isAlnum(runes[start]) {
		start++
	}
	for end > start && !isAlnum(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

// splitPossessive strips a trailing possessive marker ('s or ’s).
func splitPossessive(core string) (string, string) {
	for _, marker := range []string{"'s", "’s"} {
		if strings.HasSuffix(core, marker) && len(core) > len(marker) {
			return core[:len(core)-len(marker)], marker
		}
	}
	return core, ""
}

// splitInitials returns the source's letters and, per letter, the
// separator run that follows it inside the core.
func splitInitials(core string) ([]rune, []string) {
	var letters []rune
	var seps []string
	runes := []rune(core)
	for i := 0; i < len(runes); {
		letters = append(letters, runes[i])
		i++
		j := i
		for j < len(runes) && !unicode.IsLetter(runes[j]) {
			j++
		}
		seps = append(seps, string(runes[i:j]))
		i = j
	}
	return letters, seps
}

// explode splits candidate into its alphanumeric runes and its interior
// punctuation runs positioned by preceding alnum count.
func explode(s string) ([]rune, []punctRun) {
	var letters []rune
	var runs []punctRun
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		if isAlnum(runes[i]) {
			letters = append(letters, runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && !isAlnum(runes[j]) {
			j++
		}
		if len(letters) > 0 && j < len(runes) {
			runs = append(runs, punctRun{offset: len(letters), run: string(runes[i:j])})
		}
		i = j
	}
	return letters, runs
}

// interiorRuns records the source's interior punctuation runs.
func interiorRuns(core string) []punctRun {
	_, runs := explode(core)
	return runs
}

func clampOffset(off, max int) int {
	if off > max {
		return max
	}
	if off < 0 {
		return 0
	}
	return off
}

func letterTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
}

func lettersOf(s string) []rune {
	var out []rune
	for _, r := range s {
		if unicode.IsLetter(r) {
			out = append(out, r)
		}
	}
	return out
}

func hasLetter(s string) bool { return len(lettersOf(s)) > 0 }

func isAlnum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func allUpper(letters []rune) bool {
	for _, r := range letters {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return len(letters) > 0
}

func allLower(letters []rune) bool {
	for _, r := range letters {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return len(letters) > 0
}

// isTitle reports whether every letter-token of s starts upper and
// continues lower.
func isTitle(s string) bool {
	tokens := letterTokens(s)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		runes := []rune(tok)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes[1:] {
			if !unicode.IsLower(r) {
				return false
			}
		}
	}
	return true
}

func titleCase(s string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range s {
		if unicode.IsLetter(r) {
			if startOfWord {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			startOfWord = false
		} else {
			b.WriteRune(r)
			startOfWord = true
		}
	}
	return b.String()
}
