package detect

import (
	"regexp"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
)

// Scoring for candidate name sequences. A sequence starts at a base score
// and accumulates bonuses and penalties; it is emitted when the total
// clears personThreshold.
const (
	personBase        = 0.30
	personTwoCores    = 0.45
	personExtraCore   = 0.15
	personInitials    = 0.15
	personParticle    = 0.10
	personSuffix      = 0.05
	personHonorific   = 0.30
	personDigits      = -0.25
	personShouting    = -0.20
	personBareRole    = -0.30
	personThreshold   = 0.60
	personMaxSequence = 6
)

var (
	personWordRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9'’.\-]*`)

	honorificRe = regexp.MustCompile(`^(?i:mr|mrs|ms|mx|dr|prof|hon|rev|judge)\.?$`)
	initialsRe  = regexp.MustCompile(`^[A-Z]\.(?:[A-Z]\.)*$`)
	suffixRe    = regexp.MustCompile(`^(?:Jr|Sr|II|III|IV|V|Esq)\.?$`)
	titleCoreRe = regexp.MustCompile(`^[A-Z][A-Za-z'’\-]*[a-z]$`)
	capsCoreRe  = regexp.MustCompile(`^[A-Z]{2,}$`)
	digitCoreRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9'’\-]+$`)

	nameParticles = wordSet("van von der den de del della di da la le bin ibn al ter ten te op")

	// Title-case function words never begin or continue a name.
	titleStops = wordSet("the a an in on at of and or to for by with this that these those if as but is are was were be been not no from per each any all")

	// All-caps tokens typical of legal-document shouting.
	capsStops = wordSet("THE AND OF TO FOR THIS THAT WHEREAS AGREEMENT SECTION ARTICLE EXHIBIT PARTY PARTIES WITNESS WITNESSETH BETWEEN SHALL HEREBY HEREIN RECITALS NOW THEREFORE")

	roleWords = wordSet("buyer seller borrower lender tenant landlord guarantor trustee grantor grantee lessor lessee payee payor employer employee client customer claimant respondent plaintiff defendant company purchaser vendor contractor consultant owner agent guardian executor administrator insurer insured licensor licensee landlady premises")
)

func wordSet(words string) map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		m[w] = true
	}
	return m
}

// PersonDetector scores sequences of name-shaped tokens: honorifics,
// initials, capitalized cores, lowercase particles, and generational
// suffixes. It is a grammar, not a dictionary, so it finds names no list
// would contain, at the cost of occasional capitalized-phrase noise.
type PersonDetector struct{}

func (PersonDetector) Name() string { return "names_person" }

type personTok struct {
	start, end int
	text       string
	kind       int
}

const (
	tokHonorific = iota
	tokInitials
	tokParticle
	tokSuffix
	tokCore
	tokCapsCore
	tokOther
)

func (PersonDetector) Detect(text string, _ *Context) ([]entity.Span, error) {
	words := personWordRe.FindAllStringIndex(text, -1)
	toks := make([]personTok, len(words))
	for i, w := range words {
		t := text[w[0]:w[1]]
		// The word regexp absorbs sentence-ending periods ("Poppins.").
		// Strip them unless the token carries its dots legitimately.
		for strings.HasSuffix(t, ".") && !honorificRe.MatchString(t) &&
			!initialsRe.MatchString(t) && !suffixRe.MatchString(t) {
			t = t[:len(t)-1]
		}
		toks[i] = personTok{start: w[0], end: w[0] + len(t), text: t, kind: classifyNameToken(t)}
	}

	var spans []entity.Span
	i := 0
	for i < len(toks) {
		if toks[i].kind == tokOther {
			i++
			continue
		}
		seq := []personTok{toks[i]}
		j := i + 1
		for j < len(toks) && len(seq) < personMaxSequence {
			gap := text[toks[j-1].end:toks[j].start]
			if gap != " " && !(gap == ", " && toks[j].kind == tokSuffix) {
				break
			}
			if toks[j].kind == tokOther {
				break
			}
			seq = append(seq, toks[j])
			j++
		}
		if s, ok := scoreNameSequence(text, seq); ok {
			spans = append(spans, s)
		}
		i = j
	}
	return spans, nil
}

func classifyNameToken(t string) int {
	switch {
	case honorificRe.MatchString(t) && (t[0] >= 'A' && t[0] <= 'Z'):
		return tokHonorific
	case initialsRe.MatchString(t):
		return tokInitials
	case nameParticles[t]:
		return tokParticle
	case suffixRe.MatchString(t):
		return tokSuffix
	case titleStops[strings.ToLower(t)]:
		return tokOther
	case titleCoreRe.MatchString(t):
		return tokCore
	case capsCoreRe.MatchString(t):
		return tokCapsCore
	case digitCoreRe.MatchString(t):
		// Digit-bearing capitalized tokens stay in the sequence; the
		// digits penalty below handles them.
		return tokCore
	default:
		return tokOther
	}
}

func scoreNameSequence(text string, seq []personTok) (entity.Span, bool) {
	// The honorific scores but stays outside the emitted span so the
	// replacement swaps only the name itself.
	honorific := ""
	if seq[0].kind == tokHonorific {
		honorific = seq[0].text
		seq = seq[1:]
	}
	if len(seq) == 0 {
		return entity.Span{}, false
	}

	var cores, initials, particles, suffixes, shouting, roles int
	for _, t := range seq {
		switch t.kind {
		case tokCore:
			cores++
			if roleWords[strings.ToLower(t.text)] {
				roles++
			}
		case tokCapsCore:
			if capsStops[t.text] {
				shouting++
			} else {
				cores++
				if roleWords[strings.ToLower(t.text)] {
					roles++
				}
			}
		case tokInitials:
			initials++
		case tokParticle:
			particles++
		case tokSuffix:
			suffixes++
		}
	}
	if cores == 0 {
		return entity.Span{}, false
	}

	score := personBase
	if honorific != "" {
		score += personHonorific
	}
	if cores+initials >= 2 {
		score += personTwoCores
	}
	if extra := cores - 2; extra > 0 {
		if extra > 2 {
			extra = 2
		}
		score += float64(extra) * personExtraCore
	}
	if initials > 0 {
		score += personInitials
	}
	if particles > 0 {
		score += personParticle
	}
	if suffixes > 0 {
		score += personSuffix
	}
	surface := text[seq[0].start:seq[len(seq)-1].end]
	if strings.ContainsAny(surface, "0123456789") {
		score += personDigits
	}
	if shouting > 0 {
		score += personShouting
	}
	if roles == cores && initials == 0 {
		score += personBareRole
	}

	if score < personThreshold {
		return entity.Span{}, false
	}
	conf := score
	if conf > 0.99 {
		conf = 0.99
	}
	attrs := map[string]any{"tokens": len(seq)}
	if honorific != "" {
		attrs["honorific"] = honorific
	}
	return span(text, seq[0].start, seq[len(seq)-1].end, entity.LabelPerson, "names_person", conf, attrs)
}
