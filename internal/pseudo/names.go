package pseudo

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/sdrasco/freedact/internal/shape"
)

var (
	initialsLikeRe = regexp.MustCompile(`^(?:[A-Za-z][.\-\s]+)+[A-Za-z]\.?$`)

	// Legal suffixes are carried over verbatim so the surrogate keeps the
	// registered-entity form of the original.
	orgSuffixRe = regexp.MustCompile(`(?i)[,]?\s+(inc\.?|llc|l\.l\.c\.|ltd\.?|corp\.?|co\.?|llp|l\.p\.|plc|gmbh|s\.a\.|n\.a\.|company|corporation|incorporated|holdings?|group)$`)

	bankDesignators = []string{
		"credit union", "trust company", "savings bank", "building society",
		"bancorp", "bancshares", "savings", "trust", "bank", "n.a.",
	}

	bankOfRe = regexp.MustCompile(`(?i)^(bank\s+of\s+)(.+)$`)
)

// PersonLike returns a surrogate personal name shaped like source. The base
// draw is a two-token given/surname pair; the emitted form follows the
// source's token structure (single-token sources get just the given name,
// longer ones receive extra given names in the middle).
func (g *Generator) PersonLike(source, key string) string {
	base := g.remembered("person", key, func() string {
		return g.ensureDifferent("person", key, source, nameAttempts, func(rng *rand.Rand) string {
			return givenNames[rng.Intn(len(givenNames))] + " " + surnames[rng.Intn(len(surnames))]
		})
	})
	adapted := g.adaptPersonBase(base, source, key)
	return shape.FormatLike(source, adapted, g.deriver.RNG("person", key+":shape", g.scope))
}

// adaptPersonBase fits the two-token base to the source's field count.
func (g *Generator) adaptPersonBase(base, source, key string) string {
	core := strings.TrimSpace(source)
	if initialsLikeRe.MatchString(core) {
		return base
	}
	fields := strings.Fields(core)
	parts := strings.Fields(base)
	if len(parts) < 2 {
		return base
	}
	given, surname := parts[0], parts[len(parts)-1]
	switch {
	case len(fields) <= 1:
		return given
	case len(fields) == 2:
		return given + " " + surname
	default:
		rng := g.deriver.RNG("person", key+":extra", g.scope)
		mids := make([]string, 0, len(fields)-2)
		for i := 0; i < len(fields)-2; i++ {
			mids = append(mids, givenNames[rng.Intn(len(givenNames))])
		}
		return given + " " + strings.Join(mids, " ") + " " + surname
	}
}

// Surname reports the family-name token of the surrogate for key, used
// when alias clusters must agree on a shared last name.
func (g *Generator) Surname(source, key string) string {
	base := g.remembered("person", key, func() string {
		return g.ensureDifferent("person", key, source, nameAttempts, func(rng *rand.Rand) string {
			return givenNames[rng.Intn(len(givenNames))] + " " + surnames[rng.Intn(len(surnames))]
		})
	})
	parts := strings.Fields(base)
	return parts[len(parts)-1]
}

// OrgLike returns a surrogate organization name. Any trailing legal suffix
// in the source is preserved verbatim; only the distinctive part is
// replaced.
func (g *Generator) OrgLike(source, key string) string {
	core := strings.TrimSpace(source)
	suffix := ""
	if m := orgSuffixRe.FindStringIndex(core); m != nil {
		suffix = core[m[0]:]
		core = core[:m[0]]
	}
	words := len(strings.Fields(core))
	if words < 1 {
		words = 1
	}
	base := g.remembered("org", key, func() string {
		return g.ensureDifferent("org", key, core, nameAttempts, func(rng *rand.Rand) string {
			picked := make([]string, words)
			for i := range picked {
				w := orgBaseWords[rng.Intn(len(orgBaseWords))]
				for i > 0 && w == picked[i-1] {
					w = orgBaseWords[rng.Intn(len(orgBaseWords))]
				}
				picked[i] = w
			}
			return strings.Join(picked, " ")
		})
	})
	out := shape.FormatLike(core, base, g.deriver.RNG("org", key+":shape", g.scope))
	return out + suffix
}

// BankOrgLike returns a surrogate financial-institution name. Banking
// designators ("Bank", "Credit Union", …) survive the swap; "Bank of X"
// keeps its prepositional form with a replacement locality.
func (g *Generator) BankOrgLike(source, key string) string {
	core := strings.TrimSpace(source)
	if m := bankOfRe.FindStringSubmatch(core); m != nil {
		place := g.remembered("bank_org", key, func() string {
			return g.ensureDifferent("bank_org", key, m[2], nameAttempts, func(rng *rand.Rand) string {
				return cityNames[rng.Intn(len(cityNames))]
			})
		})
		return m[1] + shape.MatchCase(m[2], place)
	}
	lower := strings.ToLower(core)
	designator := ""
	for _, d := range bankDesignators {
		if strings.HasSuffix(lower, d) {
			designator = core[len(core)-len(d):]
			core = strings.TrimSpace(core[:len(core)-len(d)])
			break
		}
	}
	words := len(strings.Fields(core))
	if words < 1 {
		words = 1
	}
	base := g.remembered("bank_org", key, func() string {
		return g.ensureDifferent("bank_org", key, core, nameAttempts, func(rng *rand.Rand) string {
			picked := make([]string, words)
			for i := range picked {
				picked[i] = orgBaseWords[rng.Intn(len(orgBaseWords))]
			}
			return strings.Join(picked, " ")
		})
	})
	out := shape.FormatLike(core, base, g.deriver.RNG("bank_org", key+":shape", g.scope))
	if designator == "" {
		return out
	}
	return out + " " + designator
}

// PlaceLike returns a surrogate place name for standalone geographic
// mentions (states, cities, regions).
func (g *Generator) PlaceLike(source, key string) string {
	base := g.remembered("place", key, func() string {
		return g.ensureDifferent("place", key, source, nameAttempts, func(rng *rand.Rand) string {
			return cityNames[rng.Intn(len(cityNames))]
		})
	})
	return shape.MatchCase(source, base)
}
