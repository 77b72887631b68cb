package pseudo

import (
	"math/rand"
	"strings"
	"unicode"
)

// SafeEmailDomain is the reserved domain every surrogate address lands on.
const SafeEmailDomain = "example.org"

// EmailLike rewrites the local part character class by character class
// (letters stay letters, digits stay digits, separators and plus-tags stay
// put) and forces the domain to a reserved name.
func (g *Generator) EmailLike(source, key string) string {
	return g.remembered("email", key, func() string {
		return g.ensureDifferent("email", key, source, numberAttempts, func(rng *rand.Rand) string {
			return synthesizeEmail(source, rng)
		})
	})
}

func synthesizeEmail(source string, rng *rand.Rand) string {
	local := source
	if at := strings.LastIndexByte(source, '@'); at >= 0 {
		local = source[:at]
	}
	var b strings.Builder
	for _, r := range local {
		switch {
		case unicode.IsLower(r):
			b.WriteByte(byte('a' + rng.Intn(26)))
		case unicode.IsUpper(r):
			b.WriteByte(byte('A' + rng.Intn(26)))
		case unicode.IsDigit(r):
			b.WriteByte(byte('0' + rng.Intn(10)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String() + "@" + SafeEmailDomain
}
