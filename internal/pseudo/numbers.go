package pseudo

import (
	"math/rand"
	"strings"
	"unicode"
)

// ── Checksum helpers ─────────────────────────────────────────────────────

// luhnCheckDigit computes the trailing check digit for a digit string.
func luhnCheckDigit(digits string) byte {
	sum := 0
	double := true
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
	return byte('0' + (10-sum%10)%10)
}

// abaCheckDigit solves the ninth digit of a routing number so the
// 3-7-1 weighted sum is divisible by ten.
func abaCheckDigit(first8 string) byte {
	weights := [8]int{3, 7, 1, 3, 7, 1, 3, 7}
	sum := 0
	for i := 0; i < 8; i++ {
		sum += weights[i] * int(first8[i]-'0')
	}
	return byte('0' + (10-sum%10)%10)
}

// ibanCheckDigits computes the two check digits for an IBAN whose check
// positions are zeroed, using the mod-97 scheme.
func ibanCheckDigits(country, bban string) string {
	rearranged := bban + country + "00"
	rem := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			rem = (rem*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			rem = (rem*100 + v) % 97
		case r >= 'a' && r <= 'z':
			v := int(r-'a') + 10
			rem = (rem*100 + v) % 97
		}
	}
	check := 98 - rem
	return string([]byte{byte('0' + check/10), byte('0' + check%10)})
}

// ── Layout helpers ───────────────────────────────────────────────────────

func compactDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func compactAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatDigitsLike rewrites source keeping every non-digit in place and
// substituting digits from the replacement stream position by position.
func formatDigitsLike(source, digits string) string {
	var b strings.Builder
	i := 0
	for _, r := range source {
		if r >= '0' && r <= '9' && i < len(digits) {
			b.WriteByte(digits[i])
			i++
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatAlnumLike does the same over letters and digits, mirroring the
// source's letter case onto replacement letters.
func formatAlnumLike(source, repl string) string {
	var b strings.Builder
	i := 0
	for _, r := range source {
		if (unicode.IsLetter(r) || unicode.IsDigit(r)) && i < len(repl) {
			c := rune(repl[i])
			if unicode.IsLower(r) {
				c = unicode.ToLower(c)
			} else if unicode.IsUpper(r) {
				c = unicode.ToUpper(c)
			}
			b.WriteRune(c)
			i++
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func randomDigits(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.Intn(10))
	}
	return string(b)
}

// ── Synthesizers ─────────────────────────────────────────────────────────

// CardLike produces a Luhn-valid card number with the source's digit count
// and its leading digit, laid out like the source.
func (g *Generator) CardLike(source, key string) string {
	src := compactDigits(source)
	if len(src) < 2 {
		return source
	}
	base := g.remembered("account_cc", key, func() string {
		return g.ensureDifferent("account_cc", key, src, numberAttempts, func(rng *rand.Rand) string {
			body := string(src[0]) + randomDigits(rng, len(src)-2)
			return body + string(luhnCheckDigit(body))
		})
	})
	return formatDigitsLike(source, base)
}

// RoutingLike produces a checksum-valid ABA routing number starting with a
// plausible Federal Reserve district prefix.
func (g *Generator) RoutingLike(source, key string) string {
	src := compactDigits(source)
	base := g.remembered("account_routing", key, func() string {
		return g.ensureDifferent("account_routing", key, src, numberAttempts, func(rng *rand.Rand) string {
			first8 := "0" + string(byte('1'+rng.Intn(9))) + randomDigits(rng, 6)
			return first8 + string(abaCheckDigit(first8))
		})
	})
	return formatDigitsLike(source, base)
}

// IBANLike keeps the source country code and total length, redraws the
// BBAN, and recomputes the mod-97 check digits.
func (g *Generator) IBANLike(source, key string) string {
	src := compactAlnum(source)
	if len(src) < 5 {
		return g.DigitsLike(source, key)
	}
	country := strings.ToUpper(src[:2])
	base := g.remembered("account_iban", key, func() string {
		return g.ensureDifferent("account_iban", key, src, numberAttempts, func(rng *rand.Rand) string {
			bban := randomDigits(rng, len(src)-4)
			return country + ibanCheckDigits(country, bban) + bban
		})
	})
	return formatAlnumLike(source, base)
}

// SwiftBICLike keeps the country code (positions 5-6) and length, redrawing
// the bank, location, and branch codes.
func (g *Generator) SwiftBICLike(source, key string) string {
	src := compactAlnum(source)
	if len(src) != 8 && len(src) != 11 {
		return g.DigitsLike(source, key)
	}
	country := strings.ToUpper(src[4:6])
	base := g.remembered("account_swift", key, func() string {
		return g.ensureDifferent("account_swift", key, src, numberAttempts, func(rng *rand.Rand) string {
			bank := make([]byte, 4)
			for i := range bank {
				bank[i] = byte('A' + rng.Intn(26))
			}
			tail := make([]byte, len(src)-6)
			const alnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
			for i := range tail {
				tail[i] = alnum[rng.Intn(len(alnum))]
			}
			return string(bank) + country + string(tail)
		})
	})
	return formatAlnumLike(source, base)
}

// SSNLike draws a structurally valid social security number: area outside
// {000, 666, 900-999}, nonzero group and serial.
func (g *Generator) SSNLike(source, key string) string {
	src := compactDigits(source)
	base := g.remembered("account_ssn", key, func() string {
		return g.ensureDifferent("account_ssn", key, src, numberAttempts, func(rng *rand.Rand) string {
			area := 1 + rng.Intn(898)
			for area == 666 {
				area = 1 + rng.Intn(898)
			}
			group := 1 + rng.Intn(99)
			serial := 1 + rng.Intn(9999)
			return fmtN(area, 3) + fmtN(group, 2) + fmtN(serial, 4)
		})
	})
	return formatDigitsLike(source, base)
}

// EINLike draws a valid employer identification number prefix plus seven
// random digits.
func (g *Generator) EINLike(source, key string) string {
	src := compactDigits(source)
	base := g.remembered("account_ein", key, func() string {
		return g.ensureDifferent("account_ein", key, src, numberAttempts, func(rng *rand.Rand) string {
			return einPrefixes[rng.Intn(len(einPrefixes))] + randomDigits(rng, 7)
		})
	})
	return formatDigitsLike(source, base)
}

// DigitsLike replaces every digit in source with a fresh draw, leaving all
// other characters untouched.
func (g *Generator) DigitsLike(source, key string) string {
	src := compactDigits(source)
	if src == "" {
		return source
	}
	base := g.remembered("account_generic", key, func() string {
		return g.ensureDifferent("account_generic", key, src, numberAttempts, func(rng *rand.Rand) string {
			return randomDigits(rng, len(src))
		})
	})
	return formatDigitsLike(source, base)
}

func fmtN(v, width int) string {
	s := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		s[i] = byte('0' + v%10)
		v /= 10
	}
	return string(s)
}
