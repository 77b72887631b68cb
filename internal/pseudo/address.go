package pseudo

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
)

var (
	houseNumberRe = regexp.MustCompile(`^\d{1,5}`)
	unitLineRe    = regexp.MustCompile(`(?i)^(apt\.?|apartment|suite|ste\.?|unit|#|no\.?)\s*(.*)$`)
	poBoxLineRe   = regexp.MustCompile(`(?i)^(p\.?\s*o\.?\s*box|post\s+office\s+box)\s+(\d+)(.*)$`)
	cszLineRe     = regexp.MustCompile(`^(.+?)(,?)\s+([A-Z]{2})\s+(\d{5})(-\d{4})?$`)
	unitValueRe   = regexp.MustCompile(`^(\d+)([A-Za-z]?)$`)
)

// StreetLike draws a fresh house number, street name, and suffix. The
// house number keeps the source's digit count so the line width stays
// familiar.
func (g *Generator) StreetLike(source, key string) string {
	return g.remembered("address", key, func() string {
		return g.ensureDifferent("address", key, source, addressAttempts, func(rng *rand.Rand) string {
			width := 3
			if m := houseNumberRe.FindString(strings.TrimSpace(source)); m != "" {
				width = len(m)
			}
			num := string(byte('1'+rng.Intn(9))) + randomDigits(rng, width-1)
			name := streetNames[rng.Intn(len(streetNames))]
			suffix := streetSuffixes[rng.Intn(len(streetSuffixes))]
			return num + " " + name + " " + suffix
		})
	})
}

// UnitLike keeps the unit designator (Apt, Suite, #) and redraws the unit
// value, mirroring a digits-plus-letter value when the source has one.
func (g *Generator) UnitLike(source, key string) string {
	m := unitLineRe.FindStringSubmatch(strings.TrimSpace(source))
	if m == nil {
		return g.DigitsLike(source, key)
	}
	designator := m[1]
	sep := " "
	if designator == "#" {
		sep = ""
	}
	withLetter := unitValueRe.FindStringSubmatch(strings.TrimSpace(m[2]))
	return g.remembered("address", key, func() string {
		return g.ensureDifferent("address", key, source, addressAttempts, func(rng *rand.Rand) string {
			val := string(byte('1' + rng.Intn(9)))
			if withLetter != nil {
				if n := len(withLetter[1]); n > 1 {
					val += randomDigits(rng, n-1)
				}
				if withLetter[2] != "" {
					val += string(byte('A' + rng.Intn(26)))
				}
			} else {
				val += randomDigits(rng, 2)
			}
			return designator + sep + val
		})
	})
}

// CityStateZipLike redraws city, state, and ZIP while keeping the comma
// layout and the five- versus nine-digit ZIP form.
func (g *Generator) CityStateZipLike(source, zipKind, key string) string {
	comma := ","
	if m := cszLineRe.FindStringSubmatch(strings.TrimSpace(source)); m != nil {
		comma = m[2]
		if zipKind == "" {
			zipKind = entity.ZIP5
			if m[5] != "" {
				zipKind = entity.ZIP9
			}
		}
	}
	return g.remembered("address", key, func() string {
		return g.ensureDifferent("address", key, source, addressAttempts, func(rng *rand.Rand) string {
			city := cityNames[rng.Intn(len(cityNames))]
			state := stateCodes[rng.Intn(len(stateCodes))]
			zip := randomDigits(rng, 5)
			if zipKind == entity.ZIP9 {
				zip += "-" + randomDigits(rng, 4)
			}
			return city + comma + " " + state + " " + zip
		})
	})
}

// POBoxLike keeps the box designator verbatim and redraws the box number
// at the source's digit count.
func (g *Generator) POBoxLike(source, key string) string {
	m := poBoxLineRe.FindStringSubmatch(strings.TrimSpace(source))
	if m == nil {
		return g.DigitsLike(source, key)
	}
	return g.remembered("address", key, func() string {
		return g.ensureDifferent("address", key, source, addressAttempts, func(rng *rand.Rand) string {
			return m[1] + " " + string(byte('1'+rng.Intn(9))) + randomDigits(rng, len(m[2])-1) + m[3]
		})
	})
}

// BlockLike rewrites a multi-line address block line by line. Each line is
// salted with its index so blocks sharing a key still differ internally,
// and every line keeps its own end-of-line marker.
func (g *Generator) BlockLike(lines []entity.AddressLine, key string) string {
	var b strings.Builder
	for i, ln := range lines {
		salt := fmt.Sprintf("%s:%d", key, i)
		var out string
		switch ln.Kind {
		case entity.AddrKindStreet:
			out = g.StreetLike(ln.Text, salt)
		case entity.AddrKindUnit:
			out = g.UnitLike(ln.Text, salt)
		case entity.AddrKindCityStateZip:
			out = g.CityStateZipLike(ln.Text, ln.ZIP, salt)
		case entity.AddrKindPOBox:
			out = g.POBoxLike(ln.Text, salt)
		default:
			out = g.DigitsLike(ln.Text, salt)
		}
		b.WriteString(out)
		b.WriteString(ln.EOL)
	}
	return b.String()
}
