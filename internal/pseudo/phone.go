package pseudo

import "math/rand"

// PhoneLike maps a North American number into the reserved 555-01XX
// fictional range, keeping the source's punctuation layout and any leading
// country digit. Non-NANP digit counts fall back to a generic digit swap.
func (g *Generator) PhoneLike(source, key string) string {
	src := compactDigits(source)
	var build func(rng *rand.Rand) string
	switch {
	case len(src) == 11 && src[0] == '1':
		build = func(rng *rand.Rand) string { return "1" + safeArea(rng) + "555" + safeLine(rng) }
	case len(src) == 10:
		build = func(rng *rand.Rand) string { return safeArea(rng) + "555" + safeLine(rng) }
	case len(src) == 7:
		build = func(rng *rand.Rand) string { return "555" + safeLine(rng) }
	default:
		return g.DigitsLike(source, key)
	}
	base := g.remembered("phone", key, func() string {
		return g.ensureDifferent("phone", key, src, numberAttempts, build)
	})
	return formatDigitsLike(source, base)
}

// safeArea draws an area code with a 2-9 leading digit, skipping the N11
// service codes.
func safeArea(rng *rand.Rand) string {
	for {
		a := byte('2' + rng.Intn(8))
		b := byte('0' + rng.Intn(10))
		c := byte('0' + rng.Intn(10))
		if b == '1' && c == '1' {
			continue
		}
		return string([]byte{a, b, c})
	}
}

// safeLine draws the last four digits from the reserved 0100-0199 block.
func safeLine(rng *rand.Rand) string {
	return "01" + randomDigits(rng, 2)
}
