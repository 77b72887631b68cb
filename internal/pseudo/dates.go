package pseudo

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// Date surrogates stay within a few years of the original so ages and
// chronology remain plausible.
const dateYearJitter = 3

type dateStyle int

const (
	dateISO dateStyle = iota
	dateNumericMDY
	dateMonthDY
	dateDMonthY
)

type parsedDate struct {
	style   dateStyle
	y, m, d int
	sep     byte
	padM    bool
	padD    bool
	abbrev  bool
	dot     bool
	ordinal bool
	comma   bool
	of      bool
}

var (
	isoDateRe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	numericMDYRe  = regexp.MustCompile(`^(\d{1,2})([/-])(\d{1,2})[/-](\d{4})$`)
	monthDYRe     = regexp.MustCompile(`^([A-Za-z]+)(\.?)\s+(\d{1,2})(st|nd|rd|th)?(,?)\s+(\d{4})$`)
	dMonthYRe     = regexp.MustCompile(`^(\d{1,2})(st|nd|rd|th)?\s+(of\s+)?([A-Za-z]+)\.?,?\s*(\d{4})$`)
	monthNamesArr = [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
)

// DateLike shifts the date to a nearby year with a fresh month and day,
// rendered in the source's own style (ISO, numeric US, or spelled-out
// month in either order, ordinals included). Unparseable inputs get a
// plain digit swap.
func (g *Generator) DateLike(source, key string) string {
	pd, ok := parseDate(strings.TrimSpace(source))
	if !ok {
		return g.DigitsLike(source, key)
	}
	srcISO := fmt.Sprintf("%04d-%02d-%02d", pd.y, pd.m, pd.d)
	base := g.remembered("date", key, func() string {
		return g.ensureDifferent("date", key, srcISO, numberAttempts, func(rng *rand.Rand) string {
			y := pd.y + rng.Intn(2*dateYearJitter+1) - dateYearJitter
			m := 1 + rng.Intn(12)
			d := 1 + rng.Intn(daysIn(m, y))
			return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
		})
	})
	ny, nm, nd := splitISO(base)
	return pd.format(ny, nm, nd)
}

// ISOValue reports the YYYY-MM-DD form of a recognized date expression.
func ISOValue(source string) (string, bool) {
	pd, ok := parseDate(strings.TrimSpace(source))
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", pd.y, pd.m, pd.d), true
}

func parseDate(s string) (parsedDate, bool) {
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		pd := parsedDate{style: dateISO, y: atoi(m[1]), m: atoi(m[2]), d: atoi(m[3])}
		return pd, pd.valid()
	}
	if m := numericMDYRe.FindStringSubmatch(s); m != nil {
		pd := parsedDate{
			style: dateNumericMDY,
			m:     atoi(m[1]), d: atoi(m[3]), y: atoi(m[4]),
			sep:  m[2][0],
			padM: len(m[1]) == 2 && m[1][0] == '0',
			padD: len(m[3]) == 2 && m[3][0] == '0',
		}
		return pd, pd.valid()
	}
	if m := monthDYRe.FindStringSubmatch(s); m != nil {
		mo, abbrev, ok := monthFromName(m[1])
		if !ok {
			return parsedDate{}, false
		}
		pd := parsedDate{
			style: dateMonthDY,
			m:     mo, d: atoi(m[3]), y: atoi(m[6]),
			abbrev:  abbrev,
			dot:     m[2] == ".",
			ordinal: m[4] != "",
			comma:   m[5] == ",",
		}
		return pd, pd.valid()
	}
	if m := dMonthYRe.FindStringSubmatch(s); m != nil {
		mo, abbrev, ok := monthFromName(m[4])
		if !ok {
			return parsedDate{}, false
		}
		pd := parsedDate{
			style: dateDMonthY,
			d:     atoi(m[1]), m: mo, y: atoi(m[5]),
			abbrev:  abbrev,
			ordinal: m[2] != "",
			of:      m[3] != "",
		}
		return pd, pd.valid()
	}
	return parsedDate{}, false
}

func (pd parsedDate) valid() bool {
	return pd.y >= 1 && pd.m >= 1 && pd.m <= 12 && pd.d >= 1 && pd.d <= daysIn(pd.m, pd.y)
}

func (pd parsedDate) format(y, m, d int) string {
	switch pd.style {
	case dateISO:
		return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	case dateNumericMDY:
		return fmt.Sprintf("%s%c%s%c%04d", padInt(m, pd.padM), pd.sep, padInt(d, pd.padD), pd.sep, y)
	case dateMonthDY:
		name := monthNamesArr[m-1]
		if pd.abbrev {
			name = name[:3]
			if pd.dot {
				name += "."
			}
		}
		day := strconv.Itoa(d)
		if pd.ordinal {
			day += ordinalSuffix(d)
		}
		comma := ""
		if pd.comma {
			comma = ","
		}
		return fmt.Sprintf("%s %s%s %04d", name, day, comma, y)
	default:
		name := monthNamesArr[m-1]
		if pd.abbrev {
			name = name[:3]
		}
		day := strconv.Itoa(d)
		if pd.ordinal {
			day += ordinalSuffix(d)
		}
		of := ""
		if pd.of {
			of = "of "
		}
		return fmt.Sprintf("%s %s%s %04d", day, of, name, y)
	}
}

func monthFromName(s string) (int, bool, bool) {
	for i, full := range monthNamesArr {
		if strings.EqualFold(s, full) {
			return i + 1, false, true
		}
		// Prefix match covers the usual abbreviations, "Sept" included.
		if len(s) >= 3 && len(s) < len(full) && strings.EqualFold(s, full[:len(s)]) {
			return i + 1, true, true
		}
	}
	return 0, false, false
}

func daysIn(m, y int) int {
	switch m {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if y%4 == 0 && (y%100 != 0 || y%400 == 0) {
			return 29
		}
		return 28
	}
}

func ordinalSuffix(d int) string {
	if d%100 >= 11 && d%100 <= 13 {
		return "th"
	}
	switch d % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func padInt(v int, pad bool) string {
	if pad {
		return fmt.Sprintf("%02d", v)
	}
	return strconv.Itoa(v)
}

func splitISO(s string) (int, int, int) {
	return atoi(s[:4]), atoi(s[5:7]), atoi(s[8:10])
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s) //nolint:errcheck // inputs are regex-validated digits
	return n
}
