package detect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
)

var usStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado",
	"Connecticut", "Delaware", "Florida", "Georgia", "Hawaii", "Idaho",
	"Illinois", "Indiana", "Iowa", "Kansas", "Kentucky", "Louisiana", "Maine",
	"Maryland", "Massachusetts", "Michigan", "Minnesota", "Mississippi",
	"Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey",
	"New Mexico", "New York", "North Carolina", "North Dakota", "Ohio",
	"Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina",
	"South Dakota", "Tennessee", "Texas", "Utah", "Vermont", "Virginia",
	"Washington", "West Virginia", "Wisconsin", "Wyoming",
}

var usCities = []string{
	"New York City", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Austin", "Jacksonville", "Fort Worth", "Columbus", "Charlotte",
	"Indianapolis", "San Francisco", "Seattle", "Denver", "Boston",
	"Nashville", "Detroit", "Portland", "Memphis", "Oklahoma City",
	"Las Vegas", "Louisville", "Baltimore", "Milwaukee", "Albuquerque",
	"Tucson", "Fresno", "Sacramento", "Kansas City", "Atlanta", "Miami",
	"Omaha", "Raleigh", "Cleveland", "Tampa", "Minneapolis", "New Orleans",
	"Pittsburgh", "Cincinnati", "St. Louis", "Orlando", "Buffalo",
	"Hartford", "Providence", "Richmond", "Salt Lake City", "Birmingham",
}

var usRegions = []string{
	"New England", "the Midwest", "the South", "Pacific Northwest",
	"Gulf Coast", "East Coast", "West Coast", "Bay Area",
	"Mississippi River", "Lake Michigan", "Rocky Mountains",
	"Appalachian Mountains", "Great Lakes",
}

type gazEntry struct {
	label entity.Label
	geo   string
}

var (
	gazTable = func() map[string]gazEntry {
		t := make(map[string]gazEntry)
		for _, s := range usStates {
			t[s] = gazEntry{entity.LabelGPE, "state"}
		}
		for _, c := range usCities {
			if _, dup := t[c]; !dup {
				t[c] = gazEntry{entity.LabelGPE, "city"}
			}
		}
		for _, r := range usRegions {
			t[r] = gazEntry{entity.LabelLOC, "region"}
		}
		return t
	}()

	gazRe = func() *regexp.Regexp {
		names := make([]string, 0, len(gazTable))
		for n := range gazTable {
			names = append(names, n)
		}
		// Longest first so "New York City" beats "New York" at the same
		// position (alternation is first-match).
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) != len(names[j]) {
				return len(names[i]) > len(names[j])
			}
			return names[i] < names[j]
		})
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = regexp.QuoteMeta(n)
		}
		return regexp.MustCompile(`\b(?:` + strings.Join(quoted, `|`) + `)\b`)
	}()
)

// Gazetteer matches US states, major cities, and a few regions against a
// built-in table. Case-sensitive on purpose: lowercase "georgia" is more
// likely a misspelling than a place, and Title-case collisions with
// person names are left to label precedence.
type Gazetteer struct{}

func (Gazetteer) Name() string { return "gazetteer" }

func (Gazetteer) Detect(text string, _ *Context) ([]entity.Span, error) {
	var spans []entity.Span
	for _, m := range gazRe.FindAllStringIndex(text, -1) {
		surface := text[m[0]:m[1]]
		e, ok := gazTable[surface]
		if !ok {
			continue
		}
		s, ok := span(text, m[0], m[1], e.label, "gazetteer", 0.85, map[string]any{"geo": e.geo})
		if ok {
			spans = append(spans, s)
		}
	}
	return spans, nil
}
