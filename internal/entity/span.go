// Package entity defines the span value type shared by every stage of the
// redaction pipeline: detectors produce spans, the resolver and linker
// select and annotate them, the plan builder consumes them.
//
// A Span is a half-open byte range [Start, End) into one reference text.
// Spans are treated as immutable values: stages never modify a span they
// received, and annotation helpers return copies.
package entity

import (
	"errors"
	"fmt"
)

// Label is the detected entity category. The set is closed; detectors must
// not invent labels outside it.
type Label string

// All labels the pipeline understands.
const (
	LabelPerson       Label = "PERSON"
	LabelOrg          Label = "ORG"
	LabelBankOrg      Label = "BANK_ORG"
	LabelEmail        Label = "EMAIL"
	LabelPhone        Label = "PHONE"
	LabelAccountID    Label = "ACCOUNT_ID"
	LabelAddressBlock Label = "ADDRESS_BLOCK"
	LabelDOB          Label = "DOB"
	LabelDateGeneric  Label = "DATE_GENERIC"
	LabelAliasLabel   Label = "ALIAS_LABEL"
	LabelGPE          Label = "GPE"
	LabelLOC          Label = "LOC"
	LabelOther        Label = "OTHER"
)

// AllLabels lists every valid label in a stable order.
var AllLabels = []Label{
	LabelPerson, LabelOrg, LabelBankOrg, LabelEmail, LabelPhone,
	LabelAccountID, LabelAddressBlock, LabelDOB, LabelDateGeneric,
	LabelAliasLabel, LabelGPE, LabelLOC, LabelOther,
}

// Known reports whether l is one of the closed label set.
func (l Label) Known() bool {
	for _, k := range AllLabels {
		if l == k {
			return true
		}
	}
	return false
}

func (l Label) String() string { return string(l) }

// Contract-violation errors raised by NewSpan.
var (
	ErrInvalidOffsets  = errors.New("span offsets must satisfy 0 <= start < end")
	ErrConfidenceRange = errors.New("span confidence must be in [0, 1]")
	ErrUnknownLabel    = errors.New("span label is not in the closed label set")
)

// Span is one detected (or synthesized) entity occurrence.
//
// Text is the substring of the reference text at [Start, End); it is carried
// for auditing and validation, never for re-deriving offsets. Attrs holds
// detector-specific metadata (normalized values, subtypes, address-line
// components). EntityID, when set, groups every span naming the same
// real-world entity. SpanID is an optional stable identifier used only for
// deterministic tie-breaking.
type Span struct {
	Start      int
	End        int
	Text       string
	Label      Label
	Source     string
	Confidence float64
	Attrs      map[string]any
	EntityID   string
	SpanID     string
}

// AddressLine describes one line of a merged address block, carried in the
// block span's Attrs under "lines".
type AddressLine struct {
	Kind string // "street", "unit", "city_state_zip", "po_box"
	Text string
	EOL  string // raw text between this line and the next, "" on the last
	ZIP  string // "zip5" or "zip9" when the line carries a ZIP code
}

// New validates and constructs a Span. Detector output is untrusted, so
// every span enters the pipeline through this check.
func New(start, end int, text string, label Label, source string, confidence float64, attrs map[string]any) (Span, error) {
	if start < 0 || end <= start {
		return Span{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidOffsets, start, end)
	}
	if confidence < 0 || confidence > 1 {
		return Span{}, fmt.Errorf("%w: %v", ErrConfidenceRange, confidence)
	}
	if !label.Known() {
		return Span{}, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return Span{
		Start:      start,
		End:        end,
		Text:       text,
		Label:      label,
		Source:     source,
		Confidence: confidence,
		Attrs:      attrs,
	}, nil
}

// Valid reports whether s satisfies the construction invariants. Used to
// reject malformed spans arriving from detectors without erroring out.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End > s.Start && s.Confidence >= 0 && s.Confidence <= 1 && s.Label.Known()
}

// Len returns the byte length of the span.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether the half-open ranges of s and o intersect.
// Touching boundaries do not overlap.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Covers reports whether s fully contains [start, end).
func (s Span) Covers(start, end int) bool {
	return s.Start <= start && end <= s.End
}

// WithEntityID returns a copy of s carrying the given cluster identifier.
// The attrs map is copied so the original span stays untouched.
func (s Span) WithEntityID(id string) Span {
	c := s
	c.EntityID = id
	c.Attrs = cloneAttrs(s.Attrs)
	return c
}

// WithAttr returns a copy of s with one attribute added or replaced.
func (s Span) WithAttr(key string, value any) Span {
	c := s
	c.Attrs = cloneAttrs(s.Attrs)
	if c.Attrs == nil {
		c.Attrs = make(map[string]any, 1)
	}
	c.Attrs[key] = value
	return c
}

// AttrString returns the string attribute for key, or "" when absent or
// not a string.
func (s Span) AttrString(key string) string {
	if s.Attrs == nil {
		return ""
	}
	v, _ := s.Attrs[key].(string)
	return v
}

// AttrBool returns the boolean attribute for key, defaulting to false.
func (s Span) AttrBool(key string) bool {
	if s.Attrs == nil {
		return false
	}
	v, _ := s.Attrs[key].(bool)
	return v
}

func cloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	c := make(map[string]any, len(attrs))
	for k, v := range attrs {
		c[k] = v
	}
	return c
}
