// Package plan builds and applies replacement plans. A plan is the
// complete, ordered program for rewriting one document: every surviving
// span becomes either an Entry (replace this range with this surrogate)
// or a Skip (leave it, and say why). Apply executes a plan against the
// exact text it was built from and numbers the performed replacements in
// reading order.
package plan

import (
	"time"

	"github.com/sdrasco/freedact/internal/entity"
)

// Skip reasons recorded for spans deliberately left in place.
const (
	SkipKeepRoles    = "policy_keep_roles"
	SkipGenericDates = "generic_dates_preserved"
	SkipPersonsKept  = "person_names_preserved"
)

// Key kinds recorded in entry metadata: surrogates are derived either
// from a cluster identity or from the literal matched text.
const (
	KeyEntity = "entity"
	KeyText   = "text"
)

// Meta records provenance for one planned replacement.
type Meta struct {
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Subtype    string  `json:"subtype,omitempty"`
	KeyKind    string  `json:"key_kind"`
}

// Entry is one planned replacement over the original document. Offsets
// are byte positions in the text the plan was built from. AppliedIndex
// is assigned by Apply: 1-based in reading order, 0 for entries that
// were not spliced.
type Entry struct {
	Start        int          `json:"start"`
	End          int          `json:"end"`
	Original     string       `json:"original"`
	Replacement  string       `json:"replacement"`
	Label        entity.Label `json:"label"`
	EntityID     string       `json:"entity_id,omitempty"`
	AppliedIndex int          `json:"applied_index,omitempty"`
	Meta         Meta         `json:"meta"`
}

// Skip records a detected span the policy left verbatim.
type Skip struct {
	Start  int          `json:"start"`
	End    int          `json:"end"`
	Text   string       `json:"text"`
	Label  entity.Label `json:"label"`
	Reason string       `json:"reason"`
}

// Plan is the replacement program for one document.
type Plan struct {
	DocID     string    `json:"doc_id"`
	DocHash   string    `json:"doc_hash_b32"`
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
	Skipped   []Skip    `json:"skipped,omitempty"`
}

// CountsByLabel tallies planned replacements per label.
func (p *Plan) CountsByLabel() map[entity.Label]int {
	m := make(map[entity.Label]int, len(p.Entries))
	for _, e := range p.Entries {
		m[e.Label]++
	}
	return m
}

// SkipReason returns the recorded reason for the skip covering [start,
// end), or "" when the plan holds no such skip.
func (p *Plan) SkipReason(start, end int) string {
	for _, s := range p.Skipped {
		if s.Start == start && s.End == end {
			return s.Reason
		}
	}
	return ""
}
