// Package link turns raw detector output into the non-overlapping,
// cluster-annotated span set the plan builder consumes. Three passes run
// in order: address-line merging (MergeAddresses), alias and coreference
// clustering (LinkAliases, LinkCoref), and the precedence resolver
// (Resolve) that selects the final non-overlapping subset.
package link

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/sdrasco/freedact/internal/entity"
)

// Resolve selects a non-overlapping subset of spans. precedence is an
// ordered label list, strongest first; labels absent from it rank weakest.
// The result is deterministic for a fixed input multiset and order, which
// reproducible audits depend on.
func Resolve(spans []entity.Span, precedence []entity.Label) []entity.Span {
	rank := make(map[entity.Label]int, len(precedence))
	for i, l := range precedence {
		rank[l] = i
	}
	rankOf := func(l entity.Label) int {
		if r, ok := rank[l]; ok {
			return r
		}
		return len(precedence)
	}

	// Detector output is untrusted; structurally invalid spans are
	// dropped here rather than crashed on.
	valid := make([]entity.Span, 0, len(spans))
	for _, s := range spans {
		if s.Valid() {
			valid = append(valid, s)
		}
	}

	// Collapse exact [start, end, label] duplicates: higher confidence
	// wins, then the lexicographically smaller source, then the earliest
	// arrival.
	type dupKey struct {
		start, end int
		label      entity.Label
	}
	seen := make(map[dupKey]int, len(valid))
	deduped := make([]entity.Span, 0, len(valid))
	for _, s := range valid {
		k := dupKey{s.Start, s.End, s.Label}
		if i, ok := seen[k]; ok {
			held := deduped[i]
			if s.Confidence > held.Confidence ||
				(s.Confidence == held.Confidence && s.Source < held.Source) {
				deduped[i] = s
			}
			continue
		}
		seen[k] = len(deduped)
		deduped = append(deduped, s)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		a, b := deduped[i], deduped[j]
		if ra, rb := rankOf(a.Label), rankOf(b.Label); ra != rb {
			return ra < rb
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return tieID(a) < tieID(b)
	})

	var kept []entity.Span
	for _, c := range deduped {
		clash := false
		for _, k := range kept {
			if c.Overlaps(k) {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// tieID is the final sort criterion: the explicit SpanID when present,
// otherwise a content hash. It is reached only when two distinct spans
// agree on every other key component.
func tieID(s entity.Span) string {
	if s.SpanID != "" {
		return s.SpanID
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d:%s:%s:%s", s.Start, s.End, s.Label, s.Source, s.Text) //nolint:errcheck // fnv writes cannot fail
	return fmt.Sprintf("%016x", h.Sum64())
}
