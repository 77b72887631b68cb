package link

import (
	"sort"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/logger"
	"github.com/sdrasco/freedact/internal/seed"
	"github.com/sdrasco/freedact/internal/textutil"
)

// How far back an alias definition looks for its subject entity when the
// detector could not pin one on the same line.
const subjectLookback = 120

// Cluster groups every mention of one real-world entity: the subject
// spans, the alias definitions, and the propagated alias occurrences.
// Spans reference clusters by ID, never by pointer.
type Cluster struct {
	ID      string
	Subject string
	Label   entity.Label
	Aliases []Alias

	defs []defSite
}

// Alias is one name the cluster's entity is known by. Kind is "nickname"
// or "role"; role aliases may be kept verbatim under the keep-roles
// policy.
type Alias struct {
	Text string
	Kind string
}

type defSite struct {
	start, end int
}

// Linker runs the alias and coreference passes. It is constructed once
// per document batch; all fields are read-only during linking.
type Linker struct {
	deriver   *seed.Deriver
	scope     []byte
	keepRoles bool
	coref     bool
	log       *logger.Logger

	// IDLength is the cluster identifier length in base-32 characters.
	// Zero uses the deriver default.
	IDLength int
}

// NewLinker builds a Linker. keepRoles leaves role aliases ("Buyer",
// "Party B") verbatim by flagging their spans skip_replacement; coref
// enables the heuristic coreference pass. A nil log is silenced.
func NewLinker(d *seed.Deriver, scope []byte, keepRoles, coref bool, log *logger.Logger) *Linker {
	if log == nil {
		log = logger.Nop()
	}
	return &Linker{deriver: d, scope: scope, keepRoles: keepRoles, coref: coref, log: log}
}

// Link clusters alias definitions and coreferring mentions, annotates
// every clustered span with its entity ID, and synthesizes propagated
// alias mention spans. The input slice is not modified.
func (l *Linker) Link(text string, spans []entity.Span, lines *textutil.LineIndex) ([]entity.Span, []*Cluster) {
	if lines == nil {
		lines = textutil.NewLineIndex(text)
	}

	out := make([]entity.Span, len(spans))
	copy(out, spans)

	clusters := make(map[string]*Cluster)
	var order []string

	// Alias definitions in document order.
	var defIdx []int
	for i, s := range out {
		if s.Label == entity.LabelAliasLabel && s.Source == "aliases" {
			defIdx = append(defIdx, i)
		}
	}
	sort.Slice(defIdx, func(a, b int) bool { return out[defIdx[a]].Start < out[defIdx[b]].Start })

	for _, di := range defIdx {
		def := out[di]
		subject, subjLabel, subjSpan := l.subjectOf(text, out, def)
		canonical := seed.CanonicalizeKey(subject)
		if canonical == "" {
			subject = def.Text
			canonical = seed.CanonicalizeKey(subject)
		}

		cl, ok := clusters[canonical]
		if !ok {
			cl = &Cluster{
				ID:      l.deriver.StableID("ENTITY_CLUSTER", subject, l.scope, l.IDLength),
				Subject: subject,
				Label:   subjLabel,
				defs:    nil,
			}
			clusters[canonical] = cl
			order = append(order, canonical)
		}
		kind := def.AttrString("alias_kind")
		cl.Aliases = append(cl.Aliases, Alias{Text: def.Text, Kind: kind})
		cl.defs = append(cl.defs, defSite{start: def.Start, end: def.End})

		out[di] = l.annotate(out[di], cl.ID, kind)
		if subjSpan >= 0 {
			out[subjSpan] = out[subjSpan].WithEntityID(cl.ID)
		}
		l.log.Debugf("alias_link", "alias %q -> cluster %s (subject %q, kind %s)",
			def.Text, cl.ID, subject, kind)
	}

	// Full-name repeat mentions join their subject's cluster so one
	// surrogate covers the name however it appears.
	for i, s := range out {
		if s.EntityID != "" {
			continue
		}
		switch s.Label {
		case entity.LabelPerson, entity.LabelOrg, entity.LabelBankOrg:
			if cl, ok := clusters[seed.CanonicalizeKey(s.Text)]; ok {
				out[i] = out[i].WithEntityID(cl.ID)
			}
		}
	}

	out = l.propagate(text, out, clusters, order)

	if l.coref {
		out = l.linkCoref(text, out, clusters, &order)
	}

	result := make([]*Cluster, len(order))
	for i, k := range order {
		result[i] = clusters[k]
	}
	return out, result
}

// subjectOf resolves the entity an alias definition names: the entity
// span overlapping the detector's subject guess, else the nearest
// preceding person or organization span within the lookback window, else
// the detector's line guess.
func (l *Linker) subjectOf(text string, spans []entity.Span, def entity.Span) (string, entity.Label, int) {
	if raw, ok := def.Attrs["subject_span"].([]int); ok && len(raw) == 2 {
		for i, s := range spans {
			if isSubjectLabel(s.Label) && s.Start < raw[1] && raw[0] < s.End {
				return s.Text, s.Label, i
			}
		}
		if raw[0] >= 0 && raw[1] <= len(text) && raw[0] < raw[1] {
			return text[raw[0]:raw[1]], entity.LabelPerson, -1
		}
	}

	best := -1
	for i, s := range spans {
		if !isSubjectLabel(s.Label) || s.End > def.Start {
			continue
		}
		if def.Start-s.End > subjectLookback {
			continue
		}
		if best < 0 || s.End > spans[best].End {
			best = i
		}
	}
	if best >= 0 {
		return spans[best].Text, spans[best].Label, best
	}

	if guess := def.AttrString("subject_guess"); guess != "" {
		return guess, entity.LabelPerson, -1
	}
	return def.Text, entity.LabelPerson, -1
}

func isSubjectLabel(l entity.Label) bool {
	return l == entity.LabelPerson || l == entity.LabelOrg || l == entity.LabelBankOrg
}

// annotate attaches the cluster ID to a span and, for role aliases under
// the keep-roles policy, the skip_replacement flag.
func (l *Linker) annotate(s entity.Span, clusterID, kind string) entity.Span {
	s = s.WithEntityID(clusterID)
	if kind == "role" && l.keepRoles {
		s = s.WithAttr("skip_replacement", true)
	}
	return s
}

// propagate synthesizes a mention span for each verbatim, word-boundary
// occurrence of a known alias between its most recent definition and the
// next definition for the same cluster (or document end). Occupied ranges
// are never double-claimed.
func (l *Linker) propagate(text string, spans []entity.Span, clusters map[string]*Cluster, order []string) []entity.Span {
	out := spans
	for _, key := range order {
		cl := clusters[key]
		for di := range cl.defs {
			winStart := cl.defs[di].end
			winEnd := len(text)
			if di+1 < len(cl.defs) {
				winEnd = cl.defs[di+1].start
			}
			if winStart >= winEnd {
				continue
			}
			for ai := 0; ai <= di && ai < len(cl.Aliases); ai++ {
				alias := cl.Aliases[ai]
				out = l.scanAlias(text, out, cl, alias, winStart, winEnd)
			}
		}
	}
	return out
}

func (l *Linker) scanAlias(text string, spans []entity.Span, cl *Cluster, alias Alias, winStart, winEnd int) []entity.Span {
	window := text[winStart:winEnd]
	offset := 0
	for {
		rel := strings.Index(window[offset:], alias.Text)
		if rel < 0 {
			break
		}
		start := winStart + offset + rel
		end := start + len(alias.Text)
		offset += rel + len(alias.Text)

		if !wordBounded(text, start, end) || rangeOccupied(spans, start, end) {
			continue
		}
		attrs := map[string]any{
			"alias":      alias.Text,
			"alias_kind": alias.Kind,
			"trigger":    "propagation",
		}
		s, err := entity.New(start, end, text[start:end], entity.LabelAliasLabel, "alias_resolver", 0.96, attrs)
		if err != nil {
			continue
		}
		s = l.annotate(s, cl.ID, alias.Kind)
		spans = append(spans, s)
	}
	return spans
}

func wordBounded(text string, start, end int) bool {
	wordByte := func(b byte) bool {
		return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
	}
	if start > 0 && wordByte(text[start-1]) {
		return false
	}
	if end < len(text) && wordByte(text[end]) {
		return false
	}
	return true
}

func rangeOccupied(spans []entity.Span, start, end int) bool {
	for _, s := range spans {
		if s.Start < end && start < s.End {
			return true
		}
	}
	return false
}
