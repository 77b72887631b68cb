package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/link"
	"github.com/sdrasco/freedact/internal/logger"
	"github.com/sdrasco/freedact/internal/pseudo"
	"github.com/sdrasco/freedact/internal/seed"
	"github.com/sdrasco/freedact/internal/shape"
)

// Options select which detected spans the builder turns into
// replacements and which it records as skips.
type Options struct {
	RedactPersonNames  bool
	RedactGenericDates bool
	KeepRoleAliases    bool
}

// Builder assembles the replacement plan for one document. It is
// stateful (role-alias letters are handed out in order of first
// appearance); construct a fresh Builder per document.
type Builder struct {
	gen      *pseudo.Generator
	clusters map[string]*link.Cluster
	opts     Options
	log      *logger.Logger

	partyByKey map[string]string
	partySeq   int
}

// NewBuilder returns a Builder using gen for surrogate synthesis and the
// linker's clusters for alias-aware replacements. A nil log is silenced.
func NewBuilder(gen *pseudo.Generator, clusters []*link.Cluster, opts Options, log *logger.Logger) *Builder {
	m := make(map[string]*link.Cluster, len(clusters))
	for _, c := range clusters {
		m[c.ID] = c
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{gen: gen, clusters: m, opts: opts, log: log, partyByKey: make(map[string]string)}
}

// Build plans one replacement per span, in document order. Spans flagged
// skip_replacement by the linker and spans excluded by policy become
// Skip records instead.
func (b *Builder) Build(docID, text string, spans []entity.Span) *Plan {
	p := &Plan{DocID: docID, DocHash: seed.DocHashB32(text), CreatedAt: time.Now().UTC()}

	sorted := make([]entity.Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for _, s := range sorted {
		if s.AttrBool("skip_replacement") {
			b.skip(p, s, SkipKeepRoles)
			continue
		}
		switch s.Label {
		case entity.LabelPerson:
			if !b.opts.RedactPersonNames {
				b.skip(p, s, SkipPersonsKept)
				continue
			}
		case entity.LabelDateGeneric:
			if !b.opts.RedactGenericDates {
				b.skip(p, s, SkipGenericDates)
				continue
			}
		case entity.LabelAliasLabel:
			if s.AttrString("alias_kind") == "role" && b.opts.KeepRoleAliases {
				b.skip(p, s, SkipKeepRoles)
				continue
			}
		}

		key, kind := keyOf(s)
		p.Entries = append(p.Entries, Entry{
			Start:       s.Start,
			End:         s.End,
			Original:    s.Text,
			Replacement: b.replacementFor(s, key),
			Label:       s.Label,
			EntityID:    s.EntityID,
			Meta: Meta{
				Source:     s.Source,
				Confidence: s.Confidence,
				Subtype:    s.AttrString("subtype"),
				KeyKind:    kind,
			},
		})
	}

	b.log.Infof("build", "doc %s: %d replacements planned, %d spans kept in place",
		docID, len(p.Entries), len(p.Skipped))
	return p
}

func (b *Builder) skip(p *Plan, s entity.Span, reason string) {
	p.Skipped = append(p.Skipped, Skip{Start: s.Start, End: s.End, Text: s.Text, Label: s.Label, Reason: reason})
}

// keyOf picks the derivation key: the cluster identity when the span is
// linked, the literal text otherwise. Literal keys are canonicalized
// inside the generator, so case variants of one value share a surrogate.
func keyOf(s entity.Span) (string, string) {
	if s.EntityID != "" {
		return s.EntityID, KeyEntity
	}
	return s.Text, KeyText
}

func (b *Builder) replacementFor(s entity.Span, key string) string {
	switch s.Label {
	case entity.LabelPerson:
		return b.personFor(s, key)
	case entity.LabelOrg:
		return b.gen.OrgLike(s.Text, key)
	case entity.LabelBankOrg:
		return b.gen.BankOrgLike(s.Text, key)
	case entity.LabelEmail:
		return b.gen.EmailLike(s.Text, key)
	case entity.LabelPhone:
		return b.gen.PhoneLike(s.Text, key)
	case entity.LabelAccountID:
		return b.gen.ForAccount(s.AttrString("subtype"), s.Text, key)
	case entity.LabelAddressBlock:
		return b.addressFor(s, key)
	case entity.LabelDOB, entity.LabelDateGeneric:
		return b.gen.DateLike(s.Text, key)
	case entity.LabelGPE, entity.LabelLOC:
		return b.gen.PlaceLike(s.Text, key)
	case entity.LabelAliasLabel:
		return b.aliasFor(s, key)
	default:
		return b.gen.Placeholder(string(s.Label), key)
	}
}

// personFor replaces a person mention. A bare mention that repeats the
// last token of its cluster's subject is the surname the coreference
// pass linked on, so it takes the surname of the cluster's surrogate;
// every other shape follows the mention itself.
func (b *Builder) personFor(s entity.Span, key string) string {
	if cl := b.clusters[s.EntityID]; cl != nil && surnameMention(s.Text, cl.Subject) {
		return shape.MatchCase(s.Text, b.gen.Surname(cl.Subject, cl.ID))
	}
	return b.gen.PersonLike(s.Text, key)
}

func surnameMention(mention, subject string) bool {
	mt := strings.Fields(mention)
	st := strings.Fields(subject)
	if len(mt) != 1 || len(st) < 2 {
		return false
	}
	return strings.EqualFold(mt[0], st[len(st)-1])
}

// addressFor handles both merged multi-line blocks (rebuilt line by line
// from the merge attributes) and single unmerged address lines.
func (b *Builder) addressFor(s entity.Span, key string) string {
	if lines, ok := s.Attrs["lines"].([]entity.AddressLine); ok && len(lines) > 0 {
		return b.gen.BlockLike(lines, key)
	}
	switch s.AttrString("kind") {
	case entity.AddrKindStreet:
		return b.gen.StreetLike(s.Text, key)
	case entity.AddrKindUnit:
		return b.gen.UnitLike(s.Text, key)
	case entity.AddrKindCityStateZip:
		return b.gen.CityStateZipLike(s.Text, s.AttrString("zip"), key)
	case entity.AddrKindPOBox:
		return b.gen.POBoxLike(s.Text, key)
	default:
		return b.gen.DigitsLike(s.Text, key)
	}
}

// aliasFor replaces alias mentions. Role aliases become neutral party
// letters. Nicknames of person clusters take the surname of the
// cluster's own surrogate, so "Johnny" and "John Smith" read as the same
// person after redaction; nicknames of organizations get an org-shaped
// surrogate under the cluster key.
func (b *Builder) aliasFor(s entity.Span, key string) string {
	if s.AttrString("alias_kind") == "role" {
		return b.partyLetter(key)
	}
	cl := b.clusters[s.EntityID]
	if cl == nil {
		return b.gen.PersonLike(s.Text, key)
	}
	switch cl.Label {
	case entity.LabelOrg, entity.LabelBankOrg:
		return b.gen.OrgLike(s.Text, cl.ID)
	default:
		return shape.MatchCase(s.Text, b.gen.Surname(cl.Subject, cl.ID))
	}
}

func (b *Builder) partyLetter(key string) string {
	if v, ok := b.partyByKey[key]; ok {
		return v
	}
	v := fmt.Sprintf("Party %s", letterSeq(b.partySeq))
	b.partySeq++
	b.partyByKey[key] = v
	return v
}

// letterSeq counts A, B, …, Z, AA, AB, … like spreadsheet columns.
func letterSeq(n int) string {
	s := ""
	for {
		s = string(rune('A'+n%26)) + s
		n = n/26 - 1
		if n < 0 {
			return s
		}
	}
}
