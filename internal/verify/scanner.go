// Package verify rescans redacted output with the detector suite and
// classifies every hit as either an expected artifact of redaction (a
// planted surrogate, a safe namespace, a policy exemption) or a residual
// leak. A document is clean when nothing is left unexplained.
package verify

import (
	"sort"
	"strings"
	"time"

	"github.com/sdrasco/freedact/internal/detect"
	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/logger"
	"github.com/sdrasco/freedact/internal/plan"
)

// Explanation reasons attached to ignored detector hits. Policy skips
// carry their reason strings over from the plan unchanged.
const (
	reasonPlanted     = "planted_replacement"
	reasonPlantedLine = "planted_line"
	reasonSafeSpace   = "safe_namespace"
)

// Finding is a detector hit over redacted text that no replacement, safe
// namespace, or policy exemption accounts for.
type Finding struct {
	Start      int          `json:"start"`
	End        int          `json:"end"`
	Text       string       `json:"text"`
	Label      entity.Label `json:"label"`
	Source     string       `json:"source"`
	Confidence float64      `json:"confidence"`
	Weight     int          `json:"weight"`
	Line       int          `json:"line"`
}

// Result is the outcome of one verification scan.
type Result struct {
	DocID          string               `json:"doc_id"`
	ScannedAt      time.Time            `json:"scanned_at"`
	MinConfidence  float64              `json:"min_confidence"`
	Clean          bool                 `json:"clean"`
	ResidualCount  int                  `json:"residual_count"`
	Score          int                  `json:"score"`
	CountsByLabel  map[entity.Label]int `json:"counts_by_label"`
	IgnoredByLabel map[entity.Label]int `json:"ignored_by_label,omitempty"`
	Findings       []Finding            `json:"findings,omitempty"`
}

// Scanner re-runs the regex detector suite over redacted text. The NER
// sidecar is never part of the rescan: its output varies across runs and
// every surrogate person name would re-trigger it.
type Scanner struct {
	detectors            []detect.Detector
	minConfidence        float64
	genericDatesRedacted bool
	log                  *logger.Logger

	// Weights maps each label to its contribution to the leakage score.
	// Override entries before the first Scan; a zero entry makes that
	// label's residuals scoreless without explaining them away.
	Weights map[entity.Label]int
}

// NewScanner builds a scanner with DefaultWeights. Hits below
// minConfidence are discarded before explanation. genericDatesRedacted
// mirrors the redaction policy: when generic dates were kept, they are
// exempt on the rescan too.
func NewScanner(minConfidence float64, genericDatesRedacted bool, log *logger.Logger) *Scanner {
	if log == nil {
		log = logger.Nop()
	}
	return &Scanner{
		detectors:            detect.VerifySet(),
		minConfidence:        minConfidence,
		genericDatesRedacted: genericDatesRedacted,
		log:                  log,
		Weights:              DefaultWeights(),
	}
}

// DefaultWeights ranks how damaging a leaked label is. Direct identifiers
// dominate the score; contextual labels contribute least.
func DefaultWeights() map[entity.Label]int {
	w := make(map[entity.Label]int, len(entity.AllLabels))
	for _, l := range entity.AllLabels {
		w[l] = 1
	}
	for _, l := range []entity.Label{
		entity.LabelPerson, entity.LabelAddressBlock, entity.LabelDOB,
		entity.LabelEmail, entity.LabelAccountID,
	} {
		w[l] = 3
	}
	w[entity.LabelPhone] = 2
	return w
}

// Scan runs every verification detector over redacted and explains each
// hit against the plan. Unexplained hits become findings, sorted by
// position. Detector errors degrade to a warning rather than failing the
// scan.
func (s *Scanner) Scan(docID, redacted string, p *plan.Plan) *Result {
	ctx := detect.NewContext(docID, redacted)
	exp := newExplainer(p, s.genericDatesRedacted)

	res := &Result{
		DocID:          docID,
		ScannedAt:      time.Now().UTC(),
		MinConfidence:  s.minConfidence,
		CountsByLabel:  make(map[entity.Label]int),
		IgnoredByLabel: make(map[entity.Label]int),
	}

	ignored := 0
	for _, d := range s.detectors {
		spans, err := d.Detect(redacted, ctx)
		if err != nil {
			s.log.Warnf("scan", "detector %s failed on rescan of %s: %v", d.Name(), docID, err)
			continue
		}
		for _, sp := range spans {
			if !sp.Valid() || sp.Confidence < s.minConfidence {
				continue
			}
			res.CountsByLabel[sp.Label]++
			if reason := exp.explain(sp); reason != "" {
				res.IgnoredByLabel[sp.Label]++
				ignored++
				continue
			}
			res.Findings = append(res.Findings, Finding{
				Start:      sp.Start,
				End:        sp.End,
				Text:       sp.Text,
				Label:      sp.Label,
				Source:     sp.Source,
				Confidence: sp.Confidence,
				Weight:     s.Weights[sp.Label],
				Line:       ctx.Lines.LineOf(sp.Start),
			})
		}
	}

	sort.Slice(res.Findings, func(i, j int) bool {
		a, b := res.Findings[i], res.Findings[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Label < b.Label
	})
	res.ResidualCount = len(res.Findings)
	for _, f := range res.Findings {
		res.Score += f.Weight
	}
	res.Clean = res.ResidualCount == 0
	if len(res.IgnoredByLabel) == 0 {
		res.IgnoredByLabel = nil
	}

	if res.Clean {
		s.log.Infof("scan", "doc %s: clean, %d detector hit(s) explained", docID, ignored)
	} else {
		s.log.Warnf("scan", "doc %s: %d residual finding(s), score %d", docID, res.ResidualCount, res.Score)
	}
	return res
}

type skipKey struct {
	label entity.Label
	text  string
}

// explainer accounts for every legitimate way a detector can fire over
// redacted text. Explanations are attempted in a fixed order and the
// first match wins.
type explainer struct {
	ranges       [][2]int
	expected     map[entity.Label]map[string]int
	plantedLines map[string]bool
	skips        map[skipKey]string
	genericKept  bool
}

func newExplainer(p *plan.Plan, genericDatesRedacted bool) *explainer {
	e := &explainer{
		expected:     make(map[entity.Label]map[string]int),
		plantedLines: make(map[string]bool),
		skips:        make(map[skipKey]string),
		genericKept:  !genericDatesRedacted,
	}
	if p == nil {
		return e
	}
	entries := make([]plan.Entry, len(p.Entries))
	copy(entries, p.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })

	// Project entry ranges into redacted coordinates: each splice shifts
	// everything after it by the length difference.
	delta, prevEnd := 0, 0
	for _, en := range entries {
		if en.Start < prevEnd {
			continue
		}
		rs := en.Start + delta
		e.ranges = append(e.ranges, [2]int{rs, rs + len(en.Replacement)})
		delta += len(en.Replacement) - (en.End - en.Start)
		prevEnd = en.End

		m := e.expected[en.Label]
		if m == nil {
			m = make(map[string]int)
			e.expected[en.Label] = m
		}
		m[en.Replacement]++
		for _, ln := range strings.Split(en.Replacement, "\n") {
			if t := strings.TrimSpace(ln); t != "" {
				e.plantedLines[t] = true
			}
		}
	}
	for _, sk := range p.Skipped {
		e.skips[skipKey{sk.Label, sk.Text}] = sk.Reason
	}
	return e
}

// explain returns the reason a hit is expected, or "" for a residual.
func (e *explainer) explain(sp entity.Span) string {
	// Anything inside a replacement range is surrogate text. This also
	// covers partial re-detections with no textual match, like the
	// person-shaped "Birch Hollow Dr" inside a planted street line.
	if e.insidePlanted(sp.Start, sp.End) {
		return reasonPlanted
	}
	if e.consume(sp.Label, sp.Text) {
		return reasonPlanted
	}
	// A planted date re-detects under both date labels; either bucket
	// satisfies the other.
	if sp.Label == entity.LabelDOB && e.consume(entity.LabelDateGeneric, sp.Text) {
		return reasonPlanted
	}
	if sp.Label == entity.LabelDateGeneric && e.consume(entity.LabelDOB, sp.Text) {
		return reasonPlanted
	}
	if e.plantedLines[strings.TrimSpace(sp.Text)] {
		return reasonPlantedLine
	}
	if reason := e.safeNamespace(sp); reason != "" {
		return reason
	}
	if reason, ok := e.skips[skipKey{sp.Label, sp.Text}]; ok {
		return reason
	}
	if sp.Label == entity.LabelDateGeneric && e.genericKept {
		return plan.SkipGenericDates
	}
	return ""
}

// insidePlanted reports whether [start, end) lies within one replacement
// range. Hits that straddle a range boundary extend into original text
// and stay unexplained.
func (e *explainer) insidePlanted(start, end int) bool {
	i := sort.Search(len(e.ranges), func(i int) bool { return e.ranges[i][1] >= end })
	return i < len(e.ranges) && e.ranges[i][0] <= start && end <= e.ranges[i][1]
}

// consume decrements the replacement multiset for (label, text) when a
// planted occurrence remains unclaimed.
func (e *explainer) consume(label entity.Label, text string) bool {
	m := e.expected[label]
	if m == nil || m[text] == 0 {
		return false
	}
	m[text]--
	if m[text] == 0 {
		delete(m, text)
	}
	return true
}

var safeEmailDomains = map[string]bool{
	"example.org": true,
	"example.com": true,
	"example.net": true,
}

// safeNamespace recognizes values that cannot identify anyone even when
// they were never planted by this plan: reserved example domains and the
// fictional 555-01XX exchange.
func (e *explainer) safeNamespace(sp entity.Span) string {
	switch sp.Label {
	case entity.LabelEmail:
		at := strings.LastIndexByte(sp.Text, '@')
		if at >= 0 && safeEmailDomains[strings.ToLower(sp.Text[at+1:])] {
			return reasonSafeSpace
		}
	case entity.LabelPhone:
		if strings.Contains(digitsOf(sp.Text), "55501") {
			return reasonSafeSpace
		}
	}
	return ""
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
