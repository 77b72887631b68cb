// Package metrics provides lightweight, lock-minimal counters for the
// redaction engine.
//
// Counters use sync/atomic so hot paths (detection, splicing) incur no
// mutex contention. Latency statistics use a single mutex per pipeline
// stage; they are updated at most once per document.
package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sdrasco/freedact/internal/entity"
)

// Pipeline stages with tracked latency.
const (
	StageDetect = "detect"
	StageLink   = "link"
	StagePlan   = "plan"
	StageApply  = "apply"
	StageVerify = "verify"
)

var knownStages = []string{StageDetect, StageLink, StagePlan, StageApply, StageVerify}

// ledgerKinds lists every derivation kind the generator consults the
// pseudonym ledger for. Used to pre-populate per-kind counter maps in
// New() so Snapshot() can iterate a fixed set without racing on map
// writes.
var ledgerKinds = []string{
	"person", "org", "bank_org", "place", "email", "phone",
	"address", "date",
	"account_cc", "account_routing", "account_iban", "account_swift",
	"account_ssn", "account_ein", "account_generic",
}

// Metrics holds all runtime counters for a running engine instance.
// The zero value is not valid for the map-backed counters; use New().
type Metrics struct {
	// Document counters. Total is incremented once per processed
	// document; exactly one of Clean, Residual, or Failed follows.
	DocumentsTotal    atomic.Int64
	DocumentsClean    atomic.Int64
	DocumentsResidual atomic.Int64
	DocumentsFailed   atomic.Int64

	// Span volume across all documents.
	SpansReplaced    atomic.Int64
	SpansSkipped     atomic.Int64
	ResidualFindings atomic.Int64

	// Per-label detection counts and per-kind ledger effectiveness.
	// Maps are written only in New(); concurrent reads are safe without
	// a lock.
	spansByLabel map[entity.Label]*atomic.Int64
	ledgerHits   map[string]*atomic.Int64
	ledgerMisses map[string]*atomic.Int64

	stages map[string]*stageClock

	startTime time.Time
}

type stageClock struct {
	mu   sync.Mutex
	stat latencyStats
}

// New returns a Metrics with the start time recorded and the per-label,
// per-kind, and per-stage maps pre-populated.
func New() *Metrics {
	m := &Metrics{
		startTime:    time.Now(),
		spansByLabel: make(map[entity.Label]*atomic.Int64, len(entity.AllLabels)),
		ledgerHits:   make(map[string]*atomic.Int64, len(ledgerKinds)),
		ledgerMisses: make(map[string]*atomic.Int64, len(ledgerKinds)),
		stages:       make(map[string]*stageClock, len(knownStages)),
	}
	for _, l := range entity.AllLabels {
		m.spansByLabel[l] = new(atomic.Int64)
	}
	for _, k := range ledgerKinds {
		m.ledgerHits[k] = new(atomic.Int64)
		m.ledgerMisses[k] = new(atomic.Int64)
	}
	for _, s := range knownStages {
		m.stages[s] = new(stageClock)
	}
	return m
}

// RecordSpan increments the detection counter for the given label.
// Unknown labels are silently ignored.
func (m *Metrics) RecordSpan(label entity.Label) {
	if c, ok := m.spansByLabel[label]; ok {
		c.Add(1)
	}
}

// RecordLedger increments the hit or miss counter for the given
// derivation kind. The signature matches the generator's OnLedger hook
// so it can be attached directly. Unknown kinds are silently ignored.
func (m *Metrics) RecordLedger(kind string, hit bool) {
	counters := m.ledgerMisses
	if hit {
		counters = m.ledgerHits
	}
	if c, ok := counters[kind]; ok {
		c.Add(1)
	}
}

// RecordStage records the duration of one pipeline stage for one
// document. Unknown stages are silently ignored.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	c, ok := m.stages[stage]
	if !ok {
		return
	}
	c.mu.Lock()
	c.stat.record(float64(d.Microseconds()) / 1000.0)
	c.mu.Unlock()
}

func (m *Metrics) stageSnap(stage string) LatencySnapshot {
	c := m.stages[stage]
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stat.snapshot()
}

// Snapshot returns a point-in-time copy of all metrics, safe for JSON
// encoding.
func (m *Metrics) Snapshot() Snapshot {
	detected := make(map[string]int64, len(m.spansByLabel))
	for l, c := range m.spansByLabel {
		if n := c.Load(); n > 0 {
			detected[string(l)] = n
		}
	}
	hits := make(map[string]int64, len(m.ledgerHits))
	for k, c := range m.ledgerHits {
		if n := c.Load(); n > 0 {
			hits[k] = n
		}
	}
	misses := make(map[string]int64, len(m.ledgerMisses))
	for k, c := range m.ledgerMisses {
		if n := c.Load(); n > 0 {
			misses[k] = n
		}
	}

	return Snapshot{
		Documents: DocumentSnapshot{
			Total:    m.DocumentsTotal.Load(),
			Clean:    m.DocumentsClean.Load(),
			Residual: m.DocumentsResidual.Load(),
			Failed:   m.DocumentsFailed.Load(),
		},
		Spans: SpanSnapshot{
			Detected: detected,
			Replaced: m.SpansReplaced.Load(),
			Skipped:  m.SpansSkipped.Load(),
			Residual: m.ResidualFindings.Load(),
		},
		Ledger: LedgerSnapshot{
			Hits:   hits,
			Misses: misses,
		},
		Latency: StageLatency{
			DetectMs: m.stageSnap(StageDetect),
			LinkMs:   m.stageSnap(StageLink),
			PlanMs:   m.stageSnap(StagePlan),
			ApplyMs:  m.stageSnap(StageApply),
			VerifyMs: m.stageSnap(StageVerify),
		},
		UptimeSecs: time.Since(m.startTime).Seconds(),
	}
}

// --- JSON-serialisable snapshot types ---

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Documents  DocumentSnapshot `json:"documents"`
	Spans      SpanSnapshot     `json:"spans"`
	Ledger     LedgerSnapshot   `json:"ledger"`
	Latency    StageLatency     `json:"latency"`
	UptimeSecs float64          `json:"uptimeSecs"`
}

// DocumentSnapshot holds document-level outcome counters.
type DocumentSnapshot struct {
	Total    int64 `json:"total"`
	Clean    int64 `json:"clean"`
	Residual int64 `json:"residual"`
	Failed   int64 `json:"failed"`
}

// SpanSnapshot holds span volume counters. Only labels with non-zero
// counts appear in Detected.
type SpanSnapshot struct {
	Detected map[string]int64 `json:"detected,omitempty"`
	Replaced int64            `json:"replaced"`
	Skipped  int64            `json:"skipped"`
	Residual int64            `json:"residual"`
}

// LedgerSnapshot holds pseudonym ledger effectiveness per derivation
// kind (only kinds with non-zero counts appear).
type LedgerSnapshot struct {
	Hits   map[string]int64 `json:"hits,omitempty"`
	Misses map[string]int64 `json:"misses,omitempty"`
}

// StageLatency groups the per-stage latency summaries.
type StageLatency struct {
	DetectMs LatencySnapshot `json:"detectMs"`
	LinkMs   LatencySnapshot `json:"linkMs"`
	PlanMs   LatencySnapshot `json:"planMs"`
	ApplyMs  LatencySnapshot `json:"applyMs"`
	VerifyMs LatencySnapshot `json:"verifyMs"`
}

// LatencySnapshot is a min/mean/max summary for one stage.
type LatencySnapshot struct {
	Count  int64   `json:"count"`
	MinMs  float64 `json:"minMs"`
	MeanMs float64 `json:"meanMs"`
	MaxMs  float64 `json:"maxMs"`
}

// --- internal accumulator ---

type latencyStats struct {
	count int64
	sum   float64
	min   float64
	max   float64
}

func (s *latencyStats) record(ms float64) {
	s.count++
	s.sum += ms
	if s.count == 1 || ms < s.min {
		s.min = ms
	}
	if ms > s.max {
		s.max = ms
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (s *latencyStats) snapshot() LatencySnapshot {
	if s.count == 0 {
		return LatencySnapshot{}
	}
	return LatencySnapshot{
		Count:  s.count,
		MinMs:  round2(s.min),
		MeanMs: round2(s.sum / float64(s.count)),
		MaxMs:  round2(s.max),
	}
}
