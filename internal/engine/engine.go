// Package engine wires the pipeline stages into one document operation:
// normalize, detect, merge and link, resolve, plan, apply, verify. Each
// stage is timed into the shared metrics; detector failures degrade to a
// warning rather than aborting the document.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sdrasco/freedact/internal/config"
	"github.com/sdrasco/freedact/internal/detect"
	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/link"
	"github.com/sdrasco/freedact/internal/logger"
	"github.com/sdrasco/freedact/internal/metrics"
	"github.com/sdrasco/freedact/internal/plan"
	"github.com/sdrasco/freedact/internal/pseudo"
	"github.com/sdrasco/freedact/internal/seed"
	"github.com/sdrasco/freedact/internal/store"
	"github.com/sdrasco/freedact/internal/textutil"
	"github.com/sdrasco/freedact/internal/verify"
)

// Tool identifies this engine in audit summaries.
const Tool = "freedact"

// nerProbeTimeout bounds the startup health check of the NER sidecar.
const nerProbeTimeout = 3 * time.Second

// Engine runs the redaction pipeline. It is safe for concurrent use:
// per-document state (generator, builder, scanner) is constructed inside
// Redact, and the shared pieces (deriver, ledger, metrics) are
// concurrency-safe themselves.
type Engine struct {
	cfg       *config.Config
	deriver   *seed.Deriver
	ledger    store.Ledger
	metrics   *metrics.Metrics
	log       *logger.Logger
	detectors []detect.Detector
}

// Result is the outcome of one document run.
type Result struct {
	DocID string
	// Original is the normalized input; all plan offsets refer to it.
	Original     string
	Redacted     string
	Plan         *plan.Plan
	Verification *verify.Result
	Audit        verify.Audit
}

// Clean reports whether the verification rescan found no unexplained
// residuals.
func (r *Result) Clean() bool {
	return r.Verification != nil && r.Verification.Clean
}

// New builds an Engine. The seed secret is read from the environment
// once, here; changing the variable later requires a new Engine. A nil
// ledger disables pseudonym persistence, a nil metrics gets a private
// instance, a nil log is silenced.
func New(cfg *config.Config, ledger store.Ledger, m *metrics.Metrics, log *logger.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = logger.Nop()
	}

	secret := cfg.Secret()
	deriver := seed.New(secret, cfg.Pseudonyms.CrossDocConsistency)
	if !deriver.SecretPresent() {
		log.Warn("init", "no seed secret configured; derivation runs unkeyed")
	}

	detectors := detect.DefaultSet()
	if cfg.Detectors.NER {
		nc := detect.NewNER(cfg.Detectors.NEREndpoint, log.Named("ner"))
		ctx, cancel := context.WithTimeout(context.Background(), nerProbeTimeout)
		avail := nc.Probe(ctx)
		cancel()
		if avail.Available {
			detectors = append(detectors, nc)
		} else {
			log.Warnf("init", "NER sidecar unavailable (%s); heuristic detectors stand alone", avail.Reason)
		}
	}

	return &Engine{
		cfg:       cfg,
		deriver:   deriver,
		ledger:    ledger,
		metrics:   m,
		log:       log,
		detectors: detectors,
	}
}

// Redact runs the full pipeline over one document. An empty docID is
// assigned a fresh UUID. The only hard failure is a plan that no longer
// matches its text at apply time; everything else degrades and is
// reported through the verification result and the audit summary.
func (e *Engine) Redact(docID, text string) (*Result, error) {
	if docID == "" {
		docID = uuid.NewString()
	}
	e.metrics.DocumentsTotal.Add(1)

	norm := textutil.Normalize(text)
	scope := e.deriver.Scope(norm)

	gen := pseudo.NewGenerator(e.deriver, scope)
	gen.SetLedger(e.ledger)
	gen.OnLedger = e.metrics.RecordLedger

	dctx := detect.NewContext(docID, norm)

	start := time.Now()
	var spans []entity.Span
	for _, d := range e.detectors {
		found, err := d.Detect(norm, dctx)
		if err != nil {
			e.log.Warnf("detect", "doc %s: detector %s failed: %v", docID, d.Name(), err)
			continue
		}
		spans = append(spans, found...)
	}
	e.metrics.RecordStage(metrics.StageDetect, time.Since(start))
	for _, s := range spans {
		e.metrics.RecordSpan(s.Label)
	}

	start = time.Now()
	spans = link.MergeAddresses(norm, spans, dctx.Lines)
	keepRoles := e.cfg.Redact.RoleAliases == config.RolesKeep
	linker := link.NewLinker(e.deriver, scope, keepRoles, e.cfg.Detectors.Coref, e.log.Named("link"))
	linker.IDLength = e.cfg.Pseudonyms.IDLength
	spans, clusters := linker.Link(norm, spans, dctx.Lines)
	spans = link.Resolve(spans, e.cfg.PrecedenceLabels())
	e.metrics.RecordStage(metrics.StageLink, time.Since(start))

	start = time.Now()
	builder := plan.NewBuilder(gen, clusters, plan.Options{
		RedactPersonNames:  e.cfg.Redact.PersonNames,
		RedactGenericDates: e.cfg.Redact.GenericDates,
		KeepRoleAliases:    keepRoles,
	}, e.log.Named("plan"))
	p := builder.Build(docID, norm, spans)
	e.metrics.RecordStage(metrics.StagePlan, time.Since(start))
	e.metrics.SpansSkipped.Add(int64(len(p.Skipped)))

	start = time.Now()
	redacted, err := plan.Apply(norm, p, e.log.Named("apply"))
	if err != nil {
		e.metrics.DocumentsFailed.Add(1)
		return nil, fmt.Errorf("engine: apply doc %s: %w", docID, err)
	}
	e.metrics.RecordStage(metrics.StageApply, time.Since(start))
	applied := 0
	for _, en := range p.Entries {
		if en.AppliedIndex > 0 {
			applied++
		}
	}
	e.metrics.SpansReplaced.Add(int64(applied))

	start = time.Now()
	scanner := verify.NewScanner(e.cfg.Verification.MinConfidence, e.cfg.Redact.GenericDates, e.log.Named("verify"))
	res := scanner.Scan(docID, redacted, p)
	e.metrics.RecordStage(metrics.StageVerify, time.Since(start))
	e.metrics.ResidualFindings.Add(int64(res.ResidualCount))
	if res.Clean {
		e.metrics.DocumentsClean.Add(1)
	} else {
		e.metrics.DocumentsResidual.Add(1)
	}

	audit := verify.NewAudit(p, res, e.deriver.SecretPresent(), e.deriver.CrossDoc(), Tool)

	return &Result{
		DocID:        docID,
		Original:     norm,
		Redacted:     redacted,
		Plan:         p,
		Verification: res,
		Audit:        audit,
	}, nil
}
