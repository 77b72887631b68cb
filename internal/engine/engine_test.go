package engine

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sdrasco/freedact/internal/config"
	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/metrics"
	"github.com/sdrasco/freedact/internal/plan"
	"github.com/sdrasco/freedact/internal/store"
)

const sampleDoc = `Gregory Halvorsen
9 Old Mill Rd
Greenfield, MA 01301
Contact: g.halvorsen@corpmail.test or (415) 832-2201.
Born on 04/02/1971.
`

const contractDoc = `Marcus Breen (hereinafter "Buyer") agrees to the terms below.
The Buyer shall remit payment to Dana Whitfield by wire.
`

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	t.Setenv(config.DefaultSecretEnv, "unit-test-secret")
	return New(cfg, nil, nil, nil)
}

func entryReplacement(t *testing.T, p *plan.Plan, label entity.Label) string {
	t.Helper()
	for _, e := range p.Entries {
		if e.Label == label {
			return e.Replacement
		}
	}
	t.Fatalf("no %s entry in plan", label)
	return ""
}

func TestRedactCleanOnFullDocument(t *testing.T) {
	e := newTestEngine(t, nil)

	r, err := e.Redact("doc-1", sampleDoc)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if !r.Clean() {
		t.Fatalf("verification not clean: %+v", r.Verification.Findings)
	}
	if len(r.Plan.Entries) != 5 {
		t.Errorf("planned %d replacements, want 5", len(r.Plan.Entries))
	}
	for _, left := range []string{"Halvorsen", "Old Mill", "corpmail", "832-2201", "04/02/1971"} {
		if strings.Contains(r.Redacted, left) {
			t.Errorf("%q survived redaction", left)
		}
	}
}

func TestRedactDeterministic(t *testing.T) {
	a := newTestEngine(t, nil)
	b := newTestEngine(t, nil)

	ra, err := a.Redact("doc-1", sampleDoc)
	if err != nil {
		t.Fatalf("first Redact: %v", err)
	}
	rb, err := b.Redact("doc-1", sampleDoc)
	if err != nil {
		t.Fatalf("second Redact: %v", err)
	}

	if ra.Redacted != rb.Redacted {
		t.Error("same document and secret should redact identically across engines")
	}
	if len(ra.Plan.Entries) != len(rb.Plan.Entries) {
		t.Errorf("plan sizes differ: %d vs %d", len(ra.Plan.Entries), len(rb.Plan.Entries))
	}
}

func TestRedactScopesSeparateDocuments(t *testing.T) {
	e := newTestEngine(t, nil)

	ra, err := e.Redact("doc-a", sampleDoc)
	if err != nil {
		t.Fatalf("Redact doc-a: %v", err)
	}
	rb, err := e.Redact("doc-b", sampleDoc+"The weather in the valley was mild.\n")
	if err != nil {
		t.Fatalf("Redact doc-b: %v", err)
	}

	pa := entryReplacement(t, ra.Plan, entity.LabelPerson)
	pb := entryReplacement(t, rb.Plan, entity.LabelPerson)
	ea := entryReplacement(t, ra.Plan, entity.LabelEmail)
	eb := entryReplacement(t, rb.Plan, entity.LabelEmail)
	if pa == pb && ea == eb {
		t.Error("distinct documents should not share surrogates without cross-doc consistency")
	}
}

func TestRedactCrossDocConsistency(t *testing.T) {
	cfg := config.Default()
	cfg.Pseudonyms.CrossDocConsistency = true
	e := newTestEngine(t, cfg)

	ra, err := e.Redact("doc-a", sampleDoc)
	if err != nil {
		t.Fatalf("Redact doc-a: %v", err)
	}
	rb, err := e.Redact("doc-b", "Gregory Halvorsen attended the hearing.\n")
	if err != nil {
		t.Fatalf("Redact doc-b: %v", err)
	}

	pa := entryReplacement(t, ra.Plan, entity.LabelPerson)
	pb := entryReplacement(t, rb.Plan, entity.LabelPerson)
	if pa != pb {
		t.Errorf("cross-doc surrogates differ: %q vs %q", pa, pb)
	}
	if !ra.Audit.CrossDoc || !rb.Audit.CrossDoc {
		t.Error("audit should record cross-doc mode")
	}
}

func TestRedactPersonNamesKept(t *testing.T) {
	cfg := config.Default()
	cfg.Redact.PersonNames = false
	e := newTestEngine(t, cfg)

	r, err := e.Redact("doc-1", sampleDoc)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if !strings.Contains(r.Redacted, "Gregory Halvorsen") {
		t.Error("person name should be kept under the policy")
	}
	found := false
	for _, s := range r.Plan.Skipped {
		if s.Label == entity.LabelPerson && s.Reason == plan.SkipPersonsKept {
			found = true
		}
	}
	if !found {
		t.Error("plan should record the skipped person with its reason")
	}
	if !r.Clean() {
		t.Errorf("policy-kept names should not count as residuals: %+v", r.Verification.Findings)
	}
}

func TestRedactRoleAliasesKept(t *testing.T) {
	e := newTestEngine(t, nil)

	r, err := e.Redact("doc-1", contractDoc)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if !strings.Contains(r.Redacted, `"Buyer"`) {
		t.Error("defined role alias should survive redaction")
	}
	if !strings.Contains(r.Redacted, "The Buyer shall") {
		t.Error("propagated role mention should survive redaction")
	}
	if strings.Contains(r.Redacted, "Marcus Breen") {
		t.Error("subject name should be replaced")
	}
	if strings.Contains(r.Redacted, "Dana Whitfield") {
		t.Error("second person should be replaced")
	}

	roleSkips := 0
	for _, s := range r.Plan.Skipped {
		if s.Reason == plan.SkipKeepRoles {
			roleSkips++
		}
	}
	if roleSkips < 2 {
		t.Errorf("want at least 2 keep-role skips (definition and propagation), got %d", roleSkips)
	}
	if !r.Clean() {
		t.Errorf("verification not clean: %+v", r.Verification.Findings)
	}
}

func TestRedactGenericDatePolicy(t *testing.T) {
	doc := "The closing occurred on March 5, 2019.\n"

	t.Run("dates kept by default", func(t *testing.T) {
		e := newTestEngine(t, nil)
		r, err := e.Redact("doc-1", doc)
		if err != nil {
			t.Fatalf("Redact: %v", err)
		}
		if !strings.Contains(r.Redacted, "March 5, 2019") {
			t.Error("generic date should be kept by default")
		}
		found := false
		for _, s := range r.Plan.Skipped {
			if s.Reason == plan.SkipGenericDates {
				found = true
			}
		}
		if !found {
			t.Error("plan should record the preserved date")
		}
		if !r.Clean() {
			t.Errorf("preserved dates should not count as residuals: %+v", r.Verification.Findings)
		}
	})

	t.Run("dates redacted when enabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.Redact.GenericDates = true
		e := newTestEngine(t, cfg)
		r, err := e.Redact("doc-1", doc)
		if err != nil {
			t.Fatalf("Redact: %v", err)
		}
		if strings.Contains(r.Redacted, "March 5, 2019") {
			t.Error("generic date should be replaced under the policy")
		}
		if !r.Clean() {
			t.Errorf("verification not clean: %+v", r.Verification.Findings)
		}
	})
}

func TestRedactDefaultDocID(t *testing.T) {
	e := newTestEngine(t, nil)

	r, err := e.Redact("", "Reach me at test.user@corpmail.test today.\n")
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if len(r.DocID) != 36 || strings.Count(r.DocID, "-") != 4 {
		t.Errorf("empty doc ID should be assigned a UUID, got %q", r.DocID)
	}
}

func TestRedactRecordsMetrics(t *testing.T) {
	t.Setenv(config.DefaultSecretEnv, "unit-test-secret")
	m := metrics.New()
	e := New(nil, nil, m, nil)

	if _, err := e.Redact("doc-1", sampleDoc); err != nil {
		t.Fatalf("Redact: %v", err)
	}

	snap := m.Snapshot()
	if snap.Documents.Total != 1 {
		t.Errorf("Documents.Total: got %d, want 1", snap.Documents.Total)
	}
	if snap.Documents.Clean != 1 {
		t.Errorf("Documents.Clean: got %d, want 1", snap.Documents.Clean)
	}
	if snap.Spans.Replaced != 5 {
		t.Errorf("Spans.Replaced: got %d, want 5", snap.Spans.Replaced)
	}
	if snap.Spans.Detected["EMAIL"] < 1 {
		t.Error("EMAIL detections should be counted")
	}
	if snap.Latency.DetectMs.Count != 1 || snap.Latency.VerifyMs.Count != 1 {
		t.Error("each stage should record one latency sample per document")
	}
}

func TestRedactLedgerHitsOnRepeat(t *testing.T) {
	t.Setenv(config.DefaultSecretEnv, "unit-test-secret")
	m := metrics.New()
	e := New(nil, store.NewMemory(), m, nil)

	if _, err := e.Redact("doc-1", sampleDoc); err != nil {
		t.Fatalf("first Redact: %v", err)
	}
	if _, err := e.Redact("doc-1", sampleDoc); err != nil {
		t.Fatalf("second Redact: %v", err)
	}

	snap := m.Snapshot()
	if snap.Ledger.Misses["person"] < 1 {
		t.Error("first pass should record a person ledger miss")
	}
	if snap.Ledger.Hits["person"] < 1 {
		t.Error("second pass should record a person ledger hit")
	}
}

func TestRedactAuditSummary(t *testing.T) {
	e := newTestEngine(t, nil)

	r, err := e.Redact("doc-7", sampleDoc)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}

	a := r.Audit
	if a.DocID != "doc-7" {
		t.Errorf("DocID: got %q", a.DocID)
	}
	if a.DocHashB32 != r.Plan.DocHash {
		t.Error("audit document hash should match the plan")
	}
	if !a.SecretPresent {
		t.Error("audit should record the configured secret")
	}
	if a.CrossDoc {
		t.Error("cross-doc should be off by default")
	}
	if a.Tool != Tool {
		t.Errorf("Tool: got %q, want %q", a.Tool, Tool)
	}
	if a.Replacements != 5 {
		t.Errorf("Replacements: got %d, want 5", a.Replacements)
	}
	if !a.Clean {
		t.Error("audit should record the clean verification")
	}
}

func TestRedactNERSidecar(t *testing.T) {
	t.Run("sidecar spans join the pipeline", func(t *testing.T) {
		entityCalls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz":
				w.WriteHeader(http.StatusOK)
			case "/v1/entities":
				entityCalls++
				fmt.Fprint(w, `[{"start":0,"end":17,"label":"PER","score":0.99}]`)
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		cfg := config.Default()
		cfg.Detectors.NER = true
		cfg.Detectors.NEREndpoint = srv.URL
		e := newTestEngine(t, cfg)

		r, err := e.Redact("doc-1", sampleDoc)
		if err != nil {
			t.Fatalf("Redact: %v", err)
		}
		if entityCalls != 1 {
			t.Errorf("sidecar received %d entity requests, want 1", entityCalls)
		}
		if !r.Clean() {
			t.Errorf("verification not clean: %+v", r.Verification.Findings)
		}
		if len(r.Plan.Entries) != 5 {
			t.Errorf("planned %d replacements, want 5", len(r.Plan.Entries))
		}
	})

	t.Run("unreachable sidecar degrades to heuristics", func(t *testing.T) {
		cfg := config.Default()
		cfg.Detectors.NER = true
		cfg.Detectors.NEREndpoint = ""
		e := newTestEngine(t, cfg)

		r, err := e.Redact("doc-1", sampleDoc)
		if err != nil {
			t.Fatalf("Redact: %v", err)
		}
		if !r.Clean() {
			t.Errorf("heuristics alone should still redact cleanly: %+v", r.Verification.Findings)
		}
	})
}

func TestRedactCorefToggle(t *testing.T) {
	doc := "Gregory Halvorsen signed the agreement. Mr. Halvorsen later amended it.\n"

	personEntries := func(t *testing.T, p *plan.Plan) []plan.Entry {
		t.Helper()
		var out []plan.Entry
		for _, e := range p.Entries {
			if e.Label == entity.LabelPerson {
				out = append(out, e)
			}
		}
		if len(out) != 2 {
			t.Fatalf("got %d person entries, want 2", len(out))
		}
		return out
	}

	t.Run("bare surname joins the cluster", func(t *testing.T) {
		e := newTestEngine(t, nil)
		r, err := e.Redact("doc-1", doc)
		if err != nil {
			t.Fatalf("Redact: %v", err)
		}
		pe := personEntries(t, r.Plan)
		if pe[0].EntityID == "" || pe[0].EntityID != pe[1].EntityID {
			t.Errorf("mentions should share a cluster: %q vs %q", pe[0].EntityID, pe[1].EntityID)
		}
		full := strings.Fields(pe[0].Replacement)
		if pe[1].Replacement != full[len(full)-1] {
			t.Errorf("bare mention %q should carry the surname of %q", pe[1].Replacement, pe[0].Replacement)
		}
	})

	t.Run("disabled coref leaves mentions unlinked", func(t *testing.T) {
		cfg := config.Default()
		cfg.Detectors.Coref = false
		e := newTestEngine(t, cfg)
		r, err := e.Redact("doc-1", doc)
		if err != nil {
			t.Fatalf("Redact: %v", err)
		}
		pe := personEntries(t, r.Plan)
		if pe[0].EntityID != "" || pe[1].EntityID != "" {
			t.Errorf("mentions should stay unlinked with coreference off, got %q and %q",
				pe[0].EntityID, pe[1].EntityID)
		}
	})
}

func TestRedactUnkeyedDegrades(t *testing.T) {
	t.Setenv(config.DefaultSecretEnv, "")
	e := New(nil, nil, nil, nil)

	r, err := e.Redact("doc-1", sampleDoc)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if r.Audit.SecretPresent {
		t.Error("audit must not claim a secret when none is configured")
	}
	if !r.Clean() {
		t.Errorf("unkeyed mode should still redact cleanly: %+v", r.Verification.Findings)
	}
}
