package verify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/plan"
)

func testBundle(t *testing.T) Bundle {
	t.Helper()
	original := "Call Lena Forsythe at (415) 832-2201."
	p := testPlan([]plan.Entry{
		plantAt(t, original, "Lena Forsythe", entity.LabelPerson, "Mara Vance"),
		plantAt(t, original, "(415) 832-2201", entity.LabelPhone, "(312) 555-0147"),
	}, nil)
	p.DocID = "doc-9"
	redacted := redact(t, original, p)
	res := &Result{
		DocID:         "doc-9",
		ScannedAt:     time.Unix(1700000100, 0).UTC(),
		MinConfidence: 0.6,
		Clean:         true,
	}
	return Bundle{
		Original:     original,
		Redacted:     redacted,
		Plan:         p,
		Verification: res,
		Audit:        NewAudit(p, res, true, false, "freedact test"),
	}
}

func TestWriteBundleArtifacts(t *testing.T) {
	b := testBundle(t)
	dir := filepath.Join(t.TempDir(), "bundle")

	if err := WriteBundle(dir, b); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	for _, name := range []string{PlanFile, VerifyFile, AuditFile, DiffFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, PlanFile))
	if err != nil {
		t.Fatalf("read plan: %v", err)
	}
	var p plan.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal plan: %v", err)
	}
	if p.DocID != "doc-9" || len(p.Entries) != 2 {
		t.Errorf("round-tripped plan = %s with %d entries, want doc-9 with 2", p.DocID, len(p.Entries))
	}

	data, err = os.ReadFile(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatalf("read audit: %v", err)
	}
	var a Audit
	if err := json.Unmarshal(data, &a); err != nil {
		t.Fatalf("unmarshal audit: %v", err)
	}
	if a.Replacements != 2 || !a.SecretPresent || !a.Clean {
		t.Errorf("audit = %+v, want 2 replacements, secret present, clean", a)
	}
	if len(a.Entries) != 2 {
		t.Errorf("audit entries = %d, want 2", len(a.Entries))
	}
	if a.PlannedByLabel[entity.LabelPerson] != 1 || a.PlannedByLabel[entity.LabelPhone] != 1 {
		t.Errorf("PlannedByLabel = %v, want one PERSON and one PHONE", a.PlannedByLabel)
	}
}

func TestAuditCarriesNoDocumentText(t *testing.T) {
	b := testBundle(t)
	b.Audit.CreatedAt = time.Unix(0, 0).UTC()
	data, err := json.Marshal(b.Audit)
	if err != nil {
		t.Fatalf("marshal audit: %v", err)
	}
	for _, leak := range []string{"Lena Forsythe", "415", "Mara Vance", "555"} {
		if strings.Contains(string(data), leak) {
			t.Errorf("audit JSON contains %q; it must stay free of document and surrogate text", leak)
		}
	}
}

func TestWriteDiffMarksReplacements(t *testing.T) {
	b := testBundle(t)
	dir := t.TempDir()

	if err := WriteBundle(dir, b); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, DiffFile))
	if err != nil {
		t.Fatalf("read diff: %v", err)
	}
	page := string(data)
	for _, want := range []string{
		"<del>Lena Forsythe</del>",
		`<ins title="PERSON">Mara Vance</ins>`,
		`<ins title="PHONE">(312) 555-0147</ins>`,
		"doc-9",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("diff page missing %q", want)
		}
	}
}

func TestDiffEscapesMarkup(t *testing.T) {
	original := "Send <b>notice</b> to a.b@corpmail.test now."
	p := testPlan([]plan.Entry{
		plantAt(t, original, "a.b@corpmail.test", entity.LabelEmail, "x.y@example.org"),
	}, nil)
	redacted := redact(t, original, p)

	page := string(renderDiff(original, redacted, p))
	if strings.Contains(page, "<b>") {
		t.Error("diff page contains unescaped markup from the document")
	}
	if !strings.Contains(page, "&lt;b&gt;") {
		t.Error("diff page missing the escaped form of document markup")
	}
}

func TestAuditCountsSkipsByReason(t *testing.T) {
	p := testPlan(nil, []plan.Skip{
		{Text: "Dana Whitfield", Label: entity.LabelPerson, Reason: plan.SkipPersonsKept},
		{Text: "Rob Tillman", Label: entity.LabelPerson, Reason: plan.SkipPersonsKept},
		{Text: "March 3, 2021", Label: entity.LabelDateGeneric, Reason: plan.SkipGenericDates},
	})
	res := &Result{DocID: "doc-s", ResidualCount: 2, Score: 4}

	a := NewAudit(p, res, false, true, "")
	if a.SkippedByReason[plan.SkipPersonsKept] != 2 {
		t.Errorf("SkippedByReason[%s] = %d, want 2", plan.SkipPersonsKept, a.SkippedByReason[plan.SkipPersonsKept])
	}
	if a.SkippedByReason[plan.SkipGenericDates] != 1 {
		t.Errorf("SkippedByReason[%s] = %d, want 1", plan.SkipGenericDates, a.SkippedByReason[plan.SkipGenericDates])
	}
	if a.SecretPresent || !a.CrossDoc {
		t.Errorf("flags = secret %v cross %v, want false, true", a.SecretPresent, a.CrossDoc)
	}
	if a.ResidualCount != 2 || a.ResidualScore != 4 || a.Clean {
		t.Errorf("residuals = %d score %d clean %v, want 2, 4, false", a.ResidualCount, a.ResidualScore, a.Clean)
	}
}

func TestWriteBundleRequiresPlan(t *testing.T) {
	if err := WriteBundle(t.TempDir(), Bundle{}); err == nil {
		t.Fatal("WriteBundle accepted a bundle without a plan")
	}
}

func TestWriteBundleOverwrites(t *testing.T) {
	b := testBundle(t)
	dir := t.TempDir()
	if err := WriteBundle(dir, b); err != nil {
		t.Fatalf("first WriteBundle: %v", err)
	}
	b.Audit.Tool = "freedact rewrite"
	if err := WriteBundle(dir, b); err != nil {
		t.Fatalf("second WriteBundle: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatalf("read audit: %v", err)
	}
	var a Audit
	if err := json.Unmarshal(data, &a); err != nil {
		t.Fatalf("unmarshal audit: %v", err)
	}
	if a.Tool != "freedact rewrite" {
		t.Errorf("Tool = %q, want the rewritten value", a.Tool)
	}
}
