package verify

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/plan"
)

// File names inside a report bundle directory.
const (
	PlanFile   = "plan.json"
	VerifyFile = "verification.json"
	AuditFile  = "audit.json"
	DiffFile   = "diff.html"
)

// AuditEntry is the document-text-free projection of one plan entry:
// positions and identity, never the original or the surrogate value.
type AuditEntry struct {
	Start        int          `json:"start"`
	End          int          `json:"end"`
	Label        entity.Label `json:"label"`
	Subtype      string       `json:"subtype,omitempty"`
	EntityID     string       `json:"entity_id,omitempty"`
	AppliedIndex int          `json:"applied_index,omitempty"`
}

// Audit is the shareable record of one run: the entry list above plus
// aggregate counts and configuration echoes. It records whether a seed
// secret was configured, never the secret itself.
type Audit struct {
	DocID           string               `json:"doc_id"`
	DocHashB32      string               `json:"doc_hash_b32"`
	CreatedAt       time.Time            `json:"created_at"`
	Tool            string               `json:"tool,omitempty"`
	SecretPresent   bool                 `json:"secret_present"`
	CrossDoc        bool                 `json:"cross_doc"`
	Replacements    int                  `json:"replacements"`
	Entries         []AuditEntry         `json:"entries,omitempty"`
	PlannedByLabel  map[entity.Label]int `json:"planned_by_label,omitempty"`
	SkippedByReason map[string]int       `json:"skipped_by_reason,omitempty"`
	ResidualCount   int                  `json:"residual_count"`
	ResidualScore   int                  `json:"residual_score"`
	Clean           bool                 `json:"clean"`
}

// NewAudit condenses a plan and its verification result into an audit
// record. res may be nil when verification was skipped.
func NewAudit(p *plan.Plan, res *Result, secretPresent, crossDoc bool, tool string) Audit {
	a := Audit{
		DocID:         p.DocID,
		DocHashB32:    p.DocHash,
		CreatedAt:     time.Now().UTC(),
		Tool:          tool,
		SecretPresent: secretPresent,
		CrossDoc:      crossDoc,
		Replacements:  len(p.Entries),
	}
	for _, e := range p.Entries {
		a.Entries = append(a.Entries, AuditEntry{
			Start:        e.Start,
			End:          e.End,
			Label:        e.Label,
			Subtype:      e.Meta.Subtype,
			EntityID:     e.EntityID,
			AppliedIndex: e.AppliedIndex,
		})
	}
	if len(p.Entries) > 0 {
		a.PlannedByLabel = p.CountsByLabel()
	}
	if len(p.Skipped) > 0 {
		a.SkippedByReason = make(map[string]int)
		for _, sk := range p.Skipped {
			a.SkippedByReason[sk.Reason]++
		}
	}
	if res != nil {
		a.ResidualCount = res.ResidualCount
		a.ResidualScore = res.Score
		a.Clean = res.Clean
	}
	return a
}

// Bundle gathers everything WriteBundle serializes for one document. The
// plan and diff reproduce original text, so a bundle directory is as
// sensitive as the source document; the audit alone is shareable.
type Bundle struct {
	Original     string
	Redacted     string
	Plan         *plan.Plan
	Verification *Result
	Audit        Audit
}

// WriteBundle creates dir and writes the report artifacts into it. The
// directory and every file are created with owner-only permissions.
func WriteBundle(dir string, b Bundle) error {
	if b.Plan == nil {
		return fmt.Errorf("report: bundle has no plan")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("report: create %s: %w", dir, err)
	}
	if err := writeJSONFile(filepath.Join(dir, PlanFile), b.Plan); err != nil {
		return err
	}
	if b.Verification != nil {
		if err := writeJSONFile(filepath.Join(dir, VerifyFile), b.Verification); err != nil {
			return err
		}
	}
	if err := writeJSONFile(filepath.Join(dir, AuditFile), b.Audit); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, DiffFile), renderDiff(b.Original, b.Redacted, b.Plan))
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// writeFileAtomic writes via temp file and rename so an interrupted run
// never leaves a half-written artifact behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("report: create temp for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck // best-effort cleanup
		os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("report: write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("report: close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("report: rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// renderDiff builds a two-column HTML view: the original with replaced
// ranges struck through on the left, the redacted text with surrogates
// highlighted on the right.
func renderDiff(original, redacted string, p *plan.Plan) []byte {
	entries := make([]plan.Entry, len(p.Entries))
	copy(entries, p.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })

	var left, right strings.Builder
	lo, ro := 0, 0
	delta := 0
	for _, e := range entries {
		if e.Start < lo || e.End > len(original) {
			continue
		}
		rs := e.Start + delta
		left.WriteString(html.EscapeString(original[lo:e.Start]))
		left.WriteString(`<del>`)
		left.WriteString(html.EscapeString(original[e.Start:e.End]))
		left.WriteString(`</del>`)

		right.WriteString(html.EscapeString(redacted[ro:rs]))
		right.WriteString(`<ins title="` + html.EscapeString(string(e.Label)) + `">`)
		right.WriteString(html.EscapeString(e.Replacement))
		right.WriteString(`</ins>`)

		lo = e.End
		ro = rs + len(e.Replacement)
		delta += len(e.Replacement) - (e.End - e.Start)
	}
	left.WriteString(html.EscapeString(original[lo:]))
	right.WriteString(html.EscapeString(redacted[ro:]))

	var b strings.Builder
	b.WriteString("<!doctype html>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>redaction diff " + html.EscapeString(p.DocID) + "</title>\n")
	b.WriteString(`<style>
body { font-family: sans-serif; margin: 1rem; }
.cols { display: flex; gap: 1rem; }
.col { flex: 1; min-width: 0; }
pre { white-space: pre-wrap; overflow-wrap: anywhere; border: 1px solid #ccc; padding: 0.75rem; }
del { background: #fdd; }
ins { background: #dfd; text-decoration: none; }
</style>
`)
	b.WriteString("<h1>" + html.EscapeString(p.DocID) + "</h1>\n")
	b.WriteString("<p>doc hash " + html.EscapeString(p.DocHash) + ", " +
		fmt.Sprintf("%d replacement(s)", len(entries)) + "</p>\n")
	b.WriteString(`<div class="cols">` + "\n")
	b.WriteString(`<div class="col"><h2>Original</h2><pre>` + left.String() + "</pre></div>\n")
	b.WriteString(`<div class="col"><h2>Redacted</h2><pre>` + right.String() + "</pre></div>\n")
	b.WriteString("</div>\n")
	return []byte(b.String())
}
