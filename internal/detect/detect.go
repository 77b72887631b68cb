// Package detect holds the heuristic entity detectors. Each detector
// implements the one-method contract and is assembled into an explicit
// ordered set at startup; there is no global registry. Detector output is
// untrusted by the rest of the pipeline: malformed spans are dropped at
// the resolver, not crashed on.
//
// # Detectors
//
//   - email        RFC-lite address matching
//   - phone        NANP numbers with optional +1 prefix
//   - account_ids  IBAN, SWIFT/BIC, ABA routing, cards, SSN, EIN, generic
//   - names_person honorific/particle/surname grammar with scoring
//   - bank_org     institution names ending in a banking designator
//   - address      street / unit / city-state-ZIP / PO box lines
//   - date_generic month-name, ISO, and numeric US dates
//   - date_dob     generic dates promoted by birth triggers
//   - aliases      hereinafter/a.k.a./f.k.a./d.b.a. definitions
//   - gazetteer    US states and major cities (GPE/LOC)
//   - ner          optional HTTP sidecar (see ner.go)
package detect

import (
	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/textutil"
)

// Context carries per-document inputs a detector may consult. Lines is
// always populated; Locale defaults to en-US.
type Context struct {
	DocID  string
	Locale string
	Lines  *textutil.LineIndex
}

// NewContext builds the detection context for one document.
func NewContext(docID, text string) *Context {
	return &Context{DocID: docID, Locale: "en-US", Lines: textutil.NewLineIndex(text)}
}

// Detector is the single-capability contract every recognizer implements.
type Detector interface {
	Name() string
	Detect(text string, ctx *Context) ([]entity.Span, error)
}

// DefaultSet returns the built-in detectors in their standard order. The
// slice is freshly allocated; callers may append or remove entries.
func DefaultSet() []Detector {
	return []Detector{
		EmailDetector{},
		PhoneDetector{},
		AccountDetector{},
		PersonDetector{},
		BankOrgDetector{},
		AddressDetector{},
		DateDetector{},
		DOBDetector{},
		AliasDetector{},
		Gazetteer{},
	}
}

// VerifySet returns the detectors the verification scanner re-runs over
// redacted output. Alias definitions are excluded: the surrounding
// phrasing ("hereinafter ...") survives redaction and would re-trigger
// on every scan.
func VerifySet() []Detector {
	return []Detector{
		EmailDetector{},
		PhoneDetector{},
		AccountDetector{},
		PersonDetector{},
		BankOrgDetector{},
		AddressDetector{},
		DateDetector{},
		DOBDetector{},
		Gazetteer{},
	}
}

// span is the shared construction helper. Offsets arrive exactly as the
// caller matched them; detectors that scan coarse ranges trim their own
// right edge first.
func span(text string, start, end int, label entity.Label, source string, conf float64, attrs map[string]any) (entity.Span, bool) {
	if end > len(text) {
		end = len(text)
	}
	if end <= start {
		return entity.Span{}, false
	}
	s, err := entity.New(start, end, text[start:end], label, source, conf, attrs)
	if err != nil {
		return entity.Span{}, false
	}
	return s, true
}
