package plan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sdrasco/freedact/internal/logger"
)

// ErrTextMismatch reports a plan applied to text it was not built from.
var ErrTextMismatch = errors.New("plan does not match document text")

// OverlapError reports two plan entries claiming intersecting ranges.
// Touching ranges are legal; intersecting ones are not.
type OverlapError struct {
	A, B Entry
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("plan entries overlap: [%d, %d) %s and [%d, %d) %s",
		e.A.Start, e.A.End, e.A.Label, e.B.Start, e.B.End, e.B.Label)
}

// OutOfBoundsError reports an entry whose range does not fit the document.
type OutOfBoundsError struct {
	Entry  Entry
	DocLen int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("plan entry [%d, %d) %s outside document of %d bytes",
		e.Entry.Start, e.Entry.End, e.Entry.Label, e.DocLen)
}

// Apply executes the plan against text. Entries are validated (in
// bounds, pairwise non-overlapping, matching the text they claim to
// replace), then spliced right to left so earlier offsets stay valid,
// and finally numbered 1..n in reading order. A range that already
// holds its replacement is left alone and keeps AppliedIndex 0, so
// applying a plan over partially redacted text never double-replaces.
// A nil log is silenced.
func Apply(text string, p *Plan, log *logger.Logger) (string, error) {
	if log == nil {
		log = logger.Nop()
	}

	order := make([]int, len(p.Entries))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ea, eb := p.Entries[order[a]], p.Entries[order[b]]
		if ea.Start != eb.Start {
			return ea.Start < eb.Start
		}
		return ea.End < eb.End
	})

	for k, i := range order {
		e := p.Entries[i]
		if e.Start < 0 || e.Start >= e.End || e.End > len(text) {
			return "", &OutOfBoundsError{Entry: e, DocLen: len(text)}
		}
		if k > 0 {
			if prev := p.Entries[order[k-1]]; prev.End > e.Start {
				return "", &OverlapError{A: prev, B: e}
			}
		}
	}

	splice := make([]bool, len(p.Entries))
	for _, i := range order {
		e := p.Entries[i]
		switch cur := text[e.Start:e.End]; {
		case e.Original == "" || cur == e.Original:
			splice[i] = true
		case cur == e.Replacement:
			// Already redacted.
		default:
			return "", fmt.Errorf("%w: [%d, %d) holds %q, plan expects %q",
				ErrTextMismatch, e.Start, e.End, cur, e.Original)
		}
	}

	out := text
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		if !splice[i] {
			continue
		}
		e := p.Entries[i]
		out = out[:e.Start] + e.Replacement + out[e.End:]
	}

	n := 0
	for _, i := range order {
		if splice[i] {
			n++
			p.Entries[i].AppliedIndex = n
		} else {
			p.Entries[i].AppliedIndex = 0
		}
	}
	log.Infof("apply", "doc %s: %d of %d entries applied", p.DocID, n, len(p.Entries))
	return out, nil
}
