package plan

import (
	"errors"
	"testing"

	"github.com/sdrasco/freedact/internal/entity"
)

func entry(start, end int, original, replacement string, label entity.Label) Entry {
	return Entry{Start: start, End: end, Original: original, Replacement: replacement, Label: label}
}

func TestApplySplicesRightToLeft(t *testing.T) {
	text := "AAAA BBBB CCCC"
	p := &Plan{Entries: []Entry{
		entry(5, 9, "BBBB", "X", entity.LabelPerson),
		entry(0, 4, "AAAA", "YY", entity.LabelOrg),
	}}

	got, err := Apply(text, p, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := "YY X CCCC"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if p.Entries[1].AppliedIndex != 1 || p.Entries[0].AppliedIndex != 2 {
		t.Errorf("applied indexes = %d, %d; want reading order 1, 2",
			p.Entries[1].AppliedIndex, p.Entries[0].AppliedIndex)
	}
}

func TestApplyIsPure(t *testing.T) {
	text := "call 555-0100 or 555-0199 today"
	p := &Plan{Entries: []Entry{
		entry(5, 13, "555-0100", "555-0142", entity.LabelPhone),
		entry(17, 25, "555-0199", "555-0133", entity.LabelPhone),
	}}

	first, err := Apply(text, p, nil)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	second, err := Apply(text, p, nil)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if first != second {
		t.Errorf("same plan, same text, different output: %q vs %q", first, second)
	}
}

func TestApplySkipsAlreadyRedactedRanges(t *testing.T) {
	// The first range already holds its replacement; only the second is
	// spliced, and numbering counts performed splices only.
	text := "X and BBBB"
	p := &Plan{Entries: []Entry{
		entry(0, 1, "A", "X", entity.LabelPerson),
		entry(6, 10, "BBBB", "Y", entity.LabelOrg),
	}}

	got, err := Apply(text, p, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := "X and Y"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if p.Entries[0].AppliedIndex != 0 {
		t.Errorf("pre-redacted entry got index %d, want 0", p.Entries[0].AppliedIndex)
	}
	if p.Entries[1].AppliedIndex != 1 {
		t.Errorf("spliced entry got index %d, want 1", p.Entries[1].AppliedIndex)
	}
}

func TestApplyTouchingRangesAllowed(t *testing.T) {
	text := "abcdef"
	p := &Plan{Entries: []Entry{
		entry(0, 3, "abc", "1", entity.LabelPerson),
		entry(3, 6, "def", "2", entity.LabelPerson),
	}}

	got, err := Apply(text, p, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := "12"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyRejectsOverlap(t *testing.T) {
	text := "abcdefgh"
	p := &Plan{Entries: []Entry{
		entry(0, 5, "abcde", "1", entity.LabelPerson),
		entry(3, 8, "defgh", "2", entity.LabelOrg),
	}}

	_, err := Apply(text, p, nil)
	var oe *OverlapError
	if !errors.As(err, &oe) {
		t.Fatalf("err = %v, want OverlapError", err)
	}
	if oe.A.Start != 0 || oe.B.Start != 3 {
		t.Errorf("overlap pair = [%d, %d) and [%d, %d)", oe.A.Start, oe.A.End, oe.B.Start, oe.B.End)
	}
}

func TestApplyRejectsOutOfBounds(t *testing.T) {
	text := "short"
	cases := []Entry{
		entry(2, 99, "x", "y", entity.LabelPerson),
		entry(-1, 3, "x", "y", entity.LabelPerson),
		entry(3, 3, "", "y", entity.LabelPerson),
	}
	for _, c := range cases {
		p := &Plan{Entries: []Entry{c}}
		_, err := Apply(text, p, nil)
		var oe *OutOfBoundsError
		if !errors.As(err, &oe) {
			t.Errorf("entry [%d, %d): err = %v, want OutOfBoundsError", c.Start, c.End, err)
		}
	}
}

func TestApplyRejectsTextMismatch(t *testing.T) {
	text := "the quick fox"
	p := &Plan{Entries: []Entry{
		entry(4, 9, "slow!", "rapid", entity.LabelPerson),
	}}

	_, err := Apply(text, p, nil)
	if !errors.Is(err, ErrTextMismatch) {
		t.Fatalf("err = %v, want ErrTextMismatch", err)
	}
}

func TestApplyEmptyPlanReturnsInput(t *testing.T) {
	text := "nothing to hide"
	got, err := Apply(text, &Plan{}, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != text {
		t.Errorf("got %q, want input unchanged", got)
	}
}
