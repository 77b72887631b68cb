package textutil

import "testing"

// TestNormalizeLineEndings verifies CRLF and bare CR both become LF.
func TestNormalizeLineEndings(t *testing.T) {
	got := Normalize("a\r\nb\rc\n")
	if got != "a\nb\nc\n" {
		t.Errorf("Normalize = %q, want %q", got, "a\nb\nc\n")
	}
}

// TestNormalizeNFC verifies decomposed sequences are composed.
func TestNormalizeNFC(t *testing.T) {
	// "e" + combining acute accent must become the single rune é.
	got := Normalize("José")
	if got != "José" {
		t.Errorf("Normalize = %q, want %q", got, "José")
	}
}

// TestRTrimIndex verifies trailing punctuation and whitespace are walked
// back, but interior characters are untouched.
func TestRTrimIndex(t *testing.T) {
	cases := []struct {
		text       string
		start, end int
		want       int
	}{
		{"John Doe),", 0, 10, 8},
		{"hello   ", 0, 8, 5},
		{"a.b", 0, 3, 3},
		{"(x)", 1, 3, 2},
		{"", 0, 0, 0},
	}
	for _, c := range cases {
		if got := RTrimIndex(c.text, c.start, c.end); got != c.want {
			t.Errorf("RTrimIndex(%q, %d, %d) = %d, want %d", c.text, c.start, c.end, got, c.want)
		}
	}
}

// TestLineIndexLookups verifies offset→line mapping and line bounds.
func TestLineIndexLookups(t *testing.T) {
	li := NewLineIndex("first\nsecond\n\nlast")

	if li.Count() != 4 {
		t.Fatalf("Count = %d, want 4", li.Count())
	}
	if li.LineOf(0) != 0 || li.LineOf(4) != 0 {
		t.Error("offsets inside line 0 must map to line 0")
	}
	if li.LineOf(6) != 1 {
		t.Errorf("LineOf(6) = %d, want 1", li.LineOf(6))
	}
	if li.Line(1) != "second" {
		t.Errorf("Line(1) = %q, want %q", li.Line(1), "second")
	}
	if li.Line(2) != "" {
		t.Errorf("Line(2) = %q, want empty", li.Line(2))
	}
	if li.Line(3) != "last" {
		t.Errorf("Line(3) = %q, want %q", li.Line(3), "last")
	}

	start, end := li.Bounds(1)
	if start != 6 || end != 12 {
		t.Errorf("Bounds(1) = [%d, %d), want [6, 12)", start, end)
	}
}

// TestLineIndexEmptyText verifies the degenerate single-empty-line case.
func TestLineIndexEmptyText(t *testing.T) {
	li := NewLineIndex("")
	if li.Count() != 1 {
		t.Fatalf("Count = %d, want 1", li.Count())
	}
	if li.Line(0) != "" {
		t.Errorf("Line(0) = %q, want empty", li.Line(0))
	}
}
