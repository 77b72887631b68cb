// Package textutil holds the small text primitives the pipeline shares:
// newline-preserving normalization, a line-start index for offset/line
// lookups, and the trim constants used when snapping span boundaries.
package textutil

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Characters ignored when trimming the right edge of a detected span.
const RightTrimChars = ")]};:,.!?»”’>"

// Characters that commonly wrap a span on the left.
const LeftWrapChars = "«“‘(<[{"

// Normalize prepares raw document text for the pipeline: line endings are
// unified to "\n" and the text is NFC-normalized. All span offsets refer to
// the normalized text.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(text)
}

// RTrimIndex returns the new end offset after walking back from end over
// trailing whitespace and RightTrimChars. It never walks past start.
func RTrimIndex(text string, start, end int) int {
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		if !unicode.IsSpace(r) && !strings.ContainsRune(RightTrimChars, r) {
			break
		}
		end -= size
	}
	return end
}

// LineIndex maps byte offsets to line numbers and back. Lines are
// zero-based; the offset of line i is Starts[i].
type LineIndex struct {
	text   string
	starts []int
}

// NewLineIndex builds the index for text. An empty text has one empty line.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// Count returns the number of lines.
func (li *LineIndex) Count() int { return len(li.starts) }

// LineOf returns the zero-based line number containing the byte offset.
// Offsets past the end map to the last line.
func (li *LineIndex) LineOf(offset int) int {
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset })
	return i - 1
}

// Bounds returns the [start, end) byte range of line i, excluding the
// terminating newline.
func (li *LineIndex) Bounds(i int) (start, end int) {
	start = li.starts[i]
	if i+1 < len(li.starts) {
		return start, li.starts[i+1] - 1
	}
	return start, len(li.text)
}

// Line returns the text of line i without its newline.
func (li *LineIndex) Line(i int) string {
	start, end := li.Bounds(i)
	return li.text[start:end]
}

// LineAround returns the full text of the line containing offset.
func (li *LineIndex) LineAround(offset int) string {
	return li.Line(li.LineOf(offset))
}

// Starts exposes the raw line-start offsets (read-only use).
func (li *LineIndex) Starts() []int { return li.starts }
